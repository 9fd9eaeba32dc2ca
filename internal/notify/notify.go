// Package notify dispatches fire-and-forget notifications for agent
// lifecycle events. Delivery failures are swallowed: a notification is
// never worth failing a launch over.
package notify

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/gen2brain/beeep"
)

// EventType identifies what happened.
type EventType string

const (
	EventAgentStarted EventType = "agent.started" // Agent launched
	EventAgentDone    EventType = "agent.done"    // Headless task finished
	EventAgentStopped EventType = "agent.stopped" // Agent killed
)

// Config holds notification configuration.
type Config struct {
	Enabled bool          `toml:"enabled"`
	Desktop DesktopConfig `toml:"desktop"`
	Log     LogConfig     `toml:"log"`
}

// DesktopConfig configures desktop notifications.
type DesktopConfig struct {
	Enabled bool   `toml:"enabled"`
	Title   string `toml:"title"` // Title prefix
}

// LogConfig configures the append-only notification log.
type LogConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// DefaultConfig returns the default notification configuration.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Desktop: DesktopConfig{
			Enabled: true,
			Title:   "herd",
		},
		Log: LogConfig{
			Enabled: false,
			Path:    "~/.config/herd/notifications.log",
		},
	}
}

// Notifier sends notifications through the enabled channels.
type Notifier struct {
	config Config
	mu     sync.Mutex
}

// New creates a Notifier.
func New(cfg Config) *Notifier {
	cfg.Log.Path = os.ExpandEnv(cfg.Log.Path)
	return &Notifier{config: cfg}
}

// Notify dispatches title/message through every enabled channel.
// It never returns an error; failures are logged at debug level only.
func (n *Notifier) Notify(event EventType, title, message string) {
	if !n.config.Enabled {
		return
	}
	if n.config.Desktop.Enabled {
		full := title
		if prefix := n.config.Desktop.Title; prefix != "" {
			full = fmt.Sprintf("%s: %s", prefix, title)
		}
		if err := beeep.Notify(full, message, ""); err != nil {
			slog.Debug("desktop notification failed", "event", event, "err", err)
		}
	}
	if n.config.Log.Enabled && n.config.Log.Path != "" {
		if err := n.appendLog(event, title, message); err != nil {
			slog.Debug("notification log append failed", "err", err)
		}
	}
}

func (n *Notifier) appendLog(event EventType, title, message string) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	path := expandHome(n.config.Log.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = fmt.Fprintf(f, "%s [%s] %s: %s\n",
		time.Now().Format(time.RFC3339), event, title, message)
	return err
}

func expandHome(path string) string {
	if len(path) >= 2 && path[:2] == "~/" {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
