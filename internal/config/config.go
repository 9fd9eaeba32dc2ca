// Package config loads herd configuration with the precedence
// per-call override > environment > file > built-in default.
// The rest of the program treats the result as a read-only struct.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/herd-sh/herd/internal/notify"
)

// Config represents the resolved herd configuration.
type Config struct {
	// BaseBranch is the reference new agent branches are cut from.
	BaseBranch string `toml:"base_branch"`

	// WorkspaceDir is the directory (relative to the repository root)
	// that holds agent worktrees. It is ignored by git.
	WorkspaceDir string `toml:"workspace_dir"`

	// Session is the name of the shared tmux session all agent windows
	// live in.
	Session string `toml:"session"`

	// Agent is the long-running agent command started in each window.
	Agent string `toml:"agent"`

	Model        string   `toml:"model"`
	MaxTurns     int      `toml:"max_turns"`
	MaxBudget    float64  `toml:"max_budget"`
	AllowedTools []string `toml:"allowed_tools"`

	// ReadinessTimeoutSeconds bounds the interactive readiness poll.
	ReadinessTimeoutSeconds int `toml:"readiness_timeout_seconds"`

	// Palette holds the window colors assigned round-robin at creation.
	Palette []string `toml:"palette"`

	// TicketCommand is the external lookup program for ticket
	// references, e.g. ["linear", "issue", "view", "--json"]. Empty
	// disables lookups; resolution then degrades to the raw reference.
	TicketCommand []string `toml:"ticket_command"`

	Notifications notify.Config `toml:"notifications"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		BaseBranch:              "main",
		WorkspaceDir:            "agents",
		Session:                 "herd",
		Agent:                   "claude",
		MaxTurns:                30,
		ReadinessTimeoutSeconds: 15,
		Palette: []string{
			"colour39",  // blue
			"colour208", // orange
			"colour112", // green
			"colour207", // pink
			"colour226", // yellow
			"colour87",  // cyan
			"colour160", // red
			"colour141", // purple
		},
		Notifications: notify.DefaultConfig(),
	}
}

// Path returns the config file location, honoring HERD_CONFIG and
// XDG_CONFIG_HOME.
func Path() string {
	if env := os.Getenv("HERD_CONFIG"); env != "" {
		return env
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "herd", "config.toml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "herd", "config.toml")
}

// Load reads the config file at path (or the default location when path
// is empty) over the defaults, then applies environment overrides. A
// missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = Path()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults only
	default:
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("HERD_BASE_BRANCH"); v != "" {
		c.BaseBranch = v
	}
	if v := os.Getenv("HERD_WORKSPACE_DIR"); v != "" {
		c.WorkspaceDir = v
	}
	if v := os.Getenv("HERD_SESSION"); v != "" {
		c.Session = v
	}
	if v := os.Getenv("HERD_AGENT"); v != "" {
		c.Agent = v
	}
	if v := os.Getenv("HERD_MODEL"); v != "" {
		c.Model = v
	}
	if v := os.Getenv("HERD_MAX_TURNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.MaxTurns = n
		}
	}
	if v := os.Getenv("HERD_MAX_BUDGET"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			c.MaxBudget = f
		}
	}
	if v := os.Getenv("HERD_ALLOWED_TOOLS"); v != "" {
		c.AllowedTools = splitList(v)
	}
	if v := os.Getenv("HERD_READINESS_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			c.ReadinessTimeoutSeconds = n
		}
	}
	if v := os.Getenv("HERD_TICKET_COMMAND"); v != "" {
		c.TicketCommand = strings.Fields(v)
	}
}

func (c *Config) validate() error {
	if c.Session == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if strings.ContainsAny(c.Session, ":.") {
		return fmt.Errorf("session name %q cannot contain ':' or '.'", c.Session)
	}
	if c.WorkspaceDir == "" || filepath.IsAbs(c.WorkspaceDir) {
		return fmt.Errorf("workspace_dir must be a relative directory name, got %q", c.WorkspaceDir)
	}
	if len(c.Palette) == 0 {
		return fmt.Errorf("palette cannot be empty")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ExpandHome expands a leading ~ to the user's home directory.
func ExpandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		if path == "~" {
			return home
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
