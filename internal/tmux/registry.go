package tmux

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// ControlWindow is the reserved window every shared session starts with.
// It never hosts an agent and is excluded from listings.
const ControlWindow = "control"

// listSep separates list-windows format fields. Window names are
// slugified before they get here, so the separator cannot collide.
const listSep = "|#|"

// Window describes one agent window as observed live from tmux.
type Window struct {
	Name    string
	Command string // foreground command of the window's pane
	Path    string // pane working directory
	Dead    bool   // pane's process exited (remain-on-exit keeps the window)
}

// Registry addresses agent windows inside one shared tmux session. It
// holds no state of its own: every read goes to the tmux server, so the
// answer is whatever is true right now.
type Registry struct {
	run     Runner
	session string
	palette []string
}

// NewRegistry creates a registry over the given shared session name.
func NewRegistry(r Runner, session string, palette []string) *Registry {
	return &Registry{run: r, session: session, palette: palette}
}

// Session returns the shared session name.
func (g *Registry) Session() string { return g.session }

// TargetOf returns the tmux target address for an agent window.
func (g *Registry) TargetOf(id string) string {
	return g.session + ":" + id
}

// SessionExists reports whether the shared session is alive.
func (g *Registry) SessionExists() bool {
	return g.run.RunSilent("has-session", "-t", "="+g.session) == nil
}

// ensureSession lazily creates and configures the shared session. The
// configuration is applied once at creation, never per agent window.
func (g *Registry) ensureSession() error {
	if g.SessionExists() {
		return nil
	}

	if err := g.run.RunSilent("new-session", "-d", "-s", g.session, "-n", ControlWindow); err != nil {
		return fmt.Errorf("creating shared session %q: %w", g.session, err)
	}

	// One-time session configuration: deep scrollback, mouse support,
	// window title propagation, and remain-on-exit so a finished task
	// leaves an observable dead pane instead of vanishing.
	for _, opt := range [][]string{
		{"set-option", "-t", g.session, "history-limit", "50000"},
		{"set-option", "-t", g.session, "mouse", "on"},
		{"set-option", "-t", g.session, "set-titles", "on"},
		{"set-option", "-t", g.session, "remain-on-exit", "on"},
	} {
		if err := g.run.RunSilent(opt...); err != nil {
			slog.Debug("session option failed", "option", strings.Join(opt, " "), "err", err)
		}
	}
	return nil
}

// Exists reports whether a window named id exists in the shared session.
// Any backing failure reads as "does not exist".
func (g *Registry) Exists(id string) bool {
	windows, err := g.list()
	if err != nil {
		return false
	}
	for _, w := range windows {
		if w.Name == id {
			return true
		}
	}
	return false
}

// Create adds a window named id with the given working directory and
// optional window command. Creating a duplicate is a no-op returning
// false, not an error. On success the window is colored from the palette
// by creation order.
func (g *Registry) Create(id, cwd, command string) (bool, error) {
	if err := g.ensureSession(); err != nil {
		return false, err
	}
	if g.Exists(id) {
		slog.Warn("window already exists, not recreating", "id", id)
		return false, nil
	}

	args := []string{"new-window", "-d", "-t", g.session + ":", "-n", id, "-c", cwd}
	if command != "" {
		args = append(args, command)
	}
	if err := g.run.RunSilent(args...); err != nil {
		return false, fmt.Errorf("creating window %q: %w", id, err)
	}

	g.assignColor(id)
	return true, nil
}

// assignColor applies palette[(count-1) mod len] to the new window by
// counting windows at creation time. Deterministic for a growing
// session, but destroy/recreate cycles may reassign colors; that drift
// is cosmetic and accepted.
func (g *Registry) assignColor(id string) {
	if len(g.palette) == 0 {
		return
	}
	count := len(g.ListAll())
	if count == 0 {
		count = 1
	}
	color := g.palette[(count-1)%len(g.palette)]
	err := g.run.RunSilent("set-window-option", "-t", g.TargetOf(id),
		"window-status-style", "fg="+color)
	if err != nil {
		slog.Debug("window color assignment failed", "id", id, "err", err)
	}
}

// Color reports the palette color a window at creation position n
// (1-based) receives.
func (g *Registry) Color(n int) string {
	if len(g.palette) == 0 || n < 1 {
		return ""
	}
	return g.palette[(n-1)%len(g.palette)]
}

// Destroy interrupts the window's foreground process, waits briefly,
// then kills the window regardless. Best-effort cancellation: the
// process may not get to exit cleanly.
func (g *Registry) Destroy(id string) error {
	target := g.TargetOf(id)
	_ = g.run.RunSilent("send-keys", "-t", target, "C-c")
	time.Sleep(500 * time.Millisecond)
	return g.run.RunSilent("kill-window", "-t", target)
}

// ListAll returns every agent window, excluding the reserved control
// window. It is a pure read of live tmux state: no cache, two sequential
// calls may disagree while something else mutates the session. Backing
// failures read as an empty session.
func (g *Registry) ListAll() []Window {
	windows, err := g.list()
	if err != nil {
		return nil
	}
	return windows
}

// HasWindows reports whether any agent window exists.
func (g *Registry) HasWindows() bool {
	return len(g.ListAll()) > 0
}

// list queries tmux for the shared session's windows. The control
// window is filtered here so no caller ever sees it.
func (g *Registry) list() ([]Window, error) {
	format := fmt.Sprintf("#{window_name}%[1]s#{pane_current_command}%[1]s#{pane_current_path}%[1]s#{pane_dead}", listSep)
	output, err := g.run.Run("list-windows", "-t", g.session, "-F", format)
	if err != nil {
		return nil, err
	}
	return ParseWindows(output), nil
}

// ParseWindows parses list-windows output in the registry format,
// dropping the control window and malformed lines.
func ParseWindows(output string) []Window {
	var windows []Window
	for _, line := range strings.Split(output, "\n") {
		if line == "" {
			continue
		}
		parts := strings.Split(line, listSep)
		if len(parts) < 4 {
			continue
		}
		if parts[0] == ControlWindow {
			continue
		}
		windows = append(windows, Window{
			Name:    parts[0],
			Command: parts[1],
			Path:    parts[2],
			Dead:    parts[3] == "1",
		})
	}
	return windows
}

// Capture returns the last lines of a window's visible output.
func (g *Registry) Capture(id string, lines int) (string, error) {
	return g.run.Run("capture-pane", "-t", g.TargetOf(id), "-p", "-S", fmt.Sprintf("-%d", lines))
}

// SendKeys sends literal keys to a window, optionally followed by Enter.
func (g *Registry) SendKeys(id, keys string, enter bool) error {
	target := g.TargetOf(id)
	if err := g.run.RunSilent("send-keys", "-t", target, "-l", "--", keys); err != nil {
		return err
	}
	if enter {
		return g.run.RunSilent("send-keys", "-t", target, "C-m")
	}
	return nil
}

// Submit sends Enter to a window.
func (g *Registry) Submit(id string) error {
	return g.run.RunSilent("send-keys", "-t", g.TargetOf(id), "C-m")
}

// PasteText delivers text to a window through a named transfer buffer.
// Buffer paste preserves exact bytes where literal send-keys mangles
// multi-line or metacharacter-heavy content. The buffer is deleted by
// the paste itself (-d).
func (g *Registry) PasteText(id, text string) error {
	buf := fmt.Sprintf("herd-%d", time.Now().UnixNano())
	if err := g.run.RunInput(text, "load-buffer", "-b", buf, "-"); err != nil {
		return fmt.Errorf("loading buffer: %w", err)
	}
	if err := g.run.RunSilent("paste-buffer", "-p", "-d", "-b", buf, "-t", g.TargetOf(id)); err != nil {
		_ = g.run.RunSilent("delete-buffer", "-b", buf)
		return fmt.Errorf("pasting buffer: %w", err)
	}
	return nil
}

// SelectWindow makes the agent's window current in the shared session.
func (g *Registry) SelectWindow(id string) error {
	return g.run.RunSilent("select-window", "-t", g.TargetOf(id))
}
