package orchestrate

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/mattn/go-isatty"

	"github.com/herd-sh/herd/internal/errs"
	"github.com/herd-sh/herd/internal/tmux"
)

// TerminalFlavor is one supported terminal application the fallback
// attach path can script. Flavors are probed in order; adding a new one
// means appending a record, not touching dispatch.
type TerminalFlavor struct {
	Name    string
	Probe   func() bool
	OpenTab func(target string) error
}

// terminalFlavors is the priority-ordered probe list for the no-TTY
// fallback path.
var terminalFlavors = []TerminalFlavor{
	{
		Name:  "iTerm2",
		Probe: func() bool { return os.Getenv("TERM_PROGRAM") == "iTerm.app" || os.Getenv("ITERM_SESSION_ID") != "" },
		OpenTab: func(target string) error {
			script := fmt.Sprintf(`tell application "iTerm2"
	tell current window
		create tab with default profile command "tmux attach-session -t %s"
	end tell
end tell`, target)
			return exec.Command("osascript", "-e", script).Run()
		},
	},
	{
		Name:  "Apple Terminal",
		Probe: func() bool { return os.Getenv("TERM_PROGRAM") == "Apple_Terminal" },
		OpenTab: func(target string) error {
			script := fmt.Sprintf(`tell application "Terminal" to do script "tmux attach-session -t %s"`, target)
			return exec.Command("osascript", "-e", script).Run()
		},
	},
	{
		Name:  "kitty",
		Probe: func() bool { return os.Getenv("KITTY_WINDOW_ID") != "" || os.Getenv("TERM") == "xterm-kitty" },
		OpenTab: func(target string) error {
			return exec.Command("kitten", "@", "launch", "--type=tab",
				"tmux", "attach-session", "-t", target).Run()
		},
	},
	{
		Name:  "Ghostty",
		Probe: func() bool { return os.Getenv("TERM_PROGRAM") == "ghostty" || os.Getenv("GHOSTTY_RESOURCES_DIR") != "" },
		OpenTab: func(target string) error {
			return exec.Command("open", "-na", "Ghostty", "--args",
				"-e", "tmux", "attach-session", "-t", target).Run()
		},
	},
}

// hasTTY reports whether the current process has an interactive
// controlling terminal. Stubbed in tests.
var hasTTY = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Attach connects the invoking terminal to the agent's window. With a
// controlling TTY it attaches directly (or switches the client when
// already inside tmux). Without one it probes known terminal
// applications and scripts the first match to open a tab that attaches.
// If nothing matches, it prints a manual instruction and reports
// success; the agent itself is fine either way.
func (o *Orchestrator) Attach(id string) error {
	if id != "" && !o.registry.Exists(id) {
		return errs.Usagef("no agent named %q", id)
	}
	if id != "" {
		if err := o.registry.SelectWindow(id); err != nil {
			return &errs.ProvisioningError{Op: "session", ID: id, Err: err}
		}
	}
	target := o.registry.Session()

	if hasTTY() {
		return tmux.Attach(target)
	}

	for _, flavor := range terminalFlavors {
		if !flavor.Probe() {
			continue
		}
		if err := flavor.OpenTab(target); err == nil {
			return nil
		}
	}

	fmt.Printf("no usable terminal detected; attach manually with: tmux attach-session -t %s\n", target)
	return nil
}
