// Package orchestrate coordinates agent launches across the two
// external subsystems an agent needs: a git worktree and a tmux window.
// The two are provisioned independently with no shared transaction; a
// crash between steps leaves an observable partial state that stop and
// clean know how to repair.
package orchestrate

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/herd-sh/herd/internal/config"
	"github.com/herd-sh/herd/internal/errs"
	"github.com/herd-sh/herd/internal/ident"
	"github.com/herd-sh/herd/internal/notify"
	"github.com/herd-sh/herd/internal/tmux"
	"github.com/herd-sh/herd/internal/workspace"
)

// ScratchDir is the per-workspace directory holding the prompt file and
// the agent log.
const ScratchDir = ".herd"

// PromptFile is the prompt scratch file, relative to a workspace.
const PromptFile = ScratchDir + "/prompt.txt"

// LogFile is the append-only agent log, relative to a workspace.
const LogFile = ScratchDir + "/agent.log"

// Mode selects how the agent process is started.
type Mode string

const (
	// ModeInteractive starts the agent with no task pre-supplied and
	// hands it the prompt once it shows readiness.
	ModeInteractive Mode = "interactive"
	// ModeHeadless starts the agent non-interactively with the prompt
	// redirected from a file and output appended to the agent log.
	ModeHeadless Mode = "headless"
)

// Options adjusts a single launch.
type Options struct {
	Mode          Mode
	NameOverride  string
	SkipWorkspace bool // run in the repository root instead of a worktree
}

// AgentHandle describes a successfully launched agent.
type AgentHandle struct {
	ID        string
	Branch    string
	Workspace string
	Target    string
	Mode      Mode
}

// Orchestrator wires the identity resolver, workspace provisioner, and
// session registry into the launch state machine. It holds no agent
// state of its own between invocations.
type Orchestrator struct {
	cfg      *config.Config
	registry *tmux.Registry
	ws       *workspace.Provisioner
	fetcher  ident.Fetcher
	notifier *notify.Notifier

	// selfExe is the herd binary path baked into headless command
	// chains for the completion notification hook.
	selfExe string
}

// New creates an Orchestrator.
func New(cfg *config.Config, registry *tmux.Registry, ws *workspace.Provisioner, fetcher ident.Fetcher, notifier *notify.Notifier) *Orchestrator {
	exe, err := os.Executable()
	if err != nil {
		exe = "herd"
	}
	return &Orchestrator{
		cfg:      cfg,
		registry: registry,
		ws:       ws,
		fetcher:  fetcher,
		notifier: notifier,
		selfExe:  exe,
	}
}

// Registry exposes the session registry for status and attach surfaces.
func (o *Orchestrator) Registry() *tmux.Registry { return o.registry }

// Workspace exposes the workspace provisioner.
func (o *Orchestrator) Workspace() *workspace.Provisioner { return o.ws }

// Launch runs the per-agent state machine: resolve identity, abort on a
// duplicate, provision the workspace, create the window, start the
// process, and in interactive mode wait for readiness and deliver the
// prompt. No retries; provisioning failures are fatal for this input.
func (o *Orchestrator) Launch(input string, opts Options) (*AgentHandle, error) {
	id := ident.Resolve(input, opts.NameOverride, o.fetcher)

	// Duplicate guard before provisioning, so a conflicting launch
	// never wastes a workspace.
	if o.registry.Exists(id.ID) {
		return nil, &errs.ConflictError{ID: id.ID}
	}

	cwd := o.ws.RepoRoot
	wsPath := ""
	if !opts.SkipWorkspace {
		path, err := o.ws.Provision(id.ID, id.Branch, o.cfg.BaseBranch)
		if err != nil {
			return nil, &errs.ProvisioningError{Op: "workspace", ID: id.ID, Err: err}
		}
		cwd = path
		wsPath = path
	}

	if err := os.MkdirAll(filepath.Join(cwd, ScratchDir), 0o755); err != nil {
		return nil, &errs.ProvisioningError{Op: "workspace", ID: id.ID, Err: err}
	}
	promptPath := filepath.Join(cwd, PromptFile)
	if err := os.WriteFile(promptPath, []byte(id.Prompt), 0o644); err != nil {
		return nil, &errs.ProvisioningError{Op: "workspace", ID: id.ID, Err: err}
	}

	windowCmd := ""
	if opts.Mode == ModeHeadless {
		windowCmd = o.headlessCommand(id.ID, cwd)
	}
	created, err := o.registry.Create(id.ID, cwd, windowCmd)
	if err != nil {
		return nil, &errs.ProvisioningError{Op: "session", ID: id.ID, Err: err}
	}
	if !created {
		// Raced with another invocation between the duplicate check and
		// creation. Existence checks and creation are not atomic across
		// processes; surface it the same way as the guard.
		return nil, &errs.ConflictError{ID: id.ID}
	}

	handle := &AgentHandle{
		ID:        id.ID,
		Branch:    id.Branch,
		Workspace: wsPath,
		Target:    o.registry.TargetOf(id.ID),
		Mode:      opts.Mode,
	}

	if opts.Mode == ModeInteractive {
		if err := o.registry.SendKeys(id.ID, o.cfg.Agent, true); err != nil {
			return nil, &errs.ProvisioningError{Op: "session", ID: id.ID, Err: err}
		}
		o.awaitReadyAndDeliver(id.ID, id.Prompt)
	}

	o.notifier.Notify(notify.EventAgentStarted, id.ID, fmt.Sprintf("agent started (%s)", opts.Mode))
	return handle, nil
}

// awaitReadyAndDeliver performs the readiness handshake, then pastes
// the prompt through a transfer buffer and submits it. A timed-out
// handshake is a warning: pasting one beat early beats blocking
// forever.
func (o *Orchestrator) awaitReadyAndDeliver(id, prompt string) {
	timeout := time.Duration(o.cfg.ReadinessTimeoutSeconds) * time.Second
	poller := NewReadyPoller(timeout, func() (string, error) {
		return o.registry.Capture(id, 50)
	})
	if !poller.Wait() {
		slog.Warn("agent did not show readiness before timeout, sending prompt anyway",
			"id", id, "timeout", timeout)
	}

	if err := o.registry.PasteText(id, prompt); err != nil {
		slog.Warn("prompt paste failed, falling back to literal keys", "id", id, "err", err)
		if err := o.registry.SendKeys(id, prompt, false); err != nil {
			slog.Warn("prompt delivery failed", "id", id, "err", err)
			return
		}
	}
	if err := o.registry.Submit(id); err != nil {
		slog.Warn("prompt submit failed", "id", id, "err", err)
	}
}

// headlessCommand builds the one-line shell command for a headless
// window: prompt from the prompt file, limits as flags, structured
// output, everything appended to the agent log, and the completion
// notification chained with ';' so it fires regardless of the task's
// exit code.
func (o *Orchestrator) headlessCommand(id, cwd string) string {
	var b strings.Builder
	b.WriteString(o.cfg.Agent)
	b.WriteString(" --print --output-format stream-json")
	if o.cfg.Model != "" {
		fmt.Fprintf(&b, " --model %q", o.cfg.Model)
	}
	if o.cfg.MaxTurns > 0 {
		fmt.Fprintf(&b, " --max-turns %d", o.cfg.MaxTurns)
	}
	if o.cfg.MaxBudget > 0 {
		fmt.Fprintf(&b, " --max-budget %.2f", o.cfg.MaxBudget)
	}
	if len(o.cfg.AllowedTools) > 0 {
		fmt.Fprintf(&b, " --allowed-tools %q", strings.Join(o.cfg.AllowedTools, ","))
	}
	fmt.Fprintf(&b, " < %q >> %q 2>&1; %q notify-done %q",
		filepath.Join(cwd, PromptFile),
		filepath.Join(cwd, LogFile),
		o.selfExe, id)
	return b.String()
}

// Stop tears down an agent's window, leaving branch and worktree in
// place as recoverable work product.
func (o *Orchestrator) Stop(id string) error {
	if !o.registry.Exists(id) {
		return errs.Usagef("no agent named %q", id)
	}
	if err := o.registry.Destroy(id); err != nil {
		return &errs.ProvisioningError{Op: "session", ID: id, Err: err}
	}
	o.notifier.Notify(notify.EventAgentStopped, id, "agent stopped")
	return nil
}

// Clean stops the agent if its window still exists, then removes its
// workspace. Both halves are idempotent, so clean repairs partial
// states (window without worktree and vice versa).
func (o *Orchestrator) Clean(id string) error {
	if o.registry.Exists(id) {
		if err := o.registry.Destroy(id); err != nil {
			slog.Warn("window destroy failed, continuing with workspace cleanup", "id", id, "err", err)
		}
	}
	if !o.ws.Teardown(id) {
		return &errs.ProvisioningError{Op: "workspace", ID: id, Err: fmt.Errorf("worktree removal failed")}
	}
	return nil
}
