package orchestrate

import (
	"path/filepath"
	"strings"
)

// Agent status values. Classification is total: every observed window
// maps to exactly one of these, there is no "unknown".
const (
	StatusRunning = "running"
	StatusIdle    = "idle"
	StatusExited  = "exited"
)

// Agent is one live agent as derived from tmux state at query time.
type Agent struct {
	ID     string
	Status string
	Path   string
}

// Classify derives an agent's status from its window's foreground
// command and liveness. A dead pane is exited no matter what command it
// reports; a recognized agent process is running; anything else (a
// plain shell, an editor) is idle.
func Classify(command string, dead bool, agentProc string) string {
	if dead {
		return StatusExited
	}
	base := filepath.Base(strings.TrimSpace(command))
	if base != "" && (base == agentProc || base == "node") {
		return StatusRunning
	}
	return StatusIdle
}

// ListAgents derives the live agent set from the session registry. It
// is a pure projection of live tmux state: no cache, no side effects,
// truth lives externally. An empty session yields an empty slice, not
// an error.
func (o *Orchestrator) ListAgents() []Agent {
	agentProc := o.agentProcName()
	var agents []Agent
	for _, w := range o.registry.ListAll() {
		agents = append(agents, Agent{
			ID:     w.Name,
			Status: Classify(w.Command, w.Dead, agentProc),
			Path:   w.Path,
		})
	}
	return agents
}

// agentProcName is the process name the configured agent command shows
// up as in pane_current_command.
func (o *Orchestrator) agentProcName() string {
	fields := strings.Fields(o.cfg.Agent)
	if len(fields) == 0 {
		return ""
	}
	return filepath.Base(fields[0])
}
