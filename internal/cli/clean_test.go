package cli

import (
	"os"
	"reflect"
	"testing"

	"github.com/herd-sh/herd/internal/orchestrate"
	"github.com/herd-sh/herd/internal/workspace"
)

type fakeOrchestrator struct {
	agents []orchestrate.Agent
	ws     *workspace.Provisioner
}

func (f *fakeOrchestrator) ListAgents() []orchestrate.Agent { return f.agents }
func (f *fakeOrchestrator) Workspace() *workspace.Provisioner { return f.ws }

func TestAllAgentIDsUnionsWindowsAndWorktrees(t *testing.T) {
	root := t.TempDir()
	ws := workspace.New(root, "agents")
	// One orphaned worktree with no window, one live on both sides.
	for _, id := range []string{"orphan-tree", "hey-123"} {
		if err := os.MkdirAll(ws.PathFor(id), 0o755); err != nil {
			t.Fatal(err)
		}
	}

	o := &fakeOrchestrator{
		agents: []orchestrate.Agent{
			{ID: "hey-123", Status: orchestrate.StatusRunning},
			{ID: "orphan-window", Status: orchestrate.StatusIdle},
		},
		ws: ws,
	}

	got := allAgentIDs(o)
	want := []string{"hey-123", "orphan-tree", "orphan-window"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestAllAgentIDsEmpty(t *testing.T) {
	o := &fakeOrchestrator{ws: workspace.New(t.TempDir(), "agents")}
	if got := allAgentIDs(o); len(got) != 0 {
		t.Errorf("got %v, want none", got)
	}
}
