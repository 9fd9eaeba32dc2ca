package cli

import (
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/herd-sh/herd/internal/errs"
	"github.com/herd-sh/herd/internal/orchestrate"
	"github.com/herd-sh/herd/internal/output"
	"github.com/herd-sh/herd/internal/workspace"
)

// orchestratorLike is the slice of the orchestrator clean needs; tests
// substitute a fake.
type orchestratorLike interface {
	ListAgents() []orchestrate.Agent
	Workspace() *workspace.Provisioner
}

func newCleanCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "clean [agent]",
		Short: "Stop an agent and remove its worktree",
		Long: `Tear down both of an agent's resources: kill its window (if still
alive) and force-remove its worktree. Also repairs partial states left
by a crash, like a worktree with no window. With --all, cleans every
agent and every orphaned worktree.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(args, all)
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "clean every agent and orphaned worktree")

	return cmd
}

func runClean(args []string, all bool) error {
	if all == (len(args) == 1) {
		return errs.Usagef("give exactly one agent name or --all")
	}

	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	ids := args
	if all {
		ids = allAgentIDs(o)
		if len(ids) == 0 {
			output.Successf("nothing to clean")
			return nil
		}
	}

	failed := 0
	for _, id := range ids {
		if err := o.Clean(id); err != nil {
			failed++
			output.Errorf("%v", err)
			continue
		}
		output.Successf("%s cleaned", id)
	}
	if failed > 0 {
		return errs.Usagef("%d agent(s) failed to clean", failed)
	}
	return nil
}

// allAgentIDs unions live windows with worktree directories so clean
// --all also catches orphans on either side.
func allAgentIDs(o orchestratorLike) []string {
	seen := map[string]bool{}
	for _, a := range o.ListAgents() {
		seen[a.ID] = true
	}
	if entries, err := os.ReadDir(o.Workspace().Root()); err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
			}
		}
	}
	ids := make([]string, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
