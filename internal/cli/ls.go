package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/herd-sh/herd/internal/output"
	"github.com/herd-sh/herd/internal/tui"
)

func newLsCmd() *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "ls",
		Short: "List live agents and their status",
		Long: `List every agent window in the shared session with its derived status:
running (agent process in the foreground), idle (a plain shell is in
the foreground), or exited (the process terminated but the window
remains). Status is read fresh from tmux on every call.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLs(watch)
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "live-refreshing status view")

	return cmd
}

func runLs(watch bool) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	if watch {
		_, err := tui.New(o.ListAgents).Run()
		return err
	}

	agents := o.ListAgents()
	if len(agents) == 0 {
		fmt.Println("no agents running")
		return nil
	}

	width := 0
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		width = w
	}

	repoRoot := o.Workspace().RepoRoot
	for _, a := range agents {
		line := output.StatusLine(a.ID, a.Status)
		if width > 0 {
			line = output.Truncate(line, width)
		}
		fmt.Println(line)
		path := a.Path
		if rel, err := filepath.Rel(repoRoot, a.Path); err == nil {
			path = rel
		}
		fmt.Println(output.PathLine(path))
	}
	return nil
}
