package cli

import (
	"github.com/spf13/cobra"

	"github.com/herd-sh/herd/internal/output"
)

func newStopCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stop <agent>",
		Short: "Stop an agent, keeping its branch and worktree",
		Long: `Interrupt the agent's process and kill its window. The branch and
worktree stay behind as recoverable work product; use 'herd clean' to
remove them too.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator()
			if err != nil {
				return err
			}
			if err := o.Stop(args[0]); err != nil {
				return err
			}
			output.Successf("%s stopped", args[0])
			return nil
		},
	}
	return cmd
}
