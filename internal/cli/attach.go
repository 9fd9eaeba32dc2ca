package cli

import (
	"github.com/spf13/cobra"
)

func newAttachCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach [agent]",
		Short: "Attach the terminal to an agent's window",
		Long: `Attach to the shared session, selecting the named agent's window.
Without an agent name, attaches to whatever window is current.

When run without a controlling terminal (for example from inside
another agent), herd scripts a supported terminal application to open
a tab that attaches instead.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o, err := newOrchestrator()
			if err != nil {
				return err
			}
			id := ""
			if len(args) == 1 {
				id = args[0]
			}
			return o.Attach(id)
		},
	}
	return cmd
}
