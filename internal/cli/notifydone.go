package cli

import (
	"github.com/spf13/cobra"

	"github.com/herd-sh/herd/internal/notify"
)

// notify-done is the hook headless command chains invoke when the task
// exits. Hidden: users never call it directly.
func newNotifyDoneCmd() *cobra.Command {
	return &cobra.Command{
		Use:    "notify-done <agent>",
		Hidden: true,
		Args:   cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			// Fire-and-forget by contract: never fail the chain.
			notify.New(cfg.Notifications).Notify(notify.EventAgentDone, args[0], "headless task finished")
		},
	}
}
