// Package cli wires the cobra command surface over the orchestrator.
package cli

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/herd-sh/herd/internal/config"
	"github.com/herd-sh/herd/internal/errs"
	"github.com/herd-sh/herd/internal/notify"
	"github.com/herd-sh/herd/internal/orchestrate"
	"github.com/herd-sh/herd/internal/output"
	"github.com/herd-sh/herd/internal/ticket"
	"github.com/herd-sh/herd/internal/tmux"
	"github.com/herd-sh/herd/internal/workspace"
)

var (
	cfgFile string
	cfg     *config.Config
	verbose bool

	// Build information - set via ldflags.
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "herd",
	Short: "herd - run parallel AI coding agents in tmux windows and git worktrees",
	Long: `herd supervises ephemeral coding agents. Each agent gets its own git
worktree on a dedicated branch and its own window in one shared tmux
session, so many agents can run in parallel without stepping on each
other.

Quick Start:
  herd start "Fix the auth bug"      # Launch an agent on a new branch
  herd start HEY-123 --headless      # Run a ticket non-interactively
  herd ls                            # Show live agent status
  herd attach fix-the-auth-bug       # Jump into an agent's window
  herd clean fix-the-auth-bug        # Kill window and remove worktree`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

		var err error
		cfg, err = config.Load(cfgFile)
		if err != nil {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/herd/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newStartCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newAttachCmd())
	rootCmd.AddCommand(newStopCmd())
	rootCmd.AddCommand(newCleanCmd())
	rootCmd.AddCommand(newLogsCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newNotifyDoneCmd())
}

// Execute runs the root command. All failures surface as single-line
// messages; the process exits 1 on any error.
func Execute() error {
	if err := rootCmd.Execute(); err != nil {
		output.Errorf("%v", err)
		return err
	}
	return nil
}

// newOrchestrator builds the orchestrator for the repository containing
// the current directory.
func newOrchestrator() (*orchestrate.Orchestrator, error) {
	if err := tmux.EnsureInstalled(); err != nil {
		return nil, err
	}
	repoRoot, err := workspace.RepoRootFromCwd()
	if err != nil {
		return nil, errs.Usagef("%v", err)
	}

	ws := workspace.New(repoRoot, cfg.WorkspaceDir)
	registry := tmux.NewRegistry(tmux.NewClient(), cfg.Session, cfg.Palette)
	fetcher := &ticket.CommandFetcher{Command: cfg.TicketCommand}
	notifier := notify.New(cfg.Notifications)

	return orchestrate.New(cfg, registry, ws, fetcher, notifier), nil
}
