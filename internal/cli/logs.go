package cli

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/herd-sh/herd/internal/errs"
	"github.com/herd-sh/herd/internal/orchestrate"
)

func newLogsCmd() *cobra.Command {
	var follow bool

	cmd := &cobra.Command{
		Use:   "logs <agent>",
		Short: "Print an agent's log file",
		Long: `Print the agent's append-only log (written by headless runs). With
--follow, keep printing as the log grows until interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLogs(args[0], follow)
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep tailing as the log grows")

	return cmd
}

func runLogs(id string, follow bool) error {
	o, err := newOrchestrator()
	if err != nil {
		return err
	}

	logPath := filepath.Join(o.Workspace().PathFor(id), orchestrate.LogFile)
	f, err := os.Open(logPath)
	if err != nil {
		return errs.Usagef("no log for agent %q (%s)", id, logPath)
	}
	defer f.Close()

	if _, err := io.Copy(os.Stdout, f); err != nil {
		return err
	}
	if !follow {
		return nil
	}
	return followFile(f, logPath)
}

// followFile blocks printing appended bytes until the caller interrupts.
// Concurrent appends from the agent are expected; reads always resume
// from the last printed offset.
func followFile(f *os.File, path string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()
	if err := watcher.Add(path); err != nil {
		return err
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if ev.Has(fsnotify.Write) {
				if _, err := io.Copy(os.Stdout, f); err != nil {
					return err
				}
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				return fmt.Errorf("log file went away: %s", path)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-interrupt:
			return nil
		}
	}
}
