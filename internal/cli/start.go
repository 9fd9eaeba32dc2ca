package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/herd-sh/herd/internal/errs"
	"github.com/herd-sh/herd/internal/orchestrate"
	"github.com/herd-sh/herd/internal/output"
)

// launchInput is one task to launch, from an argument or a manifest.
type launchInput struct {
	Input string `yaml:"input"`
	Name  string `yaml:"name"`
}

type manifest struct {
	Tasks []launchInput `yaml:"tasks"`
}

func newStartCmd() *cobra.Command {
	var (
		name         string
		headless     bool
		noWorkspace  bool
		baseOverride string
		manifestFile string
	)

	cmd := &cobra.Command{
		Use:   "start [input]...",
		Short: "Launch one or more agents",
		Long: `Launch agents from ticket references or free-text task descriptions.

Each input becomes one agent: a ticket reference (like HEY-123) is looked
up in the configured tracker, free text is slugified into an agent ID.
Batches launch strictly in order, so two inputs deriving the same ID
collide loudly instead of silently.

Examples:
  herd start "Fix the auth bug"
  herd start HEY-123 HEY-124 --headless
  herd start "Refactor parser" --name parser-v2
  herd start -f tasks.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStart(args, name, headless, noWorkspace, baseOverride, manifestFile)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "explicit agent name (single input only)")
	cmd.Flags().BoolVar(&headless, "headless", false, "run non-interactively, logging to the workspace")
	cmd.Flags().BoolVar(&noWorkspace, "no-workspace", false, "run in the repository root instead of a worktree")
	cmd.Flags().StringVar(&baseOverride, "base", "", "base branch to cut worktrees from (overrides config)")
	cmd.Flags().StringVarP(&manifestFile, "file", "f", "", "YAML manifest with a list of tasks")

	return cmd
}

func runStart(args []string, name string, headless, noWorkspace bool, baseOverride, manifestFile string) error {
	inputs := make([]launchInput, 0, len(args))
	for _, a := range args {
		inputs = append(inputs, launchInput{Input: a})
	}
	if manifestFile != "" {
		fromFile, err := loadManifest(manifestFile)
		if err != nil {
			return err
		}
		inputs = append(inputs, fromFile...)
	}

	if len(inputs) == 0 {
		return errs.Usagef("nothing to launch (give an input or --file)")
	}
	if name != "" {
		if len(inputs) > 1 {
			return errs.Usagef("--name applies to a single input, got %d", len(inputs))
		}
		inputs[0].Name = name
	}
	if baseOverride != "" {
		cfg.BaseBranch = baseOverride
	}

	o, err := newOrchestrator()
	if err != nil {
		return err
	}
	if !noWorkspace {
		if err := o.Workspace().EnsureIgnored(); err != nil {
			output.Warnf("could not update .gitignore: %v", err)
		}
	}

	mode := orchestrate.ModeInteractive
	if headless {
		mode = orchestrate.ModeHeadless
	}

	// Strictly sequential: each launch sees the duplicate state left by
	// the previous one, so identical inputs in one batch collide loudly.
	failed := 0
	for _, in := range inputs {
		handle, err := o.Launch(in.Input, orchestrate.Options{
			Mode:          mode,
			NameOverride:  in.Name,
			SkipWorkspace: noWorkspace,
		})
		if err != nil {
			failed++
			output.Errorf("%v", err)
			continue
		}
		output.Successf("%s launched (%s)", handle.ID, handle.Mode)
		if handle.Workspace != "" {
			fmt.Println(output.PathLine(handle.Workspace))
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d launches failed", failed, len(inputs))
	}
	return nil
}

func loadManifest(path string) ([]launchInput, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Usagef("reading manifest: %v", err)
	}
	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, errs.Usagef("parsing manifest %s: %v", path, err)
	}
	var tasks []launchInput
	for _, t := range m.Tasks {
		if t.Input == "" {
			return nil, errs.Usagef("manifest %s: task missing 'input'", path)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}
