// Package workspace provisions isolated git worktrees, one per agent.
// A worktree binds an agent's branch to a directory under the workspace
// root; branch and worktree deliberately outlive the agent's tmux window
// so in-progress work is recoverable.
package workspace

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// GitRunner executes git in a directory. Injectable for tests.
type GitRunner func(dir string, args ...string) (string, error)

func runGit(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return strings.TrimSpace(stdout.String()), nil
}

// Provisioner creates and removes agent worktrees under one workspace
// root inside the repository.
type Provisioner struct {
	// RepoRoot is the main repository checkout.
	RepoRoot string
	// DirName is the workspace root directory name, relative to RepoRoot.
	DirName string

	git GitRunner
}

// New creates a Provisioner for the repository at repoRoot.
func New(repoRoot, dirName string) *Provisioner {
	return &Provisioner{RepoRoot: repoRoot, DirName: dirName, git: runGit}
}

// NewWithRunner creates a Provisioner with an injected git runner.
func NewWithRunner(repoRoot, dirName string, git GitRunner) *Provisioner {
	return &Provisioner{RepoRoot: repoRoot, DirName: dirName, git: git}
}

// Root returns the workspace root directory.
func (p *Provisioner) Root() string {
	return filepath.Join(p.RepoRoot, p.DirName)
}

// PathFor returns the worktree directory for an agent ID.
func (p *Provisioner) PathFor(id string) string {
	return filepath.Join(p.Root(), id)
}

// Provision creates the worktree for (id, branch) cut from baseRef.
// Idempotent: an existing worktree directory is returned as-is so
// repeated launches never destroy in-progress work. Branching prefers
// the remote tracking form of baseRef; if that fails (typically because
// the branch already exists locally from a prior partial run) it falls
// back to attaching the worktree to the existing local branch.
func (p *Provisioner) Provision(id, branch, baseRef string) (string, error) {
	path := p.PathFor(id)
	if _, err := os.Stat(path); err == nil {
		slog.Warn("workspace already exists, reusing", "id", id, "path", path)
		return path, nil
	}

	if err := os.MkdirAll(p.Root(), 0o755); err != nil {
		return "", fmt.Errorf("creating workspace root: %w", err)
	}

	_, err := p.git(p.RepoRoot, "worktree", "add", path, "-b", branch, "origin/"+baseRef)
	if err == nil {
		return path, nil
	}
	slog.Debug("worktree add from remote base failed, trying local branch", "branch", branch, "err", err)

	if _, ferr := p.git(p.RepoRoot, "worktree", "add", path, branch); ferr != nil {
		return "", fmt.Errorf("creating worktree for %q: %w (fallback to local branch: %v)", id, err, ferr)
	}
	return path, nil
}

// Teardown removes the worktree for id. Idempotent: a missing worktree
// is already clean. Removal is forced; this is fire-and-forget cleanup,
// not a safety checkpoint. Returns true when the workspace is gone.
func (p *Provisioner) Teardown(id string) bool {
	path := p.PathFor(id)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return true
	}

	if _, err := p.git(p.RepoRoot, "worktree", "remove", "--force", path); err != nil {
		slog.Warn("worktree remove failed", "id", id, "err", err)
		return false
	}

	// Best-effort metadata reclaim; failure is non-fatal.
	if _, err := p.git(p.RepoRoot, "worktree", "prune"); err != nil {
		slog.Debug("worktree prune failed", "err", err)
	}
	return true
}

// EnsureIgnored adds the workspace root to the repository's .gitignore
// if it is not already there. One-time idempotent setup.
func (p *Provisioner) EnsureIgnored() error {
	entry := p.DirName + "/"
	ignorePath := filepath.Join(p.RepoRoot, ".gitignore")

	data, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == entry || trimmed == p.DirName {
			return nil
		}
	}

	f, err := os.OpenFile(ignorePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening .gitignore: %w", err)
	}
	defer f.Close()

	prefix := ""
	if len(data) > 0 && !bytes.HasSuffix(data, []byte("\n")) {
		prefix = "\n"
	}
	if _, err := fmt.Fprintf(f, "%s%s\n", prefix, entry); err != nil {
		return fmt.Errorf("appending to .gitignore: %w", err)
	}
	return nil
}

// RepoRootFromCwd locates the main repository root for the current
// directory. Inside a worktree it resolves to the primary checkout.
func RepoRootFromCwd() (string, error) {
	out, err := runGit("", "rev-parse", "--path-format=absolute", "--git-common-dir")
	if err != nil {
		return "", fmt.Errorf("not inside a git repository: %w", err)
	}
	// --git-common-dir points at <root>/.git for normal checkouts.
	return filepath.Dir(out), nil
}
