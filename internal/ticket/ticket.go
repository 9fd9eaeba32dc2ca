// Package ticket fetches task descriptions from an external tracker via
// a user-configured lookup command. Lookups are best-effort: every
// failure path degrades to the reference itself so launches never abort
// on tracker trouble.
package ticket

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/herd-sh/herd/internal/ident"
)

// CommandFetcher runs a configured shell command with the ticket
// reference appended and expects a JSON object {"title": ..,
// "description": ..} on stdout.
type CommandFetcher struct {
	// Command is the lookup program and its leading arguments, e.g.
	// ["linear", "issue", "view", "--json"]. Empty means no tracker is
	// configured and every lookup degrades immediately.
	Command []string

	// Timeout bounds a single lookup. Zero means 10s.
	Timeout time.Duration
}

type payload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Fetch implements ident.Fetcher. It never returns an error: missing
// configuration, a dead binary, a timeout, or unparseable output all
// degrade to {Title: reference}.
func (f *CommandFetcher) Fetch(reference string) ident.Ticket {
	fallback := ident.Ticket{Title: reference}
	if len(f.Command) == 0 {
		return fallback
	}

	timeout := f.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	args := append(append([]string{}, f.Command[1:]...), reference)
	cmd := exec.Command(f.Command[0], args...)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		slog.Debug("ticket lookup failed to start", "ref", reference, "err", err)
		return fallback
	}
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			slog.Debug("ticket lookup failed", "ref", reference, "err", err)
			return fallback
		}
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		slog.Debug("ticket lookup timed out", "ref", reference)
		return fallback
	}

	var p payload
	if err := json.Unmarshal(stdout.Bytes(), &p); err != nil {
		slog.Debug("ticket lookup returned unparseable output", "ref", reference, "err", err)
		return fallback
	}
	if strings.TrimSpace(p.Title) == "" {
		return fallback
	}
	return ident.Ticket{Title: p.Title, Description: p.Description}
}
