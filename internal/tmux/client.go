// Package tmux models agent sessions as named windows inside one shared
// tmux session, wrapping the tmux binary.
package tmux

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// Runner executes tmux commands. The concrete Client shells out; tests
// substitute a fake.
type Runner interface {
	Run(args ...string) (string, error)
	RunSilent(args ...string) error
	RunInput(stdin string, args ...string) error
}

// Client runs tmux commands locally.
type Client struct{}

// NewClient creates a new tmux client.
func NewClient() *Client {
	return &Client{}
}

// Run executes a tmux command and returns trimmed stdout.
func (c *Client) Run(args ...string) (string, error) {
	cmd := exec.Command("tmux", args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("tmux %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}

// RunSilent executes a tmux command ignoring output.
func (c *Client) RunSilent(args ...string) error {
	_, err := c.Run(args...)
	return err
}

// RunInput executes a tmux command feeding stdin from a string.
func (c *Client) RunInput(stdin string, args ...string) error {
	cmd := exec.Command("tmux", args...)
	cmd.Stdin = strings.NewReader(stdin)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("tmux %s: %w: %s", strings.Join(args, " "), err, stderr.String())
	}
	return nil
}

// IsInstalled checks if tmux is available.
func IsInstalled() bool {
	_, err := exec.LookPath("tmux")
	return err == nil
}

// EnsureInstalled returns an error if tmux is not installed.
func EnsureInstalled() error {
	if !IsInstalled() {
		return errors.New("tmux is not installed. Install it with: brew install tmux (macOS) or apt install tmux (Linux)")
	}
	return nil
}

// InTmux returns true if currently inside a tmux session.
func InTmux() bool {
	return os.Getenv("TMUX") != ""
}

// Attach attaches the invoking terminal to a target, or switches the
// current client when already inside tmux.
func Attach(target string) error {
	if InTmux() {
		cmd := exec.Command("tmux", "switch-client", "-t", target)
		return cmd.Run()
	}

	cmd := exec.Command("tmux", "attach-session", "-t", target)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
