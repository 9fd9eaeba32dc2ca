package tmux

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeRunner records every tmux invocation and serves canned replies.
type fakeRunner struct {
	calls      [][]string
	inputs     []string
	hasSession bool
	listOut    string
	failOn     map[string]error
}

func (f *fakeRunner) Run(args ...string) (string, error) {
	f.calls = append(f.calls, args)
	if err := f.failOn[args[0]]; err != nil {
		return "", err
	}
	if args[0] == "list-windows" {
		return f.listOut, nil
	}
	return "", nil
}

func (f *fakeRunner) RunSilent(args ...string) error {
	f.calls = append(f.calls, args)
	if args[0] == "has-session" {
		if f.hasSession {
			return nil
		}
		return errors.New("no session")
	}
	if args[0] == "new-session" {
		f.hasSession = true
	}
	return f.failOn[args[0]]
}

func (f *fakeRunner) RunInput(stdin string, args ...string) error {
	f.calls = append(f.calls, args)
	f.inputs = append(f.inputs, stdin)
	return f.failOn[args[0]]
}

func (f *fakeRunner) commandsRun(name string) int {
	n := 0
	for _, c := range f.calls {
		if c[0] == name {
			n++
		}
	}
	return n
}

func windowLine(name, command, path string, dead bool) string {
	d := "0"
	if dead {
		d = "1"
	}
	return strings.Join([]string{name, command, path, d}, listSep)
}

func TestParseWindows(t *testing.T) {
	output := strings.Join([]string{
		windowLine(ControlWindow, "zsh", "/home/u", false),
		windowLine("hey-123", "node", "/repo/agents/hey-123", false),
		windowLine("fix-auth", "zsh", "/repo/agents/fix-auth", true),
		"garbage line without separator",
		"",
	}, "\n")

	got := ParseWindows(output)
	if len(got) != 2 {
		t.Fatalf("got %d windows, want 2: %+v", len(got), got)
	}
	if got[0].Name != "hey-123" || got[0].Command != "node" || got[0].Dead {
		t.Errorf("first window = %+v", got[0])
	}
	if got[1].Name != "fix-auth" || !got[1].Dead {
		t.Errorf("second window = %+v", got[1])
	}
}

func TestParseWindowsEmpty(t *testing.T) {
	if got := ParseWindows(""); len(got) != 0 {
		t.Errorf("got %+v, want none", got)
	}
}

func TestCreateProvisionsSessionOnce(t *testing.T) {
	run := &fakeRunner{}
	g := NewRegistry(run, "herd", []string{"colour39"})

	created, err := g.Create("hey-123", "/repo/agents/hey-123", "")
	if err != nil {
		t.Fatal(err)
	}
	if !created {
		t.Fatal("first create returned false")
	}
	if n := run.commandsRun("new-session"); n != 1 {
		t.Errorf("new-session run %d times, want 1", n)
	}

	run.listOut = windowLine("hey-123", "zsh", "/repo/agents/hey-123", false)
	if _, err := g.Create("other", "/repo/agents/other", ""); err != nil {
		t.Fatal(err)
	}
	if n := run.commandsRun("new-session"); n != 1 {
		t.Errorf("session recreated: new-session run %d times", n)
	}
}

func TestCreateDuplicateIsNoOp(t *testing.T) {
	run := &fakeRunner{
		hasSession: true,
		listOut:    windowLine("hey-123", "node", "/repo/agents/hey-123", false),
	}
	g := NewRegistry(run, "herd", nil)

	created, err := g.Create("hey-123", "/repo/agents/hey-123", "")
	if err != nil {
		t.Fatalf("duplicate create errored: %v", err)
	}
	if created {
		t.Error("duplicate create reported true")
	}
	if n := run.commandsRun("new-window"); n != 0 {
		t.Errorf("new-window run %d times for a duplicate", n)
	}
}

func TestCreatePassesCommand(t *testing.T) {
	run := &fakeRunner{hasSession: true}
	g := NewRegistry(run, "herd", nil)

	if _, err := g.Create("hey-123", "/work", "claude --print"); err != nil {
		t.Fatal(err)
	}
	var newWindow []string
	for _, c := range run.calls {
		if c[0] == "new-window" {
			newWindow = c
		}
	}
	if newWindow == nil {
		t.Fatal("new-window never run")
	}
	if newWindow[len(newWindow)-1] != "claude --print" {
		t.Errorf("window command not passed: %v", newWindow)
	}
	for i, arg := range newWindow {
		if arg == "-c" && newWindow[i+1] != "/work" {
			t.Errorf("working directory = %q", newWindow[i+1])
		}
	}
}

func TestColorRoundRobin(t *testing.T) {
	palette := []string{"colour39", "colour208", "colour118"}
	g := NewRegistry(&fakeRunner{}, "herd", palette)

	tests := []struct {
		n    int
		want string
	}{
		{1, "colour39"},
		{2, "colour208"},
		{3, "colour118"},
		{4, "colour39"},
		{7, "colour39"},
		{0, ""},
	}
	for _, tt := range tests {
		if got := g.Color(tt.n); got != tt.want {
			t.Errorf("Color(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestDestroyInterruptsThenKills(t *testing.T) {
	run := &fakeRunner{hasSession: true}
	g := NewRegistry(run, "herd", nil)

	if err := g.Destroy("hey-123"); err != nil {
		t.Fatal(err)
	}

	var order []string
	for _, c := range run.calls {
		order = append(order, c[0])
	}
	joined := strings.Join(order, " ")
	if !strings.Contains(joined, "send-keys kill-window") {
		t.Errorf("expected interrupt before kill, got %v", order)
	}
}

func TestPasteTextLoadsAndPastes(t *testing.T) {
	run := &fakeRunner{hasSession: true}
	g := NewRegistry(run, "herd", nil)

	prompt := "line one\nline two with \"quotes\" and $VARS\n"
	if err := g.PasteText("hey-123", prompt); err != nil {
		t.Fatal(err)
	}

	if len(run.inputs) != 1 || run.inputs[0] != prompt {
		t.Errorf("buffer content = %q, want exact prompt bytes", run.inputs)
	}
	var paste []string
	for _, c := range run.calls {
		if c[0] == "paste-buffer" {
			paste = c
		}
	}
	if paste == nil {
		t.Fatal("paste-buffer never run")
	}
	joined := strings.Join(paste, " ")
	if !strings.Contains(joined, "-d") || !strings.Contains(joined, "-t herd:hey-123") {
		t.Errorf("paste-buffer args = %v", paste)
	}
}

func TestPasteTextCleansUpOnFailure(t *testing.T) {
	run := &fakeRunner{
		hasSession: true,
		failOn:     map[string]error{"paste-buffer": fmt.Errorf("no such window")},
	}
	g := NewRegistry(run, "herd", nil)

	if err := g.PasteText("gone", "text"); err == nil {
		t.Fatal("expected error")
	}
	if n := run.commandsRun("delete-buffer"); n != 1 {
		t.Errorf("delete-buffer run %d times, want 1", n)
	}
}

func TestListAllErrorReadsAsEmpty(t *testing.T) {
	run := &fakeRunner{failOn: map[string]error{"list-windows": errors.New("server not running")}}
	g := NewRegistry(run, "herd", nil)

	if got := g.ListAll(); got != nil {
		t.Errorf("got %+v, want nil", got)
	}
	if g.Exists("anything") {
		t.Error("Exists true on backing failure")
	}
	if g.HasWindows() {
		t.Error("HasWindows true on backing failure")
	}
}

func TestSendKeysLiteral(t *testing.T) {
	run := &fakeRunner{hasSession: true}
	g := NewRegistry(run, "herd", nil)

	if err := g.SendKeys("hey-123", "-dashes --and --flags", true); err != nil {
		t.Fatal(err)
	}

	first := run.calls[0]
	joined := strings.Join(first, " ")
	if !strings.Contains(joined, "-l -- -dashes --and --flags") {
		t.Errorf("keys not sent literally: %v", first)
	}
	last := run.calls[len(run.calls)-1]
	if last[len(last)-1] != "C-m" {
		t.Errorf("enter not sent: %v", last)
	}
}

func TestTargetOf(t *testing.T) {
	g := NewRegistry(&fakeRunner{}, "herd", nil)
	if got := g.TargetOf("hey-123"); got != "herd:hey-123" {
		t.Errorf("TargetOf = %q", got)
	}
}
