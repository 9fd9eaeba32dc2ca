package orchestrate

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultReady(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   bool
	}{
		{"empty", "", false},
		{"shell noise", "$ ls\nREADME.md\n$", false},
		{"bare prompt", "some output\n>\n", true},
		{"prompt with spaces", "   >   \n", true},
		{"boxed prompt", "│ > try something\n", true},
		{"banner", "✻ Welcome to Claude\n", true},
		{"banner case insensitive", "WELCOME TO CLAUDE", true},
		{"shortcuts hint", "? for shortcuts", true},
		{"permissions banner", "bypassing permissions", true},
		{"prompt mid text not alone", "a > b\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DefaultReady(tt.output); got != tt.want {
				t.Errorf("DefaultReady(%q) = %v, want %v", tt.output, got, tt.want)
			}
		})
	}
}

func TestReadyPollerImmediate(t *testing.T) {
	slept := 0
	p := &ReadyPoller{
		Interval: 500 * time.Millisecond,
		Timeout:  15 * time.Second,
		Capture:  func() (string, error) { return ">\n", nil },
		IsReady:  DefaultReady,
		sleep:    func(time.Duration) { slept++ },
	}
	if !p.Wait() {
		t.Fatal("ready output should return true")
	}
	if slept != 0 {
		t.Errorf("slept %d times before an already-ready capture", slept)
	}
}

func TestReadyPollerEventuallyReady(t *testing.T) {
	captures := 0
	p := &ReadyPoller{
		Interval: 500 * time.Millisecond,
		Timeout:  15 * time.Second,
		Capture: func() (string, error) {
			captures++
			if captures < 4 {
				return "starting up...", nil
			}
			return "│ > ", nil
		},
		IsReady: DefaultReady,
		sleep:   func(time.Duration) {},
	}
	if !p.Wait() {
		t.Fatal("expected eventual readiness")
	}
	if captures != 4 {
		t.Errorf("captured %d times, want 4", captures)
	}
}

func TestReadyPollerTimesOut(t *testing.T) {
	var slept time.Duration
	p := &ReadyPoller{
		Interval: 500 * time.Millisecond,
		Timeout:  2 * time.Second,
		Capture:  func() (string, error) { return "still booting", nil },
		IsReady:  DefaultReady,
		sleep:    func(d time.Duration) { slept += d },
	}
	if p.Wait() {
		t.Fatal("never-ready output should time out")
	}
	if slept != 2*time.Second {
		t.Errorf("slept %v, want the full timeout", slept)
	}
}

func TestReadyPollerCaptureErrorsIgnored(t *testing.T) {
	captures := 0
	p := &ReadyPoller{
		Interval: 500 * time.Millisecond,
		Timeout:  15 * time.Second,
		Capture: func() (string, error) {
			captures++
			if captures == 1 {
				return "", errors.New("pane not ready")
			}
			return ">", nil
		},
		IsReady: DefaultReady,
		sleep:   func(time.Duration) {},
	}
	if !p.Wait() {
		t.Fatal("capture errors between polls should not abort the wait")
	}
}
