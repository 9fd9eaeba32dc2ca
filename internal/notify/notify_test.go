package notify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNotifyDisabledDoesNothing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.log")
	n := New(Config{
		Enabled: false,
		Log:     LogConfig{Enabled: true, Path: path},
	})

	n.Notify(EventAgentStarted, "hey-123", "agent started")

	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("disabled notifier still wrote the log")
	}
}

func TestNotifyAppendsLog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "events.log")
	n := New(Config{
		Enabled: true,
		Log:     LogConfig{Enabled: true, Path: path},
	})

	n.Notify(EventAgentDone, "hey-123", "headless task finished")
	n.Notify(EventAgentStopped, "fix-auth", "agent stopped")

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines: %q", len(lines), data)
	}
	if !strings.Contains(lines[0], string(EventAgentDone)) || !strings.Contains(lines[0], "hey-123") {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(lines[1], string(EventAgentStopped)) || !strings.Contains(lines[1], "fix-auth") {
		t.Errorf("second line = %q", lines[1])
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if !cfg.Enabled || !cfg.Desktop.Enabled {
		t.Errorf("defaults should enable desktop notifications: %+v", cfg)
	}
	if cfg.Log.Enabled {
		t.Error("log channel should default off")
	}
}
