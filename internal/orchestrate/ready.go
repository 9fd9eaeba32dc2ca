package orchestrate

import (
	"regexp"
	"strings"
	"time"
)

// bannerRe recognizes the interactive agent's startup banner. Matching
// any of these means the process is drawing its UI and can take input.
var bannerRe = regexp.MustCompile(`(?i)(welcome to claude|\? for shortcuts|bypassing permissions)`)

// DefaultReady reports whether captured window output shows an
// input-ready agent: either a bare prompt-indicator line or the startup
// banner. There is no structured readiness protocol; this is a fuzzy
// match over screen text.
func DefaultReady(output string) bool {
	if bannerRe.MatchString(output) {
		return true
	}
	for _, line := range strings.Split(output, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == ">" || strings.HasPrefix(trimmed, "│ >") {
			return true
		}
	}
	return false
}

// ReadyPoller waits for a freshly started interactive process to show
// readiness. Capture, predicate, and sleep are injectable so tests can
// simulate instantly-ready or never-ready output without real delays.
type ReadyPoller struct {
	Interval time.Duration
	Timeout  time.Duration
	Capture  func() (string, error)
	IsReady  func(string) bool

	// sleep is stubbed in tests.
	sleep func(time.Duration)
}

// NewReadyPoller builds a poller with the default cadence.
func NewReadyPoller(timeout time.Duration, capture func() (string, error)) *ReadyPoller {
	return &ReadyPoller{
		Interval: 500 * time.Millisecond,
		Timeout:  timeout,
		Capture:  capture,
		IsReady:  DefaultReady,
		sleep:    time.Sleep,
	}
}

// Wait polls until the predicate matches or the timeout elapses.
// Returns false on timeout; callers treat that as a warning, not a
// failure, and proceed anyway. Capture errors are ignored between
// polls: the window may simply not have output yet.
func (p *ReadyPoller) Wait() bool {
	if p.sleep == nil {
		p.sleep = time.Sleep
	}
	var elapsed time.Duration
	for {
		out, err := p.Capture()
		if err == nil && p.IsReady(out) {
			return true
		}
		if elapsed >= p.Timeout {
			return false
		}
		p.sleep(p.Interval)
		elapsed += p.Interval
	}
}
