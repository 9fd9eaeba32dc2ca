// Package ident derives stable agent identities from task inputs.
// An identity is a short human-meaningful ID plus a branch name; it is
// never persisted, it only addresses the workspace and the tmux window.
package ident

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// MaxIDLen caps slug-derived identifiers. Long free-text inputs are
// truncated rather than rejected.
const MaxIDLen = 32

// ticketRe matches ticket references like HEY-123 or ABC2-9.
var ticketRe = regexp.MustCompile(`^[A-Z][A-Z0-9]*-[0-9]+$`)

// Ticket is what the ticket service returns for a reference. On any
// lookup failure the fetcher must degrade to {Title: reference} rather
// than return an error.
type Ticket struct {
	Title       string
	Description string
}

// Fetcher looks up a ticket reference. Implementations must not fail:
// a missing ticket, missing credentials, or network error all degrade
// to a fallback Ticket with the reference as title.
type Fetcher interface {
	Fetch(reference string) Ticket
}

// Identity is the resolved name for one agent.
type Identity struct {
	ID     string
	Branch string
	Prompt string
}

// now is swapped in tests to make fallback IDs deterministic.
var now = time.Now

// IsTicketRef reports whether input looks like a ticket reference
// (UPPERCASE-DIGITS).
func IsTicketRef(input string) bool {
	return ticketRe.MatchString(input)
}

// Slugify lowercases the input, collapses runs of non-alphanumerics to a
// single dash, trims leading/trailing dashes, and caps the result at max
// bytes. It is pure and total: any input yields a valid (possibly empty)
// slug.
func Slugify(s string, max int) string {
	var b strings.Builder
	lastDash := true // suppress leading dash
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	slug := strings.TrimRight(b.String(), "-")
	if max > 0 && len(slug) > max {
		slug = strings.TrimRight(slug[:max], "-")
	}
	return slug
}

// fallbackID synthesizes a low-collision ID when slugification produces
// nothing (input was all punctuation). The time-derived tag keeps rapid
// successive launches from colliding.
func fallbackID() string {
	return fmt.Sprintf("agent-%06d", now().UnixNano()/int64(time.Millisecond)%1000000)
}

// Resolve turns a task input into an agent identity. Resolution never
// fails: ticket lookup degrades to the reference itself, and empty slugs
// fall back to a time-tagged ID. An explicit name override always wins.
func Resolve(input, nameOverride string, fetcher Fetcher) Identity {
	id := ""
	prompt := input

	if IsTicketRef(input) {
		ref := input
		t := Ticket{Title: ref}
		if fetcher != nil {
			t = fetcher.Fetch(ref)
		}
		lowRef := strings.ToLower(ref)
		if t.Title != "" && t.Title != ref {
			slug := Slugify(t.Title, MaxIDLen-len(lowRef)-1)
			if slug != "" {
				id = lowRef + "-" + slug
			}
		}
		if id == "" {
			id = lowRef
		}
		prompt = ticketPrompt(ref, t)
	} else {
		id = Slugify(input, MaxIDLen)
		if id == "" {
			id = fallbackID()
		}
	}

	if nameOverride != "" {
		id = Slugify(nameOverride, MaxIDLen)
		if id == "" {
			id = fallbackID()
		}
	}

	return Identity{
		ID:     id,
		Branch: id,
		Prompt: prompt,
	}
}

func ticketPrompt(ref string, t Ticket) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Work on ticket %s", ref)
	if t.Title != "" && t.Title != ref {
		fmt.Fprintf(&b, ": %s", t.Title)
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "\n\n%s", t.Description)
	}
	return b.String()
}
