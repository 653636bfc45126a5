// Package query composes category, text, time, and document predicates
// over a frozen index.
//
// Filtering never mutates the underlying index; a FilterSpec is
// stateless and re-evaluated on demand. Selections are lazy, restartable
// sequences: named relative time windows are resolved against the wall
// clock each time the sequence is iterated, so repeated queries with
// "last 15 minutes" shift forward automatically.
package query

import (
	"fmt"
	"iter"
	"regexp"
	"strconv"
	"strings"
	"time"

	"revtrace/internal/index"
	"revtrace/internal/journal"
)

// Window is an optional time restriction. Either an absolute [Start,
// End] interval, or a relative Last duration resolved against "now" at
// query time. The zero Window imposes no restriction.
type Window struct {
	Start time.Time
	End   time.Time
	Last  time.Duration
}

// IsZero reports whether the window imposes no restriction.
func (w Window) IsZero() bool {
	return w.Start.IsZero() && w.End.IsZero() && w.Last == 0
}

// resolve converts the window to an absolute interval. Unbounded ends
// come back as zero times.
func (w Window) resolve(now time.Time) (time.Time, time.Time) {
	if w.Last > 0 {
		return now.Add(-w.Last), time.Time{}
	}
	return w.Start, w.End
}

var namedWindowRe = regexp.MustCompile(`^last\s+(\d+)\s*(minutes?|min|hours?|h|m)$`)

// ParseWindow parses a named relative window such as "last 15 minutes"
// or "last 1 hour". "all" and the empty string mean no restriction.
func ParseWindow(s string) (Window, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "all" {
		return Window{}, nil
	}
	m := namedWindowRe.FindStringSubmatch(s)
	if m == nil {
		return Window{}, fmt.Errorf("unrecognized time window %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Window{}, fmt.Errorf("unrecognized time window %q", s)
	}
	unit := time.Minute
	if strings.HasPrefix(m[2], "h") {
		unit = time.Hour
	}
	return Window{Last: time.Duration(n) * unit}, nil
}

// FilterSpec is one set of predicates, combined with logical AND.
// The zero FilterSpec matches every entry.
type FilterSpec struct {
	// Category restricts to one category; empty means all.
	Category journal.Category

	// Search is a case-insensitive substring match over the body.
	Search string

	// Window restricts to a time interval. Entries without timestamps
	// never match a non-zero window.
	Window Window

	// Document restricts to one document id when non-nil. Pointing at
	// journal.NoDocument selects entries with no document context.
	Document *string
}

// Engine evaluates FilterSpecs against a frozen index.
type Engine struct {
	ix  *index.Index
	now func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithNow overrides the wall clock used to resolve relative windows.
// Tests use this for deterministic window evaluation.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates a query engine over ix.
func New(ix *index.Index, opts ...Option) *Engine {
	e := &Engine{ix: ix, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select returns the entries matching ALL given specs, in canonical
// order. Composing zero specs returns the entire index. The sequence is
// lazy and restartable; each iteration re-resolves relative windows.
func (e *Engine) Select(specs ...FilterSpec) iter.Seq[journal.Entry] {
	return func(yield func(journal.Entry) bool) {
		now := e.now()
		for _, entry := range e.ix.Entries() {
			if !matchesAll(entry, specs, now) {
				continue
			}
			if !yield(entry) {
				return
			}
		}
	}
}

// Collect is Select materialized into a slice.
func (e *Engine) Collect(specs ...FilterSpec) []journal.Entry {
	out := []journal.Entry{}
	for entry := range e.Select(specs...) {
		out = append(out, entry)
	}
	return out
}

// Count returns the number of entries matching all specs.
func (e *Engine) Count(specs ...FilterSpec) int {
	n := 0
	for range e.Select(specs...) {
		n++
	}
	return n
}

func matchesAll(entry journal.Entry, specs []FilterSpec, now time.Time) bool {
	for _, spec := range specs {
		if !matches(entry, spec, now) {
			return false
		}
	}
	return true
}

func matches(entry journal.Entry, spec FilterSpec, now time.Time) bool {
	if spec.Category != "" && entry.Category != spec.Category {
		return false
	}
	if spec.Search != "" &&
		!strings.Contains(strings.ToLower(entry.Body), strings.ToLower(spec.Search)) {
		return false
	}
	if !spec.Window.IsZero() {
		if !entry.Timestamped() {
			return false
		}
		start, end := spec.Window.resolve(now)
		if !start.IsZero() && entry.Timestamp.Before(start) {
			return false
		}
		if !end.IsZero() && entry.Timestamp.After(end) {
			return false
		}
	}
	if spec.Document != nil && entry.DocumentID != *spec.Document {
		return false
	}
	return true
}
