// Package category assigns exactly one semantic category to each raw
// journal entry.
//
// Rules are an ordered list of pure (predicate, category) pairs evaluated
// by explicit iteration; the first match wins. The rule order NEVER
// changes after construction: categories are not mutually exclusive by
// content (a slow command matches both the Command and Performance
// signatures), so the order is itself part of the contract.
package category

import (
	"regexp"
	"strconv"
	"time"

	"revtrace/internal/journal"
)

// DefaultThreshold is the duration above which an operation counts as a
// performance problem (the "big gap"). Chosen default: 5 seconds.
const DefaultThreshold = 5000 * time.Millisecond

var (
	errorRe = regexp.MustCompile(`(?i)unrecoverable error|exception|api_error|error posted|\berror\b[:\s]|\berror\b$`)

	// durationRe matches explicit operation durations, e.g.
	// "Duration: 45000ms SyncWithCentral".
	durationRe = regexp.MustCompile(`(?i)duration:\s*([0-9]+(?:\.[0-9]+)?)\s*ms`)

	// gapRe matches the journal's big-gap annotation, which records the
	// gap in seconds, e.g. "5.23!!!BIG_GAP".
	gapRe = regexp.MustCompile(`([0-9]+(?:\.[0-9]+)?)!!!`)

	bigGapMarker = regexp.MustCompile(`BIG_GAP`)

	modelInfoRe = regexp.MustCompile(`ModelPath Created|ID_REVIT_FILE_CLOSE`)
	commandRe   = regexp.MustCompile(`(?i)^command:|Jrn\.Command`)
	memoryRe    = regexp.MustCompile(`RAM Statistics|VM Statistics|Delta VM|Delta RAM`)
)

// Rule is one ordered categorization rule.
type Rule struct {
	// Name identifies the rule in diagnostics and tests.
	Name string

	// Category is assigned when Match reports true.
	Category journal.Category

	// Match is a pure predicate over the entry body.
	Match func(body string) bool
}

// Categorizer evaluates the fixed rule list against entry bodies.
// Categorization is a pure function of the body and the rule order:
// re-categorizing the same body always yields the same category.
type Categorizer struct {
	rules     []Rule
	threshold time.Duration
}

// Option configures a Categorizer.
type Option func(*Categorizer)

// WithThreshold sets the performance duration threshold.
// Non-positive values keep the default.
func WithThreshold(d time.Duration) Option {
	return func(c *Categorizer) {
		if d > 0 {
			c.threshold = d
		}
	}
}

// New creates a Categorizer with the fixed rule order:
// Error, Performance, ModelInfo, Command, Memory.
//
// ModelInfo precedes Command so that document close commands classify as
// ModelInfo and remain visible to the document correlator.
func New(opts ...Option) *Categorizer {
	c := &Categorizer{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(c)
	}

	c.rules = []Rule{
		{
			Name:     "error-signature",
			Category: journal.CategoryError,
			Match:    errorRe.MatchString,
		},
		{
			Name:     "big-gap",
			Category: journal.CategoryPerformance,
			Match: func(body string) bool {
				d, ok := Duration(body)
				return ok && d > c.threshold
			},
		},
		{
			Name:     "model-marker",
			Category: journal.CategoryModelInfo,
			Match:    modelInfoRe.MatchString,
		},
		{
			Name:     "command-marker",
			Category: journal.CategoryCommand,
			Match:    commandRe.MatchString,
		},
		{
			Name:     "memory-statistics",
			Category: journal.CategoryMemory,
			Match:    memoryRe.MatchString,
		},
	}
	return c
}

// Categorize assigns the category of the first matching rule, or Other
// when no rule matches.
func (c *Categorizer) Categorize(body string) journal.Category {
	for _, r := range c.rules {
		if r.Match(body) {
			return r.Category
		}
	}
	return journal.CategoryOther
}

// Rules returns the rule list in evaluation order.
// Exposed for auditability and tests; callers must not mutate it.
func (c *Categorizer) Rules() []Rule {
	return c.rules
}

// Threshold returns the configured performance threshold.
func (c *Categorizer) Threshold() time.Duration {
	return c.threshold
}

// Duration extracts the measured operation duration from an entry body.
//
// Recognized signatures, in order: an explicit "Duration: <n>ms" value,
// and the "<seconds>!!!" big-gap annotation. Returns ok=false when no
// signature is present or the number does not parse; an unparseable
// duration demotes the entry to a lower-priority category, it never
// aborts the pass.
func Duration(body string) (time.Duration, bool) {
	if m := durationRe.FindStringSubmatch(body); m != nil {
		ms, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(ms * float64(time.Millisecond)), true
	}
	if bigGapMarker.MatchString(body) {
		m := gapRe.FindStringSubmatch(body)
		if m == nil {
			return 0, false
		}
		sec, err := strconv.ParseFloat(m[1], 64)
		if err != nil {
			return 0, false
		}
		return time.Duration(sec * float64(time.Second)), true
	}
	return 0, false
}
