// Package correlate tracks the rolling "active document" context across
// an ordered journal pass.
//
// The correlator is an explicit state machine over {NoDocument,
// DocumentActive(id)} threaded through the enrichment pass, not a global
// mutable field: each load constructs a fresh Correlator, so no state
// leaks across reloads. Correctness depends on feeding entries strictly
// in sequence order.
package correlate

import (
	"net/url"
	"regexp"
	"strings"

	"revtrace/internal/journal"
)

var (
	// openRe recognizes a document open/activate event and captures the
	// model path, e.g. `ModelPath Created ... Path = "Project%20A.rvt"`.
	openRe = regexp.MustCompile(`ModelPath Created.*Path = "([^"]+\.rvt)"`)

	// closeRe recognizes a close event for the active document.
	closeRe = regexp.MustCompile(`ID_REVIT_FILE_CLOSE`)
)

// Correlator carries the active-document state of one linear pass.
type Correlator struct {
	active   string
	contexts []journal.DocumentContext
}

// New returns a Correlator in the NoDocument state.
func New() *Correlator {
	return &Correlator{}
}

// Apply advances the state machine with one entry and returns the
// DocumentID that entry inherits.
//
// A ModelInfo open event activates its document, superseding any current
// one. A ModelInfo close event deactivates the current document; the
// close entry itself still belongs to the document it closes. All other
// entries inherit the current state unchanged. Must be called in strict
// sequence order.
func (c *Correlator) Apply(seq int, cat journal.Category, body string) string {
	if cat != journal.CategoryModelInfo {
		return c.active
	}

	if m := openRe.FindStringSubmatch(body); m != nil {
		id := decodePath(m[1])
		c.closeActive(seq)
		c.active = id
		c.contexts = append(c.contexts, journal.DocumentContext{
			ID:          id,
			DisplayName: baseName(id),
			FirstSeq:    seq,
		})
		return c.active
	}

	if closeRe.MatchString(body) && c.active != journal.NoDocument {
		id := c.active
		c.closeActive(seq + 1)
		c.active = journal.NoDocument
		return id
	}

	return c.active
}

// Finish closes any document still active at end-of-stream and returns
// the completed contexts in activation order. endSeq is one past the
// last entry sequence. Close events are not reliably present in every
// journal; "active until stream end" is the safe default.
func (c *Correlator) Finish(endSeq int) []journal.DocumentContext {
	c.closeActive(endSeq)
	c.active = journal.NoDocument
	return c.contexts
}

// Active returns the id of the currently active document, or NoDocument.
func (c *Correlator) Active() string {
	return c.active
}

func (c *Correlator) closeActive(lastSeq int) {
	if c.active == journal.NoDocument || len(c.contexts) == 0 {
		return
	}
	c.contexts[len(c.contexts)-1].LastSeq = lastSeq
}

// baseName returns the last element of a model path. Journals record
// Windows paths, so both separators count.
func baseName(p string) string {
	if i := strings.LastIndexAny(p, `/\`); i >= 0 {
		return p[i+1:]
	}
	return p
}

// decodePath unescapes percent-encoded model paths the way the journal
// writes them.
func decodePath(p string) string {
	decoded, err := url.PathUnescape(p)
	if err != nil {
		return p
	}
	return decoded
}
