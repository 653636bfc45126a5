package journal

import (
	"fmt"
	"time"
)

// TimestampLayout is the wall-clock format used by journal marker lines,
// e.g. "27-Sep-2025 13:08:35.485".
const TimestampLayout = "02-Jan-2006 15:04:05.000"

// Category classifies a journal entry. Exactly one category is assigned
// per entry by the categorizer's ordered rule list.
type Category string

const (
	CategoryError       Category = "Error"
	CategoryPerformance Category = "Performance"
	CategoryCommand     Category = "Command"
	CategoryModelInfo   Category = "ModelInfo"
	CategoryMemory      Category = "Memory"
	CategoryOther       Category = "Other"
)

// Categories returns all categories in display order.
func Categories() []Category {
	return []Category{
		CategoryError,
		CategoryPerformance,
		CategoryCommand,
		CategoryModelInfo,
		CategoryMemory,
		CategoryOther,
	}
}

// ParseCategory converts a user-supplied string to a Category.
// The empty string and "all" are accepted and return ("", nil),
// meaning "no category restriction".
func ParseCategory(s string) (Category, error) {
	if s == "" || s == "all" {
		return "", nil
	}
	for _, c := range Categories() {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Source identifies which stream produced an entry.
type Source string

const (
	// SourcePrimary is the primary journal file.
	SourcePrimary Source = "journal"

	// SourceWorker is the worker log associated with a journal.
	SourceWorker Source = "worker"
)

// Priority returns the canonical ordering rank of a source.
// Primary entries sort before worker entries at equal positions.
func (s Source) Priority() int {
	if s == SourceWorker {
		return 1
	}
	return 0
}

// NoDocument is the sentinel DocumentID for entries that occurred before
// any document context was established.
const NoDocument = ""

// Entry is one logical record within a journal or worker log.
//
// Entries are immutable once constructed. The canonical order across
// sources is (source priority, sequence); Seq values are contiguous
// integers starting at zero within a single source.
type Entry struct {
	// Seq is the monotonic position within the entry's source. It is
	// the stable ordering key even when timestamps repeat or are absent.
	Seq int `json:"seq" yaml:"seq"`

	// Timestamp is the wall-clock instant of the entry. The zero value
	// means the source line carried no timestamp.
	Timestamp time.Time `json:"timestamp,omitzero" yaml:"timestamp,omitempty"`

	// Category is the semantic classification assigned by the categorizer.
	Category Category `json:"category" yaml:"category"`

	// Body is the full untruncated entry text, embedded newlines preserved.
	Body string `json:"body" yaml:"body"`

	// DocumentID identifies the document active when this entry occurred,
	// or NoDocument if no document context had been established yet.
	DocumentID string `json:"document_id,omitempty" yaml:"document_id,omitempty"`

	// Source is the stream that produced the entry.
	Source Source `json:"source" yaml:"source"`
}

// Timestamped reports whether the entry carries a wall-clock instant.
func (e Entry) Timestamped() bool {
	return !e.Timestamp.IsZero()
}

// Header holds journal-level metadata extracted from the preamble and
// early marker lines. Fields are empty strings when the journal did not
// declare them.
type Header struct {
	Build    string `json:"build,omitempty" yaml:"build,omitempty"`
	Branch   string `json:"branch,omitempty" yaml:"branch,omitempty"`
	Release  string `json:"release,omitempty" yaml:"release,omitempty"`
	Username string `json:"username,omitempty" yaml:"username,omitempty"`
}

// DocumentContext describes one document referenced within a journal and
// the half-open [FirstSeq, LastSeq) range of entries during which it was
// active. Contexts never overlap: a document stays active until another
// document supersedes it, a close event is recognized, or the stream ends.
type DocumentContext struct {
	// ID is the document identifier (the decoded model path).
	ID string `json:"id" yaml:"id"`

	// DisplayName is the short name used in summaries (the path base).
	DisplayName string `json:"display_name" yaml:"display_name"`

	// FirstSeq is the sequence of the entry that activated the document.
	FirstSeq int `json:"first_seq" yaml:"first_seq"`

	// LastSeq is one past the last entry that belongs to this context.
	LastSeq int `json:"last_seq" yaml:"last_seq"`
}
