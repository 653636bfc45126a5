// Package segment splits resolved journal text into ordered raw entries.
//
// The journal format marks logical entries with a recognizable line-start
// marker: a timestamp line (optionally prefixed with the 'C/'H/'E comment
// tags) or a Jrn.* statement. Lines that match neither are continuation
// lines of the previous entry and are appended to its body verbatim,
// embedded newlines preserved. Lines before the first marker form the
// preamble, from which header metadata is extracted.
package segment

import (
	"context"
	"regexp"
	"strings"
	"time"

	"revtrace/internal/journal"
)

// RawEntry is a segmented but not yet categorized entry.
type RawEntry struct {
	// Seq is the zero-based contiguous position within the source.
	Seq int

	// Timestamp is the marker timestamp, or the zero value when the
	// marker carried none (Jrn.* statements).
	Timestamp time.Time

	// Body is the entry text after the marker, with continuation lines
	// appended. Never truncated.
	Body string
}

// Result is the outcome of one segmentation pass.
type Result struct {
	// Preamble holds the raw lines before the first recognized marker.
	// A marker-less file yields its whole content here and zero entries.
	Preamble string

	// Header is the journal-level metadata found during the pass.
	Header journal.Header

	// Entries are the raw entries in source order.
	Entries []RawEntry
}

var (
	// timestampMarker matches lines that open with a journal timestamp,
	// e.g. `'C 27-Sep-2025 13:08:35.485; body` or a bare timestamp.
	timestampMarker = regexp.MustCompile(`^'?[CHE]?\s*(\d{2}-[A-Z][a-z]{2}-\d{4} \d{2}:\d{2}:\d{2}\.\d{3})[;:]?\s?(.*)$`)

	// statementMarker matches Jrn.* statement lines, which open an entry
	// without a timestamp of their own.
	statementMarker = regexp.MustCompile(`^Jrn\.`)

	buildRe    = regexp.MustCompile(`Build:\s*(.+)`)
	branchRe   = regexp.MustCompile(`Branch:\s*(.+)`)
	releaseRe  = regexp.MustCompile(`Release:\s*(.+)`)
	usernameRe = regexp.MustCompile(`Username\s*,?\s*"([^"]+)"`)
)

// ctxCheckInterval is how many lines are processed between cancellation
// checks during a segmentation pass.
const ctxCheckInterval = 1024

// Split runs one deterministic segmentation pass over text.
//
// Empty input yields an empty Result, not an error. A truncated final
// entry is kept whole. The only error returned is ctx.Err() when the
// pass is cancelled; a cancelled pass yields no partial Result.
func Split(ctx context.Context, text string) (*Result, error) {
	res := &Result{}

	var (
		preamble []string
		current  *RawEntry
		body     []string
	)

	flush := func() {
		if current == nil {
			return
		}
		// Blank lines separating entries are spacing, not content.
		for len(body) > 0 && body[len(body)-1] == "" {
			body = body[:len(body)-1]
		}
		current.Body = strings.Join(body, "\n")
		res.Entries = append(res.Entries, *current)
		current = nil
		body = body[:0]
	}

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line = strings.TrimRight(line, "\r")
		scanHeader(&res.Header, line)

		if m := timestampMarker.FindStringSubmatch(line); m != nil {
			flush()
			ts, err := time.Parse(journal.TimestampLayout, m[1])
			if err != nil {
				// Marker matched but the instant is malformed; keep the
				// entry with no timestamp rather than dropping it.
				ts = time.Time{}
			}
			current = &RawEntry{Seq: len(res.Entries), Timestamp: ts}
			body = append(body, m[2])
			continue
		}

		if statementMarker.MatchString(line) {
			flush()
			current = &RawEntry{Seq: len(res.Entries)}
			body = append(body, line)
			continue
		}

		if current != nil {
			body = append(body, line)
			continue
		}
		preamble = append(preamble, line)
	}
	flush()

	// Trim the artifact of splitting trailing-newline text.
	if n := len(preamble); n > 0 && preamble[n-1] == "" && len(res.Entries) == 0 {
		preamble = preamble[:n-1]
	}
	res.Preamble = strings.Join(preamble, "\n")
	return res, nil
}

// scanHeader extracts header metadata from a single line. First match
// wins for each field; later occurrences never overwrite.
func scanHeader(h *journal.Header, line string) {
	if h.Build == "" {
		if m := buildRe.FindStringSubmatch(line); m != nil {
			h.Build = strings.TrimSpace(m[1])
		}
	}
	if h.Branch == "" {
		if m := branchRe.FindStringSubmatch(line); m != nil {
			h.Branch = strings.TrimSpace(m[1])
		}
	}
	if h.Release == "" {
		if m := releaseRe.FindStringSubmatch(line); m != nil {
			h.Release = strings.TrimSpace(m[1])
		}
	}
	if h.Username == "" {
		if m := usernameRe.FindStringSubmatch(line); m != nil {
			h.Username = m[1]
		}
	}
}
