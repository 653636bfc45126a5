// Package worker locates and segments the worker log associated with a
// primary journal.
//
// The worker log is a secondary stream on the same session timeline,
// written by background processes. Its format is simpler than the
// journal's: one `timestamp LEVEL message` record per line. A missing
// worker log is a valid state, not an error.
package worker

import (
	"context"
	"os"
	"strings"
	"time"

	"revtrace/internal/journal"
	"revtrace/internal/segment"
)

// The worker log shares the journal's directory and name, with the
// "journal" token replaced, e.g. journal.0012.txt -> worker1.log.0012.txt.
const (
	journalToken = "journal"
	workerToken  = "worker1.log"
)

// LogPath maps a primary journal path to its worker log counterpart by
// naming convention. The mapping is purely lexical; the returned path
// may not exist.
func LogPath(journalPath string) string {
	return strings.Replace(journalPath, journalToken, workerToken, 1)
}

// Locate resolves the worker log for journalPath and reports whether it
// exists. Absence is silently accepted; callers log it as informational.
func Locate(journalPath string) (string, bool) {
	p := LogPath(journalPath)
	if info, err := os.Stat(p); err != nil || info.IsDir() {
		return p, false
	}
	return p, true
}

// recordParts splits a worker line into date, clock time, and the rest.
const recordParts = 3

// Segment splits worker log text into raw entries.
//
// Each line is `timestamp LEVEL message`; the level token is folded into
// the body so downstream categorization sees it. Lines that do not have
// all three parts are skipped (the worker process writes no multi-line
// records). Sequences are contiguous from zero within this source.
func Segment(ctx context.Context, text string) ([]segment.RawEntry, error) {
	var entries []segment.RawEntry

	for i, line := range strings.Split(text, "\n") {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}

		ts, rest := splitTimestamp(line)
		entries = append(entries, segment.RawEntry{
			Seq:       len(entries),
			Timestamp: ts,
			Body:      rest,
		})
	}
	return entries, nil
}

// splitTimestamp peels a leading journal-format timestamp off a worker
// record. Records without a parseable timestamp keep their full text and
// inherit ordering from sequence only.
func splitTimestamp(line string) (time.Time, string) {
	parts := strings.SplitN(line, " ", recordParts)
	if len(parts) < 2 {
		return time.Time{}, line
	}

	// Worker timestamps are two tokens: date and clock time.
	candidate := parts[0] + " " + parts[1]
	ts, err := time.Parse(journal.TimestampLayout, candidate)
	if err != nil {
		return time.Time{}, line
	}
	if len(parts) == recordParts {
		return ts, parts[2]
	}
	return ts, ""
}
