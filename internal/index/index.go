// Package index holds the frozen in-memory store of processed entries.
//
// An Index is built once per load and never mutated afterwards: the
// derived lookup structures (by category, by document, time-sorted) are
// produced during the single construction pass, and a reload constructs
// a new independent Index rather than touching the old one. Post-freeze
// reads are therefore safe for unlimited concurrent readers without
// locking.
package index

import (
	"sort"
	"time"

	"revtrace/internal/journal"
)

// Index is an ordered, read-only sequence of entries plus derived
// lookups. The canonical order is (source priority, sequence).
type Index struct {
	entries    []journal.Entry
	byCategory map[journal.Category][]int
	byDocument map[string][]int
	timeOrder  []int
	stats      map[journal.Category]int
	documents  []string
}

// Build constructs a frozen Index from the primary journal entries and
// the (possibly empty) worker log entries.
//
// Entries must arrive in per-source sequence order; Build interleaves
// the two sources for the time-sorted view but never reorders entries
// within a source. Merging with a nil worker slice yields an Index
// identical to building from the primary alone.
func Build(primary, workerEntries []journal.Entry) *Index {
	ix := &Index{
		entries:    make([]journal.Entry, 0, len(primary)+len(workerEntries)),
		byCategory: make(map[journal.Category][]int),
		byDocument: make(map[string][]int),
		stats:      make(map[journal.Category]int),
	}
	ix.entries = append(ix.entries, primary...)
	ix.entries = append(ix.entries, workerEntries...)

	seenDoc := make(map[string]bool)
	for i, e := range ix.entries {
		ix.byCategory[e.Category] = append(ix.byCategory[e.Category], i)
		ix.stats[e.Category]++
		if e.DocumentID != journal.NoDocument {
			if !seenDoc[e.DocumentID] {
				seenDoc[e.DocumentID] = true
				ix.documents = append(ix.documents, e.DocumentID)
			}
			ix.byDocument[e.DocumentID] = append(ix.byDocument[e.DocumentID], i)
		}
	}

	ix.timeOrder = mergeByTime(ix.entries)
	return ix
}

// Len returns the total entry count across both sources.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// At returns the entry at canonical position i.
func (ix *Index) At(i int) journal.Entry {
	return ix.entries[i]
}

// Entries returns all entries in canonical order.
// The returned slice is the frozen backing store; callers must not
// modify it.
func (ix *Index) Entries() []journal.Entry {
	return ix.entries
}

// ByCategory returns the entries of one category in canonical order.
func (ix *Index) ByCategory(c journal.Category) []journal.Entry {
	return ix.collect(ix.byCategory[c])
}

// ByDocument returns the entries attributed to one document in
// canonical order.
func (ix *Index) ByDocument(id string) []journal.Entry {
	return ix.collect(ix.byDocument[id])
}

// TimeSorted returns all entries interleaved across sources by
// timestamp. Entries without timestamps keep their source-relative
// order, placed after the last timestamped entry of their source that
// precedes them.
func (ix *Index) TimeSorted() []journal.Entry {
	return ix.collect(ix.timeOrder)
}

// Stats returns the per-category entry counts.
// The returned map is shared; callers must not modify it.
func (ix *Index) Stats() map[journal.Category]int {
	return ix.stats
}

// Documents returns the referenced document identifiers in first-seen
// order.
func (ix *Index) Documents() []string {
	return ix.documents
}

func (ix *Index) collect(positions []int) []journal.Entry {
	out := make([]journal.Entry, len(positions))
	for i, p := range positions {
		out[i] = ix.entries[p]
	}
	return out
}

// mergeByTime computes the time-sorted position order. Each entry gets
// an effective instant: its own timestamp, or the timestamp of the
// nearest preceding timestamped entry in the same source. A stable sort
// on (effective instant, source priority, sequence) then interleaves
// the sources without ever reordering entries within one source.
func mergeByTime(entries []journal.Entry) []int {
	effective := make([]time.Time, len(entries))
	last := make(map[journal.Source]time.Time)
	for i, e := range entries {
		if e.Timestamped() {
			last[e.Source] = e.Timestamp
		}
		effective[i] = last[e.Source]
	}

	order := make([]int, len(entries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		ea, eb := entries[order[a]], entries[order[b]]
		ta, tb := effective[order[a]], effective[order[b]]
		if !ta.Equal(tb) {
			return ta.Before(tb)
		}
		if ea.Source != eb.Source {
			return ea.Source.Priority() < eb.Source.Priority()
		}
		return ea.Seq < eb.Seq
	})
	return order
}
