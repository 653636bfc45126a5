// Package load orchestrates one journal ingestion pass.
//
// Encoding resolution, segmentation, categorization, and document
// correlation run sequentially within a single pass; the correlator is
// order-dependent, so the enrichment stage is never parallelized
// internally. Loading the primary journal and the worker log, however,
// are independent until the merge, and run concurrently; building the
// index is the synchronization barrier. A cancelled load publishes
// nothing: the previous index, if any, is left untouched by the caller.
package load

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"revtrace/internal/category"
	"revtrace/internal/config"
	"revtrace/internal/correlate"
	"revtrace/internal/encoding"
	"revtrace/internal/index"
	"revtrace/internal/journal"
	"revtrace/internal/segment"
	"revtrace/internal/worker"
)

// Error is a fatal load failure, attributable to one file.
type Error struct {
	// Path is the offending file.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("load %s: %v", e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsEncodingExhausted reports whether a load failed because no candidate
// encoding decoded the file.
func IsEncodingExhausted(err error) bool {
	return encoding.IsExhausted(err)
}

// Result is one fully processed load. Everything in it is frozen; a
// reload produces a new Result.
type Result struct {
	// LoadID uniquely identifies this load for archives and exports.
	LoadID uuid.UUID

	// Path is the primary journal file.
	Path string

	// WorkerPath is the resolved worker log path; WorkerLoaded reports
	// whether it existed and was merged.
	WorkerPath   string
	WorkerLoaded bool

	// Encoding and FallbackUsed describe how the primary journal bytes
	// were decoded.
	Encoding     string
	FallbackUsed bool

	// Header is the journal-level metadata.
	Header journal.Header

	// Documents are the document contexts recognized in the journal, in
	// activation order.
	Documents []journal.DocumentContext

	// Index is the frozen entry store.
	Index *index.Index
}

// File loads the journal at path and, when present, its worker log.
func File(ctx context.Context, path string, cfg config.Config) (*Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Path: path, Err: err}
	}

	var workerRaw []byte
	workerPath, workerFound := "", false
	if cfg.LoadWorkerLog {
		workerPath, workerFound = worker.Locate(path)
		if workerFound {
			workerRaw, err = os.ReadFile(workerPath)
			if err != nil {
				return nil, &Error{Path: workerPath, Err: err}
			}
		} else {
			// Absence is a valid state, but it must stay attributable.
			slog.Info("worker log unavailable", "journal", path, "candidate", workerPath)
		}
	}

	res, err := Bytes(ctx, path, workerPath, raw, workerRaw, cfg)
	if err != nil {
		return nil, err
	}
	res.WorkerPath = workerPath
	res.WorkerLoaded = workerFound
	return res, nil
}

// Bytes loads a journal from an in-memory buffer. workerRaw may be nil,
// meaning no worker log; merging with a nil worker source yields an
// index identical to loading the primary alone. workerName attributes
// worker-stream failures; when empty, the conventional worker path
// derived from name is used.
func Bytes(ctx context.Context, name, workerName string, raw, workerRaw []byte, cfg config.Config) (*Result, error) {
	cat := category.New(category.WithThreshold(cfg.Threshold()))

	var (
		primary       []journal.Entry
		workerEntries []journal.Entry
		header        journal.Header
		docs          []journal.DocumentContext
		enc           encoding.Result
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		enc, err = encoding.ResolveWith(raw, cfg.EncodingFallbacks)
		if err != nil {
			return &Error{Path: name, Err: err}
		}
		if enc.FallbackUsed {
			slog.Debug("encoding fallback used", "path", name, "encoding", enc.Encoding)
		}

		seg, err := segment.Split(gctx, enc.Text)
		if err != nil {
			return err
		}
		header = seg.Header
		primary, docs = enrich(seg.Entries, cat)
		return nil
	})

	g.Go(func() error {
		if workerRaw == nil {
			return nil
		}
		wname := workerName
		if wname == "" {
			wname = worker.LogPath(name)
		}
		wenc, err := encoding.ResolveWith(workerRaw, cfg.EncodingFallbacks)
		if err != nil {
			return &Error{Path: wname, Err: err}
		}
		rawEntries, err := worker.Segment(gctx, wenc.Text)
		if err != nil {
			return err
		}
		workerEntries = make([]journal.Entry, len(rawEntries))
		for i, re := range rawEntries {
			workerEntries[i] = journal.Entry{
				Seq:       re.Seq,
				Timestamp: re.Timestamp,
				Category:  cat.Categorize(re.Body),
				Body:      re.Body,
				Source:    journal.SourceWorker,
			}
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{
		LoadID:       uuid.New(),
		Path:         name,
		Encoding:     enc.Encoding,
		FallbackUsed: enc.FallbackUsed,
		Header:       header,
		Documents:    docs,
		Index:        index.Build(primary, workerEntries),
	}

	slog.Info("journal loaded",
		"path", name,
		"load_id", res.LoadID,
		"encoding", res.Encoding,
		"entries", res.Index.Len(),
		"documents", len(docs),
		"worker_entries", len(workerEntries),
	)
	return res, nil
}

// enrich runs the order-dependent single pass: categorize each raw
// entry, then thread it through the document correlator in strict
// sequence order.
func enrich(raw []segment.RawEntry, cat *category.Categorizer) ([]journal.Entry, []journal.DocumentContext) {
	corr := correlate.New()
	entries := make([]journal.Entry, len(raw))
	for i, re := range raw {
		c := cat.Categorize(re.Body)
		entries[i] = journal.Entry{
			Seq:        re.Seq,
			Timestamp:  re.Timestamp,
			Category:   c,
			Body:       re.Body,
			DocumentID: corr.Apply(re.Seq, c, re.Body),
			Source:     journal.SourcePrimary,
		}
	}
	return entries, corr.Finish(len(raw))
}
