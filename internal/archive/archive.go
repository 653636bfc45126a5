// Package archive persists completed loads so past sessions can be
// listed and re-queried without the source files.
//
// Uses SQLite with WAL mode for concurrent read access. An archived
// load is a snapshot: re-archiving the same journal produces a new
// independent record, never an update of an old one.
package archive

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"revtrace/internal/journal"
)

//go:embed schema.sql
var schemaSQL string

// Archive provides durable storage for processed journal loads.
type Archive struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}

	// SQLite only supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// Record is the per-load metadata row.
type Record struct {
	LoadID   string
	Path     string
	LoadedAt time.Time
	Encoding string
	Header   journal.Header
	Entries  int
}

// Save writes one load and its entries in a single transaction: either
// the whole load is archived or none of it is.
func (a *Archive) Save(ctx context.Context, rec Record, entries []journal.Entry) error {
	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO loads (id, path, loaded_at, encoding, build, branch, release_name, username, entry_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.LoadID,
		rec.Path,
		rec.LoadedAt.UTC().Format(time.RFC3339Nano),
		rec.Encoding,
		rec.Header.Build,
		rec.Header.Branch,
		rec.Header.Release,
		rec.Header.Username,
		len(entries),
	)
	if err != nil {
		return fmt.Errorf("write load %s: %w", rec.LoadID, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (load_id, source, seq, ts, category, document_id, body)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("prepare entries: %w", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		var ts any
		if e.Timestamped() {
			ts = e.Timestamp.UTC().Format(time.RFC3339Nano)
		}
		if _, err := stmt.ExecContext(ctx,
			rec.LoadID, string(e.Source), e.Seq, ts, string(e.Category), e.DocumentID, e.Body,
		); err != nil {
			return fmt.Errorf("write entry %s/%d: %w", e.Source, e.Seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

// List returns all archived loads, newest first.
// Returns an empty slice (not nil) when the archive is empty.
func (a *Archive) List(ctx context.Context) ([]Record, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, path, loaded_at, encoding, build, branch, release_name, username, entry_count
		FROM loads
		ORDER BY loaded_at DESC, id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query loads: %w", err)
	}
	defer rows.Close()

	records := []Record{}
	for rows.Next() {
		var rec Record
		var loadedAt string
		if err := rows.Scan(
			&rec.LoadID, &rec.Path, &loadedAt, &rec.Encoding,
			&rec.Header.Build, &rec.Header.Branch, &rec.Header.Release, &rec.Header.Username,
			&rec.Entries,
		); err != nil {
			return nil, fmt.Errorf("scan load: %w", err)
		}
		rec.LoadedAt, err = time.Parse(time.RFC3339Nano, loadedAt)
		if err != nil {
			return nil, fmt.Errorf("parse loaded_at for %s: %w", rec.LoadID, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// Entries reads back the archived entries of one load in canonical
// order (source priority, sequence).
func (a *Archive) Entries(ctx context.Context, loadID string) ([]journal.Entry, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT source, seq, ts, category, document_id, body
		FROM entries
		WHERE load_id = ?
		ORDER BY CASE source WHEN 'journal' THEN 0 ELSE 1 END ASC, seq ASC
	`, loadID)
	if err != nil {
		return nil, fmt.Errorf("query entries for %s: %w", loadID, err)
	}
	defer rows.Close()

	entries := []journal.Entry{}
	for rows.Next() {
		var (
			e      journal.Entry
			source string
			cat    string
			ts     sql.NullString
		)
		if err := rows.Scan(&source, &e.Seq, &ts, &cat, &e.DocumentID, &e.Body); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		e.Source = journal.Source(source)
		e.Category = journal.Category(cat)
		if ts.Valid {
			e.Timestamp, err = time.Parse(time.RFC3339Nano, ts.String)
			if err != nil {
				return nil, fmt.Errorf("parse entry timestamp: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
