// Package export serializes a filtered entry selection with its
// provenance: the filter parameters used, the export timestamp, and the
// entry count. The YAML form is the machine-readable artifact and
// round-trips every entry losslessly; the text form mirrors the layout
// operators are used to reading.
package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"revtrace/internal/journal"
)

// Metadata describes how an artifact was produced.
type Metadata struct {
	ExportedAt time.Time      `yaml:"exported_at"`
	LoadID     string         `yaml:"load_id,omitempty"`
	SourcePath string         `yaml:"source_path,omitempty"`
	Filters    []string       `yaml:"filters,omitempty"`
	Header     journal.Header `yaml:"header,omitempty"`
	EntryCount int            `yaml:"entry_count"`
}

// Artifact is a complete export: metadata plus the filtered entries in
// selection order.
type Artifact struct {
	Metadata Metadata                 `yaml:"metadata"`
	Stats    map[journal.Category]int `yaml:"stats,omitempty"`
	Entries  []journal.Entry         `yaml:"entries"`
}

// New builds an artifact from a filtered selection. Stats are computed
// over the selection, not the whole index.
func New(entries []journal.Entry, meta Metadata) Artifact {
	meta.EntryCount = len(entries)
	stats := make(map[journal.Category]int)
	for _, e := range entries {
		stats[e.Category]++
	}
	return Artifact{Metadata: meta, Stats: stats, Entries: entries}
}

// WriteYAML writes the machine-readable artifact.
func WriteYAML(w io.Writer, a Artifact) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(a); err != nil {
		return fmt.Errorf("encode export: %w", err)
	}
	return enc.Close()
}

// ReadYAML parses an artifact written by WriteYAML. Every exported
// entry round-trips losslessly.
func ReadYAML(r io.Reader) (Artifact, error) {
	var a Artifact
	if err := yaml.NewDecoder(r).Decode(&a); err != nil {
		return Artifact{}, fmt.Errorf("decode export: %w", err)
	}
	return a, nil
}

// WriteText writes the human-readable export.
func WriteText(w io.Writer, a Artifact) error {
	var b strings.Builder

	fmt.Fprintf(&b, "# Journal Export - %s\n", a.Metadata.ExportedAt.Format("2006-01-02 15:04:05"))
	if a.Metadata.SourcePath != "" {
		fmt.Fprintf(&b, "# Source: %s\n", a.Metadata.SourcePath)
	}
	if a.Metadata.LoadID != "" {
		fmt.Fprintf(&b, "# Load: %s\n", a.Metadata.LoadID)
	}
	writeHeader(&b, a.Metadata.Header)

	if len(a.Metadata.Filters) > 0 {
		fmt.Fprintf(&b, "# Filtered by:\n")
		for _, f := range a.Metadata.Filters {
			fmt.Fprintf(&b, "#    %s\n", f)
		}
	}

	if len(a.Stats) > 0 {
		fmt.Fprintf(&b, "\n# JOURNAL STATISTICS\n")
		for _, c := range journal.Categories() {
			if n := a.Stats[c]; n > 0 {
				fmt.Fprintf(&b, "#    %s: %d entries\n", c, n)
			}
		}
	}

	fmt.Fprintf(&b, "\n# JOURNAL ENTRIES\n")
	fmt.Fprintf(&b, "%s\n\n", strings.Repeat("=", 80))
	fmt.Fprintf(&b, "# Total entries: %d\n\n", a.Metadata.EntryCount)

	for _, e := range a.Entries {
		if e.Timestamped() {
			fmt.Fprintf(&b, "[%s] [%s]", e.Timestamp.Format(journal.TimestampLayout), e.Category)
			if e.DocumentID != journal.NoDocument {
				fmt.Fprintf(&b, " [%s]", e.DocumentID)
			}
			fmt.Fprintf(&b, ": %s\n", e.Body)
			continue
		}
		fmt.Fprintf(&b, "[%s]: %s\n", e.Category, e.Body)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHeader(b *strings.Builder, h journal.Header) {
	if h == (journal.Header{}) {
		return
	}
	fmt.Fprintf(b, "# Journal header:\n")
	for _, kv := range [][2]string{
		{"Build", h.Build},
		{"Branch", h.Branch},
		{"Release", h.Release},
		{"Username", h.Username},
	} {
		if kv[1] != "" {
			fmt.Fprintf(b, "#    %s: %s\n", kv[0], kv[1])
		}
	}
}
