// Package discover locates installed application versions and their
// journal files on the local filesystem. This is collaborator glue for
// the ingestion engine, which only ever sees byte streams.
package discover

import (
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// journalPattern matches journal files inside a version's Journals
// directory, e.g. "Autodesk Revit 2025/Journals/journal.0042.txt".
const journalPattern = "*/Journals/journal*.txt"

// VersionJournals lists the journal files found for one installed
// version, newest first.
type VersionJournals struct {
	Version  string
	Journals []string
}

// Scan walks root for per-version Journals directories and returns the
// journals grouped by version. A missing root yields an empty result,
// not an error: no installation is a valid state.
func Scan(root string) ([]VersionJournals, error) {
	if _, err := os.Stat(root); err != nil {
		return nil, nil
	}

	matches, err := doublestar.FilepathGlob(
		filepath.Join(root, journalPattern),
		doublestar.WithFilesOnly(),
	)
	if err != nil {
		return nil, err
	}

	byVersion := make(map[string][]string)
	for _, m := range matches {
		// root/<version>/Journals/<file>
		version := filepath.Base(filepath.Dir(filepath.Dir(m)))
		byVersion[version] = append(byVersion[version], m)
	}

	versions := make([]string, 0, len(byVersion))
	for v := range byVersion {
		versions = append(versions, v)
	}
	sort.Strings(versions)

	out := make([]VersionJournals, 0, len(versions))
	for _, v := range versions {
		journals := byVersion[v]
		sort.Slice(journals, func(i, j int) bool {
			return modTime(journals[i]).After(modTime(journals[j]))
		})
		out = append(out, VersionJournals{Version: v, Journals: journals})
	}
	return out, nil
}

func modTime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}
