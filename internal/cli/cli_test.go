package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revtrace/internal/export"
)

const sampleJournal = `' Build: 25.1.30.78
' Branch: RELEASE_2025
'C 27-Sep-2025 13:08:35.485; ModelPath Created [fromJournal] Path = "C%3A%5CProjects%5CTower.rvt"
'C 27-Sep-2025 13:08:36.000; Command: Zoom In Region
'C 27-Sep-2025 13:08:37.000; Duration: 45000ms SyncWithCentral
'C 27-Sep-2025 13:08:38.000; Unrecoverable error while regenerating
'H 27-Sep-2025 13:08:39.000; Username , "jdoe"`

func writeJournal(t *testing.T) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "journal.0001.txt")
	require.NoError(t, os.WriteFile(p, []byte(sampleJournal), 0o644))
	return p
}

// execute runs the revtrace command with args and captures stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRoot_RejectsInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "load", writeJournal(t))
	assert.ErrorContains(t, err, "invalid format")
}

func TestLoad_TextSummary(t *testing.T) {
	out, err := execute(t, "load", writeJournal(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Loaded ")
	assert.Contains(t, out, "Build: 25.1.30.78")
	assert.Contains(t, out, "Entries: 5")
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, `C:\Projects\Tower.rvt`)
}

func TestLoad_JSONSummary(t *testing.T) {
	out, err := execute(t, "--format", "json", "load", writeJournal(t))
	require.NoError(t, err)

	assert.Contains(t, out, `"entries": 5`)
	assert.Contains(t, out, `"load_id"`)
	assert.Contains(t, out, `"worker_loaded": false`)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := execute(t, "load", filepath.Join(t.TempDir(), "absent.txt"))
	assert.Error(t, err)
}

func TestQuery_CategoryFilter(t *testing.T) {
	out, err := execute(t, "query", writeJournal(t), "--category", "Error")
	require.NoError(t, err)

	assert.Contains(t, out, "Unrecoverable error while regenerating")
	assert.NotContains(t, out, "Command: Zoom In Region")
	assert.Contains(t, out, "1 of 5 entries")
}

func TestQuery_SearchFilter(t *testing.T) {
	out, err := execute(t, "query", writeJournal(t), "--search", "zoom")
	require.NoError(t, err)

	assert.Contains(t, out, "Command: Zoom In Region")
	assert.Contains(t, out, "1 of 5 entries")
}

func TestQuery_RejectsUnknownCategory(t *testing.T) {
	_, err := execute(t, "query", writeJournal(t), "--category", "Nope")
	assert.ErrorContains(t, err, "unknown category")
}

func TestQuery_SinceFilter(t *testing.T) {
	out, err := execute(t, "query", writeJournal(t), "--since", "2025-09-27T13:08:37Z")
	require.NoError(t, err)

	assert.Contains(t, out, "Duration: 45000ms SyncWithCentral")
	assert.Contains(t, out, "Unrecoverable error while regenerating")
	assert.NotContains(t, out, "Command: Zoom In Region")
	assert.Contains(t, out, "3 of 5 entries")
}

func TestQuery_SinceJournalFormat(t *testing.T) {
	out, err := execute(t, "query", writeJournal(t), "--since", "27-Sep-2025 13:08:38.000")
	require.NoError(t, err)

	assert.Contains(t, out, "2 of 5 entries")
}

func TestQuery_SinceAndLastConflict(t *testing.T) {
	_, err := execute(t, "query", writeJournal(t),
		"--since", "2025-09-27T13:08:37Z", "--last", "last 15 minutes")
	assert.ErrorContains(t, err, "mutually exclusive")
}

func TestQuery_RejectsBadWindow(t *testing.T) {
	_, err := execute(t, "query", writeJournal(t), "--last", "yesterday")
	assert.ErrorContains(t, err, "unrecognized time window")
}

func TestExport_YAMLFile(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "export.yaml")

	_, err := execute(t, "export", writeJournal(t), "--category", "Error", "-o", outPath)
	require.NoError(t, err)

	f, err := os.Open(outPath)
	require.NoError(t, err)
	defer f.Close()

	a, err := export.ReadYAML(f)
	require.NoError(t, err)
	assert.Equal(t, 1, a.Metadata.EntryCount)
	assert.Equal(t, []string{"Category: Error"}, a.Metadata.Filters)
	assert.Equal(t, "25.1.30.78", a.Metadata.Header.Build)
}

func TestExport_TextForm(t *testing.T) {
	out, err := execute(t, "export", writeJournal(t), "--text")
	require.NoError(t, err)

	assert.Contains(t, out, "# Journal Export - ")
	assert.Contains(t, out, "# Total entries: 5")
}

func TestScan(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "Autodesk Revit 2025", "Journals")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	journalPath := filepath.Join(dir, "journal.0001.txt")
	require.NoError(t, os.WriteFile(journalPath, []byte(sampleJournal), 0o644))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "worker1.log.0001.txt"), []byte("log"), 0o644))

	out, err := execute(t, "scan", root)
	require.NoError(t, err)

	assert.Contains(t, out, "Autodesk Revit 2025")
	assert.Contains(t, out, journalPath)
	assert.Contains(t, out, "[worker log]")
}

func TestScan_EmptyRoot(t *testing.T) {
	out, err := execute(t, "scan", t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "no journals found")
}

func TestArchive_SaveListShow(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "revtrace.db")
	journalPath := writeJournal(t)

	out, err := execute(t, "archive", "--db", dbPath, "save", journalPath)
	require.NoError(t, err)
	assert.Contains(t, out, "archived ")

	out, err = execute(t, "archive", "--db", dbPath, "list")
	require.NoError(t, err)
	assert.Contains(t, out, journalPath)
	assert.Contains(t, out, "5 entries")

	loadID := strings.Fields(out)[0]
	out, err = execute(t, "archive", "--db", dbPath, "show", loadID)
	require.NoError(t, err)
	assert.Contains(t, out, "Unrecoverable error while regenerating")
}
