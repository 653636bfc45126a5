package render

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revtrace/internal/journal"
)

func sampleEntry() journal.Entry {
	return journal.Entry{
		Seq:        2,
		Timestamp:  time.Date(2025, time.September, 27, 13, 8, 35, 485_000_000, time.UTC),
		Category:   journal.CategoryError,
		Body:       "Error posted in Zoom handler",
		DocumentID: "Tower.rvt",
		Source:     journal.SourcePrimary,
	}
}

func TestTextRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)

	require.NoError(t, r.Render(sampleEntry()))

	out := buf.String()
	assert.Contains(t, out, "27-Sep-2025 13:08:35.485")
	assert.Contains(t, out, "Error")
	assert.Contains(t, out, "Error posted in Zoom handler")
	assert.True(t, strings.HasSuffix(out, "\n"))
}

func TestTextRenderer_UntimestampedKeepsColumns(t *testing.T) {
	var buf bytes.Buffer
	r := NewText(&buf)

	e := sampleEntry()
	e.Timestamp = time.Time{}
	require.NoError(t, r.Render(e))

	assert.True(t, strings.HasPrefix(buf.String(), strings.Repeat(" ", 24)+" "),
		"the placeholder fills the full timestamp column")
}

func TestTextRenderer_ColumnsAlignAcrossRows(t *testing.T) {
	var withTS, withoutTS bytes.Buffer
	require.NoError(t, NewText(&withTS).Render(sampleEntry()))

	e := sampleEntry()
	e.Timestamp = time.Time{}
	require.NoError(t, NewText(&withoutTS).Render(e))

	blank := withoutTS.String()
	timed := withTS.String()
	require.Equal(t, len(timed), len(blank), "rows share the same column layout")
	assert.Equal(t, timed[24:], blank[24:],
		"everything after the timestamp column is identical")
}

func TestJSONRenderer(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSON(&buf)

	require.NoError(t, r.Render(sampleEntry()))

	var got journal.Entry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, sampleEntry(), got)
}

func TestJSONRenderer_OneObjectPerLine(t *testing.T) {
	var buf bytes.Buffer
	r := NewJSON(&buf)

	require.NoError(t, r.Render(sampleEntry()))
	require.NoError(t, r.Render(sampleEntry()))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 2)
}
