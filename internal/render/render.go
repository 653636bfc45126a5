// Package render writes entries to an output stream, either as
// category-colored terminal rows or as JSON lines for piping.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"revtrace/internal/journal"
)

// Renderer writes entries to an output stream.
type Renderer interface {
	Render(e journal.Entry) error
}

var (
	styleError       = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	stylePerformance = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	styleCommand     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	styleModelInfo   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	styleMemory      = lipgloss.NewStyle().Foreground(lipgloss.Color("135"))
	styleOther       = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	styleSource      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Faint(true)
)

// TextRenderer prints entries with category-based colors.
type TextRenderer struct {
	w io.Writer
}

// NewText returns a Renderer writing colorized rows to w.
func NewText(w io.Writer) *TextRenderer {
	return &TextRenderer{w: w}
}

// tsWidth is the column width of a formatted TimestampLayout instant.
const tsWidth = len("02-Jan-2006 15:04:05.000")

func (r *TextRenderer) Render(e journal.Entry) error {
	ts := strings.Repeat(" ", tsWidth)
	if e.Timestamped() {
		ts = e.Timestamp.Format(journal.TimestampLayout)
	}
	tag := categoryTag(e.Category)
	src := styleSource.Render(string(e.Source))

	line := fmt.Sprintf("%s %s %s %s", ts, tag, src, e.Body)
	_, err := fmt.Fprintln(r.w, line)
	return err
}

func categoryTag(c journal.Category) string {
	padded := fmt.Sprintf("%-11s", c)
	switch c {
	case journal.CategoryError:
		return styleError.Render(padded)
	case journal.CategoryPerformance:
		return stylePerformance.Render(padded)
	case journal.CategoryCommand:
		return styleCommand.Render(padded)
	case journal.CategoryModelInfo:
		return styleModelInfo.Render(padded)
	case journal.CategoryMemory:
		return styleMemory.Render(padded)
	default:
		return styleOther.Render(padded)
	}
}

// JSONRenderer prints each entry as one JSON object per line.
type JSONRenderer struct {
	enc *json.Encoder
}

// NewJSON returns a Renderer writing JSON lines to w.
func NewJSON(w io.Writer) *JSONRenderer {
	return &JSONRenderer{enc: json.NewEncoder(w)}
}

func (r *JSONRenderer) Render(e journal.Entry) error {
	return r.enc.Encode(e)
}
