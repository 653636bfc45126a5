package category

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"revtrace/internal/journal"
)

func TestCategorize_FirstMatchWins(t *testing.T) {
	c := New()

	// An error body that also carries a command marker: the error rule
	// comes first, so the error wins.
	assert.Equal(t, journal.CategoryError,
		c.Categorize(`Jrn.Command "Ribbon" , "Sync" Error posted`))
}

func TestCategorize_OrderedSession(t *testing.T) {
	c := New()

	bodies := []string{
		"Unrecoverable error while regenerating",
		`Jrn.Command "Ribbon" , "Open , ID_REVIT_FILE_OPEN"`,
		"Duration: 45000ms SyncWithCentral",
	}
	want := []journal.Category{
		journal.CategoryError,
		journal.CategoryCommand,
		journal.CategoryPerformance,
	}
	for i, body := range bodies {
		assert.Equal(t, want[i], c.Categorize(body), "body %q", body)
	}
}

func TestCategorize_Table(t *testing.T) {
	c := New()

	cases := []struct {
		name string
		body string
		want journal.Category
	}{
		{"exception", "System.NullReferenceException thrown", journal.CategoryError},
		{"api-error", "api_error in external command", journal.CategoryError},
		{"big-gap-seconds", "6.20!!!BIG_GAP detected", journal.CategoryPerformance},
		{"model-open", `ModelPath Created [fromJournal] Path = "Tower.rvt"`, journal.CategoryModelInfo},
		{"model-close", `Jrn.Command "Internal" , "Close , ID_REVIT_FILE_CLOSE"`, journal.CategoryModelInfo},
		{"command-prefix", "Command: Zoom In Region", journal.CategoryCommand},
		{"jrn-command", `Jrn.Command "Shortcut" , "Zoom , ID_ZOOM"`, journal.CategoryCommand},
		{"ram-stats", "RAM Statistics: Available 12 GB", journal.CategoryMemory},
		{"delta-vm", "Delta VM: 120 MB", journal.CategoryMemory},
		{"no-match", "idle heartbeat", journal.CategoryOther},
		{"error-not-substring", "terror in the aisles", journal.CategoryOther},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, c.Categorize(tc.body))
		})
	}
}

func TestCategorize_CloseCommandsStayModelInfo(t *testing.T) {
	c := New()

	// A close entry matches both the model and command signatures; it
	// must classify as ModelInfo so document correlation can see it.
	body := `Jrn.Command "Internal" , "Close the active project , ID_REVIT_FILE_CLOSE"`
	assert.Equal(t, journal.CategoryModelInfo, c.Categorize(body))
}

func TestCategorize_ThresholdStrictlyGreater(t *testing.T) {
	c := New()

	assert.Equal(t, journal.CategoryOther, c.Categorize("Duration: 5000ms Regen"),
		"a duration exactly at the threshold is not a performance problem")
	assert.Equal(t, journal.CategoryPerformance, c.Categorize("Duration: 5000.1ms Regen"))
	assert.Equal(t, journal.CategoryOther, c.Categorize("Duration: 120ms Regen"))
}

func TestCategorize_CustomThreshold(t *testing.T) {
	c := New(WithThreshold(100 * time.Millisecond))

	assert.Equal(t, journal.CategoryPerformance, c.Categorize("Duration: 250ms Regen"))
	assert.Equal(t, 100*time.Millisecond, c.Threshold())
}

func TestCategorize_NonPositiveThresholdKeepsDefault(t *testing.T) {
	c := New(WithThreshold(0))
	assert.Equal(t, DefaultThreshold, c.Threshold())

	c = New(WithThreshold(-time.Second))
	assert.Equal(t, DefaultThreshold, c.Threshold())
}

func TestCategorize_UnparseableDurationDemotes(t *testing.T) {
	c := New()

	// The big-gap marker is present but its number is missing: the entry
	// falls through to the later rules instead of aborting.
	assert.Equal(t, journal.CategoryOther, c.Categorize("BIG_GAP with no value"))
	assert.Equal(t, journal.CategoryCommand,
		c.Categorize("Command: Regen BIG_GAP with no value"))
}

func TestCategorize_Deterministic(t *testing.T) {
	c := New()
	body := "Duration: 45000ms SyncWithCentral"

	first := c.Categorize(body)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, c.Categorize(body))
	}
}

func TestRules_FixedOrder(t *testing.T) {
	c := New()

	var names []string
	for _, r := range c.Rules() {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{
		"error-signature",
		"big-gap",
		"model-marker",
		"command-marker",
		"memory-statistics",
	}, names)
}

func TestDuration(t *testing.T) {
	d, ok := Duration("Duration: 45000ms SyncWithCentral")
	require.True(t, ok)
	assert.Equal(t, 45*time.Second, d)

	d, ok = Duration("5.23!!!BIG_GAP")
	require.True(t, ok)
	assert.Equal(t, 5230*time.Millisecond, d)

	_, ok = Duration("no signature here")
	assert.False(t, ok)

	_, ok = Duration("BIG_GAP with no value")
	assert.False(t, ok)
}
