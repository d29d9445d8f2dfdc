package worklog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# Worklog: demo

Created: 2026-10-17T09:00:00Z
Status: planning
Rounds: 0/3

## Plan

- step one

## Execution Log

- first
- second

## Final Summary
`

func TestParse_RoundTrip(t *testing.T) {
	inputs := []string{
		sample,
		"",
		"no headers at all\n",
		"## Only\nbody without trailing newline",
		skeleton("Refactor auth module", time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC)),
	}
	for _, in := range inputs {
		assert.Equal(t, in, Parse(in).String())
	}
}

func TestParse_Sections(t *testing.T) {
	doc := Parse(sample)

	assert.Equal(t, []string{"Plan", "Execution Log", "Final Summary"}, doc.Names())
	assert.Contains(t, doc.Preamble, "Status: planning")

	s, ok := doc.Section("Execution Log")
	require.True(t, ok)
	assert.Equal(t, "\n- first\n- second\n\n", s.Body)

	_, ok = doc.Section("Missing")
	assert.False(t, ok)
}

func TestDocument_AppendToExistingSectionKeepsOrder(t *testing.T) {
	doc := Parse(sample)
	doc.AppendTo("Execution Log", "- third\n")

	want := `# Worklog: demo

Created: 2026-10-17T09:00:00Z
Status: planning
Rounds: 0/3

## Plan

- step one

## Execution Log

- first
- second
- third

## Final Summary
`
	assert.Equal(t, want, doc.String())
}

func TestDocument_AppendToLastSection(t *testing.T) {
	doc := Parse(sample)
	doc.AppendTo("Final Summary", "All done.")
	doc.AppendTo("Final Summary", "Really.")

	s, _ := doc.Section("Final Summary")
	assert.Equal(t, "\nAll done.\nReally.\n", s.Body)
}

func TestDocument_AppendToMissingSectionAddsAtEnd(t *testing.T) {
	doc := Parse("# Worklog\n\nStatus: planning\n\n## Plan\n- a")
	doc.AppendTo("Execution Log", "- agent1: started task X")

	assert.Equal(t, "# Worklog\n\nStatus: planning\n\n## Plan\n- a\n\n## Execution Log\n\n- agent1: started task X\n", doc.String())
}

func TestDocument_AppendToEmptyDocument(t *testing.T) {
	doc := Parse("")
	doc.AppendTo("Plan", "x")
	assert.Equal(t, "## Plan\n\nx\n", doc.String())
}

func TestDocument_Replace(t *testing.T) {
	doc := Parse(sample)
	doc.Replace("Plan", "- new plan\n\n\n")

	s, _ := doc.Section("Plan")
	assert.Equal(t, "\n- new plan\n\n", s.Body)
	assert.Equal(t, []string{"Plan", "Execution Log", "Final Summary"}, doc.Names())

	doc.Replace("Verification Criteria", "- tests pass")
	assert.Equal(t, "Verification Criteria", doc.Names()[3])
}
