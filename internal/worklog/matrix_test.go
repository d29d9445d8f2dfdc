package worklog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderMatrix(t *testing.T) {
	out := RenderMatrix([]MatrixRow{
		{Agent: "a1", Role: "backend", CurrentPhase: 3},
		{Agent: "a2", Role: "qa | review", CurrentPhase: 5, Completed: true},
	})

	want := "| Agent | Role | Phase | Gate |\n" +
		"|-------|------|-------|------|\n" +
		"| a1 | backend | Phase 3: Development | ⏳ |\n" +
		"| a2 | qa / review | Phase 5: Integration | ✅ |\n"
	assert.Equal(t, want, out)
}

func TestPhaseName(t *testing.T) {
	assert.Equal(t, "Planning", PhaseName(1))
	assert.Equal(t, "Plan Review", PhaseName(2))
	assert.Equal(t, "Debugging", PhaseName(4))
	assert.Equal(t, "Unknown", PhaseName(9))
}

func TestParsePending_OneInProgressOneDone(t *testing.T) {
	content := "## Agent Status Matrix\n\n" + RenderMatrix([]MatrixRow{
		{Agent: "a1", Role: "backend", CurrentPhase: 3},
		{Agent: "a2", Role: "frontend", CurrentPhase: 5, Completed: true},
	})

	pending := ParsePending(content)

	assert.Equal(t, []PendingAgent{{Agent: "a1", Role: "backend", CurrentPhase: 3}}, pending)
}

func TestParsePending_MissingPhaseDefaultsToOne(t *testing.T) {
	content := `## Agent Status Matrix

| Agent | Role | Phase | Gate |
|:------|------|-------|-----:|
| a1 | backend | waiting | ⏳ |
| a2 | infra | phase 4 | ⏳ |
| a3 | docs | Phase   2: Plan Review | ⏳ |

## Execution Log

| not | a | matrix | row |
`
	pending := ParsePending(content)

	assert.Equal(t, []PendingAgent{
		{Agent: "a1", Role: "backend", CurrentPhase: 1},
		{Agent: "a2", Role: "infra", CurrentPhase: 1},
		{Agent: "a3", Role: "docs", CurrentPhase: 2},
	}, pending)
}

func TestParseMatrix_NoSection(t *testing.T) {
	assert.Nil(t, ParseMatrix("# Worklog\n\n## Plan\n"))
	assert.Nil(t, ParsePending(""))
}

func TestParseMatrix_SkipsShortRows(t *testing.T) {
	content := "## Agent Status Matrix\n\n| a1 | backend |\n| a2 | qa | Phase 2 | ✅ |\n"

	rows := ParseMatrix(content)

	assert.Equal(t, []MatrixRow{{Agent: "a2", Role: "qa", CurrentPhase: 2, Completed: true}}, rows)
}

func TestParsePending_OnlyInProgressGate(t *testing.T) {
	content := `## Agent Status Matrix

| Agent | Role | Phase | Gate |
|-------|------|-------|------|
| a1 | backend | Phase 3: Development | ❌ |
| a2 | infra | Phase 2: Plan Review |  |
| a3 | qa | Phase 4: Debugging | ⏳ |
| a4 | docs | Phase 5: Integration | ✅ |
`
	pending := ParsePending(content)

	assert.Equal(t, []PendingAgent{{Agent: "a3", Role: "qa", CurrentPhase: 4}}, pending)
	assert.Len(t, ParseMatrix(content), 4)
}
