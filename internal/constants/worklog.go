package constants

// WorklogMaxRounds is the denominator rendered in the "Rounds: N/3" line.
const WorklogMaxRounds = 3

// WorklogInitialStatus is the status of a freshly created worklog.
const WorklogInitialStatus = "planning"

// Worklog section names in on-disk order.
const (
	SectionPlan                 = "Plan"
	SectionVerificationCriteria = "Verification Criteria"
	SectionAgentStatusMatrix    = "Agent Status Matrix"
	SectionExecutionLog         = "Execution Log"
	SectionFinalSummary         = "Final Summary"
)

// Matrix completion glyphs.
const (
	GlyphDone       = "✅"
	GlyphInProgress = "⏳"
)

// Bus event types published by the worklog store.
const (
	EventWorklogCreated = "worklog_created"
	EventWorklogUpdated = "worklog_updated"
)
