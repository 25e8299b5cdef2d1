package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcess_CommandProducesPlans(t *testing.T) {
	t.Parallel()

	result := Process("Please schedule a meeting with Alice at 3pm and remind me tomorrow", refNow)

	assert.Equal(t, IntentCommand, result.Classification.Intent)
	assert.True(t, result.Classification.ShouldExecute)

	require.Len(t, result.Plans, 2)
	assert.Equal(t, ToolScheduleEvent, result.Plans[0].Tool)
	assert.Equal(t, ToolCreateReminder, result.Plans[1].Tool)

	assert.True(t, result.Governance.ExecutionApproved)
	assert.True(t, result.Governance.IntentIsCommand)
	assert.Equal(t, 2, result.Governance.ActionsCount)
}

func TestProcess_NoKeywordsNoExecution(t *testing.T) {
	t.Parallel()

	result := Process("colorless green ideas sleep furiously", refNow)

	assert.Empty(t, result.Actions)
	assert.False(t, result.Classification.ShouldExecute)
	assert.Empty(t, result.Plans)
	assert.False(t, result.Governance.ExecutionApproved)
	assert.Equal(t, 0, result.Governance.ActionsCount)
}

func TestProcess_QuestionNotExecuted(t *testing.T) {
	t.Parallel()

	// Action keywords are present but the intent is a question, so planning
	// is skipped entirely.
	result := Process("What? When did the outage happen, and who saw the error?", refNow)

	assert.NotEmpty(t, result.Actions)
	assert.Equal(t, IntentInformation, result.Classification.Intent)
	assert.Empty(t, result.Plans)
	assert.False(t, result.Governance.ExecutionApproved)
}

func TestProcess_GovernanceReportsThreshold(t *testing.T) {
	t.Parallel()

	result := Process("Schedule a meeting with Alice at 3pm", refNow)

	assert.InDelta(t, ConfidenceThreshold, result.Governance.ConfidenceThreshold, 1e-9)
	// Execution follows intent alone; the threshold is reported but not
	// enforced.
	assert.Equal(t, result.Classification.ShouldExecute, result.Governance.ExecutionApproved)
	assert.False(t, result.Governance.ConfidenceMet)
	assert.True(t, result.Governance.ExecutionApproved)
}
