package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractActions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []ActionType
	}{
		{
			name:     "schedule keywords",
			input:    "Schedule a meeting with Alice",
			expected: []ActionType{ActionScheduleEvent},
		},
		{
			name:     "alert keywords",
			input:    "The API is throwing 500 errors",
			expected: []ActionType{ActionTriggerAlert},
		},
		{
			name:     "ticket keywords",
			input:    "Assign a ticket to John",
			expected: []ActionType{ActionCreateTicket},
		},
		{
			name:     "reminder keywords",
			input:    "Don't forget to ping me later",
			expected: []ActionType{ActionCreateReminder},
		},
		{
			name:     "no keywords",
			input:    "hello there",
			expected: nil,
		},
		{
			name:     "multiple families in definition order",
			input:    "Server is down! Fix it and remind me later",
			expected: []ActionType{ActionTriggerAlert, ActionCreateTicket, ActionCreateReminder},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions := ExtractActions(tt.input)
			types := make([]ActionType, 0, len(actions))
			for _, a := range actions {
				types = append(types, a.Type)
			}
			if tt.expected == nil {
				assert.Empty(t, actions)
				return
			}
			assert.Equal(t, tt.expected, types)
		})
	}
}

func TestExtractActions_AllKeywordsRecorded(t *testing.T) {
	t.Parallel()

	actions := ExtractActions("urgent critical error in checkout")
	require.Len(t, actions, 1)
	assert.Equal(t, ActionTriggerAlert, actions[0].Type)
	assert.Equal(t, []string{"error", "urgent", "critical"}, actions[0].MatchedKeywords)
	assert.Equal(t, "urgent critical error in checkout", actions[0].RawText)
}

func TestExtractActions_CaseInsensitive(t *testing.T) {
	t.Parallel()

	actions := ExtractActions("SCHEDULE A MEETING")
	require.Len(t, actions, 1)
	assert.Equal(t, ActionScheduleEvent, actions[0].Type)
}
