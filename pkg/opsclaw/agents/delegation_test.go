package agents

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDelegator_Delegate(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	d := NewDelegator(st, slog.Default())
	d.now = testClock

	res, err := d.Execute(context.Background(), DelegateTask{
		Person:          "Rithvik",
		TaskDescription: "review the frontend PR",
	})
	require.NoError(t, err)

	assert.Equal(t, "delegated", res.Status)
	assert.Regexp(t, `^DLG-[0-9a-f]{4}$`, res.DelegationID)
	assert.Contains(t, res.Steps[0], "Rithvik")

	var delegations []Delegation
	require.NoError(t, st.Load("delegations", &delegations))
	require.Len(t, delegations, 1)
	assert.Equal(t, "assigned", delegations[0].Status)
	assert.Equal(t, "review the frontend PR", delegations[0].Task)
}

func TestDelegator_DelegateDefaultsPerson(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	d := NewDelegator(st, slog.Default())
	d.now = testClock

	_, err := d.Execute(context.Background(), DelegateTask{TaskDescription: "triage"})
	require.NoError(t, err)

	var delegations []Delegation
	require.NoError(t, st.Load("delegations", &delegations))
	require.Len(t, delegations, 1)
	assert.Equal(t, "unknown", delegations[0].Person)
}

func TestDelegator_Contact(t *testing.T) {
	t.Parallel()
	st := newTestStore(t)
	d := NewDelegator(st, slog.Default())
	d.now = testClock

	res, err := d.Execute(context.Background(), ContactPersonTask{Person: "Sarah", Message: "ping"})
	require.NoError(t, err)

	assert.Equal(t, "sent", res.Status)
	assert.Regexp(t, `^MSG-[0-9a-f]{4}$`, res.MessageID)

	var messages []MessageLog
	require.NoError(t, st.Load("messages", &messages))
	require.Len(t, messages, 1)
	assert.Equal(t, "Sarah", messages[0].To)
}
