package agents

import (
	"context"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

func newTestAlerter(t *testing.T) (*Alerter, *store.Store, *delivery.Simulated) {
	t.Helper()
	st := newTestStore(t)
	dir := directory.New(st)
	require.NoError(t, dir.Save([]directory.Contact{
		{Name: "Dana", Role: "devops_lead", Expertise: []string{"devops"}},
		{Name: "Sarah", Role: "product_manager", Expertise: []string{"product"}},
		{Name: "John", Role: "developer"},
	}))
	deliver := delivery.NewSimulated(slog.Default())
	a := NewAlerter(st, dir, deliver, slog.Default())
	a.now = testClock
	return a, st, deliver
}

func TestAlerter_TargetedAlert(t *testing.T) {
	t.Parallel()
	a, st, _ := newTestAlerter(t)

	res, err := a.Execute(context.Background(), SendAlertTask{
		Title:        "Alert",
		Message:      "deploy pipeline stuck",
		Priority:     "High",
		TargetPerson: "John",
	})
	require.NoError(t, err)

	assert.Equal(t, "sent", res.Status)
	assert.Regexp(t, `^ALT-[0-9a-f]{4}$`, res.AlertID)
	assert.Contains(t, strings.Join(res.Steps, "\n"), "Sent to John")

	var alerts []Alert
	require.NoError(t, st.Load("alerts", &alerts))
	require.Len(t, alerts, 1)
	assert.Equal(t, "active", alerts[0].Status)
}

func TestAlerter_TargetedUnknownPersonQueues(t *testing.T) {
	t.Parallel()
	a, _, _ := newTestAlerter(t)

	res, err := a.Execute(context.Background(), SendAlertTask{
		Message:      "heads up",
		Priority:     "Low",
		TargetPerson: "Zoe",
	})
	require.NoError(t, err)
	assert.Contains(t, strings.Join(res.Steps, "\n"), "queued for Zoe")
}

func TestAlerter_RecipientsFanOut(t *testing.T) {
	t.Parallel()
	a, _, _ := newTestAlerter(t)

	res, err := a.Execute(context.Background(), SendAlertTask{
		Message:    "release at 5",
		Priority:   "Low",
		Recipients: []string{"Dana", "John"},
	})
	require.NoError(t, err)

	joined := strings.Join(res.Steps, "\n")
	assert.Contains(t, joined, "Sent to @Dana")
	assert.Contains(t, joined, "Sent to @John")
}

func TestAlerter_CriticalAutoRoute(t *testing.T) {
	t.Parallel()
	a, _, deliver := newTestAlerter(t)

	res, err := a.Execute(context.Background(), SendAlertTask{
		Title:    "Payment API",
		Message:  "payment api server is down",
		Priority: "Critical",
	})
	require.NoError(t, err)

	joined := strings.Join(res.Steps, "\n")
	// Tech wording routes to the devops channel, and critical alerts pull in
	// the devops and product leads plus the escalation timer.
	assert.Contains(t, joined, "#devops")
	assert.Contains(t, joined, "@dana")
	assert.Contains(t, joined, "@sarah")
	assert.Contains(t, joined, "Escalating")
	assert.Contains(t, joined, "Waiting for acknowledgement")

	require.NotEmpty(t, deliver.Broadcasts)
	assert.Contains(t, deliver.Broadcasts[0], "#devops")
}

func TestAlerter_NonTechCriticalGoesSocial(t *testing.T) {
	t.Parallel()
	a, _, deliver := newTestAlerter(t)

	_, err := a.Execute(context.Background(), SendAlertTask{
		Message:  "office move is urgent",
		Priority: "Critical",
	})
	require.NoError(t, err)

	require.NotEmpty(t, deliver.Broadcasts)
	assert.Contains(t, deliver.Broadcasts[0], "#social")
}

func TestAlerter_LowPriorityBroadcast(t *testing.T) {
	t.Parallel()
	a, _, deliver := newTestAlerter(t)

	res, err := a.Execute(context.Background(), SendAlertTask{
		Message:  "lunch moved to 1pm",
		Priority: "Low",
	})
	require.NoError(t, err)

	assert.Contains(t, strings.Join(res.Steps, "\n"), "#social")
	assert.NotContains(t, strings.Join(res.Steps, "\n"), "Waiting for acknowledgement")
	require.Len(t, deliver.Broadcasts, 1)
}

func TestAlerter_Escalate(t *testing.T) {
	t.Parallel()
	a, _, _ := newTestAlerter(t)

	res, err := a.Execute(context.Background(), EscalateTask{})
	require.NoError(t, err)

	assert.Equal(t, "escalated", res.Status)
	joined := strings.Join(res.Steps, "\n")
	assert.Contains(t, joined, "@dana")
	assert.Contains(t, joined, "@john")
	assert.NotContains(t, joined, "@sarah")
}
