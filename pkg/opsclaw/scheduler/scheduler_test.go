package scheduler

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/agents"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/orchestrator"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

var refClock = func() time.Time {
	return time.Date(2026, time.January, 7, 9, 0, 0, 0, time.UTC)
}

func newTestScheduler(t *testing.T, events []agents.Event) (*Scheduler, *store.Store, *delivery.Simulated) {
	t.Helper()
	st, err := store.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	require.NoError(t, st.Save("calendar", events))

	deliver := delivery.NewSimulated(slog.Default())
	s := New(st, deliver, slog.Default())
	s.now = refClock
	return s, st, deliver
}

func TestScan_FiresDueReminderOnce(t *testing.T) {
	t.Parallel()
	s, st, deliver := newTestScheduler(t, []agents.Event{
		{ID: "EVT-1", Title: "Reminder: submit the report", Time: "2026-01-07", Participants: []string{"self"}, Status: "scheduled"},
	})

	ctx := context.Background()
	fired, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)

	require.Len(t, deliver.Broadcasts, 1)
	assert.Contains(t, deliver.Broadcasts[0], "#social")
	assert.Contains(t, deliver.Broadcasts[0], "⏰ Reminder for you: submit the report")

	var events []agents.Event
	require.NoError(t, st.Load("calendar", &events))
	assert.Equal(t, "notified", events[0].Status)

	// Second scan sees the notified status and stays quiet.
	fired, err = s.Scan(ctx)
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Len(t, deliver.Broadcasts, 1)
}

func TestScan_PastDateIsDue(t *testing.T) {
	t.Parallel()
	s, _, deliver := newTestScheduler(t, []agents.Event{
		{ID: "EVT-1", Title: "Reminder: rotate the certs", Time: "2026-01-01", Participants: []string{"Dana"}, Status: "scheduled"},
	})

	fired, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	assert.Contains(t, deliver.Broadcasts[0], "Reminder for Dana")
}

func TestScan_FutureAndFreeFormNeverFire(t *testing.T) {
	t.Parallel()
	s, st, deliver := newTestScheduler(t, []agents.Event{
		{ID: "EVT-1", Title: "Reminder: future", Time: "2026-02-01", Status: "scheduled"},
		{ID: "EVT-2", Title: "Reminder: vague", Time: "3pm", Status: "scheduled"},
		{ID: "EVT-3", Title: "Reminder: unset", Time: "TBD", Status: "scheduled"},
	})

	fired, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Empty(t, deliver.Broadcasts)

	var events []agents.Event
	require.NoError(t, st.Load("calendar", &events))
	for _, e := range events {
		assert.Equal(t, "scheduled", e.Status)
	}
}

func TestScan_SkipsPlainMeetings(t *testing.T) {
	t.Parallel()
	s, _, deliver := newTestScheduler(t, []agents.Event{
		{ID: "EVT-1", Title: "Standup", Time: "2026-01-01", Status: "scheduled"},
	})

	fired, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Zero(t, fired)
	assert.Empty(t, deliver.Broadcasts)
}

func TestScan_RFC3339Timestamp(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestScheduler(t, []agents.Event{
		{ID: "EVT-1", Title: "Reminder: standup prep", Time: "2026-01-07T08:30:00Z", Status: "scheduled"},
		{ID: "EVT-2", Title: "Reminder: later today", Time: "2026-01-07T18:00:00Z", Status: "scheduled"},
	})

	fired, err := s.Scan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
}

func TestScan_FiresRoutedReminder(t *testing.T) {
	t.Parallel()
	st, err := store.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)

	logger := slog.Default()
	o := orchestrator.New(orchestrator.Deps{
		Calendar: agents.NewCalendar(st, logger),
		Logger:   logger,
	})

	ctx := context.Background()
	_, err = o.Route(ctx, nil, "Please remind me today to submit the report")
	require.NoError(t, err)

	// The planner stores "today" as a concrete date the scan can fire on.
	var events []agents.Event
	require.NoError(t, st.Load("calendar", &events))
	require.Len(t, events, 1)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, events[0].Time)

	deliver := delivery.NewSimulated(logger)
	s := New(st, deliver, logger)
	fired, err := s.Scan(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, fired)
	require.Len(t, deliver.Broadcasts, 1)
	assert.Contains(t, deliver.Broadcasts[0], "submit the report")
}

func TestTick_FrequencyGuard(t *testing.T) {
	t.Parallel()
	s, _, deliver := newTestScheduler(t, []agents.Event{
		{ID: "EVT-1", Title: "Reminder: once", Time: "2026-01-01", Status: "scheduled"},
		{ID: "EVT-2", Title: "Reminder: twice", Time: "2026-01-01", Status: "scheduled"},
	})

	ctx := context.Background()
	s.tick(ctx)
	require.Len(t, deliver.Broadcasts, 2)

	// The clock has not advanced, so an immediate second tick is dropped by
	// the interval guard before it can even look at the calendar.
	s.tick(ctx)
	assert.Len(t, deliver.Broadcasts, 2)
}

func TestStart_BadSpec(t *testing.T) {
	t.Parallel()
	s, _, _ := newTestScheduler(t, nil)

	err := s.Start(context.Background(), "not a cron spec")
	require.Error(t, err)
	s.Stop()
}
