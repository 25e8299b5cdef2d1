package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

var testClock = func() time.Time {
	return time.Date(2026, time.January, 7, 9, 0, 0, 0, time.UTC)
}

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	return st
}

func newTestCalendar(t *testing.T) (*Calendar, *store.Store) {
	t.Helper()
	st := newTestStore(t)
	c := NewCalendar(st, slog.Default())
	c.now = testClock
	return c, st
}

func TestCalendar_Schedule(t *testing.T) {
	t.Parallel()
	c, st := newTestCalendar(t)

	res, err := c.Execute(context.Background(), ScheduleTask{
		Title:        "Weekly sync",
		Time:         "10am",
		Participants: []string{"Alice"},
	})
	require.NoError(t, err)

	assert.Equal(t, "success", res.Status)
	assert.Regexp(t, `^EVT-[0-9a-f]{4}$`, res.EventID)
	assert.Contains(t, res.Steps[0], "Alice")

	var events []Event
	require.NoError(t, st.Load("calendar", &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Weekly sync", events[0].Title)
	assert.Equal(t, "scheduled", events[0].Status)
}

func TestCalendar_ScheduleConflict(t *testing.T) {
	t.Parallel()
	c, st := newTestCalendar(t)

	ctx := context.Background()
	_, err := c.Execute(ctx, ScheduleTask{Title: "Standup", Time: "10am", Participants: []string{"Alice"}})
	require.NoError(t, err)

	res, err := c.Execute(ctx, ScheduleTask{Title: "Planning", Time: "10AM", Participants: []string{"alice"}})
	require.NoError(t, err)

	assert.Equal(t, "conflict", res.Status)
	assert.Empty(t, res.EventID)
	require.NotNil(t, res.Conflict)
	assert.Equal(t, "Standup", res.Conflict.Title)

	// The conflicting request must not have been persisted.
	var events []Event
	require.NoError(t, st.Load("calendar", &events))
	assert.Len(t, events, 1)
}

func TestCalendar_ScheduleForce(t *testing.T) {
	t.Parallel()
	c, st := newTestCalendar(t)

	ctx := context.Background()
	_, err := c.Execute(ctx, ScheduleTask{Title: "Standup", Time: "10am", Participants: []string{"Alice"}})
	require.NoError(t, err)

	res, err := c.Execute(ctx, ScheduleTask{
		Title:        "Planning",
		Time:         "10am",
		Participants: []string{"Alice"},
		Force:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.NotEmpty(t, res.EventID)

	var events []Event
	require.NoError(t, st.Load("calendar", &events))
	require.Len(t, events, 2)
	assert.Equal(t, "cancelled", events[0].Status)
	assert.Equal(t, "scheduled", events[1].Status)
}

func TestCalendar_ScheduleDefaults(t *testing.T) {
	t.Parallel()
	c, st := newTestCalendar(t)

	res, err := c.Execute(context.Background(), ScheduleTask{})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)

	var events []Event
	require.NoError(t, st.Load("calendar", &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Meeting", events[0].Title)
	assert.Equal(t, "TBD", events[0].Time)
}

func TestCalendar_MeetingLink(t *testing.T) {
	t.Parallel()
	c, _ := newTestCalendar(t)

	res, err := c.Execute(context.Background(), ScheduleTask{Title: "Zoom call with Dana", Time: "2pm"})
	require.NoError(t, err)

	found := false
	for _, step := range res.Steps {
		if strings.Contains(step, "zoom.us") {
			found = true
		}
	}
	assert.True(t, found, "expected a zoom link step, got %v", res.Steps)
}

func TestCalendar_Reschedule(t *testing.T) {
	t.Parallel()
	c, st := newTestCalendar(t)

	ctx := context.Background()
	_, err := c.Execute(ctx, ScheduleTask{Title: "Standup", Time: "2pm", Participants: []string{"Alice"}})
	require.NoError(t, err)

	res, err := c.Execute(ctx, RescheduleTask{OldTime: "2pm", NewTime: "4pm", Person: "Alice"})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)

	var events []Event
	require.NoError(t, st.Load("calendar", &events))
	require.Len(t, events, 1)
	assert.Equal(t, "4pm", events[0].Time)
	assert.Equal(t, "rescheduled", events[0].Status)
}

func TestCalendar_RescheduleNoMatchCreatesEvent(t *testing.T) {
	t.Parallel()
	c, st := newTestCalendar(t)

	res, err := c.Execute(context.Background(), RescheduleTask{OldTime: "2pm", NewTime: "4pm"})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)
	assert.NotEmpty(t, res.EventID)

	var events []Event
	require.NoError(t, st.Load("calendar", &events))
	require.Len(t, events, 1)
	assert.Equal(t, "Rescheduled: 2pm → 4pm", events[0].Title)
}

func TestCalendar_QueryEmpty(t *testing.T) {
	t.Parallel()
	c, _ := newTestCalendar(t)

	res, err := c.Execute(context.Background(), QueryMeetingsTask{})
	require.NoError(t, err)
	assert.Equal(t, "empty", res.Status)
	assert.Contains(t, res.Steps, "📭 No meetings scheduled")
}

func TestCalendar_QueryShowsLastFive(t *testing.T) {
	t.Parallel()
	c, _ := newTestCalendar(t)

	ctx := context.Background()
	for i := 0; i < 7; i++ {
		_, err := c.Execute(ctx, ScheduleTask{Title: fmt.Sprintf("m%d", i), Time: fmt.Sprintf("%dpm", i+1)})
		require.NoError(t, err)
	}

	res, err := c.Execute(ctx, QueryMeetingsTask{})
	require.NoError(t, err)
	assert.Equal(t, "success", res.Status)

	// Header + 5 events + overflow line.
	require.Len(t, res.Steps, 7)
	assert.Contains(t, res.Steps[6], "2 more events")
}

func TestCalendar_UnknownTask(t *testing.T) {
	t.Parallel()
	c, _ := newTestCalendar(t)

	res, err := c.Execute(context.Background(), CreateTicketTask{})
	require.NoError(t, err)
	require.Len(t, res.Steps, 1)
	assert.Contains(t, res.Steps[0], "Unknown action")
}
