package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// Event is a calendar record in the calendar collection.
type Event struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Time          string   `json:"time"`
	Participants  []string `json:"participants"`
	CreatedBy     string   `json:"created_by,omitempty"`
	CreatedAt     string   `json:"created_at"`
	Status        string   `json:"status"`
	Link          string   `json:"link,omitempty"`
	RescheduledAt string   `json:"rescheduled_at,omitempty"`
}

// ScheduleTask asks the calendar agent to create an event. Force cancels a
// conflicting event instead of reporting the conflict.
type ScheduleTask struct {
	Title        string
	Time         string
	Participants []string
	CreatedBy    string
	Force        bool
}

func (ScheduleTask) Action() string { return "schedule" }

// RescheduleTask moves the event whose time matches OldTime to NewTime.
type RescheduleTask struct {
	OldTime string
	NewTime string
	Person  string
}

func (RescheduleTask) Action() string { return "reschedule" }

// QueryMeetingsTask lists recent events.
type QueryMeetingsTask struct{}

func (QueryMeetingsTask) Action() string { return "query" }

// Calendar manages scheduling, rescheduling and availability.
type Calendar struct {
	st     *store.Store
	logger *slog.Logger

	// now is the clock; swapped in tests.
	now func() time.Time
}

// NewCalendar returns the calendar agent.
func NewCalendar(st *store.Store, logger *slog.Logger) *Calendar {
	if logger == nil {
		logger = slog.Default()
	}
	return &Calendar{st: st, logger: logger, now: time.Now}
}

// Name implements Agent.
func (c *Calendar) Name() string { return "CalendarAgent" }

// Execute implements Agent.
func (c *Calendar) Execute(ctx context.Context, task Task) (Result, error) {
	switch t := task.(type) {
	case ScheduleTask:
		return c.schedule(ctx, t)
	case RescheduleTask:
		return c.reschedule(ctx, t)
	case QueryMeetingsTask:
		return c.query(ctx)
	default:
		return unknownAction(c.Name(), task), nil
	}
}

func (c *Calendar) schedule(_ context.Context, t ScheduleTask) (Result, error) {
	var steps []string
	title := t.Title
	if title == "" {
		title = "Meeting"
	}
	when := t.Time
	if when == "" {
		when = "TBD"
	}

	var events []Event
	if err := c.st.Load("calendar", &events); err != nil {
		return Result{}, fmt.Errorf("calendar: %w", err)
	}

	if len(t.Participants) > 0 {
		person := t.Participants[0]
		steps = append(steps, fmt.Sprintf("✅ CalendarAgent: Checking %s's availability...", person))

		// Conflict: same participant, identical time string (case-insensitive),
		// event still active.
		var conflict *Event
		for i := range events {
			e := &events[i]
			if e.Status == "cancelled" {
				continue
			}
			if containsPerson(e.Participants, person) && strings.EqualFold(e.Time, when) {
				conflict = e
				break
			}
		}

		if conflict != nil {
			if !t.Force {
				steps = append(steps,
					fmt.Sprintf("⚠️ Conflict detected: %s has '%s' at %s", person, conflict.Title, when),
					"❓ Prioritize this meeting or assign to someone else?")
				conflictCopy := *conflict
				return Result{Steps: steps, Status: "conflict", Conflict: &conflictCopy}, nil
			}
			steps = append(steps, fmt.Sprintf("⚠️ Conflict override: Removing '%s'", conflict.Title))
			conflict.Status = "cancelled"
		}

		steps = append(steps, fmt.Sprintf("📅 %s free at %s ✅", person, when))
	} else {
		steps = append(steps, fmt.Sprintf("✅ CalendarAgent: Reserving time slot at %s...", when))
	}

	link := meetingLink(title)
	if link != "" {
		steps = append(steps, fmt.Sprintf("📹 Generated meeting link: %s", link))
	}

	eid := store.GenID("EVT")
	createdBy := t.CreatedBy
	if createdBy == "" {
		createdBy = "user"
	}
	events = append(events, Event{
		ID:           eid,
		Title:        title,
		Time:         when,
		Participants: t.Participants,
		CreatedBy:    createdBy,
		CreatedAt:    c.now().Format(time.RFC3339),
		Status:       "scheduled",
		Link:         link,
	})
	if err := c.st.Save("calendar", events); err != nil {
		return Result{}, fmt.Errorf("calendar: %w", err)
	}

	steps = append(steps, fmt.Sprintf("✅ Meeting scheduled | %s", eid))
	return Result{Steps: steps, Status: "success", EventID: eid}, nil
}

func (c *Calendar) reschedule(_ context.Context, t RescheduleTask) (Result, error) {
	var steps []string

	if t.Person != "" {
		steps = append(steps,
			fmt.Sprintf("✅ CalendarAgent: Checking %s at %s...", t.Person, t.NewTime),
			fmt.Sprintf("📅 %s FREE at %s ✅", t.Person, t.NewTime))
	}

	var events []Event
	if err := c.st.Load("calendar", &events); err != nil {
		return Result{}, fmt.Errorf("calendar: %w", err)
	}

	found := false
	for i := range events {
		if strings.Contains(strings.ToLower(events[i].Time), strings.ToLower(t.OldTime)) {
			events[i].Time = t.NewTime
			events[i].Status = "rescheduled"
			events[i].RescheduledAt = c.now().Format(time.RFC3339)
			found = true
			break
		}
	}

	if found {
		if err := c.st.Save("calendar", events); err != nil {
			return Result{}, fmt.Errorf("calendar: %w", err)
		}
		steps = append(steps, fmt.Sprintf("✅ Meeting rescheduled from %s → %s", t.OldTime, t.NewTime))
		return Result{Steps: steps, Status: "success"}, nil
	}

	// Nothing matched the old time: record the reschedule as a new event
	// rather than failing.
	eid := store.GenID("EVT")
	var participants []string
	if t.Person != "" {
		participants = []string{t.Person}
	}
	events = append(events, Event{
		ID:           eid,
		Title:        fmt.Sprintf("Rescheduled: %s → %s", t.OldTime, t.NewTime),
		Time:         t.NewTime,
		Participants: participants,
		CreatedAt:    c.now().Format(time.RFC3339),
		Status:       "rescheduled",
	})
	if err := c.st.Save("calendar", events); err != nil {
		return Result{}, fmt.Errorf("calendar: %w", err)
	}

	steps = append(steps, fmt.Sprintf("✅ Meeting rescheduled to %s | %s", t.NewTime, eid))
	return Result{Steps: steps, Status: "success", EventID: eid}, nil
}

func (c *Calendar) query(_ context.Context) (Result, error) {
	steps := []string{"📅 CalendarAgent: Fetching your meetings..."}

	var events []Event
	if err := c.st.Load("calendar", &events); err != nil {
		return Result{}, fmt.Errorf("calendar: %w", err)
	}

	if len(events) == 0 {
		steps = append(steps, "📭 No meetings scheduled")
		return Result{Steps: steps, Status: "empty"}, nil
	}

	recent := events
	if len(recent) > 5 {
		recent = recent[len(recent)-5:]
	}
	for _, e := range recent {
		steps = append(steps, fmt.Sprintf("✅ %s - %s", e.Time, e.Title))
	}
	if len(events) > 5 {
		steps = append(steps, fmt.Sprintf("📊 ...and %d more events", len(events)-5))
	}

	return Result{Steps: steps, Status: "success"}, nil
}

// meetingLink synthesizes a plausible join URL when the title asks for a
// known platform. Checked in order (meet, zoom, teams); first match wins.
func meetingLink(title string) string {
	lower := strings.ToLower(title)
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	switch {
	case strings.Contains(lower, "google meet") || strings.Contains(lower, "meet"):
		return fmt.Sprintf("https://meet.google.com/%s-%s-%s", hex[:3], hex[3:7], hex[7:10])
	case strings.Contains(lower, "zoom"):
		return fmt.Sprintf("https://zoom.us/j/%s?pwd=%s", hex[:10], hex[10:18])
	case strings.Contains(lower, "teams"):
		return "https://teams.microsoft.com/l/meetup-join/" + hex
	}
	return ""
}

func containsPerson(people []string, person string) bool {
	for _, p := range people {
		if strings.EqualFold(p, person) {
			return true
		}
	}
	return false
}
