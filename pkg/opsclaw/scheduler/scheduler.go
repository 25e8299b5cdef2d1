// Package scheduler – scheduler.go fires due reminders. Reminder requests
// land in the calendar collection as events titled "Reminder: ..."; a cron
// loop scans for entries whose date has arrived, broadcasts them and marks
// them notified so they fire once.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/agents"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/delivery"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// reminderPrefix marks calendar events created as reminders.
const reminderPrefix = "Reminder: "

// minScanInterval guards against a misconfigured spec spinning the scan.
const minScanInterval = 10 * time.Second

// Scheduler periodically scans the calendar for due reminders.
type Scheduler struct {
	st      *store.Store
	deliver delivery.Deliverer
	logger  *slog.Logger

	cron    *cron.Cron
	mu      sync.Mutex
	running bool
	lastRun time.Time

	// now is the clock; swapped in tests.
	now func() time.Time
}

// New returns a reminder scheduler. The scan runs on the given cron spec
// ("@every 1m" when empty).
func New(st *store.Store, deliver delivery.Deliverer, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		st:      st,
		deliver: deliver,
		logger:  logger,
		cron:    cron.New(),
		now:     time.Now,
	}
}

// Start schedules the periodic scan and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context, spec string) error {
	if spec == "" {
		spec = "@every 1m"
	}
	if _, err := s.cron.AddFunc(spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule reminder scan %q: %w", spec, err)
	}
	s.cron.Start()
	s.logger.Info("reminder scheduler started", "spec", spec)
	return nil
}

// Stop halts the cron loop and waits for a running scan to finish.
func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
}

// tick runs one scan. Guarded against overlapping and too-frequent runs.
func (s *Scheduler) tick(ctx context.Context) {
	s.mu.Lock()
	if s.running || s.now().Sub(s.lastRun) < minScanInterval {
		s.mu.Unlock()
		return
	}
	s.running = true
	s.lastRun = s.now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	if fired, err := s.Scan(ctx); err != nil {
		s.logger.Error("reminder scan failed", "error", err)
	} else if fired > 0 {
		s.logger.Info("reminders fired", "count", fired)
	}
}

// Scan fires every due reminder once and returns how many fired.
func (s *Scheduler) Scan(ctx context.Context) (int, error) {
	var events []agents.Event
	if err := s.st.Load("calendar", &events); err != nil {
		return 0, fmt.Errorf("calendar: %w", err)
	}

	fired := 0
	for i := range events {
		e := &events[i]
		if e.Status != "scheduled" || !strings.HasPrefix(e.Title, reminderPrefix) {
			continue
		}
		if !s.due(e.Time) {
			continue
		}

		message := strings.TrimPrefix(e.Title, reminderPrefix)
		target := "you"
		if len(e.Participants) > 0 && e.Participants[0] != "self" {
			target = e.Participants[0]
		}
		text := fmt.Sprintf("⏰ Reminder for %s: %s", target, message)
		if err := s.deliver.Broadcast(ctx, "social", text); err != nil {
			s.logger.Warn("reminder broadcast failed", "event", e.ID, "error", err)
			continue
		}
		e.Status = "notified"
		fired++
	}

	if fired > 0 {
		if err := s.st.Save("calendar", events); err != nil {
			return fired, fmt.Errorf("calendar: %w", err)
		}
	}
	return fired, nil
}

// due reports whether a stored time string has arrived. Reminder times come
// from the context resolver as ISO dates or full timestamps; free-form
// strings like "3pm" or "TBD" never fire on their own.
func (s *Scheduler) due(value string) bool {
	now := s.now()
	if t, err := time.Parse("2006-01-02", value); err == nil {
		today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		return !t.After(today)
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return !t.After(now)
	}
	return false
}
