package agents

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// SearchLog is a record in the searches collection.
type SearchLog struct {
	ID         string `json:"id"`
	Query      string `json:"query"`
	SearchedAt string `json:"searched_at"`
	Status     string `json:"status"`
}

// FindExpertTask looks a person up by expertise keyword.
type FindExpertTask struct {
	Expertise string
}

func (FindExpertTask) Action() string { return "find_expert" }

// WebSearchTask runs a (simulated) web search.
type WebSearchTask struct {
	Query string
}

func (WebSearchTask) Action() string { return "search" }

// MonitorTask checks a (simulated) service status.
type MonitorTask struct {
	Service string
}

func (MonitorTask) Action() string { return "monitor" }

// Searcher finds experts, runs searches and monitors services. Web search
// and monitoring are simulated: they log and return canned results.
type Searcher struct {
	st     *store.Store
	dir    *directory.Directory
	logger *slog.Logger
	now    func() time.Time
	titler cases.Caser
}

// NewSearcher returns the search agent.
func NewSearcher(st *store.Store, dir *directory.Directory, logger *slog.Logger) *Searcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Searcher{st: st, dir: dir, logger: logger, now: time.Now, titler: cases.Title(language.English)}
}

// Name implements Agent.
func (s *Searcher) Name() string { return "SearchAgent" }

// Execute implements Agent.
func (s *Searcher) Execute(ctx context.Context, task Task) (Result, error) {
	switch t := task.(type) {
	case FindExpertTask:
		return s.findExpert(ctx, t)
	case WebSearchTask:
		return s.webSearch(t)
	case MonitorTask:
		return s.monitor(t)
	default:
		return unknownAction(s.Name(), task), nil
	}
}

func (s *Searcher) findExpert(_ context.Context, t FindExpertTask) (Result, error) {
	steps := []string{fmt.Sprintf("🔍 SearchAgent: Searching for %s expert...", t.Expertise)}

	contact, ok := s.dir.FindExpert(t.Expertise)
	if !ok {
		steps = append(steps, fmt.Sprintf("❌ No %s expert found in contacts", t.Expertise))
		return Result{Steps: steps, Status: "not_found"}, nil
	}

	role := s.titler.String(strings.ReplaceAll(contact.Role, "_", " "))
	if role == "" {
		role = "Team Member"
	}
	steps = append(steps,
		fmt.Sprintf("✅ Found: %s (%s)", contact.Name, role),
		fmt.Sprintf("📨 Notifying %s", contact.Name))

	// Log the notification in the messages collection.
	var messages []MessageLog
	if err := s.st.Load("messages", &messages); err != nil {
		return Result{}, fmt.Errorf("messages: %w", err)
	}
	messages = append(messages, MessageLog{
		ID:     store.GenID("MSG"),
		To:     contact.Name,
		Body:   fmt.Sprintf("You were identified as the %s expert", t.Expertise),
		SentAt: s.now().Format(time.RFC3339),
		Status: "sent",
	})
	if err := s.st.Save("messages", messages); err != nil {
		return Result{}, fmt.Errorf("messages: %w", err)
	}

	return Result{Steps: steps, Status: "found"}, nil
}

func (s *Searcher) webSearch(t WebSearchTask) (Result, error) {
	steps := []string{fmt.Sprintf("🔍 SearchAgent: Searching '%s'...", t.Query)}

	var searches []SearchLog
	if err := s.st.Load("searches", &searches); err != nil {
		return Result{}, fmt.Errorf("searches: %w", err)
	}
	searches = append(searches, SearchLog{
		ID:         store.GenID("SCH"),
		Query:      t.Query,
		SearchedAt: s.now().Format(time.RFC3339),
		Status:     "completed",
	})
	if err := s.st.Save("searches", searches); err != nil {
		return Result{}, fmt.Errorf("searches: %w", err)
	}

	steps = append(steps, fmt.Sprintf("✅ Search complete: results found for '%s'", t.Query))
	return Result{Steps: steps, Status: "found"}, nil
}

func (s *Searcher) monitor(t MonitorTask) (Result, error) {
	service := t.Service
	if service == "" {
		service = "system"
	}
	steps := []string{
		fmt.Sprintf("📊 SearchAgent: Checking %s status...", service),
		fmt.Sprintf("✅ %s: Operational", service),
	}
	return Result{Steps: steps, Status: "monitored"}, nil
}
