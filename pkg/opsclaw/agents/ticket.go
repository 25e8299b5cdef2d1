package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// Ticket is a work ticket record in the tickets collection.
type Ticket struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	AssignedTo string `json:"assigned_to"`
	Priority   string `json:"priority"`
	Deadline   string `json:"deadline"`
	CreatedAt  string `json:"created_at"`
	Status     string `json:"status"`
}

// CreateTicketTask asks the ticketing agent to open a ticket. There is no
// conflict checking; tickets always get created.
type CreateTicketTask struct {
	Title      string
	AssignedTo string
	Priority   string
	Deadline   string
}

func (CreateTicketTask) Action() string { return "create_ticket" }

// Ticketer creates and tracks work tickets.
type Ticketer struct {
	st     *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewTicketer returns the ticketing agent.
func NewTicketer(st *store.Store, logger *slog.Logger) *Ticketer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ticketer{st: st, logger: logger, now: time.Now}
}

// Name implements Agent.
func (t *Ticketer) Name() string { return "TaskAgent" }

// Execute implements Agent.
func (t *Ticketer) Execute(_ context.Context, task Task) (Result, error) {
	ct, ok := task.(CreateTicketTask)
	if !ok {
		return unknownAction(t.Name(), task), nil
	}

	title := ct.Title
	if title == "" {
		title = "Task"
	}
	assignee := ct.AssignedTo
	if assignee == "" {
		assignee = "unassigned"
	}
	priority := ct.Priority
	if priority == "" {
		priority = "Medium"
	}
	deadline := ct.Deadline
	if deadline == "" {
		deadline = "TBD"
	}

	tid := store.GenID("TKT")
	var tickets []Ticket
	if err := t.st.Load("tickets", &tickets); err != nil {
		return Result{}, fmt.Errorf("tickets: %w", err)
	}
	tickets = append(tickets, Ticket{
		ID:         tid,
		Title:      title,
		AssignedTo: assignee,
		Priority:   priority,
		Deadline:   deadline,
		CreatedAt:  t.now().Format(time.RFC3339),
		Status:     "open",
	})
	if err := t.st.Save("tickets", tickets); err != nil {
		return Result{}, fmt.Errorf("tickets: %w", err)
	}

	steps := []string{
		fmt.Sprintf("🎫 TaskAgent: Ticket created for %s", assignee),
		fmt.Sprintf("📋 %s | Priority: %s | %s", title, priority, tid),
	}
	return Result{Steps: steps, Status: "created", TicketID: tid}, nil
}
