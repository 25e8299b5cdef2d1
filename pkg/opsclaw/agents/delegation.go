package agents

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

// Delegation is a record in the delegations collection.
type Delegation struct {
	ID         string `json:"id"`
	Person     string `json:"person"`
	Task       string `json:"task"`
	AssignedAt string `json:"assigned_at"`
	Status     string `json:"status"`
}

// DelegateTask assigns a described task to a person. Independent of ticket
// creation; the "tell X to fix Y" pattern uses messaging + ticket instead.
type DelegateTask struct {
	Person          string
	TaskDescription string
}

func (DelegateTask) Action() string { return "delegate" }

// ContactPersonTask logs a direct contact with a person.
type ContactPersonTask struct {
	Person  string
	Message string
}

func (ContactPersonTask) Action() string { return "contact" }

// Delegator assigns tasks to people.
type Delegator struct {
	st     *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewDelegator returns the delegation agent.
func NewDelegator(st *store.Store, logger *slog.Logger) *Delegator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Delegator{st: st, logger: logger, now: time.Now}
}

// Name implements Agent.
func (d *Delegator) Name() string { return "DelegationAgent" }

// Execute implements Agent.
func (d *Delegator) Execute(_ context.Context, task Task) (Result, error) {
	switch t := task.(type) {
	case DelegateTask:
		return d.delegate(t)
	case ContactPersonTask:
		return d.contact(t)
	default:
		return unknownAction(d.Name(), task), nil
	}
}

func (d *Delegator) delegate(t DelegateTask) (Result, error) {
	person := t.Person
	if person == "" {
		person = "unknown"
	}

	id := store.GenID("DLG")
	var delegations []Delegation
	if err := d.st.Load("delegations", &delegations); err != nil {
		return Result{}, fmt.Errorf("delegations: %w", err)
	}
	delegations = append(delegations, Delegation{
		ID:         id,
		Person:     person,
		Task:       t.TaskDescription,
		AssignedAt: d.now().Format(time.RFC3339),
		Status:     "assigned",
	})
	if err := d.st.Save("delegations", delegations); err != nil {
		return Result{}, fmt.Errorf("delegations: %w", err)
	}

	steps := []string{
		fmt.Sprintf("👤 DelegationAgent: Task delegated to %s", person),
		fmt.Sprintf("📋 %s | %s", t.TaskDescription, id),
	}
	return Result{Steps: steps, Status: "delegated", DelegationID: id}, nil
}

func (d *Delegator) contact(t ContactPersonTask) (Result, error) {
	id := store.GenID("MSG")
	var messages []MessageLog
	if err := d.st.Load("messages", &messages); err != nil {
		return Result{}, fmt.Errorf("messages: %w", err)
	}
	messages = append(messages, MessageLog{
		ID:     id,
		To:     t.Person,
		Body:   t.Message,
		SentAt: d.now().Format(time.RFC3339),
		Status: "sent",
	})
	if err := d.st.Save("messages", messages); err != nil {
		return Result{}, fmt.Errorf("messages: %w", err)
	}

	steps := []string{fmt.Sprintf("💬 DelegationAgent: Contacted %s", t.Person)}
	return Result{Steps: steps, Status: "sent", MessageID: id}, nil
}
