// Package agents contains the specialized handlers the orchestrator
// dispatches to: calendar, alert, ticket, search, messaging, delegation and
// phone. Each handler takes a typed task and returns a Result whose Steps
// are shown verbatim to the end user as the trace of what the agent did.
//
// Handlers run sequentially within one routed message, so step output order
// always equals invocation order.
package agents

import (
	"context"
	"fmt"
)

// Task is implemented by every agent task variant. Each agent knows its own
// variants; handing it anything else yields a single "unknown action" step.
type Task interface {
	// Action names the operation, e.g. "schedule", "send_alert".
	Action() string
}

// Result is what an agent reports back. Steps is never mutated after return;
// the orchestrator aggregates results, it does not merge them.
type Result struct {
	Steps  []string `json:"steps"`
	Status string   `json:"status,omitempty"`

	EventID      string `json:"event_id,omitempty"`
	AlertID      string `json:"alert_id,omitempty"`
	TicketID     string `json:"ticket_id,omitempty"`
	MessageID    string `json:"message_id,omitempty"`
	DelegationID string `json:"delegation_id,omitempty"`
	CallID       string `json:"call_id,omitempty"`

	// Conflict carries the conflicting calendar event when a schedule
	// attempt returns status "conflict".
	Conflict *Event `json:"conflict_details,omitempty"`
}

// Agent is a handler for one category of action.
type Agent interface {
	Name() string
	Execute(ctx context.Context, task Task) (Result, error)
}

// unknownAction is the shared fallback for task variants an agent does not
// handle.
func unknownAction(agent string, task Task) Result {
	return Result{Steps: []string{fmt.Sprintf("❓ %s: Unknown action %q", agent, task.Action())}}
}
