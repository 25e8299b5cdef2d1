// Package delivery is the outbound notification collaborator. The router
// core only depends on the Deliverer interface; whether a message really
// leaves the process is a property of the chosen implementation. Delivery is
// best effort: a failed or unroutable send degrades to a "queued"/"simulated"
// receipt rather than an error the orchestrator would have to abort on.
package delivery

import (
	"context"
	"fmt"
	"log/slog"
)

// SendReceipt reports what actually happened to an intelligent send.
type SendReceipt struct {
	// Status is "success", "simulated" or "queued".
	Status string

	// App is the application the message went out on (e.g. "discord",
	// "slack"). Empty when nothing was delivered.
	App string

	// To is the resolved recipient identifier.
	To string

	// ChainOfThought is the routing trace, one line per decision.
	ChainOfThought []string
}

// Deliverer sends messages to people and channels.
type Deliverer interface {
	// IntelligentSend picks the best route to a person and delivers the
	// message. The receipt says which app was used; errors are reserved for
	// internal failures, not for unroutable recipients.
	IntelligentSend(ctx context.Context, person, message string) (SendReceipt, error)

	// Broadcast posts a message to a named team channel (e.g. "devops",
	// "social").
	Broadcast(ctx context.Context, channel, message string) error
}

// Simulated is the default Deliverer: it logs what would have been sent and
// returns deterministic receipts. Used in tests and whenever no chat
// transport is configured.
type Simulated struct {
	logger *slog.Logger

	// Broadcasts records every Broadcast call for test inspection.
	Broadcasts []string
}

// NewSimulated returns a Simulated deliverer.
func NewSimulated(logger *slog.Logger) *Simulated {
	if logger == nil {
		logger = slog.Default()
	}
	return &Simulated{logger: logger}
}

// IntelligentSend pretends to route the message and reports "simulated".
func (s *Simulated) IntelligentSend(_ context.Context, person, message string) (SendReceipt, error) {
	s.logger.Info("simulated send", "to", person, "message", message)
	return SendReceipt{
		Status: "simulated",
		App:    "slack",
		To:     person,
		ChainOfThought: []string{
			fmt.Sprintf("Checking where %s is active...", person),
			"No live transport configured, simulating delivery",
		},
	}, nil
}

// Broadcast records and logs the channel post.
func (s *Simulated) Broadcast(_ context.Context, channel, message string) error {
	s.Broadcasts = append(s.Broadcasts, fmt.Sprintf("#%s: %s", channel, message))
	s.logger.Info("simulated broadcast", "channel", channel, "message", message)
	return nil
}
