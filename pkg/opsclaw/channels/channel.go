// Package channels defines the chat transport abstraction for opsclaw.
// Each platform (Discord today; the interface leaves room for more)
// implements Channel so the serve loop and the delivery layer can treat
// incoming commands and outgoing step traces uniformly.
package channels

import (
	"context"
	"errors"
	"time"
)

// Channel is a connected chat platform that can receive command messages
// and send replies.
type Channel interface {
	// Name identifies the platform ("discord").
	Name() string

	// Connect establishes the platform connection. Must be called before
	// Send or Receive.
	Connect(ctx context.Context) error

	// Disconnect shuts the connection down and closes the Receive channel.
	Disconnect() error

	// Send delivers a message to the given platform-specific recipient
	// (user or channel identifier).
	Send(ctx context.Context, to string, text string) error

	// Receive emits incoming messages until Disconnect.
	Receive() <-chan *IncomingMessage

	// IsConnected reports whether the channel is usable.
	IsConnected() bool
}

// IncomingMessage is a command message received from any platform.
type IncomingMessage struct {
	ID        string
	Channel   string
	From      string
	ChatID    string
	Content   string
	Timestamp time.Time
}

// ErrChannelDisconnected indicates the channel is not connected.
var ErrChannelDisconnected = errors.New("channel is not connected")
