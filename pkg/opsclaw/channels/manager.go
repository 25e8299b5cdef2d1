package channels

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Manager aggregates multiple chat channels into a single incoming message
// stream and routes outgoing messages to the right platform.
type Manager struct {
	channels map[string]Channel
	messages chan *IncomingMessage
	logger   *slog.Logger

	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// NewManager creates an empty channel manager.
func NewManager(logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		channels: make(map[string]Channel),
		messages: make(chan *IncomingMessage, 256),
		logger:   logger,
	}
}

// Register adds a channel. Must be called before Start.
func (m *Manager) Register(ch Channel) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := ch.Name()
	if _, exists := m.channels[name]; exists {
		return fmt.Errorf("channel %q already registered", name)
	}
	m.channels[name] = ch
	m.logger.Info("channel registered", "channel", name)
	return nil
}

// Start connects all registered channels and begins forwarding their
// messages. Channels that fail to connect are logged and skipped; Start
// fails only when nothing connected.
func (m *Manager) Start(ctx context.Context) error {
	m.ctx, m.cancel = context.WithCancel(ctx)

	var connected int
	for name, ch := range m.channels {
		if err := ch.Connect(m.ctx); err != nil {
			m.logger.Error("channel connect failed", "channel", name, "error", err)
			continue
		}
		connected++
		m.logger.Info("channel connected", "channel", name)
		go m.listen(ch)
	}

	if connected == 0 {
		return fmt.Errorf("no channel connected")
	}
	return nil
}

// Stop disconnects all channels and closes the aggregated stream.
func (m *Manager) Stop() {
	if m.cancel != nil {
		m.cancel()
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for name, ch := range m.channels {
		if err := ch.Disconnect(); err != nil {
			m.logger.Error("channel disconnect failed", "channel", name, "error", err)
		}
	}
	close(m.messages)
}

// Messages returns the aggregated incoming stream.
func (m *Manager) Messages() <-chan *IncomingMessage {
	return m.messages
}

// Send delivers text through the named channel.
func (m *Manager) Send(ctx context.Context, channelName, to, text string) error {
	m.mu.RLock()
	ch, exists := m.channels[channelName]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("channel %q not registered", channelName)
	}
	if !ch.IsConnected() {
		return fmt.Errorf("channel %q: %w", channelName, ErrChannelDisconnected)
	}
	return ch.Send(ctx, to, text)
}

// Connected lists the names of channels that are currently connected, in
// registration map iteration order.
func (m *Manager) Connected() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var names []string
	for name, ch := range m.channels {
		if ch.IsConnected() {
			names = append(names, name)
		}
	}
	return names
}

func (m *Manager) listen(ch Channel) {
	for msg := range ch.Receive() {
		select {
		case m.messages <- msg:
		case <-m.ctx.Done():
			return
		}
	}
}
