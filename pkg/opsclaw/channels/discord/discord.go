// Package discord implements the Discord channel using discordgo. Messages
// that start with the configured trigger are forwarded to the router; step
// traces go back to the originating channel or DM.
package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/channels"
)

// Config holds Discord channel configuration.
type Config struct {
	// Token is the bot token.
	Token string `yaml:"token"`

	// Trigger is the prefix that activates the router (e.g. "!ops").
	// Empty means every message is routed.
	Trigger string `yaml:"trigger"`

	// RespondToDMs enables handling direct messages.
	RespondToDMs bool `yaml:"respond_to_dms"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Trigger:      "!ops",
		RespondToDMs: true,
	}
}

// Discord implements channels.Channel over a discordgo session.
type Discord struct {
	cfg     Config
	logger  *slog.Logger
	session *discordgo.Session

	messages  chan *channels.IncomingMessage
	connected atomic.Bool
}

// New creates a Discord channel. Connect must be called before use.
func New(cfg Config, logger *slog.Logger) *Discord {
	if logger == nil {
		logger = slog.Default()
	}
	return &Discord{
		cfg:      cfg,
		logger:   logger,
		messages: make(chan *channels.IncomingMessage, 64),
	}
}

// Name implements channels.Channel.
func (d *Discord) Name() string { return "discord" }

// Connect opens the gateway session and installs the message handler.
func (d *Discord) Connect(_ context.Context) error {
	if d.cfg.Token == "" {
		return fmt.Errorf("discord: no token configured")
	}

	session, err := discordgo.New("Bot " + d.cfg.Token)
	if err != nil {
		return fmt.Errorf("discord: create session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentsDirectMessages | discordgo.IntentMessageContent
	session.AddHandler(d.onMessage)

	if err := session.Open(); err != nil {
		return fmt.Errorf("discord: open gateway: %w", err)
	}

	d.session = session
	d.connected.Store(true)
	d.logger.Info("discord connected", "user", session.State.User.Username)
	return nil
}

// Disconnect closes the session and the Receive stream.
func (d *Discord) Disconnect() error {
	if !d.connected.CompareAndSwap(true, false) {
		return nil
	}
	close(d.messages)
	if d.session != nil {
		return d.session.Close()
	}
	return nil
}

// Send delivers text to a Discord channel ID, or to a user's DM channel
// when to looks like a user ID mention.
func (d *Discord) Send(_ context.Context, to string, text string) error {
	if !d.connected.Load() {
		return channels.ErrChannelDisconnected
	}

	channelID := to
	if strings.HasPrefix(to, "user:") {
		dm, err := d.session.UserChannelCreate(strings.TrimPrefix(to, "user:"))
		if err != nil {
			return fmt.Errorf("discord: open DM: %w", err)
		}
		channelID = dm.ID
	}

	if _, err := d.session.ChannelMessageSend(channelID, text); err != nil {
		return fmt.Errorf("discord: send: %w", err)
	}
	return nil
}

// Receive implements channels.Channel.
func (d *Discord) Receive() <-chan *channels.IncomingMessage {
	return d.messages
}

// IsConnected implements channels.Channel.
func (d *Discord) IsConnected() bool { return d.connected.Load() }

func (d *Discord) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.ID == s.State.User.ID || m.Author.Bot {
		return
	}

	content := strings.TrimSpace(m.Content)
	if d.cfg.Trigger != "" {
		if !strings.HasPrefix(strings.ToLower(content), strings.ToLower(d.cfg.Trigger)) {
			return
		}
		content = strings.TrimSpace(content[len(d.cfg.Trigger):])
	}
	if content == "" {
		return
	}

	msg := &channels.IncomingMessage{
		ID:        m.ID,
		Channel:   "discord",
		From:      m.Author.ID,
		ChatID:    m.ChannelID,
		Content:   content,
		Timestamp: time.Now(),
	}

	select {
	case d.messages <- msg:
	default:
		d.logger.Warn("discord message dropped, buffer full", "id", m.ID)
	}
}
