package delivery

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/channels"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
)

// ChannelDeliverer routes messages through whichever registered chat channel
// is connected, resolving recipients via the directory. Falls back to
// "queued" receipts when no route exists; the router core treats that as
// acceptable degradation, not failure.
type ChannelDeliverer struct {
	mgr    *channels.Manager
	dir    *directory.Directory
	logger *slog.Logger

	// BroadcastTargets maps logical team channel names ("devops", "social")
	// to platform-specific identifiers (e.g. Discord channel IDs).
	BroadcastTargets map[string]string
}

// NewChannelDeliverer returns a Deliverer backed by the channel manager.
func NewChannelDeliverer(mgr *channels.Manager, dir *directory.Directory, logger *slog.Logger) *ChannelDeliverer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChannelDeliverer{
		mgr:              mgr,
		dir:              dir,
		logger:           logger,
		BroadcastTargets: map[string]string{},
	}
}

// SetDirectory wires the contact directory. The deliverer is constructed
// before the directory during startup, so the dependency arrives late.
func (c *ChannelDeliverer) SetDirectory(dir *directory.Directory) {
	c.dir = dir
}

// IntelligentSend resolves the person in the directory, picks the first
// connected channel they have an identifier for, and delivers.
func (c *ChannelDeliverer) IntelligentSend(ctx context.Context, person, message string) (SendReceipt, error) {
	receipt := SendReceipt{To: person}
	receipt.ChainOfThought = append(receipt.ChainOfThought,
		fmt.Sprintf("Checking where %s is active...", person))

	if c.dir == nil {
		receipt.Status = "queued"
		receipt.ChainOfThought = append(receipt.ChainOfThought, "no directory wired, queueing")
		return receipt, nil
	}

	contact, ok := c.dir.FindContact(person)
	if !ok {
		receipt.Status = "queued"
		receipt.ChainOfThought = append(receipt.ChainOfThought,
			fmt.Sprintf("%s not in directory, queueing", person))
		return receipt, nil
	}

	for _, name := range c.mgr.Connected() {
		id := contactID(contact, name)
		if id == "" {
			continue
		}
		if err := c.mgr.Send(ctx, name, id, message); err != nil {
			c.logger.Warn("channel send failed", "channel", name, "to", person, "error", err)
			continue
		}
		receipt.Status = "success"
		receipt.App = name
		receipt.To = contact.Name
		receipt.ChainOfThought = append(receipt.ChainOfThought,
			fmt.Sprintf("%s reachable on %s, delivering", contact.Name, name))
		return receipt, nil
	}

	receipt.Status = "queued"
	receipt.ChainOfThought = append(receipt.ChainOfThought,
		fmt.Sprintf("no connected channel for %s, queueing", contact.Name))
	return receipt, nil
}

// Broadcast posts to the platform channel mapped to the logical name. An
// unmapped channel is logged and dropped, not an error.
func (c *ChannelDeliverer) Broadcast(ctx context.Context, channel, message string) error {
	target, ok := c.BroadcastTargets[channel]
	if !ok {
		c.logger.Info("broadcast dropped, channel unmapped", "channel", channel)
		return nil
	}
	for _, name := range c.mgr.Connected() {
		if err := c.mgr.Send(ctx, name, target, message); err != nil {
			return fmt.Errorf("broadcast to #%s: %w", channel, err)
		}
		return nil
	}
	c.logger.Info("broadcast queued, no connected channel", "channel", channel)
	return nil
}

// contactID returns the contact's identifier for the given platform.
func contactID(contact *directory.Contact, platform string) string {
	switch platform {
	case "discord":
		if contact.Discord != "" {
			return "user:" + contact.Discord
		}
	case "slack":
		return contact.SlackID
	}
	return ""
}
