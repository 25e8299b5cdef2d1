package delivery

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jholhewres/opsclaw/pkg/opsclaw/channels"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/directory"
	"github.com/jholhewres/opsclaw/pkg/opsclaw/store"
)

func TestChannelDeliverer_NoDirectoryQueues(t *testing.T) {
	t.Parallel()
	d := NewChannelDeliverer(channels.NewManager(slog.Default()), nil, slog.Default())

	receipt, err := d.IntelligentSend(context.Background(), "Alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "queued", receipt.Status)
	assert.Empty(t, receipt.App)
}

func TestChannelDeliverer_UnknownPersonQueues(t *testing.T) {
	t.Parallel()
	st, err := store.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	dir := directory.New(st)
	require.NoError(t, dir.Save([]directory.Contact{{Name: "Alice"}}))

	d := NewChannelDeliverer(channels.NewManager(slog.Default()), dir, slog.Default())

	receipt, err := d.IntelligentSend(context.Background(), "Zoe", "hi")
	require.NoError(t, err)
	assert.Equal(t, "queued", receipt.Status)
	assert.NotEmpty(t, receipt.ChainOfThought)
}

func TestChannelDeliverer_NoConnectedChannelQueues(t *testing.T) {
	t.Parallel()
	st, err := store.Open(t.TempDir(), slog.Default())
	require.NoError(t, err)
	dir := directory.New(st)
	require.NoError(t, dir.Save([]directory.Contact{{Name: "Alice", Discord: "123"}}))

	d := NewChannelDeliverer(channels.NewManager(slog.Default()), dir, slog.Default())

	receipt, err := d.IntelligentSend(context.Background(), "Alice", "hi")
	require.NoError(t, err)
	assert.Equal(t, "queued", receipt.Status)
}

func TestChannelDeliverer_UnmappedBroadcastDropped(t *testing.T) {
	t.Parallel()
	d := NewChannelDeliverer(channels.NewManager(slog.Default()), nil, slog.Default())

	// No target registered for the logical channel: dropped, not an error.
	assert.NoError(t, d.Broadcast(context.Background(), "devops", "deploy done"))
}
