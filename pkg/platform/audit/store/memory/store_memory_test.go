package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	audit "custody/pkg/platform/audit"
)

func TestInMemoryStore(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()

	require.NoError(t, store.Append(ctx, audit.Event{Action: string(audit.EventAssetRegistered), AssetID: 1}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: string(audit.EventActorRegistered), Subject: "0xabc"}))
	require.NoError(t, store.Append(ctx, audit.Event{Action: string(audit.EventAssetTransfered), AssetID: 1}))

	t.Run("list by asset keeps emission order", func(t *testing.T) {
		events, err := store.ListByAsset(ctx, 1)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, string(audit.EventAssetRegistered), events[0].Action)
		assert.Equal(t, string(audit.EventAssetTransfered), events[1].Action)
	})

	t.Run("list recent is newest first and bounded", func(t *testing.T) {
		events, err := store.ListRecent(ctx, 2)
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, string(audit.EventAssetTransfered), events[0].Action)
		assert.Equal(t, string(audit.EventActorRegistered), events[1].Action)
	})

	t.Run("clear empties the store", func(t *testing.T) {
		store.Clear()
		events, err := store.ListAll(ctx)
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
