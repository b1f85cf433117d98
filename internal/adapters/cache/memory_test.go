package cache

import (
	"context"
	"testing"
	"time"

	"github.com/comitanigiacomo/thirtyday/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDraftStore(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore(time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }

	draft := domain.NewChallengeDraft("host-1")
	require.NoError(t, store.Save(ctx, draft))

	got, err := store.Get(ctx, "host-1", draft.ID)
	require.NoError(t, err)
	assert.Equal(t, draft.ID, got.ID)

	got.Form.Name = "mutated"
	again, err := store.Get(ctx, "host-1", draft.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "mutated", again.Form.Name, "stored drafts are copies")

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, "host-1", draft.ID)
	assert.ErrorIs(t, err, domain.ErrDraftNotFound)
}

func TestMemoryDraftStore_SaveSweepsExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryDraftStore(time.Hour)
	now := time.Now()
	store.now = func() time.Time { return now }

	abandoned := domain.NewChallengeDraft("host-1")
	require.NoError(t, store.Save(ctx, abandoned))

	now = now.Add(2 * time.Hour)
	fresh := domain.NewChallengeDraft("host-2")
	require.NoError(t, store.Save(ctx, fresh))

	store.mu.Lock()
	_, kept := store.drafts[draftKey("host-1", abandoned.ID)]
	size := len(store.drafts)
	store.mu.Unlock()

	assert.False(t, kept)
	assert.Equal(t, 1, size)
}

func TestMemoryTokenDenylist(t *testing.T) {
	ctx := context.Background()
	denylist := NewMemoryTokenDenylist()

	require.NoError(t, denylist.Revoke(ctx, "a", time.Now().Add(time.Minute)))
	require.NoError(t, denylist.Revoke(ctx, "b", time.Now().Add(-time.Minute)))

	revoked, _ := denylist.IsRevoked(ctx, "a")
	assert.True(t, revoked)
	revoked, _ = denylist.IsRevoked(ctx, "b")
	assert.False(t, revoked)
}
