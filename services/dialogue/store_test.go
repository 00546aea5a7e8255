package dialogue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voicecal/models"
)

func newSession(id, identity string, lastActivity time.Time) *models.DialogueSession {
	return &models.DialogueSession{
		SessionID:      id,
		Identity:       identity,
		State:          models.StateIdle,
		Booking:        models.NewPartialBooking(),
		CreatedAt:      lastActivity,
		LastActivityAt: lastActivity,
	}
}

func TestMemoryStorePutGet(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Now()

	require.NoError(t, store.Put(ctx, newSession("s1", "alice", now)))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Identity)

	byIdent, err := store.GetByIdentity(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, "s1", byIdent.SessionID)

	_, err = store.Get(ctx, "nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.GetByIdentity(ctx, "bob")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Put(ctx, newSession("s1", "alice", time.Now())))

	got, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	got.State = models.StateCapturing

	again, err := store.Get(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, models.StateIdle, again.State)
}

func TestMemoryStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	require.NoError(t, store.Put(ctx, newSession("s1", "alice", time.Now())))

	require.NoError(t, store.Delete(ctx, "s1"))
	_, err := store.Get(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.GetByIdentity(ctx, "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// Deleting an unknown id is a no-op.
	assert.NoError(t, store.Delete(ctx, "s1"))
}

func TestMemoryStoreSweepExpired(t *testing.T) {
	ctx := context.Background()
	store := NewMemorySessionStore()
	now := time.Now()

	require.NoError(t, store.Put(ctx, newSession("old", "alice", now.Add(-10*time.Minute))))
	require.NoError(t, store.Put(ctx, newSession("fresh", "bob", now)))

	removed, err := store.SweepExpired(ctx, now.Add(-2*time.Minute))
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	_, err = store.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrSessionNotFound)
	_, err = store.GetByIdentity(ctx, "alice")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = store.Get(ctx, "fresh")
	assert.NoError(t, err)
}
