package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot-backend/internal/features/giveaway/repository"
)

func newLock(t *testing.T) (repository.SettlementLock, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSettlementLock(client), mr
}

func TestAcquire_ExclusiveUntilReleased(t *testing.T) {
	lock, mr := newLock(t)
	ctx := context.Background()

	release, err := lock.Acquire(ctx, 7, time.Minute)
	require.NoError(t, err)
	assert.True(t, mr.Exists("lock:giveaway:7"))

	_, err = lock.Acquire(ctx, 7, time.Minute)
	assert.ErrorIs(t, err, repository.ErrAlreadyLocked)

	other, err := lock.Acquire(ctx, 8, time.Minute)
	require.NoError(t, err)
	require.NoError(t, other(ctx))

	require.NoError(t, release(ctx))
	assert.False(t, mr.Exists("lock:giveaway:7"))

	again, err := lock.Acquire(ctx, 7, time.Minute)
	require.NoError(t, err)
	require.NoError(t, again(ctx))
}

func TestAcquire_ExpiredLockIsNotReleasedByOldHolder(t *testing.T) {
	lock, mr := newLock(t)
	ctx := context.Background()

	stale, err := lock.Acquire(ctx, 9, time.Second)
	require.NoError(t, err)

	mr.FastForward(2 * time.Second)

	fresh, err := lock.Acquire(ctx, 9, time.Minute)
	require.NoError(t, err)

	require.NoError(t, stale(ctx))
	assert.True(t, mr.Exists("lock:giveaway:9"), "stale holder must not delete the new lock")

	require.NoError(t, fresh(ctx))
	assert.False(t, mr.Exists("lock:giveaway:9"))
}
