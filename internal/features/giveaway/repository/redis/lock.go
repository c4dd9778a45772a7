package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"giveaway-bot-backend/internal/features/giveaway/repository"
)

const keyPrefixLock = "lock:giveaway:"

// Only the holder of the token may delete the key.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

type settlementLock struct {
	client redis.UniversalClient
}

func NewSettlementLock(client redis.UniversalClient) repository.SettlementLock {
	return &settlementLock{client: client}
}

func makeLockKey(giveawayID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixLock, giveawayID)
}

func (l *settlementLock) Acquire(ctx context.Context, giveawayID int64, ttl time.Duration) (func(context.Context) error, error) {
	key := makeLockKey(giveawayID)
	token := uuid.New().String()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !ok {
		return nil, repository.ErrAlreadyLocked
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}
		return nil
	}
	return release, nil
}
