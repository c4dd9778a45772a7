package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giveaway-bot-backend/internal/common/cache"
	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

const keyPrefixResults = "giveaway_results:"

// cachedRepository keeps committed results in Redis. Results never change
// after settlement, so entries are only written, never invalidated.
type cachedRepository struct {
	repository.GiveawayRepository
	cache *cache.CacheService
	ttl   time.Duration
}

// NewCachedRepository wraps next with a read-through cache for GetResults.
func NewCachedRepository(next repository.GiveawayRepository, c *cache.CacheService, ttl time.Duration) repository.GiveawayRepository {
	return &cachedRepository{
		GiveawayRepository: next,
		cache:              c,
		ttl:                ttl,
	}
}

func makeResultsKey(giveawayID int64) string {
	return fmt.Sprintf("%s%d", keyPrefixResults, giveawayID)
}

func (r *cachedRepository) Settle(ctx context.Context, giveawayID int64, allocate models.AllocateFunc) (*models.Settlement, error) {
	settlement, err := r.GiveawayRepository.Settle(ctx, giveawayID, allocate)
	if err != nil {
		return nil, err
	}
	r.store(ctx, settlement)
	return settlement, nil
}

func (r *cachedRepository) GetResults(ctx context.Context, giveawayID int64) (*models.Settlement, error) {
	var cached models.Settlement
	err := r.cache.Get(ctx, makeResultsKey(giveawayID), &cached)
	if err == nil && cached.Giveaway != nil {
		return &cached, nil
	}
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to read cached results")
	}

	settlement, err := r.GiveawayRepository.GetResults(ctx, giveawayID)
	if err != nil {
		return nil, err
	}
	r.store(ctx, settlement)
	return settlement, nil
}

// Ошибки кэша не влияют на результат
func (r *cachedRepository) store(ctx context.Context, s *models.Settlement) {
	if err := r.cache.Set(ctx, makeResultsKey(s.Giveaway.ID), s, r.ttl); err != nil {
		logger.Warn().Err(err).Int64("giveaway_id", s.Giveaway.ID).Msg("Failed to cache results")
	}
}
