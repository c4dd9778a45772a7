package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/common/metrics"
	"giveaway-bot-backend/internal/features/giveaway/allocation"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

type SettlementConfig struct {
	MaxRetries      int
	RetryDelay      time.Duration
	LockTTL         time.Duration
	AnnounceTimeout time.Duration
}

func DefaultSettlementConfig() SettlementConfig {
	return SettlementConfig{
		MaxRetries:      MaxRetries,
		RetryDelay:      RetryDelay,
		LockTTL:         LockTimeout,
		AnnounceTimeout: AnnounceTimeout,
	}
}

type settlementService struct {
	repo      repository.GiveawayRepository
	lock      repository.SettlementLock
	allocator *allocation.Allocator
	announcer Announcer
	queue     AnnouncementQueue
	cfg       SettlementConfig
}

// NewSettlementService wires the coordinator. lock and queue are optional:
// without a lock the row lock in Settle is the only guard, without a queue a
// failed announcement is only logged.
func NewSettlementService(
	repo repository.GiveawayRepository,
	lock repository.SettlementLock,
	allocator *allocation.Allocator,
	announcer Announcer,
	queue AnnouncementQueue,
	cfg SettlementConfig,
) SettlementService {
	if cfg.MaxRetries < 1 {
		cfg.MaxRetries = 1
	}
	if cfg.AnnounceTimeout <= 0 {
		cfg.AnnounceTimeout = AnnounceTimeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = LockTimeout
	}
	return &settlementService{
		repo:      repo,
		lock:      lock,
		allocator: allocator,
		announcer: announcer,
		queue:     queue,
		cfg:       cfg,
	}
}

// EndGiveaway moves the giveaway Open -> Ending -> Ended exactly once. The
// claim, the allocation and the commit happen in a single store transaction;
// the announcement afterwards is best-effort and never undoes the commit.
func (s *settlementService) EndGiveaway(ctx context.Context, giveawayID int64) (*models.Settlement, error) {
	start := time.Now()
	defer func() {
		metrics.SettlementDuration.Observe(time.Since(start).Seconds())
	}()

	if s.lock != nil {
		release, err := s.lock.Acquire(ctx, giveawayID, s.cfg.LockTTL)
		switch {
		case errors.Is(err, repository.ErrAlreadyLocked):
			metrics.SettlementsTotal.WithLabelValues(metrics.ResultAlreadyEnded).Inc()
			return nil, ErrAlreadyEnded
		case err != nil:
			logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Msg("Settlement lock unavailable, relying on row lock")
		default:
			defer func() {
				if err := release(context.WithoutCancel(ctx)); err != nil {
					logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to release settlement lock")
				}
			}()
		}
	}

	settlement, err := s.settleWithRetry(ctx, giveawayID)
	if err != nil {
		metrics.SettlementsTotal.WithLabelValues(settlementResult(err)).Inc()
		return nil, err
	}

	metrics.SettlementsTotal.WithLabelValues(metrics.ResultOK).Inc()
	metrics.WinnersTotal.Add(float64(settlement.WinnerCount()))

	logger.Info().
		Int64("giveaway_id", giveawayID).
		Int("slots", len(settlement.Results)).
		Int("winners", settlement.WinnerCount()).
		Msg("Giveaway settled")

	s.announce(ctx, settlement)

	return settlement, nil
}

func (s *settlementService) settleWithRetry(ctx context.Context, giveawayID int64) (*models.Settlement, error) {
	var (
		lastErr        error
		maybeCommitted bool
	)
	for attempt := 1; attempt <= s.cfg.MaxRetries; attempt++ {
		settlement, err := s.repo.Settle(ctx, giveawayID, s.allocator.Allocate)
		switch {
		case err == nil:
			return settlement, nil
		case errors.Is(err, repository.ErrGiveawayNotFound):
			return nil, ErrNotFound
		case errors.Is(err, repository.ErrAlreadyEnded):
			// Only a failed COMMIT can have ended it on our behalf
			if !maybeCommitted {
				return nil, ErrAlreadyEnded
			}
			committed, rerr := s.repo.GetResults(ctx, giveawayID)
			if rerr != nil {
				return nil, fmt.Errorf("giveaway ended during retry, failed to load results: %w", rerr)
			}
			logger.Warn().
				Int64("giveaway_id", giveawayID).
				Err(lastErr).
				Msg("Settlement committed despite reported error, using stored results")
			return committed, nil
		}

		lastErr = err
		if errors.Is(err, repository.ErrCommitUncertain) {
			maybeCommitted = true
		}
		if ctx.Err() != nil {
			break
		}

		logger.Warn().
			Err(err).
			Int64("giveaway_id", giveawayID).
			Int("attempt", attempt).
			Int("max_attempts", s.cfg.MaxRetries).
			Msg("Settlement attempt failed")

		if attempt < s.cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("settlement cancelled: %w", ctx.Err())
			case <-time.After(s.cfg.RetryDelay):
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts, last error: %w", s.cfg.MaxRetries, lastErr)
}

func (s *settlementService) announce(ctx context.Context, settlement *models.Settlement) {
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.AnnounceTimeout)
	defer cancel()

	giveawayID := settlement.Giveaway.ID
	err := s.announcer.PublishResults(actx, settlement)
	if err == nil {
		metrics.AnnouncementsTotal.WithLabelValues(metrics.ResultOK).Inc()
		return
	}

	metrics.AnnouncementsTotal.WithLabelValues(metrics.ResultError).Inc()
	logger.Error().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to announce giveaway results")

	if s.queue == nil {
		return
	}
	if err := s.queue.Enqueue(actx, giveawayID, 1); err != nil {
		logger.Error().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to enqueue announcement retry")
		return
	}
	metrics.AnnouncementsTotal.WithLabelValues(metrics.ResultQueued).Inc()
}

func (s *settlementService) Results(ctx context.Context, giveawayID int64) (*models.Settlement, error) {
	settlement, err := s.repo.GetResults(ctx, giveawayID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return settlement, nil
}

func (s *settlementService) Reannounce(ctx context.Context, giveawayID int64) error {
	settlement, err := s.Results(ctx, giveawayID)
	if err != nil {
		return err
	}
	if err := s.announcer.PublishResults(ctx, settlement); err != nil {
		metrics.AnnouncementsTotal.WithLabelValues(metrics.ResultError).Inc()
		return fmt.Errorf("%w: %w", ErrPublishFailed, err)
	}
	metrics.AnnouncementsTotal.WithLabelValues(metrics.ResultOK).Inc()
	return nil
}

func settlementResult(err error) string {
	switch {
	case errors.Is(err, ErrAlreadyEnded):
		return metrics.ResultAlreadyEnded
	case errors.Is(err, ErrNotFound):
		return metrics.ResultNotFound
	default:
		return metrics.ResultError
	}
}
