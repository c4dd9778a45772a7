package service

import (
	"errors"

	"giveaway-bot-backend/internal/features/giveaway/repository"
)

// Custom errors for giveaway service
var (
	ErrNotFound       = errors.New("giveaway not found")
	ErrGiveawayEnded  = errors.New("giveaway has ended")
	ErrAlreadyEnded   = errors.New("giveaway is already ended")
	ErrNotEnded       = errors.New("giveaway has not ended yet")
	ErrInvalidRewards = errors.New("giveaway needs at least one reward")
	ErrInvalidInput   = errors.New("invalid giveaway input")
	ErrPublishFailed  = errors.New("failed to publish results")
)

// mapRepoError translates storage sentinels into service sentinels and
// passes anything else through unchanged.
func mapRepoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrGiveawayNotFound):
		return ErrNotFound
	case errors.Is(err, repository.ErrGiveawayEnded):
		return ErrGiveawayEnded
	case errors.Is(err, repository.ErrAlreadyEnded):
		return ErrAlreadyEnded
	case errors.Is(err, repository.ErrNotEnded):
		return ErrNotEnded
	default:
		return err
	}
}
