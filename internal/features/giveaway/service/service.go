package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/common/metrics"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/repository"
)

type giveawayService struct {
	repo      repository.GiveawayRepository
	announcer Announcer
	validate  *validator.Validate
}

// NewGiveawayService builds the participant registry. announcer may be nil,
// in which case status lines are not refreshed.
func NewGiveawayService(repo repository.GiveawayRepository, announcer Announcer) GiveawayService {
	return &giveawayService{
		repo:      repo,
		announcer: announcer,
		validate:  validator.New(),
	}
}

func (s *giveawayService) Create(ctx context.Context, input *models.CreateGiveawayInput) (*models.Giveaway, []models.RewardSlot, error) {
	if len(input.Rewards) == 0 {
		return nil, nil, ErrInvalidRewards
	}
	if err := s.validate.Struct(input); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if total := input.TotalRewards(); total > MaxTotalRewards {
		return nil, nil, fmt.Errorf("%w: %d rewards in total, at most %d allowed", ErrInvalidInput, total, MaxTotalRewards)
	}

	g := &models.Giveaway{
		GuildID:   input.GuildID,
		ChannelID: input.ChannelID,
		MessageID: input.MessageID,
		CreatedBy: input.CreatedBy,
		Title:     input.Title,
	}

	slots, err := s.repo.Create(ctx, g, input.Rewards)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create giveaway: %w", err)
	}

	logger.Info().
		Int64("giveaway_id", g.ID).
		Str("guild_id", g.GuildID).
		Str("created_by", g.CreatedBy).
		Int("slots", len(slots)).
		Int("total_rewards", g.TotalRewards).
		Msg("Giveaway created")

	return g, slots, nil
}

func (s *giveawayService) AttachMessage(ctx context.Context, giveawayID int64, messageID string) error {
	if err := s.repo.SetMessageID(ctx, giveawayID, messageID); err != nil {
		return mapRepoError(err)
	}
	return nil
}

// Discard removes a giveaway whose message was never posted.
func (s *giveawayService) Discard(ctx context.Context, giveawayID int64) error {
	if err := s.repo.DeleteDraft(ctx, giveawayID); err != nil {
		return mapRepoError(err)
	}
	logger.Info().Int64("giveaway_id", giveawayID).Msg("Unpublished giveaway discarded")
	return nil
}

func (s *giveawayService) GetByID(ctx context.Context, giveawayID int64) (*models.Giveaway, error) {
	g, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return g, nil
}

func (s *giveawayService) GetByMessage(ctx context.Context, guildID, messageID string) (*models.Giveaway, error) {
	g, err := s.repo.GetByMessage(ctx, guildID, messageID)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return g, nil
}

func (s *giveawayService) GetRewards(ctx context.Context, giveawayID int64) ([]models.RewardSlot, error) {
	if _, err := s.GetByID(ctx, giveawayID); err != nil {
		return nil, err
	}
	slots, err := s.repo.GetRewards(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get rewards: %w", err)
	}
	return slots, nil
}

func (s *giveawayService) Join(ctx context.Context, giveawayID int64, userID string) (*models.JoinResult, error) {
	joined, err := s.repo.AddParticipant(ctx, giveawayID, userID)
	if err != nil {
		recordParticipation("join", err)
		return nil, mapRepoError(err)
	}

	result := &models.JoinResult{Joined: joined}
	if !joined {
		metrics.ParticipationTotal.WithLabelValues("join", metrics.ResultNoop).Inc()
		result.Participants = s.countParticipants(ctx, giveawayID)
		return result, nil
	}

	metrics.ParticipationTotal.WithLabelValues("join", metrics.ResultOK).Inc()
	result.Participants = s.countParticipants(ctx, giveawayID)
	s.refreshStatus(ctx, giveawayID, result.Participants)

	return result, nil
}

func (s *giveawayService) Leave(ctx context.Context, giveawayID int64, userID string) (*models.LeaveResult, error) {
	left, err := s.repo.RemoveParticipant(ctx, giveawayID, userID)
	if err != nil {
		recordParticipation("leave", err)
		return nil, mapRepoError(err)
	}

	result := &models.LeaveResult{Left: left}
	if !left {
		metrics.ParticipationTotal.WithLabelValues("leave", metrics.ResultNoop).Inc()
		result.Participants = s.countParticipants(ctx, giveawayID)
		return result, nil
	}

	metrics.ParticipationTotal.WithLabelValues("leave", metrics.ResultOK).Inc()
	result.Participants = s.countParticipants(ctx, giveawayID)
	s.refreshStatus(ctx, giveawayID, result.Participants)

	return result, nil
}

func (s *giveawayService) Participants(ctx context.Context, giveawayID int64) ([]string, error) {
	if _, err := s.GetByID(ctx, giveawayID); err != nil {
		return nil, err
	}
	users, err := s.repo.GetActiveParticipants(ctx, giveawayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get participants: %w", err)
	}
	return users, nil
}

// countParticipants returns -1 when the count is unavailable; the write
// already succeeded so the caller still gets a result.
func (s *giveawayService) countParticipants(ctx context.Context, giveawayID int64) int {
	n, err := s.repo.CountActiveParticipants(ctx, giveawayID)
	if err != nil {
		logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to count participants")
		return -1
	}
	return n
}

func (s *giveawayService) refreshStatus(ctx context.Context, giveawayID int64, participants int) {
	if s.announcer == nil || participants < 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), StatusUpdateTimeout)
	defer cancel()

	g, err := s.repo.GetByID(ctx, giveawayID)
	if err != nil {
		logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to load giveaway for status update")
		return
	}
	if g.MessageID == "" {
		return
	}

	if err := s.announcer.UpdateStatus(ctx, g, participants); err != nil {
		logger.Warn().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to update giveaway status")
	}
}

func recordParticipation(action string, err error) {
	result := metrics.ResultError
	switch {
	case errors.Is(err, repository.ErrGiveawayEnded):
		result = metrics.ResultRejected
	case errors.Is(err, repository.ErrGiveawayNotFound):
		result = metrics.ResultNotFound
	}
	metrics.ParticipationTotal.WithLabelValues(action, result).Inc()
}
