package service

import (
	"context"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

// GiveawayService covers giveaway creation and the participant registry.
type GiveawayService interface {
	Create(ctx context.Context, input *models.CreateGiveawayInput) (*models.Giveaway, []models.RewardSlot, error)
	AttachMessage(ctx context.Context, giveawayID int64, messageID string) error
	// Discard drops a giveaway that never got its message posted.
	Discard(ctx context.Context, giveawayID int64) error
	GetByID(ctx context.Context, giveawayID int64) (*models.Giveaway, error)
	GetByMessage(ctx context.Context, guildID, messageID string) (*models.Giveaway, error)
	GetRewards(ctx context.Context, giveawayID int64) ([]models.RewardSlot, error)
	Join(ctx context.Context, giveawayID int64, userID string) (*models.JoinResult, error)
	Leave(ctx context.Context, giveawayID int64, userID string) (*models.LeaveResult, error)
	Participants(ctx context.Context, giveawayID int64) ([]string, error)
}

// SettlementService ends giveaways and publishes their results.
type SettlementService interface {
	EndGiveaway(ctx context.Context, giveawayID int64) (*models.Settlement, error)
	Results(ctx context.Context, giveawayID int64) (*models.Settlement, error)
	Reannounce(ctx context.Context, giveawayID int64) error
}

// Announcer renders giveaway state on the chat surface.
type Announcer interface {
	UpdateStatus(ctx context.Context, giveaway *models.Giveaway, participants int) error
	// PublishResults disables joining and posts the winners in slot order.
	PublishResults(ctx context.Context, settlement *models.Settlement) error
}

// AnnouncementQueue keeps failed result announcements for a later retry.
type AnnouncementQueue interface {
	Enqueue(ctx context.Context, giveawayID int64, attempt int) error
}
