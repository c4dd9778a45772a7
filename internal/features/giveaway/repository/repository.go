package repository

import (
	"context"
	"errors"
	"time"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

var (
	ErrGiveawayNotFound = errors.New("giveaway not found")
	// ErrGiveawayEnded is returned by participant writes once settlement committed.
	ErrGiveawayEnded = errors.New("giveaway has ended")
	// ErrAlreadyEnded is returned by Settle when another caller already settled.
	ErrAlreadyEnded  = errors.New("giveaway is already ended")
	ErrNotEnded      = errors.New("giveaway has not ended yet")
	ErrAlreadyLocked = errors.New("resource is already locked")
	// ErrCommitUncertain wraps a failed COMMIT: the settlement may or may not
	// have been applied.
	ErrCommitUncertain = errors.New("settlement commit outcome unknown")
)

// GiveawayRepository is the persistence boundary for giveaways, their reward
// slots, participants and winners.
type GiveawayRepository interface {
	// Create stores the giveaway and its reward slots in one transaction and
	// fills in IDs, positions and TotalRewards.
	Create(ctx context.Context, giveaway *models.Giveaway, rewards []models.RewardDraft) ([]models.RewardSlot, error)
	GetByID(ctx context.Context, id int64) (*models.Giveaway, error)
	GetByMessage(ctx context.Context, guildID, messageID string) (*models.Giveaway, error)
	SetMessageID(ctx context.Context, id int64, messageID string) error
	// DeleteDraft removes a giveaway that was never published: no message id
	// and not ended. Anything else is ErrGiveawayNotFound.
	DeleteDraft(ctx context.Context, id int64) error
	GetRewards(ctx context.Context, giveawayID int64) ([]models.RewardSlot, error)

	// AddParticipant activates (giveawayID, userID). Returns false when the
	// user was already active.
	AddParticipant(ctx context.Context, giveawayID int64, userID string) (bool, error)
	// RemoveParticipant flags the entry removed. Returns false when there was
	// no active entry.
	RemoveParticipant(ctx context.Context, giveawayID int64, userID string) (bool, error)
	GetActiveParticipants(ctx context.Context, giveawayID int64) ([]string, error)
	CountActiveParticipants(ctx context.Context, giveawayID int64) (int, error)

	// Settle atomically claims the giveaway, snapshots slots and active
	// participants, runs allocate and commits winners plus the end marker.
	// Nothing is written unless every step succeeds.
	Settle(ctx context.Context, giveawayID int64, allocate models.AllocateFunc) (*models.Settlement, error)
	// GetResults loads the committed allocation of an ended giveaway.
	GetResults(ctx context.Context, giveawayID int64) (*models.Settlement, error)
}

// SettlementLock is a best-effort cross-process guard in front of Settle.
type SettlementLock interface {
	// Acquire returns a release func, or ErrAlreadyLocked.
	Acquire(ctx context.Context, giveawayID int64, ttl time.Duration) (func(context.Context) error, error)
}
