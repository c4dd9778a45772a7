package models

import (
	"time"
)

// GiveawayStatus represents the settlement state of a giveaway
type GiveawayStatus string

const (
	GiveawayStatusOpen  GiveawayStatus = "open"  // Accepting joins and leaves
	GiveawayStatusEnded GiveawayStatus = "ended" // Winners committed
)

// Giveaway is one pool of entries attached to an announcement message.
type Giveaway struct {
	ID           int64      `json:"id"`
	GuildID      string     `json:"guild_id"`
	ChannelID    string     `json:"channel_id"`
	MessageID    string     `json:"message_id"`
	CreatedBy    string     `json:"created_by"`
	Title        string     `json:"title,omitempty"`
	TotalRewards int        `json:"total_rewards"`
	CreatedAt    time.Time  `json:"created_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
}

// IsEnded reports whether settlement has been committed.
func (g *Giveaway) IsEnded() bool {
	return g.EndedAt != nil
}

// Status derives the persisted state. A giveaway being settled stays open
// until the settlement transaction commits.
func (g *Giveaway) Status() GiveawayStatus {
	if g.IsEnded() {
		return GiveawayStatusEnded
	}
	return GiveawayStatusOpen
}

// CreateGiveawayInput carries everything needed to persist a new giveaway.
type CreateGiveawayInput struct {
	GuildID   string        `json:"guild_id" validate:"required,numeric"`
	ChannelID string        `json:"channel_id" validate:"required,numeric"`
	MessageID string        `json:"message_id" validate:"omitempty,numeric"`
	CreatedBy string        `json:"created_by" validate:"required,numeric"`
	Title     string        `json:"title" validate:"max=256"`
	Rewards   []RewardDraft `json:"rewards" validate:"required,min=1,max=25,dive"`
}

// TotalRewards sums the supply of every slot.
func (in CreateGiveawayInput) TotalRewards() int {
	total := 0
	for _, r := range in.Rewards {
		total += r.Amount
	}
	return total
}
