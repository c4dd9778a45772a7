package models

import "time"

// GiveawayResponse is the ops API view of a giveaway.
type GiveawayResponse struct {
	ID           int64          `json:"id"`
	GuildID      string         `json:"guild_id"`
	ChannelID    string         `json:"channel_id"`
	MessageID    string         `json:"message_id"`
	CreatedBy    string         `json:"created_by"`
	Title        string         `json:"title,omitempty"`
	Status       GiveawayStatus `json:"status"`
	TotalRewards int            `json:"total_rewards"`
	Participants int            `json:"participants_count"`
	Rewards      []RewardSlot   `json:"rewards"`
	CreatedAt    time.Time      `json:"created_at"`
	EndedAt      *time.Time     `json:"ended_at,omitempty"`
}

// ParticipantsResponse lists active participants in join order.
type ParticipantsResponse struct {
	GiveawayID int64    `json:"giveaway_id"`
	Total      int      `json:"total"`
	UserIDs    []string `json:"user_ids"`
}

// SlotResult is one reward slot with its winners.
type SlotResult struct {
	RewardID int64    `json:"reward_id"`
	Position int      `json:"position"`
	Label    string   `json:"label"`
	Amount   int      `json:"amount"`
	Winners  []string `json:"winners"`
}

// ResultsResponse is the committed outcome of a giveaway.
type ResultsResponse struct {
	GiveawayID  int64        `json:"giveaway_id"`
	EndedAt     *time.Time   `json:"ended_at,omitempty"`
	WinnerCount int          `json:"winner_count"`
	Results     []SlotResult `json:"results"`
}

// SuccessResponse acknowledges an operator action.
type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
