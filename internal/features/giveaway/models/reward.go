package models

// RewardDraft is a parsed reward line before it is persisted.
type RewardDraft struct {
	Label  string `json:"label" validate:"required,max=200"`
	Amount int    `json:"amount" validate:"min=1,max=1000000"`
}

// RewardSlot is one persisted prize with its supply. Position fixes the
// allocation order: earlier slots are filled first.
type RewardSlot struct {
	ID         int64  `json:"id"`
	GiveawayID int64  `json:"giveaway_id"`
	Position   int    `json:"position"`
	Label      string `json:"label"`
	Amount     int    `json:"amount"`
}
