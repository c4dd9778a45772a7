package mapper

import (
	"giveaway-bot-backend/internal/features/giveaway/models"
)

// ToGiveawayResponse maps Giveaway model to GiveawayResponse DTO
func ToGiveawayResponse(g *models.Giveaway, rewards []models.RewardSlot, participants int) *models.GiveawayResponse {
	if rewards == nil {
		rewards = []models.RewardSlot{}
	}
	return &models.GiveawayResponse{
		ID:           g.ID,
		GuildID:      g.GuildID,
		ChannelID:    g.ChannelID,
		MessageID:    g.MessageID,
		CreatedBy:    g.CreatedBy,
		Title:        g.Title,
		Status:       g.Status(),
		TotalRewards: g.TotalRewards,
		Participants: participants,
		Rewards:      rewards,
		CreatedAt:    g.CreatedAt,
		EndedAt:      g.EndedAt,
	}
}

func ToParticipantsResponse(giveawayID int64, users []string) *models.ParticipantsResponse {
	if users == nil {
		users = []string{}
	}
	return &models.ParticipantsResponse{
		GiveawayID: giveawayID,
		Total:      len(users),
		UserIDs:    users,
	}
}

// ToResultsResponse keeps slot order; a slot nobody won has an empty winners list.
func ToResultsResponse(s *models.Settlement) *models.ResultsResponse {
	out := &models.ResultsResponse{
		GiveawayID:  s.Giveaway.ID,
		EndedAt:     s.Giveaway.EndedAt,
		WinnerCount: s.WinnerCount(),
		Results:     make([]models.SlotResult, 0, len(s.Results)),
	}
	for _, sw := range s.Results {
		winners := sw.UserIDs
		if winners == nil {
			winners = []string{}
		}
		out.Results = append(out.Results, models.SlotResult{
			RewardID: sw.Reward.ID,
			Position: sw.Reward.Position,
			Label:    sw.Reward.Label,
			Amount:   sw.Reward.Amount,
			Winners:  winners,
		})
	}
	return out
}
