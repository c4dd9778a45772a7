package discord

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/service"
)

type sentMessage struct {
	channelID string
	data      *discordgo.MessageSend
}

type fakeSession struct {
	mu        sync.Mutex
	messages  map[string]*discordgo.Message
	edits     []*discordgo.MessageEdit
	sends     []sentMessage
	responses []*discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	deleted   []string
	nextID    int

	fetchErr   error
	editErr    error
	sendErr    error
	respondErr error
}

func newFakeSession() *fakeSession {
	return &fakeSession{messages: make(map[string]*discordgo.Message)}
}

func (s *fakeSession) put(msg *discordgo.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages[msg.ChannelID+"/"+msg.ID] = msg
}

func (s *fakeSession) ChannelMessage(channelID, messageID string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	msg, ok := s.messages[channelID+"/"+messageID]
	if !ok {
		return nil, fmt.Errorf("message %s not found", messageID)
	}
	return msg, nil
}

func (s *fakeSession) ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return nil, s.sendErr
	}
	s.nextID++
	s.sends = append(s.sends, sentMessage{channelID: channelID, data: data})
	msg := &discordgo.Message{
		ID:         fmt.Sprintf("9%d", s.nextID),
		ChannelID:  channelID,
		Content:    data.Content,
		Embeds:     data.Embeds,
		Components: data.Components,
	}
	s.messages[channelID+"/"+msg.ID] = msg
	return msg, nil
}

func (s *fakeSession) ChannelMessageEditComplex(m *discordgo.MessageEdit, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.editErr != nil {
		return nil, s.editErr
	}
	s.edits = append(s.edits, m)
	return &discordgo.Message{ID: m.ID, ChannelID: m.Channel, Embeds: m.Embeds, Components: m.Components}, nil
}

func (s *fakeSession) ChannelMessageDelete(channelID, messageID string, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.messages, channelID+"/"+messageID)
	s.deleted = append(s.deleted, messageID)
	return nil
}

func (s *fakeSession) InteractionRespond(_ *discordgo.Interaction, resp *discordgo.InteractionResponse, _ ...discordgo.RequestOption) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.respondErr != nil {
		return s.respondErr
	}
	s.responses = append(s.responses, resp)
	return nil
}

func (s *fakeSession) FollowupMessageCreate(_ *discordgo.Interaction, _ bool, data *discordgo.WebhookParams, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.followups = append(s.followups, data)
	return &discordgo.Message{Content: data.Content}, nil
}

func (s *fakeSession) lastFollowup() *discordgo.WebhookParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.followups) == 0 {
		return nil
	}
	return s.followups[len(s.followups)-1]
}

// fakeGiveaways implements service.GiveawayService over plain maps.
type fakeGiveaways struct {
	mu           sync.Mutex
	giveaways    map[int64]*models.Giveaway
	participants map[int64][]string
	created      []*models.CreateGiveawayInput
	discarded    []int64
	createErr    error
	attachErr    error
}

func newFakeGiveaways() *fakeGiveaways {
	return &fakeGiveaways{
		giveaways:    make(map[int64]*models.Giveaway),
		participants: make(map[int64][]string),
	}
}

func (f *fakeGiveaways) add(g *models.Giveaway) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.giveaways[g.ID] = g
}

func (f *fakeGiveaways) Create(_ context.Context, in *models.CreateGiveawayInput) (*models.Giveaway, []models.RewardSlot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, nil, f.createErr
	}
	if len(in.Rewards) == 0 {
		return nil, nil, service.ErrInvalidRewards
	}
	f.created = append(f.created, in)

	g := &models.Giveaway{
		ID:           int64(len(f.giveaways) + 1),
		GuildID:      in.GuildID,
		ChannelID:    in.ChannelID,
		CreatedBy:    in.CreatedBy,
		Title:        in.Title,
		TotalRewards: in.TotalRewards(),
	}
	f.giveaways[g.ID] = g

	slots := make([]models.RewardSlot, len(in.Rewards))
	for i, r := range in.Rewards {
		slots[i] = models.RewardSlot{ID: int64(i + 1), GiveawayID: g.ID, Position: i, Label: r.Label, Amount: r.Amount}
	}
	return g, slots, nil
}

func (f *fakeGiveaways) AttachMessage(_ context.Context, giveawayID int64, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.attachErr != nil {
		return f.attachErr
	}
	g, ok := f.giveaways[giveawayID]
	if !ok {
		return service.ErrNotFound
	}
	g.MessageID = messageID
	return nil
}

func (f *fakeGiveaways) Discard(_ context.Context, giveawayID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[giveawayID]
	if !ok || g.MessageID != "" {
		return service.ErrNotFound
	}
	delete(f.giveaways, giveawayID)
	f.discarded = append(f.discarded, giveawayID)
	return nil
}

func (f *fakeGiveaways) GetByID(_ context.Context, giveawayID int64) (*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.giveaways[giveawayID]
	if !ok {
		return nil, service.ErrNotFound
	}
	return g, nil
}

func (f *fakeGiveaways) GetByMessage(_ context.Context, guildID, messageID string) (*models.Giveaway, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.giveaways {
		if g.GuildID == guildID && g.MessageID == messageID && messageID != "" {
			return g, nil
		}
	}
	return nil, service.ErrNotFound
}

func (f *fakeGiveaways) GetRewards(context.Context, int64) ([]models.RewardSlot, error) {
	return nil, nil
}

func (f *fakeGiveaways) open(giveawayID int64) error {
	g, ok := f.giveaways[giveawayID]
	if !ok {
		return service.ErrNotFound
	}
	if g.IsEnded() {
		return service.ErrGiveawayEnded
	}
	return nil
}

func (f *fakeGiveaways) Join(_ context.Context, giveawayID int64, userID string) (*models.JoinResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.open(giveawayID); err != nil {
		return nil, err
	}
	for _, u := range f.participants[giveawayID] {
		if u == userID {
			return &models.JoinResult{Joined: false, Participants: len(f.participants[giveawayID])}, nil
		}
	}
	f.participants[giveawayID] = append(f.participants[giveawayID], userID)
	return &models.JoinResult{Joined: true, Participants: len(f.participants[giveawayID])}, nil
}

func (f *fakeGiveaways) Leave(_ context.Context, giveawayID int64, userID string) (*models.LeaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.open(giveawayID); err != nil {
		return nil, err
	}
	users := f.participants[giveawayID]
	for i, u := range users {
		if u == userID {
			f.participants[giveawayID] = append(users[:i:i], users[i+1:]...)
			return &models.LeaveResult{Left: true, Participants: len(users) - 1}, nil
		}
	}
	return &models.LeaveResult{Left: false, Participants: len(users)}, nil
}

func (f *fakeGiveaways) Participants(_ context.Context, giveawayID int64) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.giveaways[giveawayID]; !ok {
		return nil, service.ErrNotFound
	}
	return append([]string(nil), f.participants[giveawayID]...), nil
}

type fakeSettlement struct {
	mu    sync.Mutex
	ended []int64
	err   error
	res   *models.Settlement
}

func (f *fakeSettlement) EndGiveaway(_ context.Context, giveawayID int64) (*models.Settlement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.ended = append(f.ended, giveawayID)
	if f.res != nil {
		return f.res, nil
	}
	return &models.Settlement{Giveaway: &models.Giveaway{ID: giveawayID}}, nil
}

func (f *fakeSettlement) Results(context.Context, int64) (*models.Settlement, error) {
	return nil, service.ErrNotEnded
}

func (f *fakeSettlement) Reannounce(context.Context, int64) error {
	return nil
}
