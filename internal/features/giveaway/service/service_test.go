package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/rewards"
)

func validInput() *models.CreateGiveawayInput {
	return &models.CreateGiveawayInput{
		GuildID:   "1001",
		ChannelID: "2002",
		MessageID: "3003",
		CreatedBy: "4004",
		Title:     "Launch party",
		Rewards:   rewards.Parse("2x Role: VIP, Sticker"),
	}
}

func TestCreate(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewGiveawayService(repo, nil)

	g, slots, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)

	assert.NotZero(t, g.ID)
	assert.Equal(t, 3, g.TotalRewards)
	require.Len(t, slots, 2)
	assert.Equal(t, "Role: VIP", slots[0].Label)
	assert.Equal(t, 2, slots[0].Amount)
	assert.Equal(t, "Sticker", slots[1].Label)
	assert.Equal(t, models.GiveawayStatusOpen, g.Status())
}

func TestCreate_Validation(t *testing.T) {
	svc := NewGiveawayService(newMemoryRepo(), nil)

	tests := []struct {
		name   string
		mutate func(in *models.CreateGiveawayInput)
		want   error
	}{
		{"no rewards", func(in *models.CreateGiveawayInput) { in.Rewards = rewards.Parse(" , ") }, ErrInvalidRewards},
		{"missing guild", func(in *models.CreateGiveawayInput) { in.GuildID = "" }, ErrInvalidInput},
		{"non numeric channel", func(in *models.CreateGiveawayInput) { in.ChannelID = "general" }, ErrInvalidInput},
		{"zero amount", func(in *models.CreateGiveawayInput) { in.Rewards[0].Amount = 0 }, ErrInvalidInput},
		{"amount over cap", func(in *models.CreateGiveawayInput) { in.Rewards[0].Amount = MaxTotalRewards + 1 }, ErrInvalidInput},
		{"total over cap", func(in *models.CreateGiveawayInput) {
			in.Rewards[0].Amount = MaxTotalRewards
			in.Rewards[1].Amount = MaxTotalRewards
		}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(in)
			_, _, err := svc.Create(context.Background(), in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestDiscard(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewGiveawayService(repo, nil)
	ctx := context.Background()

	in := validInput()
	in.MessageID = ""
	draft, _, err := svc.Create(ctx, in)
	require.NoError(t, err)
	require.NoError(t, svc.Discard(ctx, draft.ID))

	_, err = svc.GetByID(ctx, draft.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Discard(ctx, draft.ID), ErrNotFound)

	posted, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	assert.ErrorIs(t, svc.Discard(ctx, posted.ID), ErrNotFound)
}

func TestJoinLeave_Idempotent(t *testing.T) {
	repo := newMemoryRepo()
	announcer := &fakeAnnouncer{}
	svc := NewGiveawayService(repo, announcer)
	ctx := context.Background()

	g, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	res, err := svc.Join(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.True(t, res.Joined)
	assert.Equal(t, 1, res.Participants)

	res, err = svc.Join(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.False(t, res.Joined)
	assert.Equal(t, 1, res.Participants)

	users, err := svc.Participants(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	left, err := svc.Leave(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.True(t, left.Left)
	assert.Equal(t, 0, left.Participants)

	users, err = svc.Participants(ctx, g.ID)
	require.NoError(t, err)
	assert.Empty(t, users)

	res, err = svc.Join(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.True(t, res.Joined)

	users, err = svc.Participants(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	// status refreshed only on actual changes: join, leave, rejoin
	assert.Equal(t, []statusCall{{g.ID, 1}, {g.ID, 0}, {g.ID, 1}}, announcer.statuses)
}

func TestLeave_WithoutJoinIsNoop(t *testing.T) {
	repo := newMemoryRepo()
	announcer := &fakeAnnouncer{}
	svc := NewGiveawayService(repo, announcer)
	ctx := context.Background()

	g, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	res, err := svc.Leave(ctx, g.ID, "stranger")
	require.NoError(t, err)
	assert.False(t, res.Left)
	assert.Empty(t, announcer.statuses)
}

func TestJoin_Errors(t *testing.T) {
	repo := newMemoryRepo()
	svc := NewGiveawayService(repo, nil)
	settle := NewSettlementService(repo, nil, newTestAllocator(), &fakeAnnouncer{}, nil, testSettlementConfig())
	ctx := context.Background()

	_, err := svc.Join(ctx, 999, "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	g, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = settle.EndGiveaway(ctx, g.ID)
	require.NoError(t, err)

	_, err = svc.Join(ctx, g.ID, "late")
	assert.ErrorIs(t, err, ErrGiveawayEnded)

	_, err = svc.Leave(ctx, g.ID, "late")
	assert.ErrorIs(t, err, ErrGiveawayEnded)
}

func TestJoin_StatusFailuresDoNotFailJoin(t *testing.T) {
	repo := newMemoryRepo()
	announcer := &fakeAnnouncer{statusErr: errors.New("discord down")}
	svc := NewGiveawayService(repo, announcer)
	ctx := context.Background()

	g, _, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	res, err := svc.Join(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.True(t, res.Joined)

	repo.countErr = errors.New("count failed")
	res, err = svc.Join(ctx, g.ID, "u2")
	require.NoError(t, err)
	assert.True(t, res.Joined)
	assert.Equal(t, -1, res.Participants)
	assert.Len(t, announcer.statuses, 1)
}

func TestStatusSkippedWithoutMessage(t *testing.T) {
	repo := newMemoryRepo()
	announcer := &fakeAnnouncer{}
	svc := NewGiveawayService(repo, announcer)
	ctx := context.Background()

	in := validInput()
	in.MessageID = ""
	g, _, err := svc.Create(ctx, in)
	require.NoError(t, err)

	_, err = svc.Join(ctx, g.ID, "u1")
	require.NoError(t, err)
	assert.Empty(t, announcer.statuses)

	require.NoError(t, svc.AttachMessage(ctx, g.ID, "5005"))
	found, err := svc.GetByMessage(ctx, "1001", "5005")
	require.NoError(t, err)
	assert.Equal(t, g.ID, found.ID)

	_, err = svc.Join(ctx, g.ID, "u2")
	require.NoError(t, err)
	assert.Len(t, announcer.statuses, 1)
}

func TestGetRewardsAndLookups(t *testing.T) {
	svc := NewGiveawayService(newMemoryRepo(), nil)
	ctx := context.Background()

	g, slots, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	got, err := svc.GetRewards(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, slots, got)

	_, err = svc.GetRewards(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.GetByMessage(ctx, "1001", "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.Participants(ctx, 404)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, svc.AttachMessage(ctx, 404, "1"), ErrNotFound)
}
