package discord

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/features/giveaway/rewards"
	"giveaway-bot-backend/internal/features/giveaway/service"
)

// Command names
const (
	commandGiveaway    = "giveaway"
	subcommandCreate   = "create"
	subcommandEnd      = "end"
	commandEndGiveaway = "End giveaway"

	optionRewards   = "rewards"
	optionTitle     = "title"
	optionMessageID = "message_id"
)

// User-facing replies
const (
	msgCreated        = "Giveaway created."
	msgJoined         = "You joined the giveaway. Good luck!"
	msgAlreadyJoined  = "You are already participating. Want to leave?"
	msgLeft           = "You left the giveaway."
	msgNotJoined      = "You are not participating in this giveaway."
	msgEnded          = "This giveaway has ended."
	msgAlreadyEnded   = "This giveaway has already ended."
	msgNotFound       = "Giveaway not found."
	msgNoRewards      = "Provide at least one reward, for example: `2x Nitro, Sticker`."
	msgInvalidInput   = "Invalid giveaway parameters."
	msgGuildOnly      = "Giveaways can only be used in a server."
	msgInternalError  = "Something went wrong, please try again later."
	msgPostFailed     = "Could not post the giveaway message. Check my permissions in this channel."
	msgEndedWithCount = "Giveaway ended. Winners: %d."
)

// InteractionHandler maps slash commands, the message command and buttons
// onto the giveaway services.
type InteractionHandler struct {
	session    Session
	giveaways  service.GiveawayService
	settlement service.SettlementService
}

func NewInteractionHandler(session Session, giveaways service.GiveawayService, settlement service.SettlementService) *InteractionHandler {
	return &InteractionHandler{
		session:    session,
		giveaways:  giveaways,
		settlement: settlement,
	}
}

// Handle dispatches one interaction. Every path acknowledges with a deferred
// ephemeral response first and answers with a follow-up.
func (h *InteractionHandler) Handle(ctx context.Context, i *discordgo.Interaction) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		h.handleCommand(ctx, i)
	case discordgo.InteractionMessageComponent:
		h.handleComponent(ctx, i)
	}
}

func (h *InteractionHandler) handleCommand(ctx context.Context, i *discordgo.Interaction) {
	data := i.ApplicationCommandData()

	switch data.Name {
	case commandGiveaway:
		if len(data.Options) == 0 {
			return
		}
		sub := data.Options[0]
		switch sub.Name {
		case subcommandCreate:
			h.create(ctx, i, optionString(sub.Options, optionRewards), optionString(sub.Options, optionTitle))
		case subcommandEnd:
			h.end(ctx, i, optionString(sub.Options, optionMessageID))
		}
	case commandEndGiveaway:
		h.end(ctx, i, data.TargetID)
	}
}

func (h *InteractionHandler) handleComponent(ctx context.Context, i *discordgo.Interaction) {
	action, giveawayID, ok := parseCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	switch action {
	case actionJoin:
		h.join(ctx, i, giveawayID)
	case actionList:
		h.list(ctx, i, giveawayID)
	case actionLeave:
		h.leave(ctx, i, giveawayID)
	}
}

func (h *InteractionHandler) create(ctx context.Context, i *discordgo.Interaction, rewardText, title string) {
	if !h.acknowledge(ctx, i) {
		return
	}
	if i.GuildID == "" {
		h.reply(ctx, i, msgGuildOnly, nil)
		return
	}

	input := &models.CreateGiveawayInput{
		GuildID:   i.GuildID,
		ChannelID: i.ChannelID,
		CreatedBy: interactionUserID(i),
		Title:     title,
		Rewards:   rewards.Parse(rewardText),
	}

	g, slots, err := h.giveaways.Create(ctx, input)
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}

	msg, err := h.session.ChannelMessageSendComplex(i.ChannelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{giveawayEmbed(g, slots, 0)},
		Components: giveawayComponents(g.ID, false),
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.Error().Err(err).Int64("giveaway_id", g.ID).Msg("Failed to post giveaway message")
		h.discard(ctx, g.ID)
		h.reply(ctx, i, msgPostFailed, nil)
		return
	}

	if err := h.giveaways.AttachMessage(ctx, g.ID, msg.ID); err != nil {
		logger.Error().Err(err).Int64("giveaway_id", g.ID).Str("message_id", msg.ID).Msg("Failed to attach giveaway message")
		// Без message_id кнопки сообщения ни к чему не ведут
		if derr := h.session.ChannelMessageDelete(i.ChannelID, msg.ID, discordgo.WithContext(ctx)); derr != nil {
			logger.Warn().Err(derr).Str("message_id", msg.ID).Msg("Failed to delete orphaned giveaway message")
		}
		h.discard(ctx, g.ID)
		h.reply(ctx, i, msgInternalError, nil)
		return
	}

	h.reply(ctx, i, msgCreated, nil)
}

// discard drops a giveaway whose message never made it into the channel.
func (h *InteractionHandler) discard(ctx context.Context, giveawayID int64) {
	if err := h.giveaways.Discard(ctx, giveawayID); err != nil {
		logger.Error().Err(err).Int64("giveaway_id", giveawayID).Msg("Failed to discard unpublished giveaway")
	}
}

func (h *InteractionHandler) end(ctx context.Context, i *discordgo.Interaction, messageID string) {
	if !h.acknowledge(ctx, i) {
		return
	}
	if i.GuildID == "" {
		h.reply(ctx, i, msgGuildOnly, nil)
		return
	}

	g, err := h.giveaways.GetByMessage(ctx, i.GuildID, messageID)
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}

	settlement, err := h.settlement.EndGiveaway(ctx, g.ID)
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}

	h.reply(ctx, i, fmt.Sprintf(msgEndedWithCount, settlement.WinnerCount()), nil)
}

func (h *InteractionHandler) join(ctx context.Context, i *discordgo.Interaction, giveawayID int64) {
	if !h.acknowledge(ctx, i) {
		return
	}

	res, err := h.giveaways.Join(ctx, giveawayID, interactionUserID(i))
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}
	if !res.Joined {
		h.reply(ctx, i, msgAlreadyJoined, leaveComponents(giveawayID))
		return
	}
	h.reply(ctx, i, msgJoined, nil)
}

func (h *InteractionHandler) leave(ctx context.Context, i *discordgo.Interaction, giveawayID int64) {
	if !h.acknowledge(ctx, i) {
		return
	}

	res, err := h.giveaways.Leave(ctx, giveawayID, interactionUserID(i))
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}
	if !res.Left {
		h.reply(ctx, i, msgNotJoined, nil)
		return
	}
	h.reply(ctx, i, msgLeft, nil)
}

func (h *InteractionHandler) list(ctx context.Context, i *discordgo.Interaction, giveawayID int64) {
	if !h.acknowledge(ctx, i) {
		return
	}

	users, err := h.giveaways.Participants(ctx, giveawayID)
	if err != nil {
		h.replyError(ctx, i, err)
		return
	}
	h.reply(ctx, i, FormatParticipants(users, MaxMessageLength), nil)
}

// acknowledge answers the interaction within Discord's 3 second window.
func (h *InteractionHandler) acknowledge(ctx context.Context, i *discordgo.Interaction) bool {
	err := h.session.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.Warn().Err(err).Str("interaction_id", i.ID).Msg("Failed to acknowledge interaction")
		return false
	}
	return true
}

func (h *InteractionHandler) reply(ctx context.Context, i *discordgo.Interaction, content string, components []discordgo.MessageComponent) {
	_, err := h.session.FollowupMessageCreate(i, true, &discordgo.WebhookParams{
		Content:         content,
		Components:      components,
		Flags:           discordgo.MessageFlagsEphemeral,
		AllowedMentions: &discordgo.MessageAllowedMentions{Parse: []discordgo.AllowedMentionType{}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		logger.Warn().Err(err).Str("interaction_id", i.ID).Msg("Failed to send interaction follow-up")
	}
}

func (h *InteractionHandler) replyError(ctx context.Context, i *discordgo.Interaction, err error) {
	h.reply(ctx, i, errorMessage(err), nil)
}

// errorMessage maps service sentinels onto user-facing replies.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, service.ErrNotFound):
		return msgNotFound
	case errors.Is(err, service.ErrGiveawayEnded):
		return msgEnded
	case errors.Is(err, service.ErrAlreadyEnded):
		return msgAlreadyEnded
	case errors.Is(err, service.ErrInvalidRewards):
		return msgNoRewards
	case errors.Is(err, service.ErrInvalidInput):
		return msgInvalidInput
	default:
		logger.Error().Err(err).Msg("Giveaway interaction failed")
		return msgInternalError
	}
}

func interactionUserID(i *discordgo.Interaction) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}

func optionString(opts []*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	for _, o := range opts {
		if o.Name != name {
			continue
		}
		if v, ok := o.Value.(string); ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
