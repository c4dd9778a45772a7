package discord

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/common/logger"
	"giveaway-bot-backend/internal/features/giveaway/models"
)

// Discord accepts at most this many ids in allowed_mentions.users.
const maxAllowedUsers = 100

// Announcer renders giveaway state into the giveaway message and its channel.
type Announcer struct {
	session Session
}

func NewAnnouncer(session Session) *Announcer {
	return &Announcer{session: session}
}

// UpdateStatus rewrites the footer of the giveaway embed. Components are
// always sent because Discord drops them from an edit that omits them.
func (a *Announcer) UpdateStatus(ctx context.Context, g *models.Giveaway, participants int) error {
	msg, err := a.session.ChannelMessage(g.ChannelID, g.MessageID, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to fetch giveaway message: %w", err)
	}

	embed := &discordgo.MessageEmbed{Title: ":gift: " + defaultTitle}
	if len(msg.Embeds) > 0 && msg.Embeds[0] != nil {
		cp := *msg.Embeds[0]
		embed = &cp
	}
	embed.Footer = &discordgo.MessageEmbedFooter{Text: FormatStatus(participants, g.TotalRewards)}

	edit := discordgo.NewMessageEdit(g.ChannelID, g.MessageID)
	edit.Embeds = []*discordgo.MessageEmbed{embed}
	edit.Components = giveawayComponents(g.ID, g.IsEnded())

	if _, err := a.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to edit giveaway message: %w", err)
	}
	return nil
}

// PublishResults disables the buttons on the giveaway message and replies to
// it with the winners. A deleted giveaway message does not block the results:
// they are posted to the channel without a reference.
func (a *Announcer) PublishResults(ctx context.Context, s *models.Settlement) error {
	g := s.Giveaway

	var ref *discordgo.MessageReference
	if g.MessageID != "" {
		found, err := a.disableButtons(ctx, g)
		if err != nil {
			return err
		}
		if found {
			ref = &discordgo.MessageReference{MessageID: g.MessageID, ChannelID: g.ChannelID, GuildID: g.GuildID}
		}
	}

	for i, chunk := range FormatResults(s.Results, MaxMessageLength) {
		send := &discordgo.MessageSend{
			Content:         chunk.Content,
			AllowedMentions: allowedMentions(chunk.UserIDs),
		}
		if i == 0 {
			send.Reference = ref
		}
		if _, err := a.session.ChannelMessageSendComplex(g.ChannelID, send, discordgo.WithContext(ctx)); err != nil {
			return fmt.Errorf("failed to send giveaway results: %w", err)
		}
	}

	logger.Info().
		Int64("giveaway_id", g.ID).
		Str("channel_id", g.ChannelID).
		Int("winners", s.WinnerCount()).
		Msg("Giveaway results published")

	return nil
}

func (a *Announcer) disableButtons(ctx context.Context, g *models.Giveaway) (bool, error) {
	msg, err := a.session.ChannelMessage(g.ChannelID, g.MessageID, discordgo.WithContext(ctx))
	if isUnknownMessage(err) {
		logger.Warn().Int64("giveaway_id", g.ID).Str("message_id", g.MessageID).Msg("Giveaway message is gone, posting results without reply")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch giveaway message: %w", err)
	}

	edit := discordgo.NewMessageEdit(g.ChannelID, g.MessageID)
	edit.Embeds = msg.Embeds
	edit.Components = giveawayComponents(g.ID, true)

	if _, err := a.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx)); err != nil {
		return false, fmt.Errorf("failed to disable giveaway buttons: %w", err)
	}
	return true, nil
}

func allowedMentions(userIDs []string) *discordgo.MessageAllowedMentions {
	if len(userIDs) > maxAllowedUsers {
		return &discordgo.MessageAllowedMentions{
			Parse: []discordgo.AllowedMentionType{discordgo.AllowedMentionTypeUsers},
		}
	}
	return &discordgo.MessageAllowedMentions{
		Parse: []discordgo.AllowedMentionType{},
		Users: userIDs,
	}
}

func isUnknownMessage(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		return restErr.Message.Code == discordgo.ErrCodeUnknownMessage
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}
