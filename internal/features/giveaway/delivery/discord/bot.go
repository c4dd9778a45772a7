package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/common/logger"
)

// Bot owns the gateway connection and routes interactions to the handler.
type Bot struct {
	session  *discordgo.Session
	handler  *InteractionHandler
	guildIDs []string
}

// NewBot registers event handlers on session. When guildIDs is empty,
// commands are registered in every guild the bot sees.
func NewBot(session *discordgo.Session, handler *InteractionHandler, guildIDs []string) *Bot {
	b := &Bot{
		session:  session,
		handler:  handler,
		guildIDs: guildIDs,
	}

	session.AddHandler(b.onReady)
	session.AddHandler(b.onGuildCreate)
	session.AddHandler(b.onInteractionCreate)

	session.Identify.Intents = discordgo.IntentsGuilds

	return b
}

func (b *Bot) Start() error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	logger.Info().Msg("Discord bot is running")
	return nil
}

func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, event *discordgo.Ready) {
	logger.Info().Str("user", event.User.Username).Int("guilds", len(event.Guilds)).Msg("Discord session ready")

	for _, guildID := range b.guildIDs {
		b.registerGuildCommands(s, guildID)
	}
}

func (b *Bot) onGuildCreate(s *discordgo.Session, event *discordgo.GuildCreate) {
	if len(b.guildIDs) > 0 {
		return
	}
	b.registerGuildCommands(s, event.ID)
}

func (b *Bot) onInteractionCreate(_ *discordgo.Session, event *discordgo.InteractionCreate) {
	b.handler.Handle(context.Background(), event.Interaction)
}

func (b *Bot) registerGuildCommands(s *discordgo.Session, guildID string) {
	if s.State == nil || s.State.User == nil {
		return
	}
	if _, err := s.ApplicationCommandBulkOverwrite(s.State.User.ID, guildID, Commands()); err != nil {
		logger.Error().Err(err).Str("guild_id", guildID).Msg("Failed to register giveaway commands")
		return
	}
	logger.Info().Str("guild_id", guildID).Msg("Registered giveaway commands")
}

// Commands returns the application commands exposed by the bot.
func Commands() []*discordgo.ApplicationCommand {
	perms := int64(discordgo.PermissionModerateMembers)

	return []*discordgo.ApplicationCommand{
		{
			Name:                     commandGiveaway,
			Description:              "Manage giveaways",
			DefaultMemberPermissions: &perms,
			DMPermission:             boolPtr(false),
			Options: []*discordgo.ApplicationCommandOption{
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandCreate,
					Description: "Start a giveaway in this channel",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optionRewards,
							Description: "Comma separated rewards, e.g. 2x Nitro, Sticker",
							Required:    true,
						},
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optionTitle,
							Description: "Giveaway title",
							MaxLength:   256,
						},
					},
				},
				{
					Type:        discordgo.ApplicationCommandOptionSubCommand,
					Name:        subcommandEnd,
					Description: "End a giveaway and draw the winners",
					Options: []*discordgo.ApplicationCommandOption{
						{
							Type:        discordgo.ApplicationCommandOptionString,
							Name:        optionMessageID,
							Description: "ID of the giveaway message",
							Required:    true,
						},
					},
				},
			},
		},
		{
			Name:                     commandEndGiveaway,
			Type:                     discordgo.MessageApplicationCommand,
			DefaultMemberPermissions: &perms,
			DMPermission:             boolPtr(false),
		},
	}
}

func boolPtr(b bool) *bool {
	return &b
}
