package discord

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

// MaxMessageLength is the Discord limit for message content.
const MaxMessageLength = 2000

// Discord embed limits, in characters.
const (
	maxEmbedTitle       = 256
	maxEmbedDescription = 4096
)

const (
	defaultTitle  = "Giveaway"
	resultsHeader = "# :tada: Giveaway results"
	nobody        = "nobody"
	embedColor    = 0x5865F2
)

// FormatStatus renders the footer line shown under an open giveaway.
func FormatStatus(participants, totalRewards int) string {
	return fmt.Sprintf("Participants: %d | Total rewards: %d", participants, totalRewards)
}

func mention(userID string) string {
	return "<@" + userID + ">"
}

// ResultChunk is one results message and the users it mentions.
type ResultChunk struct {
	Content string
	UserIDs []string
}

type chunkBuilder struct {
	limit  int
	cur    strings.Builder
	users  []string
	chunks []ResultChunk
}

func (b *chunkBuilder) writeLine(line string, users []string) {
	need := len(line)
	if b.cur.Len() > 0 {
		need++
	}
	if b.cur.Len() > 0 && b.cur.Len()+need > b.limit {
		b.flush()
	}
	if b.cur.Len() > 0 {
		b.cur.WriteByte('\n')
	}
	b.cur.WriteString(line)
	b.users = append(b.users, users...)
}

func (b *chunkBuilder) flush() {
	if b.cur.Len() == 0 {
		return
	}
	b.chunks = append(b.chunks, ResultChunk{Content: b.cur.String(), UserIDs: b.users})
	b.cur.Reset()
	b.users = nil
}

// FormatResults renders one line per slot in slot order, "> <label> <mentions>",
// with "nobody" for an empty slot. Output is split into messages of at most
// limit bytes; a slot whose mentions do not fit continues on a new line that
// repeats the label.
func FormatResults(results []models.SlotWinners, limit int) []ResultChunk {
	if limit <= 0 {
		limit = MaxMessageLength
	}

	b := &chunkBuilder{limit: limit}
	b.writeLine(resultsHeader, nil)
	// a full line still fits under the header
	lineLimit := limit - len(resultsHeader) - 1

	for _, sw := range results {
		prefix := "> " + sw.Reward.Label
		if len(sw.UserIDs) == 0 {
			b.writeLine(prefix+" "+nobody, nil)
			continue
		}

		line := prefix
		var users []string
		for _, uid := range sw.UserIDs {
			token := " " + mention(uid)
			if len(users) > 0 && len(line)+len(token) > lineLimit {
				b.writeLine(line, users)
				line, users = prefix, nil
			}
			line += token
			users = append(users, uid)
		}
		b.writeLine(line, users)
	}

	b.flush()
	return b.chunks
}

// FormatParticipants lists active participants as mentions, truncated to fit
// a single message.
func FormatParticipants(userIDs []string, limit int) string {
	if len(userIDs) == 0 {
		return "Nobody has joined this giveaway yet."
	}
	if limit <= 0 {
		limit = MaxMessageLength
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**Participants (%d):**\n", len(userIDs))

	for i, uid := range userIDs {
		token := mention(uid)
		if i > 0 {
			token = " " + token
		}
		more := fmt.Sprintf("\n... and %d more", len(userIDs)-i)
		if sb.Len()+len(token)+len(more) > limit {
			sb.WriteString(more)
			break
		}
		sb.WriteString(token)
	}
	return sb.String()
}

func giveawayEmbed(g *models.Giveaway, slots []models.RewardSlot, participants int) *discordgo.MessageEmbed {
	title := g.Title
	if title == "" {
		title = defaultTitle
	}

	return &discordgo.MessageEmbed{
		Title:       truncate(":gift: "+title, maxEmbedTitle),
		Description: rewardLines(slots, maxEmbedDescription),
		Color:       embedColor,
		Footer:      &discordgo.MessageEmbedFooter{Text: FormatStatus(participants, g.TotalRewards)},
	}
}

// rewardLines lists slots one per line; slots that do not fit in limit
// characters are summarised in a trailing "... and N more" line.
func rewardLines(slots []models.RewardSlot, limit int) string {
	var sb strings.Builder
	n := 0
	for i, s := range slots {
		line := fmt.Sprintf("**%dx** %s", s.Amount, s.Label)
		if i > 0 {
			line = "\n" + line
		}
		more := ""
		if rest := len(slots) - i - 1; rest > 0 {
			more = fmt.Sprintf("\n... and %d more", rest)
		}
		if n+utf8.RuneCountInString(line)+utf8.RuneCountInString(more) > limit {
			fmt.Fprintf(&sb, "\n... and %d more", len(slots)-i)
			break
		}
		sb.WriteString(line)
		n += utf8.RuneCountInString(line)
	}
	return sb.String()
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	r := []rune(s)
	return string(r[:limit-1]) + "…"
}

func giveawayComponents(giveawayID int64, disabled bool) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Join",
					Style:    discordgo.PrimaryButton,
					CustomID: customID(actionJoin, giveawayID),
					Disabled: disabled,
				},
				discordgo.Button{
					Label:    "Participants",
					Style:    discordgo.SecondaryButton,
					CustomID: customID(actionList, giveawayID),
					Disabled: disabled,
				},
			},
		},
	}
}

func leaveComponents(giveawayID int64) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{
			Components: []discordgo.MessageComponent{
				discordgo.Button{
					Label:    "Leave",
					Style:    discordgo.DangerButton,
					CustomID: customID(actionLeave, giveawayID),
				},
			},
		},
	}
}
