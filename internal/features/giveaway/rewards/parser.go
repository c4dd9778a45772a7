// Package rewards turns the free-text reward list typed by a moderator into
// ordered reward slots.
package rewards

import (
	"regexp"
	"strconv"
	"strings"

	"giveaway-bot-backend/internal/features/giveaway/models"
)

var multiplierPattern = regexp.MustCompile(`(?i)^(\d+)x\s*(.+)$`)

// Parse splits input on commas into reward slots, preserving order.
//
// "3x Nitro" becomes (3, "Nitro"); anything else becomes (1, segment).
// Empty segments are dropped. A multiplier below 1 or too large for an int
// keeps the whole segment as the label with amount 1. Parse never fails; an
// input with no usable segments yields an empty slice.
func Parse(input string) []models.RewardDraft {
	parts := strings.Split(input, ",")
	out := make([]models.RewardDraft, 0, len(parts))

	for _, part := range parts {
		item := strings.TrimSpace(part)
		if item == "" {
			continue
		}
		out = append(out, parseItem(item))
	}

	return out
}

func parseItem(item string) models.RewardDraft {
	m := multiplierPattern.FindStringSubmatch(item)
	if m == nil {
		return models.RewardDraft{Label: item, Amount: 1}
	}

	amount, err := strconv.Atoi(m[1])
	label := strings.TrimSpace(m[2])
	if err != nil || amount < 1 || label == "" {
		return models.RewardDraft{Label: item, Amount: 1}
	}

	return models.RewardDraft{Label: label, Amount: amount}
}

// Total sums the amounts.
func Total(drafts []models.RewardDraft) int {
	total := 0
	for _, d := range drafts {
		total += d.Amount
	}
	return total
}
