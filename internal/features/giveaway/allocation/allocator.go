// Package allocation converts a participant pool into a disjoint winner
// assignment over ordered reward slots.
package allocation

import (
	"fmt"

	"giveaway-bot-backend/internal/features/giveaway/models"
	"giveaway-bot-backend/internal/utils/random"
)

// Shuffler permutes ids in place.
type Shuffler func(ids []string) error

type Allocator struct {
	shuffle Shuffler
}

// New returns an allocator backed by the crypto/rand shuffle.
func New() *Allocator {
	return &Allocator{shuffle: random.Shuffle[string]}
}

// NewWithShuffler is used by tests to make the draw deterministic.
func NewWithShuffler(s Shuffler) *Allocator {
	return &Allocator{shuffle: s}
}

// Allocate shuffles the deduplicated participants once and hands them out in
// slot order, amount at a time. When the pool runs dry later slots receive
// fewer users or none. The result has one entry per slot, in slot order, and no
// user appears twice.
func (a *Allocator) Allocate(slots []models.RewardSlot, participants []string) ([]models.SlotWinners, error) {
	pool := dedupe(participants)
	if err := a.shuffle(pool); err != nil {
		return nil, fmt.Errorf("failed to shuffle participants: %w", err)
	}

	results := make([]models.SlotWinners, 0, len(slots))
	offset := 0
	for _, slot := range slots {
		take := slot.Amount
		if take < 0 {
			take = 0
		}
		if remaining := len(pool) - offset; take > remaining {
			take = remaining
		}

		users := make([]string, take)
		copy(users, pool[offset:offset+take])
		offset += take

		results = append(results, models.SlotWinners{Reward: slot, UserIDs: users})
	}

	return results, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
