package models

// SlotWinners pairs a reward slot with the users allocated to it.
// UserIDs is empty, never nil, when nobody was left for the slot.
type SlotWinners struct {
	Reward  RewardSlot `json:"reward"`
	UserIDs []string   `json:"user_ids"`
}

// Settlement is the committed outcome of ending a giveaway.
type Settlement struct {
	Giveaway *Giveaway     `json:"giveaway"`
	Results  []SlotWinners `json:"results"`
}

// WinnerCount returns the number of allocated users across all slots.
func (s *Settlement) WinnerCount() int {
	n := 0
	for _, r := range s.Results {
		n += len(r.UserIDs)
	}
	return n
}

// AllocateFunc assigns participants to the ordered slots. It is invoked by the
// store inside the settlement transaction.
type AllocateFunc func(slots []RewardSlot, participants []string) ([]SlotWinners, error)
