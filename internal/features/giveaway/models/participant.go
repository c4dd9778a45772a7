package models

// JoinResult reports the outcome of a join click.
type JoinResult struct {
	// Joined is false when the user was already an active participant.
	Joined       bool `json:"joined"`
	Participants int  `json:"participants"`
}

// LeaveResult reports the outcome of a leave click.
type LeaveResult struct {
	// Left is false when there was no active entry to remove.
	Left         bool `json:"left"`
	Participants int  `json:"participants"`
}
