package discord

import (
	"fmt"
	"strconv"
	"strings"
)

const customIDPrefix = "giveaway"

// Button actions
const (
	actionJoin  = "join"
	actionList  = "list"
	actionLeave = "leave"
)

// customID binds a button to one giveaway: giveaway:<action>:<id>.
func customID(action string, giveawayID int64) string {
	return fmt.Sprintf("%s:%s:%d", customIDPrefix, action, giveawayID)
}

func parseCustomID(id string) (action string, giveawayID int64, ok bool) {
	parts := strings.Split(id, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return "", 0, false
	}

	switch parts[1] {
	case actionJoin, actionList, actionLeave:
	default:
		return "", 0, false
	}

	giveawayID, err := strconv.ParseInt(parts[2], 10, 64)
	if err != nil || giveawayID <= 0 {
		return "", 0, false
	}
	return parts[1], giveawayID, true
}
