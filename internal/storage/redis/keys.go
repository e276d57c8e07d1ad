package redis

import (
	"fmt"

	"github.com/mcoot/eventledger/internal/model"
)

// Key prefix for all ledger data
const keyPrefix = "evledger"

// eventKey returns the Redis key for an EventRecord document
func eventKey(date model.EventDate) string {
	return fmt.Sprintf("%s:event:%s", keyPrefix, date)
}

// eventIndexKey returns the Redis key for the SET of known event dates
func eventIndexKey() string {
	return fmt.Sprintf("%s:idx:events", keyPrefix)
}

// adminKey returns the Redis key for an Admin
func adminKey(username string) string {
	return fmt.Sprintf("%s:admin:%s", keyPrefix, username)
}
