package redis

import (
	"fmt"

	"github.com/mcoot/idlecoins/internal/model"
)

// Key prefix for all idlecoins data
const keyPrefix = "idlecoins"

// playerKey returns the Redis key for a Player record
func playerKey(id model.PlayerID) string {
	return fmt.Sprintf("%s:player:%s", keyPrefix, id)
}

// moneyIndexKey returns the Redis key for the ZSET of player ids scored by
// negated money
func moneyIndexKey() string {
	return fmt.Sprintf("%s:idx:money", keyPrefix)
}
