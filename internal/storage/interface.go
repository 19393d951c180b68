package storage

import (
	"context"
	"time"

	"github.com/mcoot/idlecoins/internal/model"
)

// Store is the durable player store.
// Implementations never retain the pointers they are given or return.
type Store interface {
	// LoadPlayer returns model.ErrPlayerNotFound when no record exists
	LoadPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error)
	// SavePlayer upserts the record keyed by player.ID
	SavePlayer(ctx context.Context, player *model.Player) error

	// TopPlayers returns up to n players created at or after since,
	// ordered by money descending. A zero since admits every player.
	TopPlayers(ctx context.Context, n int, since time.Time) ([]*model.Player, error)
	// Rank returns the 1-based position of id among all players ordered by
	// money descending, and the total number of players. Position is 0 when
	// the player has no record.
	Rank(ctx context.Context, id model.PlayerID) (position int, total int, err error)

	// DeleteStale removes offline players matching the criteria and returns
	// how many were deleted
	DeleteStale(ctx context.Context, criteria StaleCriteria) (int, error)

	Close() error
}

// StaleCriteria selects abandoned low-value records for cleanup.
// Online records never match.
type StaleCriteria struct {
	LastSeenBefore time.Time
	MoneyBelow     float64
}

// Matches reports whether a stored player is stale under the criteria
func (c StaleCriteria) Matches(p *model.Player) bool {
	return !p.IsOnline && p.LastSeen.Before(c.LastSeenBefore) && p.Money < c.MoneyBelow
}
