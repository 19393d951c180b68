package leaderboard

import (
	"context"
	"encoding/binary"
	"errors"
	"log/slog"

	"golang.org/x/crypto/blake2b"

	"github.com/mcoot/idlecoins/internal/dependencies/clock"
	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage"
)

// DefaultSize is the number of entries in a broadcast leaderboard
const DefaultSize = 10

var displayNames = []string{
	"Hero", "Legend", "Master", "Champion", "Warrior",
	"Wizard", "King", "Queen", "Ninja", "Samurai",
}

// LiveState exposes the connected set to the builder
type LiveState interface {
	OnlineIDs(ctx context.Context) (map[model.PlayerID]bool, error)
	Snapshot(ctx context.Context, id model.PlayerID) (*model.Player, bool, error)
}

// Builder ranks players from the durable store
type Builder struct {
	store  storage.Store
	live   LiveState
	clock  clock.Clock
	logger *slog.Logger
}

// NewBuilder creates a leaderboard Builder
func NewBuilder(store storage.Store, live LiveState, clock clock.Clock, logger *slog.Logger) *Builder {
	return &Builder{
		store:  store,
		live:   live,
		clock:  clock,
		logger: logger.With(slog.String("component", "leaderboard")),
	}
}

// Top returns up to n players created within the filter's window, richest first
func (b *Builder) Top(ctx context.Context, n int, filter model.TimeFilter) ([]model.LeaderboardEntry, error) {
	players, err := b.store.TopPlayers(ctx, n, filter.Since(b.clock.Now()))
	if err != nil {
		return nil, err
	}

	online, err := b.live.OnlineIDs(ctx)
	if err != nil {
		// Presence is cosmetic here
		b.logger.Warn("failed to read online set", slog.String("error", err.Error()))
		online = nil
	}

	entries := make([]model.LeaderboardEntry, len(players))
	for i, p := range players {
		entries[i] = model.LeaderboardEntry{
			Rank:         i + 1,
			ID:           p.ID,
			DisplayName:  DisplayName(p.ID),
			Money:        p.Money,
			CPS:          p.CPS,
			Upgrades:     p.Upgrades,
			Playtime:     p.Playtime,
			TotalClicks:  p.TotalClicks,
			IsOnline:     online[p.ID],
			Achievements: len(p.Achievements),
		}
		if entries[i].Upgrades == nil {
			entries[i].Upgrades = []string{}
		}
	}
	return entries, nil
}

// Rank locates a player among all stored players. Players without a stored
// record rank last, after every stored player. Field values prefer the live
// cached copy over the stored one.
func (b *Builder) Rank(ctx context.Context, id model.PlayerID) (*model.RankInfo, error) {
	pos, total, err := b.store.Rank(ctx, id)
	if err != nil {
		return nil, err
	}
	if pos == 0 {
		pos = total + 1
	}

	info := &model.RankInfo{Rank: pos, Total: total, Upgrades: []string{}}

	p, ok, err := b.live.Snapshot(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		p, err = b.store.LoadPlayer(ctx, id)
		switch {
		case errors.Is(err, model.ErrPlayerNotFound):
			return info, nil
		case err != nil:
			return nil, err
		}
	}

	info.Money = p.Money
	info.CPS = p.CPS
	info.TotalClicks = p.TotalClicks
	info.Playtime = p.Playtime
	if p.Upgrades != nil {
		info.Upgrades = p.Upgrades
	}
	return info, nil
}

// DisplayName derives a stable public name from a player id
func DisplayName(id model.PlayerID) string {
	sum := blake2b.Sum256([]byte(id))
	idx := binary.BigEndian.Uint64(sum[:8]) % uint64(len(displayNames))

	suffix := string(id)
	if len(suffix) > 4 {
		suffix = suffix[:4]
	}
	return displayNames[idx] + suffix
}
