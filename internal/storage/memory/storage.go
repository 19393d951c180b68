package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu      sync.RWMutex
	players map[model.PlayerID]*model.Player
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		players: make(map[model.PlayerID]*model.Player),
	}
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) LoadPlayer(ctx context.Context, id model.PlayerID) (*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.players[id]
	if !ok {
		return nil, model.ErrPlayerNotFound
	}
	return p.Clone(), nil
}

func (s *Storage) SavePlayer(ctx context.Context, player *model.Player) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[player.ID] = player.Clone()
	return nil
}

func (s *Storage) TopPlayers(ctx context.Context, n int, since time.Time) ([]*model.Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := s.sorted(func(p *model.Player) bool {
		return !p.CreatedAt.Before(since)
	})
	if n >= 0 && len(ranked) > n {
		ranked = ranked[:n]
	}
	for i, p := range ranked {
		ranked[i] = p.Clone()
	}
	return ranked, nil
}

func (s *Storage) Rank(ctx context.Context, id model.PlayerID) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := s.sorted(nil)
	for i, p := range ranked {
		if p.ID == id {
			return i + 1, len(ranked), nil
		}
	}
	return 0, len(ranked), nil
}

func (s *Storage) DeleteStale(ctx context.Context, criteria storage.StaleCriteria) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, p := range s.players {
		if criteria.Matches(p) {
			delete(s.players, id)
			deleted++
		}
	}
	return deleted, nil
}

// Close is a no-op for memory storage
func (s *Storage) Close() error {
	return nil
}

// Count returns the number of stored players
func (s *Storage) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

// sorted returns players passing keep ordered by money descending, then id.
// Callers must hold the lock.
func (s *Storage) sorted(keep func(*model.Player) bool) []*model.Player {
	out := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		if keep == nil || keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Money != out[j].Money {
			return out[i].Money > out[j].Money
		}
		return out[i].ID < out[j].ID
	})
	return out
}
