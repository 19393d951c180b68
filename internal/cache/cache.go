// Package cache holds the authoritative in-memory state of connected players.
//
// The cache is deliberately unsynchronized. It is owned by the engine loop and
// must only be touched from closures running on that loop.
package cache

import (
	"sort"

	"github.com/mcoot/idlecoins/internal/model"
)

// Entry pairs a player id with its cached state
type Entry struct {
	ID     model.PlayerID
	Player *model.Player
}

// PlayerCache maps player ids to their live state
type PlayerCache struct {
	players map[model.PlayerID]*model.Player
}

// New creates an empty PlayerCache
func New() *PlayerCache {
	return &PlayerCache{
		players: make(map[model.PlayerID]*model.Player),
	}
}

// Get returns the cached player, if present
func (c *PlayerCache) Get(id model.PlayerID) (*model.Player, bool) {
	p, ok := c.players[id]
	return p, ok
}

// Set stores or replaces the cached player
func (c *PlayerCache) Set(id model.PlayerID, p *model.Player) {
	c.players[id] = p
}

// Remove evicts a player
func (c *PlayerCache) Remove(id model.PlayerID) {
	delete(c.players, id)
}

// Len returns the number of cached players
func (c *PlayerCache) Len() int {
	return len(c.players)
}

// Entries returns the cached pairs as of the call, ordered by id.
// The slice is a snapshot; the players are the live cached values.
func (c *PlayerCache) Entries() []Entry {
	entries := make([]Entry, 0, len(c.players))
	for id, p := range c.players {
		entries = append(entries, Entry{ID: id, Player: p})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].ID < entries[j].ID
	})
	return entries
}
