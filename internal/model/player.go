package model

import (
	"slices"
	"time"
)

// PlayerID uniquely identifies a player across sessions.
// IDs are generated by the client and persisted on its side.
type PlayerID string

// Player is the authoritative accruing state for one player
type Player struct {
	ID PlayerID `json:"id"`

	Money             float64 `json:"money"`
	CPS               float64 `json:"cps"`
	ClickMultiplier   float64 `json:"clickMultiplier"`
	GoldenClickChance float64 `json:"goldenClickChance"`
	CPSMultiplier     float64 `json:"cpsMultiplier"`
	OfflineMultiplier float64 `json:"offlineMultiplier"`

	// Upgrades lists purchased upgrade ids in purchase order.
	// An id repeats only when its catalog entry allows multiple ownership.
	Upgrades     []string `json:"upgrades"`
	Achievements []string `json:"achievements"`
	TotalClicks  int64    `json:"totalClicks"`
	Playtime     int64    `json:"playtime"` // seconds online

	IsOnline  bool      `json:"isOnline"`
	LastSeen  time.Time `json:"lastSeen"`
	CreatedAt time.Time `json:"createdAt"`

	// Ephemeral marks a record hydrated without a successful store load.
	// It is never written back.
	Ephemeral bool `json:"-"`
}

// NewPlayer returns a zero-valued player with default multipliers
func NewPlayer(id PlayerID, now time.Time) *Player {
	return &Player{
		ID:                id,
		ClickMultiplier:   1,
		CPSMultiplier:     1,
		OfflineMultiplier: 1,
		Upgrades:          []string{},
		Achievements:      []string{},
		CreatedAt:         now,
	}
}

// Backfill fills fields missing from a stored record with their defaults.
// Present fields are never overwritten. LastSeen is left alone: a zero value
// means the player has no prior session to reconcile.
func (p *Player) Backfill(now time.Time) {
	if p.ClickMultiplier <= 0 {
		p.ClickMultiplier = 1
	}
	if p.CPSMultiplier <= 0 {
		p.CPSMultiplier = 1
	}
	if p.OfflineMultiplier <= 0 {
		p.OfflineMultiplier = 1
	}
	if p.Upgrades == nil {
		p.Upgrades = []string{}
	}
	if p.Achievements == nil {
		p.Achievements = []string{}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
}

// Clone returns a deep copy safe to hand to another goroutine
func (p *Player) Clone() *Player {
	c := *p
	c.Upgrades = slices.Clone(p.Upgrades)
	c.Achievements = slices.Clone(p.Achievements)
	return &c
}

// OwnedCount returns how many times an upgrade has been purchased
func (p *Player) OwnedCount(upgradeID string) int {
	n := 0
	for _, id := range p.Upgrades {
		if id == upgradeID {
			n++
		}
	}
	return n
}

// HasAchievement reports whether the achievement was already earned
func (p *Player) HasAchievement(id string) bool {
	return slices.Contains(p.Achievements, id)
}

// IncomeRate is the effective money earned per second of accrual
func (p *Player) IncomeRate() float64 {
	return p.CPS * p.CPSMultiplier
}

// Public returns the snapshot broadcast to every connection
func (p *Player) Public() PublicPlayer {
	return PublicPlayer{
		Money:    p.Money,
		CPS:      p.CPS,
		Upgrades: slices.Clone(p.Upgrades),
		IsOnline: p.IsOnline,
	}
}

// PublicPlayer is the per-player view shared with all clients
type PublicPlayer struct {
	Money    float64  `json:"money"`
	CPS      float64  `json:"cps"`
	Upgrades []string `json:"upgrades"`
	IsOnline bool     `json:"isOnline"`
}
