// Package session owns the lifecycle of connected players: hydration,
// offline earnings, clicks, purchases, and the periodic cache operations.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mcoot/idlecoins/internal/cache"
	"github.com/mcoot/idlecoins/internal/dependencies/clock"
	"github.com/mcoot/idlecoins/internal/dependencies/random"
	"github.com/mcoot/idlecoins/internal/engine"
	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/services/achievement"
	"github.com/mcoot/idlecoins/internal/services/purchase"
	"github.com/mcoot/idlecoins/internal/storage"
)

// goldenClickFactor multiplies the value of a golden click
const goldenClickFactor = 10

// Broadcaster fans an event out to every live connection
type Broadcaster interface {
	Broadcast(event model.EventType, data any)
}

// Config holds session tuning
type Config struct {
	MaxIDLength int
	OfflineCap  time.Duration

	// Stale records are offline, unseen for StaleAfter and worth less than
	// StaleMoneyBelow
	StaleAfter      time.Duration
	StaleMoneyBelow float64
}

// DefaultConfig returns the standard session settings
func DefaultConfig() Config {
	return Config{
		MaxIDLength:     DefaultMaxIDLength,
		OfflineCap:      DefaultOfflineCap,
		StaleAfter:      7 * 24 * time.Hour,
		StaleMoneyBelow: 100,
	}
}

// ConnectResult is everything a new connection must be told, in order
type ConnectResult struct {
	PlayerID model.PlayerID
	// Assigned is set when the id was generated server-side
	Assigned bool
	// Offline is set when offline earnings were credited
	Offline *model.OfflineEarningsPayload
	Init    model.InitPayload
}

// ClickResult reports the outcome of one click
type ClickResult struct {
	Value        float64
	Golden       bool
	Achievements []model.AchievementPayload
}

// BuyResult reports a successful purchase
type BuyResult struct {
	Bought       model.UpgradeBoughtPayload
	Achievements []model.AchievementPayload
}

// Stats is a point-in-time view of the live set
type Stats struct {
	Online int `json:"online"`
	Cached int `json:"cached"`
}

// Manager serializes all access to cached player state through the engine
// loop. Store I/O happens outside the loop on cloned records.
type Manager struct {
	loop *engine.Loop

	// Loop-owned
	cache *cache.PlayerCache
	conns map[model.PlayerID]int

	store        storage.Store
	writes       *writeSlots
	purchases    *purchase.Service
	achievements *achievement.Evaluator
	broadcaster  Broadcaster
	clock        clock.Clock
	random       random.Random
	cfg          Config
	logger       *slog.Logger
}

// NewManager creates a Manager. The loop must be running before use.
func NewManager(
	loop *engine.Loop,
	store storage.Store,
	purchases *purchase.Service,
	achievements *achievement.Evaluator,
	broadcaster Broadcaster,
	clock clock.Clock,
	random random.Random,
	cfg Config,
	logger *slog.Logger,
) *Manager {
	if cfg.MaxIDLength <= 0 {
		cfg.MaxIDLength = DefaultMaxIDLength
	}
	if cfg.OfflineCap <= 0 {
		cfg.OfflineCap = DefaultOfflineCap
	}
	return &Manager{
		loop:         loop,
		cache:        cache.New(),
		conns:        make(map[model.PlayerID]int),
		store:        store,
		writes:       newWriteSlots(),
		purchases:    purchases,
		achievements: achievements,
		broadcaster:  broadcaster,
		clock:        clock,
		random:       random,
		cfg:          cfg,
		logger:       logger.With(slog.String("component", "session")),
	}
}

// Connect hydrates the player for a new connection and marks them online.
// The requested id is replaced with a generated one if it is unusable.
func (m *Manager) Connect(ctx context.Context, requestedID string) (*ConnectResult, error) {
	id, assigned := m.resolveID(requestedID)
	result := &ConnectResult{PlayerID: id, Assigned: assigned}

	var (
		snapshot *model.Player
		joined   bool
		online   int
	)
	err := m.loop.Do(ctx, func() {
		if p, ok := m.cache.Get(id); ok {
			m.conns[id]++
			p.IsOnline = true
			snapshot = p.Clone()
			joined = true
			online = m.onlineCount()
		}
	})
	if err != nil {
		return nil, err
	}

	if !joined {
		loaded := m.load(ctx, id)

		err = m.loop.Do(ctx, func() {
			// Another connection for this id may have hydrated it meanwhile
			p, ok := m.cache.Get(id)
			if ok {
				m.conns[id]++
				p.IsOnline = true
				snapshot = p.Clone()
				online = m.onlineCount()
				return
			}

			p = loaded
			now := m.clock.Now()
			p.Backfill(now)
			if earned, ok := OfflineEarnings(p, now, m.cfg.OfflineCap); ok {
				p.Money += earned.Earnings
				if earned.Earnings > 0 {
					result.Offline = &earned
				}
			}
			p.IsOnline = true
			p.LastSeen = now

			m.cache.Set(id, p)
			m.conns[id] = 1
			snapshot = p.Clone()
			online = m.onlineCount()
		})
		if err != nil {
			return nil, err
		}
	}

	if _, err := m.persist(ctx, id, nil); err != nil {
		m.logger.Error("failed to save player",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
	}

	result.Init = model.InitPayload{
		Money:             snapshot.Money,
		CPS:               snapshot.CPS,
		Upgrades:          snapshot.Upgrades,
		AvailableUpgrades: m.purchases.Available(snapshot),
		Stats: model.InitStats{
			TotalClicks:  snapshot.TotalClicks,
			Playtime:     snapshot.Playtime,
			Achievements: snapshot.Achievements,
			Rank:         m.rank(ctx, id),
		},
	}

	m.logger.Info("player connected",
		slog.String("player_id", string(id)),
		slog.Bool("assigned", assigned),
		slog.Bool("ephemeral", snapshot.Ephemeral),
		slog.Int("online", online))
	m.broadcaster.Broadcast(model.EventPlayersOnline, online)

	return result, nil
}

// Disconnect closes one connection for the player. When it was the last one
// the player is marked offline, saved, and evicted from the cache.
func (m *Manager) Disconnect(ctx context.Context, id model.PlayerID) error {
	// Hold the write slot through eviction so no sweep copy taken before the
	// final save can land after it
	release := m.writes.acquire(id)
	defer release()

	var (
		snapshot *model.Player
		online   int
	)
	err := m.loop.Do(ctx, func() {
		n, ok := m.conns[id]
		if !ok || n == 0 {
			return
		}
		m.conns[id] = n - 1
		if n > 1 {
			return
		}
		p, ok := m.cache.Get(id)
		if !ok {
			delete(m.conns, id)
			return
		}
		p.IsOnline = false
		p.LastSeen = m.clock.Now()
		snapshot = p.Clone()
	})
	if err != nil {
		return err
	}
	if snapshot == nil {
		return nil
	}

	m.save(ctx, snapshot)

	// Evict only if nobody reconnected while the save was in flight
	err = m.loop.Do(ctx, func() {
		if m.conns[id] == 0 {
			delete(m.conns, id)
			m.cache.Remove(id)
		}
		online = m.onlineCount()
	})
	if err != nil {
		return err
	}

	m.logger.Info("player disconnected",
		slog.String("player_id", string(id)),
		slog.Int("online", online))
	m.broadcaster.Broadcast(model.EventPlayersOnline, online)
	return nil
}

// Click awards one manual click, possibly golden
func (m *Manager) Click(ctx context.Context, id model.PlayerID) (*ClickResult, error) {
	var (
		result *ClickResult
		opErr  error
	)
	err := m.loop.Do(ctx, func() {
		p, ok := m.cache.Get(id)
		if !ok {
			opErr = model.ErrPlayerNotFound
			return
		}

		value := 1 * p.ClickMultiplier
		golden := p.GoldenClickChance > 0 && m.random.Float64() < p.GoldenClickChance
		if golden {
			value *= goldenClickFactor
		}
		p.Money += value
		p.TotalClicks++

		result = &ClickResult{
			Value:        value,
			Golden:       golden,
			Achievements: payloads(m.achievements.Evaluate(p)),
		}
	})
	if err != nil {
		return nil, err
	}
	return result, opErr
}

// Buy validates and applies a purchase for a connected player
func (m *Manager) Buy(ctx context.Context, id model.PlayerID, upgradeID string) (*BuyResult, error) {
	var (
		result *BuyResult
		opErr  error
	)
	err := m.loop.Do(ctx, func() {
		p, _ := m.cache.Get(id)
		res, err := m.purchases.Buy(p, upgradeID)
		if err != nil {
			opErr = err
			return
		}
		result = &BuyResult{
			Bought: model.UpgradeBoughtPayload{
				UpgradeID:         res.Upgrade.ID,
				UpgradeName:       res.Upgrade.Name,
				NewMoney:          res.NewMoney,
				NewCPS:            res.NewCPS,
				AvailableUpgrades: res.AvailableUpgrades,
			},
			Achievements: payloads(m.achievements.Evaluate(p)),
		}
	})
	if err != nil {
		return nil, err
	}
	if opErr != nil {
		m.logger.Debug("purchase rejected",
			slog.String("player_id", string(id)),
			slog.String("upgrade_id", upgradeID),
			slog.String("error", opErr.Error()))
	}
	return result, opErr
}

// AvailableUpgrades returns what a connected player can currently buy
func (m *Manager) AvailableUpgrades(ctx context.Context, id model.PlayerID) ([]model.UpgradeDef, error) {
	var (
		available []model.UpgradeDef
		opErr     error
	)
	err := m.loop.Do(ctx, func() {
		p, ok := m.cache.Get(id)
		if !ok {
			opErr = model.ErrPlayerNotFound
			return
		}
		available = m.purchases.Available(p)
	})
	if err != nil {
		return nil, err
	}
	return available, opErr
}

// Tick accrues one unit of income for every online cached player and
// broadcasts the public snapshot of the whole cache
func (m *Manager) Tick(ctx context.Context) error {
	var snapshot map[model.PlayerID]model.PublicPlayer
	err := m.loop.Do(ctx, func() {
		now := m.clock.Now()
		entries := m.cache.Entries()
		snapshot = make(map[model.PlayerID]model.PublicPlayer, len(entries))
		for _, e := range entries {
			p := e.Player
			if p.IsOnline {
				p.Money += p.IncomeRate()
				p.Playtime++
				p.LastSeen = now
			}
			snapshot[e.ID] = p.Public()
		}
	})
	if err != nil {
		return err
	}

	if len(snapshot) > 0 {
		m.broadcaster.Broadcast(model.EventUpdateAll, snapshot)
	}
	return nil
}

// PersistAll writes every cached record to the store. Each record is copied
// just before its own save, and players evicted meanwhile are skipped. A
// failed record does not stop the sweep; failures are logged and returned
// joined.
func (m *Manager) PersistAll(ctx context.Context) (int, error) {
	ids, err := m.cachedIDs(ctx)
	if err != nil {
		return 0, err
	}

	saved := 0
	var errs []error
	for _, id := range ids {
		ok, err := m.persist(ctx, id, nil)
		if err != nil {
			m.logger.Error("failed to persist player",
				slog.String("player_id", string(id)),
				slog.String("error", err.Error()))
			errs = append(errs, err)
			continue
		}
		if ok {
			saved++
		}
	}

	m.logger.Debug("persistence sweep complete",
		slog.Int("saved", saved),
		slog.Int("failed", len(errs)))
	return saved, errors.Join(errs...)
}

// CleanupStale deletes abandoned low-value records from the store
func (m *Manager) CleanupStale(ctx context.Context) (int, error) {
	criteria := storage.StaleCriteria{
		LastSeenBefore: m.clock.Now().Add(-m.cfg.StaleAfter),
		MoneyBelow:     m.cfg.StaleMoneyBelow,
	}
	n, err := m.store.DeleteStale(ctx, criteria)
	if err != nil {
		return 0, fmt.Errorf("%w: cleanup: %w", model.ErrPersistenceFailure, err)
	}
	if n > 0 {
		m.logger.Info("deleted stale players", slog.Int("count", n))
	}
	return n, nil
}

// Shutdown marks every cached player offline and saves them
func (m *Manager) Shutdown(ctx context.Context) error {
	ids, err := m.cachedIDs(ctx)
	if err != nil {
		return err
	}

	saved := 0
	var errs []error
	for _, id := range ids {
		ok, err := m.persist(ctx, id, func(p *model.Player) {
			p.IsOnline = false
			p.LastSeen = m.clock.Now()
		})
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if ok {
			saved++
		}
	}
	m.logger.Info("session state flushed",
		slog.Int("players", saved),
		slog.Int("failed", len(errs)))
	return errors.Join(errs...)
}

// cachedIDs lists the ids of every cached record that may be persisted
func (m *Manager) cachedIDs(ctx context.Context) ([]model.PlayerID, error) {
	var ids []model.PlayerID
	err := m.loop.Do(ctx, func() {
		for _, e := range m.cache.Entries() {
			if !e.Player.Ephemeral {
				ids = append(ids, e.ID)
			}
		}
	})
	return ids, err
}

// persist saves the cached record for id while holding its write slot. The
// copy is taken inside the slot after prepare has run on the cached record.
// It reports false without error when the player is no longer cached.
func (m *Manager) persist(ctx context.Context, id model.PlayerID, prepare func(p *model.Player)) (bool, error) {
	release := m.writes.acquire(id)
	defer release()

	var snapshot *model.Player
	err := m.loop.Do(ctx, func() {
		p, ok := m.cache.Get(id)
		if !ok || p.Ephemeral {
			return
		}
		if prepare != nil {
			prepare(p)
		}
		snapshot = p.Clone()
	})
	if err != nil || snapshot == nil {
		return false, err
	}

	if err := m.store.SavePlayer(ctx, snapshot); err != nil {
		return false, fmt.Errorf("%w: %s: %w", model.ErrPersistenceFailure, id, err)
	}
	return true, nil
}

// OnlineIDs returns the set of players with at least one live connection
func (m *Manager) OnlineIDs(ctx context.Context) (map[model.PlayerID]bool, error) {
	ids := make(map[model.PlayerID]bool)
	err := m.loop.Do(ctx, func() {
		for id, n := range m.conns {
			if n > 0 {
				ids[id] = true
			}
		}
	})
	return ids, err
}

// Snapshot returns a copy of a cached player
func (m *Manager) Snapshot(ctx context.Context, id model.PlayerID) (*model.Player, bool, error) {
	var p *model.Player
	err := m.loop.Do(ctx, func() {
		if cached, ok := m.cache.Get(id); ok {
			p = cached.Clone()
		}
	})
	return p, p != nil, err
}

// onlineCount must be called from inside the loop
func (m *Manager) onlineCount() int {
	n := 0
	for _, c := range m.conns {
		if c > 0 {
			n++
		}
	}
	return n
}

// Stats reports the size of the live set
func (m *Manager) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := m.loop.Do(ctx, func() {
		s.Online = m.onlineCount()
		s.Cached = m.cache.Len()
	})
	return s, err
}

// load reads a player from the store. Not-found yields a fresh record; any
// other failure yields a fresh ephemeral record that will never be saved.
func (m *Manager) load(ctx context.Context, id model.PlayerID) *model.Player {
	p, err := m.store.LoadPlayer(ctx, id)
	switch {
	case err == nil:
		return p
	case errors.Is(err, model.ErrPlayerNotFound):
		return model.NewPlayer(id, m.clock.Now())
	default:
		m.logger.Error("failed to load player, continuing with ephemeral state",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		p = model.NewPlayer(id, m.clock.Now())
		p.Ephemeral = true
		return p
	}
}

func (m *Manager) save(ctx context.Context, p *model.Player) {
	if p.Ephemeral {
		return
	}
	if err := m.store.SavePlayer(ctx, p); err != nil {
		m.logger.Error("failed to save player",
			slog.String("player_id", string(p.ID)),
			slog.String("error", fmt.Errorf("%w: %w", model.ErrPersistenceFailure, err).Error()))
	}
}

// rank returns the player's 1-based position, or total+1 when the store has
// no record for them. Errors degrade to 0.
func (m *Manager) rank(ctx context.Context, id model.PlayerID) int {
	pos, total, err := m.store.Rank(ctx, id)
	if err != nil {
		m.logger.Warn("failed to compute rank",
			slog.String("player_id", string(id)),
			slog.String("error", err.Error()))
		return 0
	}
	if pos == 0 {
		return total + 1
	}
	return pos
}

func payloads(earned []achievement.Achievement) []model.AchievementPayload {
	if len(earned) == 0 {
		return nil
	}
	out := make([]model.AchievementPayload, len(earned))
	for i, a := range earned {
		out[i] = a.Payload()
	}
	return out
}
