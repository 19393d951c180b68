// Package storagetest holds the behavior every storage.Store must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage"
)

// StoreSuite runs the shared store contract. Backends embed it and set
// NewStore in their own SetupTest before calling SetupStore.
type StoreSuite struct {
	suite.Suite
	NewStore func() storage.Store

	Store storage.Store
	Ctx   context.Context
	Now   time.Time
}

// SetupStore creates a fresh store for the current test
func (s *StoreSuite) SetupStore() {
	s.Store = s.NewStore()
	s.Ctx = context.Background()
	s.Now = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
}

// TearDownTest closes the store
func (s *StoreSuite) TearDownTest() {
	if s.Store != nil {
		_ = s.Store.Close()
	}
}

func (s *StoreSuite) player(id string, money float64) *model.Player {
	p := model.NewPlayer(model.PlayerID(id), s.Now)
	p.Money = money
	p.LastSeen = s.Now
	return p
}

func (s *StoreSuite) save(players ...*model.Player) {
	for _, p := range players {
		s.Require().NoError(s.Store.SavePlayer(s.Ctx, p))
	}
}

func (s *StoreSuite) TestSaveAndLoadPlayer() {
	p := s.player("player-1", 42.5)
	p.CPS = 3
	p.ClickMultiplier = 2
	p.Upgrades = []string{"clicker", "clicker", "superClicker"}
	p.Achievements = []string{"firstUpgrade"}
	p.TotalClicks = 17
	p.Playtime = 600
	s.save(p)

	got, err := s.Store.LoadPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(p.ID, got.ID)
	s.Equal(42.5, got.Money)
	s.Equal(3.0, got.CPS)
	s.Equal(2.0, got.ClickMultiplier)
	s.Equal(p.Upgrades, got.Upgrades)
	s.Equal(p.Achievements, got.Achievements)
	s.Equal(int64(17), got.TotalClicks)
	s.Equal(int64(600), got.Playtime)
	s.True(p.LastSeen.Equal(got.LastSeen))
	s.True(p.CreatedAt.Equal(got.CreatedAt))
}

func (s *StoreSuite) TestLoadPlayerNotFound() {
	_, err := s.Store.LoadPlayer(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPlayerNotFound)
}

func (s *StoreSuite) TestSaveIsUpsert() {
	s.save(s.player("player-1", 10))
	s.save(s.player("player-1", 20))

	got, err := s.Store.LoadPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(20.0, got.Money)

	_, total, err := s.Store.Rank(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(1, total)
}

func (s *StoreSuite) TestStoreDoesNotAliasCallerState() {
	p := s.player("player-1", 10)
	s.save(p)
	p.Money = 999
	p.Upgrades = append(p.Upgrades, "clicker")

	got, err := s.Store.LoadPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(10.0, got.Money)
	s.Empty(got.Upgrades)

	got.Money = 555
	again, err := s.Store.LoadPlayer(s.Ctx, "player-1")
	s.Require().NoError(err)
	s.Equal(10.0, again.Money)
}

func (s *StoreSuite) TestTopPlayersOrdersByMoney() {
	s.save(s.player("a", 300), s.player("b", 100), s.player("c", 200))

	top, err := s.Store.TopPlayers(s.Ctx, 10, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(top, 3)
	s.Equal([]float64{300, 200, 100}, []float64{top[0].Money, top[1].Money, top[2].Money})
}

func (s *StoreSuite) TestTopPlayersLimit() {
	s.save(s.player("a", 1), s.player("b", 2), s.player("c", 3), s.player("d", 4))

	top, err := s.Store.TopPlayers(s.Ctx, 2, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(top, 2)
	s.Equal(model.PlayerID("d"), top[0].ID)
	s.Equal(model.PlayerID("c"), top[1].ID)
}

func (s *StoreSuite) TestTopPlayersSinceFiltersByCreation() {
	old := s.player("old", 1000)
	old.CreatedAt = s.Now.Add(-10 * 24 * time.Hour)
	week := s.player("week", 500)
	week.CreatedAt = s.Now.Add(-3 * 24 * time.Hour)
	today := s.player("today", 100)
	today.CreatedAt = s.Now.Add(-time.Hour)
	s.save(old, week, today)

	daily, err := s.Store.TopPlayers(s.Ctx, 10, model.TimeFilterDaily.Since(s.Now))
	s.Require().NoError(err)
	s.Require().Len(daily, 1)
	s.Equal(model.PlayerID("today"), daily[0].ID)

	weekly, err := s.Store.TopPlayers(s.Ctx, 10, model.TimeFilterWeekly.Since(s.Now))
	s.Require().NoError(err)
	s.Require().Len(weekly, 2)
	s.Equal(model.PlayerID("week"), weekly[0].ID)
	s.Equal(model.PlayerID("today"), weekly[1].ID)
}

func (s *StoreSuite) TestTiesOrderByID() {
	s.save(s.player("carol", 100), s.player("alice", 100), s.player("bob", 100), s.player("dave", 200))

	top, err := s.Store.TopPlayers(s.Ctx, 10, time.Time{})
	s.Require().NoError(err)
	s.Require().Len(top, 4)
	ids := make([]model.PlayerID, len(top))
	for i, p := range top {
		ids[i] = p.ID
	}
	s.Equal([]model.PlayerID{"dave", "alice", "bob", "carol"}, ids)

	for want, id := range ids {
		pos, total, err := s.Store.Rank(s.Ctx, id)
		s.Require().NoError(err)
		s.Equal(want+1, pos, "rank of %s", id)
		s.Equal(4, total)
	}
}

func (s *StoreSuite) TestTopPlayersEmpty() {
	top, err := s.Store.TopPlayers(s.Ctx, 10, time.Time{})
	s.Require().NoError(err)
	s.Empty(top)
}

func (s *StoreSuite) TestRank() {
	s.save(s.player("a", 300), s.player("b", 100), s.player("c", 200))

	pos, total, err := s.Store.Rank(s.Ctx, "c")
	s.Require().NoError(err)
	s.Equal(2, pos)
	s.Equal(3, total)

	pos, total, err = s.Store.Rank(s.Ctx, "b")
	s.Require().NoError(err)
	s.Equal(3, pos)
	s.Equal(3, total)
}

func (s *StoreSuite) TestRankAbsentPlayer() {
	s.save(s.player("a", 300))

	pos, total, err := s.Store.Rank(s.Ctx, "ghost")
	s.Require().NoError(err)
	s.Equal(0, pos)
	s.Equal(1, total)
}

func (s *StoreSuite) TestRankFollowsSaves() {
	s.save(s.player("a", 300), s.player("b", 100))
	s.save(s.player("b", 500))

	pos, _, err := s.Store.Rank(s.Ctx, "b")
	s.Require().NoError(err)
	s.Equal(1, pos)
}

func (s *StoreSuite) TestDeleteStale() {
	cutoff := s.Now.Add(-7 * 24 * time.Hour)

	stale := s.player("stale", 5)
	stale.LastSeen = cutoff.Add(-time.Hour)

	rich := s.player("rich", 5000)
	rich.LastSeen = cutoff.Add(-time.Hour)

	recent := s.player("recent", 5)
	recent.LastSeen = cutoff.Add(time.Hour)

	online := s.player("online", 5)
	online.LastSeen = cutoff.Add(-time.Hour)
	online.IsOnline = true

	s.save(stale, rich, recent, online)

	deleted, err := s.Store.DeleteStale(s.Ctx, storage.StaleCriteria{LastSeenBefore: cutoff, MoneyBelow: 100})
	s.Require().NoError(err)
	s.Equal(1, deleted)

	_, err = s.Store.LoadPlayer(s.Ctx, "stale")
	s.ErrorIs(err, model.ErrPlayerNotFound)
	for _, id := range []model.PlayerID{"rich", "recent", "online"} {
		_, err := s.Store.LoadPlayer(s.Ctx, id)
		s.NoError(err, "player %s should survive cleanup", id)
	}

	_, total, err := s.Store.Rank(s.Ctx, "rich")
	s.Require().NoError(err)
	s.Equal(3, total)
}
