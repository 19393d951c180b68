package leaderboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/idlecoins/internal/dependencies/mocks"
	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage/memory"
	"github.com/mcoot/idlecoins/internal/testutil"
)

type fakeLive struct {
	online map[model.PlayerID]bool
	cached map[model.PlayerID]*model.Player
	err    error
}

func (f *fakeLive) OnlineIDs(ctx context.Context) (map[model.PlayerID]bool, error) {
	return f.online, f.err
}

func (f *fakeLive) Snapshot(ctx context.Context, id model.PlayerID) (*model.Player, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	p, ok := f.cached[id]
	return p, ok, nil
}

type BuilderSuite struct {
	suite.Suite
	storage *memory.Storage
	live    *fakeLive
	clock   *mocks.MockClock
	builder *Builder
	ctx     context.Context
}

func TestBuilderSuite(t *testing.T) {
	suite.Run(t, new(BuilderSuite))
}

func (s *BuilderSuite) SetupTest() {
	s.storage = memory.New()
	s.live = &fakeLive{
		online: map[model.PlayerID]bool{},
		cached: map[model.PlayerID]*model.Player{},
	}
	s.clock = mocks.NewMockClock(time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC))
	s.builder = NewBuilder(s.storage, s.live, s.clock, testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *BuilderSuite) save(id string, money float64, created time.Time) *model.Player {
	p := model.NewPlayer(model.PlayerID(id), created)
	p.Money = money
	s.Require().NoError(s.storage.SavePlayer(s.ctx, p))
	return p
}

func (s *BuilderSuite) TestTopOrdersByMoney() {
	now := s.clock.Now()
	s.save("alice", 300, now)
	s.save("bob", 100, now)
	s.save("carol", 200, now)

	entries, err := s.builder.Top(s.ctx, DefaultSize, model.TimeFilterAll)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)

	s.Equal(model.PlayerID("alice"), entries[0].ID)
	s.Equal(300.0, entries[0].Money)
	s.Equal(1, entries[0].Rank)
	s.Equal(model.PlayerID("carol"), entries[1].ID)
	s.Equal(200.0, entries[1].Money)
	s.Equal(2, entries[1].Rank)
	s.Equal(model.PlayerID("bob"), entries[2].ID)
	s.Equal(100.0, entries[2].Money)
	s.Equal(3, entries[2].Rank)
}

func (s *BuilderSuite) TestTopAnnotatesPresenceAndName() {
	s.save("alice", 10, s.clock.Now())
	s.live.online["alice"] = true

	entries, err := s.builder.Top(s.ctx, DefaultSize, model.TimeFilterAll)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.True(entries[0].IsOnline)
	s.Equal(DisplayName("alice"), entries[0].DisplayName)
	s.NotNil(entries[0].Upgrades)
}

func (s *BuilderSuite) TestTopToleratesPresenceFailure() {
	s.save("alice", 10, s.clock.Now())
	s.live.err = errors.New("loop stopped")

	entries, err := s.builder.Top(s.ctx, DefaultSize, model.TimeFilterAll)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.False(entries[0].IsOnline)
}

func (s *BuilderSuite) TestTopTimeFilters() {
	now := s.clock.Now()
	s.save("today", 1, now.Add(-time.Hour))
	s.save("thisweek", 2, now.Add(-3*24*time.Hour))
	s.save("ancient", 3, now.Add(-30*24*time.Hour))

	all, err := s.builder.Top(s.ctx, DefaultSize, model.TimeFilterAll)
	s.Require().NoError(err)
	s.Len(all, 3)

	weekly, err := s.builder.Top(s.ctx, DefaultSize, model.TimeFilterWeekly)
	s.Require().NoError(err)
	s.Require().Len(weekly, 2)
	s.Equal(model.PlayerID("thisweek"), weekly[0].ID)

	daily, err := s.builder.Top(s.ctx, DefaultSize, model.TimeFilterDaily)
	s.Require().NoError(err)
	s.Require().Len(daily, 1)
	s.Equal(model.PlayerID("today"), daily[0].ID)
}

func (s *BuilderSuite) TestTopLimit() {
	for i, id := range []string{"a", "b", "c", "d"} {
		s.save(id, float64(i), s.clock.Now())
	}
	entries, err := s.builder.Top(s.ctx, 2, model.TimeFilterAll)
	s.Require().NoError(err)
	s.Len(entries, 2)
}

func (s *BuilderSuite) TestRankPrefersCachedFields() {
	s.save("alice", 300, s.clock.Now())
	s.save("bob", 100, s.clock.Now())

	live := model.NewPlayer("bob", s.clock.Now())
	live.Money = 150
	live.TotalClicks = 7
	live.Upgrades = []string{"clicker"}
	s.live.cached["bob"] = live

	info, err := s.builder.Rank(s.ctx, "bob")
	s.Require().NoError(err)
	s.Equal(2, info.Rank)
	s.Equal(2, info.Total)
	s.Equal(150.0, info.Money)
	s.Equal(int64(7), info.TotalClicks)
	s.Equal([]string{"clicker"}, info.Upgrades)
}

func (s *BuilderSuite) TestRankFallsBackToStore() {
	s.save("alice", 300, s.clock.Now())

	info, err := s.builder.Rank(s.ctx, "alice")
	s.Require().NoError(err)
	s.Equal(1, info.Rank)
	s.Equal(300.0, info.Money)
}

func (s *BuilderSuite) TestRankUnknownPlayerIsLast() {
	s.save("alice", 300, s.clock.Now())
	s.save("bob", 100, s.clock.Now())

	info, err := s.builder.Rank(s.ctx, "nobody")
	s.Require().NoError(err)
	s.Equal(3, info.Rank)
	s.Equal(2, info.Total)
	s.Equal(0.0, info.Money)
	s.Empty(info.Upgrades)
}

func (s *BuilderSuite) TestDisplayNameIsStable() {
	first := DisplayName("abcdef-123")
	s.Equal(first, DisplayName("abcdef-123"))
	s.Contains(displayNames, first[:len(first)-4])
	s.Equal("abcd", first[len(first)-4:])

	short := DisplayName("xy")
	s.Equal("xy", short[len(short)-2:])
}
