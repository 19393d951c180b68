package redis

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage"
	"github.com/mcoot/idlecoins/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.StoreSuite
	mini *miniredis.Miniredis
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	s.NewStore = func() storage.Store {
		client := redis.NewClient(&redis.Options{
			Addr: s.mini.Addr(),
		})
		cfg := DefaultConfig()
		// Small batches exercise paging in filtered leaderboard queries
		cfg.ScanBatch = 2
		return NewWithClient(client, cfg)
	}
	s.SetupStore()
}

func (s *StorageSuite) TestSaveWritesIndex() {
	p := model.NewPlayer("player-1", s.Now)
	p.Money = 42
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, p))

	s.True(s.mini.Exists(playerKey("player-1")))
	score, err := s.mini.ZScore(moneyIndexKey(), "player-1")
	s.Require().NoError(err)
	s.Equal(-42.0, score)
}

func (s *StorageSuite) TestFilteredTopPagesPastOldPlayers() {
	for i, id := range []model.PlayerID{"old-1", "old-2", "old-3", "old-4", "old-5"} {
		p := model.NewPlayer(id, s.Now.Add(-30*24*time.Hour))
		p.Money = float64(1000 + i)
		s.Require().NoError(s.Store.SavePlayer(s.Ctx, p))
	}
	fresh := model.NewPlayer("fresh", s.Now)
	fresh.Money = 1
	s.Require().NoError(s.Store.SavePlayer(s.Ctx, fresh))

	top, err := s.Store.TopPlayers(s.Ctx, 1, model.TimeFilterDaily.Since(s.Now))
	s.Require().NoError(err)
	s.Require().Len(top, 1)
	s.Equal(model.PlayerID("fresh"), top[0].ID)
}

func (s *StorageSuite) TestDeleteStaleRemovesOrphanIndexEntries() {
	_, err := s.mini.ZAdd(moneyIndexKey(), indexScore(1), "ghost")
	s.Require().NoError(err)

	deleted, err := s.Store.DeleteStale(s.Ctx, storage.StaleCriteria{LastSeenBefore: s.Now, MoneyBelow: 100})
	s.Require().NoError(err)
	s.Equal(0, deleted)

	_, total, err := s.Store.Rank(s.Ctx, "ghost")
	s.Require().NoError(err)
	s.Equal(0, total)
}

func (s *StorageSuite) TestLoadCorruptRecord() {
	s.Require().NoError(s.mini.Set(playerKey("bad"), "{not json"))

	_, err := s.Store.LoadPlayer(s.Ctx, "bad")
	s.Error(err)
	s.NotErrorIs(err, model.ErrPlayerNotFound)
}
