package memory

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/storage"
	"github.com/mcoot/idlecoins/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.StoreSuite
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.NewStore = func() storage.Store { return New() }
	s.SetupStore()
}

func (s *StorageSuite) TestCount() {
	mem := s.Store.(*Storage)
	s.Equal(0, mem.Count())

	s.Require().NoError(mem.SavePlayer(s.Ctx, model.NewPlayer("a", s.Now)))
	s.Equal(1, mem.Count())
}

// Equal money is broken by id so rankings are stable
func (s *StorageSuite) TestTieBreakByID() {
	for _, id := range []model.PlayerID{"b", "a", "c"} {
		s.Require().NoError(s.Store.SavePlayer(s.Ctx, model.NewPlayer(id, s.Now)))
	}

	pos, _, err := s.Store.Rank(s.Ctx, "a")
	s.Require().NoError(err)
	s.Equal(1, pos)
}
