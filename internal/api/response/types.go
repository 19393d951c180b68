package response

import (
	"github.com/mcoot/idlecoins/internal/model"
)

// Leaderboard is the response for the leaderboard endpoint
type Leaderboard struct {
	Time    model.TimeFilter         `json:"time"`
	Entries []model.LeaderboardEntry `json:"entries"`
}

// Rank is a single player's standing
type Rank struct {
	ID model.PlayerID `json:"id"`
	model.RankInfo
}

// RankFromModel attaches the player id to a rank lookup
func RankFromModel(id model.PlayerID, info *model.RankInfo) Rank {
	return Rank{ID: id, RankInfo: *info}
}

// Stats reports live server counters
type Stats struct {
	Online  int `json:"online"`
	Cached  int `json:"cached"`
	Clients int `json:"clients"`
}

// Health is the response for the health endpoint
type Health struct {
	Status string `json:"status"`
}
