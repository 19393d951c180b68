package model

import "time"

// TimeFilter restricts a leaderboard to players created within a window
type TimeFilter string

const (
	TimeFilterAll    TimeFilter = "all"
	TimeFilterDaily  TimeFilter = "daily"
	TimeFilterWeekly TimeFilter = "weekly"
)

// ParseTimeFilter maps a client string to a filter; unknown or empty means all
func ParseTimeFilter(s string) TimeFilter {
	switch TimeFilter(s) {
	case TimeFilterDaily:
		return TimeFilterDaily
	case TimeFilterWeekly:
		return TimeFilterWeekly
	default:
		return TimeFilterAll
	}
}

// Since returns the earliest creation time admitted by the filter.
// The zero time admits every record.
func (f TimeFilter) Since(now time.Time) time.Time {
	switch f {
	case TimeFilterDaily:
		return now.Add(-24 * time.Hour)
	case TimeFilterWeekly:
		return now.Add(-7 * 24 * time.Hour)
	default:
		return time.Time{}
	}
}

// LeaderboardEntry is one ranked row of a top-N query
type LeaderboardEntry struct {
	Rank         int      `json:"rank"`
	ID           PlayerID `json:"id"`
	DisplayName  string   `json:"displayName"`
	Money        float64  `json:"money"`
	CPS          float64  `json:"cps"`
	Upgrades     []string `json:"upgrades"`
	Playtime     int64    `json:"playtime"`
	TotalClicks  int64    `json:"totalClicks"`
	IsOnline     bool     `json:"isOnline"`
	Achievements int      `json:"achievements"`
}

// RankInfo is a single player's position among all stored players
type RankInfo struct {
	Rank        int      `json:"rank"`
	Total       int      `json:"total"`
	Money       float64  `json:"money"`
	CPS         float64  `json:"cps"`
	Upgrades    []string `json:"upgrades"`
	TotalClicks int64    `json:"totalClicks"`
	Playtime    int64    `json:"playtime"`
}
