package model

// EventType identifies a message on the realtime channel
type EventType string

const (
	// Client to server
	EventClick          EventType = "click"
	EventBuyUpgrade     EventType = "buyUpgrade"
	EventGetUpgrades    EventType = "getUpgrades"
	EventGetLeaderboard EventType = "getLeaderboard"

	// Server to client
	EventAssignID          EventType = "assignId"
	EventInit              EventType = "init"
	EventOfflineEarnings   EventType = "offlineEarnings"
	EventClickFeedback     EventType = "clickFeedback"
	EventSpecialEffect     EventType = "specialEffect"
	EventUpgradeBought     EventType = "upgradeBought"
	EventUpgradesList      EventType = "upgradesList"
	EventUpdateAll         EventType = "updateAll"
	EventLeaderboardUpdate EventType = "leaderboardUpdate"
	EventMyRank            EventType = "myRank"
	EventAchievement       EventType = "achievement"
	EventPlayersOnline     EventType = "playersOnline"
	EventError             EventType = "error"
)

// SpecialEffectGoldenClick tags a golden click in a special effect event
const SpecialEffectGoldenClick = "goldenClick"

// InitPayload is the full snapshot sent once a connection is live
type InitPayload struct {
	Money             float64      `json:"money"`
	CPS               float64      `json:"cps"`
	Upgrades          []string     `json:"upgrades"`
	AvailableUpgrades []UpgradeDef `json:"availableUpgrades"`
	Stats             InitStats    `json:"stats"`
}

// InitStats carries the player's counters and computed rank
type InitStats struct {
	TotalClicks  int64    `json:"totalClicks"`
	Playtime     int64    `json:"playtime"`
	Achievements []string `json:"achievements"`
	Rank         int      `json:"rank"`
}

// OfflineEarningsPayload reports money credited for time spent offline
type OfflineEarningsPayload struct {
	Earnings    float64 `json:"earnings"`
	TimeOffline int64   `json:"timeOffline"` // milliseconds, after capping
	Capped      bool    `json:"capped"`
}

// ClickFeedbackPayload reports the value of a single click
type ClickFeedbackPayload struct {
	Value float64 `json:"value"`
}

// SpecialEffectPayload announces a bonus effect such as a golden click
type SpecialEffectPayload struct {
	Type  string  `json:"type"`
	Value float64 `json:"value"`
}

// UpgradeBoughtPayload confirms a purchase
type UpgradeBoughtPayload struct {
	UpgradeID         string       `json:"upgradeId"`
	UpgradeName       string       `json:"upgradeName"`
	NewMoney          float64      `json:"newMoney"`
	NewCPS            float64      `json:"newCPS"`
	AvailableUpgrades []UpgradeDef `json:"availableUpgrades"`
}

// AchievementPayload announces a newly earned achievement
type AchievementPayload struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// LeaderboardRequest is the payload of a getLeaderboard event
type LeaderboardRequest struct {
	Time TimeFilter `json:"time"`
}
