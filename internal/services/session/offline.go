package session

import (
	"time"

	"github.com/mcoot/idlecoins/internal/model"
)

// DefaultOfflineCap bounds how much offline time earns money
const DefaultOfflineCap = 24 * time.Hour

// OfflineEarnings computes what a returning player is owed for the time since
// lastSeen. The cap scales with the player's offline multiplier, and so do
// the earnings. It returns false when there is no prior session or no time
// has passed.
func OfflineEarnings(p *model.Player, now time.Time, baseCap time.Duration) (model.OfflineEarningsPayload, bool) {
	if p.LastSeen.IsZero() {
		return model.OfflineEarningsPayload{}, false
	}
	elapsed := now.Sub(p.LastSeen)
	if elapsed <= 0 {
		return model.OfflineEarningsPayload{}, false
	}

	limit := time.Duration(float64(baseCap) * p.OfflineMultiplier)
	capped := elapsed > limit
	if capped {
		elapsed = limit
	}

	return model.OfflineEarningsPayload{
		Earnings:    p.IncomeRate() * elapsed.Seconds() * p.OfflineMultiplier,
		TimeOffline: elapsed.Milliseconds(),
		Capped:      capped,
	}, true
}
