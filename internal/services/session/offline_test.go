package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mcoot/idlecoins/internal/model"
)

func TestOfflineEarnings(t *testing.T) {
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		cps        float64
		cpsMult    float64
		offMult    float64
		away       time.Duration
		neverSeen  bool
		wantOK     bool
		wantEarned float64
		wantCapped bool
	}{
		{name: "never seen", cps: 5, neverSeen: true},
		{name: "clock went backwards", cps: 5, away: -time.Minute},
		{name: "under cap", cps: 2, away: time.Hour, wantOK: true, wantEarned: 7200},
		{name: "over cap", cps: 1, away: 48 * time.Hour, wantOK: true, wantEarned: 86400, wantCapped: true},
		{name: "cps multiplier", cps: 2, cpsMult: 3, away: 10 * time.Second, wantOK: true, wantEarned: 60},
		{name: "offline multiplier widens cap", cps: 1, offMult: 2, away: 30 * time.Hour, wantOK: true, wantEarned: 2 * 30 * 3600},
		{name: "zero income", cps: 0, away: time.Hour, wantOK: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := model.NewPlayer("p", now)
			p.CPS = tt.cps
			if tt.cpsMult > 0 {
				p.CPSMultiplier = tt.cpsMult
			}
			if tt.offMult > 0 {
				p.OfflineMultiplier = tt.offMult
			}
			if !tt.neverSeen {
				p.LastSeen = now.Add(-tt.away)
			}

			got, ok := OfflineEarnings(p, now, DefaultOfflineCap)
			assert.Equal(t, tt.wantOK, ok)
			assert.InDelta(t, tt.wantEarned, got.Earnings, 1e-9)
			assert.Equal(t, tt.wantCapped, got.Capped)
		})
	}
}

func TestValidID(t *testing.T) {
	tests := []struct {
		id   string
		want bool
	}{
		{"player-1", true},
		{"c0ffee-5e55-4d1e", true},
		{"", false},
		{"has space", false},
		{"tab\there", false},
		{"bell\a", false},
		{string([]byte{0xff, 0xfe}), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ValidID(tt.id, DefaultMaxIDLength), "id %q", tt.id)
	}
	assert.False(t, ValidID("abcdef", 5))
}
