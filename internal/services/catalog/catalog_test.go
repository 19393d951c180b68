package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/idlecoins/internal/model"
)

func ids(defs []model.UpgradeDef) []string {
	out := make([]string, len(defs))
	for i, d := range defs {
		out[i] = d.ID
	}
	return out
}

func TestDefaultCatalogIsValid(t *testing.T) {
	c := Default()
	assert.Len(t, c.All(), 7)

	u, ok := c.Get("clicker")
	require.True(t, ok)
	assert.Equal(t, 5, u.OwnershipLimit())

	_, ok = c.Get("nope")
	assert.False(t, ok)
}

func TestAvailableForNewPlayer(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"clicker", "bankAccount", "goldenClick"}, ids(c.Available(nil)))
}

func TestAvailableWireFormat(t *testing.T) {
	data, err := json.MarshalIndent(Default().Available(nil), "", "  ")
	require.NoError(t, err)

	g := goldie.New(t)
	g.Assert(t, "available_new_player", data)
}

func TestAvailableRespectsMaxOwned(t *testing.T) {
	c := Default()

	owned := []string{"clicker", "clicker", "clicker", "clicker"}
	assert.Contains(t, ids(c.Available(owned)), "clicker")

	owned = append(owned, "clicker")
	assert.NotContains(t, ids(c.Available(owned)), "clicker")
}

func TestAvailableRequiresPrerequisites(t *testing.T) {
	c := Default()

	available := ids(c.Available([]string{"clicker"}))
	assert.Contains(t, available, "superClicker")
	assert.NotContains(t, available, "megaClicker")
	assert.NotContains(t, available, "clickMultiplier")

	available = ids(c.Available([]string{"clicker", "superClicker"}))
	assert.Contains(t, available, "megaClicker")
	assert.Contains(t, available, "clickMultiplier")
	assert.NotContains(t, available, "superClicker")
	assert.NotContains(t, available, "quantumClicker")
}

// Every returned upgrade is below its cap and has its requirements owned,
// for every prefix of a realistic purchase sequence.
func TestAvailableInvariants(t *testing.T) {
	c := Default()
	sequence := []string{"clicker", "clicker", "superClicker", "goldenClick", "clicker",
		"megaClicker", "clickMultiplier", "clicker", "clicker", "bankAccount", "quantumClicker"}

	for n := 0; n <= len(sequence); n++ {
		owned := sequence[:n]
		counts := map[string]int{}
		for _, id := range owned {
			counts[id]++
		}
		for _, u := range c.Available(owned) {
			assert.Less(t, counts[u.ID], u.OwnershipLimit(), "prefix %d offers capped %s", n, u.ID)
			for _, req := range u.Requires {
				assert.Positive(t, counts[req], "prefix %d offers %s without %s", n, u.ID, req)
			}
		}
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	tests := []struct {
		name string
		defs []model.UpgradeDef
	}{
		{"empty id", []model.UpgradeDef{{Type: model.UpgradeGenerator}}},
		{"duplicate id", []model.UpgradeDef{
			{ID: "a", Type: model.UpgradeGenerator},
			{ID: "a", Type: model.UpgradeGenerator},
		}},
		{"unknown type", []model.UpgradeDef{{ID: "a", Type: "magic"}}},
		{"unknown requirement", []model.UpgradeDef{{ID: "a", Type: model.UpgradeGenerator, Requires: []string{"b"}}}},
		{"zero multiplier", []model.UpgradeDef{{ID: "a", Type: model.UpgradeMultiplier}}},
		{"negative cost", []model.UpgradeDef{{ID: "a", Type: model.UpgradeGenerator, Cost: -1}}},
		{"certain golden click", []model.UpgradeDef{{ID: "a", Type: model.UpgradeSpecial, Effect: model.EffectGoldenClick, Chance: 1}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.defs)
			assert.Error(t, err)
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	content := `upgrades:
  - id: miner
    name: Miner
    type: generator
    cost: 10
    cps: 2
    max_owned: 3
  - id: drill
    name: Drill
    type: multiplier
    cost: 50
    multiplier: 3
    requires: [miner]
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	c, err := LoadFile(path)
	require.NoError(t, err)

	miner, ok := c.Get("miner")
	require.True(t, ok)
	assert.Equal(t, 3, miner.MaxOwned)
	assert.Equal(t, 2.0, miner.CPS)

	drill, ok := c.Get("drill")
	require.True(t, ok)
	assert.Equal(t, []string{"miner"}, drill.Requires)
	assert.Equal(t, []string{"miner"}, ids(c.Available(nil)))
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
