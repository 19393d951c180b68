package catalog

import (
	"fmt"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/mcoot/idlecoins/internal/model"
)

// Catalog is the static, ordered table of upgrade definitions
type Catalog struct {
	upgrades []model.UpgradeDef
	byID     map[string]int
}

// file is the on-disk YAML shape of a catalog
type file struct {
	Upgrades []model.UpgradeDef `yaml:"upgrades"`
}

// New builds a catalog from definitions, rejecting inconsistent tables
func New(defs []model.UpgradeDef) (*Catalog, error) {
	c := &Catalog{
		upgrades: slices.Clone(defs),
		byID:     make(map[string]int, len(defs)),
	}
	for i, u := range c.upgrades {
		if u.ID == "" {
			return nil, fmt.Errorf("upgrade %d: empty id", i)
		}
		if _, dup := c.byID[u.ID]; dup {
			return nil, fmt.Errorf("upgrade %q: duplicate id", u.ID)
		}
		if u.Cost < 0 || u.CPS < 0 || u.MaxOwned < 0 {
			return nil, fmt.Errorf("upgrade %q: negative cost, cps or max_owned", u.ID)
		}
		switch u.Type {
		case model.UpgradeGenerator:
		case model.UpgradeMultiplier:
			if u.Multiplier <= 0 {
				return nil, fmt.Errorf("upgrade %q: multiplier must be positive", u.ID)
			}
		case model.UpgradeSpecial:
			if u.Effect == model.EffectGoldenClick && (u.Chance <= 0 || u.Chance >= 1) {
				return nil, fmt.Errorf("upgrade %q: chance must be in (0, 1)", u.ID)
			}
		default:
			return nil, fmt.Errorf("upgrade %q: unknown type %q", u.ID, u.Type)
		}
		c.byID[u.ID] = i
	}
	for _, u := range c.upgrades {
		for _, req := range u.Requires {
			if _, ok := c.byID[req]; !ok {
				return nil, fmt.Errorf("upgrade %q: requires unknown upgrade %q", u.ID, req)
			}
		}
	}
	return c, nil
}

// Default returns the built-in catalog
func Default() *Catalog {
	c, err := New(defaultUpgrades)
	if err != nil {
		panic(fmt.Sprintf("built-in catalog is invalid: %v", err))
	}
	return c
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var f file
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	if len(f.Upgrades) == 0 {
		return nil, fmt.Errorf("catalog %s: no upgrades defined", path)
	}
	return New(f.Upgrades)
}

// Get returns the upgrade with the given id
func (c *Catalog) Get(id string) (model.UpgradeDef, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.UpgradeDef{}, false
	}
	return c.upgrades[i], true
}

// All returns every upgrade in catalog order
func (c *Catalog) All() []model.UpgradeDef {
	return slices.Clone(c.upgrades)
}

// Available returns, in catalog order, the upgrades purchasable by a player
// owning the given ids: not yet owned up to their cap, with every
// requirement owned.
func (c *Catalog) Available(owned []string) []model.UpgradeDef {
	counts := make(map[string]int, len(owned))
	for _, id := range owned {
		counts[id]++
	}

	available := make([]model.UpgradeDef, 0, len(c.upgrades))
	for _, u := range c.upgrades {
		if counts[u.ID] >= u.OwnershipLimit() {
			continue
		}
		if !requirementsMet(u, counts) {
			continue
		}
		available = append(available, u)
	}
	return available
}

func requirementsMet(u model.UpgradeDef, counts map[string]int) bool {
	for _, req := range u.Requires {
		if counts[req] == 0 {
			return false
		}
	}
	return true
}
