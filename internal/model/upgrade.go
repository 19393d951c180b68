package model

// UpgradeType selects how a purchased upgrade changes player state
type UpgradeType string

const (
	UpgradeGenerator  UpgradeType = "generator"
	UpgradeMultiplier UpgradeType = "multiplier"
	UpgradeSpecial    UpgradeType = "special"
)

// EffectGoldenClick is the special effect that raises golden-click chance
const EffectGoldenClick = "goldenClick"

// UpgradeDef is an immutable catalog entry
type UpgradeDef struct {
	ID          string      `json:"id" yaml:"id"`
	Name        string      `json:"name" yaml:"name"`
	Description string      `json:"description,omitempty" yaml:"description"`
	Tier        int         `json:"tier,omitempty" yaml:"tier"`
	Type        UpgradeType `json:"type" yaml:"type"`
	Cost        float64     `json:"cost" yaml:"cost"`
	CPS         float64     `json:"cps" yaml:"cps"`
	Requires    []string    `json:"requires,omitempty" yaml:"requires"`
	Unlocks     []string    `json:"unlocks,omitempty" yaml:"unlocks"`

	// MaxOwned caps repeat purchases. Zero means unset, which allows one.
	MaxOwned int `json:"maxOwned,omitempty" yaml:"max_owned"`

	Multiplier float64 `json:"multiplier,omitempty" yaml:"multiplier"`
	Effect     string  `json:"effect,omitempty" yaml:"effect"`
	Chance     float64 `json:"chance,omitempty" yaml:"chance"`
}

// OwnershipLimit returns the effective cap on purchases of this upgrade
func (u *UpgradeDef) OwnershipLimit() int {
	if u.MaxOwned > 0 {
		return u.MaxOwned
	}
	return 1
}
