package catalog

import "github.com/mcoot/idlecoins/internal/model"

var defaultUpgrades = []model.UpgradeDef{
	{
		ID:          "clicker",
		Name:        "Auto Clicker",
		Description: "A simple automatic clicking device",
		Tier:        1,
		Type:        model.UpgradeGenerator,
		Cost:        20,
		CPS:         1,
		Unlocks:     []string{"superClicker"},
		MaxOwned:    5,
	},
	{
		ID:          "superClicker",
		Name:        "Super Auto Clicker",
		Description: "A more powerful automated clicking device",
		Tier:        2,
		Type:        model.UpgradeGenerator,
		Cost:        200,
		CPS:         5,
		Requires:    []string{"clicker"},
		Unlocks:     []string{"megaClicker", "clickMultiplier"},
	},
	{
		ID:          "megaClicker",
		Name:        "Mega Auto Clicker",
		Description: "An industrial-grade clicking machine",
		Tier:        3,
		Type:        model.UpgradeGenerator,
		Cost:        1000,
		CPS:         20,
		Requires:    []string{"superClicker"},
		Unlocks:     []string{"quantumClicker"},
	},
	{
		ID:          "clickMultiplier",
		Name:        "Click Multiplier",
		Description: "Doubles the value of each manual click",
		Tier:        2,
		Type:        model.UpgradeMultiplier,
		Cost:        500,
		Requires:    []string{"superClicker"},
		Multiplier:  2,
	},
	{
		ID:          "quantumClicker",
		Name:        "Quantum Clicker",
		Description: "Harnesses quantum fluctuations to generate coins",
		Tier:        4,
		Type:        model.UpgradeGenerator,
		Cost:        10000,
		CPS:         100,
		Requires:    []string{"megaClicker"},
	},
	{
		ID:          "bankAccount",
		Name:        "Bank Account",
		Description: "Earn interest on your coins",
		Tier:        3,
		Type:        model.UpgradeGenerator,
		Cost:        5000,
		CPS:         10,
	},
	{
		ID:          "goldenClick",
		Name:        "Golden Click",
		Description: "Chance for golden clicks worth 10x normal",
		Tier:        2,
		Type:        model.UpgradeSpecial,
		Cost:        1000,
		Effect:      model.EffectGoldenClick,
		Chance:      0.05,
	},
}
