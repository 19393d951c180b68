package purchase

import (
	"math"

	"github.com/mcoot/idlecoins/internal/model"
	"github.com/mcoot/idlecoins/internal/services/catalog"
)

// DefaultMaxGoldenClickChance keeps golden-click probability below certainty
const DefaultMaxGoldenClickChance = 0.95

// Result describes a successful purchase
type Result struct {
	Upgrade           model.UpgradeDef
	NewMoney          float64
	NewCPS            float64
	AvailableUpgrades []model.UpgradeDef
}

// Service validates buy requests and applies upgrade effects
type Service struct {
	catalog        *catalog.Catalog
	maxGoldenClick float64
}

// New creates a purchase Service. A non-positive maxGoldenClick uses the default.
func New(cat *catalog.Catalog, maxGoldenClick float64) *Service {
	if maxGoldenClick <= 0 || maxGoldenClick >= 1 {
		maxGoldenClick = DefaultMaxGoldenClickChance
	}
	return &Service{
		catalog:        cat,
		maxGoldenClick: maxGoldenClick,
	}
}

// Validate checks a buy request against the catalog and the player's state.
// Checks run in a fixed order and the first failure is returned.
func (s *Service) Validate(p *model.Player, upgradeID string) (model.UpgradeDef, error) {
	if p == nil {
		return model.UpgradeDef{}, model.ErrPlayerNotFound
	}

	u, ok := s.catalog.Get(upgradeID)
	if !ok {
		return model.UpgradeDef{}, model.ErrUnknownUpgrade
	}

	var missing []string
	for _, req := range u.Requires {
		if p.OwnedCount(req) == 0 {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return u, &model.MissingRequirementsError{Missing: missing}
	}

	owned := p.OwnedCount(upgradeID)
	if u.MaxOwned > 0 && owned >= u.MaxOwned {
		return u, &model.OwnershipLimitError{UpgradeID: u.ID, Limit: u.MaxOwned}
	}

	if p.Money < u.Cost {
		return u, model.ErrInsufficientFunds
	}

	if u.MaxOwned == 0 && owned > 0 {
		return u, model.ErrAlreadyOwned
	}

	return u, nil
}

// Buy validates and, only if every check passes, applies the upgrade to p.
// A rejected purchase leaves p untouched.
func (s *Service) Buy(p *model.Player, upgradeID string) (*Result, error) {
	u, err := s.Validate(p, upgradeID)
	if err != nil {
		return nil, err
	}

	p.Money -= u.Cost
	p.Upgrades = append(p.Upgrades, u.ID)

	switch u.Type {
	case model.UpgradeGenerator:
		p.CPS += u.CPS
	case model.UpgradeMultiplier:
		p.ClickMultiplier *= u.Multiplier
	case model.UpgradeSpecial:
		if u.Effect == model.EffectGoldenClick {
			p.GoldenClickChance = math.Min(p.GoldenClickChance+u.Chance, s.maxGoldenClick)
		}
	}

	return &Result{
		Upgrade:           u,
		NewMoney:          p.Money,
		NewCPS:            p.CPS,
		AvailableUpgrades: s.catalog.Available(p.Upgrades),
	}, nil
}

// Available returns the upgrades the player may currently buy
func (s *Service) Available(p *model.Player) []model.UpgradeDef {
	return s.catalog.Available(p.Upgrades)
}
