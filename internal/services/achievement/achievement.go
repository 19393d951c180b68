package achievement

import "github.com/mcoot/idlecoins/internal/model"

// Predicate reports whether a player satisfies an achievement.
// Predicates must be pure.
type Predicate func(p *model.Player) bool

// Achievement is one entry in the evaluation table
type Achievement struct {
	ID        string
	Name      string
	Predicate Predicate
}

// Default is the built-in achievement table, evaluated in order
var Default = []Achievement{
	{ID: "firstUpgrade", Name: "First Purchase", Predicate: func(p *model.Player) bool { return len(p.Upgrades) >= 1 }},
	{ID: "rich", Name: "Thousandaire", Predicate: func(p *model.Player) bool { return p.Money >= 1000 }},
	{ID: "clicker", Name: "Click Master", Predicate: func(p *model.Player) bool { return p.TotalClicks >= 100 }},
	{ID: "generator", Name: "Auto Generator", Predicate: func(p *model.Player) bool { return p.CPS >= 10 }},
}

// Evaluator checks a fixed achievement table against player state
type Evaluator struct {
	table []Achievement
}

// NewEvaluator creates an Evaluator over the given table
func NewEvaluator(table []Achievement) *Evaluator {
	return &Evaluator{table: table}
}

// Evaluate appends every newly satisfied achievement to p and returns them.
// All predicates see the state as it was before any were granted.
func (e *Evaluator) Evaluate(p *model.Player) []Achievement {
	var earned []Achievement
	for _, a := range e.table {
		if p.HasAchievement(a.ID) {
			continue
		}
		if a.Predicate(p) {
			earned = append(earned, a)
		}
	}
	for _, a := range earned {
		p.Achievements = append(p.Achievements, a.ID)
	}
	return earned
}

// Payload converts an achievement to its wire form
func (a Achievement) Payload() model.AchievementPayload {
	return model.AchievementPayload{ID: a.ID, Name: a.Name}
}
