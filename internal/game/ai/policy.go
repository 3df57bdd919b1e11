// Package ai implements enemy decision making for the battle core.
//
// RandomPolicy picks a uniformly random usable ability and resolves its
// targets from the ability's target mode. Usability can be narrowed further
// by an AbilityFilter such as ScriptedPreconditions.
package ai

import (
	"sort"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// AbilityFilter vetoes abilities a unit could otherwise afford.
type AbilityFilter interface {
	Usable(unit *combat.Combatant, ability *content.Ability) bool
}

// RandomPolicy is the default enemy policy.
//
// Invariant: tables and src are non-nil.
type RandomPolicy struct {
	tables *content.Tables
	src    dice.Source
	filter AbilityFilter
}

// Option configures a RandomPolicy.
type Option func(*RandomPolicy)

// WithFilter narrows the eligible abilities with f.
func WithFilter(f AbilityFilter) Option {
	return func(p *RandomPolicy) { p.filter = f }
}

// NewRandomPolicy builds a policy over the given ability table.
//
// Precondition: tables and src must be non-nil.
func NewRandomPolicy(tables *content.Tables, src dice.Source, opts ...Option) *RandomPolicy {
	if tables == nil {
		panic("ai.NewRandomPolicy: tables must not be nil")
	}
	if src == nil {
		panic("ai.NewRandomPolicy: src must not be nil")
	}
	p := &RandomPolicy{tables: tables, src: src}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ChooseAction implements combat.Policy.
//
// Postcondition: Returns nil when there are no living opponents or the basic
// attack is missing from the table; otherwise the decision has at least one target.
func (p *RandomPolicy) ChooseAction(unit *combat.Combatant, opponents, allies []*combat.Combatant) *combat.Decision {
	foes := living(opponents)
	if len(foes) == 0 {
		return nil
	}

	ab := p.pickAbility(unit)
	if ab == nil {
		return nil
	}
	return &combat.Decision{
		AbilityID: ab.ID,
		Ability:   ab,
		Targets:   p.targets(unit, ab, foes, living(allies)),
	}
}

// Eligible returns the abilities unit knows, can afford and the filter allows,
// in the order the unit knows them.
func (p *RandomPolicy) Eligible(unit *combat.Combatant) []*content.Ability {
	var out []*content.Ability
	for _, id := range unit.Abilities {
		ab, ok := p.tables.Ability(id)
		if !ok || !unit.CanAfford(ab) {
			continue
		}
		if p.filter != nil && !p.filter.Usable(unit, ab) {
			continue
		}
		out = append(out, ab)
	}
	return out
}

func (p *RandomPolicy) pickAbility(unit *combat.Combatant) *content.Ability {
	eligible := p.Eligible(unit)
	if len(eligible) == 0 {
		ab, _ := p.tables.Ability(content.BasicAttackID)
		return ab
	}
	return eligible[p.src.Intn(len(eligible))]
}

func (p *RandomPolicy) targets(unit *combat.Combatant, ab *content.Ability, foes, friends []*combat.Combatant) []*combat.Combatant {
	switch ab.Target {
	case content.TargetAllEnemies:
		return foes
	case content.TargetSingleAlly:
		if weakest := LowestHealth(friends); weakest != nil {
			return []*combat.Combatant{weakest}
		}
		return []*combat.Combatant{unit}
	case content.TargetAllAllies:
		if len(friends) == 0 {
			return []*combat.Combatant{unit}
		}
		return friends
	case content.TargetSelf:
		return []*combat.Combatant{unit}
	default:
		return []*combat.Combatant{foes[p.src.Intn(len(foes))]}
	}
}

// LowestHealth returns the combatant with the smallest HP ratio. Exact ties go
// to the earliest in units. Returns nil for an empty slice.
func LowestHealth(units []*combat.Combatant) *combat.Combatant {
	if len(units) == 0 {
		return nil
	}
	sorted := make([]*combat.Combatant, len(units))
	copy(sorted, units)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].HealthRatio() < sorted[j].HealthRatio()
	})
	return sorted[0]
}

func living(units []*combat.Combatant) []*combat.Combatant {
	out := make([]*combat.Combatant, 0, len(units))
	for _, u := range units {
		if u != nil && u.Alive {
			out = append(out, u)
		}
	}
	return out
}
