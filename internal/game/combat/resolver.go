package combat

import (
	"math"

	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

const (
	frontRowAttackBonus = 1.2
	backRowDefenseBonus = 0.8
	varianceMin         = 0.9
	varianceMax         = 1.1
)

// EventKind classifies one step of a resolved action.
type EventKind int

const (
	EventDefend EventKind = iota
	EventHeal
	EventSteal
	EventDamage
	EventDefeat
)

// Event records one effect produced while resolving an action.
type Event struct {
	Kind    EventKind
	Actor   *Combatant
	Target  *Combatant
	Ability *content.Ability
	// Amount is the HP healed or damage dealt.
	Amount int
	// Success is set for steal attempts.
	Success bool
}

// Resolver applies an action's ability effects to its targets.
type Resolver struct {
	src         dice.Source
	stealChance float64
}

// NewResolver returns a Resolver drawing variance and chances from src.
//
// Precondition: src must be non-nil.
func NewResolver(src dice.Source, settings Settings) *Resolver {
	return &Resolver{src: src, stealChance: settings.withDefaults().StealChance}
}

// Variance draws a uniform damage multiplier in [0.9, 1.1).
func (r *Resolver) Variance() float64 {
	return dice.Uniform(r.src, varianceMin, varianceMax)
}

// Resolve applies a to its targets and returns the resulting events in order.
//
// Postcondition: the actor pays the ability cost exactly once, even with zero
// surviving targets. Nothing happens when the actor is dead. Dead targets are
// skipped; a target that dies mid-action takes no further hits. Multi-hit
// abilities sweep every target once per hit. Special abilities roll once and
// always report an outcome.
func (r *Resolver) Resolve(a *Action) []Event {
	if a == nil || a.Actor == nil || a.Ability == nil || !a.Actor.Alive {
		return nil
	}
	actor, ab := a.Actor, a.Ability
	actor.SpendMP(ab.Cost)

	switch ab.Kind {
	case content.KindDefend:
		actor.Defending = true
		return []Event{{Kind: EventDefend, Actor: actor, Target: actor, Ability: ab}}
	case content.KindSpecial:
		ok := dice.Chance(r.src, r.stealChance)
		return []Event{{Kind: EventSteal, Actor: actor, Ability: ab, Success: ok}}
	}

	var events []Event
	if ab.Kind == content.KindHeal {
		for _, target := range a.Targets {
			if target == nil || !target.Alive {
				continue
			}
			amt := HealAmount(actor, ab.Power, r.Variance())
			healed := target.HealHP(amt)
			events = append(events, Event{Kind: EventHeal, Actor: actor, Target: target, Ability: ab, Amount: healed})
		}
		return events
	}

	for hit := 0; hit < ab.HitCount(); hit++ {
		for _, target := range a.Targets {
			if target == nil || !target.Alive {
				continue
			}
			var dmg int
			if ab.Kind == content.KindMagical {
				dmg = MagicalDamage(actor, target, ab.Power, r.Variance())
			} else {
				dmg = PhysicalDamage(actor, target, ab.Power, r.Variance())
			}
			dealt := target.TakeDamage(dmg)
			events = append(events, Event{Kind: EventDamage, Actor: actor, Target: target, Ability: ab, Amount: dealt})
			if !target.Alive {
				events = append(events, Event{Kind: EventDefeat, Actor: actor, Target: target, Ability: ab})
			}
		}
	}
	return events
}

// PhysicalDamage computes
// floor(((attack*power*2*atkRow) - defense) * defRow * variance), minimum 1.
// atkRow is 1.2 when the actor stands in the front row; defRow is 0.8 when the
// target stands in the back row.
func PhysicalDamage(actor, target *Combatant, power, variance float64) int {
	atkRow, defRow := 1.0, 1.0
	if actor.Row == RowFront {
		atkRow = frontRowAttackBonus
	}
	if target.Row == RowBack {
		defRow = backRowDefenseBonus
	}
	raw := (float64(actor.Attack)*power*2*atkRow - float64(target.Defense)) * defRow * variance
	return atLeastOne(raw)
}

// MagicalDamage computes floor(((magic+power)*2 - magicDef) * variance), minimum 1.
func MagicalDamage(actor, target *Combatant, power, variance float64) int {
	raw := ((float64(actor.Magic)+power)*2 - float64(target.MagicDef)) * variance
	return atLeastOne(raw)
}

// HealAmount computes floor((power+magic) * variance).
func HealAmount(actor *Combatant, power, variance float64) int {
	v := math.Floor((power + float64(actor.Magic)) * variance)
	if v < 0 {
		return 0
	}
	return int(v)
}

func atLeastOne(raw float64) int {
	v := int(math.Floor(raw))
	if v < 1 {
		return 1
	}
	return v
}
