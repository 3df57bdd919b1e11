// Package content provides the battle configuration tables: abilities, player
// jobs, enemy types, the default party and enemy formations.
//
// The battle core treats these tables as read-only lookup data.
package content

import "fmt"

// BasicAttackID is the ability every table must define; it is the fallback when
// an actor has nothing else it can afford.
const BasicAttackID = "attack"

// TargetMode determines how an ability's targets are selected.
type TargetMode string

const (
	TargetSelf        TargetMode = "self"
	TargetSingleAlly  TargetMode = "single_ally"
	TargetAllAllies   TargetMode = "all_allies"
	TargetSingleEnemy TargetMode = "single_enemy"
	TargetAllEnemies  TargetMode = "all_enemies"
)

// Valid reports whether m is one of the five known target modes.
func (m TargetMode) Valid() bool {
	switch m {
	case TargetSelf, TargetSingleAlly, TargetAllAllies, TargetSingleEnemy, TargetAllEnemies:
		return true
	}
	return false
}

// NeedsSelection reports whether a player must pick a target for this mode.
// Anything that is not self or an "all" mode requires an explicit choice.
func (m TargetMode) NeedsSelection() bool {
	switch m {
	case TargetSelf, TargetAllAllies, TargetAllEnemies:
		return false
	}
	return true
}

// EffectKind is the closed set of ability effects the resolver understands.
type EffectKind string

const (
	KindPhysical EffectKind = "physical"
	KindMagical  EffectKind = "magical"
	KindHeal     EffectKind = "heal"
	KindDefend   EffectKind = "defend"
	KindSpecial  EffectKind = "special"
)

// Valid reports whether k is one of the five known effect kinds.
func (k EffectKind) Valid() bool {
	switch k {
	case KindPhysical, KindMagical, KindHeal, KindDefend, KindSpecial:
		return true
	}
	return false
}

// Ability is one entry of the ability table.
type Ability struct {
	ID     string     `yaml:"id"`
	Name   string     `yaml:"name"`
	Cost   int        `yaml:"cost"`
	Target TargetMode `yaml:"target"`
	Kind   EffectKind `yaml:"kind"`
	Power  float64    `yaml:"power"`
	// Hits is the number of damage repetitions; zero means one.
	Hits int `yaml:"hits"`
	// Color is a presentation hint for floating damage numbers.
	Color string `yaml:"color"`
}

// HitCount returns the number of damage repetitions, at least 1.
func (a *Ability) HitCount() int {
	if a.Hits < 1 {
		return 1
	}
	return a.Hits
}

// Validate checks the ability's invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, Cost, Power and Hits
// are non-negative, and Target and Kind are known values.
func (a *Ability) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("ability: id must not be empty")
	}
	if a.Name == "" {
		return fmt.Errorf("ability %q: name must not be empty", a.ID)
	}
	if a.Cost < 0 {
		return fmt.Errorf("ability %q: cost must be >= 0, got %d", a.ID, a.Cost)
	}
	if a.Power < 0 {
		return fmt.Errorf("ability %q: power must be >= 0, got %v", a.ID, a.Power)
	}
	if a.Hits < 0 {
		return fmt.Errorf("ability %q: hits must be >= 0, got %d", a.ID, a.Hits)
	}
	if !a.Target.Valid() {
		return fmt.Errorf("ability %q: unknown target mode %q", a.ID, a.Target)
	}
	if !a.Kind.Valid() {
		return fmt.Errorf("ability %q: unknown effect kind %q", a.ID, a.Kind)
	}
	return nil
}
