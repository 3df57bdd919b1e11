// Package combat implements the real-time battle core: gauge scheduling, squad
// formations, combatant state, action resolution and the battle state machine.
//
// The package is single-threaded and tick-driven. Nothing advances unless the
// caller hands Engine.Update an elapsed simulation delta.
package combat

import (
	"github.com/cory-johannsen/skirmish/internal/game/content"
)

// Side distinguishes player combatants from enemy combatants.
type Side int

const (
	SidePlayer Side = iota
	SideEnemy
)

// String returns "player" or "enemy".
func (s Side) String() string {
	switch s {
	case SidePlayer:
		return "player"
	case SideEnemy:
		return "enemy"
	default:
		return "unknown"
	}
}

// Combatant is one participant in a battle.
//
// Invariant: 0 <= HP <= MaxHP; Alive == (HP > 0); 0 <= Gauge <= GaugeMax;
// Ready == (Gauge >= GaugeMax) for living combatants.
type Combatant struct {
	ID   string
	Name string
	// Type is the source template ID (player job or enemy type).
	Type string
	Side Side

	HP    int
	MaxHP int
	MP    int
	MaxMP int

	Attack   int
	Defense  int
	Magic    int
	MagicDef int
	Speed    int

	Gauge    float64
	GaugeMax float64
	Ready    bool

	Alive     bool
	Defending bool

	// Direction, Row and Col locate the combatant; they are written only by Grid.Place.
	Direction Direction
	Row       int
	Col       int

	Abilities []string

	// Exp and Gold are granted to the party when this combatant is defeated.
	Exp  int
	Gold int

	// Presentation hints. The renderer writes ScreenX/ScreenY; the core only
	// copies them onto floating numbers.
	Color   string
	ScreenX float64
	ScreenY float64
}

// NewCombatant builds a full-health combatant from a template.
//
// Precondition: tmpl must be non-nil; gaugeMax > 0.
// Postcondition: HP == MaxHP == tmpl.HP; Gauge == 0; Alive is true iff HP > 0.
func NewCombatant(id string, tmpl *content.UnitTemplate, side Side, gaugeMax float64) *Combatant {
	return &Combatant{
		ID:        id,
		Name:      tmpl.Name,
		Type:      tmpl.ID,
		Side:      side,
		HP:        tmpl.HP,
		MaxHP:     tmpl.HP,
		MP:        tmpl.MP,
		MaxMP:     tmpl.MP,
		Attack:    tmpl.Attack,
		Defense:   tmpl.Defense,
		Magic:     tmpl.Magic,
		MagicDef:  tmpl.MagicDef,
		Speed:     tmpl.Speed,
		GaugeMax:  gaugeMax,
		Alive:     tmpl.HP > 0,
		Abilities: tmpl.KnownAbilities(),
		Exp:       tmpl.Exp,
		Gold:      tmpl.Gold,
		Color:     tmpl.Color,
	}
}

// IsPlayer reports whether this combatant is on the player side.
func (c *Combatant) IsPlayer() bool { return c.Side == SidePlayer }

// TakeDamage applies amount to HP. A defending combatant takes half, rounded down.
// Negative amounts are treated as zero.
//
// Postcondition: HP >= 0; on reaching zero the combatant is dead with an empty,
// not-ready gauge. Returns the amount after the defend reduction.
func (c *Combatant) TakeDamage(amount int) int {
	if amount < 0 {
		amount = 0
	}
	if c.Defending {
		amount /= 2
	}
	c.HP -= amount
	if c.HP < 0 {
		c.HP = 0
	}
	if c.HP == 0 {
		c.Alive = false
		c.Gauge = 0
		c.Ready = false
	}
	return amount
}

// HealHP restores up to amount HP, capped at MaxHP. Dead combatants cannot be healed.
//
// Postcondition: Returns min(amount, MaxHP-HPbefore) for living combatants, 0 otherwise.
func (c *Combatant) HealHP(amount int) int {
	if !c.Alive || amount <= 0 {
		return 0
	}
	before := c.HP
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	return c.HP - before
}

// SpendMP reduces MP by cost, flooring at zero. Insufficient MP is not an error.
func (c *Combatant) SpendMP(cost int) {
	if cost < 0 {
		return
	}
	c.MP -= cost
	if c.MP < 0 {
		c.MP = 0
	}
}

// CanAfford reports whether the combatant has the MP to pay for a.
func (c *Combatant) CanAfford(a *content.Ability) bool {
	return a != nil && a.Cost <= c.MP
}

// HealthRatio returns HP / MaxHP, or 0 when MaxHP is zero.
func (c *Combatant) HealthRatio() float64 {
	if c.MaxHP <= 0 {
		return 0
	}
	return float64(c.HP) / float64(c.MaxHP)
}
