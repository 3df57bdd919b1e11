package combat

import (
	"time"

	"github.com/google/uuid"

	"github.com/cory-johannsen/skirmish/internal/game/content"
)

// Squads is the directory of the five formation grids of one battle. It is
// the only authority on where a combatant stands.
type Squads struct {
	grids    map[Direction]*Grid
	tables   *content.Tables
	settings Settings
	newID    func() string
}

// NewSquads returns a directory with the center and front grids active.
//
// Precondition: tables must be non-nil.
func NewSquads(tables *content.Tables, settings Settings) *Squads {
	s := &Squads{
		grids:    make(map[Direction]*Grid, len(Directions)),
		tables:   tables,
		settings: settings.withDefaults(),
		newID:    func() string { return uuid.NewString() },
	}
	for _, d := range Directions {
		s.grids[d] = NewGrid(d)
	}
	s.grids[DirCenter].Active = true
	s.grids[DirFront].Active = true
	return s
}

// Grid returns the grid for dir, or nil for an unknown direction.
func (s *Squads) Grid(dir Direction) *Grid {
	return s.grids[dir]
}

// Grids returns all five grids in Directions order.
func (s *Squads) Grids() []*Grid {
	out := make([]*Grid, 0, len(Directions))
	for _, d := range Directions {
		out = append(out, s.grids[d])
	}
	return out
}

// ActiveDirections lists the directions whose grids are active.
func (s *Squads) ActiveDirections() []Direction {
	var out []Direction
	for _, d := range Directions {
		if s.grids[d].Active {
			out = append(out, d)
		}
	}
	return out
}

// SetupPlayerParty places the party on the center grid. Members with an
// unknown unit or an occupied or invalid cell are skipped.
//
// Postcondition: Returns the combatants actually placed.
func (s *Squads) SetupPlayerParty(party []content.PartyMember) []*Combatant {
	center := s.grids[DirCenter]
	var placed []*Combatant
	for _, m := range party {
		tmpl, ok := s.tables.Unit(m.Unit)
		if !ok {
			continue
		}
		id := m.ID
		if id == "" {
			id = s.newID()
		}
		c := NewCombatant(id, tmpl, SidePlayer, s.settings.GaugeMax)
		if !center.Place(c, m.Row, m.Col) {
			continue
		}
		placed = append(placed, c)
	}
	return placed
}

// AddEnemySquad activates the grid at dir and places one enemy per formation
// slot. The grid starts its entrance animation.
//
// Precondition: dir must not be DirCenter.
// Postcondition: Returns nil with no state change for center, unknown
// directions or a nil formation. Otherwise returns the enemies actually
// placed; unknown types and occupied cells are skipped.
func (s *Squads) AddEnemySquad(dir Direction, f *content.Formation) []*Combatant {
	if dir == DirCenter || !dir.Valid() || f == nil {
		return nil
	}
	g := s.grids[dir]
	g.Active = true
	g.Entering = true
	g.SlideOffset = 1.0
	var placed []*Combatant
	for _, slot := range f.Enemies {
		tmpl, ok := s.tables.Enemy(slot.Type)
		if !ok {
			continue
		}
		c := NewCombatant(s.newID(), tmpl, SideEnemy, s.settings.GaugeMax)
		if !g.Place(c, slot.Row, slot.Col) {
			continue
		}
		placed = append(placed, c)
	}
	return placed
}

// All returns every placed combatant, grids in Directions order.
func (s *Squads) All() []*Combatant {
	var out []*Combatant
	for _, d := range Directions {
		out = append(out, s.grids[d].Units()...)
	}
	return out
}

// Alive returns every living combatant.
func (s *Squads) Alive() []*Combatant {
	var out []*Combatant
	for _, d := range Directions {
		out = append(out, s.grids[d].AliveUnits()...)
	}
	return out
}

func (s *Squads) aliveOn(side Side) []*Combatant {
	var out []*Combatant
	for _, c := range s.Alive() {
		if c.Side == side {
			out = append(out, c)
		}
	}
	return out
}

// Players returns the living player combatants.
func (s *Squads) Players() []*Combatant { return s.aliveOn(SidePlayer) }

// Enemies returns the living enemy combatants.
func (s *Squads) Enemies() []*Combatant { return s.aliveOn(SideEnemy) }

// HasAlivePlayers reports whether any player is alive.
func (s *Squads) HasAlivePlayers() bool { return len(s.Players()) > 0 }

// HasAliveEnemies reports whether any enemy is alive.
func (s *Squads) HasAliveEnemies() bool { return len(s.Enemies()) > 0 }

// RemoveDead clears dead combatants from every grid.
func (s *Squads) RemoveDead() int {
	n := 0
	for _, d := range Directions {
		n += s.grids[d].RemoveDead()
	}
	return n
}

// AdvanceAnimations moves every entering grid's slide offset toward zero.
func (s *Squads) AdvanceAnimations(delta time.Duration) {
	if delta <= 0 {
		return
	}
	step := float64(delta) / float64(s.settings.EntranceDuration)
	for _, d := range Directions {
		g := s.grids[d]
		if !g.Entering {
			continue
		}
		g.SlideOffset -= step
		if g.SlideOffset <= 0 {
			g.SlideOffset = 0
			g.Entering = false
		}
	}
}

// AnyEntering reports whether a squad is still sliding in.
func (s *Squads) AnyEntering() bool {
	for _, d := range Directions {
		if s.grids[d].Entering {
			return true
		}
	}
	return false
}
