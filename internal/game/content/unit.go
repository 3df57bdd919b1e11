package content

import "fmt"

// UnitTemplate is the stat block for a player job or an enemy type.
type UnitTemplate struct {
	ID        string   `yaml:"id"`
	Name      string   `yaml:"name"`
	Job       string   `yaml:"job"`
	HP        int      `yaml:"hp"`
	MP        int      `yaml:"mp"`
	Attack    int      `yaml:"attack"`
	Defense   int      `yaml:"defense"`
	Magic     int      `yaml:"magic"`
	MagicDef  int      `yaml:"magic_def"`
	Speed     int      `yaml:"speed"`
	Color     string   `yaml:"color"`
	Exp       int      `yaml:"exp"`
	Gold      int      `yaml:"gold"`
	Abilities []string `yaml:"abilities"`
}

// Validate checks the template's invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty, HP >= 1 and every
// other stat is non-negative.
func (u *UnitTemplate) Validate() error {
	if u.ID == "" {
		return fmt.Errorf("unit template: id must not be empty")
	}
	if u.Name == "" {
		return fmt.Errorf("unit template %q: name must not be empty", u.ID)
	}
	if u.HP < 1 {
		return fmt.Errorf("unit template %q: hp must be >= 1", u.ID)
	}
	stats := []struct {
		name string
		v    int
	}{
		{"mp", u.MP}, {"attack", u.Attack}, {"defense", u.Defense}, {"magic", u.Magic},
		{"magic_def", u.MagicDef}, {"speed", u.Speed}, {"exp", u.Exp}, {"gold", u.Gold},
	}
	for _, s := range stats {
		if s.v < 0 {
			return fmt.Errorf("unit template %q: %s must be >= 0, got %d", u.ID, s.name, s.v)
		}
	}
	return nil
}

// KnownAbilities returns the template's ability list, defaulting to the basic
// attack when none are configured.
func (u *UnitTemplate) KnownAbilities() []string {
	if len(u.Abilities) == 0 {
		return []string{BasicAttackID}
	}
	out := make([]string, len(u.Abilities))
	copy(out, u.Abilities)
	return out
}

// PartyMember places one player job into the center grid.
type PartyMember struct {
	// Unit is the player job template ID.
	Unit string `yaml:"unit"`
	// ID is the stable combatant identity for this party slot.
	ID  string `yaml:"id"`
	Row int    `yaml:"row"`
	Col int    `yaml:"col"`
}

// Slot is one enemy placement inside a Formation.
type Slot struct {
	Type string `yaml:"type"`
	Row  int    `yaml:"row"`
	Col  int    `yaml:"col"`
}

// Formation is a named arrangement of enemies on a 3x3 grid.
// Slots may overlap or reference unknown types; the squad builder skips those.
type Formation struct {
	ID      string `yaml:"id"`
	Enemies []Slot `yaml:"enemies"`
}
