package content

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// fallbackFormationID is used when an enemy type has no formations listed.
const fallbackFormationID = "goblin_small"

//go:embed defaults/*.yaml
var defaultsFS embed.FS

// Tables holds every configuration table the battle core reads.
//
// Invariant: after a successful Load, Abilities contains BasicAttackID.
type Tables struct {
	Abilities      map[string]*Ability
	Units          map[string]*UnitTemplate
	Enemies        map[string]*UnitTemplate
	Party          []PartyMember
	Formations     map[string]*Formation
	TypeFormations map[string][]string
}

type abilitiesFile struct {
	Abilities []*Ability `yaml:"abilities"`
}

type unitsFile struct {
	Units []*UnitTemplate `yaml:"units"`
}

type enemiesFile struct {
	Enemies []*UnitTemplate `yaml:"enemies"`
}

type partyFile struct {
	Party []PartyMember `yaml:"party"`
}

type formationsFile struct {
	Formations     []*Formation        `yaml:"formations"`
	TypeFormations map[string][]string `yaml:"type_formations"`
}

// Ability returns the ability with the given ID.
//
// Postcondition: Returns (ability, true) if found, or (nil, false) otherwise.
func (t *Tables) Ability(id string) (*Ability, bool) {
	a, ok := t.Abilities[id]
	return a, ok
}

// Enemy returns the enemy template for the given type.
func (t *Tables) Enemy(enemyType string) (*UnitTemplate, bool) {
	u, ok := t.Enemies[enemyType]
	return u, ok
}

// Unit returns the player job template with the given ID.
func (t *Tables) Unit(id string) (*UnitTemplate, bool) {
	u, ok := t.Units[id]
	return u, ok
}

// Formation returns the formation with the given ID.
func (t *Tables) Formation(id string) (*Formation, bool) {
	f, ok := t.Formations[id]
	return f, ok
}

// RandomFormation picks one of the formations registered for enemyType,
// uniformly at random. Unknown types fall back to the goblin_small formation.
//
// Postcondition: Returns nil only when neither the type's formations nor the
// fallback exist in the table.
func (t *Tables) RandomFormation(enemyType string, src dice.Source) *Formation {
	options := t.TypeFormations[enemyType]
	if len(options) == 0 {
		options = []string{fallbackFormationID}
	}
	f, ok := t.Formations[options[src.Intn(len(options))]]
	if !ok {
		return nil
	}
	return f
}

// Validate checks the cross-table invariants.
//
// Postcondition: Returns nil if the tables are consistent, or an error listing
// all violations.
func (t *Tables) Validate() error {
	var errs []string
	if _, ok := t.Abilities[BasicAttackID]; !ok {
		errs = append(errs, fmt.Sprintf("abilities: %q must be defined", BasicAttackID))
	}
	for _, a := range t.Abilities {
		if err := a.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for _, u := range t.Units {
		if err := u.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for _, u := range t.Enemies {
		if err := u.Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	seen := make(map[string]bool, len(t.Party))
	for i, m := range t.Party {
		if _, ok := t.Units[m.Unit]; !ok {
			errs = append(errs, fmt.Sprintf("party[%d]: unknown unit %q", i, m.Unit))
		}
		if m.ID == "" {
			errs = append(errs, fmt.Sprintf("party[%d]: id must not be empty", i))
		} else if seen[m.ID] {
			errs = append(errs, fmt.Sprintf("party[%d]: duplicate id %q", i, m.ID))
		}
		seen[m.ID] = true
	}
	for enemyType, ids := range t.TypeFormations {
		for _, id := range ids {
			if _, ok := t.Formations[id]; !ok {
				errs = append(errs, fmt.Sprintf("type_formations[%s]: unknown formation %q", enemyType, id))
			}
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("content validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

// Load reads abilities.yaml, units.yaml, enemies.yaml, party.yaml and
// formations.yaml from fsys and validates the result.
//
// Postcondition: Returns validated Tables or a non-nil error.
func Load(fsys fs.FS) (*Tables, error) {
	var (
		af abilitiesFile
		uf unitsFile
		ef enemiesFile
		pf partyFile
		ff formationsFile
	)
	files := []struct {
		name string
		out  any
	}{
		{"abilities.yaml", &af},
		{"units.yaml", &uf},
		{"enemies.yaml", &ef},
		{"party.yaml", &pf},
		{"formations.yaml", &ff},
	}
	for _, f := range files {
		data, err := fs.ReadFile(fsys, f.name)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", f.name, err)
		}
		if err := yaml.Unmarshal(data, f.out); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f.name, err)
		}
	}

	t := &Tables{
		Abilities:      make(map[string]*Ability, len(af.Abilities)),
		Units:          make(map[string]*UnitTemplate, len(uf.Units)),
		Enemies:        make(map[string]*UnitTemplate, len(ef.Enemies)),
		Party:          pf.Party,
		Formations:     make(map[string]*Formation, len(ff.Formations)),
		TypeFormations: ff.TypeFormations,
	}
	if t.TypeFormations == nil {
		t.TypeFormations = make(map[string][]string)
	}
	for _, a := range af.Abilities {
		if _, dup := t.Abilities[a.ID]; dup {
			return nil, fmt.Errorf("abilities.yaml: duplicate ability %q", a.ID)
		}
		t.Abilities[a.ID] = a
	}
	for _, u := range uf.Units {
		if _, dup := t.Units[u.ID]; dup {
			return nil, fmt.Errorf("units.yaml: duplicate unit %q", u.ID)
		}
		t.Units[u.ID] = u
	}
	for _, u := range ef.Enemies {
		if _, dup := t.Enemies[u.ID]; dup {
			return nil, fmt.Errorf("enemies.yaml: duplicate enemy %q", u.ID)
		}
		t.Enemies[u.ID] = u
	}
	for _, f := range ff.Formations {
		if _, dup := t.Formations[f.ID]; dup {
			return nil, fmt.Errorf("formations.yaml: duplicate formation %q", f.ID)
		}
		t.Formations[f.ID] = f
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// LoadDir loads tables from the YAML files in dir.
//
// Precondition: dir must be a readable directory.
func LoadDir(dir string) (*Tables, error) {
	t, err := Load(os.DirFS(dir))
	if err != nil {
		return nil, fmt.Errorf("loading content from %q: %w", dir, err)
	}
	return t, nil
}

// Default returns the tables compiled into the binary.
//
// Postcondition: Returns validated Tables; panics if the embedded data is invalid.
func Default() *Tables {
	sub, err := fs.Sub(defaultsFS, "defaults")
	if err != nil {
		panic("content: embedded defaults missing: " + err.Error())
	}
	t, err := Load(sub)
	if err != nil {
		panic("content: embedded defaults invalid: " + err.Error())
	}
	return t
}
