package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

const tick = 16 * time.Millisecond

type policyFunc func(unit *combat.Combatant, opponents, allies []*combat.Combatant) *combat.Decision

func (f policyFunc) ChooseAction(unit *combat.Combatant, opponents, allies []*combat.Combatant) *combat.Decision {
	return f(unit, opponents, allies)
}

// idle never acts.
var idle = policyFunc(func(*combat.Combatant, []*combat.Combatant, []*combat.Combatant) *combat.Decision {
	return nil
})

// attackFirst always uses the basic attack on the first opponent.
var attackFirst = policyFunc(func(_ *combat.Combatant, opponents, _ []*combat.Combatant) *combat.Decision {
	if len(opponents) == 0 {
		return nil
	}
	return &combat.Decision{AbilityID: content.BasicAttackID, Targets: []*combat.Combatant{opponents[0]}}
})

func unit(name string, atk, def, mag, mdef, hp int) *combat.Combatant {
	return &combat.Combatant{
		ID: name, Name: name,
		HP: hp, MaxHP: hp, MP: 50, MaxMP: 50,
		Attack: atk, Defense: def, Magic: mag, MagicDef: mdef,
		Speed: 100, GaugeMax: 100, Alive: hp > 0, Row: 1,
	}
}

func formation(t *testing.T, id string) *content.Formation {
	t.Helper()
	f, ok := content.Default().Formation(id)
	require.True(t, ok, id)
	return f
}

func newEngine(t *testing.T, p combat.Policy, ow combat.Overworld) *combat.Engine {
	t.Helper()
	e, err := combat.NewEngine(combat.Deps{
		Settings:  combat.DefaultSettings(),
		Tables:    content.Default(),
		Policy:    p,
		Source:    &dice.Fixed{Float: 0.5},
		Overworld: ow,
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)
	return e
}

// startBattle initializes e with the given front formation and runs the intro.
func startBattle(t *testing.T, e *combat.Engine, formationID string) {
	t.Helper()
	e.Init(combat.Setup{Squads: []combat.Arrival{{
		Direction:      combat.DirFront,
		Formation:      formation(t, formationID),
		SourceEnemyIDs: []string{"map-goblin"},
	}}})
	e.Update(combat.DefaultSettings().IntroDelay)
	require.Equal(t, combat.StateRunning, e.State())
}

// runUntil ticks e until cond holds, failing after a generous bound.
func runUntil(t *testing.T, e *combat.Engine, cond func() bool) {
	t.Helper()
	for i := 0; i < 100000; i++ {
		if cond() {
			return
		}
		e.Update(tick)
	}
	t.Fatalf("condition not reached; state %s", e.State())
}

func byID(units []*combat.Combatant, id string) *combat.Combatant {
	for _, u := range units {
		if u.ID == id {
			return u
		}
	}
	return nil
}
