package overworld_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
	"github.com/cory-johannsen/skirmish/internal/game/overworld"
)

const step = overworld.DefaultApproachStep

func mustMap(t *testing.T, rows ...string) *overworld.TileMap {
	t.Helper()
	m, err := overworld.ParseTileMap(rows)
	require.NoError(t, err)
	return m
}

func TestParseTileMap(t *testing.T) {
	m := mustMap(t, "#.,", "~T.")
	assert.Equal(t, 3, m.Width())
	assert.Equal(t, 2, m.Height())
	assert.False(t, m.IsWalkable(0, 0))
	assert.True(t, m.IsWalkable(1, 0))
	assert.True(t, m.IsWalkable(2, 0))
	assert.False(t, m.IsWalkable(0, 1))
	assert.False(t, m.IsWalkable(1, 1))
	assert.False(t, m.IsWalkable(-1, 0))
	assert.False(t, m.IsWalkable(3, 0))

	_, err := overworld.ParseTileMap(nil)
	assert.Error(t, err)
	_, err = overworld.ParseTileMap([]string{"...", ".."})
	assert.Error(t, err)
	_, err = overworld.ParseTileMap([]string{".x."})
	assert.ErrorContains(t, err, "unknown tile")
}

func TestEnemy_ApproachStepsOneTilePerInterval(t *testing.T) {
	m := mustMap(t, ".....", ".....")
	e := overworld.NewEnemy("e", "goblin", 0, 0, step)
	assert.False(t, e.MoveTowardBattle(step, 4, 1, m), "not approaching yet")
	assert.Equal(t, 0, e.X)

	e.StartApproaching()
	require.True(t, e.Approaching())
	assert.False(t, e.MoveTowardBattle(step-time.Millisecond, 4, 1, m))
	assert.Equal(t, 0, e.X)
	assert.False(t, e.MoveTowardBattle(time.Millisecond, 4, 1, m))
	assert.Equal(t, 1, e.X, "larger axis first")
	assert.Equal(t, 0, e.Y)
}

func TestEnemy_SidestepsBlockedAxis(t *testing.T) {
	m := mustMap(t,
		".#...",
		".....",
	)
	e := overworld.NewEnemy("e", "goblin", 0, 0, step)
	e.StartApproaching()
	e.MoveTowardBattle(step, 4, 1, m)
	assert.Equal(t, 0, e.X)
	assert.Equal(t, 1, e.Y)
}

func TestEnemy_StuckWhenBothAxesBlocked(t *testing.T) {
	m := mustMap(t, ".#.")
	e := overworld.NewEnemy("e", "goblin", 0, 0, step)
	e.StartApproaching()
	assert.False(t, e.MoveTowardBattle(step, 2, 0, m))
	assert.Equal(t, 0, e.X)
}

func TestEnemy_ArrivesAndRemembersSide(t *testing.T) {
	m := mustMap(t, ".....")
	e := overworld.NewEnemy("e", "goblin", 0, 0, step)
	e.StartApproaching()
	arrived := false
	for i := 0; i < 3 && !arrived; i++ {
		arrived = e.MoveTowardBattle(step, 3, 0, m)
	}
	require.True(t, arrived)
	assert.True(t, e.ReadyToJoin())
	assert.Equal(t, combat.DirLeft, e.ArrivalDirection(3, 0))
	assert.Equal(t, combat.DirBack, e.DirectionRelativeTo(3, 0))
}

func TestEnemy_DirectionRelativeTo(t *testing.T) {
	e := overworld.NewEnemy("e", "goblin", 5, 5, step)
	assert.Equal(t, combat.DirRight, e.DirectionRelativeTo(2, 4))
	assert.Equal(t, combat.DirLeft, e.DirectionRelativeTo(8, 6))
	assert.Equal(t, combat.DirFront, e.DirectionRelativeTo(5, 3))
	assert.Equal(t, combat.DirBack, e.DirectionRelativeTo(4, 6))
	assert.Equal(t, combat.DirFront, e.DirectionRelativeTo(3, 3), "ties go vertical")
}

func TestEnemy_Lifecycle(t *testing.T) {
	e := overworld.NewEnemy("e", "goblin", 0, 0, 0)
	assert.Equal(t, overworld.StatePatrol, e.State())
	assert.False(t, e.Engaged())

	e.EnterBattle()
	assert.True(t, e.Engaged())
	e.StartApproaching()
	assert.Equal(t, overworld.StateInBattle, e.State(), "engaged enemies do not approach")

	e.ReturnToPatrol()
	assert.Equal(t, "patrol", e.State().String())
	e.Die()
	assert.False(t, e.IsAlive())
	e.ReturnToPatrol()
	assert.Equal(t, overworld.StateDead, e.State())
}

func TestPropertyEnemy_DistanceNeverIncreasesOnOpenGround(t *testing.T) {
	m := mustMap(t, "..........", "..........", "..........", "..........", "..........")
	rapid.Check(t, func(rt *rapid.T) {
		x := rapid.IntRange(0, 9).Draw(rt, "x")
		y := rapid.IntRange(0, 4).Draw(rt, "y")
		tx := rapid.IntRange(0, 9).Draw(rt, "tx")
		ty := rapid.IntRange(0, 4).Draw(rt, "ty")
		e := overworld.NewEnemy("e", "goblin", x, y, step)
		e.StartApproaching()
		for i := 0; i < 20; i++ {
			before := e.DistanceTo(tx, ty)
			arrived := e.MoveTowardBattle(step, tx, ty, m)
			after := e.DistanceTo(tx, ty)
			if after > before {
				rt.Fatalf("distance grew %d -> %d", before, after)
			}
			if before > 0 && after != before-1 {
				rt.Fatalf("no progress on open ground")
			}
			if arrived != (after == 0) {
				rt.Fatalf("arrived=%v at distance %d", arrived, after)
			}
		}
	})
}

const testMap = `
name: corridor
tiles:
  - "......."
  - "......."
  - "......."
player: { x: 3, y: 1 }
enemies:
  - { type: goblin, x: 4, y: 1 }
  - { type: slime, x: 0, y: 1 }
  - { type: skeleton, x: 6, y: 2 }
`

func testScene(t *testing.T) *overworld.Scene {
	t.Helper()
	mf, err := overworld.ParseMapFile([]byte(testMap))
	require.NoError(t, err)
	s, err := overworld.NewScene(mf, content.Default(), &dice.Fixed{}, step, zaptest.NewLogger(t))
	require.NoError(t, err)
	return s
}

func TestDefaultScene_Loads(t *testing.T) {
	s, err := overworld.DefaultScene(content.Default(), &dice.Fixed{}, step, zaptest.NewLogger(t))
	require.NoError(t, err)
	assert.Len(t, s.MapEnemies(), 5)
	assert.Equal(t, 5, s.Remaining())
	require.NotNil(t, s.NearestEnemy())
	assert.Equal(t, "enemy_0", s.NearestEnemy().ID())
}

func TestNewScene_Rejects(t *testing.T) {
	bad := &overworld.MapFile{
		Tiles:   []string{".#"},
		Player:  overworld.Point{X: 1},
		Enemies: []overworld.Spawn{{Type: "dragon"}, {Type: "goblin", X: 1}},
	}
	_, err := overworld.NewScene(bad, content.Default(), &dice.Fixed{}, step, nil)
	require.Error(t, err)
	assert.ErrorContains(t, err, "player start")
	assert.ErrorContains(t, err, "unknown type")
	assert.ErrorContains(t, err, "not walkable")
}

func TestLoadScene_FromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "map.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testMap), 0644))
	s, err := overworld.LoadScene(path, content.Default(), &dice.Fixed{}, step, nil)
	require.NoError(t, err)
	assert.Len(t, s.MapEnemies(), 3)

	_, err = overworld.LoadScene(filepath.Join(t.TempDir(), "missing.yaml"), content.Default(), &dice.Fixed{}, step, nil)
	assert.Error(t, err)
}

func TestScene_StartBattle(t *testing.T) {
	s := testScene(t)
	trigger := s.NearestEnemy()
	require.Equal(t, "enemy_0", trigger.ID())

	setup, err := s.StartBattle(trigger)
	require.NoError(t, err)
	assert.True(t, s.BattleActive())
	assert.Equal(t, overworld.StateInBattle, trigger.State())
	require.Len(t, setup.Squads, 1)
	assert.Equal(t, combat.DirFront, setup.Squads[0].Direction)
	assert.Equal(t, "goblin_small", setup.Squads[0].Formation.ID)
	assert.Equal(t, []string{"enemy_0"}, setup.Squads[0].SourceEnemyIDs)
	assert.Equal(t, 3, setup.PlayerX)

	_, err = s.StartBattle(s.NearestEnemy())
	assert.ErrorIs(t, err, overworld.ErrBattleActive)
}

func TestScene_ReadyReinforcementsReportsOnce(t *testing.T) {
	s := testScene(t)
	slime, ok := s.Enemy("enemy_1")
	require.True(t, ok)
	slime.StartApproaching()
	for i := 0; i < 3; i++ {
		slime.MoveTowardBattle(step, s.PlayerX, s.PlayerY, s.Walkability())
	}
	require.True(t, slime.ReadyToJoin())

	arrivals := s.ReadyReinforcements(s.PlayerX, s.PlayerY)
	require.Len(t, arrivals, 1)
	assert.Equal(t, combat.DirLeft, arrivals[0].Direction)
	assert.Equal(t, "slime_cluster", arrivals[0].Formation.ID)
	assert.Equal(t, []string{"enemy_1"}, arrivals[0].SourceEnemyIDs)
	assert.Equal(t, overworld.StateInBattle, slime.State())

	assert.Empty(t, s.ReadyReinforcements(s.PlayerX, s.PlayerY))
}

func TestScene_EndBattle(t *testing.T) {
	s := testScene(t)
	goblin, _ := s.Enemy("enemy_0")
	slime, _ := s.Enemy("enemy_1")
	skeleton, _ := s.Enemy("enemy_2")
	_, err := s.StartBattle(goblin)
	require.NoError(t, err)
	slime.StartApproaching()
	skeleton.EnterBattle()

	s.EndBattle([]string{"enemy_0", "nobody"}, true)
	assert.False(t, s.BattleActive())
	assert.False(t, goblin.IsAlive())
	assert.Equal(t, overworld.StatePatrol, slime.State())
	assert.Equal(t, overworld.StatePatrol, skeleton.State())
	assert.Equal(t, 2, s.Remaining())

	_, err = s.StartBattle(skeleton)
	require.NoError(t, err)
	s.EndBattle([]string{"enemy_2"}, false)
	assert.True(t, skeleton.IsAlive(), "a lost battle kills nobody")
}

func TestScene_DrivesEngineReinforcements(t *testing.T) {
	s := testScene(t)
	tables := content.Default()
	e, err := combat.NewEngine(combat.Deps{
		Tables:    tables,
		Policy:    idlePolicy{},
		Source:    &dice.Fixed{Float: 0.5},
		Overworld: s,
		Logger:    zaptest.NewLogger(t),
	})
	require.NoError(t, err)

	setup, err := s.StartBattle(s.NearestEnemy())
	require.NoError(t, err)
	e.Init(setup)

	slime, _ := s.Enemy("enemy_1")
	skeleton, _ := s.Enemy("enemy_2")
	assert.True(t, slime.Approaching())
	assert.True(t, skeleton.Approaching())

	for i := 0; i < 1000 && e.State() != combat.StateReinforcement; i++ {
		e.Update(16 * time.Millisecond)
	}
	require.Equal(t, combat.StateReinforcement, e.State())
	assert.True(t, e.Squads().Grid(combat.DirLeft).Active)
	assert.Len(t, e.Squads().Grid(combat.DirLeft).AliveUnits(), 3)
	assert.Contains(t, e.DefeatedOverworldIDs(), "enemy_1")
	assert.Equal(t, overworld.StateInBattle, slime.State())
}

type idlePolicy struct{}

func (idlePolicy) ChooseAction(*combat.Combatant, []*combat.Combatant, []*combat.Combatant) *combat.Decision {
	return nil
}
