package combat_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

type fakeEnemy struct {
	id          string
	dist        int
	engaged     bool
	approaching bool
	moved       time.Duration
}

func (f *fakeEnemy) ID() string              { return f.id }
func (f *fakeEnemy) IsAlive() bool           { return true }
func (f *fakeEnemy) Engaged() bool           { return f.engaged }
func (f *fakeEnemy) Approaching() bool       { return f.approaching }
func (f *fakeEnemy) DistanceTo(_, _ int) int { return f.dist }
func (f *fakeEnemy) StartApproaching()       { f.approaching = true }

func (f *fakeEnemy) MoveTowardBattle(delta time.Duration, _, _ int, _ combat.Walkability) bool {
	f.moved += delta
	return false
}

type openGround struct{}

func (openGround) IsWalkable(_, _ int) bool { return true }

type fakeOverworld struct {
	enemies []*fakeEnemy
	pending []combat.Arrival
}

func (o *fakeOverworld) Enemies() []combat.OverworldEnemy {
	out := make([]combat.OverworldEnemy, len(o.enemies))
	for i, e := range o.enemies {
		out[i] = e
	}
	return out
}

func (o *fakeOverworld) Walkability() combat.Walkability { return openGround{} }

func (o *fakeOverworld) ReadyReinforcements(_, _ int) []combat.Arrival {
	out := o.pending
	o.pending = nil
	return out
}

func TestEngine_StartsApproachWithinRange(t *testing.T) {
	near := &fakeEnemy{id: "near", dist: 5}
	edge := &fakeEnemy{id: "edge", dist: 12}
	far := &fakeEnemy{id: "far", dist: 13}
	busy := &fakeEnemy{id: "busy", dist: 2, engaged: true}
	self := &fakeEnemy{id: "self", dist: 0}
	ow := &fakeOverworld{enemies: []*fakeEnemy{near, edge, far, busy, self}}

	e := newEngine(t, idle, ow)
	startBattle(t, e, "goblin_small")

	assert.True(t, near.approaching)
	assert.True(t, edge.approaching)
	assert.False(t, far.approaching)
	assert.False(t, busy.approaching)
	assert.False(t, self.approaching)

	e.Update(10 * time.Millisecond)
	assert.Equal(t, 10*time.Millisecond, near.moved)
	assert.Zero(t, far.moved)
}

func TestEngine_ReinforcementArrival(t *testing.T) {
	ow := &fakeOverworld{}
	e := newEngine(t, idle, ow)
	startBattle(t, e, "goblin_small")
	assert.NotContains(t, e.Squads().ActiveDirections(), combat.DirLeft)

	ow.pending = []combat.Arrival{{
		Direction:      combat.DirLeft,
		Formation:      formation(t, "goblin_pair"),
		SourceEnemyIDs: []string{"enemy_7"},
	}}
	e.Update(time.Millisecond)
	require.Equal(t, combat.StateReinforcement, e.State())

	left := e.Squads().Grid(combat.DirLeft)
	assert.True(t, left.Active)
	assert.True(t, left.Entering)
	assert.Len(t, left.AliveUnits(), 2)
	assert.Len(t, e.Squads().Enemies(), 3)
	assert.Contains(t, e.Log(), "Enemy reinforcements appear from the left flank!")
	assert.Contains(t, e.DefeatedOverworldIDs(), "enemy_7")

	e.Update(250 * time.Millisecond)
	assert.Equal(t, combat.StateReinforcement, e.State())
	assert.True(t, left.Entering)

	e.Update(250 * time.Millisecond)
	assert.False(t, left.Entering)
	assert.Zero(t, left.SlideOffset)
	assert.Equal(t, combat.StateRunning, e.State())
}

func TestEngine_ReinforcementIntoCenterIgnored(t *testing.T) {
	ow := &fakeOverworld{}
	e := newEngine(t, idle, ow)
	startBattle(t, e, "goblin_small")

	ow.pending = []combat.Arrival{{Direction: combat.DirCenter, Formation: formation(t, "goblin_small")}}
	e.Update(time.Millisecond)
	assert.Equal(t, combat.StateRunning, e.State())
	assert.Len(t, e.Squads().Enemies(), 1)
}
