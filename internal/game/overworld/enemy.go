package overworld

import (
	"time"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// EnemyState is the lifecycle phase of a map enemy.
type EnemyState int

const (
	StatePatrol EnemyState = iota
	StateApproachingBattle
	StateInBattle
	StateDead
)

// String returns the snake_case state name.
func (s EnemyState) String() string {
	switch s {
	case StatePatrol:
		return "patrol"
	case StateApproachingBattle:
		return "approaching_battle"
	case StateInBattle:
		return "in_battle"
	case StateDead:
		return "dead"
	default:
		return "unknown"
	}
}

// DefaultApproachStep is how long an approaching enemy takes to cross one tile.
const DefaultApproachStep = 500 * time.Millisecond

// Enemy is one enemy standing on the overworld map.
type Enemy struct {
	id   string
	Type string
	X    int
	Y    int

	state        EnemyState
	alive        bool
	step         time.Duration
	approachTime time.Duration
	readyToJoin  bool

	// prevX/prevY is the tile left by the most recent step.
	prevX, prevY int
	moved        bool
}

// NewEnemy returns a living, patrolling enemy at (x, y).
//
// Precondition: step > 0; non-positive values use DefaultApproachStep.
func NewEnemy(id, enemyType string, x, y int, step time.Duration) *Enemy {
	if step <= 0 {
		step = DefaultApproachStep
	}
	return &Enemy{id: id, Type: enemyType, X: x, Y: y, alive: true, step: step}
}

// ID implements combat.OverworldEnemy.
func (e *Enemy) ID() string { return e.id }

// State returns the enemy's lifecycle phase.
func (e *Enemy) State() EnemyState { return e.state }

// IsAlive implements combat.OverworldEnemy.
func (e *Enemy) IsAlive() bool { return e.alive }

// Engaged implements combat.OverworldEnemy.
func (e *Enemy) Engaged() bool {
	return e.state == StateInBattle || e.state == StateApproachingBattle || e.state == StateDead
}

// Approaching implements combat.OverworldEnemy.
func (e *Enemy) Approaching() bool { return e.state == StateApproachingBattle }

// ReadyToJoin reports whether the enemy has reached the battle and awaits pickup.
func (e *Enemy) ReadyToJoin() bool { return e.readyToJoin }

// DistanceTo returns the Manhattan distance to (x, y).
func (e *Enemy) DistanceTo(x, y int) int {
	return abs(e.X-x) + abs(e.Y-y)
}

// StartApproaching begins converging on a battle. Engaged enemies are unaffected.
func (e *Enemy) StartApproaching() {
	if !e.alive || e.Engaged() {
		return
	}
	e.state = StateApproachingBattle
	e.approachTime = 0
	e.readyToJoin = false
}

// MoveTowardBattle accumulates delta and moves one tile toward (tx, ty) per
// elapsed step. It reports whether the enemy stands on the target tile.
//
// Postcondition: Returns false without moving unless the enemy is approaching.
func (e *Enemy) MoveTowardBattle(delta time.Duration, tx, ty int, walk combat.Walkability) bool {
	if e.state != StateApproachingBattle {
		return false
	}
	if e.X == tx && e.Y == ty {
		e.readyToJoin = true
		return true
	}
	e.approachTime += delta
	if e.approachTime < e.step {
		return false
	}
	e.approachTime -= e.step
	e.moveToward(tx, ty, walk)
	if e.X == tx && e.Y == ty {
		e.readyToJoin = true
		return true
	}
	return false
}

// moveToward steps one tile along the axis with the larger distance, falling
// back to the other axis when that tile is blocked.
func (e *Enemy) moveToward(tx, ty int, walk combat.Walkability) {
	dx, dy := tx-e.X, ty-e.Y
	nx, ny := e.X, e.Y
	if abs(dx) >= abs(dy) {
		nx += sign(dx)
		if !walk.IsWalkable(nx, ny) {
			nx = e.X
			ny += sign(dy)
		}
	} else {
		ny += sign(dy)
		if !walk.IsWalkable(nx, ny) {
			ny = e.Y
			nx += sign(dx)
		}
	}
	if (nx != e.X || ny != e.Y) && walk.IsWalkable(nx, ny) {
		e.prevX, e.prevY = e.X, e.Y
		e.moved = true
		e.X, e.Y = nx, ny
	}
}

// EnterBattle marks the enemy as fighting.
func (e *Enemy) EnterBattle() {
	e.state = StateInBattle
	e.readyToJoin = false
}

// Die removes the enemy from play.
func (e *Enemy) Die() {
	e.alive = false
	e.state = StateDead
	e.readyToJoin = false
}

// ReturnToPatrol clears any battle involvement of a living enemy.
func (e *Enemy) ReturnToPatrol() {
	if !e.alive {
		return
	}
	e.state = StatePatrol
	e.approachTime = 0
	e.readyToJoin = false
}

// DirectionRelativeTo maps the enemy's offset from (px, py) onto a battle
// direction. The dominant axis wins; ties go to the vertical axis.
func (e *Enemy) DirectionRelativeTo(px, py int) combat.Direction {
	return directionOf(e.X-px, e.Y-py)
}

// ArrivalDirection is the side an enemy standing on (px, py) joins from: the
// direction of the tile it stepped in from. Enemies elsewhere use DirectionRelativeTo.
func (e *Enemy) ArrivalDirection(px, py int) combat.Direction {
	if e.X == px && e.Y == py && e.moved {
		return directionOf(e.prevX-px, e.prevY-py)
	}
	return e.DirectionRelativeTo(px, py)
}

func directionOf(dx, dy int) combat.Direction {
	if abs(dx) > abs(dy) {
		if dx > 0 {
			return combat.DirRight
		}
		return combat.DirLeft
	}
	if dy > 0 {
		return combat.DirFront
	}
	return combat.DirBack
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
