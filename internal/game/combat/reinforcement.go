package combat

import (
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/content"
)

// Walkability answers whether an overworld tile can be entered.
type Walkability interface {
	IsWalkable(x, y int) bool
}

// OverworldEnemy is the view of a map enemy the battle needs for reinforcements.
type OverworldEnemy interface {
	ID() string
	IsAlive() bool
	// Engaged reports whether the enemy is already fighting or converging on a battle.
	Engaged() bool
	Approaching() bool
	DistanceTo(x, y int) int
	StartApproaching()
	// MoveTowardBattle advances the enemy's approach by delta and reports
	// whether it has reached (x, y).
	MoveTowardBattle(delta time.Duration, x, y int, walk Walkability) bool
}

// Arrival is one group of enemies joining the battle from a direction.
type Arrival struct {
	Direction      Direction
	Formation      *content.Formation
	SourceEnemyIDs []string
}

// Overworld is the map-side collaborator supplying reinforcements.
type Overworld interface {
	Enemies() []OverworldEnemy
	Walkability() Walkability
	// ReadyReinforcements returns enemies that have reached the battle since
	// the last call, grouped by arrival direction. Each enemy is reported once.
	ReadyReinforcements(playerX, playerY int) []Arrival
}

// initApproaching marks every unengaged overworld enemy within range as approaching.
func (e *Engine) initApproaching() {
	e.approaching = nil
	if e.overworld == nil {
		return
	}
	for _, oe := range e.overworld.Enemies() {
		if !oe.IsAlive() || oe.Engaged() {
			continue
		}
		d := oe.DistanceTo(e.playerX, e.playerY)
		if d > 0 && d <= e.settings.ApproachRange {
			oe.StartApproaching()
			e.approaching = append(e.approaching, oe)
		}
	}
	if len(e.approaching) > 0 {
		e.logger.Debug("enemies approaching battle", zap.Int("count", len(e.approaching)))
	}
}

// checkReinforcements moves approaching enemies and brings arrivals into the
// battle, entering REINFORCEMENT when at least one arrival produced a squad.
func (e *Engine) checkReinforcements(delta time.Duration) {
	if e.overworld == nil {
		return
	}
	walk := e.overworld.Walkability()
	for _, oe := range e.approaching {
		if oe.IsAlive() && oe.Approaching() {
			oe.MoveTowardBattle(delta, e.playerX, e.playerY, walk)
		}
	}
	arrivals := e.overworld.ReadyReinforcements(e.playerX, e.playerY)
	if len(arrivals) == 0 {
		return
	}
	still := e.approaching[:0]
	for _, oe := range e.approaching {
		if oe.IsAlive() && oe.Approaching() {
			still = append(still, oe)
		}
	}
	e.approaching = still

	joined := false
	for _, arr := range arrivals {
		units := e.squads.AddEnemySquad(arr.Direction, arr.Formation)
		if len(units) == 0 {
			continue
		}
		joined = true
		e.defeatedOverworld = append(e.defeatedOverworld, arr.SourceEnemyIDs...)
		e.log.Add("Enemy reinforcements appear from the " + arr.Direction.Label() + "!")
		e.logger.Info("reinforcements arrived",
			zap.String("direction", string(arr.Direction)),
			zap.Int("units", len(units)),
			zap.Strings("source_enemies", arr.SourceEnemyIDs),
		)
	}
	if joined {
		e.transition(StateReinforcement)
	}
}
