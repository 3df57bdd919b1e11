package combat

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

var (
	// ErrNotAwaitingCommand is returned when a player command arrives outside PLAYER_MENU/PLAYER_TARGET.
	ErrNotAwaitingCommand = errors.New("combat: not awaiting a player command")
	// ErrUnknownAbility is returned when the selected ability is not in the ability table.
	ErrUnknownAbility = errors.New("combat: unknown ability")
	// ErrNoTargets is returned when PlayerExecute is given no targets.
	ErrNoTargets = errors.New("combat: no targets")
	// ErrNotTargeting is returned by CancelTargeting outside PLAYER_TARGET.
	ErrNotTargeting = errors.New("combat: not selecting a target")
	// ErrNoAbilitySelected is returned by PlayerExecute before an ability is chosen.
	ErrNoAbilitySelected = errors.New("combat: no ability selected")
)

// Rewards accumulates what the party earns from defeated enemies.
type Rewards struct {
	Exp  int
	Gold int
}

// Setup describes the opening of one battle.
type Setup struct {
	// Squads are the enemy groups present at the start.
	Squads []Arrival
	// PlayerX and PlayerY are the party's overworld tile.
	PlayerX int
	PlayerY int
}

// Deps are the collaborators an Engine is built from.
type Deps struct {
	Settings Settings
	Tables   *content.Tables
	Policy   Policy
	Source   dice.Source
	// Overworld is optional; without it no reinforcements arrive.
	Overworld Overworld
	// Logger is optional; nil disables logging.
	Logger *zap.Logger
}

// Engine orchestrates one battle: it owns the scheduler, the squads and the
// action queue, and advances them only from Update and the player commands.
type Engine struct {
	settings  Settings
	tables    *content.Tables
	policy    Policy
	overworld Overworld
	logger    *zap.Logger

	scheduler *Scheduler
	squads    *Squads
	resolver  *Resolver
	log       *BattleLog
	numbers   []DamageNumber
	queue     ActionQueue

	state        State
	introElapsed time.Duration
	window       Window
	executing    *Action

	activeUnit *Combatant
	selected   *content.Ability

	rewards           Rewards
	defeatedOverworld []string

	playerX, playerY int
	approaching      []OverworldEnemy

	observers []func(from, to State)
}

// NewEngine validates deps and returns an engine ready for Init.
//
// Precondition: deps.Tables, deps.Policy and deps.Source must be non-nil.
func NewEngine(deps Deps) (*Engine, error) {
	if deps.Tables == nil {
		return nil, errors.New("combat: tables are required")
	}
	if deps.Policy == nil {
		return nil, errors.New("combat: policy is required")
	}
	if deps.Source == nil {
		return nil, errors.New("combat: random source is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	settings := deps.Settings.withDefaults()
	e := &Engine{
		settings:  settings,
		tables:    deps.Tables,
		policy:    deps.Policy,
		overworld: deps.Overworld,
		logger:    logger,
		resolver:  NewResolver(deps.Source, settings),
	}
	e.reset()
	return e, nil
}

func (e *Engine) reset() {
	e.scheduler = NewScheduler(e.settings)
	e.squads = NewSquads(e.tables, e.settings)
	e.log = NewBattleLog(e.settings.LogCapacity)
	e.numbers = nil
	e.queue.Clear()
	e.state = StateStarting
	e.introElapsed = 0
	e.window = Window{}
	e.executing = nil
	e.activeUnit = nil
	e.selected = nil
	e.rewards = Rewards{}
	e.defeatedOverworld = nil
	e.approaching = nil
}

// Init starts a new battle from setup, discarding any previous battle state.
//
// Postcondition: State() == StateStarting; the party occupies the center grid
// and each setup squad its direction.
func (e *Engine) Init(setup Setup) {
	e.reset()
	e.playerX, e.playerY = setup.PlayerX, setup.PlayerY
	party := e.squads.SetupPlayerParty(e.tables.Party)
	enemies := 0
	for _, sq := range setup.Squads {
		enemies += len(e.squads.AddEnemySquad(sq.Direction, sq.Formation))
		e.defeatedOverworld = append(e.defeatedOverworld, sq.SourceEnemyIDs...)
	}
	e.initApproaching()
	e.log.Add("Battle start!")
	e.logger.Info("battle started",
		zap.Int("party", len(party)),
		zap.Int("enemies", enemies),
		zap.Int("approaching", len(e.approaching)),
	)
}

// OnTransition registers fn to be called after every state change.
func (e *Engine) OnTransition(fn func(from, to State)) {
	e.observers = append(e.observers, fn)
}

func (e *Engine) transition(to State) {
	from := e.state
	e.state = to
	e.logger.Debug("battle state", zap.Stringer("from", from), zap.Stringer("to", to))
	for _, fn := range e.observers {
		fn(from, to)
	}
}

// Update advances the battle by delta of simulation time.
// Negative deltas are treated as zero.
func (e *Engine) Update(delta time.Duration) {
	if delta < 0 {
		delta = 0
	}
	e.numbers = ageNumbers(e.numbers, delta)
	e.squads.AdvanceAnimations(delta)

	switch e.state {
	case StateStarting:
		e.introElapsed += delta
		if e.introElapsed >= e.settings.IntroDelay {
			e.transition(StateRunning)
		}
	case StateRunning:
		e.updateRunning(delta)
	case StateExecuting:
		e.updateExecuting(delta)
	case StateReinforcement:
		if !e.squads.AnyEntering() {
			e.transition(StateRunning)
		}
	}
}

func (e *Engine) updateRunning(delta time.Duration) {
	e.scheduler.Update(delta, e.squads.Alive())

	for _, u := range e.squads.Alive() {
		if !u.Ready {
			continue
		}
		if u.IsPlayer() {
			e.activeUnit = u
			e.selected = nil
			e.scheduler.Pause()
			e.transition(StatePlayerMenu)
			return
		}
		d := e.policy.ChooseAction(u, e.squads.Players(), e.squads.Enemies())
		if d == nil {
			continue
		}
		ab := d.Ability
		if ab == nil {
			ab, _ = e.tables.Ability(d.AbilityID)
		}
		if ab == nil {
			e.logger.Warn("policy chose unknown ability", zap.String("unit", u.ID), zap.String("ability", d.AbilityID))
			continue
		}
		e.queue.Push(&Action{Actor: u, Ability: ab, Targets: d.Targets})
		e.scheduler.Reset(u)
	}

	if e.queue.Len() > 0 && e.executing == nil {
		e.beginExecuting()
		return
	}
	e.checkReinforcements(delta)
}

func (e *Engine) beginExecuting() {
	e.executing = e.queue.Pop()
	e.window.Start(e.settings.ExecuteWindow)
	e.transition(StateExecuting)
}

func (e *Engine) updateExecuting(delta time.Duration) {
	e.window.Advance(delta)
	if e.executing != nil && e.window.PastMidpoint() {
		e.resolve(e.executing)
		e.executing = nil
	}
	if !e.window.Done() {
		return
	}
	if !e.squads.HasAliveEnemies() {
		e.victory()
		return
	}
	if !e.squads.HasAlivePlayers() {
		e.defeat()
		return
	}
	e.squads.RemoveDead()
	e.scheduler.Resume()
	e.transition(StateRunning)
}

func (e *Engine) resolve(a *Action) {
	if !a.Actor.Alive {
		e.logger.Debug("dropping action of dead actor", zap.String("actor", a.Actor.ID))
		return
	}
	for _, ev := range e.resolver.Resolve(a) {
		switch ev.Kind {
		case EventDefend:
			e.log.Add(fmt.Sprintf("%s takes a defensive stance", ev.Actor.Name))
		case EventHeal:
			e.log.Add(fmt.Sprintf("%s uses %s on %s, restoring %d HP", ev.Actor.Name, ev.Ability.Name, ev.Target.Name, ev.Amount))
			e.addNumber(ev.Target, "+"+strconv.Itoa(ev.Amount), healColor)
		case EventSteal:
			if ev.Success {
				e.log.Add(fmt.Sprintf("%s stole an item!", ev.Actor.Name))
			} else {
				e.log.Add(fmt.Sprintf("%s failed to steal", ev.Actor.Name))
			}
		case EventDamage:
			e.log.Add(fmt.Sprintf("%s uses %s on %s for %d damage", ev.Actor.Name, ev.Ability.Name, ev.Target.Name, ev.Amount))
			color := ev.Ability.Color
			if color == "" {
				color = damageColor
			}
			e.addNumber(ev.Target, strconv.Itoa(ev.Amount), color)
		case EventDefeat:
			e.log.Add(fmt.Sprintf("%s was defeated!", ev.Target.Name))
			e.rewards.Exp += ev.Target.Exp
			e.rewards.Gold += ev.Target.Gold
		}
	}
	e.logger.Debug("action resolved",
		zap.String("actor", a.Actor.ID),
		zap.String("ability", a.Ability.ID),
		zap.Int("targets", len(a.Targets)),
	)
}

func (e *Engine) addNumber(target *Combatant, value, color string) {
	e.numbers = append(e.numbers, DamageNumber{
		TargetID: target.ID,
		X:        target.ScreenX,
		Y:        target.ScreenY,
		Value:    value,
		Color:    color,
		Lifetime: e.settings.NumberLifetime,
	})
}

func (e *Engine) victory() {
	e.transition(StateVictory)
	e.log.Add("Victory!")
	e.log.Add(fmt.Sprintf("Gained %d EXP and %d gold", e.rewards.Exp, e.rewards.Gold))
	e.logger.Info("battle won",
		zap.Int("exp", e.rewards.Exp),
		zap.Int("gold", e.rewards.Gold),
		zap.Strings("defeated_overworld", e.defeatedOverworld),
	)
}

func (e *Engine) defeat() {
	e.transition(StateDefeat)
	e.log.Add("The party has fallen...")
	e.logger.Info("battle lost")
}

// PlayerSelectAbility chooses the active unit's ability. Abilities that need
// no target selection are executed immediately.
//
// Precondition: State() == StatePlayerMenu.
// Postcondition: On success the engine is in PLAYER_TARGET or EXECUTING.
func (e *Engine) PlayerSelectAbility(id string) error {
	if e.state != StatePlayerMenu || e.activeUnit == nil {
		return ErrNotAwaitingCommand
	}
	ab, ok := e.tables.Ability(id)
	if !ok {
		e.logger.Warn("unknown ability selected", zap.String("ability", id))
		return fmt.Errorf("%w: %q", ErrUnknownAbility, id)
	}
	e.selected = ab
	switch ab.Target {
	case content.TargetSelf:
		return e.PlayerExecute([]*Combatant{e.activeUnit})
	case content.TargetAllAllies:
		return e.PlayerExecute(e.squads.Players())
	case content.TargetAllEnemies:
		return e.PlayerExecute(e.squads.Enemies())
	default:
		e.transition(StatePlayerTarget)
		return nil
	}
}

// PlayerExecute commits the selected ability against targets and starts execution.
//
// Precondition: State() is PLAYER_MENU or PLAYER_TARGET with an ability selected.
// Postcondition: the active unit's gauge is reset, its action is queued and
// the engine is EXECUTING the head of the queue.
func (e *Engine) PlayerExecute(targets []*Combatant) error {
	if !e.state.AwaitingPlayer() || e.activeUnit == nil {
		return ErrNotAwaitingCommand
	}
	if e.selected == nil {
		return ErrNoAbilitySelected
	}
	if len(targets) == 0 {
		return ErrNoTargets
	}
	ts := make([]*Combatant, len(targets))
	copy(ts, targets)
	e.scheduler.Reset(e.activeUnit)
	e.queue.Push(&Action{Actor: e.activeUnit, Ability: e.selected, Targets: ts})
	e.activeUnit = nil
	e.selected = nil
	if e.executing == nil {
		e.beginExecuting()
	}
	return nil
}

// CancelTargeting returns from target selection to the ability menu.
func (e *Engine) CancelTargeting() error {
	if e.state != StatePlayerTarget {
		return ErrNotTargeting
	}
	e.selected = nil
	e.transition(StatePlayerMenu)
	return nil
}

// CancelMenu gives up the active unit's turn. Its gauge is refunded to
// CancelRefund of the maximum and the scheduler resumes.
func (e *Engine) CancelMenu() error {
	if e.state != StatePlayerMenu || e.activeUnit == nil {
		return ErrNotAwaitingCommand
	}
	u := e.activeUnit
	u.Ready = false
	u.Gauge = u.GaugeMax * e.settings.CancelRefund
	e.activeUnit = nil
	e.selected = nil
	e.scheduler.Resume()
	e.transition(StateRunning)
	return nil
}

// State returns the current phase.
func (e *Engine) State() State { return e.state }

// Log returns the retained battle log lines, oldest first.
func (e *Engine) Log() []string { return e.log.Lines() }

// DamageNumbers returns a copy of the live floating numbers.
func (e *Engine) DamageNumbers() []DamageNumber {
	out := make([]DamageNumber, len(e.numbers))
	copy(out, e.numbers)
	return out
}

// Squads exposes the formation grids for rendering.
func (e *Engine) Squads() *Squads { return e.squads }

// Scheduler exposes the gauge scheduler, chiefly for its pause state and multiplier.
func (e *Engine) Scheduler() *Scheduler { return e.scheduler }

// ActiveUnit returns the player combatant awaiting a command, or nil.
func (e *Engine) ActiveUnit() *Combatant { return e.activeUnit }

// SelectedAbility returns the ability chosen in the menu, or nil.
func (e *Engine) SelectedAbility() *content.Ability { return e.selected }

// PendingActions returns the queued, not yet executing actions.
func (e *Engine) PendingActions() []*Action { return e.queue.Snapshot() }

// Rewards returns the totals accumulated from defeated enemies.
func (e *Engine) Rewards() Rewards { return e.rewards }

// DefeatedOverworldIDs lists the overworld enemies that fought in this battle.
func (e *Engine) DefeatedOverworldIDs() []string {
	out := make([]string, len(e.defeatedOverworld))
	copy(out, e.defeatedOverworld)
	return out
}

// AffordableAbilities returns the abilities u knows and can currently pay for,
// in the order u learned them.
func (e *Engine) AffordableAbilities(u *Combatant) []*content.Ability {
	var out []*content.Ability
	for _, id := range u.Abilities {
		if ab, ok := e.tables.Ability(id); ok && u.CanAfford(ab) {
			out = append(out, ab)
		}
	}
	return out
}
