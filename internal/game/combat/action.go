package combat

import "github.com/cory-johannsen/skirmish/internal/game/content"

// Action is a committed intent: an actor using an ability on a fixed target list.
type Action struct {
	Actor   *Combatant
	Ability *content.Ability
	Targets []*Combatant
}

// Decision is what a Policy returns for an enemy turn.
type Decision struct {
	AbilityID string
	Ability   *content.Ability
	Targets   []*Combatant
}

// Policy chooses an action for a ready non-player combatant.
type Policy interface {
	// ChooseAction returns nil when the unit has nothing it can do.
	ChooseAction(unit *Combatant, opponents, allies []*Combatant) *Decision
}

// ActionQueue holds committed actions in first-in first-out order.
type ActionQueue struct {
	actions []*Action
}

// Push appends a to the tail of the queue.
func (q *ActionQueue) Push(a *Action) {
	q.actions = append(q.actions, a)
}

// Pop removes and returns the head of the queue, or nil if empty.
func (q *ActionQueue) Pop() *Action {
	if len(q.actions) == 0 {
		return nil
	}
	a := q.actions[0]
	q.actions[0] = nil
	q.actions = q.actions[1:]
	return a
}

// Len returns the number of queued actions.
func (q *ActionQueue) Len() int { return len(q.actions) }

// Snapshot returns a copy of the queued actions in order.
func (q *ActionQueue) Snapshot() []*Action {
	out := make([]*Action, len(q.actions))
	copy(out, q.actions)
	return out
}

// Clear discards every queued action.
func (q *ActionQueue) Clear() { q.actions = nil }
