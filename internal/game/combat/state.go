package combat

// State is the battle state machine's current phase.
type State int

const (
	StateStarting State = iota
	StateRunning
	StatePlayerMenu
	StatePlayerTarget
	StateExecuting
	StateReinforcement
	StateVictory
	StateDefeat
)

var stateNames = [...]string{
	StateStarting:      "STARTING",
	StateRunning:       "RUNNING",
	StatePlayerMenu:    "PLAYER_MENU",
	StatePlayerTarget:  "PLAYER_TARGET",
	StateExecuting:     "EXECUTING",
	StateReinforcement: "REINFORCEMENT",
	StateVictory:       "VICTORY",
	StateDefeat:        "DEFEAT",
}

// String returns the upper-case state name.
func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "UNKNOWN"
	}
	return stateNames[s]
}

// Terminal reports whether the battle is over.
func (s State) Terminal() bool {
	return s == StateVictory || s == StateDefeat
}

// AwaitingPlayer reports whether the engine is waiting on a player command.
func (s State) AwaitingPlayer() bool {
	return s == StatePlayerMenu || s == StatePlayerTarget
}
