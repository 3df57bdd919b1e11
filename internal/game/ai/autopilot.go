package ai

import (
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
)

// Autopilot answers player prompts with the same decision logic enemies use,
// so a battle can run unattended.
type Autopilot struct {
	policy *RandomPolicy
	logger *zap.Logger
}

// NewAutopilot returns an Autopilot deciding with policy.
//
// Precondition: policy must not be nil.
func NewAutopilot(policy *RandomPolicy, logger *zap.Logger) *Autopilot {
	if policy == nil {
		panic("ai.NewAutopilot: policy must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Autopilot{policy: policy, logger: logger}
}

// Act issues a command if e is waiting on the player. It reports whether a
// command was issued.
func (a *Autopilot) Act(e *combat.Engine) (bool, error) {
	switch e.State() {
	case combat.StatePlayerMenu:
		unit := e.ActiveUnit()
		d := a.policy.ChooseAction(unit, e.Squads().Enemies(), e.Squads().Players())
		if d == nil {
			return true, e.CancelMenu()
		}
		a.logger.Debug("autopilot decision",
			zap.String("unit", unit.ID),
			zap.String("ability", d.AbilityID),
			zap.Int("targets", len(d.Targets)),
		)
		if err := e.PlayerSelectAbility(d.AbilityID); err != nil {
			return true, err
		}
		if e.State() == combat.StatePlayerTarget {
			return true, e.PlayerExecute(d.Targets)
		}
		return true, nil
	case combat.StatePlayerTarget:
		return true, e.CancelTargeting()
	default:
		return false, nil
	}
}
