package ai

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/combat"
	"github.com/cory-johannsen/skirmish/internal/game/content"
	"github.com/cory-johannsen/skirmish/internal/scripting"
)

// UsableHook is the Lua global consulted by ScriptedPreconditions:
//
//	function ability_usable(unit, ability_id) return true end
const UsableHook = "ability_usable"

// ScriptCaller is the interface required to evaluate Lua preconditions.
type ScriptCaller interface {
	// CallUnitHook calls a named Lua function in scope's VM with unit as a table.
	// Returns (LNil, nil) if the function is not defined.
	CallUnitHook(scope, hook string, unit scripting.UnitInfo, args ...lua.LValue) (lua.LValue, error)
}

// ScriptedPreconditions lets per-enemy-type Lua scripts veto abilities. The
// scope is the unit's template type, so a script directory named "slime"
// governs slimes.
//
// An undefined hook, a nil result or a script error all count as usable.
type ScriptedPreconditions struct {
	caller ScriptCaller
	logger *zap.Logger
}

// NewScriptedPreconditions wraps caller.
//
// Precondition: caller must not be nil.
func NewScriptedPreconditions(caller ScriptCaller, logger *zap.Logger) *ScriptedPreconditions {
	if caller == nil {
		panic("ai.NewScriptedPreconditions: caller must not be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScriptedPreconditions{caller: caller, logger: logger}
}

// Usable implements AbilityFilter.
func (s *ScriptedPreconditions) Usable(unit *combat.Combatant, ability *content.Ability) bool {
	ret, err := s.caller.CallUnitHook(unit.Type, UsableHook, UnitInfo(unit), lua.LString(ability.ID))
	if err != nil {
		s.logger.Warn("ability precondition failed",
			zap.String("unit", unit.ID),
			zap.String("ability", ability.ID),
			zap.Error(err),
		)
		return true
	}
	if ret == lua.LNil {
		return true
	}
	return lua.LVAsBool(ret)
}

// UnitInfo snapshots c for a Lua hook.
func UnitInfo(c *combat.Combatant) scripting.UnitInfo {
	return scripting.UnitInfo{
		ID:    c.ID,
		Type:  c.Type,
		Name:  c.Name,
		Side:  c.Side.String(),
		HP:    c.HP,
		MaxHP: c.MaxHP,
		MP:    c.MP,
		MaxMP: c.MaxMP,
		Row:   c.Row,
		Col:   c.Col,
	}
}
