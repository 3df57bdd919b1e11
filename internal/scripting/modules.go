package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules installs the battle global into L:
//
//	battle.log(msg)     writes msg to the Go logger at Debug level
//	battle.random(n)    returns a uniform integer in [1, n]
//	battle.chance(p)    returns true with probability p
//
// Precondition: L must be from NewSandboxedState.
func (m *Manager) RegisterModules(L *lua.LState, scope string) {
	battle := L.NewTable()
	L.SetFuncs(battle, map[string]lua.LGFunction{
		"log": func(L *lua.LState) int {
			m.logger.Debug("lua", zap.String("scope", scope), zap.String("msg", L.CheckString(1)))
			return 0
		},
		"random": func(L *lua.LState) int {
			n := L.CheckInt(1)
			if n <= 0 {
				L.ArgError(1, "n must be positive")
				return 0
			}
			L.Push(lua.LNumber(m.src.Intn(n) + 1))
			return 1
		},
		"chance": func(L *lua.LState) int {
			p := float64(L.CheckNumber(1))
			L.Push(lua.LBool(m.src.Float64() < p))
			return 1
		},
	})
	L.SetGlobal("battle", battle)
}
