// Package scripting provides a sandboxed GopherLua environment for enemy
// behavior scripts. It has no dependency on the battle packages; callers pass
// plain unit snapshots and receive plain Lua values back.
package scripting

import (
	"context"
	"sync/atomic"

	lua "github.com/yuin/gopher-lua"
)

// DefaultInstructionLimit is the maximum number of Lua opcodes one load or
// hook call may execute when no override is configured.
const DefaultInstructionLimit = 100_000

// opBudget is a context that cancels itself once Done has been called limit
// times. GopherLua's main loop polls Done once per opcode, so this is an exact
// instruction cap.
type opBudget struct {
	context.Context
	cancel context.CancelFunc
	left   atomic.Int64
}

func (b *opBudget) Done() <-chan struct{} {
	if b.left.Add(-1) <= 0 {
		b.cancel()
	}
	return b.Context.Done()
}

// newOpBudget returns a context spent after limit opcodes.
// Precondition: limit > 0.
func newOpBudget(limit int) (*opBudget, context.CancelFunc) {
	base, cancel := context.WithCancel(context.Background())
	b := &opBudget{Context: base, cancel: cancel}
	b.left.Store(int64(limit))
	return b, cancel
}

// NewSandboxedState creates a GopherLua LState with:
//   - Only safe stdlib loaded: base, table, string, math
//   - Dangerous globals removed: dofile, loadfile, load, collectgarbage, require
//
// Postcondition: Returns a non-nil LState with no instruction budget attached;
// use Budget around each execution. The caller must call L.Close().
func NewSandboxedState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	lua.OpenBase(L)
	lua.OpenTable(L)
	lua.OpenString(L)
	lua.OpenMath(L)

	for _, name := range []string{"dofile", "loadfile", "load", "collectgarbage", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}

// Budget attaches a fresh instruction budget of limit opcodes to L and returns
// a release func that detaches it. Each execution gets its own budget, so a
// VM stays usable after a previous call ran out.
//
// Precondition: limit >= 0; 0 uses DefaultInstructionLimit.
func Budget(L *lua.LState, limit int) (release func()) {
	if limit <= 0 {
		limit = DefaultInstructionLimit
	}
	ctx, cancel := newOpBudget(limit)
	L.SetContext(ctx)
	return func() {
		L.RemoveContext()
		cancel()
	}
}
