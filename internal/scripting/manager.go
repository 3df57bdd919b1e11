package scripting

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/cory-johannsen/skirmish/internal/game/dice"
)

// globalScope is the reserved key for shared scripts loaded via LoadGlobal.
// CallHook falls back to this VM when no scope VM is found.
const globalScope = "__global__"

// UnitInfo is a snapshot of a combatant passed to Lua hooks as a table.
type UnitInfo struct {
	ID    string
	Type  string
	Name  string
	Side  string
	HP    int
	MaxHP int
	MP    int
	MaxMP int
	Row   int
	Col   int
}

type vm struct {
	mu    sync.Mutex
	L     *lua.LState
	limit int
}

// Manager owns one sandboxed LState per scope (an enemy type, or the global
// fallback) and exposes hook dispatch.
//
// Manager is safe for concurrent use. Calls into one VM are serialized by
// that VM's mutex; different VMs run independently.
type Manager struct {
	mu     sync.RWMutex
	vms    map[string]*vm
	src    dice.Source
	logger *zap.Logger
}

// NewManager creates a Manager.
//
// Precondition: src must be non-nil; nil logger disables logging.
// Postcondition: Returns a non-nil Manager with no VMs.
func NewManager(src dice.Source, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		vms:    make(map[string]*vm),
		src:    src,
		logger: logger,
	}
}

// LoadScope creates a sandboxed VM for scope, registers the battle module,
// then executes every *.lua file in scriptDir in lexicographic order.
//
// Precondition: scope must be non-empty; scriptDir must be a readable directory.
// Postcondition: the scope VM replaces any previous one; returns error on Lua load failure.
func (m *Manager) LoadScope(scope, scriptDir string, instLimit int) error {
	if scope == "" {
		return fmt.Errorf("scripting: empty scope")
	}
	return m.loadInto(scope, scriptDir, instLimit)
}

// LoadGlobal creates the fallback VM consulted for scopes with no VM of their own.
func (m *Manager) LoadGlobal(scriptDir string, instLimit int) error {
	return m.loadInto(globalScope, scriptDir, instLimit)
}

// LoadTree loads root as the global VM and every immediate subdirectory of
// root as a scope named after the directory.
//
// Postcondition: Returns the loaded scope names, sorted.
func (m *Manager) LoadTree(root string, instLimit int) ([]string, error) {
	if err := m.LoadGlobal(root, instLimit); err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("scripting: reading script root %q: %w", root, err)
	}
	var scopes []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if err := m.LoadScope(e.Name(), filepath.Join(root, e.Name()), instLimit); err != nil {
			return nil, err
		}
		scopes = append(scopes, e.Name())
	}
	sort.Strings(scopes)
	return scopes, nil
}

func (m *Manager) loadInto(key, scriptDir string, instLimit int) error {
	L := NewSandboxedState()
	m.RegisterModules(L, key)

	entries, err := os.ReadDir(scriptDir)
	if err != nil {
		L.Close()
		return fmt.Errorf("scripting: reading script dir %q for %q: %w", scriptDir, key, err)
	}

	var luaFiles []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".lua" {
			luaFiles = append(luaFiles, filepath.Join(scriptDir, e.Name()))
		}
	}
	sort.Strings(luaFiles)

	for _, path := range luaFiles {
		release := Budget(L, instLimit)
		err := L.DoFile(path)
		release()
		if err != nil {
			L.Close()
			return fmt.Errorf("scripting: loading %q for %q: %w", path, key, err)
		}
	}

	m.mu.Lock()
	if old, ok := m.vms[key]; ok {
		old.mu.Lock()
		old.L.Close()
		old.mu.Unlock()
	}
	m.vms[key] = &vm{L: L, limit: instLimit}
	m.mu.Unlock()

	m.logger.Debug("scripting: scope loaded",
		zap.String("scope", key),
		zap.Int("files", len(luaFiles)),
	)
	return nil
}

// HasScope reports whether scope has its own VM.
func (m *Manager) HasScope(scope string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.vms[scope]
	return ok
}

func (m *Manager) lookup(scope string) *vm {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if v, ok := m.vms[scope]; ok {
		return v
	}
	return m.vms[globalScope]
}

// CallHook calls the named Lua global function in scope's VM. If the scope has
// no VM, the global VM is tried as a fallback. Returns (LNil, nil) if the hook
// is not defined or no VM exists. Lua runtime errors, including exhausting the
// instruction budget, are logged at Warn level and never propagated.
//
// Postcondition: Returns the first return value of the hook, or LNil.
func (m *Manager) CallHook(scope, hook string, args ...lua.LValue) (lua.LValue, error) {
	return m.call(scope, hook, func(*lua.LState) []lua.LValue { return args })
}

// CallUnitHook is CallHook with unit converted to a Lua table as the first argument.
func (m *Manager) CallUnitHook(scope, hook string, unit UnitInfo, args ...lua.LValue) (lua.LValue, error) {
	return m.call(scope, hook, func(L *lua.LState) []lua.LValue {
		return append([]lua.LValue{unitTable(L, unit)}, args...)
	})
}

func (m *Manager) call(scope, hook string, build func(*lua.LState) []lua.LValue) (lua.LValue, error) {
	v := m.lookup(scope)
	if v == nil {
		m.logger.Debug("scripting: no VM for scope",
			zap.String("scope", scope),
			zap.String("hook", hook),
		)
		return lua.LNil, nil
	}

	v.mu.Lock()
	defer v.mu.Unlock()
	L := v.L

	fn := L.GetGlobal(hook)
	if fn == lua.LNil {
		return lua.LNil, nil
	}

	release := Budget(L, v.limit)
	defer release()
	if err := L.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, build(L)...); err != nil {
		m.logger.Warn("scripting: Lua runtime error",
			zap.String("scope", scope),
			zap.String("hook", hook),
			zap.Error(err),
		)
		return lua.LNil, nil
	}

	ret := L.Get(-1)
	L.Pop(1)
	return ret, nil
}

func unitTable(L *lua.LState, u UnitInfo) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("id", lua.LString(u.ID))
	t.RawSetString("type", lua.LString(u.Type))
	t.RawSetString("name", lua.LString(u.Name))
	t.RawSetString("side", lua.LString(u.Side))
	t.RawSetString("hp", lua.LNumber(u.HP))
	t.RawSetString("max_hp", lua.LNumber(u.MaxHP))
	t.RawSetString("mp", lua.LNumber(u.MP))
	t.RawSetString("max_mp", lua.LNumber(u.MaxMP))
	t.RawSetString("row", lua.LNumber(u.Row))
	t.RawSetString("col", lua.LNumber(u.Col))
	return t
}

// Close shuts down every VM.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, v := range m.vms {
		v.mu.Lock()
		v.L.Close()
		v.mu.Unlock()
		delete(m.vms, key)
	}
}
