// Package scripting exposes the world to Lua. Scripts drive scenarios:
// spawning prefabs, mutating components, culling entities. Single
// goroutine access only (the tick loop).
package scripting

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"

	"github.com/l1jgo/whalecs/ecs"
	"github.com/l1jgo/whalecs/internal/codec"
	"github.com/l1jgo/whalecs/internal/data"
)

// Engine wraps a single gopher-lua VM bound to one world.
type Engine struct {
	vm      *lua.LState
	log     *zap.Logger
	world   *ecs.World
	reg     *codec.Registry
	spawner *data.Spawner
}

// NewEngine creates a Lua engine, installs the world module and loads
// all scripts from the given directory. A nil spawner disables the
// spawn binding.
func NewEngine(scriptsDir string, w *ecs.World, reg *codec.Registry, spawner *data.Spawner, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log, world: w, reg: reg, spawner: spawner}
	e.installWorldModule()

	if err := e.loadDir(scriptsDir); err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

func (e *Engine) Close() {
	e.vm.Close()
}

// loadDir loads all .lua files in a directory. Missing directories are
// skipped.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

// DoString runs a chunk of Lua directly, for tests and the REPL-less
// demo driver.
func (e *Engine) DoString(src string) error {
	return e.vm.DoString(src)
}

// TickScenario calls the optional global scenario_tick(tick). Missing
// function is a no-op.
func (e *Engine) TickScenario(tick int) error {
	fn := e.vm.GetGlobal("scenario_tick")
	if fn == lua.LNil {
		return nil
	}
	e.vm.Push(fn)
	e.vm.Push(lua.LNumber(tick))
	if err := e.vm.PCall(1, 0, nil); err != nil {
		return fmt.Errorf("scenario_tick(%d): %w", tick, err)
	}
	return nil
}

// installWorldModule registers the global `world` table.
func (e *Engine) installWorldModule() {
	mod := e.vm.NewTable()
	e.vm.SetFuncs(mod, map[string]lua.LGFunction{
		"spawn":   e.luaSpawn,
		"destroy": e.luaDestroy,
		"exists":  e.luaExists,
		"count":   e.luaCount,
		"emplace": e.luaEmplace,
		"remove":  e.luaRemove,
		"get":     e.luaGet,
	})
	e.vm.SetGlobal("world", mod)
}

// world.spawn(prefab) -> entity id or nil, err
func (e *Engine) luaSpawn(L *lua.LState) int {
	name := L.CheckString(1)
	if e.spawner == nil {
		L.Push(lua.LNil)
		L.Push(lua.LString("no prefab table loaded"))
		return 2
	}
	ent, err := e.spawner.Spawn(e.world, name)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LNumber(ent))
	return 1
}

// world.destroy(entity) -> bool
func (e *Engine) luaDestroy(L *lua.LState) int {
	ent := ecs.Entity(L.CheckInt(1))
	L.Push(lua.LBool(e.world.Destroy(ent)))
	return 1
}

// world.exists(entity) -> bool
func (e *Engine) luaExists(L *lua.LState) int {
	ent := ecs.Entity(L.CheckInt(1))
	L.Push(lua.LBool(e.world.Exists(ent)))
	return 1
}

// world.count() -> live entity count
func (e *Engine) luaCount(L *lua.LState) int {
	L.Push(lua.LNumber(e.world.Size()))
	return 1
}

// world.emplace(entity, component_name, fields_table) -> true or nil, err
func (e *Engine) luaEmplace(L *lua.LState) int {
	ent := ecs.Entity(L.CheckInt(1))
	name := L.CheckString(2)
	tbl := L.CheckTable(3)

	payload, err := json.Marshal(tableToGo(tbl))
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	c, err := e.reg.Decode(name, payload)
	if err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	if err := e.world.Emplace(ent, c); err != nil {
		L.Push(lua.LNil)
		L.Push(lua.LString(err.Error()))
		return 2
	}
	L.Push(lua.LTrue)
	return 1
}

// world.remove(entity, component_name) -> bool, or nil, err for an unknown
// component name
func (e *Engine) luaRemove(L *lua.LState) int {
	ent := ecs.Entity(L.CheckInt(1))
	name := L.CheckString(2)
	sample, ok := e.reg.Sample(name)
	if !ok {
		L.Push(lua.LNil)
		L.Push(lua.LString(fmt.Sprintf("unknown component name %q", name)))
		return 2
	}
	L.Push(lua.LBool(e.world.Remove(ent, sample) != nil))
	return 1
}

// world.get(entity, component_name) -> fields table or nil
func (e *Engine) luaGet(L *lua.LState) int {
	ent := ecs.Entity(L.CheckInt(1))
	name := L.CheckString(2)
	sample, ok := e.reg.Sample(name)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	c := e.world.Get(ent, sample)
	if c == nil {
		L.Push(lua.LNil)
		return 1
	}
	payload, err := json.Marshal(c)
	if err != nil {
		L.Push(lua.LNil)
		return 1
	}
	var fields map[string]any
	if err := json.Unmarshal(payload, &fields); err != nil {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(goToLua(L, fields))
	return 1
}

// tableToGo converts a Lua table to a JSON-shaped Go value: a map for
// record tables, a slice for pure arrays.
func tableToGo(tbl *lua.LTable) any {
	if n := tbl.Len(); n > 0 {
		arr := make([]any, 0, n)
		for i := 1; i <= n; i++ {
			arr = append(arr, valueToGo(tbl.RawGetInt(i)))
		}
		return arr
	}
	m := make(map[string]any)
	tbl.ForEach(func(k, v lua.LValue) {
		m[lua.LVAsString(k)] = valueToGo(v)
	})
	return m
}

func valueToGo(v lua.LValue) any {
	switch v := v.(type) {
	case lua.LBool:
		return bool(v)
	case lua.LNumber:
		return float64(v)
	case lua.LString:
		return string(v)
	case *lua.LTable:
		return tableToGo(v)
	default:
		return nil
	}
}

func goToLua(L *lua.LState, v any) lua.LValue {
	switch v := v.(type) {
	case nil:
		return lua.LNil
	case bool:
		return lua.LBool(v)
	case float64:
		return lua.LNumber(v)
	case string:
		return lua.LString(v)
	case []any:
		tbl := L.NewTable()
		for _, item := range v {
			tbl.Append(goToLua(L, item))
		}
		return tbl
	case map[string]any:
		tbl := L.NewTable()
		for k, item := range v {
			tbl.RawSetString(k, goToLua(L, item))
		}
		return tbl
	default:
		return lua.LNil
	}
}
