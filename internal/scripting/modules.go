package scripting

import (
	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

// RegisterModules registers the engine.* Lua table into L:
//
//	engine.roll(sides)  -> integer in [1, sides]
//	engine.random()     -> float in [0, 1)
//	engine.log(msg)     -> writes msg to the server log at Info level
//
// Precondition: L must be from NewSandboxedState.
// Postcondition: the engine global is defined in L.
func (m *Manager) RegisterModules(L *lua.LState) {
	engine := L.NewTable()

	L.SetField(engine, "roll", L.NewFunction(func(ls *lua.LState) int {
		sides := ls.CheckInt(1)
		if sides < 1 {
			ls.ArgError(1, "sides must be >= 1")
			return 0
		}
		ls.Push(lua.LNumber(m.src.Intn(sides) + 1))
		return 1
	}))

	L.SetField(engine, "random", L.NewFunction(func(ls *lua.LState) int {
		ls.Push(lua.LNumber(m.src.Float64()))
		return 1
	}))

	L.SetField(engine, "log", L.NewFunction(func(ls *lua.LState) int {
		msg := ls.CheckString(1)
		m.logger.Info("script", zap.String("msg", msg))
		return 0
	}))

	L.SetGlobal("engine", engine)
}
