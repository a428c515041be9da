package loader

import (
	lua "github.com/yuin/gopher-lua"
)

// registerAPI registers all Lua constructors and helpers as globals.
func registerAPI(L *lua.LState, coll *collector) {
	registerConstructors(L, coll)
	registerEffectHelpers(L)
}

func registerConstructors(L *lua.LState, coll *collector) {
	// Arena { title = "...", ... }
	L.SetGlobal("Arena", L.NewFunction(func(L *lua.LState) int {
		coll.arena = L.CheckTable(1)
		return 0
	}))

	// Quest "id" { ... }, Item "id" { ... }, Outcome "archetype" { ... } and
	// Messages "key" { ... } are curried: the name call returns a function
	// that takes the table.
	L.SetGlobal("Quest", curried(L, coll, &coll.quests))
	L.SetGlobal("Item", curried(L, coll, &coll.items))
	L.SetGlobal("Outcome", curried(L, coll, &coll.outcomes))
	L.SetGlobal("Messages", curried(L, coll, &coll.messages))

	// On("event", { when = { ... }, effects = { ... } })
	L.SetGlobal("On", L.NewFunction(func(L *lua.LState) int {
		eventType := L.CheckString(1)
		tbl := L.CheckTable(2)
		coll.handlers = append(coll.handlers, rawDef{id: eventType, table: tbl, order: coll.nextSourceOrder()})
		return 0
	}))
}

func curried(L *lua.LState, coll *collector, dst *[]rawDef) *lua.LFunction {
	return L.NewFunction(func(L *lua.LState) int {
		id := L.CheckString(1)
		L.Push(L.NewFunction(func(L *lua.LState) int {
			tbl := L.CheckTable(1)
			*dst = append(*dst, rawDef{id: id, table: tbl, order: coll.nextSourceOrder()})
			return 0
		}))
		return 1
	})
}

func registerEffectHelpers(L *lua.LState) {
	// Say("text")
	L.SetGlobal("Say", L.NewFunction(func(L *lua.LState) int {
		L.Push(effectTable(L, "say", "text", lua.LString(L.CheckString(1))))
		return 1
	}))

	// Nudge("slider", amount)
	L.SetGlobal("Nudge", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "nudge", "slider", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// SetStatus("status")
	L.SetGlobal("SetStatus", L.NewFunction(func(L *lua.LState) int {
		L.Push(effectTable(L, "set_status", "status", lua.LString(L.CheckString(1))))
		return 1
	}))

	// Damage(amount)
	L.SetGlobal("Damage", L.NewFunction(func(L *lua.LState) int {
		L.Push(effectTable(L, "damage", "amount", L.CheckNumber(1)))
		return 1
	}))

	// Heal(amount)
	L.SetGlobal("Heal", L.NewFunction(func(L *lua.LState) int {
		L.Push(effectTable(L, "heal", "amount", L.CheckNumber(1)))
		return 1
	}))

	// Train("stat", amount)
	L.SetGlobal("Train", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "train", "stat", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Wear("slot", amount)
	L.SetGlobal("Wear", L.NewFunction(func(L *lua.LState) int {
		tbl := effectTable(L, "wear", "slot", lua.LString(L.CheckString(1)))
		tbl.RawSetString("amount", L.CheckNumber(2))
		L.Push(tbl)
		return 1
	}))

	// Stop()
	L.SetGlobal("Stop", L.NewFunction(func(L *lua.LState) int {
		tbl := L.NewTable()
		tbl.RawSetString("type", lua.LString("stop"))
		L.Push(tbl)
		return 1
	}))
}

func effectTable(L *lua.LState, typ, key string, value lua.LValue) *lua.LTable {
	tbl := L.NewTable()
	tbl.RawSetString("type", lua.LString(typ))
	tbl.RawSetString(key, value)
	return tbl
}
