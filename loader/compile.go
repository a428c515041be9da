// Package loader loads Lua arena content into Go structs at startup.
// The Lua VM is discarded after loading; no Lua runs during ticks.
package loader

import (
	"fmt"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine/events"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
	lua "github.com/yuin/gopher-lua"
)

// rawDef holds a named table before compilation.
type rawDef struct {
	id    string
	table *lua.LTable
	order int
}

// getString returns a string field from a Lua table, or "" if missing.
func getString(tbl *lua.LTable, key string) string {
	if s, ok := tbl.RawGetString(key).(lua.LString); ok {
		return string(s)
	}
	return ""
}

// getNumber returns a numeric field from a Lua table, or def if missing.
func getNumber(tbl *lua.LTable, key string, def float64) float64 {
	if n, ok := tbl.RawGetString(key).(lua.LNumber); ok {
		return float64(n)
	}
	return def
}

// getInt returns an int field from a Lua table, or 0 if missing.
func getInt(tbl *lua.LTable, key string) int {
	return int(getNumber(tbl, key, 0))
}

// getTable returns a table field from a Lua table, or nil if missing.
func getTable(tbl *lua.LTable, key string) *lua.LTable {
	if t, ok := tbl.RawGetString(key).(*lua.LTable); ok {
		return t
	}
	return nil
}

// arrayTables returns the table elements of a Lua array, in order.
func arrayTables(tbl *lua.LTable) []*lua.LTable {
	if tbl == nil {
		return nil
	}
	var out []*lua.LTable
	for i := 1; i <= tbl.MaxN(); i++ {
		if t, ok := tbl.RawGetInt(i).(*lua.LTable); ok {
			out = append(out, t)
		}
	}
	return out
}

// arrayStrings returns the string elements of a Lua array, in order.
func arrayStrings(tbl *lua.LTable) []string {
	if tbl == nil {
		return nil
	}
	var out []string
	for i := 1; i <= tbl.MaxN(); i++ {
		if s, ok := tbl.RawGetInt(i).(lua.LString); ok {
			out = append(out, string(s))
		}
	}
	return out
}

// toGoValue converts a Lua value to a Go value recursively.
func toGoValue(v lua.LValue) any {
	switch val := v.(type) {
	case lua.LBool:
		return bool(val)
	case lua.LNumber:
		return float64(val)
	case lua.LString:
		return string(val)
	case *lua.LTable:
		if maxN := val.MaxN(); maxN > 0 {
			arr := make([]any, 0, maxN)
			for i := 1; i <= maxN; i++ {
				arr = append(arr, toGoValue(val.RawGetInt(i)))
			}
			return arr
		}
		m := map[string]any{}
		val.ForEach(func(k, v lua.LValue) {
			if ks, ok := k.(lua.LString); ok {
				m[string(ks)] = toGoValue(v)
			}
		})
		return m
	default:
		return nil
	}
}

// compile converts all collected Lua data into a Defs struct.
func compile(coll *collector, tuning config.Tuning) (*state.Defs, error) {
	defs := state.NewDefs(tuning)

	// Arena.
	if coll.arena == nil {
		return nil, fmt.Errorf("no Arena{} definition found")
	}
	defs.Arena = types.ArenaDef{
		Title:   getString(coll.arena, "title"),
		Author:  getString(coll.arena, "author"),
		Version: getString(coll.arena, "version"),
		Intro:   getString(coll.arena, "intro"),
	}

	// Quests.
	for _, raw := range coll.quests {
		q, err := compileQuest(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling quest %s: %w", raw.id, err)
		}
		defs.Quests = append(defs.Quests, q)
	}

	// Items.
	for _, raw := range coll.items {
		defs.Items = append(defs.Items, compileItem(raw))
	}

	// Outcomes, kept in declaration order.
	for _, raw := range coll.outcomes {
		defs.Outcomes = append(defs.Outcomes, compileOutcome(raw))
	}

	// Messages. Repeated keys append to the same pool.
	for _, raw := range coll.messages {
		defs.Messages[raw.id] = append(defs.Messages[raw.id], arrayStrings(raw.table)...)
	}

	// Event handlers.
	for _, raw := range coll.handlers {
		h, err := compileHandler(raw)
		if err != nil {
			return nil, fmt.Errorf("compiling handler for %s: %w", raw.id, err)
		}
		defs.Handlers = append(defs.Handlers, h)
	}

	return defs, nil
}

func compileQuest(raw rawDef) (types.QuestDef, error) {
	tbl := raw.table
	q := types.QuestDef{
		ID:          raw.id,
		Name:        getString(tbl, "name"),
		Monster:     getString(tbl, "monster"),
		Archetype:   types.Archetype(getString(tbl, "archetype")),
		Difficulty:  getInt(tbl, "difficulty"),
		Kind:        types.QuestKind(getString(tbl, "kind")),
		FinalReward: compileReward(getTable(tbl, "reward")),
	}

	for _, o := range arrayTables(getTable(tbl, "objectives")) {
		q.Objectives = append(q.Objectives, types.Objective{
			Description:    getString(o, "description"),
			Type:           types.ObjectiveType(getString(o, "type")),
			Target:         getInt(o, "target"),
			ProgressWeight: getNumber(o, "weight", 0),
			PerAction:      compileReward(getTable(o, "per_action")),
			Completion:     compileReward(getTable(o, "completion")),
		})
	}

	if stages := getTable(tbl, "stages"); stages != nil {
		for i := 1; i <= stages.MaxN(); i++ {
			switch v := stages.RawGetInt(i).(type) {
			case lua.LString:
				q.Stages = append(q.Stages, types.Stage{Name: string(v)})
			case *lua.LTable:
				q.Stages = append(q.Stages, types.Stage{
					Name:        getString(v, "name"),
					Description: getString(v, "description"),
				})
			default:
				return q, fmt.Errorf("stage %d must be a string or table", i)
			}
		}
	}

	state.InferKind(&q)
	return q, nil
}

func compileReward(tbl *lua.LTable) types.Reward {
	if tbl == nil {
		return types.Reward{}
	}
	return types.Reward{
		Gold:       getInt(tbl, "gold"),
		Exp:        getNumber(tbl, "exp", 0),
		ItemChance: getNumber(tbl, "item_chance", 0),
	}
}

func compileItem(raw rawDef) types.Item {
	tbl := raw.table
	rarity := types.Rarity(getString(tbl, "rarity"))
	if rarity == "" {
		rarity = types.RarityCommon
	}
	return types.Item{
		ID:     raw.id,
		Name:   getString(tbl, "name"),
		Slot:   types.Slot(getString(tbl, "slot")),
		Power:  getInt(tbl, "power"),
		Rarity: rarity,
		Effect: getString(tbl, "effect"),
	}
}

func compileOutcome(raw rawDef) types.OutcomeDef {
	tbl := raw.table
	return types.OutcomeDef{
		Archetype:   types.Archetype(raw.id),
		Eligible:    arrayStrings(getTable(tbl, "eligible")),
		Transform:   compileBranch(getTable(tbl, "transform")),
		Incremental: compileBranch(getTable(tbl, "incremental")),
		SourceOrder: raw.order,
	}
}

func compileBranch(tbl *lua.LTable) types.OutcomeBranch {
	if tbl == nil {
		return types.OutcomeBranch{}
	}
	return types.OutcomeBranch{
		Status:   getString(tbl, "status"),
		Effects:  compileEffects(getTable(tbl, "effects")),
		Messages: arrayStrings(getTable(tbl, "messages")),
	}
}

func compileHandler(raw rawDef) (types.EventHandler, error) {
	h := types.EventHandler{
		EventType:   raw.id,
		Effects:     compileEffects(getTable(raw.table, "effects")),
		SourceOrder: raw.order,
	}
	when := getTable(raw.table, "when")
	if when == nil {
		return h, nil
	}

	h.When = map[string]string{}
	var err error
	when.ForEach(func(k, v lua.LValue) {
		key, ok := k.(lua.LString)
		if !ok {
			err = fmt.Errorf("when keys must be strings")
			return
		}
		switch v := v.(type) {
		case lua.LString:
			h.When[string(key)] = string(v)
		case lua.LNumber:
			h.When[string(key)] = events.Format(float64(v))
		case lua.LBool:
			h.When[string(key)] = events.Format(bool(v))
		default:
			err = fmt.Errorf("when.%s must be a string, number or boolean", key)
		}
	})
	return h, err
}

func compileEffects(tbl *lua.LTable) []types.Effect {
	var effects []types.Effect
	for _, effTbl := range arrayTables(tbl) {
		effects = append(effects, compileEffect(effTbl))
	}
	return effects
}

func compileEffect(tbl *lua.LTable) types.Effect {
	params := map[string]any{}
	tbl.ForEach(func(k, v lua.LValue) {
		if ks, ok := k.(lua.LString); ok && string(ks) != "type" {
			params[string(ks)] = toGoValue(v)
		}
	})
	return types.Effect{
		Type:   getString(tbl, "type"),
		Params: params,
	}
}
