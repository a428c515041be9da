// Package effects implements catalog-driven state mutation via the Apply
// function. Every effect type is one atomic operation. No logic in effects.
package effects

import (
	"strconv"

	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Known effect types. The loader rejects anything else.
var Known = map[string]bool{
	"say":        true,
	"nudge":      true,
	"set_status": true,
	"damage":     true,
	"heal":       true,
	"train":      true,
	"wear":       true,
	"stop":       true,
}

// Sliders lists the effect sliders a nudge may target.
var Sliders = map[string]bool{
	"sensitivity":      true,
	"wetness":          true,
	"corruption":       true,
	"magic_resistance": true,
}

// Context carries the values available to message templates.
type Context struct {
	Quest   string
	Monster string
}

// Apply applies a list of effects to the session, mutating it.
// Returns events emitted and output text collected.
func Apply(s *types.Session, defs *state.Defs, effects []types.Effect, ctx Context) ([]types.Event, []string) {
	var events []types.Event
	var output []string

	for _, eff := range effects {
		switch eff.Type {
		case "say":
			text, _ := eff.Params["text"].(string)
			output = append(output, interpolate(text, s, ctx))

		case "nudge":
			slider, _ := eff.Params["slider"].(string)
			amount := toFloat(eff.Params["amount"])
			if nudge(&s.Pools.Effects, slider, amount) {
				events = append(events, types.Event{
					Type: "slider_changed",
					Data: map[string]any{"slider": slider, "amount": amount},
				})
			}

		case "set_status":
			status, _ := eff.Params["status"].(string)
			if status == "" || status == s.Ledger.Status {
				continue
			}
			prev := s.Ledger.Status
			s.Ledger.Status = status
			events = append(events, types.Event{
				Type: "status_changed",
				Data: map[string]any{"from": prev, "to": status},
			})

		case "damage":
			amount := toFloat(eff.Params["amount"])
			p := &s.Pools
			p.HP = state.Clamp(p.HP-amount, 0, p.MaxHP)
			events = append(events, types.Event{
				Type: "player_damaged",
				Data: map[string]any{"amount": amount, "remaining": p.HP},
			})

		case "heal":
			amount := toFloat(eff.Params["amount"])
			p := &s.Pools
			p.HP = state.Clamp(p.HP+amount, 0, p.MaxHP)

		case "train":
			stat, _ := eff.Params["stat"].(string)
			amount := toFloat(eff.Params["amount"])
			if _, ok := s.Ledger.BaseStats[stat]; !ok || amount <= 0 {
				continue
			}
			s.Ledger.SkillProgress[stat] += amount
			state.RecomputeStats(&s.Ledger, defs.Tuning.Training.SkillDivisor)

		case "wear":
			slot := types.Slot(stringParam(eff.Params, "slot"))
			amount := toFloat(eff.Params["amount"])
			if _, ok := s.Pools.Condition[slot]; ok {
				s.Pools.Condition[slot] = state.Clamp(s.Pools.Condition[slot]-amount, 0, 100)
			}

		case "stop":
			return events, output

		default:
			// Unknown effect type; the loader rejects these.
		}
	}

	return events, output
}

func nudge(e *types.Effects, slider string, amount float64) bool {
	var v *float64
	switch slider {
	case "sensitivity":
		v = &e.Sensitivity
	case "wetness":
		v = &e.Wetness
	case "corruption":
		v = &e.Corruption
	case "magic_resistance":
		v = &e.MagicResistance
	default:
		return false
	}
	*v = state.Clamp(*v+amount, 0, 1)
	e.RecoveryTime = 1 + e.Corruption*2
	return true
}

// interpolate replaces template variables in text.
func interpolate(text string, s *types.Session, ctx Context) string {
	return state.Interpolate(text, map[string]string{
		"quest":   ctx.Quest,
		"monster": ctx.Monster,
		"level":   strconv.Itoa(s.Ledger.Level),
		"status":  s.Ledger.Status,
	})
}

func stringParam(params map[string]any, key string) string {
	v, _ := params[key].(string)
	return v
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	default:
		return 0
	}
}
