// Package events implements single-pass dispatch of catalog event handlers.
// Handlers produce additional effects; events those effects emit are not
// dispatched again.
package events

import (
	"fmt"
	"strconv"

	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Known lists the event types the engine emits. The loader warns about
// handlers for anything else.
var Known = map[string]bool{
	"quest_started":       true,
	"objective_completed": true,
	"quest_completed":     true,
	"quest_failed":        true,
	"quest_abandoned":     true,
	"quest_reset":         true,
	"rest_started":        true,
	"rest_ended":          true,
	"level_up":            true,
	"milestone":           true,
	"item_found":          true,
	"status_changed":      true,
	"slider_changed":      true,
	"player_damaged":      true,
}

// Dispatch runs handlers against the emitted events in declaration order.
// Returns the effects of every matching handler.
func Dispatch(evts []types.Event, defs *state.Defs) []types.Effect {
	var result []types.Effect

	for _, event := range evts {
		for _, handler := range defs.Handlers {
			if handler.EventType != event.Type {
				continue
			}
			if !Matches(handler.When, event.Data) {
				continue
			}
			result = append(result, handler.Effects...)
		}
	}

	return result
}

// Matches reports whether every key in when equals the event's data value.
func Matches(when map[string]string, data map[string]any) bool {
	for k, want := range when {
		v, ok := data[k]
		if !ok || Format(v) != want {
			return false
		}
	}
	return true
}

// Format renders an event data value for comparison. Whole floats print
// without a fraction so Lua numbers match Go ints.
func Format(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

// Trace renders an event as a one-line debug trace.
func Trace(ev types.Event) string {
	return fmt.Sprintf("[trace] %s %v", ev.Type, ev.Data)
}
