package events

import (
	"testing"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

func testDefs() *state.Defs {
	defs := state.NewDefs(config.Default())
	defs.Handlers = []types.EventHandler{
		{
			EventType: "quest_completed",
			Effects: []types.Effect{
				{Type: "say", Params: map[string]any{"text": "The crowd cheers."}},
			},
		},
		{
			EventType: "level_up",
			When:      map[string]string{"level": "5"},
			Effects: []types.Effect{
				{Type: "say", Params: map[string]any{"text": "Halfway to glory."}},
			},
		},
		{
			EventType: "quest_completed",
			Effects: []types.Effect{
				{Type: "heal", Params: map[string]any{"amount": 10.0}},
			},
		},
	}
	return defs
}

func TestDispatch_MatchesEventType(t *testing.T) {
	effs := Dispatch([]types.Event{
		{Type: "quest_completed", Data: map[string]any{"quest": "rats"}},
	}, testDefs())

	if len(effs) != 2 {
		t.Fatalf("expected 2 effects from 2 matching handlers, got %d", len(effs))
	}
	if effs[0].Type != "say" || effs[1].Type != "heal" {
		t.Errorf("expected declaration order say, heal; got %q, %q", effs[0].Type, effs[1].Type)
	}
}

func TestDispatch_SkipsNonMatchingEventType(t *testing.T) {
	effs := Dispatch([]types.Event{{Type: "rest_started"}}, testDefs())
	if len(effs) != 0 {
		t.Fatalf("expected 0 effects for non-matching event, got %d", len(effs))
	}
}

func TestDispatch_WhenFilter(t *testing.T) {
	defs := testDefs()

	tests := []struct {
		level any
		want  int
	}{
		{4, 0},
		{5, 1},
		{5.0, 1},
		{"5", 1},
	}
	for _, tt := range tests {
		effs := Dispatch([]types.Event{
			{Type: "level_up", Data: map[string]any{"level": tt.level}},
		}, defs)
		if len(effs) != tt.want {
			t.Errorf("level %v: expected %d effects, got %d", tt.level, tt.want, len(effs))
		}
	}

	if effs := Dispatch([]types.Event{{Type: "level_up"}}, defs); len(effs) != 0 {
		t.Errorf("missing data key must not match, got %d effects", len(effs))
	}
}

func TestDispatch_NoHandlers(t *testing.T) {
	defs := state.NewDefs(config.Default())
	effs := Dispatch([]types.Event{{Type: "quest_completed"}}, defs)
	if len(effs) != 0 {
		t.Fatalf("expected 0 effects with no handlers, got %d", len(effs))
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"succubus", "succubus"},
		{3, "3"},
		{3.0, "3"},
		{0.25, "0.25"},
		{true, "true"},
	}
	for _, tt := range tests {
		if got := Format(tt.in); got != tt.want {
			t.Errorf("Format(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTrace(t *testing.T) {
	got := Trace(types.Event{Type: "quest_started", Data: map[string]any{"quest": "rats"}})
	if got != "[trace] quest_started map[quest:rats]" {
		t.Errorf("Trace() = %q", got)
	}
}
