package effects

import (
	"testing"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

func testSetup() (*types.Session, *state.Defs, Context) {
	defs := state.NewDefs(config.Default())
	s := state.NewSession(defs)
	ctx := Context{Quest: "Den of Wolves", Monster: "Dire Wolf"}
	return s, defs, ctx
}

func TestApply_Say(t *testing.T) {
	s, defs, ctx := testSetup()
	effects := []types.Effect{
		{Type: "say", Params: map[string]any{"text": "Hello, world!"}},
	}

	_, output := Apply(s, defs, effects, ctx)
	if len(output) != 1 || output[0] != "Hello, world!" {
		t.Errorf("expected [Hello, world!], got %v", output)
	}
}

func TestApply_Say_TemplateInterpolation(t *testing.T) {
	s, defs, ctx := testSetup()
	effects := []types.Effect{
		{Type: "say", Params: map[string]any{"text": "The {monster} of {quest} marks you ({status}, level {level})."}},
	}

	_, output := Apply(s, defs, effects, ctx)
	expected := "The Dire Wolf of Den of Wolves marks you (untouched, level 1)."
	if len(output) != 1 || output[0] != expected {
		t.Errorf("expected %q, got %v", expected, output)
	}
}

func TestApply_Nudge(t *testing.T) {
	s, defs, ctx := testSetup()
	effects := []types.Effect{
		{Type: "nudge", Params: map[string]any{"slider": "sensitivity", "amount": 0.3}},
		{Type: "nudge", Params: map[string]any{"slider": "corruption", "amount": 2}},
		{Type: "nudge", Params: map[string]any{"slider": "nonsense", "amount": 1.0}},
	}

	events, _ := Apply(s, defs, effects, ctx)
	if len(events) != 2 {
		t.Fatalf("expected 2 slider events, got %d", len(events))
	}
	e := s.Pools.Effects
	if e.Sensitivity != 0.3 {
		t.Errorf("expected sensitivity 0.3, got %v", e.Sensitivity)
	}
	if e.Corruption != 1 {
		t.Errorf("expected corruption clamped to 1, got %v", e.Corruption)
	}
	if e.RecoveryTime != 3 {
		t.Errorf("expected recovery time 3, got %v", e.RecoveryTime)
	}
}

func TestApply_Nudge_NegativeClamps(t *testing.T) {
	s, defs, ctx := testSetup()
	Apply(s, defs, []types.Effect{
		{Type: "nudge", Params: map[string]any{"slider": "wetness", "amount": -0.5}},
	}, ctx)
	if s.Pools.Effects.Wetness != 0 {
		t.Errorf("expected wetness clamped to 0, got %v", s.Pools.Effects.Wetness)
	}
}

func TestApply_SetStatus(t *testing.T) {
	s, defs, ctx := testSetup()
	effects := []types.Effect{
		{Type: "set_status", Params: map[string]any{"status": "marked"}},
	}

	events, _ := Apply(s, defs, effects, ctx)
	if s.Ledger.Status != "marked" {
		t.Errorf("expected status marked, got %q", s.Ledger.Status)
	}
	if len(events) != 1 || events[0].Type != "status_changed" || events[0].Data["from"] != "untouched" {
		t.Errorf("unexpected events %v", events)
	}

	// Same status again is a no-op.
	events, _ = Apply(s, defs, effects, ctx)
	if len(events) != 0 {
		t.Errorf("expected no event for unchanged status, got %v", events)
	}
}

func TestApply_DamageAndHeal(t *testing.T) {
	s, defs, ctx := testSetup()

	events, _ := Apply(s, defs, []types.Effect{
		{Type: "damage", Params: map[string]any{"amount": 130}},
	}, ctx)
	if s.Pools.HP != 0 {
		t.Errorf("expected HP clamped to 0, got %v", s.Pools.HP)
	}
	if len(events) != 1 || events[0].Type != "player_damaged" {
		t.Errorf("unexpected events %v", events)
	}

	Apply(s, defs, []types.Effect{
		{Type: "heal", Params: map[string]any{"amount": 500.0}},
	}, ctx)
	if s.Pools.HP != s.Pools.MaxHP {
		t.Errorf("expected HP clamped to max, got %v", s.Pools.HP)
	}
}

func TestApply_Train(t *testing.T) {
	s, defs, ctx := testSetup()
	Apply(s, defs, []types.Effect{
		{Type: "train", Params: map[string]any{"stat": "allure", "amount": 25}},
		{Type: "train", Params: map[string]any{"stat": "unknown", "amount": 25}},
	}, ctx)

	if s.Ledger.Stats["allure"] != 7 {
		t.Errorf("expected allure 5+2, got %d", s.Ledger.Stats["allure"])
	}
	if _, ok := s.Ledger.SkillProgress["unknown"]; ok {
		t.Error("unknown stat should not be created")
	}
}

func TestApply_Wear(t *testing.T) {
	s, defs, ctx := testSetup()
	Apply(s, defs, []types.Effect{
		{Type: "wear", Params: map[string]any{"slot": "armor", "amount": 30}},
	}, ctx)
	if s.Pools.Condition[types.SlotArmor] != 70 {
		t.Errorf("expected armor condition 70, got %v", s.Pools.Condition[types.SlotArmor])
	}
}

func TestApply_Stop(t *testing.T) {
	s, defs, ctx := testSetup()
	effects := []types.Effect{
		{Type: "say", Params: map[string]any{"text": "before"}},
		{Type: "stop"},
		{Type: "say", Params: map[string]any{"text": "after"}},
	}

	_, output := Apply(s, defs, effects, ctx)
	if len(output) != 1 || output[0] != "before" {
		t.Errorf("expected only [before], got %v", output)
	}
}

func TestApply_UnknownTypeIgnored(t *testing.T) {
	s, defs, ctx := testSetup()
	events, output := Apply(s, defs, []types.Effect{{Type: "teleport"}}, ctx)
	if len(events) != 0 || len(output) != 0 {
		t.Errorf("unknown effect should be ignored, got %v %v", events, output)
	}
}
