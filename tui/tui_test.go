package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

func TestClassifyLine(t *testing.T) {
	tests := []struct {
		line string
		want lineKind
	}{
		{"[trace] quest_started map[quest:rats]", kindTrace},
		{"[Session saved to test.]", kindSystem},
		{"Level up! You are now level 3 (+1 strength).", kindReward},
		{"Level 5 milestone! The crowd hails you as Veteran. +100 gold.", kindReward},
		{"Found a Rusty Club and equipped it.", kindLoot},
		{"LEGENDARY: Crown of Ash! The crowd falls silent.", kindLoot},
		{"A rare find: Ember Blade! Equipped in your weapon slot.", kindLoot},
		{"You collapse on the sand. Recovering for 19s (intensive).", kindDanger},
		{"The Succubus wins this round. You limp away.", kindDanger},
		{"New quest: Cellar Rats. Your opponent: Giant Rat.", kindQuest},
		{"Objective complete: Slay rats.", kindQuest},
		{"Steel rings against claw.", kindNarrative},
		{"", kindNarrative},
	}
	for _, tt := range tests {
		if got := classifyLine(tt.line); got != tt.want {
			t.Errorf("classifyLine(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestWordWrap(t *testing.T) {
	tests := []struct {
		text  string
		width int
	}{
		{"short", 80},
		{"hello world", 5},
		{"The herald announces Cellar Rats and the crowd roars.", 25},
		{"a b c d e", 3},
	}
	for _, tt := range tests {
		got := wordWrap(tt.text, tt.width)
		for _, line := range strings.Split(got, "\n") {
			if len(line) > tt.width {
				t.Errorf("wordWrap(%q, %d): line %q exceeds width", tt.text, tt.width, line)
			}
		}
		if strings.Join(strings.Fields(got), " ") != tt.text {
			t.Errorf("wordWrap(%q, %d) lost or reordered words: %q", tt.text, tt.width, got)
		}
	}
	if got := wordWrap("short", 80); got != "short" {
		t.Errorf("short text should be untouched, got %q", got)
	}
}

func TestHistory_Navigation(t *testing.T) {
	h := NewHistory(5)
	h.Push("/save a")
	h.Push("/trace")
	h.Push("/pause")

	for _, want := range []string{"/pause", "/trace", "/save a", "/save a"} {
		if got, ok := h.Prev(); !ok || got != want {
			t.Errorf("Prev() = %q (ok=%v), want %q", got, ok, want)
		}
	}
	for _, want := range []string{"/trace", "/pause"} {
		if got, ok := h.Next(); !ok || got != want {
			t.Errorf("Next() = %q (ok=%v), want %q", got, ok, want)
		}
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false when past newest entry")
	}
}

func TestHistory_Empty(t *testing.T) {
	h := NewHistory(5)
	if _, ok := h.Prev(); ok {
		t.Error("expected false on empty history")
	}
	if _, ok := h.Next(); ok {
		t.Error("expected false on empty history")
	}
}

func TestHistory_RepeatMovesToNewest(t *testing.T) {
	h := NewHistory(5)
	h.Push("a")
	h.Push("b")
	h.Push("a")

	if h.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.Len())
	}
	if got, _ := h.Prev(); got != "a" {
		t.Errorf("expected repeated command newest, got %q", got)
	}
	if got, _ := h.Prev(); got != "b" {
		t.Errorf("expected 'b', got %q", got)
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory(2)
	h.Push("a")
	h.Push("b")
	h.Push("c")

	if h.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", h.Len())
	}
	h.Prev()
	if got, _ := h.Prev(); got != "b" {
		t.Errorf("expected oldest kept entry 'b', got %q", got)
	}
}

func TestPhasePips(t *testing.T) {
	tests := []struct {
		phase int
		want  string
	}{
		{0, "●○○○○"},
		{2, "●●●○○"},
		{4, "●●●●●"},
	}
	for _, tt := range tests {
		if got := phasePips(tt.phase, 5); got != tt.want {
			t.Errorf("phasePips(%d) = %q, want %q", tt.phase, got, tt.want)
		}
	}
}

func TestActivityLine(t *testing.T) {
	tests := []struct {
		name string
		snap types.Snapshot
		want string
	}{
		{"searching", types.Snapshot{}, "Searching for a quest..."},
		{"resting", types.Snapshot{Rest: types.Rest{Resting: true, Activity: types.RestPlain}}, "Resting (plain)"},
		{"objectives", types.Snapshot{Quest: &types.QuestView{
			Name: "Cellar Rats", Monster: "Giant Rat", Kind: types.QuestObjectives,
			Objective: "Slay rats", ObjectiveCurrent: 1, ObjectiveTarget: 2,
		}}, "Cellar Rats vs Giant Rat: Slay rats 1/2"},
		{"staged", types.Snapshot{Quest: &types.QuestView{
			Name: "Velvet Court", Monster: "Succubus", Kind: types.QuestStaged, Stage: "Approach",
		}}, "Velvet Court vs Succubus: Approach"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := activityLine(tt.snap); got != tt.want {
				t.Errorf("activityLine() = %q, want %q", got, tt.want)
			}
		})
	}
}

// testDefs returns a minimal arena for TUI testing.
func testDefs() *state.Defs {
	defs := state.NewDefs(config.Default())
	defs.Arena = types.ArenaDef{Title: "Test Arena", Author: "Test", Version: "1.0", Intro: "Welcome to the test."}
	defs.Quests = []types.QuestDef{{
		ID: "rats", Name: "Cellar Rats", Monster: "Giant Rat", Difficulty: 1,
		Kind: types.QuestObjectives,
		Objectives: []types.Objective{
			{Description: "Slay rats", Type: types.ObjectiveHunt, Target: 2, ProgressWeight: 100,
				PerAction: types.Reward{Gold: 3, Exp: 5}},
		},
		FinalReward: types.Reward{Gold: 20, Exp: 30},
	}}
	return defs
}

func newTestModel(t *testing.T) Model {
	t.Helper()
	eng := engine.New(testDefs(), 42)
	eng.Unlock()
	return New(eng).WithSaveDir(t.TempDir())
}

func TestHandleMeta_Quit(t *testing.T) {
	m := newTestModel(t)
	for _, cmd := range []string{"/quit", "/exit"} {
		if _, quit := m.handleMeta(cmd); !quit {
			t.Errorf("expected quit=true for %s", cmd)
		}
	}
}

func TestHandleMeta_SaveAndLoad(t *testing.T) {
	m := newTestModel(t)
	m.engine.MarkVisited()
	m.engine.Tick(1000)

	output, quit := m.handleMeta("/save slot")
	if quit || len(output) == 0 || output[0] != "Session saved to slot." {
		t.Fatalf("expected save confirmation, got %v", output)
	}

	other := New(engine.New(testDefs(), 7)).WithSaveDir(m.saveDir)
	output, _ = other.handleMeta("/load slot")
	if len(output) == 0 || !strings.Contains(output[0], "Session loaded from slot (tick 1)") {
		t.Fatalf("expected load confirmation, got %v", output)
	}
	if !other.engine.Session.Visited {
		t.Error("loading should mark the arena visited")
	}
}

func TestHandleMeta_SaveRejectsPathSlot(t *testing.T) {
	m := newTestModel(t)
	output, _ := m.handleMeta("/save ../escape")
	if len(output) == 0 || !strings.Contains(output[0], "invalid slot name") {
		t.Errorf("expected slot name rejection, got %v", output)
	}
}

func TestHandleMeta_LoadNonexistent(t *testing.T) {
	m := newTestModel(t)
	output, quit := m.handleMeta("/load nothing")
	if quit {
		t.Error("load should not quit")
	}
	if len(output) == 0 || !strings.Contains(output[0], "Load failed") {
		t.Errorf("expected load failure, got %v", output)
	}
}

func TestHandleMeta_Toggles(t *testing.T) {
	m := newTestModel(t)

	output, _ := m.handleMeta("/pause")
	if !m.paused || output[0] != "Paused." {
		t.Errorf("expected paused, got %v", output)
	}
	output, _ = m.handleMeta("/pause")
	if m.paused || output[0] != "Resumed." {
		t.Errorf("expected resumed, got %v", output)
	}

	output, _ = m.handleMeta("/trace")
	if !m.trace || !strings.Contains(output[0], "enabled") {
		t.Errorf("expected trace on, got %v", output)
	}
}

func TestHandleMeta_HelpStateUnknown(t *testing.T) {
	m := newTestModel(t)

	help, _ := m.handleMeta("/help")
	joined := strings.Join(help, "\n")
	for _, c := range metaCommands {
		if c.usage != "" && !strings.Contains(joined, c.name) {
			t.Errorf("help should list %s", c.name)
		}
	}
	if strings.Contains(joined, "/exit") {
		t.Error("aliases stay out of help")
	}

	dump, _ := m.handleMeta("/state")
	if !strings.Contains(strings.Join(dump, "\n"), `"tick_count"`) {
		t.Errorf("expected session JSON, got %v", dump)
	}

	output, _ := m.handleMeta("/dance")
	if !strings.Contains(output[0], "Unknown command: /dance") {
		t.Errorf("expected unknown command, got %v", output)
	}
}

func TestUpdate_TickDrivesEngine(t *testing.T) {
	m := newTestModel(t)
	updated, _ := m.Update(feedMsg{lines: []string{"hello"}})
	m = updated.(Model)
	if !m.engine.Session.Visited {
		t.Fatal("first output should mark the arena visited")
	}

	start := time.UnixMilli(1_000_000)
	updated, cmd := m.Update(tickMsg(start))
	m = updated.(Model)
	if cmd == nil {
		t.Error("tick should reschedule itself")
	}
	if m.engine.Session.TickCount != 1 {
		t.Fatalf("expected 1 tick, got %d", m.engine.Session.TickCount)
	}

	m.paused = true
	updated, _ = m.Update(tickMsg(start.Add(time.Second)))
	m = updated.(Model)
	if m.engine.Session.TickCount != 1 {
		t.Error("paused model must not tick")
	}
}

func TestUpdate_NonCommandInput(t *testing.T) {
	m := newTestModel(t)
	m.input.SetValue("attack")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	last := m.rawLines[len(m.rawLines)-1]
	if !last.isSystem || !strings.Contains(last.text, "runs on its own") {
		t.Errorf("unexpected reply %+v", last)
	}
	if m.history.Len() != 1 {
		t.Error("input should be recorded in history")
	}
}

func TestView_AfterResize(t *testing.T) {
	m := newTestModel(t)
	if got := m.View(); got != "Loading..." {
		t.Errorf("expected loading view, got %q", got)
	}

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	m = updated.(Model)
	view := m.View()
	for _, want := range []string{"Test Arena", "Level 1", "Searching for a quest..."} {
		if !strings.Contains(view, want) {
			t.Errorf("expected %q in view:\n%s", want, view)
		}
	}
	if m.viewport.Height != 30-panelHeight-2 {
		t.Errorf("unexpected viewport height %d", m.viewport.Height)
	}
}

func TestAppendOutput_CapsScrollback(t *testing.T) {
	m := newTestModel(t)
	lines := make([]string, maxLines+20)
	for i := range lines {
		lines[i] = "line"
	}
	m = m.appendOutput(feedMsg{lines: lines})
	if len(m.rawLines) != maxLines {
		t.Errorf("expected %d lines, got %d", maxLines, len(m.rawLines))
	}
}
