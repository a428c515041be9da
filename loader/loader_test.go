package loader

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/types"
)

const fullArena = `
Arena {
    title   = "Full Test Arena",
    author  = "Tester",
    version = "1.2",
    intro   = "Sand and torches.",
}

Quest "rats" {
    name       = "Cellar Rats",
    monster    = "Giant Rat",
    difficulty = 1,
    objectives = {
        { description = "Scout the cellar", type = "scout", target = 2, weight = 30,
          per_action = { gold = 1, exp = 5 }, completion = { gold = 10, exp = 20 } },
        { description = "Clear the nest", type = "hunt", target = 5, weight = 70,
          completion = { gold = 20, exp = 40, item_chance = 0.5 } },
    },
    reward = { gold = 50, exp = 100, item_chance = 0.25 },
}

Quest "court" {
    name       = "Night Court",
    monster    = "Ancient Succubus",
    archetype  = "succubus",
    difficulty = 3,
    stages     = { "Approach", { name = "Duel", description = "Steel and whispers." } },
}
`

const fullItems = `
Item "club"  { name = "Club", slot = "weapon", power = 4 }
Item "charm" { name = "Lucky Charm", slot = "accessory", power = 12, rarity = "rare", effect = "luck" }
`

const fullOutcomes = `
Outcome "succubus" {
    eligible  = { "untouched" },
    transform = {
        status   = "marked",
        effects  = { Nudge("sensitivity", 0.3), Damage(5), Say("The {monster} laughs.") },
        messages = { "The {monster} leaves you {status}." },
    },
    incremental = {
        effects = { Nudge("sensitivity", 0.05) },
    },
}

Messages "quest.start" { "A new challenger: {monster}.", "The gates open for {quest}." }
Messages "quest.start" { "Another line." }

On("level_up", { when = { level = 5, stat = "magic" }, effects = { Say "Arcane surge.", Heal(20) } })
On("quest_completed", { effects = { Train("charm", 2) } })
`

func fullFS() fstest.MapFS {
	return fstest.MapFS{
		"arena.lua":    {Data: []byte(fullArena)},
		"items.lua":    {Data: []byte(fullItems)},
		"outcomes.lua": {Data: []byte(fullOutcomes)},
		"README.md":    {Data: []byte("not lua")},
	}
}

func TestLoad_MinimalArena(t *testing.T) {
	defs, err := Load("testdata/minimal", config.Default())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if defs.Arena.Title != "Minimal Test Arena" {
		t.Errorf("Title = %q, want %q", defs.Arena.Title, "Minimal Test Arena")
	}
	if len(defs.Quests) != 1 || defs.Quests[0].Kind != types.QuestObjectives {
		t.Fatalf("expected one objectives quest, got %+v", defs.Quests)
	}
	if defs.Tuning.TickIntervalMillis != 50 {
		t.Error("tuning not carried into defs")
	}
}

func TestLoad_MissingDirectory(t *testing.T) {
	_, err := Load("testdata/nope", config.Default())
	if err == nil || !strings.Contains(err.Error(), "reading arena directory") {
		t.Errorf("expected directory error, got %v", err)
	}
}

func TestLoadFS_FullArena(t *testing.T) {
	defs, err := LoadFS(fullFS(), config.Default())
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}

	// Arena metadata.
	if defs.Arena.Author != "Tester" || defs.Arena.Version != "1.2" || defs.Arena.Intro != "Sand and torches." {
		t.Errorf("arena = %+v", defs.Arena)
	}

	// Quests, in declaration order.
	if len(defs.Quests) != 2 || defs.Quests[0].ID != "rats" || defs.Quests[1].ID != "court" {
		t.Fatalf("unexpected quests %+v", defs.Quests)
	}
	rats := defs.Quests[0]
	if len(rats.Objectives) != 2 {
		t.Fatalf("expected 2 objectives, got %d", len(rats.Objectives))
	}
	o := rats.Objectives[0]
	if o.Type != types.ObjectiveScout || o.Target != 2 || o.ProgressWeight != 30 {
		t.Errorf("objective 0 = %+v", o)
	}
	if o.PerAction != (types.Reward{Gold: 1, Exp: 5}) || o.Completion != (types.Reward{Gold: 10, Exp: 20}) {
		t.Errorf("objective 0 rewards = %+v / %+v", o.PerAction, o.Completion)
	}
	if rats.Objectives[1].Completion.ItemChance != 0.5 {
		t.Errorf("objective 1 item chance = %v", rats.Objectives[1].Completion.ItemChance)
	}
	if rats.FinalReward != (types.Reward{Gold: 50, Exp: 100, ItemChance: 0.25}) {
		t.Errorf("final reward = %+v", rats.FinalReward)
	}

	court := defs.Quests[1]
	if court.Kind != types.QuestStaged || court.Archetype != types.ArchetypeSuccubus {
		t.Errorf("court = %+v", court)
	}
	if len(court.Stages) != 2 || court.Stages[0].Name != "Approach" || court.Stages[1].Description != "Steel and whispers." {
		t.Errorf("stages = %+v", court.Stages)
	}

	// Items.
	if len(defs.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(defs.Items))
	}
	if defs.Items[0].Rarity != types.RarityCommon {
		t.Errorf("default rarity = %q", defs.Items[0].Rarity)
	}
	if defs.Items[1].Slot != types.SlotAccessory || defs.Items[1].Power != 12 || defs.Items[1].Effect != "luck" {
		t.Errorf("charm = %+v", defs.Items[1])
	}

	// Outcomes.
	if len(defs.Outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(defs.Outcomes))
	}
	out := defs.Outcomes[0]
	if out.Archetype != types.ArchetypeSuccubus || out.Transform.Status != "marked" {
		t.Errorf("outcome = %+v", out)
	}
	if len(out.Eligible) != 1 || out.Eligible[0] != "untouched" {
		t.Errorf("eligible = %v", out.Eligible)
	}
	effs := out.Transform.Effects
	if len(effs) != 3 || effs[0].Type != "nudge" || effs[0].Params["slider"] != "sensitivity" || effs[0].Params["amount"] != 0.3 {
		t.Errorf("transform effects = %+v", effs)
	}
	if effs[1].Type != "damage" || effs[1].Params["amount"] != 5.0 {
		t.Errorf("damage effect = %+v", effs[1])
	}

	// Event handlers, with when values stringified.
	if len(defs.Handlers) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(defs.Handlers))
	}
	h := defs.Handlers[0]
	if h.EventType != "level_up" || h.When["level"] != "5" || h.When["stat"] != "magic" || len(h.Effects) != 2 {
		t.Errorf("level_up handler = %+v", h)
	}
	if h2 := defs.Handlers[1]; h2.When != nil || h2.Effects[0].Type != "train" || h2.SourceOrder <= h.SourceOrder {
		t.Errorf("quest_completed handler = %+v", h2)
	}

	// Messages append across declarations.
	if got := defs.Messages["quest.start"]; len(got) != 3 || got[2] != "Another line." {
		t.Errorf("quest.start pool = %v", got)
	}
}

func TestLoadFS_Failures(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
		want string
	}{
		{
			"no lua files",
			fstest.MapFS{"notes.txt": {Data: []byte("hi")}},
			"no .lua files",
		},
		{
			"bad syntax",
			fstest.MapFS{"arena.lua": {Data: []byte("Arena {")}},
			"arena.lua",
		},
		{
			"no arena",
			fstest.MapFS{"quests.lua": {Data: []byte(`Quest "x" { name = "X", difficulty = 1, objectives = { { type = "hunt", target = 1 } } }`)}},
			"no Arena{}",
		},
		{
			"sandbox",
			fstest.MapFS{"arena.lua": {Data: []byte(`dofile("/etc/passwd")`)}},
			"executing arena.lua",
		},
		{
			"no engine randomness in content",
			fstest.MapFS{"arena.lua": {Data: []byte(`local x = math.random(3)`)}},
			"executing arena.lua",
		},
		{
			"validation",
			fstest.MapFS{"arena.lua": {Data: []byte(`Arena { title = "T" }
Quest "x" { name = "X", difficulty = 1, objectives = { { type = "hunt", target = 0 } } }`)}},
			"target must be positive",
		},
		{
			"bad when value",
			fstest.MapFS{"arena.lua": {Data: []byte(`Arena { title = "T" }
Quest "x" { name = "X", difficulty = 1, objectives = { { type = "hunt", target = 1 } } }
On("level_up", { when = { level = { 1 } }, effects = { Say "x" } })`)}},
			"when.level",
		},
		{
			"handler effect",
			fstest.MapFS{"arena.lua": {Data: []byte(`Arena { title = "T" }
Quest "x" { name = "X", difficulty = 1, objectives = { { type = "hunt", target = 1 } } }
On("level_up", { effects = { { type = "explode" } } })`)}},
			`On level_up: unknown effect type "explode"`,
		},
		{
			"bad stage",
			fstest.MapFS{"arena.lua": {Data: []byte(`Arena { title = "T" }
Quest "x" { name = "X", difficulty = 1, stages = { 42 } }`)}},
			"stage 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFS(tt.fs, config.Default())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFS_FileOrdering(t *testing.T) {
	// quests.lua reads a global set in arena.lua, which must run first even
	// though it sorts later alphabetically among "a_extra.lua".
	fsys := fstest.MapFS{
		"arena.lua":   {Data: []byte(`DIFF = 2; Arena { title = "Order" }`)},
		"a_extra.lua": {Data: []byte(`Quest "early" { name = "Early", difficulty = DIFF, objectives = { { type = "hunt", target = 1 } } }`)},
		"quests.lua":  {Data: []byte(`Quest "late" { name = "Late", difficulty = 1, objectives = { { type = "boss", target = 1 } } }`)},
	}
	defs, err := LoadFS(fsys, config.Default())
	if err != nil {
		t.Fatalf("LoadFS failed: %v", err)
	}
	if defs.Quests[0].ID != "early" || defs.Quests[0].Difficulty != 2 || defs.Quests[1].ID != "late" {
		t.Errorf("unexpected order %+v", defs.Quests)
	}
}

func TestSortedLuaFiles(t *testing.T) {
	got := sortedLuaFiles([]string{"z.lua", "arena.lua", "b.lua"})
	want := []string{"arena.lua", "b.lua", "z.lua"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}
}
