package engine

import (
	"testing"

	"github.com/nathoo/arenacore/types"
)

func TestAdvancePhase_WrapsAndResets(t *testing.T) {
	e := newTestEngine()
	e.Defs.Tuning.Messages.PhaseOdds = 0
	threshold := e.Defs.Tuning.Quest.PhaseThreshold
	out := &tickSink{e: e, result: &types.Result{}}

	e.Session.Active = &types.ActiveQuest{}
	for i := 1; i <= phaseCount; i++ {
		e.advancePhase(threshold, nil, out)
		if want := i % phaseCount; e.Session.Combat.Phase != want {
			t.Fatalf("step %d: expected phase %d, got %d", i, want, e.Session.Combat.Phase)
		}
	}

	e.advancePhase(threshold/2, nil, out)
	e.Session.Active = nil
	e.advancePhase(0, nil, out)
	if e.Session.Combat.Phase != 0 || e.Session.Combat.PhaseProgress != 0 {
		t.Errorf("idle tick should reset phase, got %+v", e.Session.Combat)
	}
}

func TestAdvancePhase_CatalogOnlyMessages(t *testing.T) {
	e := newTestEngine()
	e.Defs.Tuning.Messages.PhaseOdds = 1
	threshold := e.Defs.Tuning.Quest.PhaseThreshold
	res := &types.Result{}
	out := &tickSink{e: e, result: res}
	e.Session.Active = &types.ActiveQuest{Quest: types.QuestDef{Name: "Pit", Monster: "Ogre"}}
	vars := questVars(e.Session.Active.Quest)

	e.advancePhase(threshold, vars, out)
	if len(res.Output) != 0 {
		t.Errorf("no catalog lines means no phase message, got %v", res.Output)
	}

	e.Defs.Messages["phase.2"] = []string{"The {monster} staggers."}
	e.advancePhase(threshold, vars, out)
	if len(res.Output) != 1 || res.Output[0] != "The Ogre staggers." {
		t.Errorf("unexpected phase output %v", res.Output)
	}
}

func TestTrain_GrantsSkillAndRepicks(t *testing.T) {
	e := newTestEngine()
	s := e.Session
	s.Combat.TrainingStat = "agility"
	s.Combat.TrainingProgress = 100 - e.Defs.Tuning.Training.Rate/2
	before := s.Ledger.SkillProgress["agility"]
	res := &types.Result{}

	e.train(&tickSink{e: e, result: res})

	if got := s.Ledger.SkillProgress["agility"]; got != before+e.Defs.Tuning.Training.Grant {
		t.Errorf("expected skill grant, got %v -> %v", before, got)
	}
	if s.Combat.TrainingProgress >= 100 {
		t.Errorf("training progress should roll over, got %v", s.Combat.TrainingProgress)
	}
	found := false
	for _, stat := range e.Defs.Trainable {
		if stat == s.Combat.TrainingStat {
			found = true
		}
	}
	if !found {
		t.Errorf("training stat %q is not trainable", s.Combat.TrainingStat)
	}
}

func TestRest_DriftsWhileResting(t *testing.T) {
	e := newTestEngine()
	e.Tick(1000)
	e.Session.Pools.Effects.Wetness = 0.5
	e.Session.Rest = types.Rest{Resting: true, Start: 1000, Duration: 100000, Activity: types.RestPlain}

	e.Tick(1050)
	if e.Session.Pools.Effects.Wetness >= 0.5 {
		t.Errorf("wetness should fall while resting, got %v", e.Session.Pools.Effects.Wetness)
	}
}

func TestRest_ZeroDurationEndsImmediately(t *testing.T) {
	e := newTestEngine()
	e.Tick(1000)
	e.Session.Pools.HP = 10
	e.Session.Rest = types.Rest{Resting: true, Start: 1000}

	e.Tick(1050)
	if e.Session.Rest.Resting {
		t.Error("degenerate rest should end")
	}
	if e.Session.Pools.HP != e.Session.Pools.MaxHP {
		t.Errorf("expected refill, got %v", e.Session.Pools.HP)
	}
}

func TestAnnounce_SinkAndFeed(t *testing.T) {
	e := newTestEngine()
	var got []string
	e.Sink = sinkFunc(func(msg string) { got = append(got, msg) })
	res := &types.Result{}

	e.announce(&tickSink{e: e, result: res}, "none", "Level {level} hero.", nil)

	if len(got) != 1 || got[0] != "Level 1 hero." {
		t.Errorf("sink got %v", got)
	}
	if e.Feed.Len() != 1 || len(res.Output) != 1 {
		t.Errorf("expected feed and result to record the line")
	}
}

type sinkFunc func(string)

func (f sinkFunc) Emit(msg string) { f(msg) }
