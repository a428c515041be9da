package engine

import (
	"strconv"

	"github.com/nathoo/arenacore/engine/defeat"
	"github.com/nathoo/arenacore/engine/effects"
	"github.com/nathoo/arenacore/engine/events"
	"github.com/nathoo/arenacore/engine/pools"
	"github.com/nathoo/arenacore/engine/progress"
	"github.com/nathoo/arenacore/engine/quest"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// phaseCount is the number of steps in the combat phase indicator.
const phaseCount = 5

// rest advances the resting sub-state.
func (e *Engine) rest(now int64, out *tickSink) {
	s := e.Session
	r := &s.Rest
	elapsed := now - r.Start

	if r.Duration <= 0 || elapsed >= r.Duration {
		activity := r.Activity
		pools.Refill(&s.Pools)
		*r = types.Rest{}
		e.announce(out, "rest."+string(activity), "You feel restored and return to the arena.", nil)
		out.event("rest_ended", map[string]any{"activity": string(activity)})
		return
	}

	fraction := float64(elapsed) / float64(r.Duration)
	pools.Recover(&s.Pools, fraction)
	pools.Drift(&s.Pools, e.Defs.Tuning.Pools, pools.Activity{Resting: true})
	r.Progress = fraction * 100
}

// exhaust abandons any live quest and starts a rest sized by the sliders.
func (e *Engine) exhaust(now int64, out *tickSink) {
	s := e.Session

	if s.Active != nil {
		out.event("quest_abandoned", map[string]any{"quest": s.Active.Quest.ID})
		s.Active = nil
	}
	s.Ledger.TotalDeaths++
	s.Combat.Phase = 0
	s.Combat.PhaseProgress = 0

	activity, duration := pools.PlanRest(s.Pools.Effects, s.Ledger.Level, e.Defs.Tuning.Rest)
	s.Rest = types.Rest{
		Resting:  true,
		Start:    now,
		Duration: duration,
		Activity: activity,
	}
	e.announce(out, "rest.start", "You collapse, exhausted. Resting for {seconds}s.", map[string]string{
		"activity": string(activity),
		"seconds":  strconv.FormatInt(duration/1000, 10),
	})
	out.event("rest_started", map[string]any{"activity": string(activity), "duration": duration})
}

// startQuest picks and instantiates a new quest, if any is eligible.
func (e *Engine) startQuest(now int64, out *tickSink) {
	s := e.Session
	def, ok := quest.Pick(e.Defs, e.RNG, s.Ledger.Level)
	if !ok {
		return
	}
	s.Active = quest.Instantiate(def, now)
	s.Combat.Phase = 0
	s.Combat.PhaseProgress = 0
	e.Log.Debug("quest selected", "quest", def.ID, "difficulty", def.Difficulty, "level", s.Ledger.Level)

	e.announce(out, "quest.start", "New quest: {quest}. Opponent: {monster}.", questVars(def))
	out.event("quest_started", map[string]any{"quest": def.ID, "kind": string(def.Kind)})
}

// processQuest dispatches on the live quest's kind and returns the
// progress gain that drives the combat phase.
func (e *Engine) processQuest(out *tickSink) float64 {
	s := e.Session
	if err := quest.Check(s.Active); err != nil {
		e.selfHeal(err, out)
		return 0
	}
	switch s.Active.Quest.Kind {
	case types.QuestObjectives:
		return e.processObjectives(out)
	case types.QuestStaged:
		return e.processStaged(out)
	default:
		return 0
	}
}

// selfHeal drops an unusable live quest so the next tick searches again.
func (e *Engine) selfHeal(err error, out *tickSink) {
	s := e.Session
	id := ""
	if s.Active != nil {
		id = s.Active.Quest.ID
	}
	e.Log.Warn("invalid live quest, returning to search", "quest", id, "err", err)
	s.Active = nil
	out.event("quest_reset", map[string]any{"quest": id, "reason": err.Error()})
}

func (e *Engine) processObjectives(out *tickSink) float64 {
	s := e.Session
	t := e.Defs.Tuning
	aq := s.Active
	def := aq.Quest
	ctx := def.Difficulty

	obj := quest.Current(aq)
	gain := quest.Gain(t.Quest, s.Ledger.Level, obj.Type, pools.GainFactor(&s.Pools, t.Pools))
	step := quest.Advance(aq, gain)

	vars := questVars(def)
	vars["objective"] = step.Objective.Description
	vars["current"] = strconv.Itoa(step.Objective.Current)
	vars["target"] = strconv.Itoa(step.Objective.Target)

	// 1. Discrete action.
	if step.Action {
		e.grant(out, step.ActionReward, ctx)
		if e.RNG.Chance(t.Quest.ActionMessageOdds) {
			e.announce(out, "action."+string(step.Objective.Type), "{objective}: {current}/{target}.", vars)
		}
	}

	// 2. Objective completion, in the same tick the target is reached.
	if step.ObjectiveDone {
		e.grant(out, step.Objective.Completion, ctx)
		e.announce(out, "objective.complete", "Objective complete: {objective}.", vars)
		out.event("objective_completed", map[string]any{"quest": def.ID, "index": aq.ObjectiveIndex - 1})
	}

	// 3. Quest completion.
	if step.QuestDone {
		e.grant(out, def.FinalReward, ctx)
		s.Ledger.QuestsCompleted++
		e.announce(out, "quest.complete", "Quest complete: {quest}!", vars)
		out.event("quest_completed", map[string]any{"quest": def.ID, "success": true})
		s.Active = nil
	}
	return gain
}

func (e *Engine) processStaged(out *tickSink) float64 {
	s := e.Session
	t := e.Defs.Tuning
	aq := s.Active
	def := aq.Quest

	gain := quest.StagedGain(t.Staged, s.Ledger.Level, pools.GainFactor(&s.Pools, t.Pools))
	if !quest.AdvanceStaged(aq, gain) {
		return gain
	}

	power := state.CombatPower(&s.Ledger, e.Defs)
	rate := quest.SuccessRate(t.Staged, power, def.Difficulty)
	vars := questVars(def)

	if e.RNG.Float64() < rate {
		reward := types.Reward{
			Gold:       def.Difficulty * t.Staged.GoldPerDiff,
			Exp:        float64(def.Difficulty) * t.Staged.ExpPerDiff,
			ItemChance: t.Staged.ItemChance,
		}
		s.Ledger.QuestsCompleted++
		e.announce(out, "quest.victory", "You defeat {monster}! Quest complete: {quest}.", vars)
		e.grant(out, reward, def.Difficulty)
		out.event("quest_completed", map[string]any{"quest": def.ID, "success": true, "rate": rate})
	} else {
		res := defeat.Resolve(s, e.Defs, e.RNG, out, def)
		out.result.Events = append(out.result.Events, res.Events...)
		out.event("quest_failed", map[string]any{"quest": def.ID, "branch": string(res.Branch), "rate": rate})
	}

	s.Active = nil
	return gain
}

// advancePhase moves the flavor phase indicator. Idle ticks reset it.
// vars describe the quest fought this tick, which may already be cleared.
func (e *Engine) advancePhase(gain float64, vars map[string]string, out *tickSink) {
	c := &e.Session.Combat
	if e.Session.Active == nil && gain == 0 {
		c.Phase = 0
		c.PhaseProgress = 0
		return
	}
	c.PhaseProgress += gain
	threshold := e.Defs.Tuning.Quest.PhaseThreshold
	if c.PhaseProgress < threshold {
		return
	}
	c.PhaseProgress -= threshold
	c.Phase = (c.Phase + 1) % phaseCount

	// Heightened sensitivity makes combat chatter likelier.
	odds := e.Defs.Tuning.Messages.PhaseOdds * (1 + e.Session.Pools.Effects.Sensitivity)
	if e.RNG.Chance(odds) {
		e.announce(out, "phase."+strconv.Itoa(c.Phase), "", vars)
	}
}

// train advances the background skill trainer.
func (e *Engine) train(out *tickSink) {
	s := e.Session
	t := e.Defs.Tuning.Training
	c := &s.Combat

	c.TrainingProgress += t.Rate * pools.GainFactor(&s.Pools, e.Defs.Tuning.Pools)
	if c.TrainingProgress < 100 {
		return
	}
	c.TrainingProgress -= 100
	stat := c.TrainingStat
	before := s.Ledger.Stats[stat]
	progress.GrantSkill(s, e.Defs, stat, t.Grant)
	if after := s.Ledger.Stats[stat]; after > before {
		e.announce(out, "training", "Your {stat} improves to {value}.", map[string]string{
			"stat":  stat,
			"value": strconv.Itoa(after),
		})
	}
	if n := len(e.Defs.Trainable); n > 0 {
		c.TrainingStat = e.Defs.Trainable[e.RNG.Intn(n)]
	}
}

// announce emits a catalog message for key, or fallback when the catalog
// has none. An empty fallback means the message is catalog-only.
func (e *Engine) announce(out *tickSink, key, fallback string, vars map[string]string) {
	if vars == nil {
		vars = map[string]string{}
	}
	if _, ok := vars["level"]; !ok {
		vars["level"] = strconv.Itoa(e.Session.Ledger.Level)
	}
	state.Announce(out, e.Defs, e.RNG, key, fallback, vars)
}

func questVars(q types.QuestDef) map[string]string {
	return map[string]string{
		"quest":      q.Name,
		"monster":    q.Monster,
		"difficulty": strconv.Itoa(q.Difficulty),
	}
}

// grant pays a reward and reports level-ups and drops as events.
func (e *Engine) grant(out *tickSink, r types.Reward, ctx int) {
	g := progress.GrantReward(e.Session, e.Defs, e.RNG, out, r, ctx)
	for _, up := range g.LevelUps {
		out.event("level_up", map[string]any{"level": up.Level, "stat": up.Stat, "bonus": up.Bonus})
		if up.Milestone {
			out.event("milestone", map[string]any{"level": up.Level, "rank": up.Rank})
		}
		if up.Drop != nil {
			out.drop(*up.Drop)
		}
	}
	if g.Drop != nil {
		out.drop(*g.Drop)
	}
}

// dispatch runs catalog handlers for the events emitted so far this tick.
// aq is the quest fought this tick, if any; it may already be cleared.
func (e *Engine) dispatch(out *tickSink, aq *types.ActiveQuest) {
	if len(e.Defs.Handlers) == 0 || len(out.result.Events) == 0 {
		return
	}
	effs := events.Dispatch(out.result.Events, e.Defs)
	if len(effs) == 0 {
		return
	}
	if aq == nil {
		aq = e.Session.Active
	}
	var ctx effects.Context
	if aq != nil {
		ctx = effects.Context{Quest: aq.Quest.Name, Monster: aq.Quest.Monster}
	}
	evts, lines := effects.Apply(e.Session, e.Defs, effs, ctx)
	for _, line := range lines {
		out.Emit(line)
	}
	out.result.Events = append(out.result.Events, evts...)
}
