// Package quest implements catalog selection and the live-quest state
// machines: objective sequences and legacy staged quests.
package quest

import (
	"errors"
	"fmt"
	"math"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// ErrNoQuest is returned by Check for a nil live quest.
var ErrNoQuest = errors.New("no live quest")

// Eligible returns catalog quests with Difficulty <= level + window, in
// declaration order.
func Eligible(defs *state.Defs, level int) []types.QuestDef {
	limit := level + defs.Tuning.Quest.LevelWindow
	var out []types.QuestDef
	for _, q := range defs.Quests {
		if q.Difficulty <= limit {
			out = append(out, q)
		}
	}
	return out
}

// Pick selects uniformly among eligible quests. ok is false when none are
// eligible.
func Pick(defs *state.Defs, rng types.Rand, level int) (types.QuestDef, bool) {
	pool := Eligible(defs, level)
	if len(pool) == 0 {
		return types.QuestDef{}, false
	}
	return pool[rng.Intn(len(pool))], true
}

// Instantiate deep-copies a template into a fresh live quest.
func Instantiate(def types.QuestDef, now int64) *types.ActiveQuest {
	cp := def
	if def.Objectives != nil {
		cp.Objectives = make([]types.Objective, len(def.Objectives))
		copy(cp.Objectives, def.Objectives)
		for i := range cp.Objectives {
			cp.Objectives[i].Current = 0
		}
	}
	if def.Stages != nil {
		cp.Stages = make([]types.Stage, len(def.Stages))
		copy(cp.Stages, def.Stages)
	}
	return &types.ActiveQuest{Quest: cp, StartedAt: now}
}

// Check reports why a live quest cannot be processed, or nil.
func Check(aq *types.ActiveQuest) error {
	if aq == nil {
		return ErrNoQuest
	}
	switch aq.Quest.Kind {
	case types.QuestObjectives:
		n := len(aq.Quest.Objectives)
		if n == 0 {
			return fmt.Errorf("quest %q has no objectives", aq.Quest.ID)
		}
		if aq.ObjectiveIndex < 0 || aq.ObjectiveIndex >= n {
			return fmt.Errorf("quest %q objective index %d out of range [0,%d)", aq.Quest.ID, aq.ObjectiveIndex, n)
		}
		obj := aq.Quest.Objectives[aq.ObjectiveIndex]
		if obj.Target <= 0 {
			return fmt.Errorf("quest %q objective %d has target %d", aq.Quest.ID, aq.ObjectiveIndex, obj.Target)
		}
		if math.IsNaN(aq.SubProgress) || math.IsNaN(aq.TotalProgress) {
			return fmt.Errorf("quest %q has invalid progress", aq.Quest.ID)
		}
	case types.QuestStaged:
		if math.IsNaN(aq.Progress) {
			return fmt.Errorf("quest %q has invalid progress", aq.Quest.ID)
		}
	default:
		return fmt.Errorf("quest %q has unknown kind %q", aq.Quest.ID, aq.Quest.Kind)
	}
	return nil
}

// Current returns the live objective. Callers must Check first.
func Current(aq *types.ActiveQuest) *types.Objective {
	return &aq.Quest.Objectives[aq.ObjectiveIndex]
}

// Gain is the per-tick sub-progress gain for an objective: base gain times
// an early-level speed bonus, the objective type multiplier and factor.
func Gain(t config.QuestTuning, level int, objType types.ObjectiveType, factor float64) float64 {
	speed := math.Max(1, t.SpeedBonusMax-float64(level-1)*t.SpeedBonusDecay)
	mult := 1.0
	if m, ok := t.TypeMultipliers[string(objType)]; ok {
		mult = m
	}
	return t.BaseGain * speed * mult * factor
}

// Step reports the transitions one Advance call crossed.
type Step struct {
	Action        bool            // a discrete action completed
	ActionReward  types.Reward    // PerAction of the objective that acted
	ObjectiveDone bool            // the objective reached its target
	Objective     types.Objective // the objective that acted or completed
	QuestDone     bool            // that was the last objective
}

// Advance accumulates gain on the live objective. At most one action fires
// per call. Completion is detected in the same call that reaches the target.
func Advance(aq *types.ActiveQuest, gain float64) Step {
	var step Step
	obj := Current(aq)

	if obj.Current < obj.Target {
		aq.SubProgress += gain
		if aq.SubProgress >= 100 {
			obj.Current++
			aq.SubProgress = 0
			step.Action = true
			step.ActionReward = obj.PerAction
		}
	}
	step.Objective = *obj

	if obj.Current >= obj.Target {
		obj.Current = obj.Target
		step.ObjectiveDone = true
		step.Objective = *obj
		aq.TotalProgress += weight(aq, aq.ObjectiveIndex)
		aq.ObjectiveIndex++
		aq.SubProgress = 0
		if aq.ObjectiveIndex >= len(aq.Quest.Objectives) {
			step.QuestDone = true
		}
	}
	return step
}

// ObjectiveDisplay is the combined objective percentage: completed actions
// plus the partial action, capped at 100.
func ObjectiveDisplay(obj types.Objective, sub float64) float64 {
	if obj.Target <= 0 {
		return 0
	}
	pct := float64(obj.Current)/float64(obj.Target)*100 + math.Min(sub, 100)/float64(obj.Target)
	return math.Min(pct, 100)
}

// QuestDisplay is the overall quest percentage from completed objective
// weights plus the live objective's share.
func QuestDisplay(aq *types.ActiveQuest) float64 {
	if aq == nil {
		return 0
	}
	if aq.Quest.Kind == types.QuestStaged {
		return math.Min(aq.Progress, 100)
	}
	total := totalWeight(aq)
	if total <= 0 {
		return 0
	}
	done := aq.TotalProgress
	if aq.ObjectiveIndex >= 0 && aq.ObjectiveIndex < len(aq.Quest.Objectives) {
		obj := aq.Quest.Objectives[aq.ObjectiveIndex]
		done += weight(aq, aq.ObjectiveIndex) * ObjectiveDisplay(obj, aq.SubProgress) / 100
	}
	return math.Min(done/total*100, 100)
}

// weight falls back to equal shares when the catalog gives no weights.
func weight(aq *types.ActiveQuest, i int) float64 {
	if totalDeclared(aq) <= 0 {
		return 100 / float64(len(aq.Quest.Objectives))
	}
	return aq.Quest.Objectives[i].ProgressWeight
}

func totalWeight(aq *types.ActiveQuest) float64 {
	if totalDeclared(aq) <= 0 && len(aq.Quest.Objectives) > 0 {
		return 100
	}
	return totalDeclared(aq)
}

func totalDeclared(aq *types.ActiveQuest) float64 {
	sum := 0.0
	for _, o := range aq.Quest.Objectives {
		sum += math.Max(o.ProgressWeight, 0)
	}
	return sum
}

// StagedGain is the flat per-tick progress of a staged quest.
func StagedGain(t config.StagedTuning, level int, factor float64) float64 {
	return t.BaseGain * (1 + t.LevelGain*float64(level-1)) * factor
}

// AdvanceStaged accumulates progress and reports whether the quest is
// ready to resolve.
func AdvanceStaged(aq *types.ActiveQuest, gain float64) bool {
	aq.Progress += gain
	if aq.Progress >= 100 {
		aq.Progress = 100
		return true
	}
	return false
}

// StageName returns the flavor stage matching the current progress.
func StageName(aq *types.ActiveQuest) string {
	n := len(aq.Quest.Stages)
	if n == 0 {
		return ""
	}
	i := int(aq.Progress / 100 * float64(n))
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return aq.Quest.Stages[i].Name
}

// SuccessRate is min(cap, base + power/(difficulty*divisor)).
func SuccessRate(t config.StagedTuning, power, difficulty int) float64 {
	d := float64(max(difficulty, 1)) * t.PowerDivisor
	if d <= 0 {
		return t.SuccessCap
	}
	return math.Min(t.SuccessCap, t.SuccessBase+float64(power)/d)
}

// View summarizes the live quest for display.
func View(aq *types.ActiveQuest) *types.QuestView {
	if aq == nil {
		return nil
	}
	v := &types.QuestView{
		Name:          aq.Quest.Name,
		Monster:       aq.Quest.Monster,
		Kind:          aq.Quest.Kind,
		Difficulty:    aq.Quest.Difficulty,
		QuestProgress: QuestDisplay(aq),
	}
	switch aq.Quest.Kind {
	case types.QuestObjectives:
		if aq.ObjectiveIndex >= 0 && aq.ObjectiveIndex < len(aq.Quest.Objectives) {
			obj := aq.Quest.Objectives[aq.ObjectiveIndex]
			v.Objective = obj.Description
			v.ObjectiveCurrent = obj.Current
			v.ObjectiveTarget = obj.Target
			v.ObjectiveProgress = ObjectiveDisplay(obj, aq.SubProgress)
		}
	case types.QuestStaged:
		v.Stage = StageName(aq)
	}
	return v
}
