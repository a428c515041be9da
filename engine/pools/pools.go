// Package pools implements the per-tick resource math: effect drift, HP
// drain, stamina, equipment condition and rest planning. Every function
// leaves the pools clamped to their documented ranges.
package pools

import (
	"math"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Activity describes what the session is doing this tick.
type Activity struct {
	Questing   bool
	Difficulty int
	Phase      int
	Resting    bool
}

// Drift moves the effect sliders. Quests push sensitivity, wetness and
// corruption up in proportion to difficulty and combat phase while wearing
// down magic resistance. Idle and rest ticks relax them, rest faster.
func Drift(p *types.Pools, t config.PoolTuning, a Activity) {
	e := &p.Effects
	switch {
	case a.Questing:
		rate := t.QuestDrift * float64(max(a.Difficulty, 1)) * (1 + float64(a.Phase)*t.PhaseDriftBonus)
		e.Sensitivity += rate
		e.Wetness += rate * 0.8
		e.Corruption += rate * 0.5
		e.MagicResistance -= rate * 0.25
	default:
		rate := t.IdleDrift
		if a.Resting {
			rate = t.RestDrift
		}
		e.Sensitivity -= rate
		e.Wetness -= rate * 1.5
		e.Corruption -= rate * 0.25
		e.MagicResistance += rate * 0.5
	}
	state.ClampEffects(e)
	e.RecoveryTime = 1 + e.Corruption*2
}

// DrainHP removes a tick's worth of HP. Quests drain by difficulty,
// softened by magic resistance; idle ticks drain a small flat amount.
func DrainHP(p *types.Pools, t config.PoolTuning, a Activity) {
	drain := t.IdleHPDrain
	if a.Questing {
		drain = t.QuestHPDrain * float64(max(a.Difficulty, 1)) * (1 - p.Effects.MagicResistance/2)
	}
	p.HP = state.Clamp(p.HP-drain, 0, p.MaxHP)
}

// Damage subtracts a flat amount of HP.
func Damage(p *types.Pools, amount float64) {
	p.HP = state.Clamp(p.HP-amount, 0, p.MaxHP)
}

// EquipmentBonus is the stamina drain reduction granted by worn gear,
// scaled by each slot's condition and capped.
func EquipmentBonus(p *types.Pools, l *types.Ledger, t config.PoolTuning) float64 {
	if t.EquipmentBonusScale <= 0 {
		return 0
	}
	total := 0.0
	for slot, item := range l.Equipment {
		if item == nil {
			continue
		}
		total += float64(item.Power) * p.Condition[slot] / 100
	}
	return math.Min(t.EquipmentBonusCap, total/t.EquipmentBonusScale)
}

// Stamina drains during quests, reduced by bonus, and regenerates when idle.
func Stamina(p *types.Pools, t config.PoolTuning, a Activity, bonus float64) {
	if a.Questing {
		drain := t.QuestStaminaDrain * float64(max(a.Difficulty, 1)) * (1 - bonus)
		p.Stamina = state.Clamp(p.Stamina-drain, 0, p.StaminaMax)
		return
	}
	p.Stamina = state.Clamp(p.Stamina+t.IdleStaminaRegen, 0, p.StaminaMax)
}

// GainFactor slows progress while stamina is spent.
func GainFactor(p *types.Pools, t config.PoolTuning) float64 {
	if p.Stamina <= 0 {
		return t.ExhaustedGainFactor
	}
	return 1
}

// Wear degrades equipped slots during quests and repairs every slot when idle.
func Wear(p *types.Pools, l *types.Ledger, t config.PoolTuning, a Activity) {
	for _, slot := range state.Slots {
		c := p.Condition[slot]
		if a.Questing {
			if l.Equipment[slot] != nil {
				c -= t.ConditionWear * float64(max(a.Difficulty, 1))
			}
		} else {
			c += t.ConditionRepair
		}
		p.Condition[slot] = state.Clamp(c, 0, 100)
	}
}

// Recover raises HP and stamina toward max*fraction without lowering them.
func Recover(p *types.Pools, fraction float64) {
	fraction = state.Clamp(fraction, 0, 1)
	p.HP = math.Max(p.HP, p.MaxHP*fraction)
	p.Stamina = math.Max(p.Stamina, p.StaminaMax*fraction)
}

// Refill restores HP and stamina to max.
func Refill(p *types.Pools) {
	p.HP = p.MaxHP
	p.Stamina = p.StaminaMax
}

// PlanRest picks the rest category from the sliders and sizes it by level.
// Intense categories shorten with level; plain rest lengthens.
func PlanRest(e types.Effects, level int, t config.RestTuning) (types.RestActivity, int64) {
	lvl := int64(level)
	var (
		activity types.RestActivity
		duration int64
	)
	switch {
	case e.Sensitivity > t.IntensiveThreshold && e.Wetness > t.IntensiveThreshold:
		activity = types.RestIntensive
		duration = t.IntensiveBase + t.IntensivePerLevel*lvl
	case e.Sensitivity > t.ModerateThreshold || e.Wetness > t.ModerateThreshold:
		activity = types.RestStandard
		duration = t.StandardBase + t.StandardPerLevel*lvl
	default:
		activity = types.RestPlain
		duration = t.PlainBase + t.PlainPerLevel*lvl
	}
	if duration < t.MinDuration {
		duration = t.MinDuration
	}
	return activity, duration
}
