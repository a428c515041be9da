// Package state manages the arena catalog definitions, session defaults and
// derived-value lookups shared by every resolver.
package state

import (
	"math"
	"sort"
	"strings"

	"github.com/nathoo/arenacore/config"
	"github.com/nathoo/arenacore/types"
)

// Defs holds the immutable catalog loaded from Lua plus the balance tuning.
type Defs struct {
	Arena     types.ArenaDef
	Quests    []types.QuestDef   // declaration order
	Items     []types.Item       // declaration order
	Outcomes  []types.OutcomeDef // first match wins, declaration order
	Messages  map[string][]string
	Handlers  []types.EventHandler // declaration order
	Trainable []string
	Physical  []string
	BaseStats map[string]int
	SkillCaps map[string]float64
	Tuning    config.Tuning
}

// Stock stat layout. Physical attributes are capped low and never granted
// on level-up.
var (
	DefaultTrainable = []string{"strength", "agility", "endurance", "magic", "charm"}
	DefaultPhysical  = []string{"physique", "allure"}
)

const (
	defaultBaseStat      = 5
	defaultTrainableCap  = 100
	defaultPhysicalCap   = 20
	defaultExperienceMin = 100
)

// Slots lists equipment slots in display order.
var Slots = []types.Slot{types.SlotWeapon, types.SlotArmor, types.SlotAccessory, types.SlotArtefakt}

// NewDefs returns empty catalogs with the stock stat layout and tuning.
func NewDefs(tuning config.Tuning) *Defs {
	defs := &Defs{
		Messages:  map[string][]string{},
		Trainable: append([]string(nil), DefaultTrainable...),
		Physical:  append([]string(nil), DefaultPhysical...),
		BaseStats: map[string]int{},
		SkillCaps: map[string]float64{},
		Tuning:    tuning,
	}
	for _, s := range defs.Trainable {
		defs.BaseStats[s] = defaultBaseStat
		defs.SkillCaps[s] = defaultTrainableCap
	}
	for _, s := range defs.Physical {
		defs.BaseStats[s] = defaultBaseStat
		defs.SkillCaps[s] = defaultPhysicalCap
	}
	return defs
}

// NewSession creates a fresh, locked session from definitions.
func NewSession(defs *Defs) *types.Session {
	s := &types.Session{}
	Normalize(s, defs)
	return s
}

// Normalize fills every missing or invalid field with its documented
// default. It is safe to call on a fully populated session.
func Normalize(s *types.Session, defs *Defs) {
	t := defs.Tuning

	// Pools.
	p := &s.Pools
	if !positive(p.MaxHP) {
		p.MaxHP = t.Pools.MaxHP
	}
	if math.IsNaN(p.HP) {
		p.HP = p.MaxHP
	}
	p.HP = Clamp(p.HP, 0, p.MaxHP)
	if !positive(p.StaminaMax) {
		p.StaminaMax = t.Pools.StaminaMax
	}
	if math.IsNaN(p.Stamina) {
		p.Stamina = p.StaminaMax
	}
	p.Stamina = Clamp(p.Stamina, 0, p.StaminaMax)
	if p.Condition == nil {
		p.Condition = map[types.Slot]float64{}
	}
	for _, slot := range Slots {
		c, ok := p.Condition[slot]
		if !ok || math.IsNaN(c) {
			c = 100
		}
		p.Condition[slot] = Clamp(c, 0, 100)
	}
	ClampEffects(&p.Effects)

	// Ledger.
	l := &s.Ledger
	if l.Level < 1 {
		l.Level = 1
	}
	if !positive(l.ExperienceToNext) {
		l.ExperienceToNext = t.Level.StartExperienceToNext
		if !positive(l.ExperienceToNext) {
			l.ExperienceToNext = defaultExperienceMin
		}
	}
	if math.IsNaN(l.Experience) || l.Experience < 0 {
		l.Experience = 0
	}
	if l.SkillProgress == nil {
		l.SkillProgress = map[string]float64{}
	}
	if l.SkillCaps == nil {
		l.SkillCaps = map[string]float64{}
	}
	if l.BaseStats == nil {
		l.BaseStats = map[string]int{}
	}
	if l.Stats == nil {
		l.Stats = map[string]int{}
	}
	for _, stat := range AllStats(defs) {
		if v, ok := l.SkillProgress[stat]; !ok || math.IsNaN(v) {
			l.SkillProgress[stat] = 0
		}
		if v, ok := l.SkillCaps[stat]; !ok || !positive(v) {
			l.SkillCaps[stat] = defs.SkillCaps[stat]
		}
		if _, ok := l.BaseStats[stat]; !ok {
			l.BaseStats[stat] = defs.BaseStats[stat]
		}
	}
	if l.Equipment == nil {
		l.Equipment = map[types.Slot]*types.Item{}
	}
	if l.Status == "" {
		l.Status = t.Defeat.InitialStatus
	}
	if l.Rank == "" {
		l.Rank = RankFor(t.Level, l.Level)
	}
	RecomputeStats(l, t.Training.SkillDivisor)

	// Combat.
	if s.Combat.Phase < 0 || s.Combat.Phase > 4 {
		s.Combat.Phase = 0
	}
	if s.Combat.TrainingStat == "" || !contains(defs.Trainable, s.Combat.TrainingStat) {
		if len(defs.Trainable) > 0 {
			s.Combat.TrainingStat = defs.Trainable[0]
		}
	}
	if math.IsNaN(s.Combat.TrainingProgress) {
		s.Combat.TrainingProgress = 0
	}
	if math.IsNaN(s.Combat.PhaseProgress) {
		s.Combat.PhaseProgress = 0
	}

	// Live quest.
	if aq := s.Active; aq != nil {
		InferKind(&aq.Quest)
		for i := range aq.Quest.Objectives {
			o := &aq.Quest.Objectives[i]
			o.Current = min(max(o.Current, 0), max(o.Target, 0))
		}
		aq.SubProgress = math.Max(aq.SubProgress, 0)
		aq.TotalProgress = math.Max(aq.TotalProgress, 0)
		aq.Progress = math.Max(aq.Progress, 0)
	}
}

// InferKind fills an empty quest kind from its shape: staged when it has
// stages and no objectives, objectives otherwise.
func InferKind(q *types.QuestDef) {
	if q.Kind != "" {
		return
	}
	q.Kind = types.QuestObjectives
	if len(q.Stages) > 0 && len(q.Objectives) == 0 {
		q.Kind = types.QuestStaged
	}
}

// ClampEffects keeps the sliders in range.
func ClampEffects(e *types.Effects) {
	e.Sensitivity = clampUnit(e.Sensitivity)
	e.Wetness = clampUnit(e.Wetness)
	e.Corruption = clampUnit(e.Corruption)
	e.MagicResistance = clampUnit(e.MagicResistance)
	if math.IsNaN(e.RecoveryTime) || e.RecoveryTime < 1 {
		e.RecoveryTime = 1
	}
}

// RecomputeStats derives Stats from base values and skill progress:
// stats[s] = min(cap, base + floor(progress/divisor)).
func RecomputeStats(l *types.Ledger, divisor float64) {
	if divisor <= 0 {
		divisor = 10
	}
	for stat, base := range l.BaseStats {
		v := float64(base) + math.Floor(l.SkillProgress[stat]/divisor)
		if limit, ok := l.SkillCaps[stat]; ok && v > limit {
			v = limit
		}
		l.Stats[stat] = int(v)
	}
}

// CombatPower sums trainable stats and equipped item power.
func CombatPower(l *types.Ledger, defs *Defs) int {
	power := 0
	for _, stat := range defs.Trainable {
		power += l.Stats[stat]
	}
	for _, item := range l.Equipment {
		if item != nil {
			power += item.Power
		}
	}
	return power
}

// RankFor returns the title of the highest breakpoint crossed at level.
func RankFor(t config.LevelTuning, level int) string {
	rank := t.InitialRank
	best := 0
	for _, r := range t.Ranks {
		if level >= r.Level && r.Level >= best {
			rank = r.Title
			best = r.Level
		}
	}
	return rank
}

// AllStats returns trainable then physical stat names.
func AllStats(defs *Defs) []string {
	all := make([]string, 0, len(defs.Trainable)+len(defs.Physical))
	all = append(all, defs.Trainable...)
	return append(all, defs.Physical...)
}

// QuestByID returns the catalog template with the given ID.
func QuestByID(defs *Defs, id string) (types.QuestDef, bool) {
	for _, q := range defs.Quests {
		if q.ID == id {
			return q, true
		}
	}
	return types.QuestDef{}, false
}

// ItemByID returns the catalog item with the given ID.
func ItemByID(defs *Defs, id string) (types.Item, bool) {
	for _, it := range defs.Items {
		if it.ID == id {
			return it, true
		}
	}
	return types.Item{}, false
}

// Message picks a random template from the pool named key and fills in
// vars. Returns "" when the pool is empty.
func Message(defs *Defs, rng types.Rand, key string, vars map[string]string) string {
	pool := defs.Messages[key]
	if len(pool) == 0 {
		return ""
	}
	return Interpolate(pool[rng.Intn(len(pool))], vars)
}

// Announce emits a message from the pool named key, or fallback when the
// pool is empty. A nil sink drops the message.
func Announce(out types.Sink, defs *Defs, rng types.Rand, key, fallback string, vars map[string]string) {
	if out == nil {
		return
	}
	msg := Message(defs, rng, key, vars)
	if msg == "" {
		msg = Interpolate(fallback, vars)
	}
	if msg != "" {
		out.Emit(msg)
	}
}

// Interpolate replaces {name} placeholders with values from vars.
func Interpolate(text string, vars map[string]string) string {
	if len(vars) == 0 || !strings.Contains(text, "{") {
		return text
	}
	keys := make([]string, 0, len(vars))
	for k := range vars {
		keys = append(keys, k)
	}
	sort.Strings(keys) // deterministic replacer order
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", vars[k])
	}
	return strings.NewReplacer(pairs...).Replace(text)
}

// Clamp bounds v to [lo, hi]. NaN collapses to lo.
func Clamp(v, lo, hi float64) float64 {
	switch {
	case math.IsNaN(v), v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

func clampUnit(v float64) float64 {
	return Clamp(v, 0, 1)
}

func positive(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
