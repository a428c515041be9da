// Package config holds the balance tuning for the arena engine. Every
// probability, rate and duration is a tunable default; a YAML file may
// override any subset of them.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Tuning is the full set of balance parameters.
type Tuning struct {
	TickIntervalMillis int64 `yaml:"tick_interval_millis"`
	FeedCapacity       int   `yaml:"feed_capacity"`
	FeedDisplay        int   `yaml:"feed_display"`

	Pools    PoolTuning     `yaml:"pools"`
	Rest     RestTuning     `yaml:"rest"`
	Quest    QuestTuning    `yaml:"quest"`
	Staged   StagedTuning   `yaml:"staged"`
	Level    LevelTuning    `yaml:"level"`
	Training TrainingTuning `yaml:"training"`
	Loot     LootTuning     `yaml:"loot"`
	Defeat   DefeatTuning   `yaml:"defeat"`
	Messages MessageTuning  `yaml:"messages"`
}

// PoolTuning covers HP, stamina, equipment and effect drift.
type PoolTuning struct {
	MaxHP               float64 `yaml:"max_hp"`
	StaminaMax          float64 `yaml:"stamina_max"`
	QuestHPDrain        float64 `yaml:"quest_hp_drain"` // per tick per difficulty
	IdleHPDrain         float64 `yaml:"idle_hp_drain"`
	QuestStaminaDrain   float64 `yaml:"quest_stamina_drain"` // per tick per difficulty
	IdleStaminaRegen    float64 `yaml:"idle_stamina_regen"`
	EquipmentBonusCap   float64 `yaml:"equipment_bonus_cap"`
	EquipmentBonusScale float64 `yaml:"equipment_bonus_scale"` // power points per 100% reduction
	ConditionWear       float64 `yaml:"condition_wear"`        // per tick per difficulty
	ConditionRepair     float64 `yaml:"condition_repair"`
	ExhaustedGainFactor float64 `yaml:"exhausted_gain_factor"`
	QuestDrift          float64 `yaml:"quest_drift"` // per tick per difficulty
	IdleDrift           float64 `yaml:"idle_drift"`
	RestDrift           float64 `yaml:"rest_drift"`
	PhaseDriftBonus     float64 `yaml:"phase_drift_bonus"`
}

// RestTuning selects and sizes rest periods. Durations are millis of the
// form Base + PerLevel*level, floored at Min.
type RestTuning struct {
	IntensiveThreshold float64 `yaml:"intensive_threshold"`
	ModerateThreshold  float64 `yaml:"moderate_threshold"`
	IntensiveBase      int64   `yaml:"intensive_base"`
	IntensivePerLevel  int64   `yaml:"intensive_per_level"`
	StandardBase       int64   `yaml:"standard_base"`
	StandardPerLevel   int64   `yaml:"standard_per_level"`
	PlainBase          int64   `yaml:"plain_base"`
	PlainPerLevel      int64   `yaml:"plain_per_level"`
	MinDuration        int64   `yaml:"min_duration"`
}

// QuestTuning paces objective quests.
type QuestTuning struct {
	LevelWindow       int                `yaml:"level_window"`
	BaseGain          float64            `yaml:"base_gain"`
	SpeedBonusMax     float64            `yaml:"speed_bonus_max"`
	SpeedBonusDecay   float64            `yaml:"speed_bonus_decay"`
	TypeMultipliers   map[string]float64 `yaml:"type_multipliers"`
	PhaseThreshold    float64            `yaml:"phase_threshold"`
	ActionMessageOdds float64            `yaml:"action_message_odds"`
}

// StagedTuning paces and resolves legacy staged quests.
type StagedTuning struct {
	BaseGain     float64 `yaml:"base_gain"`
	LevelGain    float64 `yaml:"level_gain"`
	SuccessBase  float64 `yaml:"success_base"`
	SuccessCap   float64 `yaml:"success_cap"`
	PowerDivisor float64 `yaml:"power_divisor"`
	GoldPerDiff  int     `yaml:"gold_per_difficulty"`
	ExpPerDiff   float64 `yaml:"exp_per_difficulty"`
	ItemChance   float64 `yaml:"item_chance"`
}

// LevelTuning drives the leveler.
type LevelTuning struct {
	StartExperienceToNext float64 `yaml:"start_experience_to_next"`
	Growth                float64 `yaml:"growth"`
	GoldPerLevel          int     `yaml:"gold_per_level"`
	MilestoneEvery        int     `yaml:"milestone_every"`
	MilestoneGold         int     `yaml:"milestone_gold"`
	StatBonusMin          int     `yaml:"stat_bonus_min"`
	StatBonusMax          int     `yaml:"stat_bonus_max"`
	DropChance            float64 `yaml:"drop_chance"`
	DropContextCap        int     `yaml:"drop_context_cap"`
	Ranks                 []Rank  `yaml:"ranks"`
	InitialRank           string  `yaml:"initial_rank"`
}

// Rank is one cosmetic milestone breakpoint.
type Rank struct {
	Level int    `yaml:"level"`
	Title string `yaml:"title"`
}

// TrainingTuning drives the background skill trainer.
type TrainingTuning struct {
	Rate         float64 `yaml:"rate"`
	Grant        float64 `yaml:"grant"`
	SkillDivisor float64 `yaml:"skill_divisor"`
}

// LootTuning drives the item drop resolver.
type LootTuning struct {
	PowerPerLevel   float64 `yaml:"power_per_level"`
	LevelWindow     float64 `yaml:"level_window"`
	DuplicateFactor float64 `yaml:"duplicate_factor"`
}

// DefeatTuning drives the defeat resolver.
type DefeatTuning struct {
	HPPenalty     float64 `yaml:"hp_penalty"`
	InitialStatus string  `yaml:"initial_status"`
}

// MessageTuning gates low-probability flavor messages.
type MessageTuning struct {
	PhaseOdds float64 `yaml:"phase_odds"`
	DriftOdds float64 `yaml:"drift_odds"`
}

// Default returns the stock balance.
func Default() Tuning {
	return Tuning{
		TickIntervalMillis: 50,
		FeedCapacity:       100,
		FeedDisplay:        50,
		Pools: PoolTuning{
			MaxHP:               100,
			StaminaMax:          100,
			QuestHPDrain:        0.006,
			IdleHPDrain:         0.005,
			QuestStaminaDrain:   0.015,
			IdleStaminaRegen:    0.25,
			EquipmentBonusCap:   0.5,
			EquipmentBonusScale: 200,
			ConditionWear:       0.004,
			ConditionRepair:     0.05,
			ExhaustedGainFactor: 0.5,
			QuestDrift:          0.0004,
			IdleDrift:           0.0008,
			RestDrift:           0.002,
			PhaseDriftBonus:     0.15,
		},
		Rest: RestTuning{
			IntensiveThreshold: 0.7,
			ModerateThreshold:  0.5,
			IntensiveBase:      20000,
			IntensivePerLevel:  -500,
			StandardBase:       40000,
			StandardPerLevel:   -800,
			PlainBase:          60000,
			PlainPerLevel:      1000,
			MinDuration:        5000,
		},
		Quest: QuestTuning{
			LevelWindow:     2,
			BaseGain:        1.5,
			SpeedBonusMax:   2.0,
			SpeedBonusDecay: 0.1,
			TypeMultipliers: map[string]float64{
				"scout": 1.2,
				"boss":  0.7,
			},
			PhaseThreshold:    25,
			ActionMessageOdds: 0.1,
		},
		Staged: StagedTuning{
			BaseGain:     0.4,
			LevelGain:    0.05,
			SuccessBase:  0.5,
			SuccessCap:   0.95,
			PowerDivisor: 20,
			GoldPerDiff:  50,
			ExpPerDiff:   30,
			ItemChance:   0.3,
		},
		Level: LevelTuning{
			StartExperienceToNext: 100,
			Growth:                1.5,
			GoldPerLevel:          50,
			MilestoneEvery:        5,
			MilestoneGold:         100,
			StatBonusMin:          1,
			StatBonusMax:          3,
			DropChance:            0.2,
			DropContextCap:        10,
			InitialRank:           "Novice",
			Ranks: []Rank{
				{Level: 5, Title: "Contender"},
				{Level: 10, Title: "Gladiator"},
				{Level: 15, Title: "Champion"},
				{Level: 20, Title: "Warlord"},
				{Level: 25, Title: "Legend"},
			},
		},
		Training: TrainingTuning{
			Rate:         0.6,
			Grant:        5,
			SkillDivisor: 10,
		},
		Loot: LootTuning{
			PowerPerLevel:   5,
			LevelWindow:     2,
			DuplicateFactor: 2,
		},
		Defeat: DefeatTuning{
			HPPenalty:     10,
			InitialStatus: "untouched",
		},
		Messages: MessageTuning{
			PhaseOdds: 0.05,
			DriftOdds: 0.002,
		},
	}
}

// LoadTuning reads a YAML file over the defaults. Keys absent from the
// file keep their default values.
func LoadTuning(path string) (Tuning, error) {
	t := Default()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("reading tuning file %s: %w", path, err)
	}
	return ParseTuning(data)
}

// ParseTuning decodes YAML bytes over the defaults.
func ParseTuning(data []byte) (Tuning, error) {
	t := Default()
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Default(), fmt.Errorf("decoding tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Default(), err
	}
	return t, nil
}

// Validate rejects tunings that would break engine invariants.
func (t Tuning) Validate() error {
	switch {
	case t.TickIntervalMillis <= 0:
		return fmt.Errorf("tick_interval_millis must be positive, got %d", t.TickIntervalMillis)
	case t.Pools.MaxHP <= 0:
		return fmt.Errorf("pools.max_hp must be positive, got %v", t.Pools.MaxHP)
	case t.Pools.StaminaMax <= 0:
		return fmt.Errorf("pools.stamina_max must be positive, got %v", t.Pools.StaminaMax)
	case t.Pools.EquipmentBonusCap < 0 || t.Pools.EquipmentBonusCap > 1:
		return fmt.Errorf("pools.equipment_bonus_cap must be in [0,1], got %v", t.Pools.EquipmentBonusCap)
	case t.Level.Growth <= 1:
		return fmt.Errorf("level.growth must exceed 1, got %v", t.Level.Growth)
	case t.Level.StartExperienceToNext <= 0:
		return fmt.Errorf("level.start_experience_to_next must be positive, got %v", t.Level.StartExperienceToNext)
	case t.Staged.SuccessCap > 1:
		return fmt.Errorf("staged.success_cap must be at most 1, got %v", t.Staged.SuccessCap)
	case t.Quest.PhaseThreshold <= 0:
		return fmt.Errorf("quest.phase_threshold must be positive, got %v", t.Quest.PhaseThreshold)
	case t.Level.StatBonusMin > t.Level.StatBonusMax:
		return fmt.Errorf("level.stat_bonus_min %d exceeds stat_bonus_max %d", t.Level.StatBonusMin, t.Level.StatBonusMax)
	}
	return nil
}
