// Package types defines the shared data structures for the arena engine.
// This package contains only type definitions, no logic and no methods.
package types

// Rand is the random source every resolver draws from. The engine's RNG
// implements it; tests inject scripted sources.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// Sink receives announcement text. The presentation layer decides how to
// render it.
type Sink interface {
	Emit(msg string)
}

// Wallet is the externally owned player currency. The engine only deposits.
type Wallet interface {
	Deposit(amount int)
}

// Event is emitted when the engine crosses a state-machine boundary.
type Event struct {
	Type string         `json:"type"`
	Data map[string]any `json:"data,omitempty"`
}

// Result is the output of a single effective tick.
type Result struct {
	Ticked bool     `json:"ticked"`
	Events []Event  `json:"events,omitempty"`
	Output []string `json:"output,omitempty"`
}

// Effect is a single atomic state mutation instruction from catalog data.
type Effect struct {
	Type   string         `json:"type"`
	Params map[string]any `json:"params,omitempty"`
}

// Slot names an equipment slot.
type Slot string

const (
	SlotWeapon    Slot = "weapon"
	SlotArmor     Slot = "armor"
	SlotAccessory Slot = "accessory"
	SlotArtefakt  Slot = "artefakt"
)

// Rarity tags an item for announcements.
type Rarity string

const (
	RarityCommon    Rarity = "common"
	RarityUncommon  Rarity = "uncommon"
	RarityRare      Rarity = "rare"
	RarityLegendary Rarity = "legendary"
)

// Item is an immutable catalog entry.
type Item struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Slot   Slot   `json:"slot"`
	Power  int    `json:"power"`
	Rarity Rarity `json:"rarity"`
	Effect string `json:"effect,omitempty"`
}

// Effects are the continuous sliders that drift during play. All but
// RecoveryTime live in [0,1]; RecoveryTime is >= 1 and unbounded.
type Effects struct {
	Sensitivity     float64 `json:"sensitivity"`
	Wetness         float64 `json:"wetness"`
	Corruption      float64 `json:"corruption"`
	MagicResistance float64 `json:"magic_resistance"`
	RecoveryTime    float64 `json:"recovery_time"`
}

// Pools holds the scalar resources of one session.
type Pools struct {
	HP         float64          `json:"hp"`
	MaxHP      float64          `json:"max_hp"`
	Stamina    float64          `json:"stamina"`
	StaminaMax float64          `json:"stamina_max"`
	Condition  map[Slot]float64 `json:"condition"` // slot → [0,100]
	Effects    Effects          `json:"effects"`
}

// Ledger is the mutable progression record of one player.
type Ledger struct {
	Level            int                `json:"level"`
	Experience       float64            `json:"experience"`
	ExperienceToNext float64            `json:"experience_to_next"`
	SkillProgress    map[string]float64 `json:"skill_progress"`
	SkillCaps        map[string]float64 `json:"skill_caps"`
	BaseStats        map[string]int     `json:"base_stats"`
	Stats            map[string]int     `json:"stats"`
	QuestsCompleted  int                `json:"quests_completed"`
	TotalDeaths      int                `json:"total_deaths"`
	ItemsFound       int                `json:"items_found"`
	GoldEarned       int                `json:"gold_earned"`
	Equipment        map[Slot]*Item     `json:"equipment"`
	Status           string             `json:"status"` // defeat escalation state
	Rank             string             `json:"rank"`   // cosmetic milestone tier
}

// Archetype tags a quest's monster for the defeat resolver.
type Archetype string

const (
	ArchetypeNone     Archetype = ""
	ArchetypeSuccubus Archetype = "succubus"
	ArchetypeAmazon   Archetype = "amazon"
	ArchetypeWitch    Archetype = "witch"
	ArchetypeGoddess  Archetype = "goddess"
	ArchetypeMinotaur Archetype = "minotaur"
	ArchetypeDemon    Archetype = "demon"
	ArchetypeAngel    Archetype = "angel"
)

// ObjectiveType affects the pacing of an objective.
type ObjectiveType string

const (
	ObjectiveScout   ObjectiveType = "scout"
	ObjectiveHunt    ObjectiveType = "hunt"
	ObjectiveGather  ObjectiveType = "gather"
	ObjectiveBoss    ObjectiveType = "boss"
	ObjectiveEscort  ObjectiveType = "escort"
	ObjectiveExplore ObjectiveType = "explore"
)

// QuestKind discriminates the two quest shapes.
type QuestKind string

const (
	QuestObjectives QuestKind = "objectives"
	QuestStaged     QuestKind = "staged"
)

// Reward is granted on an action, objective or quest completion.
type Reward struct {
	Gold       int     `json:"gold"`
	Exp        float64 `json:"exp"`
	ItemChance float64 `json:"item_chance"`
}

// Objective is one discrete sub-goal of an objective quest.
type Objective struct {
	Description    string        `json:"description"`
	Type           ObjectiveType `json:"type"`
	Current        int           `json:"current"`
	Target         int           `json:"target"`
	ProgressWeight float64       `json:"progress_weight"`
	PerAction      Reward        `json:"per_action"`
	Completion     Reward        `json:"completion"`
}

// Stage is one flavor step of a staged quest.
type Stage struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// QuestDef is an immutable catalog template. Exactly one of Objectives or
// Stages is populated, as named by Kind.
type QuestDef struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Monster     string      `json:"monster"`
	Archetype   Archetype   `json:"archetype"`
	Difficulty  int         `json:"difficulty"`
	Kind        QuestKind   `json:"kind"`
	Objectives  []Objective `json:"objectives,omitempty"`
	Stages      []Stage     `json:"stages,omitempty"`
	FinalReward Reward      `json:"final_reward"`
}

// ActiveQuest is the live copy of a quest for one attempt.
type ActiveQuest struct {
	Quest          QuestDef `json:"quest"`
	ObjectiveIndex int      `json:"objective_index"`
	SubProgress    float64  `json:"sub_progress"`
	TotalProgress  float64  `json:"total_progress"`
	Progress       float64  `json:"progress"` // staged quests only
	StartedAt      int64    `json:"started_at"`
}

// RestActivity is the recovery mode chosen when HP runs out.
type RestActivity string

const (
	RestNone      RestActivity = ""
	RestIntensive RestActivity = "intensive"
	RestStandard  RestActivity = "standard"
	RestPlain     RestActivity = "plain"
)

// Rest tracks the resting sub-state.
type Rest struct {
	Resting  bool         `json:"resting"`
	Start    int64        `json:"start"`    // millis
	Duration int64        `json:"duration"` // millis
	Activity RestActivity `json:"activity"`
	Progress float64      `json:"progress"` // percent, display only
}

// Combat holds the flavor phase indicator and the skill trainer.
type Combat struct {
	Phase            int     `json:"phase"` // 0..4
	PhaseProgress    float64 `json:"phase_progress"`
	TrainingStat     string  `json:"training_stat"`
	TrainingProgress float64 `json:"training_progress"`
}

// Session is the complete mutable arena state of one player.
type Session struct {
	ID          string       `json:"id"`
	Unlocked    bool         `json:"unlocked"`
	Visited     bool         `json:"visited"`
	Pools       Pools        `json:"pools"`
	Ledger      Ledger       `json:"ledger"`
	Active      *ActiveQuest `json:"active,omitempty"`
	Rest        Rest         `json:"rest"`
	Combat      Combat       `json:"combat"`
	LastTick    int64        `json:"last_tick"`
	TickCount   uint64       `json:"tick_count"`
	RNGSeed     int64        `json:"rng_seed"`
	RNGPosition int64        `json:"rng_position"`
}

// OutcomeBranch is one tier of a defeat outcome.
type OutcomeBranch struct {
	Status   string   `json:"status,omitempty"` // transformative branch only
	Effects  []Effect `json:"effects,omitempty"`
	Messages []string `json:"messages,omitempty"`
}

// OutcomeDef maps an archetype to its two-tier defeat outcome.
type OutcomeDef struct {
	Archetype   Archetype     `json:"archetype"`
	Eligible    []string      `json:"eligible"`
	Transform   OutcomeBranch `json:"transform"`
	Incremental OutcomeBranch `json:"incremental"`
	SourceOrder int           `json:"source_order"`
}

// EventHandler reacts to an engine event with catalog effects. When lists
// event data values that must all match, compared as strings.
type EventHandler struct {
	EventType   string            `json:"event_type"`
	When        map[string]string `json:"when,omitempty"`
	Effects     []Effect          `json:"effects"`
	SourceOrder int               `json:"source_order"`
}

// ArenaDef holds catalog metadata.
type ArenaDef struct {
	Title   string
	Author  string
	Version string
	Intro   string
}

// QuestView is the display summary of the live quest.
type QuestView struct {
	Name              string    `json:"name"`
	Monster           string    `json:"monster"`
	Kind              QuestKind `json:"kind"`
	Difficulty        int       `json:"difficulty"`
	Objective         string    `json:"objective,omitempty"`
	ObjectiveCurrent  int       `json:"objective_current"`
	ObjectiveTarget   int       `json:"objective_target"`
	ObjectiveProgress float64   `json:"objective_progress"`
	QuestProgress     float64   `json:"quest_progress"`
	Stage             string    `json:"stage,omitempty"`
}

// Snapshot is the read-only display record handed to presentation layers.
type Snapshot struct {
	Tick        uint64     `json:"tick"`
	Pools       Pools      `json:"pools"`
	Ledger      Ledger     `json:"ledger"`
	Quest       *QuestView `json:"quest,omitempty"`
	Rest        Rest       `json:"rest"`
	Phase       int        `json:"phase"`
	CombatPower int        `json:"combat_power"`
	Log         []string   `json:"log"`
}
