package loader

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/nathoo/arenacore/engine/effects"
	"github.com/nathoo/arenacore/engine/events"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

func (e *ValidationError) errorf(format string, args ...any) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

func (e *ValidationError) warnf(format string, args ...any) {
	e.Warnings = append(e.Warnings, fmt.Sprintf(format, args...))
}

var validArchetypes = map[types.Archetype]bool{
	types.ArchetypeNone:     true,
	types.ArchetypeSuccubus: true,
	types.ArchetypeAmazon:   true,
	types.ArchetypeWitch:    true,
	types.ArchetypeGoddess:  true,
	types.ArchetypeMinotaur: true,
	types.ArchetypeDemon:    true,
	types.ArchetypeAngel:    true,
}

var validObjectiveTypes = map[types.ObjectiveType]bool{
	types.ObjectiveScout:   true,
	types.ObjectiveHunt:    true,
	types.ObjectiveGather:  true,
	types.ObjectiveBoss:    true,
	types.ObjectiveEscort:  true,
	types.ObjectiveExplore: true,
}

var validRarities = map[types.Rarity]bool{
	types.RarityCommon:    true,
	types.RarityUncommon:  true,
	types.RarityRare:      true,
	types.RarityLegendary: true,
}

// validate checks the compiled defs and logs any warnings. Only errors fail.
func validate(defs *state.Defs) error {
	ve := Validate(defs)
	for _, w := range ve.Warnings {
		log.Warn("arena content", "warning", w)
	}
	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// Validate checks compiled defs for referential integrity and consistency
// and reports every error and warning found.
func Validate(defs *state.Defs) *ValidationError {
	ve := &ValidationError{}

	// Arena title required.
	if defs.Arena.Title == "" {
		ve.errorf("Arena.title is required")
	}
	if len(defs.Quests) == 0 {
		ve.errorf("at least one Quest is required")
	}

	validateQuests(defs, ve)
	validateItems(defs, ve)
	validateOutcomes(defs, ve)
	validateHandlers(defs, ve)

	for key, pool := range defs.Messages {
		if len(pool) == 0 {
			ve.warnf("message pool %q is empty", key)
		}
	}

	return ve
}

func validateQuests(defs *state.Defs, ve *ValidationError) {
	seen := map[string]bool{}
	covered := map[types.Archetype]bool{}
	for _, o := range defs.Outcomes {
		covered[o.Archetype] = true
	}

	for _, q := range defs.Quests {
		if seen[q.ID] {
			ve.errorf("duplicate quest ID %q", q.ID)
		}
		seen[q.ID] = true

		if q.Name == "" {
			ve.errorf("quest %q has no name", q.ID)
		}
		if q.Difficulty < 1 {
			ve.errorf("quest %q difficulty must be at least 1, got %d", q.ID, q.Difficulty)
		}
		if !validArchetypes[q.Archetype] {
			ve.errorf("quest %q has unknown archetype %q", q.ID, q.Archetype)
		} else if q.Kind == types.QuestStaged && q.Archetype != types.ArchetypeNone && !covered[q.Archetype] {
			ve.warnf("quest %q archetype %q has no Outcome; defeats use the generic fallback", q.ID, q.Archetype)
		}

		switch q.Kind {
		case types.QuestObjectives:
			if len(q.Objectives) == 0 {
				ve.errorf("quest %q has no objectives", q.ID)
			}
			for i, o := range q.Objectives {
				if o.Target <= 0 {
					ve.errorf("quest %q objective %d target must be positive, got %d", q.ID, i+1, o.Target)
				}
				if !validObjectiveTypes[o.Type] {
					ve.errorf("quest %q objective %d has unknown type %q", q.ID, i+1, o.Type)
				}
				if o.ProgressWeight < 0 {
					ve.errorf("quest %q objective %d weight must not be negative", q.ID, i+1)
				}
			}
		case types.QuestStaged:
			if len(q.Stages) == 0 {
				ve.errorf("staged quest %q has no stages", q.ID)
			}
		default:
			ve.errorf("quest %q has unknown kind %q", q.ID, q.Kind)
		}
	}
}

func validateItems(defs *state.Defs, ve *ValidationError) {
	seen := map[string]bool{}
	slots := map[types.Slot]bool{}
	for _, s := range state.Slots {
		slots[s] = true
	}

	for _, it := range defs.Items {
		if seen[it.ID] {
			ve.errorf("duplicate item ID %q", it.ID)
		}
		seen[it.ID] = true

		if !slots[it.Slot] {
			ve.errorf("item %q has unknown slot %q", it.ID, it.Slot)
		}
		if !validRarities[it.Rarity] {
			ve.errorf("item %q has unknown rarity %q", it.ID, it.Rarity)
		}
		if it.Power < 0 {
			ve.errorf("item %q power must not be negative", it.ID)
		}
	}
	if len(defs.Items) == 0 {
		ve.warnf("no Items defined; drops are disabled")
	}
}

func validateOutcomes(defs *state.Defs, ve *ValidationError) {
	// Defeats only happen in staged quests.
	staged := map[types.Archetype]bool{}
	for _, q := range defs.Quests {
		if q.Kind == types.QuestStaged {
			staged[q.Archetype] = true
		}
	}

	seen := map[types.Archetype]bool{}
	for _, o := range defs.Outcomes {
		if o.Archetype == types.ArchetypeNone || !validArchetypes[o.Archetype] {
			ve.errorf("Outcome has unknown archetype %q", o.Archetype)
			continue
		}
		if seen[o.Archetype] {
			ve.warnf("Outcome %q is declared more than once; only the first applies", o.Archetype)
		}
		seen[o.Archetype] = true
		if !staged[o.Archetype] {
			ve.warnf("Outcome %q matches no staged quest; it never applies", o.Archetype)
		}

		validateEffects(string(o.Archetype)+".transform", o.Transform.Effects, ve)
		validateEffects(string(o.Archetype)+".incremental", o.Incremental.Effects, ve)
	}
}

func validateHandlers(defs *state.Defs, ve *ValidationError) {
	for _, h := range defs.Handlers {
		where := "On " + h.EventType
		if !events.Known[h.EventType] {
			ve.warnf("%s: the engine never emits this event", where)
		}
		if len(h.Effects) == 0 {
			ve.warnf("%s: handler has no effects", where)
		}
		validateEffects(where, h.Effects, ve)
	}
}

func validateEffects(where string, effs []types.Effect, ve *ValidationError) {
	for _, eff := range effs {
		if !effects.Known[eff.Type] {
			ve.errorf("%s: unknown effect type %q", where, eff.Type)
			continue
		}
		if eff.Type == "nudge" {
			slider, _ := eff.Params["slider"].(string)
			if !effects.Sliders[slider] {
				ve.errorf("%s: nudge targets unknown slider %q", where, slider)
			}
		}
	}
}
