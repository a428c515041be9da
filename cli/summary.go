package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Summary renders a snapshot as plain text lines.
func Summary(snap types.Snapshot, purse int) []string {
	l := snap.Ledger
	p := snap.Pools
	lines := []string{
		fmt.Sprintf("Level %d %s (%.0f/%.0f exp)  Power %d  Status %s",
			l.Level, l.Rank, l.Experience, l.ExperienceToNext, snap.CombatPower, l.Status),
		fmt.Sprintf("HP %.0f/%.0f  Stamina %.0f/%.0f  Gold %d (purse %d)",
			p.HP, p.MaxHP, p.Stamina, p.StaminaMax, l.GoldEarned, purse),
		fmt.Sprintf("Sensitivity %.2f  Wetness %.2f  Corruption %.2f  Magic resistance %.2f",
			p.Effects.Sensitivity, p.Effects.Wetness, p.Effects.Corruption, p.Effects.MagicResistance),
		fmt.Sprintf("Quests %d  Deaths %d  Items %d", l.QuestsCompleted, l.TotalDeaths, l.ItemsFound),
		"Stats: " + statLine(l.Stats),
	}

	var gear []string
	for _, slot := range state.Slots {
		if it := l.Equipment[slot]; it != nil {
			gear = append(gear, fmt.Sprintf("%s: %s (%d, %.0f%%)", slot, it.Name, it.Power, p.Condition[slot]))
		}
	}
	if len(gear) > 0 {
		lines = append(lines, "Gear: "+strings.Join(gear, ", "))
	}

	switch {
	case snap.Rest.Resting:
		lines = append(lines, fmt.Sprintf("Resting (%s) %.0f%%", snap.Rest.Activity, snap.Rest.Progress))
	case snap.Quest != nil:
		q := snap.Quest
		if q.Kind == types.QuestStaged {
			lines = append(lines, fmt.Sprintf("Quest %s vs %s: %s %.0f%%", q.Name, q.Monster, q.Stage, q.QuestProgress))
		} else {
			lines = append(lines, fmt.Sprintf("Quest %s vs %s: %s %d/%d (%.0f%%), overall %.0f%%",
				q.Name, q.Monster, q.Objective, q.ObjectiveCurrent, q.ObjectiveTarget, q.ObjectiveProgress, q.QuestProgress))
		}
	default:
		lines = append(lines, "Searching for a quest...")
	}
	return lines
}

func statLine(stats map[string]int) string {
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s %d", k, stats[k])
	}
	return strings.Join(parts, ", ")
}
