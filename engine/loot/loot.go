// Package loot resolves item drops: eligibility by item level, uniform
// selection, and the keep-the-stronger-item rule.
package loot

import (
	"math"
	"strconv"

	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Drop describes a resolved roll.
type Drop struct {
	Item     types.Item
	Equipped bool
	Refund   int
}

// Eligible returns catalog items whose item level (power / PowerPerLevel)
// is at most ctx + LevelWindow.
func Eligible(defs *state.Defs, ctx int) []types.Item {
	t := defs.Tuning.Loot
	perLevel := t.PowerPerLevel
	if perLevel <= 0 {
		perLevel = 1
	}
	limit := float64(ctx) + t.LevelWindow
	var out []types.Item
	for _, it := range defs.Items {
		if float64(it.Power)/perLevel <= limit {
			out = append(out, it)
		}
	}
	return out
}

// Roll draws one eligible item. The item is equipped when its slot is empty
// or it is strictly stronger than the current one; otherwise it is
// converted to gold. ok is false when nothing is eligible.
func Roll(s *types.Session, defs *state.Defs, rng types.Rand, out types.Sink, ctx int) (Drop, bool) {
	pool := Eligible(defs, ctx)
	if len(pool) == 0 {
		return Drop{}, false
	}
	item := pool[rng.Intn(len(pool))]
	drop := Drop{Item: item}

	l := &s.Ledger
	vars := map[string]string{
		"item":   item.Name,
		"rarity": string(item.Rarity),
		"slot":   string(item.Slot),
		"power":  strconv.Itoa(item.Power),
	}

	current := l.Equipment[item.Slot]
	if current == nil || item.Power > current.Power {
		equipped := item
		l.Equipment[item.Slot] = &equipped
		l.ItemsFound++
		s.Pools.Condition[item.Slot] = 100
		drop.Equipped = true
		state.Announce(out, defs, rng, "loot."+string(item.Rarity),
			"Found {item} ({rarity} {slot}, power {power}) and equipped it.", vars)
		return drop, true
	}

	drop.Refund = int(math.Floor(float64(item.Power) * defs.Tuning.Loot.DuplicateFactor))
	if drop.Refund > 0 {
		l.GoldEarned += drop.Refund
	}
	vars["gold"] = strconv.Itoa(drop.Refund)
	state.Announce(out, defs, rng, "loot.duplicate",
		"Found {item} but already own better. Sold it for {gold} gold.", vars)
	return drop, true
}
