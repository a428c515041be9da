// Package progress is the reward resolver and leveler: gold, experience
// with multi-level rollover, milestone bonuses and skill grants.
package progress

import (
	"math"
	"strconv"

	"github.com/nathoo/arenacore/engine/loot"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// LevelUp records one level gained during a grant.
type LevelUp struct {
	Level     int
	Stat      string
	Bonus     int
	Gold      int
	Milestone bool
	Rank      string
	Drop      *loot.Drop
}

// Grant summarizes what a reward paid out beyond gold and experience.
type Grant struct {
	LevelUps []LevelUp
	Drop     *loot.Drop // reward drop, not level-up drops
}

// GrantGold adds to the earned-gold counter. Non-positive amounts are ignored.
func GrantGold(s *types.Session, amount int) {
	if amount > 0 {
		s.Ledger.GoldEarned += amount
	}
}

// GrantExperience adds experience and performs every level-up it pays for.
// On return Experience < ExperienceToNext.
func GrantExperience(s *types.Session, defs *state.Defs, rng types.Rand, out types.Sink, amount float64) []LevelUp {
	l := &s.Ledger
	if amount > 0 && !math.IsInf(amount, 0) {
		l.Experience += amount
	}
	if math.IsNaN(l.Experience) || l.Experience < 0 {
		l.Experience = 0
	}
	if math.IsNaN(l.ExperienceToNext) || l.ExperienceToNext <= 0 {
		l.ExperienceToNext = defs.Tuning.Level.StartExperienceToNext
	}

	var ups []LevelUp
	for l.Experience >= l.ExperienceToNext {
		prev := l.ExperienceToNext
		l.Level++
		l.Experience -= prev
		l.ExperienceToNext = math.Floor(prev * defs.Tuning.Level.Growth)
		if l.ExperienceToNext <= prev {
			l.ExperienceToNext = prev + 1
		}
		ups = append(ups, levelUp(s, defs, rng, out))
	}
	return ups
}

func levelUp(s *types.Session, defs *state.Defs, rng types.Rand, out types.Sink) LevelUp {
	t := defs.Tuning.Level
	l := &s.Ledger
	up := LevelUp{Level: l.Level}

	if len(defs.Trainable) > 0 {
		up.Stat = defs.Trainable[rng.Intn(len(defs.Trainable))]
		up.Bonus = t.StatBonusMin + rng.Intn(t.StatBonusMax-t.StatBonusMin+1)
		l.BaseStats[up.Stat] += up.Bonus
		state.RecomputeStats(l, defs.Tuning.Training.SkillDivisor)
	}

	up.Gold = l.Level * t.GoldPerLevel
	GrantGold(s, up.Gold)
	state.Announce(out, defs, rng, "level.up", "Level up! You are now level {level} (+{bonus} {stat}).", map[string]string{
		"level": strconv.Itoa(l.Level),
		"stat":  up.Stat,
		"bonus": strconv.Itoa(up.Bonus),
		"gold":  strconv.Itoa(up.Gold),
	})

	if t.MilestoneEvery > 0 && l.Level%t.MilestoneEvery == 0 {
		up.Milestone = true
		bonus := l.Level * t.MilestoneGold
		GrantGold(s, bonus)
		up.Gold += bonus
		l.Rank = state.RankFor(t, l.Level)
		up.Rank = l.Rank
		state.Announce(out, defs, rng, "level.milestone", "Milestone! Level {level}: you are now a {rank}. +{gold} gold.", map[string]string{
			"level": strconv.Itoa(l.Level),
			"rank":  l.Rank,
			"gold":  strconv.Itoa(bonus),
		})
	}

	if rng.Float64() < t.DropChance {
		if drop, ok := loot.Roll(s, defs, rng, out, min(l.Level, t.DropContextCap)); ok {
			up.Drop = &drop
		}
	}
	return up
}

// GrantReward pays gold and experience, then rolls an item drop with the
// reward's chance at difficulty context ctx.
func GrantReward(s *types.Session, defs *state.Defs, rng types.Rand, out types.Sink, r types.Reward, ctx int) Grant {
	GrantGold(s, r.Gold)
	g := Grant{LevelUps: GrantExperience(s, defs, rng, out, r.Exp)}
	if r.ItemChance > 0 && rng.Float64() < r.ItemChance {
		if drop, ok := loot.Roll(s, defs, rng, out, ctx); ok {
			g.Drop = &drop
		}
	}
	return g
}

// GrantSkill adds training progress to stat and recomputes derived stats.
// Unknown stats are ignored.
func GrantSkill(s *types.Session, defs *state.Defs, stat string, amount float64) {
	l := &s.Ledger
	if _, ok := l.BaseStats[stat]; !ok || amount <= 0 {
		return
	}
	l.SkillProgress[stat] += amount
	state.RecomputeStats(l, defs.Tuning.Training.SkillDivisor)
}
