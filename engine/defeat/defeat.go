// Package defeat resolves a lost fight: an ordered archetype table with a
// two-tier escalation (transformative first, incremental after) and a
// generic fallback. Every defeat costs a flat HP penalty.
package defeat

import (
	"github.com/nathoo/arenacore/engine/effects"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Branch names which tier of an outcome applied.
type Branch string

const (
	BranchTransform   Branch = "transform"
	BranchIncremental Branch = "incremental"
	BranchGeneric     Branch = "generic"
)

// Outcome reports what a defeat did.
type Outcome struct {
	Archetype types.Archetype
	Branch    Branch
	Status    string // ledger status after resolution
	Events    []types.Event
	Output    []string
}

// Match returns the first outcome declared for archetype, in catalog order.
func Match(defs *state.Defs, archetype types.Archetype) (types.OutcomeDef, bool) {
	if archetype == types.ArchetypeNone {
		return types.OutcomeDef{}, false
	}
	for _, o := range defs.Outcomes {
		if o.Archetype == archetype {
			return o, true
		}
	}
	return types.OutcomeDef{}, false
}

// Eligible reports whether status still allows the transformative branch.
// An outcome without an explicit set accepts only the initial status.
func Eligible(o types.OutcomeDef, status, initial string) bool {
	if len(o.Eligible) == 0 {
		return status == initial
	}
	for _, e := range o.Eligible {
		if e == status {
			return true
		}
	}
	return false
}

// Resolve applies the defeat outcome for q's archetype, then the HP penalty.
// Messages go to out as well as into the returned Outcome.
func Resolve(s *types.Session, defs *state.Defs, rng types.Rand, out types.Sink, q types.QuestDef) Outcome {
	res := Outcome{Archetype: q.Archetype}
	ctx := effects.Context{Quest: q.Name, Monster: q.Monster}
	vars := map[string]string{"quest": q.Name, "monster": q.Monster}

	if o, ok := Match(defs, q.Archetype); ok {
		branch := o.Incremental
		res.Branch = BranchIncremental
		if Eligible(o, s.Ledger.Status, defs.Tuning.Defeat.InitialStatus) {
			branch = o.Transform
			res.Branch = BranchTransform
		}

		effs := branch.Effects
		if branch.Status != "" {
			effs = append([]types.Effect{{Type: "set_status", Params: map[string]any{"status": branch.Status}}}, effs...)
		}
		res.Events, res.Output = effects.Apply(s, defs, effs, ctx)

		if len(branch.Messages) > 0 {
			vars["status"] = s.Ledger.Status
			res.Output = append(res.Output, state.Interpolate(branch.Messages[rng.Intn(len(branch.Messages))], vars))
		}
	} else {
		res.Branch = BranchGeneric
		msg := state.Message(defs, rng, "defeat.generic", vars)
		if msg == "" {
			msg = state.Interpolate("{monster} overpowers you. You stagger out of the arena.", vars)
		}
		res.Output = append(res.Output, msg)
	}

	p := &s.Pools
	p.HP = state.Clamp(p.HP-defs.Tuning.Defeat.HPPenalty, 0, p.MaxHP)
	res.Status = s.Ledger.Status

	if out != nil {
		for _, line := range res.Output {
			out.Emit(line)
		}
	}
	return res
}
