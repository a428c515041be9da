// Package engine provides the Tick() orchestrator that wires together the
// resource pools, quest state machines, reward and defeat resolvers into a
// single fixed-rate update.
package engine

import (
	"encoding/json"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/nathoo/arenacore/engine/loot"
	"github.com/nathoo/arenacore/engine/pools"
	"github.com/nathoo/arenacore/engine/quest"
	"github.com/nathoo/arenacore/engine/save"
	"github.com/nathoo/arenacore/engine/state"
	"github.com/nathoo/arenacore/types"
)

// Engine holds the arena definitions and the mutable session. It is not
// safe for concurrent use; callers serialize access.
type Engine struct {
	Defs    *state.Defs
	Session *types.Session
	RNG     *RNG
	Feed    *Feed

	// Wallet receives every gold grant. Optional.
	Wallet types.Wallet
	// Sink receives every announcement in addition to Feed. Optional.
	Sink types.Sink
	// Log receives developer-facing diagnostics.
	Log *log.Logger

	paid      int // GoldEarned already deposited into Wallet
	ready     chan struct{}
	readyOnce sync.Once
}

// New creates a new engine from definitions with a fresh, gated session.
func New(defs *state.Defs, seed int64) *Engine {
	s := state.NewSession(defs)
	s.ID = uuid.NewString()
	s.RNGSeed = seed
	return &Engine{
		Defs:    defs,
		Session: s,
		RNG:     NewRNG(seed),
		Feed:    NewFeed(defs.Tuning.FeedCapacity),
		Log:     log.New(io.Discard),
		ready:   make(chan struct{}),
	}
}

// RestoreRNG re-creates the RNG from seed and advances to the saved position.
func (e *Engine) RestoreRNG(seed int64, position int64) {
	e.RNG = RestoreRNG(seed, position)
	e.Session.RNGSeed = seed
	e.Session.RNGPosition = position
}

// Unlock sets the external unlock flag.
func (e *Engine) Unlock() {
	e.Session.Unlocked = true
	e.checkReady()
}

// MarkVisited sets the first-view flag.
func (e *Engine) MarkVisited() {
	e.Session.Visited = true
	e.checkReady()
}

// Ready is closed once the session is both unlocked and visited.
// Schedulers wait on it before driving Tick.
func (e *Engine) Ready() <-chan struct{} {
	return e.ready
}

func (e *Engine) checkReady() {
	if e.Session.Unlocked && e.Session.Visited {
		e.readyOnce.Do(func() { close(e.ready) })
	}
}

// Tick advances the simulation by one step if at least the tick interval
// has elapsed since the last effective tick. Calls in between are no-ops.
func (e *Engine) Tick(now int64) types.Result {
	var result types.Result
	s := e.Session

	// 0. Activation gating.
	if !s.Unlocked || !s.Visited {
		return result
	}

	// 1. Throttle against the last effective tick.
	if s.TickCount > 0 {
		if now < s.LastTick {
			e.Log.Warn("clock moved backwards, resyncing", "last", s.LastTick, "now", now)
			s.LastTick = now
			return result
		}
		if now-s.LastTick < e.Defs.Tuning.TickIntervalMillis {
			return result
		}
	}
	s.LastTick = now
	s.TickCount++
	result.Ticked = true

	// 2. Coerce anything a partial load left missing.
	state.Normalize(s, e.Defs)

	out := &tickSink{e: e, result: &result}
	fought := s.Active

	switch {
	// 3. Resting: recover, nothing else happens.
	case s.Rest.Resting:
		e.rest(now, out)

	// 4. HP exhausted: abandon and lie down.
	case s.Pools.HP <= 0:
		e.exhaust(now, out)

	// 5. Active.
	default:
		e.active(now, out)
	}

	// 6. Catalog handlers, one pass over this tick's events.
	e.dispatch(out, fought)

	// 7. Pay out gold earned this tick.
	e.settle()

	// 8. Track RNG position for save/load.
	s.RNGPosition = e.RNG.Position()

	return result
}

// active runs one tick of the searching or questing mode.
func (e *Engine) active(now int64, out *tickSink) {
	s := e.Session
	t := e.Defs.Tuning

	a := pools.Activity{Phase: s.Combat.Phase}
	if s.Active != nil {
		a.Questing = true
		a.Difficulty = s.Active.Quest.Difficulty
	}

	pools.Drift(&s.Pools, t.Pools, a)
	if e.RNG.Chance(t.Messages.DriftOdds) {
		e.announce(out, "drift", "", nil)
	}
	pools.DrainHP(&s.Pools, t.Pools, a)

	var gain float64
	var vars map[string]string
	if s.Active == nil {
		e.startQuest(now, out)
	} else {
		vars = questVars(s.Active.Quest)
		gain = e.processQuest(out)
	}

	e.advancePhase(gain, vars, out)
	e.train(out)
	pools.Stamina(&s.Pools, t.Pools, a, pools.EquipmentBonus(&s.Pools, &s.Ledger, t.Pools))
	pools.Wear(&s.Pools, &s.Ledger, t.Pools, a)
}

// settle deposits the gold earned since the last settlement.
func (e *Engine) settle() {
	earned := e.Session.Ledger.GoldEarned
	if delta := earned - e.paid; delta > 0 && e.Wallet != nil {
		e.Wallet.Deposit(delta)
	}
	e.paid = earned
}

// Snapshot returns a read-only copy of the display data.
func (e *Engine) Snapshot() types.Snapshot {
	s := e.Session
	return types.Snapshot{
		Tick:        s.TickCount,
		Pools:       clonePools(s.Pools),
		Ledger:      cloneLedger(s.Ledger),
		Quest:       quest.View(s.Active),
		Rest:        s.Rest,
		Phase:       s.Combat.Phase,
		CombatPower: state.CombatPower(&s.Ledger, e.Defs),
		Log:         e.Feed.Last(e.Defs.Tuning.FeedDisplay),
	}
}

// Save serializes the session and recent feed.
func (e *Engine) Save() ([]byte, error) {
	e.Session.RNGPosition = e.RNG.Position()
	return save.Save(e.Session, e.Defs, e.Feed.Last(-1))
}

// Load replaces the session with a saved one. Missing fields take their
// defaults; gold already earned is not deposited again.
func (e *Engine) Load(data []byte) error {
	sd, err := save.Load(data)
	if err != nil {
		return err
	}
	s := state.NewSession(e.Defs)
	if err := save.ApplySave(s, sd); err != nil {
		return err
	}
	state.Normalize(s, e.Defs)
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	e.Session = s
	e.RestoreRNG(s.RNGSeed, s.RNGPosition)
	e.Feed.Reset(sd.Log)
	e.paid = s.Ledger.GoldEarned
	e.checkReady()
	return nil
}

// SaveSlot writes the session to the named slot under dir.
func (e *Engine) SaveSlot(dir, name string) error {
	data, err := e.Save()
	if err != nil {
		return err
	}
	return save.WriteSlot(dir, name, data)
}

// LoadSlot loads the session from the named slot under dir. A loaded
// session counts as visited.
func (e *Engine) LoadSlot(dir, name string) error {
	data, err := save.ReadSlot(dir, name)
	if err != nil {
		return err
	}
	if err := e.Load(data); err != nil {
		return err
	}
	e.MarkVisited()
	return nil
}

// Dump renders the live session as indented JSON lines.
func (e *Engine) Dump() ([]string, error) {
	data, err := json.MarshalIndent(e.Session, "", "  ")
	if err != nil {
		return nil, err
	}
	return strings.Split(string(data), "\n"), nil
}

// tickSink fans announcements out to the feed, the external sink and the
// tick result.
type tickSink struct {
	e      *Engine
	result *types.Result
}

func (t *tickSink) Emit(msg string) {
	if msg == "" {
		return
	}
	t.e.Feed.Emit(msg)
	if t.e.Sink != nil {
		t.e.Sink.Emit(msg)
	}
	t.result.Output = append(t.result.Output, msg)
}

func (t *tickSink) event(typ string, data map[string]any) {
	t.result.Events = append(t.result.Events, types.Event{Type: typ, Data: data})
}

func (t *tickSink) drop(d loot.Drop) {
	t.event("item_found", map[string]any{
		"item":     d.Item.ID,
		"slot":     string(d.Item.Slot),
		"rarity":   string(d.Item.Rarity),
		"equipped": d.Equipped,
		"refund":   d.Refund,
	})
}

func clonePools(p types.Pools) types.Pools {
	cp := p
	cp.Condition = make(map[types.Slot]float64, len(p.Condition))
	for k, v := range p.Condition {
		cp.Condition[k] = v
	}
	return cp
}

func cloneLedger(l types.Ledger) types.Ledger {
	cp := l
	cp.SkillProgress = cloneMap(l.SkillProgress)
	cp.SkillCaps = cloneMap(l.SkillCaps)
	cp.BaseStats = cloneMap(l.BaseStats)
	cp.Stats = cloneMap(l.Stats)
	cp.Equipment = make(map[types.Slot]*types.Item, len(l.Equipment))
	for slot, item := range l.Equipment {
		if item != nil {
			it := *item
			cp.Equipment[slot] = &it
		}
	}
	return cp
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	cp := make(map[K]V, len(m))
	for k, v := range m {
		cp[k] = v
	}
	return cp
}
