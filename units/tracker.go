package units

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"juno/gameapi"
	"juno/unitdata"
)

// PollInterval is the cadence of own-unit inventory polls. Combat tracking
// needs to be fast; everything slower lives in the intelligence service.
const PollInterval = 500 * time.Millisecond

// ActorSource is the slice of the RPC client the tracker needs.
type ActorSource interface {
	QueryActors(ctx context.Context, q gameapi.TargetsQuery, includeFrozen bool) ([]gameapi.Actor, error)
	Language() gameapi.Language
}

// Tracker polls own-faction actors, diffs against the previous inventory and
// emits add/remove lifecycle events. It is the single owner of unit state.
type Tracker struct {
	api ActorSource

	mu    sync.Mutex
	units map[int]*CombatUnit

	observers []Observer
}

func NewTracker(api ActorSource) *Tracker {
	return &Tracker{api: api, units: make(map[int]*CombatUnit)}
}

// Subscribe registers an observer. Not safe to call once Run has started;
// wiring happens before the loops do.
func (t *Tracker) Subscribe(o Observer) {
	t.observers = append(t.observers, o)
}

// Run polls until ctx is cancelled. Each cycle's errors are logged, never
// fatal; the loop exits within one poll period of cancellation.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(PollInterval)
	defer ticker.Stop()
	slog.Info("unit tracker started", "interval", PollInterval)
	for {
		if err := t.Poll(ctx); err != nil {
			slog.Warn("unit poll failed", "error", err)
		}
		select {
		case <-ctx.Done():
			slog.Info("unit tracker stopped")
			return
		case <-ticker.C:
		}
	}
}

// Poll runs one inventory diff. Exported so tests and the commander can step
// the tracker deterministically.
func (t *Tracker) Poll(ctx context.Context) error {
	// Frozen own actors are fog ghosts; they would shadow the live unit.
	actors, err := t.api.QueryActors(ctx, gameapi.TargetsQuery{Range: "all", Side: gameapi.SideOwn}, false)
	if err != nil {
		return err
	}
	lang := t.api.Language()

	var events []Event
	t.mu.Lock()
	seen := make(map[int]bool, len(actors))
	for _, a := range actors {
		if lang.SideOf(a.Faction) != gameapi.SideOwn {
			continue
		}
		category, score := unitdata.CombatInfo(a.Type)
		if score <= 0 || category == unitdata.Defense || category == unitdata.Other {
			continue
		}
		seen[a.ID] = true

		pos := gameapi.Location{}
		if a.Position != nil {
			pos = *a.Position
		}
		if u, ok := t.units[a.ID]; ok {
			u.HPRatio = a.HPRatio()
			u.Position = pos
			continue
		}
		u := &CombatUnit{
			ID:       a.ID,
			Type:     a.Type,
			HPRatio:  a.HPRatio(),
			Position: pos,
			Category: category,
			Score:    score,
		}
		t.units[a.ID] = u
		events = append(events, Event{Kind: UnitAdded, Unit: *u, ID: u.ID})
	}

	removed := make([]int, 0)
	for id := range t.units {
		if !seen[id] {
			removed = append(removed, id)
		}
	}
	sort.Ints(removed)
	for _, id := range removed {
		delete(t.units, id)
		events = append(events, Event{Kind: UnitRemoved, ID: id})
	}
	t.mu.Unlock()

	// Dispatch outside the lock so observers may call back into the tracker.
	for _, ev := range events {
		t.dispatch(ev)
	}
	return nil
}

func (t *Tracker) dispatch(ev Event) {
	for _, o := range t.observers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					slog.Error("unit event observer panicked", "kind", ev.Kind, "id", ev.ID, "panic", r)
				}
			}()
			o.HandleUnitEvent(ev)
		}()
	}
}

// Unit returns a copy of the tracked unit.
func (t *Tracker) Unit(id int) (CombatUnit, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	u, ok := t.units[id]
	if !ok {
		return CombatUnit{}, false
	}
	return *u, true
}

// Units returns copies of all tracked units, ordered by id.
func (t *Tracker) Units() []CombatUnit {
	t.mu.Lock()
	out := make([]CombatUnit, 0, len(t.units))
	for _, u := range t.units {
		out = append(out, *u)
	}
	t.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// AssignSquad records the squad a unit belongs to. Called by the Manager
// only; membership bookkeeping lives there.
func (t *Tracker) AssignSquad(id int, squadID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if u, ok := t.units[id]; ok {
		u.SquadID = squadID
	}
}
