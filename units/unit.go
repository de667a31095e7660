// Package units owns the authoritative set of live combat units and their
// grouping into companies. The Tracker polls the game and is the only writer
// of unit state; the Manager groups units by id and never holds a pointer
// that could outlive the tracker's bookkeeping.
package units

import (
	"juno/gameapi"
	"juno/unitdata"
)

// CombatUnit is one live own-faction combat actor. All fields are maintained
// by the Tracker's poll; SquadID is maintained by the Manager through
// Tracker.AssignSquad.
type CombatUnit struct {
	ID       int
	Type     string
	HPRatio  float64
	Position gameapi.Location
	Category unitdata.Category
	Score    float64
	SquadID  string
}

// EventKind discriminates tracker lifecycle events.
type EventKind int

const (
	UnitAdded EventKind = iota
	UnitRemoved
)

// Event is dispatched synchronously after each poll step, strictly before
// the tracker sleeps. Unit is set for UnitAdded; ID for both kinds.
type Event struct {
	Kind EventKind
	Unit CombatUnit
	ID   int
}

// Observer receives tracker lifecycle events. Panics inside an observer are
// logged and never abort the poll loop.
type Observer interface {
	HandleUnitEvent(Event)
}
