package units

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"juno/gameapi"
)

// MaxCompanies is the highest numbered company a commander may enable.
const MaxCompanies = 8

// Manager owns company composition. Every unit belongs to exactly one squad
// at any time; the reserved unassigned and player squads always exist and are
// hidden from Status readers.
type Manager struct {
	tracker *Tracker

	mu         sync.Mutex
	unassigned *Squad
	player     *Squad
	companies  map[string]*Squad
}

// NewManager wires itself as a tracker observer and enables companies 1 and 2
// so the commander is never without a drop zone for fresh units.
func NewManager(tracker *Tracker) *Manager {
	m := &Manager{
		tracker:    tracker,
		unassigned: newSquad(SquadUnassigned, "Unassigned", 1.0),
		player:     newSquad(SquadPlayer, "Player Control", 1.0),
		companies:  make(map[string]*Squad),
	}
	m.EnableCompany("1", 1.0)
	m.EnableCompany("2", 1.0)
	tracker.Subscribe(m)
	return m
}

func validCompanyID(id string) bool {
	n, err := strconv.Atoi(id)
	return err == nil && n >= 1 && n <= MaxCompanies
}

// EnableCompany creates a company if absent. Idempotent; enabling an already
// active company succeeds without touching its weight.
func (m *Manager) EnableCompany(id string, weight float64) error {
	if !validCompanyID(id) {
		return fmt.Errorf("company id %q must be 1-%d", id, MaxCompanies)
	}
	if weight <= 0 {
		weight = 1.0
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.companies[id]; ok {
		return nil
	}
	m.companies[id] = newSquad(id, "Company "+id, weight)
	slog.Info("company enabled", "id", id, "weight", weight)
	return nil
}

// UpdateCompanyWeight changes a company's reinforcement weight, clamped to a
// floor of 0.1 so the load metric never divides by zero.
func (m *Manager) UpdateCompanyWeight(id string, weight float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		slog.Warn("weight update for unknown company", "id", id)
		return
	}
	if weight < 0.1 {
		weight = 0.1
	}
	c.Weight = weight
	slog.Info("company weight updated", "id", id, "weight", weight)
}

// DeleteCompany moves all members to unassigned and removes the company.
func (m *Manager) DeleteCompany(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.companies[id]
	if !ok {
		slog.Warn("delete of unknown company", "id", id)
		return
	}
	for uid := range c.members {
		m.moveLocked(uid, m.unassigned)
	}
	delete(m.companies, id)
	slog.Info("company deleted", "id", id)
}

// TransferUnit moves a tracked unit into the named squad. The unbind from the
// old squad and the bind to the new one happen under one lock acquisition.
func (m *Manager) TransferUnit(unitID int, squadID string) error {
	if _, ok := m.tracker.Unit(unitID); !ok {
		return fmt.Errorf("unit %d not tracked", unitID)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	target := m.squadLocked(squadID)
	if target == nil {
		return fmt.Errorf("squad %q not found", squadID)
	}
	m.moveLocked(unitID, target)
	return nil
}

func (m *Manager) squadLocked(id string) *Squad {
	switch id {
	case SquadUnassigned:
		return m.unassigned
	case SquadPlayer:
		return m.player
	default:
		return m.companies[id]
	}
}

// moveLocked unbinds the unit from whichever squad holds it and binds it to
// target, then mirrors the assignment onto the unit record.
func (m *Manager) moveLocked(unitID int, target *Squad) {
	for _, s := range m.allSquadsLocked() {
		delete(s.members, unitID)
	}
	target.members[unitID] = struct{}{}
	m.tracker.AssignSquad(unitID, target.ID)
}

func (m *Manager) allSquadsLocked() []*Squad {
	out := []*Squad{m.unassigned, m.player}
	for _, id := range m.companyIDsLocked() {
		out = append(out, m.companies[id])
	}
	return out
}

func (m *Manager) companyIDsLocked() []string {
	ids := make([]string, 0, len(m.companies))
	for id := range m.companies {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// HandleUnitEvent implements the tracker Observer: greedy assignment on add,
// membership scrub on removal.
func (m *Manager) HandleUnitEvent(ev Event) {
	switch ev.Kind {
	case UnitAdded:
		m.autoAssign(ev.Unit)
	case UnitRemoved:
		m.pruneUnit(ev.ID)
	}
}

// autoAssign places a fresh unit into the least-loaded company. Load is
// (total score + unit count) / weight; ties break to the lowest company id
// because iteration is in ascending id order with a strict comparison.
func (m *Manager) autoAssign(u CombatUnit) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.companies) == 0 {
		m.moveLocked(u.ID, m.unassigned)
		return
	}
	var best *Squad
	bestLoad := 0.0
	for _, id := range m.companyIDsLocked() {
		c := m.companies[id]
		w := c.Weight
		if w <= 0 {
			w = 0.1
		}
		load := (m.totalScoreLocked(c) + float64(c.Size())) / w
		if best == nil || load < bestLoad {
			best = c
			bestLoad = load
		}
	}
	m.moveLocked(u.ID, best)
	slog.Info("unit auto-assigned", "unit", u.ID, "type", u.Type, "company", best.ID)
}

// pruneUnit removes a dead unit from whichever squad held it.
func (m *Manager) pruneUnit(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.allSquadsLocked() {
		if s.has(id) {
			delete(s.members, id)
			slog.Debug("dead unit pruned", "unit", id, "squad", s.ID)
			return
		}
	}
}

func (m *Manager) totalScoreLocked(s *Squad) float64 {
	total := 0.0
	for id := range s.members {
		if u, ok := m.tracker.Unit(id); ok {
			total += u.Score
		}
	}
	return total
}

// Members returns copies of the live units in a squad. Ids whose unit has
// vanished from the tracker are skipped; the next removal event scrubs them.
func (m *Manager) Members(squadID string) []CombatUnit {
	m.mu.Lock()
	s := m.squadLocked(squadID)
	if s == nil {
		m.mu.Unlock()
		return nil
	}
	ids := make([]int, 0, len(s.members))
	for id := range s.members {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	sort.Ints(ids)
	out := make([]CombatUnit, 0, len(ids))
	for _, id := range ids {
		if u, ok := m.tracker.Unit(id); ok {
			out = append(out, u)
		}
	}
	return out
}

// CompanyIDs returns active company ids in ascending order.
func (m *Manager) CompanyIDs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.companyIDsLocked()
}

// HasCompany reports whether a company is active.
func (m *Manager) HasCompany(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.companies[id]
	return ok
}

// CompanyWeight returns a company's weight, defaulting to 1.0 when unknown.
func (m *Manager) CompanyWeight(id string) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := m.companies[id]; ok {
		return c.Weight
	}
	return 1.0
}

// CompanyStatus is the outward-facing summary of one company.
type CompanyStatus struct {
	ID       string            `json:"id"`
	Count    int               `json:"count"`
	Power    float64           `json:"power"`
	Weight   float64           `json:"weight"`
	Location *gameapi.Location `json:"location"`
}

// Status summarizes active companies in ascending id order. The reserved
// unassigned and player squads stay hidden from outside readers.
func (m *Manager) Status() []CompanyStatus {
	ids := m.CompanyIDs()
	out := make([]CompanyStatus, 0, len(ids))
	for _, id := range ids {
		members := m.Members(id)
		power := 0.0
		for _, u := range members {
			power += u.Score
		}
		st := CompanyStatus{ID: id, Count: len(members), Power: power, Weight: m.CompanyWeight(id)}
		if c, ok := Center(members); ok {
			st.Location = &c
		}
		out = append(out, st)
	}
	return out
}

// SquadOf returns the squad currently holding a unit, if any.
func (m *Manager) SquadOf(unitID int) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.allSquadsLocked() {
		if s.has(unitID) {
			return s.ID, true
		}
	}
	return "", false
}
