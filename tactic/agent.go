// Package tactic runs the company-level battle loop: each engaged company
// scans its surroundings, asks the model for target assignments and fires
// attack orders as they stream in.
package tactic

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"sync"
	"time"

	"juno/gameapi"
	"juno/llm"
	"juno/streamparse"
	"juno/units"
)

// CombatRadius is the scan distance around a company's center, in cells.
const CombatRadius = 50

const (
	cycleInterval    = 100 * time.Millisecond
	emptyScanBackoff = 2 * time.Second
)

// Order kinds and movement modes, as issued by the strategist.
const (
	OrderCombat   = "combat"
	OrderRelocate = "relocate"

	MoveAttack = "attack"
	MoveNormal = "normal"
)

// Order is a strategic directive for one company.
type Order struct {
	Kind     string
	Target   *gameapi.Location
	MoveMode string
}

// GameAPI is the slice of the game client the tactician needs.
type GameAPI interface {
	QueryActors(ctx context.Context, q gameapi.TargetsQuery, includeFrozen bool) ([]gameapi.Actor, error)
	MoveActors(ctx context.Context, ids []int, target gameapi.Location, attackMove bool) error
	Attack(ctx context.Context, attackerIDs, targetIDs []int) error
}

// SquadSource is the slice of the squad manager the tactician needs.
type SquadSource interface {
	HasCompany(id string) bool
	CompanyIDs() []string
	Members(id string) []units.CombatUnit
}

type companyState struct {
	status     string
	scanCenter *gameapi.Location
	processing bool
}

// Agent is the tactician. Strategic orders are buffered and only take
// effect at the start of the next cycle; the latest order per company wins.
type Agent struct {
	api     GameAPI
	model   llm.Client
	squads  SquadSource
	overlay Overlay

	mu      sync.Mutex
	states  map[string]*companyState
	pending map[string]Order

	backoff func(ctx context.Context, d time.Duration)
}

func NewAgent(api GameAPI, model llm.Client, squads SquadSource) *Agent {
	return &Agent{
		api:     api,
		model:   model,
		squads:  squads,
		states:  make(map[string]*companyState),
		pending: make(map[string]Order),
		backoff: sleepCtx,
	}
}

// SetOverlay installs an observer for validated pair batches.
func (a *Agent) SetOverlay(o Overlay) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.overlay = o
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-ctx.Done():
	case <-time.After(d):
	}
}

// SetCompanyOrder queues an order for a company. It takes effect at the
// start of the next tactical cycle; a newer order for the same company
// replaces a still-pending one.
func (a *Agent) SetCompanyOrder(companyID string, order Order) error {
	if !a.squads.HasCompany(companyID) {
		return fmt.Errorf("company %s not found", companyID)
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.pending[companyID] = order
	slog.Info("order queued", "company", companyID, "kind", order.Kind, "target", order.Target)
	return nil
}

// Status reports each company's current order status.
func (a *Agent) Status() map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make(map[string]string, len(a.states))
	for id, st := range a.states {
		out[id] = st.status
	}
	return out
}

// Run drives the tactical loop until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) {
	ticker := time.NewTicker(cycleInterval)
	defer ticker.Stop()
	slog.Info("tactical agent running")
	for {
		select {
		case <-ctx.Done():
			slog.Info("tactical agent stopped")
			return
		case <-ticker.C:
			a.applyPendingOrders(ctx)
			a.processCompanies(ctx)
		}
	}
}

func (a *Agent) applyPendingOrders(ctx context.Context) {
	a.mu.Lock()
	if len(a.pending) == 0 {
		a.mu.Unlock()
		return
	}
	pending := a.pending
	a.pending = make(map[string]Order)
	a.mu.Unlock()

	for companyID, order := range pending {
		a.applyOrder(ctx, companyID, order)
	}
}

func (a *Agent) applyOrder(ctx context.Context, companyID string, order Order) {
	status := order.Kind
	if order.Kind == OrderRelocate {
		mode := order.MoveMode
		if mode == "" {
			mode = MoveAttack
		}
		a.executeRelocate(ctx, companyID, order, mode)
		if mode == MoveAttack {
			// One attack-move toward the target, then fight on arrival:
			// the combat loop takes over with the destination as its
			// first scan center.
			status = OrderCombat
			slog.Info("relocate auto-switched to combat", "company", companyID)
		}
	}

	// A worker still streaming holds the latch on this state; mutate in
	// place so the latch survives the new order.
	a.mu.Lock()
	st, ok := a.states[companyID]
	if !ok {
		st = &companyState{}
		a.states[companyID] = st
	}
	st.status = status
	st.scanCenter = order.Target
	a.mu.Unlock()
	slog.Info("company state updated", "company", companyID, "status", status)
}

func (a *Agent) executeRelocate(ctx context.Context, companyID string, order Order, mode string) {
	if order.Target == nil {
		return
	}
	members := a.squads.Members(companyID)
	if len(members) == 0 {
		return
	}
	ids := make([]int, len(members))
	for i, u := range members {
		ids[i] = u.ID
	}
	if err := a.api.MoveActors(ctx, ids, *order.Target, mode == MoveAttack); err != nil {
		slog.Warn("relocate failed", "company", companyID, "error", err)
	}
}

func (a *Agent) processCompanies(ctx context.Context) {
	for _, companyID := range a.squads.CompanyIDs() {
		a.mu.Lock()
		st, ok := a.states[companyID]
		if !ok || st.status != OrderCombat || st.processing {
			a.mu.Unlock()
			continue
		}
		// Scan where the company actually is, so the zone of interest
		// follows it as it moves.
		if center, found := units.Center(a.squads.Members(companyID)); found {
			st.scanCenter = &center
		}
		center := st.scanCenter
		st.processing = true
		a.mu.Unlock()

		go func(id string, scanCenter *gameapi.Location) {
			defer a.release(id)
			if err := a.runCombatCycle(ctx, id, scanCenter); err != nil {
				slog.Error("combat cycle failed", "company", id, "error", err)
			}
		}(companyID, center)
	}
}

func (a *Agent) release(companyID string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if st, ok := a.states[companyID]; ok {
		st.processing = false
	}
}

type allyReport struct {
	ID   int    `json:"id"`
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

type enemyReport struct {
	ID   int     `json:"id"`
	Type string  `json:"type"`
	X    int     `json:"x"`
	Y    int     `json:"y"`
	HP   float64 `json:"hp"`
}

func (a *Agent) runCombatCycle(ctx context.Context, companyID string, scanCenter *gameapi.Location) error {
	if a.model == nil {
		// No model configured: companies hold position after relocating.
		return nil
	}
	members := a.squads.Members(companyID)
	if len(members) == 0 {
		return nil
	}
	if scanCenter == nil {
		return nil
	}

	enemies, err := a.scanEnemies(ctx, *scanCenter, CombatRadius)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}
	if len(enemies) == 0 {
		// Nothing in range: back off instead of hammering the model.
		a.backoff(ctx, emptyScanBackoff)
		return nil
	}

	var allies []allyReport
	allyIDs := make(map[int]bool)
	for _, u := range members {
		if u.HPRatio <= 0 {
			continue
		}
		allies = append(allies, allyReport{ID: u.ID, Type: u.Type, X: u.Position.X, Y: u.Position.Y})
		allyIDs[u.ID] = true
	}
	if len(allies) == 0 {
		slog.Warn("company has no units fit to fight", "company", companyID)
		return nil
	}

	enemyIDs := make(map[int]bool)
	reports := make([]enemyReport, len(enemies))
	for i, e := range enemies {
		reports[i] = enemyReport{
			ID:   e.ID,
			Type: e.Type,
			X:    e.Position.X,
			Y:    e.Position.Y,
			HP:   math.Round(e.HPRatio()*100) / 100,
		}
		enemyIDs[e.ID] = true
	}

	enemyJSON, _ := json.Marshal(reports)
	allyJSON, _ := json.Marshal(allies)
	user := strings.Join([]string{
		"Enemy:\n" + string(enemyJSON),
		"Ally:\n" + string(allyJSON),
		"\n" + formatReminder,
	}, "\n")
	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemDoctrine},
		{Role: llm.RoleUser, Content: user},
	}

	parser := streamparse.New()
	assigned := make(map[int]bool)
	var full strings.Builder
	err = a.model.ChatStream(ctx, messages, func(chunk string) {
		full.WriteString(chunk)
		pairs := parser.Feed(chunk)
		var valid []streamparse.Pair
		for _, p := range pairs {
			if !allyIDs[p.Attacker] || !enemyIDs[p.Target] {
				slog.Debug("invalid pair ignored", "attacker", p.Attacker, "target", p.Target)
				continue
			}
			if assigned[p.Attacker] {
				slog.Debug("duplicate order ignored", "attacker", p.Attacker, "target", p.Target)
				continue
			}
			assigned[p.Attacker] = true
			valid = append(valid, p)
		}
		if len(valid) > 0 {
			a.executePairs(ctx, companyID, valid)
		}
	})
	if err != nil {
		return fmt.Errorf("model stream (partial %q): %w", full.String(), err)
	}
	slog.Debug("combat cycle reply", "company", companyID, "response", full.String())
	return nil
}

// scanEnemies queries enemies within radius of center, dropping wreckage,
// spawn markers and camera actors.
func (a *Agent) scanEnemies(ctx context.Context, center gameapi.Location, radius int) ([]gameapi.Actor, error) {
	q := gameapi.TargetsQuery{
		Range:    "all",
		Side:     gameapi.SideEnemy,
		Location: &center,
		Distance: radius,
	}
	actors, err := a.api.QueryActors(ctx, q, false)
	if err != nil {
		return nil, err
	}
	var out []gameapi.Actor
	for _, e := range actors {
		typ := strings.ToLower(e.Type)
		if strings.Contains(typ, "husk") || strings.Contains(typ, "mpspawn") || strings.Contains(typ, "camera") {
			continue
		}
		if e.Position == nil {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

func (a *Agent) executePairs(ctx context.Context, companyID string, pairs []streamparse.Pair) {
	a.mu.Lock()
	overlay := a.overlay
	a.mu.Unlock()
	if overlay != nil && overlay.Enabled() {
		overlay.ObservePairs(companyID, pairs)
	}

	for _, p := range pairs {
		if err := a.api.Attack(ctx, []int{p.Attacker}, []int{p.Target}); err != nil {
			slog.Error("attack order failed", "attacker", p.Attacker, "target", p.Target, "error", err)
			continue
		}
		slog.Info("attack order sent", "company", companyID, "attacker", p.Attacker, "target", p.Target)
	}
}
