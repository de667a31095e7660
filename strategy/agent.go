// Package strategy runs the top-level commander loop: refresh intel, brief
// the model on the full battlefield picture and translate its orders into
// squad and tactical directives. When no model is reachable a compiled
// doctrine keeps the army moving.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"juno/blackboard"
	"juno/gameapi"
	"juno/intel"
	"juno/llm"
	"juno/rules"
	"juno/tactic"
	"juno/units"
)

const tickInterval = 2 * time.Second

// Intel is the slice of the intelligence service the strategist drives.
type Intel interface {
	Tick(ctx context.Context)
	Zones() *intel.Snapshot
}

// SquadController is the slice of the squad manager the strategist needs.
type SquadController interface {
	EnableCompany(id string, weight float64) error
	UpdateCompanyWeight(id string, weight float64)
	Status() []units.CompanyStatus
}

// Tactician receives relocation and combat directives per company.
type Tactician interface {
	SetCompanyOrder(companyID string, order tactic.Order) error
}

// Agent is the strategic commander.
type Agent struct {
	model    llm.Client // nil: fallback doctrine only
	intel    Intel
	board    *blackboard.Board
	squads   SquadController
	tactics  Tactician
	lang     gameapi.Language
	fallback *rules.Engine
	commands *CommandSource
}

func NewAgent(model llm.Client, svc Intel, board *blackboard.Board, squads SquadController, tactics Tactician, lang gameapi.Language, commands *CommandSource) (*Agent, error) {
	fallback, err := rules.NewEngine(rules.FallbackDoctrine())
	if err != nil {
		return nil, fmt.Errorf("compile fallback doctrine: %w", err)
	}
	return &Agent{
		model:    model,
		intel:    svc,
		board:    board,
		squads:   squads,
		tactics:  tactics,
		lang:     lang,
		fallback: fallback,
		commands: commands,
	}, nil
}

// SetDoctrine swaps the fallback rule set, as picked from the console.
// Safe while the loop is running; on a compile error the current doctrine
// stays active.
func (a *Agent) SetDoctrine(rs []*rules.Rule) error {
	return a.fallback.Swap(rs)
}

// Run drives the strategy loop until ctx is cancelled.
func (a *Agent) Run(ctx context.Context) {
	a.board.RegisterAgent("strategist", "ACTIVE")
	defer a.board.RegisterAgent("strategist", "STOPPED")

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()
	slog.Info("strategic agent running", "model", a.model != nil)
	for {
		select {
		case <-ctx.Done():
			slog.Info("strategic agent stopped")
			return
		case <-ticker.C:
			a.tick(ctx)
		}
	}
}

func (a *Agent) tick(ctx context.Context) {
	a.intel.Tick(ctx)
	a.board.ClearExpiredSignals()

	width, _ := a.board.GetInt("map_width")
	if width == 0 {
		slog.Warn("waiting for map data")
		return
	}
	height, _ := a.board.GetInt("map_height")

	snap := a.intel.Zones()
	status := a.squads.Status()

	if a.model == nil {
		a.runFallback(width, height, snap, status)
		return
	}

	gameCtx := gameContext{
		MapInfo:     mapInfo{Width: width, Height: height},
		UserCommand: a.commands.Current(),
		SquadStatus: status,
		Zones:       summarizeZones(snap),
	}
	ctxJSON, err := json.MarshalIndent(gameCtx, "", "  ")
	if err != nil {
		slog.Error("context marshal failed", "error", err)
		return
	}

	messages := []llm.Message{
		{Role: llm.RoleSystem, Content: systemDirective},
		{Role: llm.RoleUser, Content: fmt.Sprintf("\nCurrent Game State (JSON):\n%s\n\nPlease analyze the situation and issue commands for my companies.\n", ctxJSON)},
	}

	slog.Info("thinking")
	response, err := a.model.Chat(ctx, messages)
	if err != nil {
		slog.Error("strategy model call failed, using fallback doctrine", "error", err)
		a.runFallback(width, height, snap, status)
		return
	}
	if err := a.executeStrategy(response); err != nil {
		slog.Error("strategy execution failed", "error", err, "response", response)
	}
}

func (a *Agent) runFallback(width, height int, snap *intel.Snapshot, status []units.CompanyStatus) {
	env := rules.Env{MapWidth: width, MapHeight: height}
	for _, c := range status {
		env.Companies = append(env.Companies, rules.CompanyView{
			ID: c.ID, Count: c.Count, Power: c.Power, Weight: c.Weight, Location: c.Location,
		})
	}
	if snap != nil {
		for _, z := range snap.Zones() {
			owner := ""
			if z.OwnerFaction != "" {
				owner = string(a.lang.SideOf(z.OwnerFaction))
			}
			env.Zones = append(env.Zones, rules.ZoneView{
				ID:            z.ID,
				Type:          z.Type,
				Subtype:       z.Subtype,
				Center:        z.Center,
				Owner:         owner,
				MyStrength:    z.MyStrength,
				EnemyStrength: z.EnemyStrength,
				ResourceValue: z.ResourceValue,
				Visible:       z.IsVisible != nil && *z.IsVisible,
				Explored:      z.IsExplored == nil || *z.IsExplored,
			})
		}
	}
	if err := a.fallback.Evaluate(env, (*agentSink)(a)); err != nil {
		slog.Error("fallback doctrine failed", "error", err)
	}
}

// agentSink adapts the agent's collaborators to the doctrine's order sink.
type agentSink Agent

func (s *agentSink) EnableCompany(id string, weight float64) error {
	return s.squads.EnableCompany(id, weight)
}

func (s *agentSink) SetCompanyWeight(id string, weight float64) {
	s.squads.UpdateCompanyWeight(id, weight)
}

func (s *agentSink) Relocate(companyID string, target gameapi.Location, attackMove bool) error {
	mode := tactic.MoveNormal
	if attackMove {
		mode = tactic.MoveAttack
	}
	return s.tactics.SetCompanyOrder(companyID, tactic.Order{
		Kind:     tactic.OrderRelocate,
		Target:   &target,
		MoveMode: mode,
	})
}

type mapInfo struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

type zoneSummary struct {
	ID            int               `json:"id"`
	Type          string            `json:"type"`
	Center        *gameapi.Location `json:"center"`
	Owner         string            `json:"owner"`
	MyStrength    float64           `json:"my_strength"`
	EnemyStrength float64           `json:"enemy_strength"`
	ResourceVal   float64           `json:"resource_val"`
	IsVisible     *bool             `json:"is_visible"`
	IsExplored    *bool             `json:"is_explored"`
}

type gameContext struct {
	MapInfo     mapInfo               `json:"map_info"`
	UserCommand string                `json:"user_command"`
	SquadStatus []units.CompanyStatus `json:"squad_status"`
	Zones       []zoneSummary         `json:"zones"`
}

func summarizeZones(snap *intel.Snapshot) []zoneSummary {
	if snap == nil {
		return nil
	}
	zones := snap.Zones()
	out := make([]zoneSummary, 0, len(zones))
	for _, z := range zones {
		center := z.Center
		out = append(out, zoneSummary{
			ID:            z.ID,
			Type:          z.Type,
			Center:        &center,
			Owner:         z.OwnerFaction,
			MyStrength:    round1(z.MyStrength),
			EnemyStrength: round1(z.EnemyStrength),
			ResourceVal:   round1(z.ResourceValue),
			IsVisible:     z.IsVisible,
			IsExplored:    z.IsExplored,
		})
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// flexID tolerates the model emitting company ids as numbers or strings.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	return fmt.Errorf("company_id %s is neither string nor number", data)
}

type strategyOrder struct {
	CompanyID flexID            `json:"company_id"`
	Action    string            `json:"action"`
	TargetPos *gameapi.Location `json:"target_pos"`
	MoveMode  string            `json:"move_mode"`
	Weight    *float64          `json:"weight"`
}

type strategyDecision struct {
	Orders   []strategyOrder `json:"orders"`
	Thoughts string          `json:"thoughts"`
}

// executeStrategy parses the model's decision and dispatches each order.
// Individual order failures are logged and do not abort the batch.
func (a *Agent) executeStrategy(response string) error {
	var decision strategyDecision
	if err := json.Unmarshal([]byte(extractJSON(response)), &decision); err != nil {
		return fmt.Errorf("decode strategy decision: %w", err)
	}
	slog.Info("strategy decision", "thoughts", decision.Thoughts, "orders", len(decision.Orders))

	for _, order := range decision.Orders {
		cid := string(order.CompanyID)

		if order.Action == "enable" {
			weight := 1.0
			if order.Weight != nil {
				weight = *order.Weight
			}
			if err := a.squads.EnableCompany(cid, weight); err != nil {
				slog.Warn("enable order rejected", "company", cid, "error", err)
			}
			continue
		}

		if order.Weight != nil {
			a.squads.UpdateCompanyWeight(cid, *order.Weight)
		}

		// Older decisions may still say "combat"; it maps to an attack-move
		// relocation which flips to combat on arrival.
		if order.Action != "relocate" && order.Action != "combat" {
			continue
		}
		if order.TargetPos == nil {
			continue
		}
		mode := order.MoveMode
		if order.Action == "combat" || mode == "" {
			mode = tactic.MoveAttack
		}
		target := *order.TargetPos
		err := a.tactics.SetCompanyOrder(cid, tactic.Order{
			Kind:     tactic.OrderRelocate,
			Target:   &target,
			MoveMode: mode,
		})
		if err != nil {
			slog.Warn("relocate order rejected", "company", cid, "error", err)
		}
	}
	return nil
}

// extractJSON strips a markdown code fence when the model wraps its answer
// in one.
func extractJSON(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.Index(s, "```json"); i >= 0 {
		s = s[i+len("```json"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	if i := strings.Index(s, "```"); i >= 0 {
		s = s[i+len("```"):]
		if j := strings.Index(s, "```"); j >= 0 {
			s = s[:j]
		}
		return strings.TrimSpace(s)
	}
	return s
}
