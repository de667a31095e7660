package intel

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"juno/blackboard"
	"juno/gameapi"
)

// GameAPI is the slice of the game client the service needs.
type GameAPI interface {
	MapQuery(ctx context.Context) (*gameapi.MapQueryResult, error)
	QueryActors(ctx context.Context, q gameapi.TargetsQuery, includeFrozen bool) ([]gameapi.Actor, error)
	PlayerBaseInfo(ctx context.Context) (*gameapi.PlayerBaseInfo, error)
	ScreenInfo(ctx context.Context) (*gameapi.ScreenInfo, error)
	FogQuery(ctx context.Context, pos gameapi.Location) (*gameapi.FogInfo, error)
	Language() gameapi.Language
}

const (
	mapRefreshInterval  = 10 * time.Second
	unitRefreshInterval = 2 * time.Second
)

// Neutral actors worth tracking; everything else neutral is scenery.
var neutralAllowlist = []string{"mine", "gmine", "crate", "oilb"}

// Service periodically sweeps the battlefield and keeps the zone manager and
// the blackboard current. It has no goroutine of its own; the strategist
// calls Tick from its loop.
type Service struct {
	api   GameAPI
	board *blackboard.Board
	zones *Manager

	lastMapUpdate  time.Time
	lastUnitUpdate time.Time
	mapReady       bool

	now func() time.Time
}

func NewService(api GameAPI, board *blackboard.Board) *Service {
	return &Service{
		api:   api,
		board: board,
		zones: NewManager(),
		now:   time.Now,
	}
}

// Zones returns the current zone snapshot.
func (s *Service) Zones() *Snapshot {
	return s.zones.Snapshot()
}

// Tick refreshes intelligence according to its cadences: the map layout
// every 10 s (and on the first call), units every 2 s. Query failures are
// logged and never escape.
func (s *Service) Tick(ctx context.Context) {
	now := s.now()
	needMap := !s.mapReady || now.Sub(s.lastMapUpdate) > mapRefreshInterval
	needUnits := now.Sub(s.lastUnitUpdate) > unitRefreshInterval
	if !needMap && !needUnits {
		return
	}

	state := s.queryGameState(ctx, needMap)
	s.processGameState(ctx, state, needMap)
	// Stamp only on success so a failed map query retries next tick
	// instead of waiting out the whole refresh window.
	if needMap && state.mapInfo != nil {
		s.lastMapUpdate = now
	}
	if needUnits {
		s.lastUnitUpdate = now
	}
}

// rawGameState is one sweep's worth of raw query results.
type rawGameState struct {
	timestamp  time.Time
	mapInfo    *gameapi.MapQueryResult
	baseInfo   *gameapi.PlayerBaseInfo
	screenInfo *gameapi.ScreenInfo
	actors     []gameapi.Actor
}

func (s *Service) queryGameState(ctx context.Context, queryMap bool) rawGameState {
	state := rawGameState{timestamp: s.now()}

	if info, err := s.api.PlayerBaseInfo(ctx); err != nil {
		slog.Warn("player base info query failed", "error", err)
	} else {
		state.baseInfo = info
	}
	if info, err := s.api.ScreenInfo(ctx); err != nil {
		slog.Warn("screen info query failed", "error", err)
	} else {
		state.screenInfo = info
	}
	if queryMap {
		if m, err := s.api.MapQuery(ctx); err != nil {
			slog.Error("map query failed", "error", err)
		} else {
			state.mapInfo = m
		}
	}

	seen := make(map[actorKey]bool)
	for _, side := range []gameapi.Side{gameapi.SideOwn, gameapi.SideEnemy, gameapi.SideAlly, gameapi.SideNeutral} {
		q := gameapi.TargetsQuery{Range: "all", Side: side}
		actors, err := s.api.QueryActors(ctx, q, true)
		if err != nil {
			slog.Warn("actor sweep failed", "side", side, "error", err)
			continue
		}
		for _, a := range actors {
			if !keepActor(side, a) {
				continue
			}
			key := actorKey{a.Faction, a.Type, a.Position != nil, posOf(a), a.Frozen}
			if seen[key] {
				continue
			}
			seen[key] = true
			state.actors = append(state.actors, a)
		}
	}
	return state
}

type actorKey struct {
	faction string
	typ     string
	hasPos  bool
	pos     gameapi.Location
	frozen  bool
}

func posOf(a gameapi.Actor) gameapi.Location {
	if a.Position == nil {
		return gameapi.Location{}
	}
	return *a.Position
}

// keepActor drops wreckage, irrelevant neutral scenery and stale frozen
// records of anyone but the enemy.
func keepActor(side gameapi.Side, a gameapi.Actor) bool {
	typ := strings.ToLower(a.Type)
	if strings.Contains(typ, "husk") {
		return false
	}
	if a.Frozen && side != gameapi.SideEnemy {
		return false
	}
	if side == gameapi.SideNeutral {
		for _, allow := range neutralAllowlist {
			if strings.Contains(typ, allow) {
				return true
			}
		}
		return false
	}
	return true
}

func (s *Service) processGameState(ctx context.Context, state rawGameState, updateMap bool) {
	lang := s.api.Language()

	if updateMap && state.mapInfo != nil {
		var mines []gameapi.Actor
		for _, a := range state.actors {
			if lang.SideOf(a.Faction) != gameapi.SideNeutral {
				continue
			}
			typ := strings.ToLower(a.Type)
			if strings.Contains(typ, "mine") {
				mines = append(mines, a)
			}
		}
		slog.Info("rebuilding zones", "mines", len(mines))
		s.zones.Rebuild(state.mapInfo, mines)
		s.applyFog(ctx)
		s.mapReady = true
		s.board.Set("map_width", state.mapInfo.MapWidth)
		s.board.Set("map_height", state.mapInfo.MapHeight)
	}

	if len(state.actors) > 0 && s.mapReady {
		s.zones.UpdateBases(state.actors, lang)
		s.zones.UpdateCombatStrength(state.actors, lang)
		s.applyFog(ctx)
	}
	s.board.Set("zones", s.zones.Snapshot())

	if state.baseInfo != nil {
		s.board.Set("player_info", state.baseInfo)
		s.board.Set("cash", state.baseInfo.Cash)
		s.board.Set("resources", state.baseInfo.Resources)
		s.board.Set("total_funds", state.baseInfo.Cash+state.baseInfo.Resources)
		s.board.Set("power", state.baseInfo.Power)
	}
	if state.screenInfo != nil {
		s.board.Set("screen_info", state.screenInfo)
	}
	s.board.SetLastUpdated(state.timestamp)
}

func (s *Service) applyFog(ctx context.Context) {
	s.zones.ApplyFog(func(center gameapi.Location) *gameapi.FogInfo {
		fog, err := s.api.FogQuery(ctx, center)
		if err != nil {
			slog.Warn("fog query failed", "pos", center, "error", err)
			return nil
		}
		return fog
	})
}
