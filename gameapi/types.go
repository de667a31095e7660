// Package gameapi implements the JSON/TCP RPC client for the OpenRA game
// server. Each request travels on its own short-lived connection; the server
// closes the socket after the response, so the client is stateless and safe
// for concurrent callers.
package gameapi

import "math"

// Location is an integer map grid cell.
type Location struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// DistanceTo returns the Euclidean distance between two cells.
func (l Location) DistanceTo(o Location) float64 {
	dx := float64(l.X - o.X)
	dy := float64(l.Y - o.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

// Actor is any in-game entity reported by the RPC with a unique id.
// Type is always the canonical lowercase code; the client translates
// localized names before anything else sees them.
type Actor struct {
	ID       int
	Type     string
	Faction  string
	Position *Location
	HP       int
	MaxHP    int
	Frozen   bool
	Dead     bool
}

// HPRatio returns hp/maxHp clamped to [0,1]; zero when maxHp is unset.
func (a Actor) HPRatio() float64 {
	if a.MaxHP <= 0 {
		return 0
	}
	r := float64(a.HP) / float64(a.MaxHP)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// TargetsQuery selects actors for query_actor. Side is translated to the
// server's localized faction key by the client.
type TargetsQuery struct {
	Range    string
	Side     Side
	ActorIDs []int
	Location *Location
	Distance int
}

func (q TargetsQuery) params(lang Language) map[string]any {
	m := map[string]any{}
	if q.Range != "" {
		m["range"] = q.Range
	}
	if q.Side != "" {
		m["faction"] = lang.FactionKey(q.Side)
	}
	if len(q.ActorIDs) > 0 {
		m["actorId"] = q.ActorIDs
	}
	if q.Location != nil {
		m["location"] = q.Location
	}
	if q.Distance > 0 {
		m["distance"] = q.Distance
	}
	return m
}

// MapQueryResult carries the full map grids. All grids are column-major:
// grid[x][y]. Width/height are authoritative; the arrays may differ by a
// cell, so consumers clamp scans to both.
type MapQueryResult struct {
	MapWidth      int       `json:"MapWidth"`
	MapHeight     int       `json:"MapHeight"`
	Height        [][]int   `json:"Height"`
	IsVisible     [][]bool  `json:"IsVisible"`
	IsExplored    [][]bool  `json:"IsExplored"`
	Terrain       [][]int   `json:"Terrain"`
	ResourcesType [][]int   `json:"ResourcesType"`
	Resources     [][]int   `json:"Resources"`
}

// PlayerBaseInfo is the player_baseinfo_query payload.
type PlayerBaseInfo struct {
	Cash          int `json:"Cash"`
	Resources     int `json:"Resources"`
	Power         int `json:"Power"`
	PowerDrained  int `json:"PowerDrained"`
	PowerProvided int `json:"PowerProvided"`
}

// ScreenInfo is the screen_info_query payload.
type ScreenInfo struct {
	ScreenMin       Location `json:"ScreenMin"`
	ScreenMax       Location `json:"ScreenMax"`
	IsMouseOnScreen bool     `json:"IsMouseOnScreen"`
	MousePosition   Location `json:"MousePosition"`
}

// FogInfo is the fog_query payload for a single cell.
type FogInfo struct {
	IsVisible  bool `json:"IsVisible"`
	IsExplored bool `json:"IsExplored"`
}
