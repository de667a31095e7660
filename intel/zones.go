// Package intel turns raw map and actor queries into tactical zones: the
// battlefield carved into resource patches and bases, with per-zone strength
// accounting and an adjacency graph the strategist can reason over.
package intel

import (
	"log/slog"
	"math"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/dominikbraun/graph"

	"juno/gameapi"
	"juno/unitdata"
)

// Zone classification. A resource patch becomes a base once buildings stand
// on it; a construction-capable building makes it a main base.
const (
	ZoneResource = "RESOURCE"
	ZoneMainBase = "MAIN_BASE"
	ZoneSubBase  = "SUB_BASE"
)

// Resource subtypes.
const (
	SubtypeOre   = "ORE"
	SubtypeGem   = "GEM"
	SubtypeMixed = "MIXED"
)

const (
	dbscanEps        = 4.0
	dbscanMinSamples = 5
	minZoneRadius    = 5
	mineSnapMargin   = 5
	maxSplitK        = 4

	oreTileValue  = 1.0
	gemTileValue  = 2.5
	oreMineValue  = 50.0
	gemMineValue  = 150.0

	defaultScreenWidth = 24
)

// Zone is one tactical region. Instances inside a published Snapshot are
// never mutated; updates clone and republish.
type Zone struct {
	ID            int              `json:"id"`
	Center        gameapi.Location `json:"center"`
	Type          string           `json:"type"`
	Subtype       string           `json:"subtype"`
	Radius        int              `json:"radius"`
	ResourceValue float64          `json:"resource_value"`
	OwnerFaction  string           `json:"owner_faction,omitempty"`
	Neighbors     []int            `json:"neighbors"`
	Bounds        Box              `json:"-"`

	MyStrength    float64 `json:"my_strength"`
	EnemyStrength float64 `json:"enemy_strength"`
	AllyStrength  float64 `json:"ally_strength"`

	MyUnits    map[string]int `json:"my_units,omitempty"`
	EnemyUnits map[string]int `json:"enemy_units,omitempty"`
	AllyUnits  map[string]int `json:"ally_units,omitempty"`

	MyStructures    map[string]int `json:"my_structures,omitempty"`
	EnemyStructures map[string]int `json:"enemy_structures,omitempty"`
	AllyStructures  map[string]int `json:"ally_structures,omitempty"`

	IsVisible  *bool `json:"is_visible"`
	IsExplored *bool `json:"is_explored"`
}

func (z *Zone) clone() *Zone {
	c := *z
	c.Neighbors = append([]int(nil), z.Neighbors...)
	c.MyUnits = cloneCounts(z.MyUnits)
	c.EnemyUnits = cloneCounts(z.EnemyUnits)
	c.AllyUnits = cloneCounts(z.AllyUnits)
	c.MyStructures = cloneCounts(z.MyStructures)
	c.EnemyStructures = cloneCounts(z.EnemyStructures)
	c.AllyStructures = cloneCounts(z.AllyStructures)
	return &c
}

func cloneCounts(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Snapshot is an immutable view of the zone set. Readers hold a snapshot for
// as long as they like; the manager never touches a published one again.
type Snapshot struct {
	MapWidth  int
	MapHeight int
	zones     map[int]*Zone
	topo      graph.Graph[int, int]

	mu     sync.Mutex
	zoneOf map[gameapi.Location]int
}

func newSnapshot(width, height int, zones map[int]*Zone) *Snapshot {
	return &Snapshot{
		MapWidth:  width,
		MapHeight: height,
		zones:     zones,
		zoneOf:    make(map[gameapi.Location]int),
	}
}

// Path returns the cheapest zone-to-zone route over the adjacency graph,
// endpoints included, or nil when no route exists.
func (s *Snapshot) Path(from, to int) []int {
	if s.topo == nil {
		return nil
	}
	if from == to {
		if _, ok := s.zones[from]; ok {
			return []int{from}
		}
		return nil
	}
	path, err := graph.ShortestPath(s.topo, from, to)
	if err != nil {
		return nil
	}
	return path
}

// Zone returns the zone with the given id.
func (s *Snapshot) Zone(id int) (*Zone, bool) {
	z, ok := s.zones[id]
	return z, ok
}

// Zones returns all zones in ascending id order.
func (s *Snapshot) Zones() []*Zone {
	out := make([]*Zone, 0, len(s.zones))
	for _, z := range s.zones {
		out = append(out, z)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ZoneID maps a position to the nearest zone center, 0 when no zones exist.
// Lookups are memoized per snapshot.
func (s *Snapshot) ZoneID(loc gameapi.Location) int {
	if len(s.zones) == 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.zoneOf[loc]; ok {
		return id
	}
	best := 0
	bestDist := math.Inf(1)
	for _, z := range s.zones {
		if d := loc.DistanceTo(z.Center); d < bestDist {
			bestDist = d
			best = z.ID
		}
	}
	s.zoneOf[loc] = best
	return best
}

// Manager rebuilds zones from map queries and layers ownership, strength and
// visibility onto them. Every mutation publishes a fresh Snapshot.
type Manager struct {
	screenWidth int
	mu          sync.Mutex
	snap        atomic.Pointer[Snapshot]
}

func NewManager() *Manager {
	m := &Manager{screenWidth: defaultScreenWidth}
	m.snap.Store(newSnapshot(0, 0, map[int]*Zone{}))
	return m
}

// Snapshot returns the current zone set.
func (m *Manager) Snapshot() *Snapshot {
	return m.snap.Load()
}

// Rebuild recomputes the zone set from a full map query. Visible mines
// anchor zone centers, gem mines taking priority over ore mines.
func (m *Manager) Rebuild(mapData *gameapi.MapQueryResult, mines []gameapi.Actor) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	points, values := resourcePoints(mapData)
	patches := dbscanGrid(points, dbscanEps, dbscanMinSamples)
	patches = splitOversized(patches, float64(m.screenWidth)*0.8)

	zones := make(map[int]*Zone, len(patches))
	nextID := 1
	for _, patch := range patches {
		bounds := boundingBox(patch)
		var sx, sy int
		for _, p := range patch {
			sx += p.X
			sy += p.Y
		}
		center := gameapi.Location{X: sx / len(patch), Y: sy / len(patch)}

		subtype := SubtypeOre
		if snap, ok := snapToMine(center, bounds, mines); ok {
			center = *snap.Position
			if isGemMine(snap.Type) {
				subtype = SubtypeGem
			}
			slog.Debug("zone snapped to mine", "zone", nextID, "mine", snap.ID, "type", snap.Type)
		}

		w, h := bounds.Width(), bounds.Height()
		radius := int(math.Sqrt(float64(w*w+h*h)) / 2)
		if radius < minZoneRadius {
			radius = minZoneRadius
		}

		zones[nextID] = &Zone{
			ID:      nextID,
			Center:  center,
			Type:    ZoneResource,
			Subtype: subtype,
			Radius:  radius,
			Bounds:  bounds,
		}
		nextID++
	}

	snap := newSnapshot(mapData.MapWidth, mapData.MapHeight, zones)
	scoreResources(snap, mapData, values, mines)
	snap.topo = buildTopology(zones)
	m.snap.Store(snap)
	slog.Info("zones rebuilt", "count", len(zones))
	return snap
}

// UpdateBases reclassifies zones from the buildings standing on them. The
// owner is the modal faction among the zone's buildings; a base-providing
// building promotes the zone to MAIN_BASE, any other building promotes a
// resource zone to SUB_BASE.
func (m *Manager) UpdateBases(actors []gameapi.Actor, lang gameapi.Language) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.cloneSnapshotLocked()
	for _, z := range snap.zones {
		z.MyStructures = nil
		z.EnemyStructures = nil
		z.AllyStructures = nil
	}

	byZone := make(map[int][]gameapi.Actor)
	for _, a := range actors {
		if a.Position == nil || !unitdata.IsStructure(a.Type) {
			continue
		}
		zid := snap.ZoneID(*a.Position)
		if zid == 0 {
			continue
		}
		byZone[zid] = append(byZone[zid], a)
		z := snap.zones[zid]
		code := strings.ToLower(a.Type)
		switch lang.SideOf(a.Faction) {
		case gameapi.SideOwn:
			z.MyStructures = bump(z.MyStructures, code)
		case gameapi.SideEnemy:
			z.EnemyStructures = bump(z.EnemyStructures, code)
		case gameapi.SideAlly:
			z.AllyStructures = bump(z.AllyStructures, code)
		}
	}

	for zid, buildings := range byZone {
		z := snap.zones[zid]
		hasProvider := false
		counts := make(map[string]int)
		for _, b := range buildings {
			if unitdata.IsBaseProvider(b.Type) {
				hasProvider = true
			}
			if b.Faction != "" {
				counts[b.Faction]++
			}
		}
		if len(counts) == 0 {
			continue
		}
		owner := modalFaction(counts)
		if hasProvider {
			if z.Type != ZoneMainBase {
				slog.Info("zone promoted to main base", "zone", zid, "owner", owner)
			}
			z.Type = ZoneMainBase
		} else if z.Type == ZoneResource {
			slog.Info("zone promoted to sub base", "zone", zid, "owner", owner)
			z.Type = ZoneSubBase
		}
		z.OwnerFaction = owner
	}

	m.snap.Store(snap)
	return snap
}

// UpdateCombatStrength re-tallies per-zone unit strength from a full actor
// sweep. Dead units and units without combat value are skipped.
func (m *Manager) UpdateCombatStrength(actors []gameapi.Actor, lang gameapi.Language) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.cloneSnapshotLocked()
	for _, z := range snap.zones {
		z.MyStrength, z.EnemyStrength, z.AllyStrength = 0, 0, 0
		z.MyUnits, z.EnemyUnits, z.AllyUnits = nil, nil, nil
	}

	for _, a := range actors {
		if a.Position == nil || a.Dead {
			continue
		}
		_, score := unitdata.CombatInfo(a.Type)
		if score <= 0 {
			continue
		}
		zid := snap.ZoneID(*a.Position)
		if zid == 0 {
			continue
		}
		z := snap.zones[zid]
		code := strings.ToLower(a.Type)
		switch lang.SideOf(a.Faction) {
		case gameapi.SideOwn:
			z.MyStrength += score
			z.MyUnits = bump(z.MyUnits, code)
		case gameapi.SideEnemy:
			z.EnemyStrength += score
			z.EnemyUnits = bump(z.EnemyUnits, code)
		case gameapi.SideAlly:
			z.AllyStrength += score
			z.AllyUnits = bump(z.AllyUnits, code)
		}
	}

	m.snap.Store(snap)
	return snap
}

// ApplyFog samples visibility at each zone center. query returning nil
// leaves both fields unknown for that zone.
func (m *Manager) ApplyFog(query func(gameapi.Location) *gameapi.FogInfo) *Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	snap := m.cloneSnapshotLocked()
	for _, z := range snap.zones {
		if fog := query(z.Center); fog != nil {
			visible, explored := fog.IsVisible, fog.IsExplored
			z.IsVisible = &visible
			z.IsExplored = &explored
		} else {
			z.IsVisible = nil
			z.IsExplored = nil
		}
	}
	m.snap.Store(snap)
	return snap
}

func (m *Manager) cloneSnapshotLocked() *Snapshot {
	old := m.snap.Load()
	zones := make(map[int]*Zone, len(old.zones))
	for id, z := range old.zones {
		zones[id] = z.clone()
	}
	// Centers do not move between rebuilds, so the topology carries over.
	snap := newSnapshot(old.MapWidth, old.MapHeight, zones)
	snap.topo = old.topo
	return snap
}

func bump(m map[string]int, key string) map[string]int {
	if m == nil {
		m = make(map[string]int)
	}
	m[key]++
	return m
}

func modalFaction(counts map[string]int) string {
	best, bestCount := "", -1
	for f, n := range counts {
		if n > bestCount || (n == bestCount && f < best) {
			best, bestCount = f, n
		}
	}
	return best
}

func isGemMine(typ string) bool {
	return strings.Contains(strings.ToLower(typ), "gmine")
}

// snapToMine finds the mine closest to the patch center inside the grown
// bounding box. Gem mines always beat ore mines regardless of distance.
func snapToMine(center gameapi.Location, bounds Box, mines []gameapi.Actor) (gameapi.Actor, bool) {
	var best gameapi.Actor
	found := false
	bestDist := math.Inf(1)
	for _, mine := range mines {
		if mine.Position == nil || !bounds.Contains(*mine.Position, mineSnapMargin) {
			continue
		}
		dist := mine.Position.DistanceTo(center)
		gem, bestGem := isGemMine(mine.Type), found && isGemMine(best.Type)
		switch {
		case gem && !bestGem:
			best, bestDist, found = mine, dist, true
		case gem == bestGem && (!found || dist < bestDist):
			best, bestDist, found = mine, dist, true
		}
	}
	return best, found
}

// resourcePoints extracts tiles with resources. The grids are column-major
// and may disagree with the declared dimensions, so the scan clamps to both.
func resourcePoints(mapData *gameapi.MapQueryResult) ([]gameapi.Location, map[gameapi.Location]int) {
	res := mapData.Resources
	scanW := mapData.MapWidth
	if len(res) < scanW {
		scanW = len(res)
	}
	var points []gameapi.Location
	values := make(map[gameapi.Location]int)
	for x := 0; x < scanW; x++ {
		scanH := mapData.MapHeight
		if len(res[x]) < scanH {
			scanH = len(res[x])
		}
		for y := 0; y < scanH; y++ {
			if res[x][y] > 0 {
				loc := gameapi.Location{X: x, Y: y}
				points = append(points, loc)
				values[loc] = res[x][y]
			}
		}
	}
	return points, values
}

func splitOversized(clusters [][]gameapi.Location, threshold float64) [][]gameapi.Location {
	var out [][]gameapi.Location
	for _, c := range clusters {
		if len(c) == 0 {
			continue
		}
		b := boundingBox(c)
		if float64(b.Width()) > threshold {
			k := int(math.Ceil(float64(b.Width()) / threshold))
			if k > maxSplitK {
				k = maxSplitK
			}
			if k > 1 {
				out = append(out, kmeansSplit(c, k, 10)...)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

// scoreResources scans each zone's bounding box, attributes tiles to zones
// by nearest center and scores ore and gem tiles plus anchored mines. A
// mostly-gem zone is promoted to GEM, any gem presence otherwise to MIXED.
func scoreResources(snap *Snapshot, mapData *gameapi.MapQueryResult, values map[gameapi.Location]int, mines []gameapi.Actor) {
	oreMines := make(map[int]int)
	gemMines := make(map[int]int)
	for _, mine := range mines {
		if mine.Position == nil {
			continue
		}
		zid := snap.ZoneID(*mine.Position)
		if zid == 0 {
			continue
		}
		if isGemMine(mine.Type) {
			gemMines[zid]++
		} else {
			oreMines[zid]++
		}
	}

	for _, z := range snap.zones {
		oreTiles, gemTiles := 0, 0
		for x := max(0, z.Bounds.MinX); x <= min(snap.MapWidth-1, z.Bounds.MaxX); x++ {
			for y := max(0, z.Bounds.MinY); y <= min(snap.MapHeight-1, z.Bounds.MaxY); y++ {
				loc := gameapi.Location{X: x, Y: y}
				if values[loc] <= 0 || snap.ZoneID(loc) != z.ID {
					continue
				}
				if gemTileAt(mapData, x, y) {
					gemTiles++
				} else {
					oreTiles++
				}
			}
		}
		z.ResourceValue = float64(oreTiles)*oreTileValue + float64(gemTiles)*gemTileValue +
			float64(oreMines[z.ID])*oreMineValue + float64(gemMines[z.ID])*gemMineValue
		if z.Subtype == SubtypeOre {
			if float64(gemTiles) > float64(oreTiles)*0.5 && gemTiles > 5 {
				z.Subtype = SubtypeGem
			} else if gemTiles > 0 {
				z.Subtype = SubtypeMixed
			}
		}
	}
}

// gemTileAt reads the resource type grid; type 2 marks gems.
func gemTileAt(mapData *gameapi.MapQueryResult, x, y int) bool {
	rt := mapData.ResourcesType
	if x >= len(rt) || y >= len(rt[x]) {
		return false
	}
	return rt[x][y] == 2
}

// buildTopology connects zones with a Gabriel graph: centers a and b are
// adjacent iff no third center k has d²(a,k)+d²(b,k) < d²(a,b). The result
// lands both in each zone's sorted Neighbors list and in the returned graph.
func buildTopology(zones map[int]*Zone) graph.Graph[int, int] {
	g := graph.New(graph.IntHash, graph.Weighted())
	ids := make([]int, 0, len(zones))
	for id := range zones {
		ids = append(ids, id)
		zones[id].Neighbors = nil
		_ = g.AddVertex(id)
	}
	sort.Ints(ids)
	if len(ids) < 2 {
		return g
	}

	distSq := func(a, b int) float64 {
		dx := float64(zones[a].Center.X - zones[b].Center.X)
		dy := float64(zones[a].Center.Y - zones[b].Center.Y)
		return dx*dx + dy*dy
	}

	for i := 0; i < len(ids); i++ {
		for j := i + 1; j < len(ids); j++ {
			a, b := ids[i], ids[j]
			ab := distSq(a, b)
			gabriel := true
			for _, k := range ids {
				if k == a || k == b {
					continue
				}
				if distSq(a, k)+distSq(b, k) < ab {
					gabriel = false
					break
				}
			}
			if gabriel {
				_ = g.AddEdge(a, b, graph.EdgeWeight(int(math.Sqrt(ab))))
				zones[a].Neighbors = append(zones[a].Neighbors, b)
				zones[b].Neighbors = append(zones[b].Neighbors, a)
			}
		}
	}
	for _, z := range zones {
		sort.Ints(z.Neighbors)
	}
	return g
}
