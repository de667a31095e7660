package rules

import (
	"math"

	"juno/gameapi"
)

// Outnumbering threshold: a company whose local enemy strength exceeds its
// own power by this factor should disengage.
const outnumberFactor = 1.5

// ZoneView is the slice of zone intel a doctrine condition sees. Owner is
// the canonical side string ("own", "enemy", "ally", "neutral") or empty
// when nobody holds the zone.
type ZoneView struct {
	ID            int
	Type          string
	Subtype       string
	Center        gameapi.Location
	Owner         string
	MyStrength    float64
	EnemyStrength float64
	ResourceValue float64
	Visible       bool
	Explored      bool
}

// CompanyView is one company's status as the doctrine sees it.
type CompanyView struct {
	ID       string
	Count    int
	Power    float64
	Weight   float64
	Location *gameapi.Location
}

// Env wraps the strategic picture and exposes helper methods callable from
// expr conditions.
type Env struct {
	MapWidth  int
	MapHeight int
	Companies []CompanyView
	Zones     []ZoneView
	Memory    map[string]any
}

func (e Env) HasCompany(id string) bool {
	for _, c := range e.Companies {
		if c.ID == id {
			return true
		}
	}
	return false
}

func (e Env) CompanyCount() int {
	return len(e.Companies)
}

func (e Env) CompanyPower(id string) float64 {
	for _, c := range e.Companies {
		if c.ID == id {
			return c.Power
		}
	}
	return 0
}

func (e Env) HasMainBase() bool {
	_, ok := e.mainBase()
	return ok
}

// EnemySighted reports whether any currently visible zone holds enemy
// strength. Fogged zones carry stale counts and do not trigger it.
func (e Env) EnemySighted() bool {
	for _, z := range e.Zones {
		if z.Visible && z.EnemyStrength > 0 {
			return true
		}
	}
	return false
}

// HasExpansionTarget reports whether a resource zone we do not hold is
// worth moving toward.
func (e Env) HasExpansionTarget() bool {
	_, ok := e.richestFreeResource()
	return ok
}

// OutnumberedCompanies returns companies whose local enemy strength exceeds
// their own power by the disengage factor.
func (e Env) OutnumberedCompanies() []CompanyView {
	var out []CompanyView
	for _, c := range e.Companies {
		if c.Location == nil || c.Count == 0 {
			continue
		}
		z, ok := e.zoneAt(*c.Location)
		if !ok {
			continue
		}
		if z.EnemyStrength > c.Power*outnumberFactor {
			out = append(out, c)
		}
	}
	return out
}

// mainBase returns our main base zone, preferring the one with the most of
// our strength when several exist.
func (e Env) mainBase() (ZoneView, bool) {
	var best ZoneView
	found := false
	for _, z := range e.Zones {
		if z.Type != "MAIN_BASE" || z.Owner != "own" {
			continue
		}
		if !found || z.MyStrength > best.MyStrength {
			best = z
			found = true
		}
	}
	return best, found
}

// richestFreeResource returns the highest-value explored resource zone not
// held by us.
func (e Env) richestFreeResource() (ZoneView, bool) {
	var best ZoneView
	found := false
	for _, z := range e.Zones {
		if z.Type != "RESOURCE" || z.Owner == "own" {
			continue
		}
		if !found || z.ResourceValue > best.ResourceValue {
			best = z
			found = true
		}
	}
	return best, found
}

// zoneAt maps a position to the nearest zone center.
func (e Env) zoneAt(loc gameapi.Location) (ZoneView, bool) {
	var best ZoneView
	bestDist := math.MaxFloat64
	found := false
	for _, z := range e.Zones {
		dx := float64(z.Center.X - loc.X)
		dy := float64(z.Center.Y - loc.Y)
		if d := dx*dx + dy*dy; d < bestDist {
			bestDist = d
			best = z
			found = true
		}
	}
	return best, found
}
