package units

import (
	"sort"

	"juno/gameapi"
)

// centerPruneDistance is the Manhattan radius around the component-median
// point inside which units count toward the squad center. Stragglers outside
// it would otherwise drag the scan center away from the fighting body.
const centerPruneDistance = 15

// Center computes the outlier-pruned center of a set of units. With two or
// fewer units it is the arithmetic mean. Otherwise: take component-wise
// medians, keep units within Manhattan distance 15 of the median point, and
// average the kept units; if nothing survives the prune, the median point
// itself is the center. Returns false for an empty set.
func Center(members []CombatUnit) (gameapi.Location, bool) {
	if len(members) == 0 {
		return gameapi.Location{}, false
	}
	if len(members) <= 2 {
		return meanOf(members), true
	}

	xs := make([]int, len(members))
	ys := make([]int, len(members))
	for i, u := range members {
		xs[i] = u.Position.X
		ys[i] = u.Position.Y
	}
	sort.Ints(xs)
	sort.Ints(ys)
	mid := len(members) / 2
	medX, medY := xs[mid], ys[mid]

	var kept []CombatUnit
	for _, u := range members {
		if abs(u.Position.X-medX)+abs(u.Position.Y-medY) <= centerPruneDistance {
			kept = append(kept, u)
		}
	}
	if len(kept) == 0 {
		return gameapi.Location{X: medX, Y: medY}, true
	}
	return meanOf(kept), true
}

func meanOf(members []CombatUnit) gameapi.Location {
	var sx, sy int
	for _, u := range members {
		sx += u.Position.X
		sy += u.Position.Y
	}
	return gameapi.Location{X: sx / len(members), Y: sy / len(members)}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
