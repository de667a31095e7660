package intel

import (
	"math"
	"sort"

	"juno/gameapi"
)

// Box is an inclusive tile-coordinate bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY int
}

func (b Box) Width() int  { return b.MaxX - b.MinX }
func (b Box) Height() int { return b.MaxY - b.MinY }

// Contains reports whether p falls inside the box grown by margin tiles.
func (b Box) Contains(p gameapi.Location, margin int) bool {
	return p.X >= b.MinX-margin && p.X <= b.MaxX+margin &&
		p.Y >= b.MinY-margin && p.Y <= b.MaxY+margin
}

func boundingBox(points []gameapi.Location) Box {
	if len(points) == 0 {
		return Box{}
	}
	b := Box{MinX: points[0].X, MinY: points[0].Y, MaxX: points[0].X, MaxY: points[0].Y}
	for _, p := range points[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// dbscanGrid clusters points with DBSCAN, using an eps-sized bucket grid so
// neighborhood queries only touch the surrounding 3x3 buckets. Points with
// fewer than minSamples neighbors and no core neighbor are noise and appear
// in no cluster.
func dbscanGrid(points []gameapi.Location, eps float64, minSamples int) [][]gameapi.Location {
	if len(points) == 0 {
		return nil
	}

	type cell struct{ x, y int }
	grid := make(map[cell][]int)
	cellOf := func(p gameapi.Location) cell {
		return cell{int(float64(p.X) / eps), int(float64(p.Y) / eps)}
	}
	for i, p := range points {
		c := cellOf(p)
		grid[c] = append(grid[c], i)
	}

	epsSq := eps * eps
	neighborsOf := func(i int) []int {
		p := points[i]
		c := cellOf(p)
		var out []int
		for dx := -1; dx <= 1; dx++ {
			for dy := -1; dy <= 1; dy++ {
				for _, j := range grid[cell{c.x + dx, c.y + dy}] {
					q := points[j]
					ddx := float64(p.X - q.X)
					ddy := float64(p.Y - q.Y)
					if ddx*ddx+ddy*ddy <= epsSq {
						out = append(out, j)
					}
				}
			}
		}
		return out
	}

	const (
		unvisited = -1
		noise     = 0
	)
	labels := make([]int, len(points))
	for i := range labels {
		labels[i] = unvisited
	}

	var clusters [][]gameapi.Location
	clusterID := 0
	for i := range points {
		if labels[i] != unvisited {
			continue
		}
		neighbors := neighborsOf(i)
		if len(neighbors) < minSamples {
			labels[i] = noise
			continue
		}

		clusterID++
		labels[i] = clusterID
		members := []int{i}

		queue := append([]int(nil), neighbors...)
		queued := make(map[int]bool, len(neighbors))
		for _, n := range neighbors {
			queued[n] = true
		}
		for len(queue) > 0 {
			n := queue[0]
			queue = queue[1:]
			if labels[n] == noise {
				// Border point of this cluster.
				labels[n] = clusterID
				members = append(members, n)
			}
			if labels[n] != unvisited {
				continue
			}
			labels[n] = clusterID
			members = append(members, n)
			nn := neighborsOf(n)
			if len(nn) >= minSamples {
				for _, m := range nn {
					if labels[m] == unvisited && !queued[m] {
						queue = append(queue, m)
						queued[m] = true
					}
				}
			}
		}

		cluster := make([]gameapi.Location, len(members))
		for k, idx := range members {
			cluster[k] = points[idx]
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}

// kmeansSplit partitions an oversized cluster into k pieces. Initial
// centroids are spread evenly along the x axis so the result is
// deterministic for a given point set.
func kmeansSplit(points []gameapi.Location, k, maxIter int) [][]gameapi.Location {
	if len(points) < k {
		return [][]gameapi.Location{points}
	}

	ordered := append([]gameapi.Location(nil), points...)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].X != ordered[j].X {
			return ordered[i].X < ordered[j].X
		}
		return ordered[i].Y < ordered[j].Y
	})
	centroids := make([]gameapi.Location, k)
	for i := range centroids {
		centroids[i] = ordered[i*(len(ordered)-1)/max(k-1, 1)]
	}

	var clusters [][]gameapi.Location
	for iter := 0; iter < maxIter; iter++ {
		clusters = make([][]gameapi.Location, k)
		for _, p := range points {
			best := 0
			bestDist := math.Inf(1)
			for i, c := range centroids {
				dx := float64(p.X - c.X)
				dy := float64(p.Y - c.Y)
				if d := dx*dx + dy*dy; d < bestDist {
					bestDist = d
					best = i
				}
			}
			clusters[best] = append(clusters[best], p)
		}

		movement := 0.0
		for i := 0; i < k; i++ {
			if len(clusters[i]) == 0 {
				continue
			}
			var sx, sy int
			for _, p := range clusters[i] {
				sx += p.X
				sy += p.Y
			}
			next := gameapi.Location{X: sx / len(clusters[i]), Y: sy / len(clusters[i])}
			dx := float64(next.X - centroids[i].X)
			dy := float64(next.Y - centroids[i].Y)
			movement += dx*dx + dy*dy
			centroids[i] = next
		}
		if movement < 1 {
			break
		}
	}

	out := clusters[:0]
	for _, c := range clusters {
		if len(c) > 0 {
			out = append(out, c)
		}
	}
	return out
}
