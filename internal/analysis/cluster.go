package analysis

import (
	"math"

	"github.com/paulmach/orb"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/geometry"
)

// ClusterResult is the outcome of clustering a pool of stay points.
type ClusterResult struct {
	// Clusters are ordered by ID, starting at 1.
	Clusters []domain.Cluster
	// Assignments[i] is the ID of the cluster that absorbed points[i].
	Assignments []int
}

// ClusterPoints groups stay points into zoom-consistent circles by greedy growth.
//
// Each cluster is seeded with the first unassigned point in pool order. It then
// absorbs every unassigned point with the same truncated zoom that lies within
// its circle, widening the circle to the absorbed points' bounding box after each
// absorption, until a full pass absorbs nothing.
func ClusterPoints(points []domain.NormalizedEvent, p domain.Params) ClusterResult {
	result := ClusterResult{Assignments: make([]int, len(points))}

	remaining := make([]int, len(points))
	for i := range remaining {
		remaining[i] = i
	}

	for len(remaining) > 0 {
		seedIdx := remaining[0]
		remaining = remaining[1:]

		g := newGrower(len(result.Clusters)+1, points[seedIdx], p)
		result.Assignments[seedIdx] = g.cluster.ID

		for {
			absorbed := 0
			unabsorbed := make([]int, 0, len(remaining))

			for _, idx := range remaining {
				if !g.admits(points[idx]) {
					unabsorbed = append(unabsorbed, idx)
					continue
				}
				g.absorb(points[idx].Position)
				result.Assignments[idx] = g.cluster.ID
				absorbed++
			}

			remaining = unabsorbed
			if absorbed == 0 {
				break
			}
		}

		result.Clusters = append(result.Clusters, g.cluster)
	}

	return result
}

// Contains reports whether ev belongs to c: same spatial reference, same
// truncated zoom and inside the circle. Points recorded in another reference
// never join, so a mixed pool yields separate clusters per reference.
func Contains(c domain.Cluster, ev domain.NormalizedEvent) bool {
	if !geometry.SameReference(c.SpatialRef, ev.SpatialRef) || ev.ZoomKey() != c.Zoom {
		return false
	}
	return geometry.Within(c.SpatialRef, c.Center, c.Radius, ev.Position)
}

// grower tracks one cluster while it absorbs points.
type grower struct {
	cluster domain.Cluster
	params  domain.Params
}

func newGrower(id int, seed domain.NormalizedEvent, p domain.Params) *grower {
	return &grower{
		cluster: domain.Cluster{
			ID:         id,
			Center:     seed.Position,
			Zoom:       seed.ZoomKey(),
			Radius:     p.MinRadius,
			SpatialRef: seed.SpatialRef,
			Bound:      seed.Position.Bound(),
			Members:    1,
		},
		params: p,
	}
}

func (g *grower) admits(ev domain.NormalizedEvent) bool {
	return Contains(g.cluster, ev)
}

func (g *grower) absorb(pos orb.Point) {
	c := &g.cluster
	c.Bound = c.Bound.Extend(pos)
	c.Center = c.Bound.Center()

	xExtent, yExtent := geometry.Extents(c.SpatialRef, c.Bound)
	c.Radius = math.Min(g.params.MaxRadius, g.params.MinRadius+math.Max(xExtent, yExtent)/2)
	c.Members++
}
