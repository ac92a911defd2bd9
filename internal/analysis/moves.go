package analysis

import (
	"github.com/paulmach/orb"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

// MinTrajectoryNodes is the shortest session that can contain a stay-to-stay move.
const MinTrajectoryNodes = 3

// SummarizeMoves walks every session's full trajectory against clusters and
// aggregates cluster-to-cluster transitions into directed, weighted edges.
//
// Nodes outside every cluster are in transit: they extend the current segment
// but never open an edge. Edges are returned in order of first traversal.
func SummarizeMoves(sessions []domain.Session, clusters []domain.Cluster) []domain.MoveEdge {
	idx := newClusterIndex(clusters)
	agg := newMoveAggregator()

	for _, s := range sessions {
		if s.Len() < MinTrajectoryNodes {
			continue
		}

		current, ok := idx.locate(s.Events[0], 0)
		if !ok {
			continue
		}

		segment := orb.LineString{s.Events[0].Position}
		for _, ev := range s.Events[1:] {
			segment = append(segment, ev.Position)

			next, found := idx.locate(ev, current)
			if !found {
				continue
			}
			if next != current {
				agg.add(current, next, segment)
				current = next
			}
			segment = orb.LineString{ev.Position}
		}
	}

	return agg.edges()
}

// clusterIndex looks clusters up by stable ID.
type clusterIndex struct {
	clusters []domain.Cluster
	byID     map[int]int
}

func newClusterIndex(clusters []domain.Cluster) clusterIndex {
	byID := make(map[int]int, len(clusters))
	for i, c := range clusters {
		byID[c.ID] = i
	}
	return clusterIndex{clusters: clusters, byID: byID}
}

// locate returns the ID of the cluster containing ev. The preferred cluster wins
// when it contains ev; otherwise the lowest-ordered match is returned.
func (x clusterIndex) locate(ev domain.NormalizedEvent, preferred int) (int, bool) {
	if i, ok := x.byID[preferred]; ok && Contains(x.clusters[i], ev) {
		return preferred, true
	}
	for _, c := range x.clusters {
		if Contains(c, ev) {
			return c.ID, true
		}
	}
	return 0, false
}

// moveAggregator merges traversals of the same (start, end) pair.
type moveAggregator struct {
	order []domain.MoveKey
	byKey map[domain.MoveKey]*domain.MoveEdge
}

func newMoveAggregator() *moveAggregator {
	return &moveAggregator{byKey: make(map[domain.MoveKey]*domain.MoveEdge)}
}

func (a *moveAggregator) add(start, end int, segment orb.LineString) {
	key := domain.MoveKey{Start: start, End: end}
	edge, ok := a.byKey[key]
	if !ok {
		edge = &domain.MoveEdge{Start: start, End: end}
		a.byKey[key] = edge
		a.order = append(a.order, key)
	}
	edge.Segments = append(edge.Segments, segment)
}

func (a *moveAggregator) edges() []domain.MoveEdge {
	out := make([]domain.MoveEdge, 0, len(a.order))
	for _, key := range a.order {
		out = append(out, *a.byKey[key])
	}
	return out
}
