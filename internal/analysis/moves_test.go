package analysis_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

func twoClusters() []domain.Cluster {
	return []domain.Cluster{
		{ID: 1, Center: orb.Point{0, 0}, Zoom: 10, Radius: 1000, SpatialRef: domain.WKIDWebMercator},
		{ID: 2, Center: orb.Point{10000, 0}, Zoom: 10, Radius: 1000, SpatialRef: domain.WKIDWebMercator},
	}
}

func TestSummarizeMoves_AggregatesAcrossSessions(t *testing.T) {
	t.Parallel()

	sessions := []domain.Session{
		makeSession("s1",
			node{x: 0, zoom: 10},
			node{x: 5000, zoom: 10},
			node{x: 10000, zoom: 10},
		),
		makeSession("s2",
			node{x: 100, zoom: 10},
			node{x: 200, zoom: 10},
			node{x: 6000, zoom: 10},
			node{x: 10050, zoom: 10},
		),
	}

	moves := analysis.SummarizeMoves(sessions, twoClusters())

	require.Len(t, moves, 1)
	edge := moves[0]
	assert.Equal(t, domain.MoveKey{Start: 1, End: 2}, edge.Key())
	assert.Equal(t, 2, edge.Weight())
	assert.Equal(t, orb.LineString{{0, 0}, {5000, 0}, {10000, 0}}, edge.Segments[0])
	assert.Equal(t, orb.LineString{{200, 0}, {6000, 0}, {10050, 0}}, edge.Segments[1],
		"segment starts at the last node inside the departed cluster")
}

func TestSummarizeMoves_DirectedEdgesAreDistinct(t *testing.T) {
	t.Parallel()

	sessions := []domain.Session{
		makeSession("there-and-back",
			node{x: 0, zoom: 10},
			node{x: 10000, zoom: 10},
			node{x: 9900, zoom: 10},
			node{x: 0, zoom: 10},
		),
	}

	moves := analysis.SummarizeMoves(sessions, twoClusters())

	require.Len(t, moves, 2)
	assert.Equal(t, domain.MoveKey{Start: 1, End: 2}, moves[0].Key())
	assert.Equal(t, domain.MoveKey{Start: 2, End: 1}, moves[1].Key())
	assert.Equal(t, orb.LineString{{9900, 0}, {0, 0}}, moves[1].Segments[0])
}

func TestSummarizeMoves_NoEdges(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		session domain.Session
	}{
		{
			name: "fewer than three nodes",
			session: makeSession("short",
				node{x: 0, zoom: 10},
				node{x: 10000, zoom: 10},
			),
		},
		{
			name: "starts outside every cluster",
			session: makeSession("outside",
				node{x: 5000, zoom: 10},
				node{x: 0, zoom: 10},
				node{x: 10000, zoom: 10},
			),
		},
		{
			name: "target cluster at another zoom",
			session: makeSession("zoomed",
				node{x: 0, zoom: 10},
				node{x: 5000, zoom: 10},
				node{x: 10000, zoom: 12},
			),
		},
		{
			name: "stays inside one cluster",
			session: makeSession("local",
				node{x: 0, zoom: 10},
				node{x: 300, zoom: 10},
				node{x: -300, zoom: 10},
			),
		},
		{
			name:    "empty",
			session: domain.Session{ID: "empty"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Empty(t, analysis.SummarizeMoves([]domain.Session{tt.session}, twoClusters()))
		})
	}
}

func TestSummarizeMoves_PrefersCurrentClusterOnOverlap(t *testing.T) {
	t.Parallel()

	clusters := []domain.Cluster{
		{ID: 1, Center: orb.Point{0, 0}, Zoom: 10, Radius: 1500, SpatialRef: domain.WKIDWebMercator},
		{ID: 2, Center: orb.Point{2000, 0}, Zoom: 10, Radius: 1500, SpatialRef: domain.WKIDWebMercator},
		{ID: 3, Center: orb.Point{8000, 0}, Zoom: 10, Radius: 1000, SpatialRef: domain.WKIDWebMercator},
	}

	// x=1000 lies in both 1 and 2; staying "at" 2 must not emit 2->1.
	sessions := []domain.Session{
		makeSession("overlap",
			node{x: 2500, zoom: 10},
			node{x: 1000, zoom: 10},
			node{x: 8000, zoom: 10},
		),
	}

	moves := analysis.SummarizeMoves(sessions, clusters)

	require.Len(t, moves, 1)
	assert.Equal(t, domain.MoveKey{Start: 2, End: 3}, moves[0].Key())
}
