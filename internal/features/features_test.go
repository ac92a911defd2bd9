package features_test

import (
	"encoding/json"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/features"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
)

// metersPerDegree is one degree of longitude at the equator on the Web Mercator sphere.
const metersPerDegree = 111319.49079327357

func event(id string, idx int, x, y float64) domain.NormalizedEvent {
	return domain.NormalizedEvent{
		ObjectID:   id,
		SessionID:  "s1",
		Index:      idx,
		Topic:      "pan",
		Scale:      36111.98,
		Zoom:       14,
		Position:   orb.Point{x, y},
		SpatialRef: domain.WKIDWebMercator,
		Elapsed:    1500,
		Delay:      500,
		Total:      9000,
	}
}

func TestPoints(t *testing.T) {
	t.Parallel()

	fc := features.Points([]domain.NormalizedEvent{
		event("e1", 0, 0, 0),
		event("e2", 1, metersPerDegree, 0),
	})

	require.Len(t, fc.Features, 2)
	f := fc.Features[1]
	assert.Equal(t, "e2", f.ID)
	assert.Equal(t, 2, f.Properties["ObjectID"])
	assert.Equal(t, 1, f.Properties["interactionCount"])
	assert.Equal(t, "s1", f.Properties["sessionId"])
	assert.InDelta(t, 1.5, f.Properties["elapsedSessionTime"], 1e-9)
	assert.InDelta(t, 9.0, f.Properties["totalSessionTime"], 1e-9)
	assert.InDelta(t, 0.5, f.Properties["lastInteractionDelay"], 1e-9)

	p, ok := f.Geometry.(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, 1.0, p.Lon(), 1e-6)
	assert.InDelta(t, 0.0, p.Lat(), 1e-6)
}

func TestPoints_NativeKeepsCoordinates(t *testing.T) {
	t.Parallel()

	fc := features.Points([]domain.NormalizedEvent{event("e1", 0, 5000, 7000)}, features.Native())
	require.Len(t, fc.Features, 1)
	assert.Equal(t, orb.Point{5000, 7000}, fc.Features[0].Geometry)
}

func TestPoints_DoesNotMutateInput(t *testing.T) {
	t.Parallel()

	events := []domain.NormalizedEvent{event("e1", 0, metersPerDegree, 0)}
	features.Points(events)
	assert.Equal(t, orb.Point{metersPerDegree, 0}, events[0].Position)
}

func TestTrajectories(t *testing.T) {
	t.Parallel()

	fc := features.Trajectories([]domain.TrajectorySegment{{
		SessionID:  "s1",
		Index:      0,
		Line:       orb.LineString{{0, 0}, {10, 0}},
		ZoomDiff:   2,
		ScaleDiff:  -6000,
		SpatialRef: domain.WKIDWebMercator,
		Elapsed:    1000,
	}}, features.Native())

	require.Len(t, fc.Features, 1)
	f := fc.Features[0]
	assert.Equal(t, "s1-0", f.ID)
	assert.Equal(t, orb.LineString{{0, 0}, {10, 0}}, f.Geometry)
	assert.InDelta(t, 2.0, f.Properties["zoomDiff"], 1e-9)
	assert.InDelta(t, -6000.0, f.Properties["scaleDiff"], 1e-9)
	assert.Equal(t, 1, f.Properties["interactionCount"])
}

func testClusters() []domain.Cluster {
	return []domain.Cluster{
		{ID: 1, Center: orb.Point{0, 0}, Zoom: 12, Radius: 1000, SpatialRef: domain.WKIDWebMercator, Members: 3},
		{ID: 2, Center: orb.Point{9000, 0}, Zoom: 14, Radius: 1500, SpatialRef: domain.WKIDWebMercator, Members: 2},
	}
}

func TestClusters(t *testing.T) {
	t.Parallel()

	t.Run("centers", func(t *testing.T) {
		t.Parallel()

		fc := features.Clusters(testClusters(), features.Native())
		require.Len(t, fc.Features, 2)
		assert.Equal(t, orb.Point{9000, 0}, fc.Features[1].Geometry)
		assert.Equal(t, 2, fc.Features[1].Properties["clusterId"])
		assert.Equal(t, 14, fc.Features[1].Properties["zoom"])
		assert.InDelta(t, 1500.0, fc.Features[1].Properties["radius"], 1e-9)
		assert.Equal(t, 2, fc.Features[1].Properties["memberCount"])
	})

	t.Run("circles", func(t *testing.T) {
		t.Parallel()

		fc := features.Clusters(testClusters(), features.Native(), features.WithCircles(32))
		poly, ok := fc.Features[0].Geometry.(orb.Polygon)
		require.True(t, ok)
		require.Len(t, poly, 1)
		assert.Len(t, poly[0], 33, "closed ring")
		assert.Equal(t, poly[0][0], poly[0][len(poly[0])-1])
	})
}

func TestMoves(t *testing.T) {
	t.Parallel()

	edges := []domain.MoveEdge{
		{Start: 1, End: 2, Segments: []orb.LineString{{{0, 0}, {9000, 0}}, {{10, 0}, {9010, 0}}}},
		{Start: 2, End: 7, Segments: []orb.LineString{{{9000, 0}, {1, 1}}}},
	}

	fc := features.Moves(edges, testClusters(), features.Native())
	require.Len(t, fc.Features, 1, "edges to unknown clusters are skipped")

	f := fc.Features[0]
	assert.Equal(t, "1-2", f.ID)
	assert.Equal(t, orb.LineString{{0, 0}, {9000, 0}}, f.Geometry)
	assert.Equal(t, 2, f.Properties["weight"])
	assert.Equal(t, 2, f.Properties["zoomDiff"])
}

func TestForLayer(t *testing.T) {
	t.Parallel()

	s := domain.Session{ID: "s1", Events: []domain.NormalizedEvent{event("e1", 0, 0, 0), event("e2", 1, 5, 5)}}
	result := &analysis.Result{
		Sessions:             []domain.Session{s},
		CharacteristicPoints: s.Events[:1],
		Segments:             []domain.TrajectorySegment{{SessionID: "s1", Line: orb.LineString{{0, 0}, {5, 5}}}},
		Clusters:             testClusters(),
		Moves:                []domain.MoveEdge{{Start: 1, End: 2, Segments: []orb.LineString{{{0, 0}, {1, 1}}}}},
	}

	tests := []struct {
		layer string
		want  int
	}{
		{layers.InteractionPoints, 2},
		{layers.CharacteristicPoints, 1},
		{layers.Trajectories, 1},
		{layers.Clusters, 2},
		{layers.Moves, 1},
	}

	for _, tt := range tests {
		t.Run(tt.layer, func(t *testing.T) {
			t.Parallel()

			fc, err := features.ForLayer(tt.layer, result)
			require.NoError(t, err)
			assert.Len(t, fc.Features, tt.want)

			raw, err := json.Marshal(fc)
			require.NoError(t, err)
			assert.Contains(t, string(raw), `"FeatureCollection"`)
		})
	}

	_, err := features.ForLayer("heatmap", result)
	require.ErrorIs(t, err, layers.ErrUnknownLayer)
}
