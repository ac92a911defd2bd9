package analysis_test

import (
	"context"
	"testing"

	"github.com/paulmach/orb"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/telemetry"
)

func rawEvent(id string, ts int64, x, y, zoom float64) domain.RawEvent {
	p := orb.Point{x, y}
	return domain.RawEvent{
		ID:          id,
		TimestampMs: ts,
		Zoom:        zoom,
		Scale:       72223.8,
		Position:    &p,
		SpatialRef:  domain.WKIDWebMercator,
		Message:     "pan",
	}
}

// twoStayDataset has two sessions that dwell near the origin and then settle near x=9000.
func twoStayDataset() domain.Dataset {
	return domain.Dataset{
		"s1": {
			rawEvent("s1-0", 0, 0, 0, 12),
			rawEvent("s1-1", 4000, 100, 0, 12),
			rawEvent("s1-2", 8000, 9000, 0, 12),
			rawEvent("s1-3", 12000, 9050, 0, 12),
			rawEvent("s1-4", 13000, 9100, 0, 12),
		},
		"s2": {
			rawEvent("s2-0", 0, 10, 0, 12),
			rawEvent("s2-1", 500, 20, 0, 12),
			rawEvent("s2-2", 1000, 9010, 0, 12),
			rawEvent("s2-3", 5000, 9020, 0, 12),
			rawEvent("s2-4", 5500, 9030, 0, 12),
		},
		"tiny": {
			rawEvent("tiny-0", 0, 0, 0, 12),
		},
	}
}

func TestPipeline_Run(t *testing.T) {
	t.Parallel()

	log, logs := logger.NewObserved("info")
	tp := telemetry.NewProvider(nil)
	p := analysis.NewPipeline(domain.DefaultParams(), log, tp)

	res := p.Run(context.Background(), "crown", twoStayDataset())

	assert.Equal(t, "crown", res.Cohort)
	assert.NotEmpty(t, res.RunID)
	require.Len(t, res.Sessions, 3)
	assert.Len(t, res.Interactions(), 11)
	assert.Len(t, res.Segments, 8)

	require.Len(t, res.CharacteristicPoints, 5)
	assert.Equal(t, []string{"s1-0", "s1-2", "s2-0", "s2-2", "tiny-0"}, objectIDs(res.CharacteristicPoints))

	require.Len(t, res.Clusters, 2)
	assert.Equal(t, []int{1, 2, 1, 2, 1}, res.Assignments)

	require.Len(t, res.Moves, 1)
	assert.Equal(t, domain.MoveKey{Start: 1, End: 2}, res.Moves[0].Key())
	assert.Equal(t, 2, res.Moves[0].Weight())

	c, ok := res.Cluster(2)
	require.True(t, ok)
	assert.Equal(t, 2, c.ID)
	_, ok = res.Cluster(3)
	assert.False(t, ok)

	entries := logs.FilterMessage("Pipeline run completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "crown", fields["cohort"])
	assert.EqualValues(t, 2, fields["clusters"])

	assert.InDelta(t, 2.0, testutil.ToFloat64(tp.Metrics.Clusters.WithLabelValues("crown")), 1e-9)
	assert.InDelta(t, 11.0, testutil.ToFloat64(tp.Metrics.EventsProcessed.WithLabelValues("crown")), 1e-9)
}

func TestPipeline_RunEmptyDataset(t *testing.T) {
	t.Parallel()

	p := analysis.NewPipeline(domain.DefaultParams(), logger.NewNop(), nil)
	res := p.Run(context.Background(), "empty", domain.Dataset{})

	assert.Empty(t, res.Sessions)
	assert.Empty(t, res.CharacteristicPoints)
	assert.Empty(t, res.Clusters)
	assert.Empty(t, res.Moves)
}

func objectIDs(events []domain.NormalizedEvent) []string {
	out := make([]string, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.ObjectID)
	}
	return out
}
