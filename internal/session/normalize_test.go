package session_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/session"
)

func raw(id string, ts int64, zoom, scale float64, pos *orb.Point) domain.RawEvent {
	return domain.RawEvent{
		ID:          id,
		TimestampMs: ts,
		Zoom:        zoom,
		Scale:       scale,
		Position:    pos,
		SpatialRef:  domain.WKIDWebMercator,
		Message:     "pan",
	}
}

func pt(x, y float64) *orb.Point {
	p := orb.Point{x, y}
	return &p
}

func TestNormalize_Timing(t *testing.T) {
	t.Parallel()

	s := session.Normalize("s1", []domain.RawEvent{
		raw("e1", 1000, 10, 5000, pt(0, 0)),
		raw("e2", 1500, 11, 4000, pt(1, 1)),
		raw("e3", 4500, 12, 3000, pt(2, 2)),
	})

	require.Equal(t, 3, s.Len())
	assert.Equal(t, "s1", s.ID)

	wantElapsed := []int64{0, 500, 3500}
	wantDelay := []int64{0, 500, 3000}
	for i, ev := range s.Events {
		assert.Equal(t, i, ev.Index)
		assert.Equal(t, "s1", ev.SessionID)
		assert.Equal(t, wantElapsed[i], ev.Elapsed, "elapsed[%d]", i)
		assert.Equal(t, wantDelay[i], ev.Delay, "delay[%d]", i)
		assert.Equal(t, int64(3500), ev.Total, "total is broadcast to every event")
	}
}

func TestNormalize_DropsEventsWithoutPosition(t *testing.T) {
	t.Parallel()

	s := session.Normalize("s1", []domain.RawEvent{
		raw("missing", 0, 10, 1, nil),
		raw("e1", 200, 10, 1, pt(0, 0)),
		raw("e2", 700, 10, 1, pt(0, 0)),
	})

	require.Equal(t, 2, s.Len())
	assert.Equal(t, "e1", s.Events[0].ObjectID)
	assert.Equal(t, 0, s.Events[0].Index)
	assert.Equal(t, int64(0), s.Events[0].Elapsed, "session starts at first positioned event")
	assert.Equal(t, int64(500), s.Events[1].Elapsed)
}

func TestNormalize_Empty(t *testing.T) {
	t.Parallel()

	s := session.Normalize("empty", nil)
	assert.Equal(t, 0, s.Len())
	assert.Empty(t, session.Segments(s))
}

func TestNormalizeAll_SortedKeys(t *testing.T) {
	t.Parallel()

	sessions := session.NormalizeAll(domain.Dataset{
		"b": {raw("b1", 0, 1, 1, pt(0, 0))},
		"a": {raw("a1", 0, 1, 1, pt(0, 0))},
	})

	require.Len(t, sessions, 2)
	assert.Equal(t, "a", sessions[0].ID)
	assert.Equal(t, "b", sessions[1].ID)
}

func TestSegments(t *testing.T) {
	t.Parallel()

	s := session.Normalize("s1", []domain.RawEvent{
		raw("e1", 0, 10, 8000, pt(0, 0)),
		raw("e2", 1000, 12, 2000, pt(10, 0)),
		raw("e3", 3000, 11, 4000, pt(10, 10)),
	})

	segs := session.Segments(s)
	require.Len(t, segs, 2)

	assert.Equal(t, orb.LineString{{0, 0}, {10, 0}}, segs[0].Line)
	assert.InDelta(t, 2.0, segs[0].ZoomDiff, 1e-9)
	assert.InDelta(t, -6000.0, segs[0].ScaleDiff, 1e-9)
	assert.Equal(t, int64(1000), segs[0].Elapsed)
	assert.Equal(t, domain.WKIDWebMercator, segs[0].SpatialRef)

	assert.InDelta(t, -1.0, segs[1].ZoomDiff, 1e-9)
	assert.Equal(t, int64(2000), segs[1].Delay)
	assert.Equal(t, int64(3000), segs[1].Total)
}
