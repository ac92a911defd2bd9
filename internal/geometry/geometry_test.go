package geometry_test

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/geometry"
)

func TestDistance(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		wkid  int
		a, b  orb.Point
		want  float64
		delta float64
	}{
		{"web mercator planar", domain.WKIDWebMercator, orb.Point{0, 0}, orb.Point{3000, 4000}, 5000, 1e-9},
		{"unknown reference planar", 0, orb.Point{10, 10}, orb.Point{10, 20}, 10, 1e-9},
		{"wgs84 one degree of latitude", domain.WKIDWGS84, orb.Point{0, 0}, orb.Point{0, 1}, 111_319, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.InDelta(t, tt.want, geometry.Distance(tt.wkid, tt.a, tt.b), tt.delta)
		})
	}
}

func TestSameReference(t *testing.T) {
	t.Parallel()

	assert.True(t, geometry.SameReference(domain.WKIDWGS84, domain.WKIDWGS84))
	assert.True(t, geometry.SameReference(domain.WKIDWebMercator, domain.WKIDPseudoMercator))
	assert.True(t, geometry.SameReference(domain.WKIDWebMercatorLegacy, domain.WKIDWebMercator))
	assert.False(t, geometry.SameReference(domain.WKIDWebMercator, domain.WKIDWGS84))
	assert.False(t, geometry.SameReference(0, domain.WKIDWGS84))
}

func TestExtents_Planar(t *testing.T) {
	t.Parallel()

	b := orb.Bound{Min: orb.Point{-100, 50}, Max: orb.Point{300, 250}}
	x, y := geometry.Extents(domain.WKIDWebMercator, b)

	assert.InDelta(t, 400.0, x, 1e-9)
	assert.InDelta(t, 200.0, y, 1e-9)
}

func TestExtents_GeographicUsesMeters(t *testing.T) {
	t.Parallel()

	b := orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{0.01, 0.01}}
	x, y := geometry.Extents(domain.WKIDWGS84, b)

	assert.InDelta(t, 1113, x, 5)
	assert.InDelta(t, 1113, y, 5)
}

func TestWithin_BoundaryIsInclusive(t *testing.T) {
	t.Parallel()

	center := orb.Point{0, 0}
	assert.True(t, geometry.Within(domain.WKIDWebMercator, center, 1000, orb.Point{1000, 0}))
	assert.False(t, geometry.Within(domain.WKIDWebMercator, center, 1000, orb.Point{1000.5, 0}))
}

func TestCircle_ClosedRingAtRadius(t *testing.T) {
	t.Parallel()

	center := orb.Point{500, 500}
	ring := geometry.Circle(domain.WKIDWebMercator, center, 1500, 16)

	require.Len(t, ring, 17)
	assert.True(t, ring.Closed())
	for _, p := range ring {
		assert.InDelta(t, 1500.0, geometry.Distance(domain.WKIDWebMercator, center, p), 1e-6)
	}
}

func TestToWGS84_ReprojectsMercator(t *testing.T) {
	t.Parallel()

	p, ok := geometry.ToWGS84(domain.WKIDWebMercator, orb.Point{0, 0}).(orb.Point)
	require.True(t, ok)
	assert.InDelta(t, 0.0, p.Lon(), 1e-9)
	assert.InDelta(t, 0.0, p.Lat(), 1e-9)

	same := orb.Point{-75.7, 45.4}
	assert.Equal(t, same, geometry.ToWGS84(domain.WKIDWGS84, same))
}
