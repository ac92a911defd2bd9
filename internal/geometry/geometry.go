// Package geometry measures distances and extents in the spatial reference an event was recorded in.
//
// Web Mercator and unknown references are treated as planar meters; WGS84 uses
// great-circle distance.
package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/paulmach/orb/planar"
	"github.com/paulmach/orb/project"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

// DefaultCircleVertices is the vertex count of rendered cluster circles.
const DefaultCircleVertices = 32

// IsGeographic reports whether wkid stores longitude/latitude degrees.
func IsGeographic(wkid int) bool {
	return wkid == domain.WKIDWGS84
}

// IsWebMercator reports whether wkid is one of the Web Mercator ids.
func IsWebMercator(wkid int) bool {
	switch wkid {
	case domain.WKIDWebMercator, domain.WKIDWebMercatorLegacy, domain.WKIDPseudoMercator:
		return true
	default:
		return false
	}
}

// SameReference reports whether coordinates in a and b are directly comparable.
// All Web Mercator ids count as one reference.
func SameReference(a, b int) bool {
	return a == b || (IsWebMercator(a) && IsWebMercator(b))
}

// Distance returns the distance between a and b in meters.
func Distance(wkid int, a, b orb.Point) float64 {
	if IsGeographic(wkid) {
		return geo.Distance(a, b)
	}
	return planar.Distance(a, b)
}

// Extents returns the physical width and height spanned by b, in meters.
func Extents(wkid int, b orb.Bound) (xExtent, yExtent float64) {
	if !IsGeographic(wkid) {
		return b.Right() - b.Left(), b.Top() - b.Bottom()
	}

	mid := b.Center()
	xExtent = geo.Distance(orb.Point{b.Left(), mid.Y()}, orb.Point{b.Right(), mid.Y()})
	yExtent = geo.Distance(orb.Point{mid.X(), b.Bottom()}, orb.Point{mid.X(), b.Top()})
	return xExtent, yExtent
}

// Within reports whether p lies inside or on the circle (center, radius).
func Within(wkid int, center orb.Point, radius float64, p orb.Point) bool {
	return Distance(wkid, center, p) <= radius
}

// Circle approximates the circle (center, radius) with a closed ring in the same reference.
func Circle(wkid int, center orb.Point, radius float64, vertices int) orb.Ring {
	if vertices < 3 {
		vertices = DefaultCircleVertices
	}

	ring := make(orb.Ring, 0, vertices+1)
	for i := range vertices {
		angle := 2 * math.Pi * float64(i) / float64(vertices)
		if IsGeographic(wkid) {
			bearing := 90 - angle*180/math.Pi
			ring = append(ring, geo.PointAtBearingAndDistance(center, bearing, radius))
			continue
		}
		ring = append(ring, orb.Point{
			center.X() + radius*math.Cos(angle),
			center.Y() + radius*math.Sin(angle),
		})
	}
	return append(ring, ring[0])
}

// ToWGS84 reprojects g to longitude/latitude for GeoJSON output.
// Geometries already in WGS84 or in an unknown reference are returned as is.
func ToWGS84(wkid int, g orb.Geometry) orb.Geometry {
	if !IsWebMercator(wkid) {
		return g
	}
	return project.Geometry(orb.Clone(g), project.Mercator.ToWGS84)
}
