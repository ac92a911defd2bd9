// Package features renders analysis results as GeoJSON feature collections.
//
// Geometries are reprojected to WGS84 unless Native is requested. Timing
// properties are expressed in seconds.
package features

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/analysis"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/geometry"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
)

const msPerSecond = 1000.0

// Options control feature rendering.
type Options struct {
	// Native keeps geometries in the events' own spatial reference.
	Native bool
	// CircleVertices, when positive, renders clusters as circle polygons.
	CircleVertices int
}

// Option configures Options.
type Option func(*Options)

// Native keeps source coordinates instead of reprojecting to WGS84.
func Native() Option {
	return func(o *Options) { o.Native = true }
}

// WithCircles renders clusters as polygons approximating their circle.
func WithCircles(vertices int) Option {
	return func(o *Options) { o.CircleVertices = vertices }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func (o Options) project(wkid int, g orb.Geometry) orb.Geometry {
	if o.Native {
		return g
	}
	return geometry.ToWGS84(wkid, g)
}

func seconds(ms int64) float64 {
	return float64(ms) / msPerSecond
}

// Points renders interaction events as point features.
func Points(events []domain.NormalizedEvent, opts ...Option) *geojson.FeatureCollection {
	o := buildOptions(opts)
	fc := geojson.NewFeatureCollection()

	for i, ev := range events {
		f := geojson.NewFeature(o.project(ev.SpatialRef, ev.Position))
		f.ID = ev.ObjectID
		f.Properties["ObjectID"] = i + 1
		f.Properties["sessionId"] = ev.SessionID
		f.Properties["interactionCount"] = ev.Index
		f.Properties["topic"] = ev.Topic
		f.Properties["scale"] = ev.Scale
		f.Properties["zoom"] = ev.Zoom
		f.Properties["elapsedSessionTime"] = seconds(ev.Elapsed)
		f.Properties["totalSessionTime"] = seconds(ev.Total)
		f.Properties["lastInteractionDelay"] = seconds(ev.Delay)
		fc.Append(f)
	}
	return fc
}

// Trajectories renders consecutive-event segments as two-point lines.
func Trajectories(segments []domain.TrajectorySegment, opts ...Option) *geojson.FeatureCollection {
	o := buildOptions(opts)
	fc := geojson.NewFeatureCollection()

	for i, seg := range segments {
		f := geojson.NewFeature(o.project(seg.SpatialRef, seg.Line))
		f.ID = fmt.Sprintf("%s-%d", seg.SessionID, seg.Index)
		f.Properties["ObjectID"] = i + 1
		f.Properties["sessionId"] = seg.SessionID
		f.Properties["interactionCount"] = seg.Index + 1
		f.Properties["zoomDiff"] = seg.ZoomDiff
		f.Properties["scaleDiff"] = seg.ScaleDiff
		f.Properties["elapsedSessionTime"] = seconds(seg.Elapsed)
		f.Properties["totalSessionTime"] = seconds(seg.Total)
		f.Properties["lastInteractionDelay"] = seconds(seg.Delay)
		fc.Append(f)
	}
	return fc
}

// Clusters renders cluster centers, or circle polygons when WithCircles is set.
func Clusters(clusters []domain.Cluster, opts ...Option) *geojson.FeatureCollection {
	o := buildOptions(opts)
	fc := geojson.NewFeatureCollection()

	for _, c := range clusters {
		var g orb.Geometry = c.Center
		if o.CircleVertices > 0 {
			g = orb.Polygon{geometry.Circle(c.SpatialRef, c.Center, c.Radius, o.CircleVertices)}
		}

		f := geojson.NewFeature(o.project(c.SpatialRef, g))
		f.ID = c.ID
		f.Properties["ObjectID"] = c.ID
		f.Properties["clusterId"] = c.ID
		f.Properties["zoom"] = c.Zoom
		f.Properties["radius"] = c.Radius
		f.Properties["memberCount"] = c.Members
		fc.Append(f)
	}
	return fc
}

// Moves renders each aggregated move as a line between its clusters' centers.
// Edges referring to unknown clusters are skipped.
func Moves(edges []domain.MoveEdge, clusters []domain.Cluster, opts ...Option) *geojson.FeatureCollection {
	o := buildOptions(opts)
	fc := geojson.NewFeatureCollection()

	byID := make(map[int]domain.Cluster, len(clusters))
	for _, c := range clusters {
		byID[c.ID] = c
	}

	for i, e := range edges {
		start, okStart := byID[e.Start]
		end, okEnd := byID[e.End]
		if !okStart || !okEnd {
			continue
		}

		line := orb.LineString{start.Center, end.Center}
		f := geojson.NewFeature(o.project(start.SpatialRef, line))
		f.ID = fmt.Sprintf("%d-%d", e.Start, e.End)
		f.Properties["ObjectID"] = i + 1
		f.Properties["startClusterId"] = e.Start
		f.Properties["endClusterId"] = e.End
		f.Properties["weight"] = e.Weight()
		f.Properties["zoomDiff"] = end.Zoom - start.Zoom
		fc.Append(f)
	}
	return fc
}

// ForLayer renders the features backing one catalog layer.
func ForLayer(layerID string, r *analysis.Result, opts ...Option) (*geojson.FeatureCollection, error) {
	layer, err := layers.Lookup(layerID)
	if err != nil {
		return nil, err
	}

	switch layer.Kind {
	case layers.KindInteractions:
		if layer.ID == layers.CharacteristicPoints {
			return Points(r.CharacteristicPoints, opts...), nil
		}
		return Points(r.Interactions(), opts...), nil
	case layers.KindTrajectories:
		return Trajectories(r.Segments, opts...), nil
	case layers.KindCluster:
		return Clusters(r.Clusters, opts...), nil
	case layers.KindMoves:
		return Moves(r.Moves, r.Clusters, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", layers.ErrUnknownLayer, layerID)
	}
}
