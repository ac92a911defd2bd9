// Package domain holds the data model shared by the session analytics pipeline.
package domain

import (
	"sort"
	"time"

	"github.com/paulmach/orb"
)

// Spatial reference ids seen in interaction payloads.
const (
	WKIDWebMercator       = 102100
	WKIDWebMercatorLegacy = 102113
	WKIDPseudoMercator    = 3857
	WKIDWGS84             = 4326
)

// RawEvent is one map interaction as delivered by the retrieval collaborator.
// Position is nil when the event carried no map center.
type RawEvent struct {
	ID          string
	SessionKey  string
	TimestampMs int64
	Scale       float64
	Zoom        float64
	Position    *orb.Point
	SpatialRef  int
	Message     string
}

// Dataset maps a session key to its raw events, sorted ascending by timestamp.
type Dataset map[string][]RawEvent

// Keys returns the session keys in sorted order.
func (d Dataset) Keys() []string {
	keys := make([]string, 0, len(d))
	for k := range d {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// EventCount returns the number of raw events across all sessions.
func (d Dataset) EventCount() int {
	n := 0
	for _, events := range d {
		n += len(events)
	}
	return n
}

// NormalizedEvent is a RawEvent with its position resolved and session timing derived.
// All durations are milliseconds.
type NormalizedEvent struct {
	ObjectID    string
	SessionID   string
	Index       int
	Topic       string
	Scale       float64
	Zoom        float64
	Position    orb.Point
	SpatialRef  int
	TimestampMs int64
	Elapsed     int64
	Delay       int64
	Total       int64
}

// ZoomKey is the truncated zoom level used to partition clusters.
func (e NormalizedEvent) ZoomKey() int {
	return int(e.Zoom)
}

// Session is one user's ordered interaction sequence.
type Session struct {
	ID     string
	Events []NormalizedEvent
}

// Len returns the number of events in the session.
func (s Session) Len() int {
	return len(s.Events)
}

// Cluster is a zoom-consistent circle grouping characteristic points.
type Cluster struct {
	ID         int
	Center     orb.Point
	Zoom       int
	Radius     float64
	SpatialRef int
	Bound      orb.Bound
	Members    int
}

// TrajectorySegment is the edge between two consecutive events of a session.
// Timing fields are copied from the end event.
type TrajectorySegment struct {
	SessionID  string
	Index      int
	Line       orb.LineString
	ZoomDiff   float64
	ScaleDiff  float64
	SpatialRef int
	Elapsed    int64
	Delay      int64
	Total      int64
}

// MoveKey identifies a directed cluster-to-cluster transition.
type MoveKey struct {
	Start int
	End   int
}

// MoveEdge aggregates every traversal of one directed cluster transition.
type MoveEdge struct {
	Start    int
	End      int
	Segments []orb.LineString
}

// Key returns the edge's (start, end) identity.
func (m MoveEdge) Key() MoveKey {
	return MoveKey{Start: m.Start, End: m.End}
}

// Weight is the number of aggregated traversals.
func (m MoveEdge) Weight() int {
	return len(m.Segments)
}

// Params are the tunable thresholds of the analytics pipeline.
type Params struct {
	TimeThreshold time.Duration
	MaxDistance   float64
	MinRadius     float64
	MaxRadius     float64
}

// Default pipeline parameters.
const (
	DefaultTimeThreshold = 3 * time.Second
	DefaultMaxDistance   = 3000
	DefaultMinRadius     = 1000
	DefaultMaxRadius     = 2000
)

// DefaultParams returns the standard thresholds.
func DefaultParams() Params {
	return Params{
		TimeThreshold: DefaultTimeThreshold,
		MaxDistance:   DefaultMaxDistance,
		MinRadius:     DefaultMinRadius,
		MaxRadius:     DefaultMaxRadius,
	}
}
