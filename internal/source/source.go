// Package source decodes fetched interaction payloads into a domain.Dataset.
//
// The payload is the search aggregation response of the interaction store: one
// bucket per session, each carrying its events as top hits.
package source

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/paulmach/orb"

	infraerrors "github.com/jonesrussell/north-cloud/session-viewer/infrastructure/errors"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

// ErrNoSessions is returned when a payload contains no session buckets.
var ErrNoSessions = errors.New("payload contains no sessions")

// DefaultSpatialRef applies when a map center carries no spatial reference.
const DefaultSpatialRef = domain.WKIDWebMercator

type response struct {
	Aggregations *aggregations `json:"aggregations"`
	aggregations
}

type aggregations struct {
	Sessions *struct {
		Buckets []bucket `json:"buckets"`
	} `json:"sessions"`
}

type bucket struct {
	Key    string `json:"key"`
	Events struct {
		Hits struct {
			Hits []hit `json:"hits"`
		} `json:"hits"`
	} `json:"events"`
}

type hit struct {
	ID     string `json:"_id"`
	Source struct {
		Message   string     `json:"message"`
		MapScale  float64    `json:"map_scale"`
		MapZoom   float64    `json:"map_zoom"`
		Timestamp int64      `json:"timestamp"`
		MapCenter *mapCenter `json:"map_center"`
	} `json:"_source"`
}

type mapCenter struct {
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	SpatialReference *struct {
		WKID int `json:"wkid"`
	} `json:"spatialReference"`
}

// Stats describes what Decode kept and dropped.
type Stats struct {
	Sessions        int
	Events          int
	DroppedNoCenter int
}

// Decode reads a payload and returns its sessions keyed by session key.
// Events without a map center are dropped and each session is sorted by timestamp.
func Decode(r io.Reader) (domain.Dataset, Stats, error) {
	var resp response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, Stats{}, fmt.Errorf("decode payload: %w", err)
	}

	aggs := resp.aggregations
	if resp.Aggregations != nil {
		aggs = *resp.Aggregations
	}
	if aggs.Sessions == nil || len(aggs.Sessions.Buckets) == 0 {
		return nil, Stats{}, ErrNoSessions
	}

	ds := make(domain.Dataset, len(aggs.Sessions.Buckets))
	var stats Stats

	for _, b := range aggs.Sessions.Buckets {
		events := ds[b.Key]
		for _, h := range b.Events.Hits.Hits {
			ev, ok := toRawEvent(b.Key, h)
			if !ok {
				stats.DroppedNoCenter++
				continue
			}
			events = append(events, ev)
		}

		sort.SliceStable(events, func(i, j int) bool {
			return events[i].TimestampMs < events[j].TimestampMs
		})
		ds[b.Key] = events
		stats.Events += len(events)
	}
	stats.Sessions = len(ds)

	return ds, stats, nil
}

// LoadFile decodes the payload stored at path.
func LoadFile(path string) (domain.Dataset, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, infraerrors.WrapWithContextf(err, "open payload %s", path)
	}
	defer f.Close()

	ds, stats, err := Decode(f)
	if err != nil {
		return nil, Stats{}, infraerrors.WrapWithContextf(err, "payload %s", path)
	}
	return ds, stats, nil
}

func toRawEvent(sessionKey string, h hit) (domain.RawEvent, bool) {
	center := h.Source.MapCenter
	if center == nil {
		return domain.RawEvent{}, false
	}

	wkid := DefaultSpatialRef
	if center.SpatialReference != nil && center.SpatialReference.WKID != 0 {
		wkid = center.SpatialReference.WKID
	}

	pos := orb.Point{center.X, center.Y}
	return domain.RawEvent{
		ID:          h.ID,
		SessionKey:  sessionKey,
		TimestampMs: h.Source.Timestamp,
		Scale:       h.Source.MapScale,
		Zoom:        h.Source.MapZoom,
		Position:    &pos,
		SpatialRef:  wkid,
		Message:     h.Source.Message,
	}, true
}
