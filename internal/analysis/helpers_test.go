package analysis_test

import (
	"github.com/paulmach/orb"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

type node struct {
	ts   int64
	x, y float64
	zoom float64
}

func makeSession(id string, nodes ...node) domain.Session {
	s := domain.Session{ID: id}
	for i, n := range nodes {
		s.Events = append(s.Events, domain.NormalizedEvent{
			ObjectID:    id + "-" + string(rune('a'+i)),
			SessionID:   id,
			Index:       i,
			Zoom:        n.zoom,
			Position:    orb.Point{n.x, n.y},
			SpatialRef:  domain.WKIDWebMercator,
			TimestampMs: n.ts,
			Elapsed:     n.ts - nodes[0].ts,
		})
	}
	return s
}

func point(x, y, zoom float64) domain.NormalizedEvent {
	return domain.NormalizedEvent{
		Position:   orb.Point{x, y},
		Zoom:       zoom,
		SpatialRef: domain.WKIDWebMercator,
	}
}

func indices(events []domain.NormalizedEvent) []int {
	out := make([]int, 0, len(events))
	for _, ev := range events {
		out = append(out, ev.Index)
	}
	return out
}
