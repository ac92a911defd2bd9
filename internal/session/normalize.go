// Package session turns raw per-session events into normalized events and trajectory segments.
package session

import (
	"github.com/paulmach/orb"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
)

// Normalize derives indices and timing for one session's events.
// Input must be sorted by timestamp. Events without a position are discarded
// before indices and timing are assigned.
func Normalize(sessionID string, raw []domain.RawEvent) domain.Session {
	events := make([]domain.NormalizedEvent, 0, len(raw))

	var start, prevElapsed int64
	for _, r := range raw {
		if r.Position == nil {
			continue
		}

		idx := len(events)
		if idx == 0 {
			start = r.TimestampMs
		}

		elapsed := r.TimestampMs - start
		var delay int64
		if idx > 0 {
			delay = elapsed - prevElapsed
		}
		prevElapsed = elapsed

		events = append(events, domain.NormalizedEvent{
			ObjectID:    r.ID,
			SessionID:   sessionID,
			Index:       idx,
			Topic:       r.Message,
			Scale:       r.Scale,
			Zoom:        r.Zoom,
			Position:    *r.Position,
			SpatialRef:  r.SpatialRef,
			TimestampMs: r.TimestampMs,
			Elapsed:     elapsed,
			Delay:       delay,
		})
	}

	if n := len(events); n > 0 {
		total := events[n-1].Elapsed
		for i := range events {
			events[i].Total = total
		}
	}

	return domain.Session{ID: sessionID, Events: events}
}

// NormalizeAll normalizes every session of ds in sorted key order.
func NormalizeAll(ds domain.Dataset) []domain.Session {
	keys := ds.Keys()
	sessions := make([]domain.Session, 0, len(keys))
	for _, key := range keys {
		sessions = append(sessions, Normalize(key, ds[key]))
	}
	return sessions
}

// Segments returns one trajectory segment per consecutive pair of events.
func Segments(s domain.Session) []domain.TrajectorySegment {
	if len(s.Events) < 2 {
		return nil
	}

	segments := make([]domain.TrajectorySegment, 0, len(s.Events)-1)
	for i := 0; i+1 < len(s.Events); i++ {
		from, to := s.Events[i], s.Events[i+1]
		segments = append(segments, domain.TrajectorySegment{
			SessionID:  s.ID,
			Index:      i,
			Line:       orb.LineString{from.Position, to.Position},
			ZoomDiff:   to.Zoom - from.Zoom,
			ScaleDiff:  to.Scale - from.Scale,
			SpatialRef: to.SpatialRef,
			Elapsed:    to.Elapsed,
			Delay:      to.Delay,
			Total:      to.Total,
		})
	}
	return segments
}
