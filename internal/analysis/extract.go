// Package analysis derives stay points, clusters and aggregated moves from normalized sessions.
package analysis

import (
	"github.com/jonesrussell/north-cloud/session-viewer/internal/domain"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/geometry"
)

// ExtractCharacteristic returns the stay points of s in their original order.
//
// The first event is always kept and the last never is. Any other event is kept
// when the user dwelled at least TimeThreshold before the next interaction and
// that interaction landed closer than MaxDistance.
func ExtractCharacteristic(s domain.Session, p domain.Params) []domain.NormalizedEvent {
	n := len(s.Events)
	if n == 0 {
		return nil
	}

	threshold := p.TimeThreshold.Milliseconds()
	kept := make([]domain.NormalizedEvent, 0, n)

	for i, ev := range s.Events {
		switch {
		case i == 0:
			kept = append(kept, ev)
		case i == n-1:
		default:
			next := s.Events[i+1]
			gap := next.TimestampMs - ev.TimestampMs
			dist := geometry.Distance(ev.SpatialRef, ev.Position, next.Position)
			if gap >= threshold && dist < p.MaxDistance {
				kept = append(kept, ev)
			}
		}
	}

	return kept
}
