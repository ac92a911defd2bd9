package layers

import (
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
)

// Mirror copies user-originated layer changes of one view onto the others.
// Mirrored changes are published with OriginMirror and are never mirrored again.
type Mirror struct {
	sets        []*Set
	log         logger.Logger
	unsubscribe func()
}

// NewMirror subscribes to bus and keeps sets in step.
func NewMirror(bus *Bus, log logger.Logger, sets ...*Set) *Mirror {
	if log == nil {
		log = logger.NewNop()
	}
	m := &Mirror{sets: sets, log: log}
	m.unsubscribe = bus.Subscribe(m.handle)
	return m
}

func (m *Mirror) handle(ev Event) {
	if ev.Origin != OriginUser {
		return
	}
	for _, s := range m.sets {
		if s.View() == ev.View {
			continue
		}
		if err := s.SetVisible(ev.Layer, ev.Visible, OriginMirror); err != nil {
			m.log.Warn("Failed to mirror layer visibility",
				logger.String("view", s.View()),
				logger.String("layer", ev.Layer),
				logger.Error(err),
			)
			continue
		}
		if err := s.SelectAction(ev.Layer, ev.RendererField, OriginMirror); err != nil {
			m.log.Warn("Failed to mirror layer renderer",
				logger.String("view", s.View()),
				logger.String("layer", ev.Layer),
				logger.Error(err),
			)
		}
	}
}

// Remove stops mirroring.
func (m *Mirror) Remove() {
	m.unsubscribe()
}
