// Package viewsync mirrors the viewpoint of one map view into another while the
// first is being manipulated.
package viewsync

import (
	"fmt"

	"github.com/jonesrussell/north-cloud/session-viewer/internal/reactive"
)

// Viewpoint is the position and scale state of a map view.
type Viewpoint struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Scale float64 `json:"scale"`
	Zoom  float64 `json:"zoom"`
}

// String renders the viewpoint for logs.
func (v Viewpoint) String() string {
	return fmt.Sprintf("(%.2f, %.2f) scale=%.0f zoom=%.2f", v.X, v.Y, v.Scale, v.Zoom)
}

// View is the observable surface a Controller needs from a map view.
type View interface {
	Name() string
	Interacting() *reactive.Property[bool]
	Animating() *reactive.Property[bool]
	Stationary() *reactive.Property[bool]
	Viewpoint() *reactive.Property[Viewpoint]
}

// MapView is an in-memory View. Interacting reflects direct user gestures only;
// programmatic viewpoint writes never touch it.
type MapView struct {
	name        string
	interacting *reactive.Property[bool]
	animating   *reactive.Property[bool]
	stationary  *reactive.Property[bool]
	viewpoint   *reactive.Property[Viewpoint]
}

// NewMapView creates a settled view at initial. The view leaves stationary
// whenever interacting or animating rises.
func NewMapView(name string, initial Viewpoint) *MapView {
	v := &MapView{
		name:        name,
		interacting: reactive.NewProperty(false),
		animating:   reactive.NewProperty(false),
		stationary:  reactive.NewProperty(true),
		viewpoint:   reactive.NewProperty(initial),
	}
	unsettle := func(now, _ bool) {
		if now {
			v.stationary.Set(false)
		}
	}
	v.interacting.Watch(unsettle)
	v.animating.Watch(unsettle)
	return v
}

func (v *MapView) Name() string                             { return v.name }
func (v *MapView) Interacting() *reactive.Property[bool]    { return v.interacting }
func (v *MapView) Animating() *reactive.Property[bool]      { return v.animating }
func (v *MapView) Stationary() *reactive.Property[bool]     { return v.stationary }
func (v *MapView) Viewpoint() *reactive.Property[Viewpoint] { return v.viewpoint }

// BeginInteraction marks the start of a user gesture.
func (v *MapView) BeginInteraction() {
	v.stationary.Set(false)
	v.interacting.Set(true)
}

// EndInteraction marks the end of a user gesture; the view settles.
func (v *MapView) EndInteraction() {
	v.interacting.Set(false)
	v.stationary.Set(true)
}

// State is a snapshot of a view's observable flags.
type State struct {
	Name        string    `json:"name"`
	Interacting bool      `json:"interacting"`
	Animating   bool      `json:"animating"`
	Stationary  bool      `json:"stationary"`
	Viewpoint   Viewpoint `json:"viewpoint"`
}

// Snapshot captures the view's current state.
func Snapshot(v View) State {
	return State{
		Name:        v.Name(),
		Interacting: v.Interacting().Get(),
		Animating:   v.Animating().Get(),
		Stationary:  v.Stationary().Get(),
		Viewpoint:   v.Viewpoint().Get(),
	}
}

// busy reports the combined interacting-or-animating flag.
func busy(v View) bool {
	return v.Interacting().Get() || v.Animating().Get()
}

// watchBusy calls fn on every false->true edge of the combined flag.
func watchBusy(v View, fn func()) reactive.Handle {
	last := busy(v)
	onChange := func(bool, bool) {
		now := busy(v)
		rising := now && !last
		last = now
		if rising {
			fn()
		}
	}
	return reactive.Group(
		v.Interacting().Watch(onChange),
		v.Animating().Watch(onChange),
	)
}
