// Package compare wires two synchronized map panes and their layer states onto
// a single reactive loop.
package compare

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/sse"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/layers"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/reactive"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/viewsync"
)

// Pane names.
const (
	LeftView  = "left"
	RightView = "right"
)

// ErrUnknownView is returned for a pane name other than left or right.
var ErrUnknownView = errors.New("unknown view")

// Recorder receives synchronization and layer telemetry.
type Recorder interface {
	viewsync.Recorder
	RecordLayerChange(view, origin string)
}

// Pane is one side of the comparison.
type Pane struct {
	View   *viewsync.MapView
	Layers *layers.Set
}

// Workspace owns both panes. Every mutation runs on its loop.
type Workspace struct {
	loop     *reactive.Loop
	panes    map[string]*Pane
	pair     *viewsync.Pairing
	bus      *layers.Bus
	mirror   *layers.Mirror
	sink     sse.Publisher
	recorder Recorder
	log      logger.Logger
	handles  []reactive.Handle
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithSink forwards viewpoint and layer changes as SSE events.
func WithSink(sink sse.Publisher) Option {
	return func(w *Workspace) { w.sink = sink }
}

// WithRecorder records sync and layer telemetry.
func WithRecorder(r Recorder) Option {
	return func(w *Workspace) { w.recorder = r }
}

// New creates both panes at initial and installs view sync and layer mirroring.
// The loop must be running (or drained by the caller) for the public methods to return.
func New(loop *reactive.Loop, initial viewsync.Viewpoint, log logger.Logger, opts ...Option) *Workspace {
	if log == nil {
		log = logger.NewNop()
	}

	w := &Workspace{
		loop:  loop,
		bus:   layers.NewBus(),
		log:   log,
		panes: make(map[string]*Pane, 2),
	}
	for _, opt := range opts {
		opt(w)
	}

	for _, name := range []string{LeftView, RightView} {
		w.panes[name] = &Pane{
			View:   viewsync.NewMapView(name, initial),
			Layers: layers.NewSet(name, w.bus),
		}
	}

	syncOpts := []viewsync.Option{viewsync.WithLogger(log)}
	if w.recorder != nil {
		syncOpts = append(syncOpts, viewsync.WithRecorder(w.recorder))
	}
	left, right := w.panes[LeftView], w.panes[RightView]
	w.pair = viewsync.Pair(loop, left.View, right.View, syncOpts...)
	w.mirror = layers.NewMirror(w.bus, log, left.Layers, right.Layers)

	w.handles = append(w.handles, reactive.HandleFunc(w.bus.Subscribe(w.forwardLayerEvent)))
	for _, p := range []*Pane{left, right} {
		view := p.View
		w.handles = append(w.handles, view.Viewpoint().Watch(func(v, _ viewsync.Viewpoint) {
			w.publish(sse.NewViewpointChangedEvent(view.Name(), v.X, v.Y, v.Scale, v.Zoom))
		}))
	}

	return w
}

func (w *Workspace) pane(view string) (*Pane, error) {
	p, ok := w.panes[view]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownView, view)
	}
	return p, nil
}

func (w *Workspace) forwardLayerEvent(ev layers.Event) {
	if w.recorder != nil {
		w.recorder.RecordLayerChange(ev.View, string(ev.Origin))
	}
	w.publish(sse.NewLayerChangedEvent(ev.View, ev.Layer, ev.Visible, ev.RendererField, ev.Legend, string(ev.Origin)))
}

func (w *Workspace) publish(event sse.Event) {
	if w.sink == nil {
		return
	}
	if err := w.sink.Publish(context.Background(), event); err != nil {
		w.log.Warn("Failed to publish workspace event",
			logger.String("event_type", event.Type),
			logger.Error(err),
		)
	}
}

// ViewUpdate is a partial change to a pane's observable state.
type ViewUpdate struct {
	Interacting *bool               `json:"interacting,omitempty"`
	Animating   *bool               `json:"animating,omitempty"`
	Stationary  *bool               `json:"stationary,omitempty"`
	Viewpoint   *viewsync.Viewpoint `json:"viewpoint,omitempty"`
}

// apply sets the flags in gesture order. A pane leaves stationary before its
// gesture flags rise and becomes stationary only after the viewpoint lands.
// A request that raises a gesture flag cannot also settle the pane.
func (u ViewUpdate) apply(v *viewsync.MapView) {
	if u.Stationary != nil && !*u.Stationary {
		v.Stationary().Set(false)
	}
	if u.Interacting != nil {
		v.Interacting().Set(*u.Interacting)
	}
	if u.Animating != nil {
		v.Animating().Set(*u.Animating)
	}
	if u.Viewpoint != nil {
		v.Viewpoint().Set(*u.Viewpoint)
	}
	if u.Stationary != nil && *u.Stationary && !u.raisesGesture() {
		v.Stationary().Set(true)
	}
}

func (u ViewUpdate) raisesGesture() bool {
	return (u.Interacting != nil && *u.Interacting) || (u.Animating != nil && *u.Animating)
}

// ApplyViewUpdate applies u to a pane and returns the pane's resulting state.
func (w *Workspace) ApplyViewUpdate(ctx context.Context, view string, u ViewUpdate) (viewsync.State, error) {
	p, err := w.pane(view)
	if err != nil {
		return viewsync.State{}, err
	}

	var state viewsync.State
	err = w.loop.Do(ctx, func() {
		u.apply(p.View)
		state = viewsync.Snapshot(p.View)
	})
	return state, err
}

// SetLayerVisible shows or hides a layer in a pane.
func (w *Workspace) SetLayerVisible(ctx context.Context, view, layer string, visible bool) error {
	p, err := w.pane(view)
	if err != nil {
		return err
	}

	var opErr error
	if err = w.loop.Do(ctx, func() {
		opErr = p.Layers.SetVisible(layer, visible, layers.OriginUser)
	}); err != nil {
		return err
	}
	return opErr
}

// SelectAction switches a pane layer's renderer toggle.
func (w *Workspace) SelectAction(ctx context.Context, view, layer, action string) error {
	p, err := w.pane(view)
	if err != nil {
		return err
	}

	var opErr error
	if err = w.loop.Do(ctx, func() {
		opErr = p.Layers.SelectAction(layer, action, layers.OriginUser)
	}); err != nil {
		return err
	}
	return opErr
}

// PaneState is a snapshot of one pane.
type PaneState struct {
	viewsync.State
	Sync   string         `json:"sync"`
	Layers []layers.State `json:"layers"`
}

// Snapshot is the state of both panes.
type Snapshot struct {
	Left  PaneState `json:"left"`
	Right PaneState `json:"right"`
}

// Snapshot captures both panes.
func (w *Workspace) Snapshot(ctx context.Context) (Snapshot, error) {
	var snap Snapshot
	err := w.loop.Do(ctx, func() {
		left, right := w.panes[LeftView], w.panes[RightView]
		snap.Left = PaneState{
			State:  viewsync.Snapshot(left.View),
			Sync:   w.pair.Forward.Phase().String(),
			Layers: left.Layers.States(),
		}
		snap.Right = PaneState{
			State:  viewsync.Snapshot(right.View),
			Sync:   w.pair.Backward.Phase().String(),
			Layers: right.Layers.States(),
		}
	})
	return snap, err
}

// Close detaches synchronization, mirroring and event forwarding.
func (w *Workspace) Close(ctx context.Context) error {
	return w.loop.Do(ctx, func() {
		w.pair.Remove()
		w.mirror.Remove()
		reactive.Group(w.handles...).Remove()
	})
}
