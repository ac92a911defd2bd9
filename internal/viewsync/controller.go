package viewsync

import (
	"github.com/jonesrussell/north-cloud/session-viewer/infrastructure/logger"
	"github.com/jonesrussell/north-cloud/session-viewer/internal/reactive"
)

// Phase is a controller's synchronization state.
type Phase int

const (
	Idle Phase = iota
	Armed
	Propagating
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Propagating:
		return "propagating"
	default:
		return "unknown"
	}
}

// Cancellation reasons.
const (
	ReasonTargetInteracting = "target_interacting"
	ReasonStationary        = "stationary"
	ReasonCancelled         = "cancelled"
	ReasonRemoved           = "removed"
)

// Recorder receives synchronization telemetry.
type Recorder interface {
	RecordPropagation(direction string)
	RecordSyncCancel(direction, reason string)
}

type nopRecorder struct{}

func (nopRecorder) RecordPropagation(string)        {}
func (nopRecorder) RecordSyncCancel(string, string) {}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the controller logger.
func WithLogger(log logger.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// WithRecorder sets the telemetry recorder.
func WithRecorder(r Recorder) Option {
	return func(c *Controller) {
		if r != nil {
			c.recorder = r
		}
	}
}

// WithTransitionHook is called after every phase change.
func WithTransitionHook(fn func(direction string, from, to Phase)) Option {
	return func(c *Controller) {
		c.onTransition = fn
	}
}

// Controller copies source viewpoints into target for one direction.
// All methods must run on the loop that owns both views.
type Controller struct {
	loop      *reactive.Loop
	source    View
	target    View
	direction string

	log          logger.Logger
	recorder     Recorder
	onTransition func(direction string, from, to Phase)

	phase    Phase
	arming   reactive.Handle
	deferred *reactive.Deferred
	active   reactive.Handle
	copies   int
	removed  bool
}

// New installs a controller that mirrors source into target.
func New(loop *reactive.Loop, source, target View, opts ...Option) *Controller {
	c := &Controller{
		loop:      loop,
		source:    source,
		target:    target,
		direction: source.Name() + "->" + target.Name(),
		log:       logger.NewNop(),
		recorder:  nopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(logger.String("direction", c.direction))
	c.arming = watchBusy(source, c.arm)
	return c
}

// Direction names the controller as "source->target".
func (c *Controller) Direction() string { return c.direction }

// Phase returns the current phase.
func (c *Controller) Phase() Phase { return c.phase }

// Copies returns the number of viewpoints copied into the target.
func (c *Controller) Copies() int { return c.copies }

func (c *Controller) arm() {
	if c.phase != Idle || c.removed {
		return
	}
	c.transition(Armed)
	c.deferred = c.loop.Defer(c.propagate)
}

func (c *Controller) propagate() {
	c.deferred = nil
	if c.phase != Armed {
		return
	}
	// The target was grabbed while this direction was armed.
	if busy(c.target) {
		c.cancel(ReasonTargetInteracting)
		return
	}
	c.transition(Propagating)
	c.copyViewpoint(c.source.Viewpoint().Get())

	c.active = reactive.Group(
		c.source.Viewpoint().Watch(func(v, _ Viewpoint) {
			c.copyViewpoint(v)
		}),
		watchBusy(c.target, func() {
			c.cancel(ReasonTargetInteracting)
		}),
		c.source.Stationary().Watch(func(stationary, _ bool) {
			if stationary {
				c.cancel(ReasonStationary)
			}
		}),
	)

	// The gesture settled before this turn; the entry copy is the final one.
	if c.source.Stationary().Get() && !busy(c.source) {
		c.cancel(ReasonStationary)
	}
}

func (c *Controller) copyViewpoint(v Viewpoint) {
	if c.phase != Propagating {
		return
	}
	c.target.Viewpoint().Set(v)
	c.copies++
	c.recorder.RecordPropagation(c.direction)
}

// Cancel returns the controller to Idle, ready to re-arm.
func (c *Controller) Cancel() {
	c.cancel(ReasonCancelled)
}

func (c *Controller) cancel(reason string) {
	if c.phase == Idle {
		return
	}
	if c.deferred != nil {
		c.deferred.Cancel()
		c.deferred = nil
	}
	if c.active != nil {
		c.active.Remove()
		c.active = nil
	}
	c.transition(Idle)
	c.recorder.RecordSyncCancel(c.direction, reason)
	c.log.Debug("View sync cancelled", logger.String("reason", reason))
}

// Remove cancels any cycle and detaches the controller from its views.
func (c *Controller) Remove() {
	if c.removed {
		return
	}
	c.cancel(ReasonRemoved)
	c.arming.Remove()
	c.removed = true
}

func (c *Controller) transition(to Phase) {
	from := c.phase
	c.phase = to
	c.log.Debug("View sync transition",
		logger.String("from", from.String()),
		logger.String("to", to.String()),
	)
	if c.onTransition != nil {
		c.onTransition(c.direction, from, to)
	}
}

// Pairing is the two directions installed between a pair of views.
type Pairing struct {
	Forward  *Controller
	Backward *Controller
}

// Pair installs a controller in each direction between a and b.
func Pair(loop *reactive.Loop, a, b View, opts ...Option) *Pairing {
	return &Pairing{
		Forward:  New(loop, a, b, opts...),
		Backward: New(loop, b, a, opts...),
	}
}

// Remove detaches both directions.
func (p *Pairing) Remove() {
	p.Forward.Remove()
	p.Backward.Remove()
}
