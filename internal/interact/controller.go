// Package interact turns pointer gestures into view transform changes and
// node drags. A drag pins its node under the pointer; when the layout is
// live the pin is lifted again after a settle delay.
package interact

import (
	"math"
	"sort"
	"sync"
	"time"

	"datarepublican/charitygraph/internal/layout"
)

// Config tunes gesture handling.
type Config struct {
	MinZoom        float64       `yaml:"minZoom" validate:"gt=0"`
	MaxZoom        float64       `yaml:"maxZoom" validate:"gtfield=MinZoom"`
	SettleDelay    time.Duration `yaml:"settleDelay" validate:"gte=0"`
	ClickTolerance float64       `yaml:"clickTolerance" validate:"gte=0"`
	WheelFactor    float64       `yaml:"wheelFactor" validate:"gt=0"`
}

// DefaultConfig returns a zoom range of 0.2 to 2 and a one second settle
// delay.
func DefaultConfig() Config {
	return Config{
		MinZoom:        0.2,
		MaxZoom:        2,
		SettleDelay:    time.Second,
		ClickTolerance: 3,
		WheelFactor:    0.002,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if !(c.MinZoom > 0) {
		c.MinZoom = def.MinZoom
	}
	if !(c.MaxZoom >= c.MinZoom) {
		c.MaxZoom = math.Max(def.MaxZoom, c.MinZoom)
	}
	if c.SettleDelay < 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.ClickTolerance < 0 {
		c.ClickTolerance = def.ClickTolerance
	}
	if !(c.WheelFactor > 0) {
		c.WheelFactor = def.WheelFactor
	}
	return c
}

// ClampZoom limits k to the configured zoom range.
func (c Config) ClampZoom(k float64) float64 {
	c = c.withDefaults()
	return math.Min(math.Max(k, c.MinZoom), c.MaxZoom)
}

// State is the gesture state of a controller.
type State int

const (
	Idle State = iota
	Panning
	Dragging
	// Settling means no gesture is active but at least one released node
	// is still waiting for its pin to be lifted.
	Settling
)

func (s State) String() string {
	switch s {
	case Panning:
		return "panning"
	case Dragging:
		return "dragging"
	case Settling:
		return "settling"
	default:
		return "idle"
	}
}

// Target is the view a controller drives. Its methods are called with the
// controller's lock held.
type Target interface {
	// HitTest returns the node whose card contains the world point.
	HitTest(world layout.Point) (string, bool)
	Position(id string) (layout.Point, bool)
	Pin(id string, p layout.Point)
	Unpin(id string)
	// ReleasesPins reports whether dragged nodes return to the layout.
	ReleasesPins() bool
	DragStarted()
	DragEnded()
	Select(id string)
	// Invalidate requests a redraw.
	Invalidate()
}

type gesture struct {
	id        string
	start     layout.Point // screen
	startView layout.Transform
	grab      layout.Point // node position minus pointer, world
	moved     bool
}

type release struct {
	timer Timer
	gen   uint64
}

// Controller is the interaction state machine. Its methods must be called
// with lock held; settle timers acquire it themselves.
type Controller struct {
	cfg    Config
	target Target
	clock  Clock
	lock   sync.Locker

	view    layout.Transform
	state   State
	gesture gesture
	pending map[string]release
	gen     uint64
	closed  bool
}

// NewController creates a controller in the Idle state with the identity
// transform. A nil clock uses SystemClock.
func NewController(cfg Config, target Target, clock Clock, lock sync.Locker) *Controller {
	if clock == nil {
		clock = SystemClock
	}
	return &Controller{
		cfg:     cfg.withDefaults(),
		target:  target,
		clock:   clock,
		lock:    lock,
		view:    layout.Identity,
		pending: make(map[string]release),
	}
}

// State returns the current gesture state.
func (c *Controller) State() State { return c.state }

// Transform returns the view transform.
func (c *Controller) Transform() layout.Transform { return c.view }

// SetTransform replaces the view transform. The scale is clamped to the
// zoom range.
func (c *Controller) SetTransform(t layout.Transform) {
	if c.closed {
		return
	}
	t.K = c.cfg.ClampZoom(t.K)
	c.view = t
	c.target.Invalidate()
}

// Pending returns the ids waiting for their pin to be lifted, sorted.
func (c *Controller) Pending() []string {
	ids := make([]string, 0, len(c.pending))
	for id := range c.pending {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// PointerDown starts a drag when the pointer is over a node and a pan
// otherwise. It is ignored while a gesture is already active.
func (c *Controller) PointerDown(screen layout.Point) {
	if c.closed || c.state == Panning || c.state == Dragging {
		return
	}
	world := c.view.Invert(screen)
	c.gesture = gesture{start: screen, startView: c.view}

	id, ok := c.target.HitTest(world)
	if !ok {
		c.state = Panning
		return
	}
	pos, ok := c.target.Position(id)
	if !ok {
		c.state = Panning
		return
	}
	c.cancelRelease(id)
	c.gesture.id = id
	c.gesture.grab = pos.Sub(world)
	c.state = Dragging
	c.target.Pin(id, pos)
	c.target.DragStarted()
	c.target.Invalidate()
}

// PointerMove pans the view or moves the dragged node.
func (c *Controller) PointerMove(screen layout.Point) {
	if c.closed {
		return
	}
	switch c.state {
	case Panning:
		c.trackMove(screen)
		c.view = layout.Transform{
			X: c.gesture.startView.X + screen.X - c.gesture.start.X,
			Y: c.gesture.startView.Y + screen.Y - c.gesture.start.Y,
			K: c.gesture.startView.K,
		}
		c.target.Invalidate()
	case Dragging:
		c.trackMove(screen)
		c.target.Pin(c.gesture.id, c.view.Invert(screen).Add(c.gesture.grab))
		c.target.Invalidate()
	}
}

func (c *Controller) trackMove(screen layout.Point) {
	if screen.Dist(c.gesture.start) > c.cfg.ClickTolerance {
		c.gesture.moved = true
	}
}

// PointerUp ends the active gesture. Releasing a node that barely moved
// selects it. With a live layout the node's pin is lifted after the settle
// delay; otherwise it stays where it was dropped.
func (c *Controller) PointerUp(screen layout.Point) {
	if c.closed {
		return
	}
	switch c.state {
	case Panning:
		c.PointerMove(screen)
		c.state = c.restingState()
	case Dragging:
		c.PointerMove(screen)
		id, clicked := c.gesture.id, !c.gesture.moved
		c.target.DragEnded()
		if c.target.ReleasesPins() {
			c.scheduleRelease(id)
		}
		c.state = c.restingState()
		if clicked {
			c.target.Select(id)
		}
		c.target.Invalidate()
	}
	c.gesture = gesture{}
}

// Wheel zooms about the pointer. Positive deltaY zooms out.
func (c *Controller) Wheel(screen layout.Point, deltaY float64) {
	if c.closed || deltaY == 0 {
		return
	}
	k := c.cfg.ClampZoom(c.view.K * math.Pow(2, -deltaY*c.cfg.WheelFactor))
	if k == c.view.K {
		return
	}
	c.view = c.view.ScaleAround(screen, k)
	c.target.Invalidate()
}

func (c *Controller) restingState() State {
	if len(c.pending) > 0 {
		return Settling
	}
	return Idle
}

func (c *Controller) scheduleRelease(id string) {
	c.cancelRelease(id)
	c.gen++
	gen := c.gen
	t := c.clock.AfterFunc(c.cfg.SettleDelay, func() { c.fire(id, gen) })
	c.pending[id] = release{timer: t, gen: gen}
}

// cancelRelease drops a pending release so a new drag keeps the pin.
func (c *Controller) cancelRelease(id string) {
	if r, ok := c.pending[id]; ok {
		r.timer.Stop()
		delete(c.pending, id)
	}
}

func (c *Controller) fire(id string, gen uint64) {
	c.lock.Lock()
	defer c.lock.Unlock()
	r, ok := c.pending[id]
	if c.closed || !ok || r.gen != gen {
		return
	}
	delete(c.pending, id)
	c.target.Unpin(id)
	if c.state == Settling && len(c.pending) == 0 {
		c.state = Idle
	}
	c.target.Invalidate()
}

// Reset abandons any gesture and pending release and installs t. It is
// used when the graph is replaced.
func (c *Controller) Reset(t layout.Transform) {
	for id := range c.pending {
		c.cancelRelease(id)
	}
	c.gesture = gesture{}
	c.state = Idle
	t.K = c.cfg.ClampZoom(t.K)
	c.view = t
}

// Close stops every timer. Later calls on the controller do nothing.
func (c *Controller) Close() {
	if c.closed {
		return
	}
	for id := range c.pending {
		c.cancelRelease(id)
	}
	c.state = Idle
	c.closed = true
}
