// Package canvas hosts one interactive graph view. A Canvas owns the
// current records, their layout, the selection and the gesture state, and
// composes a scene from them on demand.
//
// Every entry point takes the canvas lock, including layout ticks and
// settle timers, so the view is only ever touched by one goroutine at a
// time. Selection callbacks run after the lock is released.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/highlight"
	"datarepublican/charitygraph/internal/interact"
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/render"
)

var (
	// ErrUnknownNode is returned when selecting an id that is not in the graph.
	ErrUnknownNode = errors.New("canvas: unknown node")
	// ErrNotMounted is returned by calls that need a surface.
	ErrNotMounted = errors.New("canvas: not mounted")
)

// Canvas is an interactive view of one graph.
type Canvas struct {
	mu       sync.Mutex
	deferred []func()

	opts Options
	log  *zap.Logger

	snap      *graph.Snapshot
	viewport  layout.Viewport
	highlight highlight.State

	mounted bool
	ctx     context.Context
	cancel  context.CancelFunc

	arena   *layout.Arena
	run     layout.Run
	handle  layout.Handle
	loop    uint64
	ticking bool
	started time.Time
	settled bool
	ctrl    *interact.Controller
	fitted  layout.Transform

	frames chan struct{}
}

// New creates an unmounted canvas with no data.
func New(opts Options) *Canvas {
	opts = opts.withDefaults()
	empty, _ := graph.NewSnapshot(nil, nil)
	return &Canvas{
		opts:     opts,
		log:      opts.Logger.Named("canvas"),
		snap:     empty,
		viewport: layout.Viewport{}.OrDefault(),
		frames:   make(chan struct{}, 1),
	}
}

// unlock releases the canvas lock and then runs callbacks queued while it
// was held.
func (c *Canvas) unlock() {
	fns := c.deferred
	c.deferred = nil
	c.mu.Unlock()
	for _, f := range fns {
		f()
	}
}

type canvasLock struct{ c *Canvas }

func (l canvasLock) Lock()   { l.c.mu.Lock() }
func (l canvasLock) Unlock() { l.c.unlock() }

// Frames delivers a signal whenever the scene changed. Signals coalesce:
// a slow reader sees at most one pending frame.
func (c *Canvas) Frames() <-chan struct{} { return c.frames }

func (c *Canvas) signal() {
	select {
	case c.frames <- struct{}{}:
	default:
	}
}

// Mount attaches the canvas to a surface of the given size and starts the
// layout. Mounting a mounted canvas does nothing.
func (c *Canvas) Mount(ctx context.Context, vp layout.Viewport) {
	c.mu.Lock()
	defer c.unlock()
	if c.mounted {
		return
	}
	c.mounted = true
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.viewport = vp.OrDefault()
	c.ctrl = interact.NewController(c.opts.Interaction, (*target)(c), c.opts.Clock, canvasLock{c})
	c.restart()
	c.log.Debug("mounted",
		zap.String("strategy", c.opts.Strategy.Name()),
		zap.Float64("width", c.viewport.Width),
		zap.Float64("height", c.viewport.Height))
}

// Unmount stops the layout and every pending timer. Later calls that need
// a surface are no-ops.
func (c *Canvas) Unmount() {
	c.mu.Lock()
	defer c.unlock()
	if !c.mounted {
		return
	}
	c.mounted = false
	c.stopDriver()
	c.ctrl.Close()
	c.cancel()
	c.log.Debug("unmounted")
}

// Mounted reports whether the canvas has a surface.
func (c *Canvas) Mounted() bool {
	c.mu.Lock()
	defer c.unlock()
	return c.mounted
}

// SetData replaces the whole graph. The layout restarts and the view is
// reset to fit. Integrity problems are returned as *graph.IntegrityError;
// the valid part of the graph is shown regardless.
func (c *Canvas) SetData(nodes []graph.Node, edges []graph.Edge) error {
	snap, err := graph.NewSnapshot(nodes, edges)
	c.mu.Lock()
	defer c.unlock()

	c.snap = snap
	sel := c.highlight.Selected
	if _, ok := snap.Node(sel); !ok {
		sel = ""
	}
	c.highlight = highlight.Resolve(sel, snap.Edges)

	if err != nil {
		c.reportIntegrity(err)
	}
	if c.mounted {
		c.restart()
	}
	c.log.Info("graph replaced",
		zap.Int("nodes", len(snap.Nodes)),
		zap.Int("edges", len(snap.Edges)))
	return err
}

func (c *Canvas) reportIntegrity(err error) {
	var ie *graph.IntegrityError
	if !errors.As(err, &ie) {
		c.log.Warn("loading graph", zap.Error(err))
		return
	}
	c.opts.Metrics.AddIntegrityErrors("dangling", len(ie.Dangling))
	c.opts.Metrics.AddIntegrityErrors("duplicate", len(ie.Duplicates))
	c.opts.Metrics.AddIntegrityErrors("category", len(ie.Mismatched))
	c.log.Warn("graph has integrity problems",
		zap.Int("count", ie.Count()),
		zap.Strings("details", ie.Details()))
}

// restart lays the current snapshot out from scratch. Caller holds the lock.
func (c *Canvas) restart() {
	c.stopDriver()
	c.arena = layout.NewArena(c.snap.Records())
	c.started = time.Now()
	c.settled = false
	c.run = c.opts.Strategy.Start(c.arena, c.snap.Edges, c.viewport)
	c.ctrl.Reset(c.fit())
	c.fitted = c.ctrl.Transform()
	c.kick()
	c.signal()
}

// kick starts the tick loop unless it is already running.
func (c *Canvas) kick() {
	if c.ticking || !c.mounted {
		return
	}
	c.stopDriver()
	c.ticking = true
	loop := c.loop
	c.handle = c.opts.Driver.Drive(c.ctx, func() bool { return c.step(loop) })
}

// stopDriver stops the current loop. A stale loop that is still waiting
// for the lock sees a new loop number and exits.
func (c *Canvas) stopDriver() {
	if c.handle != nil {
		c.handle.Stop()
		c.handle = nil
	}
	c.loop++
	c.ticking = false
}

// step advances the layout by one tick on behalf of loop.
func (c *Canvas) step(loop uint64) bool {
	c.mu.Lock()
	defer c.unlock()
	if !c.mounted || loop != c.loop {
		return false
	}
	name := c.opts.Strategy.Name()
	more := c.run.Tick()
	c.opts.Metrics.IncTicks(name)
	if !more {
		c.ticking = false
		if !c.settled {
			c.settled = true
			c.refit()
			elapsed := time.Since(c.started)
			c.opts.Metrics.ObserveLayout(name, elapsed)
			c.log.Debug("layout settled", zap.String("strategy", name), zap.Duration("elapsed", elapsed))
		}
	}
	c.signal()
	return more
}

// refit frames the settled layout unless the view was moved since the
// last restart. Caller holds the lock.
func (c *Canvas) refit() {
	if c.ctrl.State() != interact.Idle || c.ctrl.Transform() != c.fitted {
		return
	}
	c.ctrl.Reset(c.fit())
	c.fitted = c.ctrl.Transform()
}

// Settled reports whether the layout of the current data has come to
// rest at least once since it was started.
func (c *Canvas) Settled() bool {
	c.mu.Lock()
	defer c.unlock()
	return c.settled
}

// WaitSettled blocks until Settled is true. It consumes frame signals, so
// it is meant for headless use where nothing else reads Frames.
func (c *Canvas) WaitSettled(ctx context.Context) error {
	for {
		c.mu.Lock()
		settled, mounted := c.settled, c.mounted
		c.unlock()
		switch {
		case settled:
			return nil
		case !mounted:
			return ErrNotMounted
		}
		select {
		case <-c.frames:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// fit is the view that shows the whole laid out graph. Caller holds the
// lock.
func (c *Canvas) fit() layout.Transform {
	return FitTransform(c.arena.Positions(), c.viewport, c.opts.FitScale, c.opts.Interaction.MinZoom)
}

// Resize changes the surface size. The layout is kept.
func (c *Canvas) Resize(vp layout.Viewport) {
	c.mu.Lock()
	defer c.unlock()
	c.viewport = vp.OrDefault()
	c.signal()
}

// Viewport returns the surface size.
func (c *Canvas) Viewport() layout.Viewport {
	c.mu.Lock()
	defer c.unlock()
	return c.viewport
}

// Snapshot returns the current graph. It must not be modified.
func (c *Canvas) Snapshot() *graph.Snapshot {
	c.mu.Lock()
	defer c.unlock()
	return c.snap
}

// Node returns a copy of one record.
func (c *Canvas) Node(id string) (graph.Node, bool) {
	c.mu.Lock()
	defer c.unlock()
	n, ok := c.snap.Node(id)
	if !ok {
		return graph.Node{}, false
	}
	return *n, true
}

// Select highlights a node and its neighbors. An empty id clears the
// selection.
func (c *Canvas) Select(id string) error {
	c.mu.Lock()
	defer c.unlock()
	if id != "" {
		if _, ok := c.snap.Node(id); !ok {
			return fmt.Errorf("%w: %q", ErrUnknownNode, id)
		}
	}
	c.selectNode(id)
	return nil
}

// ClearSelection removes any highlight.
func (c *Canvas) ClearSelection() {
	_ = c.Select("")
}

// Selection returns the selected id and its neighbors.
func (c *Canvas) Selection() (string, []string) {
	c.mu.Lock()
	defer c.unlock()
	return c.highlight.Selected, c.highlight.Adjacent.Sorted()
}

func (c *Canvas) selectNode(id string) {
	c.highlight = highlight.Resolve(id, c.snap.Edges)
	c.signal()
	if id == "" || c.opts.OnSelect == nil {
		return
	}
	n, _ := c.snap.Node(id)
	rec, cb := *n, c.opts.OnSelect
	c.deferred = append(c.deferred, func() { cb(rec) })
}

// PointerDown forwards a press at a surface point.
func (c *Canvas) PointerDown(p layout.Point) {
	c.withController(func(ctrl *interact.Controller) { ctrl.PointerDown(p) })
}

// PointerMove forwards pointer motion.
func (c *Canvas) PointerMove(p layout.Point) {
	c.withController(func(ctrl *interact.Controller) { ctrl.PointerMove(p) })
}

// PointerUp forwards a release.
func (c *Canvas) PointerUp(p layout.Point) {
	c.withController(func(ctrl *interact.Controller) { ctrl.PointerUp(p) })
}

// Wheel zooms about p. Positive deltaY zooms out.
func (c *Canvas) Wheel(p layout.Point, deltaY float64) {
	c.withController(func(ctrl *interact.Controller) { ctrl.Wheel(p, deltaY) })
}

// SetTransform replaces the view transform, clamped to the zoom range.
func (c *Canvas) SetTransform(t layout.Transform) {
	c.withController(func(ctrl *interact.Controller) { ctrl.SetTransform(t) })
}

// ResetView returns to the fitted view.
func (c *Canvas) ResetView() {
	c.withController(func(ctrl *interact.Controller) { ctrl.SetTransform(c.fit()) })
}

func (c *Canvas) withController(f func(*interact.Controller)) {
	c.mu.Lock()
	defer c.unlock()
	if !c.mounted {
		return
	}
	f(c.ctrl)
}

// Transform returns the current view transform.
func (c *Canvas) Transform() layout.Transform {
	c.mu.Lock()
	defer c.unlock()
	if c.ctrl == nil {
		return layout.Identity
	}
	return c.ctrl.Transform()
}

// InteractionState reports the gesture state.
func (c *Canvas) InteractionState() interact.State {
	c.mu.Lock()
	defer c.unlock()
	if !c.mounted {
		return interact.Idle
	}
	return c.ctrl.State()
}

// Scene composes the current frame. ok is false while unmounted.
func (c *Canvas) Scene() (s *render.Scene, ok bool) {
	c.mu.Lock()
	defer c.unlock()
	if !c.mounted {
		return nil, false
	}
	start := time.Now()
	s = c.compose()
	c.opts.Metrics.ObserveRender("scene", time.Since(start))
	return s, true
}

func (c *Canvas) compose() *render.Scene {
	return render.Compose(render.Input{
		Nodes:     c.snap.Nodes,
		Edges:     c.snap.Edges,
		Positions: c.arena.Positions(),
		Highlight: c.highlight,
		Viewport:  c.viewport,
		Transform: c.ctrl.Transform(),
		ArcFactor: c.opts.ArcFactor,
		WrapWidth: c.opts.WrapWidth,
		Legend:    c.opts.Legend,
	})
}

// Export writes the current view, highlight included, as an SVG document.
// It reports false without writing anything while unmounted.
func (c *Canvas) Export(w io.Writer) (bool, error) {
	c.mu.Lock()
	if !c.mounted {
		c.unlock()
		return false, nil
	}
	start := time.Now()
	scene := c.compose()
	c.unlock()

	if err := render.Encode(w, scene); err != nil {
		return true, fmt.Errorf("encoding svg: %w", err)
	}
	c.opts.Metrics.ObserveRender("svg", time.Since(start))
	c.opts.Metrics.IncExports()
	return true, nil
}
