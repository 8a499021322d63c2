package interact

import (
	"math"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datarepublican/charitygraph/internal/layout"
)

type fakeTarget struct {
	pos        map[string]layout.Point
	pins       map[string]layout.Point
	live       bool
	started    int
	ended      int
	selected   []string
	invalidate int
}

func newFakeTarget(live bool) *fakeTarget {
	return &fakeTarget{
		pos: map[string]layout.Point{
			"A": {X: 0, Y: 0},
			"B": {X: 400, Y: 0},
		},
		pins: make(map[string]layout.Point),
		live: live,
	}
}

func (f *fakeTarget) HitTest(w layout.Point) (string, bool) {
	for id, p := range f.pos {
		if math.Abs(w.X-p.X) <= 130 && math.Abs(w.Y-p.Y) <= 75 {
			return id, true
		}
	}
	return "", false
}

func (f *fakeTarget) Position(id string) (layout.Point, bool) {
	p, ok := f.pos[id]
	return p, ok
}

func (f *fakeTarget) Pin(id string, p layout.Point) {
	f.pins[id] = p
	f.pos[id] = p
}

func (f *fakeTarget) Unpin(id string)    { delete(f.pins, id) }
func (f *fakeTarget) ReleasesPins() bool { return f.live }
func (f *fakeTarget) DragStarted()       { f.started++ }
func (f *fakeTarget) DragEnded()         { f.ended++ }
func (f *fakeTarget) Select(id string)   { f.selected = append(f.selected, id) }
func (f *fakeTarget) Invalidate()        { f.invalidate++ }

func setup(live bool) (*Controller, *fakeTarget, *ManualClock, *sync.Mutex) {
	tgt := newFakeTarget(live)
	clock := NewManualClock(time.Unix(0, 0))
	mu := &sync.Mutex{}
	return NewController(DefaultConfig(), tgt, clock, mu), tgt, clock, mu
}

func pt(x, y float64) layout.Point { return layout.Point{X: x, Y: y} }

func TestPan(t *testing.T) {
	c, tgt, _, _ := setup(true)

	c.PointerDown(pt(1000, 1000))
	assert.Equal(t, Panning, c.State())
	c.PointerMove(pt(1030, 990))
	c.PointerUp(pt(1050, 980))

	assert.Equal(t, Idle, c.State())
	assert.Equal(t, layout.Transform{X: 50, Y: -20, K: 1}, c.Transform())
	assert.Empty(t, tgt.pins)
	assert.Empty(t, tgt.selected)
}

func TestWheelZoomClamps(t *testing.T) {
	c, _, _, _ := setup(true)

	c.Wheel(pt(100, 100), -500) // zoom in by 2x
	assert.InDelta(t, 2, c.Transform().K, 1e-9)
	// the world point under the cursor stays put
	assert.InDelta(t, 100, c.Transform().Invert(pt(100, 100)).X, 1e-9)

	c.Wheel(pt(100, 100), -5000)
	assert.Equal(t, 2.0, c.Transform().K)

	c.Wheel(pt(0, 0), 100000)
	assert.Equal(t, 0.2, c.Transform().K)
}

func TestSetTransformClamps(t *testing.T) {
	c, _, _, _ := setup(true)
	c.SetTransform(layout.Transform{X: 1, Y: 2, K: 10})
	assert.Equal(t, layout.Transform{X: 1, Y: 2, K: 2}, c.Transform())
}

func TestDragThenRelease(t *testing.T) {
	c, tgt, clock, _ := setup(true)

	c.PointerDown(pt(10, 10))
	require.Equal(t, Dragging, c.State())
	assert.Equal(t, 1, tgt.started)
	assert.Equal(t, pt(0, 0), tgt.pins["A"])

	c.PointerMove(pt(60, 40))
	assert.Equal(t, pt(50, 30), tgt.pins["A"], "node keeps its offset from the pointer")

	c.PointerUp(pt(60, 40))
	assert.Equal(t, Settling, c.State())
	assert.Equal(t, 1, tgt.ended)
	assert.Empty(t, tgt.selected, "a drag is not a click")
	assert.Equal(t, []string{"A"}, c.Pending())

	clock.Advance(999 * time.Millisecond)
	assert.Contains(t, tgt.pins, "A")

	clock.Advance(time.Millisecond)
	assert.NotContains(t, tgt.pins, "A")
	assert.Equal(t, Idle, c.State())
	assert.Empty(t, c.Pending())
}

func TestStaticLayoutKeepsPin(t *testing.T) {
	c, tgt, clock, _ := setup(false)

	c.PointerDown(pt(0, 0))
	c.PointerMove(pt(100, 100))
	c.PointerUp(pt(100, 100))

	assert.Equal(t, Idle, c.State())
	clock.Advance(time.Hour)
	assert.Equal(t, pt(100, 100), tgt.pins["A"])
	assert.Zero(t, clock.Pending())
}

func TestRedragCancelsPendingRelease(t *testing.T) {
	c, tgt, clock, _ := setup(true)

	c.PointerDown(pt(0, 0))
	c.PointerMove(pt(20, 0))
	c.PointerUp(pt(20, 0))
	clock.Advance(500 * time.Millisecond)

	c.PointerDown(pt(20, 0))
	assert.Empty(t, c.Pending())
	clock.Advance(time.Second)
	assert.Contains(t, tgt.pins, "A", "first release must not fire during the second drag")

	c.PointerMove(pt(40, 0))
	c.PointerUp(pt(40, 0))
	clock.Advance(999 * time.Millisecond)
	assert.Contains(t, tgt.pins, "A")
	clock.Advance(time.Millisecond)
	assert.NotContains(t, tgt.pins, "A")
}

func TestDraggingOtherNodeKeepsEarlierRelease(t *testing.T) {
	c, tgt, clock, _ := setup(true)

	c.PointerDown(pt(0, 0))
	c.PointerMove(pt(0, 20))
	c.PointerUp(pt(0, 20))

	c.PointerDown(pt(400, 0))
	assert.Equal(t, []string{"A"}, c.Pending())
	clock.Advance(time.Second)
	assert.NotContains(t, tgt.pins, "A")
	assert.Contains(t, tgt.pins, "B")
	assert.Equal(t, Dragging, c.State())

	c.PointerUp(pt(400, 0))
	assert.Equal(t, Settling, c.State())
}

func TestClickSelects(t *testing.T) {
	c, tgt, _, _ := setup(true)

	c.PointerDown(pt(400, 10))
	c.PointerMove(pt(401, 11))
	c.PointerUp(pt(401, 11))

	assert.Equal(t, []string{"B"}, tgt.selected)
}

func TestRepeatedEventsAreIdempotent(t *testing.T) {
	c, tgt, _, _ := setup(true)

	c.PointerUp(pt(0, 0))
	assert.Equal(t, Idle, c.State())

	c.PointerDown(pt(0, 0))
	c.PointerDown(pt(400, 0))
	assert.Equal(t, 1, tgt.started)
	assert.NotContains(t, tgt.pins, "B")

	c.PointerUp(pt(0, 0))
	c.PointerUp(pt(0, 0))
	assert.Equal(t, 1, tgt.ended)
	assert.Equal(t, []string{"A"}, tgt.selected)
}

func TestCloseStopsTimersAndIgnoresEvents(t *testing.T) {
	c, tgt, clock, _ := setup(true)

	c.PointerDown(pt(0, 0))
	c.PointerMove(pt(50, 0))
	c.PointerUp(pt(50, 0))
	require.Equal(t, 1, clock.Pending())

	c.Close()
	c.Close()
	assert.Zero(t, clock.Pending())

	clock.Advance(time.Hour)
	assert.Contains(t, tgt.pins, "A", "released pin is untouched after close")

	before := tgt.invalidate
	c.PointerDown(pt(400, 0))
	c.Wheel(pt(0, 0), 10)
	c.SetTransform(layout.Identity)
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, before, tgt.invalidate)
}

func TestReset(t *testing.T) {
	c, _, clock, _ := setup(true)

	c.PointerDown(pt(0, 0))
	c.PointerMove(pt(50, 0))
	c.PointerUp(pt(50, 0))
	c.Reset(layout.Transform{X: 5, Y: 5, K: 0.01})

	assert.Equal(t, Idle, c.State())
	assert.Zero(t, clock.Pending())
	assert.Equal(t, 0.2, c.Transform().K)
}

func TestTimerTakesLock(t *testing.T) {
	c, tgt, clock, mu := setup(true)

	c.PointerDown(pt(0, 0))
	c.PointerMove(pt(50, 0))
	c.PointerUp(pt(50, 0))

	mu.Lock()
	done := make(chan struct{})
	go func() {
		clock.Advance(time.Second)
		close(done)
	}()
	select {
	case <-done:
		t.Fatal("release ran without the lock")
	case <-time.After(20 * time.Millisecond):
	}
	mu.Unlock()
	<-done
	assert.NotContains(t, tgt.pins, "A")
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "panning", Panning.String())
	assert.Equal(t, "dragging", Dragging.String())
	assert.Equal(t, "settling", Settling.String())
}
