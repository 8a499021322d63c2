package canvas

import (
	"datarepublican/charitygraph/internal/layout"
	"datarepublican/charitygraph/internal/render"
)

// target adapts a Canvas to interact.Target. Every method runs with the
// canvas lock held.
type target Canvas

func (t *target) c() *Canvas { return (*Canvas)(t) }

// HitTest checks cards from the top of the drawing order down.
func (t *target) HitTest(w layout.Point) (string, bool) {
	c := t.c()
	for i := len(c.snap.Nodes) - 1; i >= 0; i-- {
		id := c.snap.Nodes[i].ID
		p, ok := c.arena.Position(id)
		if ok && render.Card(p).Contains(w) {
			return id, true
		}
	}
	return "", false
}

func (t *target) Position(id string) (layout.Point, bool) {
	return t.c().arena.Position(id)
}

func (t *target) Pin(id string, p layout.Point) {
	if b := t.c().arena.Body(id); b != nil {
		b.Fix(p)
	}
}

func (t *target) Unpin(id string) {
	c := t.c()
	if !c.run.ReleasesPins() {
		return
	}
	if b := c.arena.Body(id); b != nil {
		b.Release()
		c.kick()
	}
}

func (t *target) ReleasesPins() bool { return t.c().run.ReleasesPins() }

func (t *target) DragStarted() {
	c := t.c()
	c.run.SetAlphaTarget(c.opts.DragAlphaTarget)
	c.kick()
}

func (t *target) DragEnded() { t.c().run.SetAlphaTarget(0) }

func (t *target) Select(id string) { t.c().selectNode(id) }

func (t *target) Invalidate() { t.c().signal() }
