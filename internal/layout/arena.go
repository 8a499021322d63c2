package layout

import "datarepublican/charitygraph/internal/graph"

// Body is the mutable layout state of one node. A non-nil Pin overrides any
// simulated movement.
type Body struct {
	ID     string
	X, Y   float64
	VX, VY float64
	Pin    *Point
	placed bool
}

// Position returns the current coordinates.
func (b *Body) Position() Point { return Point{b.X, b.Y} }

// Pinned reports whether the body is held at a fixed position.
func (b *Body) Pinned() bool { return b.Pin != nil }

// Fix pins the body at p and moves it there immediately.
func (b *Body) Fix(p Point) {
	b.Pin = &Point{p.X, p.Y}
	b.X, b.Y = p.X, p.Y
	b.VX, b.VY = 0, 0
	b.placed = true
}

// Release clears the pin so simulation forces apply again.
func (b *Body) Release() { b.Pin = nil }

// Arena owns the bodies of one graph, in node order.
type Arena struct {
	bodies []*Body
	index  map[string]int
}

// NewArena creates one unplaced body per node.
func NewArena(nodes []graph.Node) *Arena {
	a := &Arena{
		bodies: make([]*Body, len(nodes)),
		index:  make(map[string]int, len(nodes)),
	}
	for i, n := range nodes {
		a.bodies[i] = &Body{ID: n.ID}
		a.index[n.ID] = i
	}
	return a
}

// Body returns the body for a node id, or nil.
func (a *Arena) Body(id string) *Body {
	i, ok := a.index[id]
	if !ok {
		return nil
	}
	return a.bodies[i]
}

// Bodies returns every body in node order. The slice must not be modified.
func (a *Arena) Bodies() []*Body { return a.bodies }

// Len is the number of bodies.
func (a *Arena) Len() int { return len(a.bodies) }

// Position resolves a node id to its coordinates.
func (a *Arena) Position(id string) (Point, bool) {
	b := a.Body(id)
	if b == nil {
		return Point{}, false
	}
	return b.Position(), true
}

// Positions copies every body's coordinates.
func (a *Arena) Positions() Positions {
	ps := make(Positions, len(a.bodies))
	for _, b := range a.bodies {
		ps[b.ID] = b.Position()
	}
	return ps
}
