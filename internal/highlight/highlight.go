// Package highlight derives selection emphasis. It reads the edge list and
// never mutates it.
package highlight

import (
	"sort"

	"datarepublican/charitygraph/internal/graph"
)

// Set is a collection of node ids.
type Set map[string]struct{}

// Has reports whether id is in the set.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

// Adjacency returns every node joined to selected by an edge in either
// direction. Parallel edges count once. The selected node is a member only
// when it has a self-loop. An empty selection yields an empty set.
func Adjacency(selected string, edges []graph.Edge) Set {
	set := make(Set)
	if selected == "" {
		return set
	}
	for _, e := range edges {
		switch {
		case e.Source == selected:
			set[e.Target] = struct{}{}
		case e.Target == selected:
			set[e.Source] = struct{}{}
		}
	}
	return set
}

// Emphasis is the visual weight of an element.
type Emphasis int

const (
	// Baseline applies to everything while nothing is selected.
	Baseline Emphasis = iota
	// Full marks the selection and its neighborhood.
	Full
	// Dim marks everything outside the neighborhood.
	Dim
)

func (e Emphasis) String() string {
	switch e {
	case Full:
		return "full"
	case Dim:
		return "dim"
	default:
		return "baseline"
	}
}

// State is the resolved highlight for one selection.
type State struct {
	Selected string
	Adjacent Set
}

// Resolve computes the state for a selection. An empty id clears it.
func Resolve(selected string, edges []graph.Edge) State {
	return State{Selected: selected, Adjacent: Adjacency(selected, edges)}
}

// Active reports whether a node is selected.
func (s State) Active() bool { return s.Selected != "" }

// Node returns the emphasis of a node.
func (s State) Node(id string) Emphasis {
	switch {
	case !s.Active():
		return Baseline
	case id == s.Selected || s.Adjacent.Has(id):
		return Full
	default:
		return Dim
	}
}

// Edge returns the emphasis of an edge and its label. Only edges touching
// the selected node are emphasized, even when both ends are neighbors.
func (s State) Edge(e graph.Edge) Emphasis {
	switch {
	case !s.Active():
		return Baseline
	case e.Touches(s.Selected):
		return Full
	default:
		return Dim
	}
}

// MarshalText encodes the emphasis by name.
func (e Emphasis) MarshalText() ([]byte, error) { return []byte(e.String()), nil }

// Neighborhood returns ids together with every node one edge away from any
// of them.
func Neighborhood(ids []string, edges []graph.Edge) Set {
	seed := make(Set, len(ids))
	for _, id := range ids {
		seed[id] = struct{}{}
	}
	set := make(Set, len(ids))
	for id := range seed {
		set[id] = struct{}{}
	}
	for _, e := range edges {
		if seed.Has(e.Source) {
			set[e.Target] = struct{}{}
		}
		if seed.Has(e.Target) {
			set[e.Source] = struct{}{}
		}
	}
	return set
}
