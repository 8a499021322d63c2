package graph

import (
	"sort"
	"strings"
)

// Snapshot is an arena of nodes indexed by id with edges stored as id pairs.
// Nodes keep their input order, which the grid layout depends on.
type Snapshot struct {
	Nodes []*Node
	Edges []Edge
	Out   map[string][]string // directed: source -> targets
	In    map[string][]string // directed: target -> sources

	byID map[string]*Node
}

// NewSnapshot builds a Snapshot from raw records. It always returns a usable
// snapshot. Problems are reported through a non-nil *IntegrityError: dangling
// edges are left out, repeated node ids keep their first occurrence, and a
// category that disagrees with the taxpayer-funds rule is replaced by the
// derived one. A missing category is derived silently.
func NewSnapshot(nodes []Node, edges []Edge) (*Snapshot, error) {
	s := &Snapshot{
		Nodes: make([]*Node, 0, len(nodes)),
		Edges: make([]Edge, 0, len(edges)),
		Out:   make(map[string][]string, len(nodes)),
		In:    make(map[string][]string, len(nodes)),
		byID:  make(map[string]*Node, len(nodes)),
	}
	integrity := &IntegrityError{}

	for i := range nodes {
		n := nodes[i]
		if _, dup := s.byID[n.ID]; dup {
			integrity.Duplicates = append(integrity.Duplicates, n.ID)
			continue
		}
		derived := Classify(n.TaxpayerFunds)
		if n.Category != "" && n.Category != derived {
			integrity.Mismatched = append(integrity.Mismatched, CategoryMismatch{
				ID: n.ID, Supplied: n.Category, Derived: derived,
			})
		}
		n.Category = derived

		s.Nodes = append(s.Nodes, &n)
		s.byID[n.ID] = &n
		s.Out[n.ID] = nil // ensure entry exists
		s.In[n.ID] = nil
	}

	for i, e := range edges {
		if _, ok := s.byID[e.Source]; !ok {
			integrity.Dangling = append(integrity.Dangling, DanglingEdge{Index: i, Edge: e, Missing: e.Source})
			continue
		}
		if _, ok := s.byID[e.Target]; !ok {
			integrity.Dangling = append(integrity.Dangling, DanglingEdge{Index: i, Edge: e, Missing: e.Target})
			continue
		}
		s.Edges = append(s.Edges, e)
		s.Out[e.Source] = append(s.Out[e.Source], e.Target)
		s.In[e.Target] = append(s.In[e.Target], e.Source)
	}

	if integrity.Empty() {
		return s, nil
	}
	return s, integrity
}

// Node looks up a node by id.
func (s *Snapshot) Node(id string) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Len is the number of nodes.
func (s *Snapshot) Len() int {
	return len(s.Nodes)
}

// Records returns copies of the nodes in input order.
func (s *Snapshot) Records() []Node {
	out := make([]Node, len(s.Nodes))
	for i, n := range s.Nodes {
		out[i] = *n
	}
	return out
}

// Subset returns a new snapshot holding only the given node ids (in this
// snapshot's order) and the edges between them.
func (s *Snapshot) Subset(ids []string) *Snapshot {
	keep := make(map[string]bool, len(ids))
	for _, id := range ids {
		keep[id] = true
	}

	var nodes []Node
	for _, n := range s.Nodes {
		if keep[n.ID] {
			nodes = append(nodes, *n)
		}
	}
	var edges []Edge
	for _, e := range s.Edges {
		if keep[e.Source] && keep[e.Target] {
			edges = append(edges, e)
		}
	}

	// Inputs come from an already validated snapshot.
	sub, _ := NewSnapshot(nodes, edges)
	return sub
}

// NodeIDs returns a sorted list of all node IDs (for deterministic output)
func (s *Snapshot) NodeIDs() []string {
	ids := make([]string, 0, len(s.byID))
	for id := range s.byID {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Search returns the ids of nodes whose name contains query, ignoring case,
// or whose EIN starts with it once dashes are dropped. Ids come back in
// node order; at most limit are returned when limit is positive.
func (s *Snapshot) Search(query string, limit int) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	digits := strings.ReplaceAll(q, "-", "")

	var ids []string
	for _, n := range s.Nodes {
		ein := strings.ReplaceAll(n.EIN, "-", "")
		if strings.Contains(strings.ToLower(n.Name), q) || (digits != "" && ein != "" && strings.HasPrefix(ein, digits)) {
			ids = append(ids, n.ID)
			if limit > 0 && len(ids) == limit {
				break
			}
		}
	}
	return ids
}
