package graph

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

// quickSnapshot builds nodes with zero funds and one edge per pair.
func quickSnapshot(t *testing.T, nodeIDs []string, edges [][2]string) *Snapshot {
	t.Helper()
	var nodes []Node
	for _, id := range nodeIDs {
		nodes = append(nodes, Node{ID: id, Name: "Charity " + id})
	}
	var edgeList []Edge
	for i, e := range edges {
		edgeList = append(edgeList, Edge{Source: e[0], Target: e[1], Value: float64(100 * (i + 1))})
	}
	snap, err := NewSnapshot(nodes, edgeList)
	if err != nil {
		t.Fatalf("unexpected integrity error: %v", err)
	}
	return snap
}

// --- Category Tests ---

func TestClassify_Thresholds(t *testing.T) {
	tests := []struct {
		amount float64
		want   Category
	}{
		{12_502_500, High},
		{335_000, Low},
		{8_500_000, Medium},
		{0, Low},
		{10_000_000, Medium},
		{10_000_001, High},
		{1_000_000, Medium},
		{999_999, Low},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%.0f", tt.amount), func(t *testing.T) {
			if got := Classify(tt.amount); got != tt.want {
				t.Errorf("Classify(%.0f) = %s, want %s", tt.amount, got, tt.want)
			}
		})
	}
}

func TestParseCategory(t *testing.T) {
	got, err := ParseCategory(" HIGH ")
	if err != nil || got != High {
		t.Errorf("got %q, %v; want high", got, err)
	}
	if _, err := ParseCategory("critical"); err == nil {
		t.Error("expected error for unknown category")
	}
}

// --- Snapshot Tests ---

func TestSnapshot_EmptyGraph(t *testing.T) {
	snap, err := NewSnapshot(nil, nil)
	if err != nil {
		t.Fatalf("empty graph should not error, got %v", err)
	}
	if snap.Len() != 0 || len(snap.Edges) != 0 {
		t.Errorf("expected empty snapshot, got nodes=%d edges=%d", snap.Len(), len(snap.Edges))
	}
}

func TestSnapshot_PreservesOrder(t *testing.T) {
	snap := quickSnapshot(t, []string{"c", "a", "b"}, nil)
	for i, want := range []string{"c", "a", "b"} {
		if snap.Nodes[i].ID != want {
			t.Errorf("node %d: got %s, want %s", i, snap.Nodes[i].ID, want)
		}
	}
}

func TestSnapshot_DanglingEdgeReported(t *testing.T) {
	nodes := []Node{{ID: "A", Name: "A"}, {ID: "B", Name: "B"}}
	edges := []Edge{
		{Source: "A", Target: "B", Value: 10},
		{Source: "A", Target: "Z", Value: 5},
	}
	snap, err := NewSnapshot(nodes, edges)
	if err == nil {
		t.Fatal("expected integrity error for dangling edge")
	}
	if !errors.Is(err, ErrDanglingEdge) {
		t.Errorf("error should match ErrDanglingEdge, got %v", err)
	}
	var ie *IntegrityError
	if !errors.As(err, &ie) {
		t.Fatalf("expected *IntegrityError, got %T", err)
	}
	if len(ie.Dangling) != 1 || ie.Dangling[0].Missing != "Z" || ie.Dangling[0].Index != 1 {
		t.Errorf("unexpected dangling report: %+v", ie.Dangling)
	}
	if snap == nil || snap.Len() != 2 || len(snap.Edges) != 1 {
		t.Errorf("valid part of the graph should survive, got %+v", snap)
	}
}

func TestSnapshot_DuplicateNodeKeepsFirst(t *testing.T) {
	nodes := []Node{{ID: "A", Name: "first"}, {ID: "A", Name: "second"}}
	snap, err := NewSnapshot(nodes, nil)
	if !errors.Is(err, ErrDuplicateNode) {
		t.Fatalf("expected ErrDuplicateNode, got %v", err)
	}
	n, ok := snap.Node("A")
	if !ok || n.Name != "first" {
		t.Errorf("expected first occurrence kept, got %+v", n)
	}
}

func TestSnapshot_CategoryDerivedAndChecked(t *testing.T) {
	nodes := []Node{
		{ID: "1", Name: "RI", TaxpayerFunds: 12_502_500, Category: High},
		{ID: "2", Name: "AYCO", TaxpayerFunds: 0},
		{ID: "3", Name: "Wrong", TaxpayerFunds: 8_500_000, Category: Low},
	}
	snap, err := NewSnapshot(nodes, nil)
	if !errors.Is(err, ErrCategoryMismatch) {
		t.Fatalf("expected ErrCategoryMismatch, got %v", err)
	}
	want := map[string]Category{"1": High, "2": Low, "3": Medium}
	for id, cat := range want {
		n, _ := snap.Node(id)
		if n.Category != cat {
			t.Errorf("%s: got %s, want %s", id, n.Category, cat)
		}
	}
}

func TestSnapshot_Adjacency(t *testing.T) {
	snap := quickSnapshot(t, []string{"A", "B", "C"}, [][2]string{{"A", "B"}, {"B", "C"}, {"A", "B"}})
	if len(snap.Out["A"]) != 2 {
		t.Errorf("duplicate edges are kept: expected 2 out of A, got %v", snap.Out["A"])
	}
	if len(snap.In["C"]) != 1 || snap.In["C"][0] != "B" {
		t.Errorf("expected C <- B, got %v", snap.In["C"])
	}
}

func TestSnapshot_Subset(t *testing.T) {
	snap := quickSnapshot(t, []string{"A", "B", "C", "D"}, [][2]string{{"A", "B"}, {"B", "C"}, {"C", "D"}})
	sub := snap.Subset([]string{"C", "B"})
	if sub.Len() != 2 {
		t.Fatalf("expected 2 nodes, got %d", sub.Len())
	}
	if sub.Nodes[0].ID != "B" {
		t.Errorf("subset should keep parent order, got %s first", sub.Nodes[0].ID)
	}
	if len(sub.Edges) != 1 || sub.Edges[0].String() != "B->C" {
		t.Errorf("expected only B->C, got %v", sub.Edges)
	}
}

func TestSnapshot_Search(t *testing.T) {
	snap, err := NewSnapshot([]Node{
		{ID: "1", Name: "Rhode Island Community Foundation", EIN: "22-2604963"},
		{ID: "2", Name: "Ayco Charitable Foundation", EIN: "14-1782466"},
		{ID: "3", Name: "Island Shelter", EIN: ""},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		query string
		limit int
		want  string
	}{
		{"island", 0, "1,3"},
		{"FOUNDATION", 1, "1"},
		{"22-26", 0, "1"},
		{"1417", 0, "2"},
		{"  ", 0, ""},
		{"museum", 0, ""},
	}
	for _, tt := range tests {
		got := fmt.Sprint(snap.Search(tt.query, tt.limit))
		want := "[" + strings.ReplaceAll(tt.want, ",", " ") + "]"
		if got != want {
			t.Errorf("Search(%q, %d) = %s, want %s", tt.query, tt.limit, got, want)
		}
	}
}

// --- Summary Tests ---

func TestSummary_EmptyGraph(t *testing.T) {
	snap, _ := NewSnapshot(nil, nil)
	s := Summarize(snap, 4, 10)
	if s.TotalNodes != 0 || s.TotalEdges != 0 || s.OrphanCount != 0 {
		t.Errorf("empty graph should have all zeros, got %+v", s)
	}
}

func TestSummary_OrphansAndHubs(t *testing.T) {
	snap := quickSnapshot(t,
		[]string{"center", "s1", "s2", "s3", "lonely"},
		[][2]string{{"center", "s1"}, {"center", "s2"}, {"s3", "center"}},
	)
	s := Summarize(snap, 2, 10)
	if s.OrphanCount != 1 || s.OrphanIDs[0] != "lonely" {
		t.Errorf("expected lonely as the only orphan, got %v", s.OrphanIDs)
	}
	if len(s.Hubs) != 1 || s.Hubs[0].ID != "center" {
		t.Fatalf("expected center as hub, got %+v", s.Hubs)
	}
	if s.Hubs[0].InDegree != 1 || s.Hubs[0].OutDegree != 2 {
		t.Errorf("center degree split wrong: %+v", s.Hubs[0])
	}
	if s.TotalFlow != 600 {
		t.Errorf("expected total flow 600, got %v", s.TotalFlow)
	}
	if s.ByCategory[Low] != 5 {
		t.Errorf("all nodes are low, got %v", s.ByCategory)
	}
}
