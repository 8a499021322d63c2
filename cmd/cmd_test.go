package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"datarepublican/charitygraph/internal/graph"
	"datarepublican/charitygraph/internal/render"
)

const testDataset = `{
  "nodes": [
    {"id": "1", "name": "THE RHODE ISLAND COMMUNITY FOUNDATION", "ein": "222604963", "grossReceipts": 194890954, "contributions": 30307800, "grantsGiven": 27774220, "taxpayerFunds": 12502500, "type": "high"},
    {"id": "2", "name": "THE AYCO CHARITABLE FOUNDATION", "ein": "14-1782466", "grossReceipts": 1068810756, "contributions": 251058723, "grantsGiven": 182204729, "taxpayerFunds": 0, "type": "low"},
    {"id": "3", "name": "OCEAN STATE RELIEF FUND", "ein": "22-3000001", "taxpayerFunds": 2500000},
    {"id": "4", "name": "BLOCK ISLAND SHELTER", "ein": "05-0000004"}
  ],
  "links": [
    {"source": "1", "target": "2", "value": 10134716},
    {"source": "2", "target": "3", "value": 50000},
    {"source": "3", "target": "9", "value": 1}
  ]
}`

func writeDataset(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "graph.json")
	if err := os.WriteFile(path, []byte(testDataset), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// resetFlags restores flag variables left over from an earlier Execute.
func resetFlags() {
	configPath, dbPath, datasetPath, logLevel = "", "", "", ""
	renderOut, renderLayout, renderSelect, renderSearch = render.ExportFilename, "", "", ""
	renderWidth, renderHeight = 0, 0
	renderIDs = nil
	renderNeighbors, renderNoLegend = false, false
	renderTimeout = 30 * time.Second
	importDB = ""
	inspectJSON, inspectTopN, inspectHubThreshold = false, 10, 5
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func testSnapshot(t *testing.T) *graph.Snapshot {
	t.Helper()
	snap, _ := graph.NewSnapshot([]graph.Node{
		{ID: "1", Name: "Rhode Island Community Foundation", EIN: "22-2604963"},
		{ID: "2", Name: "Ayco Charitable Foundation", EIN: "14-1782466"},
		{ID: "3", Name: "Ocean State Relief Fund", EIN: "22-3000001"},
	}, nil)
	return snap
}

func TestResolveNode(t *testing.T) {
	snap := testSnapshot(t)
	tests := []struct {
		ref     string
		want    string
		wantErr string
	}{
		{ref: "2", want: "2"},
		{ref: "22-2604963", want: "1"},
		{ref: "ocean", want: "3"},
		{ref: "foundation", wantErr: "ambiguous reference 'foundation'. 2 matches"},
		{ref: "22", wantErr: "ambiguous"},
		{ref: "museum", wantErr: "charity not found: museum"},
	}
	for _, tt := range tests {
		n, err := ResolveNode(snap, tt.ref)
		if tt.wantErr != "" {
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ResolveNode(%q) error = %v, want %q", tt.ref, err, tt.wantErr)
			}
			continue
		}
		if err != nil {
			t.Errorf("ResolveNode(%q): %v", tt.ref, err)
			continue
		}
		if n.ID != tt.want {
			t.Errorf("ResolveNode(%q) = %s, want %s", tt.ref, n.ID, tt.want)
		}
	}
}

func TestTruncTitle(t *testing.T) {
	if got := truncTitle("short", 10); got != "short" {
		t.Errorf("got %q", got)
	}
	if got := truncTitle("a fairly long charity name", 8); got != "a fairly..." {
		t.Errorf("got %q", got)
	}
}

func TestRender_WritesSVG(t *testing.T) {
	path := writeDataset(t)
	out := filepath.Join(t.TempDir(), "out.svg")

	msg, err := execute(t, "render", "--dataset", path, "-o", out, "--select", "ayco", "--log-level", "error")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, msg)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	counts, err := render.Measure(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if counts.Nodes != 4 || counts.Edges != 2 {
		t.Errorf("expected 4 nodes and 2 edges (dangling edge dropped), got %+v", counts)
	}
	if !strings.Contains(msg, "Wrote "+out) {
		t.Errorf("missing confirmation, got %q", msg)
	}
}

func TestRender_SearchWithNeighbors(t *testing.T) {
	path := writeDataset(t)
	out := filepath.Join(t.TempDir(), "subset.svg")

	msg, err := execute(t, "render", "--dataset", path, "-o", out, "--search", "ocean", "--neighbors", "--log-level", "error")
	if err != nil {
		t.Fatalf("render: %v\n%s", err, msg)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	counts, err := render.Measure(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	if counts.Nodes != 2 || counts.Edges != 1 {
		t.Errorf("expected OCEAN STATE and its donor, got %+v", counts)
	}
}

func TestInspect_JSON(t *testing.T) {
	path := writeDataset(t)
	msg, err := execute(t, "inspect", "--dataset", path, "--json", "--log-level", "error")
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, msg)
	}

	var report struct {
		Summary struct {
			TotalNodes  int            `json:"total_nodes"`
			TotalEdges  int            `json:"total_edges"`
			ByCategory  map[string]int `json:"by_category"`
			OrphanCount int            `json:"orphan_count"`
		} `json:"summary"`
		Integrity struct {
			Dangling []json.RawMessage `json:"dangling"`
		} `json:"integrity"`
	}
	if err := json.Unmarshal([]byte(msg), &report); err != nil {
		t.Fatalf("decoding report: %v\n%s", err, msg)
	}
	if report.Summary.TotalNodes != 4 || report.Summary.TotalEdges != 2 {
		t.Errorf("unexpected totals: %+v", report.Summary)
	}
	if report.Summary.ByCategory["high"] != 1 || report.Summary.ByCategory["medium"] != 1 || report.Summary.ByCategory["low"] != 2 {
		t.Errorf("unexpected categories: %v", report.Summary.ByCategory)
	}
	if report.Summary.OrphanCount != 1 {
		t.Errorf("expected BLOCK ISLAND SHELTER to be an orphan, got %d", report.Summary.OrphanCount)
	}
	if len(report.Integrity.Dangling) != 1 {
		t.Errorf("expected one dangling edge, got %d", len(report.Integrity.Dangling))
	}
}

func TestImport_ThenInspectDatabase(t *testing.T) {
	path := writeDataset(t)
	dbFile := filepath.Join(t.TempDir(), "cg.db")

	msg, err := execute(t, "import", path, "--into", dbFile, "--log-level", "error")
	if err != nil {
		t.Fatalf("import: %v\n%s", err, msg)
	}
	if !strings.Contains(msg, "Imported 4 charities and 2 flows") {
		t.Errorf("unexpected output: %q", msg)
	}

	msg, err = execute(t, "inspect", "--db", dbFile, "--json", "--log-level", "error")
	if err != nil {
		t.Fatalf("inspect: %v\n%s", err, msg)
	}
	if !strings.Contains(msg, `"source": "database"`) || !strings.Contains(msg, `"total_nodes": 4`) {
		t.Errorf("unexpected report: %s", msg)
	}
}
