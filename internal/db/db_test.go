package db

import (
	"context"
	"testing"
)

// setupTestDB opens an in-memory database with the full schema.
func setupTestDB(t *testing.T) *DB {
	t.Helper()
	d, err := OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { d.Close() })
	return d
}

func sampleData() ([]Charity, []Flow) {
	charities := []Charity{
		{ID: "1", Name: "THE RHODE ISLAND COMMUNITY FOUNDATION", EIN: "22-2604963",
			GrossReceipts: 194890954, Contributions: 30307800, GrantsGiven: 27774220,
			TaxpayerFunds: 12502500, Category: "high"},
		{ID: "2", Name: "THE AYCO CHARITABLE FOUNDATION", EIN: "14-1782466",
			GrossReceipts: 1068810756, Contributions: 251058723, GrantsGiven: 182204729,
			Category: "low"},
		{ID: "3", Name: "OCEAN STATE RELIEF FUND", EIN: "22-3000001",
			TaxpayerFunds: 2500000, Category: "medium"},
	}
	flows := []Flow{
		{SourceID: "1", TargetID: "2", Amount: 10134716},
		{SourceID: "2", TargetID: "3", Amount: 50000},
	}
	return charities, flows
}

func seed(t *testing.T, d *DB) {
	t.Helper()
	charities, flows := sampleData()
	if err := d.ReplaceAll(context.Background(), charities, flows); err != nil {
		t.Fatal(err)
	}
}

func TestReplaceAll_RoundTrip(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)

	got, err := d.AllCharities()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 charities, got %d", len(got))
	}
	for i, c := range got {
		if c.Position != i {
			t.Errorf("charity %s: position %d, want %d", c.ID, c.Position, i)
		}
	}
	if got[0].TaxpayerFunds != 12502500 || got[0].Category != "high" {
		t.Errorf("unexpected first charity: %+v", got[0])
	}

	flows, err := d.AllFlows()
	if err != nil {
		t.Fatal(err)
	}
	if len(flows) != 2 || flows[0].SourceID != "1" || flows[0].Amount != 10134716 {
		t.Errorf("unexpected flows: %+v", flows)
	}
}

func TestReplaceAll_ReplacesPrevious(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)

	err := d.ReplaceAll(context.Background(), []Charity{{ID: "9", Name: "SOLO TRUST"}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	nc, nf, err := d.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if nc != 1 || nf != 0 {
		t.Errorf("got %d charities, %d flows; want 1, 0", nc, nf)
	}
}

func TestReplaceAll_RejectsUnknownEndpoint(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)

	err := d.ReplaceAll(context.Background(),
		[]Charity{{ID: "a", Name: "A"}},
		[]Flow{{SourceID: "a", TargetID: "missing", Amount: 1}})
	if err == nil {
		t.Fatal("expected foreign key failure")
	}
	nc, _, err := d.Counts()
	if err != nil {
		t.Fatal(err)
	}
	if nc != 3 {
		t.Errorf("failed replace must roll back, got %d charities", nc)
	}
}

func TestGetCharity(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)

	c, err := d.GetCharity("2")
	if err != nil {
		t.Fatal(err)
	}
	if c == nil || c.EIN != "14-1782466" {
		t.Errorf("unexpected charity: %+v", c)
	}

	c, err = d.GetCharity("nope")
	if err != nil {
		t.Fatal(err)
	}
	if c != nil {
		t.Errorf("expected nil for missing charity, got %+v", c)
	}
}

func TestSearchByEINPrefix(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)

	tests := []struct {
		prefix string
		want   []string
	}{
		{"22", []string{"1", "3"}},
		{"22-26", []string{"1"}},
		{"222604963", []string{"1"}},
		{"99", nil},
		{"--", nil},
	}
	for _, tt := range tests {
		got, err := d.SearchByEINPrefix(tt.prefix, 10)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(tt.want) {
			t.Errorf("prefix %q: got %d results, want %d", tt.prefix, len(got), len(tt.want))
			continue
		}
		for i := range got {
			if got[i].ID != tt.want[i] {
				t.Errorf("prefix %q: result %d is %s, want %s", tt.prefix, i, got[i].ID, tt.want[i])
			}
		}
	}
}

func TestSearchCharities(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)

	got, err := d.SearchCharities("Ayco", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "2" {
		t.Errorf("unexpected results: %+v", got)
	}

	got, err = d.SearchCharities("foundation", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) < 2 {
		t.Errorf("unlimited search should return every match, got %d", len(got))
	}

	got, err = d.SearchCharities("the of", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Errorf("stopword-only query should match nothing, got %d", len(got))
	}
}

func TestSearchCharities_LikeFallback(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)
	if _, err := d.conn.Exec(`DROP TABLE IF EXISTS charities_fts`); err != nil {
		t.Fatal(err)
	}

	got, err := d.SearchCharities("relief", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].ID != "3" {
		t.Errorf("unexpected results: %+v", got)
	}
}

func TestFlowsForCharity(t *testing.T) {
	d := setupTestDB(t)
	seed(t, d)

	flows, err := d.FlowsForCharity("2")
	if err != nil {
		t.Fatal(err)
	}
	if len(flows) != 2 {
		t.Errorf("expected both flows touching 2, got %d", len(flows))
	}
}
