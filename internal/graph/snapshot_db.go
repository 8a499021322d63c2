package graph

import (
	"context"
	"fmt"

	"datarepublican/charitygraph/internal/db"
)

// LoadFromDB reads the stored dataset as records in display order.
func LoadFromDB(d *db.DB) ([]Node, []Edge, error) {
	charities, err := d.AllCharities()
	if err != nil {
		return nil, nil, fmt.Errorf("loading charities: %w", err)
	}
	flows, err := d.AllFlows()
	if err != nil {
		return nil, nil, fmt.Errorf("loading flows: %w", err)
	}

	nodes := make([]Node, 0, len(charities))
	for _, c := range charities {
		nodes = append(nodes, NodeFromDB(c))
	}
	edges := make([]Edge, 0, len(flows))
	for _, f := range flows {
		edges = append(edges, Edge{Source: f.SourceID, Target: f.TargetID, Value: f.Amount})
	}
	return nodes, edges, nil
}

// NodeFromDB converts a stored charity to a record.
func NodeFromDB(c db.Charity) Node {
	return Node{
		ID:            c.ID,
		Name:          c.Name,
		EIN:           c.EIN,
		GrossReceipts: c.GrossReceipts,
		Contributions: c.Contributions,
		GrantsGiven:   c.GrantsGiven,
		TaxpayerFunds: c.TaxpayerFunds,
		Category:      Category(c.Category),
	}
}

// SaveToDB replaces the stored dataset with the snapshot's valid records.
func SaveToDB(ctx context.Context, d *db.DB, s *Snapshot) error {
	charities := make([]db.Charity, 0, len(s.Nodes))
	for i, n := range s.Nodes {
		charities = append(charities, db.Charity{
			ID:            n.ID,
			Position:      i,
			Name:          n.Name,
			EIN:           n.EIN,
			GrossReceipts: n.GrossReceipts,
			Contributions: n.Contributions,
			GrantsGiven:   n.GrantsGiven,
			TaxpayerFunds: n.TaxpayerFunds,
			Category:      string(n.Category),
		})
	}
	flows := make([]db.Flow, 0, len(s.Edges))
	for _, e := range s.Edges {
		flows = append(flows, db.Flow{SourceID: e.Source, TargetID: e.Target, Amount: e.Value})
	}
	if err := d.ReplaceAll(ctx, charities, flows); err != nil {
		return fmt.Errorf("saving graph: %w", err)
	}
	return nil
}
