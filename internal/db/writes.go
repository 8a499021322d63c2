package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// ReplaceAll swaps the stored dataset for the given one in a single
// transaction. Charity positions are rewritten to match slice order.
func (d *DB) ReplaceAll(ctx context.Context, charities []Charity, flows []Flow) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM flows`); err != nil {
		return fmt.Errorf("clearing flows: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM charities`); err != nil {
		return fmt.Errorf("clearing charities: %w", err)
	}

	insCharity, err := tx.PrepareContext(ctx, `INSERT INTO charities (`+charityColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing charity insert: %w", err)
	}
	defer insCharity.Close()
	for i, c := range charities {
		if _, err := insCharity.ExecContext(ctx,
			c.ID, i, c.Name, c.EIN,
			c.GrossReceipts, c.Contributions, c.GrantsGiven, c.TaxpayerFunds,
			c.Category,
		); err != nil {
			return fmt.Errorf("inserting charity %s: %w", c.ID, err)
		}
	}

	insFlow, err := tx.PrepareContext(ctx, `INSERT INTO flows (source_id, target_id, amount) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing flow insert: %w", err)
	}
	defer insFlow.Close()
	for _, f := range flows {
		if _, err := insFlow.ExecContext(ctx, f.SourceID, f.TargetID, f.Amount); err != nil {
			return fmt.Errorf("inserting flow %s->%s: %w", f.SourceID, f.TargetID, err)
		}
	}

	if err := reindex(ctx, tx); err != nil {
		return err
	}
	return tx.Commit()
}

// reindex rebuilds the keyword index from the charities table.
func reindex(ctx context.Context, tx *sql.Tx) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM charities_fts`); err != nil {
		if isMissingTable(err) {
			return nil
		}
		return fmt.Errorf("clearing search index: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO charities_fts (id, name, ein) SELECT id, name, ein FROM charities`); err != nil {
		return fmt.Errorf("rebuilding search index: %w", err)
	}
	return nil
}

func isMissingTable(err error) bool {
	return err != nil && strings.Contains(err.Error(), "no such table")
}
