package db

import "database/sql"

// scanFlow scans a row into a Flow.
func scanFlow(scanner interface{ Scan(dest ...any) error }) (Flow, error) {
	var f Flow
	err := scanner.Scan(&f.ID, &f.SourceID, &f.TargetID, &f.Amount)
	return f, err
}

func collectFlows(rows *sql.Rows) ([]Flow, error) {
	defer rows.Close()
	var flows []Flow
	for rows.Next() {
		f, err := scanFlow(rows)
		if err != nil {
			return nil, err
		}
		flows = append(flows, f)
	}
	return flows, rows.Err()
}

// AllFlows returns all flows in insertion order
func (d *DB) AllFlows() ([]Flow, error) {
	rows, err := d.conn.Query(`SELECT id, source_id, target_id, amount FROM flows ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return collectFlows(rows)
}

// FlowsForCharity returns all flows where the given charity is source OR target.
func (d *DB) FlowsForCharity(id string) ([]Flow, error) {
	rows, err := d.conn.Query(`
		SELECT id, source_id, target_id, amount
		FROM flows WHERE source_id = ? OR target_id = ?
		ORDER BY id
	`, id, id)
	if err != nil {
		return nil, err
	}
	return collectFlows(rows)
}
