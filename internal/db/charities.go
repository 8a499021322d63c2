package db

import (
	"database/sql"
	"errors"
	"strings"
	"unicode"
)

const charityColumns = `id, position, name, ein, gross_receipts, contributions, grants_given, taxpayer_funds, category`

// scanCharity scans a row into a Charity. The row must have charityColumns in order.
func scanCharity(scanner interface{ Scan(dest ...any) error }) (Charity, error) {
	var c Charity
	err := scanner.Scan(
		&c.ID, &c.Position, &c.Name, &c.EIN,
		&c.GrossReceipts, &c.Contributions, &c.GrantsGiven, &c.TaxpayerFunds,
		&c.Category,
	)
	return c, err
}

func collectCharities(rows *sql.Rows) ([]Charity, error) {
	defer rows.Close()
	var out []Charity
	for rows.Next() {
		c, err := scanCharity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AllCharities returns every charity in display order
func (d *DB) AllCharities() ([]Charity, error) {
	rows, err := d.conn.Query(`SELECT ` + charityColumns + ` FROM charities ORDER BY position, id`)
	if err != nil {
		return nil, err
	}
	return collectCharities(rows)
}

// GetCharity returns a single charity by ID, or nil if not found
func (d *DB) GetCharity(id string) (*Charity, error) {
	row := d.conn.QueryRow(`SELECT `+charityColumns+` FROM charities WHERE id = ?`, id)
	c, err := scanCharity(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SearchByEINPrefix finds charities whose EIN starts with the given digits.
// Dashes and spaces in the prefix are ignored. A non-positive limit returns
// every match.
func (d *DB) SearchByEINPrefix(prefix string, limit int) ([]Charity, error) {
	if limit <= 0 {
		limit = -1
	}
	digits := strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) {
			return r
		}
		return -1
	}, prefix)
	if digits == "" {
		return []Charity{}, nil
	}
	rows, err := d.conn.Query(`
		SELECT `+charityColumns+`
		FROM charities WHERE REPLACE(ein, '-', '') LIKE ?
		ORDER BY position LIMIT ?
	`, digits+"%", limit)
	if err != nil {
		return nil, err
	}
	return collectCharities(rows)
}

// Counts returns the number of charities and flows stored.
func (d *DB) Counts() (charities, flows int, err error) {
	if err = d.conn.QueryRow(`SELECT COUNT(*) FROM charities`).Scan(&charities); err != nil {
		return 0, 0, err
	}
	if err = d.conn.QueryRow(`SELECT COUNT(*) FROM flows`).Scan(&flows); err != nil {
		return 0, 0, err
	}
	return charities, flows, nil
}
