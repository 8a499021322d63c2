package db

import (
	"strings"
	"unicode"
)

var stopwords = map[string]bool{
	"the": true, "a": true, "an": true, "in": true, "on": true,
	"at": true, "to": true, "for": true, "of": true, "is": true,
	"it": true, "and": true, "or": true, "with": true, "from": true,
	"by": true, "this": true, "that": true, "as": true, "be": true,
}

// searchTerms splits a query into keywords: stopwords and words under three
// characters are dropped and punctuation is trimmed from both ends.
func searchTerms(query string) []string {
	var terms []string
	for _, w := range strings.Fields(query) {
		trimmed := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
		})
		if len(trimmed) < 3 {
			continue
		}
		if stopwords[strings.ToLower(trimmed)] {
			continue
		}
		terms = append(terms, trimmed)
	}
	return terms
}

// BuildFTSQuery preprocesses a keyword query for FTS5. Each term is quoted
// so punctuation inside a word cannot break the MATCH syntax; terms are
// joined with " OR ".
func BuildFTSQuery(query string) string {
	terms := searchTerms(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " OR ")
}

// SearchCharities performs a keyword search over charity names and EINs,
// best matches first. It returns an empty slice if the preprocessed query
// is empty. Without a full-text index it falls back to substring matching.
// A non-positive limit returns every match.
func (d *DB) SearchCharities(query string, limit int) ([]Charity, error) {
	ftsQuery := BuildFTSQuery(query)
	if ftsQuery == "" {
		return []Charity{}, nil
	}
	if limit <= 0 {
		limit = -1
	}

	rows, err := d.conn.Query(`
		SELECT c.id, c.position, c.name, c.ein, c.gross_receipts, c.contributions,
		       c.grants_given, c.taxpayer_funds, c.category
		FROM charities c
		JOIN charities_fts fts ON c.id = fts.id
		WHERE charities_fts MATCH ?1
		ORDER BY rank
		LIMIT ?2
	`, ftsQuery, limit)
	if isMissingTable(err) {
		return d.searchLike(searchTerms(query), limit)
	}
	if err != nil {
		return nil, err
	}
	return collectCharities(rows)
}

func (d *DB) searchLike(terms []string, limit int) ([]Charity, error) {
	var (
		where []string
		args  []any
	)
	for _, t := range terms {
		where = append(where, "name LIKE ? ESCAPE '\\'")
		args = append(args, "%"+escapeLike(t)+"%")
	}
	args = append(args, limit)
	rows, err := d.conn.Query(`SELECT `+charityColumns+` FROM charities WHERE `+
		strings.Join(where, " OR ")+` ORDER BY position LIMIT ?`, args...)
	if err != nil {
		return nil, err
	}
	return collectCharities(rows)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
