package db

// Charity represents a row in the charities table. Amounts are US dollars.
type Charity struct {
	ID            string  `json:"id"`
	Position      int     `json:"position"` // display order
	Name          string  `json:"name"`
	EIN           string  `json:"ein"`
	GrossReceipts float64 `json:"gross_receipts"`
	Contributions float64 `json:"contributions"`
	GrantsGiven   float64 `json:"grants_given"`
	TaxpayerFunds float64 `json:"taxpayer_funds"`
	Category      string  `json:"category"` // "high", "medium", "low"
}

// Flow represents a row in the flows table: money granted from one charity
// to another.
type Flow struct {
	ID       int64   `json:"id"`
	SourceID string  `json:"source_id"`
	TargetID string  `json:"target_id"`
	Amount   float64 `json:"amount"`
}
