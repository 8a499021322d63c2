package graph

import (
	"fmt"
	"strings"
)

// Category buckets a charity by the amount of taxpayer money it receives.
type Category string

const (
	High   Category = "high"
	Medium Category = "medium"
	Low    Category = "low"
)

// Taxpayer-funds thresholds in USD. Above HighThreshold is high, from
// MediumThreshold up to and including HighThreshold is medium.
const (
	HighThreshold   = 10_000_000
	MediumThreshold = 1_000_000
)

// Classify derives the category from the taxpayer-funds amount.
func Classify(taxpayerFunds float64) Category {
	switch {
	case taxpayerFunds > HighThreshold:
		return High
	case taxpayerFunds >= MediumThreshold:
		return Medium
	default:
		return Low
	}
}

// ParseCategory accepts the lowercase category names, ignoring surrounding
// whitespace and case.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case High, Medium, Low:
		return c, nil
	default:
		return "", fmt.Errorf("unknown category %q", s)
	}
}

// Valid reports whether c is one of the three known categories.
func (c Category) Valid() bool {
	return c == High || c == Medium || c == Low
}

// Node is one charitable organization. Field names on the wire follow the
// dataset files the graph is fed from.
type Node struct {
	ID            string   `json:"id" yaml:"id" validate:"required"`
	Name          string   `json:"name" yaml:"name" validate:"required"`
	EIN           string   `json:"ein" yaml:"ein"`
	GrossReceipts float64  `json:"grossReceipts" yaml:"grossReceipts" validate:"gte=0"`
	Contributions float64  `json:"contributions" yaml:"contributions" validate:"gte=0"`
	GrantsGiven   float64  `json:"grantsGiven" yaml:"grantsGiven" validate:"gte=0"`
	TaxpayerFunds float64  `json:"taxpayerFunds" yaml:"taxpayerFunds" validate:"gte=0"`
	Category      Category `json:"type" yaml:"type" validate:"omitempty,oneof=high medium low"`
}

// Edge is a directed money flow from Source to Target.
type Edge struct {
	Source string  `json:"source" yaml:"source" validate:"required"`
	Target string  `json:"target" yaml:"target" validate:"required"`
	Value  float64 `json:"value" yaml:"value" validate:"gte=0"`
}

// Touches reports whether id is either endpoint of e.
func (e Edge) Touches(id string) bool {
	return e.Source == id || e.Target == id
}

func (e Edge) String() string {
	return e.Source + "->" + e.Target
}
