package graph

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrDanglingEdge marks an edge whose source or target is not a known node.
	ErrDanglingEdge = errors.New("graph: edge references unknown node")
	// ErrDuplicateNode marks a node id that appears more than once.
	ErrDuplicateNode = errors.New("graph: duplicate node id")
	// ErrCategoryMismatch marks a node whose supplied category disagrees with
	// the taxpayer-funds threshold rule.
	ErrCategoryMismatch = errors.New("graph: category does not match taxpayer funds")
)

// DanglingEdge records an edge that was left out of the snapshot and which of
// its endpoints could not be resolved.
type DanglingEdge struct {
	Index   int    `json:"index"`
	Edge    Edge   `json:"edge"`
	Missing string `json:"missing"`
}

// CategoryMismatch records a node whose supplied category was overridden.
type CategoryMismatch struct {
	ID       string   `json:"id"`
	Supplied Category `json:"supplied"`
	Derived  Category `json:"derived"`
}

// IntegrityError collects every data problem found while building a
// snapshot. The snapshot is still usable: the offending records are skipped
// or corrected and the rest of the graph renders.
type IntegrityError struct {
	Dangling   []DanglingEdge     `json:"dangling,omitempty"`
	Duplicates []string           `json:"duplicates,omitempty"`
	Mismatched []CategoryMismatch `json:"mismatched,omitempty"`
}

// Empty reports whether no problem was recorded.
func (e *IntegrityError) Empty() bool {
	return len(e.Dangling) == 0 && len(e.Duplicates) == 0 && len(e.Mismatched) == 0
}

// Count is the total number of recorded problems.
func (e *IntegrityError) Count() int {
	return len(e.Dangling) + len(e.Duplicates) + len(e.Mismatched)
}

func (e *IntegrityError) Error() string {
	parts := make([]string, 0, 3)
	if n := len(e.Dangling); n > 0 {
		parts = append(parts, fmt.Sprintf("%d dangling edge(s)", n))
	}
	if n := len(e.Duplicates); n > 0 {
		parts = append(parts, fmt.Sprintf("%d duplicate node id(s)", n))
	}
	if n := len(e.Mismatched); n > 0 {
		parts = append(parts, fmt.Sprintf("%d category mismatch(es)", n))
	}
	return "graph integrity: " + strings.Join(parts, ", ")
}

// Unwrap exposes one error per problem so errors.Is matches the sentinels.
func (e *IntegrityError) Unwrap() []error {
	errs := make([]error, 0, e.Count())
	for _, d := range e.Dangling {
		errs = append(errs, fmt.Errorf("%w: edge %d %s missing %q", ErrDanglingEdge, d.Index, d.Edge, d.Missing))
	}
	for _, id := range e.Duplicates {
		errs = append(errs, fmt.Errorf("%w: %q", ErrDuplicateNode, id))
	}
	for _, m := range e.Mismatched {
		errs = append(errs, fmt.Errorf("%w: %q supplied %s, derived %s", ErrCategoryMismatch, m.ID, m.Supplied, m.Derived))
	}
	return errs
}

// Details renders one line per problem, for logs and CLI reports.
func (e *IntegrityError) Details() []string {
	errs := e.Unwrap()
	lines := make([]string, len(errs))
	for i, err := range errs {
		lines[i] = err.Error()
	}
	return lines
}
