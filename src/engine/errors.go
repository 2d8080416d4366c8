// backend/src/engine/errors.go
package engine

import "fmt"

// ReferenceNotFoundError reports a missing security or account during
// valuation. Valuation never fabricates price data outside the manual and
// snapshot creation flows, so a dangling reference is fatal to that read.
type ReferenceNotFoundError struct {
	Kind string // "security" or "account"
	ID   string
}

func (e *ReferenceNotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// ColumnResolutionError reports that the ticker or quantity column of a
// snapshot CSV could not be identified. Searched describes the
// configuration that was tried, for diagnostics.
type ColumnResolutionError struct {
	Searched string
}

func (e *ColumnResolutionError) Error() string {
	return fmt.Sprintf("could not resolve ticker or quantity column (searched: %s)", e.Searched)
}
