package spectra

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNoReference is returned when a normalization change needs a
	// reference and neither the call nor the table supplies one.
	ErrNoReference = errors.New("cannot convert without a reference")

	// ErrNoBaseline is returned when a baseline operation runs on a table
	// that has none.
	ErrNoBaseline = errors.New("no baseline set")

	// ErrReferenceInUse is returned when clearing the reference of a
	// normalized table.
	ErrReferenceInUse = errors.New("reference is required while the table is normalized")

	// ErrBaselineSubtracted is returned when replacing or clearing a baseline
	// that is currently subtracted from the data.
	ErrBaselineSubtracted = errors.New("baseline is currently subtracted")

	// ErrEmptyTable is returned for tables without rows or columns.
	ErrEmptyTable = errors.New("table must have at least one row and one column")
)

// ItypeError reports an unknown normalization kind.
type ItypeError struct {
	Value   string
	Allowed []string
}

func (e *ItypeError) Error() string {
	return fmt.Sprintf("invalid normalization %q (allowed: %s)", e.Value, strings.Join(e.Allowed, ", "))
}

// ReferenceError reports a reference or baseline vector that does not line up
// with the row axis. Role is "reference" or "baseline".
type ReferenceError struct {
	Role   string
	Want   int
	Got    int
	Detail string
}

func (e *ReferenceError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Role, e.Detail)
	}
	return fmt.Sprintf("%s length mismatch: row axis has %d values, got %d", e.Role, e.Want, e.Got)
}

// ErrDimensionMismatch indicates data whose shape disagrees with an axis.
type ErrDimensionMismatch struct {
	Axis     string
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch on %s: expected %d, got %d", e.Axis, e.Expected, e.Actual)
}
