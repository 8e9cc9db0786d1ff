// Package index provides unit-tagged axes: a generic ConversionIndex and a
// TimeIndex that also keeps the wall-clock timestamps it was built from.
package index

import (
	"errors"
	"fmt"

	"github.com/lucasjlepore/spectra-analyzer/units"
)

var (
	// ErrMissingAnchor is the cause of conversions to datetime (or from
	// interval ordinals) on a time index that was never built from timestamps.
	ErrMissingAnchor = errors.New("time index has no datetime anchor")

	// ErrOutOfRange is returned for positions outside an axis.
	ErrOutOfRange = errors.New("position out of range")
)

// Axis is the view of an index that a table needs for its column axis.
type Axis interface {
	Len() int
	Values() []float64
	Unit() string
	FullUnit() string
	Registry() *units.Registry
	ConvertAxis(unit string) (Axis, error)
	SliceAxis(i, j int) (Axis, error)
	TakeAxis(pos []int) (Axis, error)
	CloneAxis() Axis
}

var (
	_ Axis = (*ConversionIndex)(nil)
	_ Axis = (*TimeIndex)(nil)
)

func checkSlice(n, i, j int) error {
	if i < 0 || j > n || i > j {
		return fmt.Errorf("%w: [%d:%d] of %d", ErrOutOfRange, i, j, n)
	}
	return nil
}

func checkTake(n int, pos []int) error {
	for _, p := range pos {
		if p < 0 || p >= n {
			return fmt.Errorf("%w: %d of %d", ErrOutOfRange, p, n)
		}
	}
	return nil
}

func take[T any](src []T, pos []int) []T {
	out := make([]T, len(pos))
	for k, p := range pos {
		out[k] = src[p]
	}
	return out
}

func clone[T any](src []T) []T {
	if src == nil {
		return nil
	}
	out := make([]T, len(src))
	copy(out, src)
	return out
}
