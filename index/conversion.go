package index

import (
	"math"

	"github.com/lucasjlepore/spectra-analyzer/units"
)

// ConversionIndex is an ordered sequence of values, all expressed in one unit
// of a registry.
type ConversionIndex struct {
	values []float64
	unit   string
	reg    *units.Registry
}

// New validates unit against reg and copies values.
func New(reg *units.Registry, values []float64, unit string) (*ConversionIndex, error) {
	if _, err := reg.Lookup(unit); err != nil {
		return nil, err
	}
	return &ConversionIndex{values: clone(values), unit: unit, reg: reg}, nil
}

// NewSpecIndex builds an index over the built-in spectral registry.
func NewSpecIndex(values []float64, unit string) (*ConversionIndex, error) {
	return New(units.Spectral(), values, unit)
}

// Len returns the number of values.
func (x *ConversionIndex) Len() int { return len(x.values) }

// At returns the i-th value.
func (x *ConversionIndex) At(i int) float64 { return x.values[i] }

// Values returns a copy of the values.
func (x *ConversionIndex) Values() []float64 { return clone(x.values) }

// Unit returns the current short code.
func (x *ConversionIndex) Unit() string { return x.unit }

// FullUnit returns the display name of the current unit.
func (x *ConversionIndex) FullUnit() string { return x.reg.Full(x.unit) }

// Registry returns the registry units are resolved against.
func (x *ConversionIndex) Registry() *units.Registry { return x.reg }

// Convert returns a new index holding the same quantities in target.
//
// Converting to the current unit copies. If either side is None the values
// are only retagged. Otherwise values go through the canonical unit.
func (x *ConversionIndex) Convert(target string) (*ConversionIndex, error) {
	to, err := x.reg.Lookup(target)
	if err != nil {
		return nil, err
	}
	if target == x.unit || target == units.None || x.unit == units.None {
		return &ConversionIndex{values: clone(x.values), unit: target, reg: x.reg}, nil
	}
	from, err := x.reg.Lookup(x.unit)
	if err != nil {
		return nil, err
	}
	canonical, err := from.ToCanonical(x.values)
	if err != nil {
		return nil, err
	}
	out, err := to.FromCanonical(canonical)
	if err != nil {
		return nil, err
	}
	return &ConversionIndex{values: out, unit: target, reg: x.reg}, nil
}

// Slice returns positions [i, j).
func (x *ConversionIndex) Slice(i, j int) (*ConversionIndex, error) {
	if err := checkSlice(len(x.values), i, j); err != nil {
		return nil, err
	}
	return &ConversionIndex{values: clone(x.values[i:j]), unit: x.unit, reg: x.reg}, nil
}

// Take returns the values at pos, in that order.
func (x *ConversionIndex) Take(pos []int) (*ConversionIndex, error) {
	if err := checkTake(len(x.values), pos); err != nil {
		return nil, err
	}
	return &ConversionIndex{values: take(x.values, pos), unit: x.unit, reg: x.reg}, nil
}

// Clone returns a deep copy.
func (x *ConversionIndex) Clone() *ConversionIndex {
	return &ConversionIndex{values: clone(x.values), unit: x.unit, reg: x.reg}
}

// Equal reports whether both indices use the same registry and unit and hold
// identical values.
func (x *ConversionIndex) Equal(other *ConversionIndex) bool {
	if x == nil || other == nil {
		return x == other
	}
	if x.reg != other.reg || x.unit != other.unit || len(x.values) != len(other.values) {
		return false
	}
	for i, v := range x.values {
		w := other.values[i]
		if v != w && !(math.IsNaN(v) && math.IsNaN(w)) {
			return false
		}
	}
	return true
}

// Nearest returns the position whose value is closest to v, or -1 when empty.
func (x *ConversionIndex) Nearest(v float64) int {
	best := -1
	bestDiff := math.Inf(1)
	for i, w := range x.values {
		if d := math.Abs(w - v); d < bestDiff {
			best, bestDiff = i, d
		}
	}
	return best
}

// Between returns the positions whose values lie in the closed range spanned
// by lo and hi. The index may be ascending or descending.
func (x *ConversionIndex) Between(lo, hi float64) []int {
	if lo > hi {
		lo, hi = hi, lo
	}
	var out []int
	for i, v := range x.values {
		if v >= lo && v <= hi {
			out = append(out, i)
		}
	}
	return out
}

func (x *ConversionIndex) ConvertAxis(unit string) (Axis, error) {
	out, err := x.Convert(unit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (x *ConversionIndex) SliceAxis(i, j int) (Axis, error) {
	out, err := x.Slice(i, j)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (x *ConversionIndex) TakeAxis(pos []int) (Axis, error) {
	out, err := x.Take(pos)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (x *ConversionIndex) CloneAxis() Axis { return x.Clone() }
