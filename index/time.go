package index

import (
	"fmt"
	"time"

	"github.com/lucasjlepore/spectra-analyzer/units"
)

// TimeIndex is a time axis. Besides the numeric interval units of
// units.Interval it supports two dynamic units:
//
//   - units.Datetime: wall-clock timestamps, backed by the anchor the index
//     was built from. Values() reports them as Unix seconds.
//   - units.Ordinal: the sample number 0..N-1.
//
// The anchor survives every conversion, slice and copy, so converting back to
// datetime always returns the original timestamps.
type TimeIndex struct {
	values []float64
	unit   string
	anchor []time.Time
}

// NewTimeIndex builds an index from numeric values. It has no anchor, so
// units.Datetime is rejected.
func NewTimeIndex(values []float64, unit string) (*TimeIndex, error) {
	if _, err := units.Interval().Lookup(unit); err != nil {
		return nil, err
	}
	if unit == units.Datetime {
		return nil, units.NewDatetimeCanonicalError(unit, "new time index", ErrMissingAnchor)
	}
	return &TimeIndex{values: clone(values), unit: unit}, nil
}

// FromTimes builds a datetime index anchored on times.
func FromTimes(times []time.Time) *TimeIndex {
	anchor := clone(times)
	if anchor == nil {
		anchor = []time.Time{}
	}
	return &TimeIndex{values: unixSeconds(anchor), unit: units.Datetime, anchor: anchor}
}

// Restore rebuilds an index from its parts. anchor may be nil; when present it
// must have one entry per value. units.Datetime requires an anchor and its
// values are recomputed from it.
func Restore(values []float64, unit string, anchor []time.Time) (*TimeIndex, error) {
	if anchor == nil {
		return NewTimeIndex(values, unit)
	}
	if _, err := units.Interval().Lookup(unit); err != nil {
		return nil, err
	}
	if len(anchor) != len(values) {
		return nil, fmt.Errorf("anchor has %d timestamps for %d values", len(anchor), len(values))
	}
	if unit == units.Datetime {
		return FromTimes(anchor), nil
	}
	return &TimeIndex{values: clone(values), unit: unit, anchor: clone(anchor)}, nil
}

// TimeRange builds a datetime index of periods timestamps spaced by step.
func TimeRange(start time.Time, periods int, step time.Duration) *TimeIndex {
	if periods < 0 {
		periods = 0
	}
	times := make([]time.Time, periods)
	for i := range times {
		times[i] = start.Add(time.Duration(i) * step)
	}
	return FromTimes(times)
}

func (x *TimeIndex) Len() int { return len(x.values) }

// At returns the i-th value in the current unit.
func (x *TimeIndex) At(i int) float64 { return x.values[i] }

// Values returns a copy of the numeric values in the current unit.
func (x *TimeIndex) Values() []float64 { return clone(x.values) }

func (x *TimeIndex) Unit() string { return x.unit }

func (x *TimeIndex) FullUnit() string { return units.Interval().Full(x.unit) }

func (x *TimeIndex) Registry() *units.Registry { return units.Interval() }

// HasAnchor reports whether the index remembers its original timestamps.
func (x *TimeIndex) HasAnchor() bool { return x.anchor != nil }

// Times returns a copy of the anchor.
func (x *TimeIndex) Times() ([]time.Time, error) {
	if !x.HasAnchor() {
		return nil, ErrMissingAnchor
	}
	return clone(x.anchor), nil
}

// Position returns the position of ts in the anchor.
func (x *TimeIndex) Position(ts time.Time) (int, bool) {
	for i, a := range x.anchor {
		if a.Equal(ts) {
			return i, true
		}
	}
	return -1, false
}

// Convert returns a new index holding the same instants in target.
func (x *TimeIndex) Convert(target string) (*TimeIndex, error) {
	to, err := units.Interval().Lookup(target)
	if err != nil {
		return nil, err
	}

	switch {
	case target == x.unit:
		return x.Clone(), nil

	case target == units.Datetime:
		if !x.HasAnchor() {
			return nil, units.NewDatetimeCanonicalError(x.unit, "convert to datetime", ErrMissingAnchor)
		}
		return x.with(unixSeconds(x.anchor), target), nil

	case target == units.Ordinal:
		return x.with(ordinals(len(x.values)), target), nil

	case target == units.None:
		return x.with(clone(x.values), target), nil

	case x.unit == units.Datetime || x.unit == units.Ordinal:
		if !x.HasAnchor() {
			return nil, units.NewDatetimeCanonicalError(x.unit, fmt.Sprintf("convert to %q", target), ErrMissingAnchor)
		}
		out, err := to.FromCanonical(elapsedSeconds(x.anchor))
		if err != nil {
			return nil, err
		}
		return x.with(out, target), nil

	case x.unit == units.None:
		return x.with(clone(x.values), target), nil
	}

	from, err := units.Interval().Lookup(x.unit)
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
	return x.with(out, target), nil
}

// Slice returns positions [i, j); the anchor is sliced identically.
func (x *TimeIndex) Slice(i, j int) (*TimeIndex, error) {
	if err := checkSlice(len(x.values), i, j); err != nil {
		return nil, err
	}
	out := &TimeIndex{values: clone(x.values[i:j]), unit: x.unit}
	if x.anchor != nil {
		out.anchor = clone(x.anchor[i:j])
	}
	return out, nil
}

// Take returns the entries at pos; the anchor is taken identically.
func (x *TimeIndex) Take(pos []int) (*TimeIndex, error) {
	if err := checkTake(len(x.values), pos); err != nil {
		return nil, err
	}
	out := &TimeIndex{values: take(x.values, pos), unit: x.unit}
	if x.anchor != nil {
		out.anchor = take(x.anchor, pos)
	}
	return out, nil
}

// Clone returns a deep copy, anchor included.
func (x *TimeIndex) Clone() *TimeIndex {
	return x.with(clone(x.values), x.unit)
}

// Equal reports whether both indices hold the same unit, values and anchor.
func (x *TimeIndex) Equal(other *TimeIndex) bool {
	if x == nil || other == nil {
		return x == other
	}
	if x.unit != other.unit || len(x.values) != len(other.values) || x.HasAnchor() != other.HasAnchor() {
		return false
	}
	for i := range x.values {
		if x.values[i] != other.values[i] {
			return false
		}
	}
	for i := range x.anchor {
		if !x.anchor[i].Equal(other.anchor[i]) {
			return false
		}
	}
	return true
}

func (x *TimeIndex) ConvertAxis(unit string) (Axis, error) {
	out, err := x.Convert(unit)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (x *TimeIndex) SliceAxis(i, j int) (Axis, error) {
	out, err := x.Slice(i, j)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (x *TimeIndex) TakeAxis(pos []int) (Axis, error) {
	out, err := x.Take(pos)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (x *TimeIndex) CloneAxis() Axis { return x.Clone() }

func (x *TimeIndex) with(values []float64, unit string) *TimeIndex {
	return &TimeIndex{values: values, unit: unit, anchor: clone(x.anchor)}
}

// elapsedSeconds turns timestamps into seconds since the first one: the
// successive differences, a leading zero, then a running sum. Summing whole
// nanoseconds keeps the result free of accumulated rounding.
func elapsedSeconds(times []time.Time) []float64 {
	out := make([]float64, len(times))
	var total time.Duration
	for i := 1; i < len(times); i++ {
		total += times[i].Sub(times[i-1])
		out[i] = total.Seconds()
	}
	return out
}

func unixSeconds(times []time.Time) []float64 {
	out := make([]float64, len(times))
	for i, t := range times {
		out[i] = float64(t.Unix()) + float64(t.Nanosecond())/1e9
	}
	return out
}

func ordinals(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i)
	}
	return out
}
