package spectra

import (
	"fmt"

	"gonum.org/v1/gonum/floats"
)

// SetBaseline resolves ref and stores it as the baseline. The data is not
// changed until SubtractBaseline.
func (t *Table) SetBaseline(ref Reference) error {
	if t.baselineSubtracted {
		return fmt.Errorf("%w: add it back before replacing it", ErrBaselineSubtracted)
	}
	if ref == nil {
		return fmt.Errorf("%w: nil baseline", ErrNoBaseline)
	}
	v, err := ref.resolve(t, "baseline")
	if err != nil {
		return err
	}
	t.baseline = v
	return nil
}

// ClearBaseline drops a baseline that is not currently subtracted.
func (t *Table) ClearBaseline() error {
	if t.baselineSubtracted {
		return ErrBaselineSubtracted
	}
	t.baseline = nil
	return nil
}

// SubtractBaseline removes the baseline from every column, and from the
// reference when one is stored. A second call is refused with a warning.
//
// The baseline is a background in raw counts. On normalized data the
// subtraction is done on the raw values and the result is normalized again
// against the shifted reference, so SetNorm(NormNone) afterwards yields raw
// data minus the baseline.
func (t *Table) SubtractBaseline() error {
	if t.baseline == nil {
		return ErrNoBaseline
	}
	if t.baselineSubtracted {
		t.logger.LogNoop("subtract baseline", "baseline already subtracted")
		return nil
	}
	t.warnNormalized("subtract baseline")
	t.shiftBaseline(-1)
	t.baselineSubtracted = true
	return nil
}

// AddBaseline is the inverse of SubtractBaseline.
func (t *Table) AddBaseline() error {
	if t.baseline == nil {
		return ErrNoBaseline
	}
	if !t.baselineSubtracted {
		t.logger.LogNoop("add baseline", "baseline already added")
		return nil
	}
	t.warnNormalized("add baseline")
	t.shiftBaseline(1)
	t.baselineSubtracted = false
	return nil
}

// shiftBaseline adds sign*baseline to the raw data and the reference.
func (t *Table) shiftBaseline(sign float64) {
	norm := t.norm
	if t.reference == nil {
		norm = NormNone
	}
	if norm != NormNone {
		t.mapValues(toRatio(norm))
		t.multiply(t.reference)
	}

	b := t.baseline
	t.data.Apply(func(i, _ int, v float64) float64 { return v + sign*b[i] }, t.data)
	if t.reference != nil {
		floats.AddScaled(t.reference, sign, b)
	}

	if norm != NormNone {
		t.divide(t.reference)
		t.mapValues(fromRatio(norm))
	}
}

func (t *Table) warnNormalized(op string) {
	if t.norm == NormNone {
		return
	}
	t.logger.Warn("baseline applied to normalized data", "op", op, "norm", t.norm.String())
}
