package spectra

import "fmt"

// SetNorm converts the data in place to target.
//
// Going from NormNone to a concrete kind divides every row by its reference
// value and maps the ratio into target. The reference is ref when given,
// otherwise the stored one. Going between concrete kinds inverts the current
// mapping and applies the new one; if ref is given the data is first brought
// back to raw with the old reference and divided by the new one. Going to
// NormNone multiplies the reference back in, using the stored reference (ref
// only when none is stored). NormNone to NormNone does nothing.
func (t *Table) SetNorm(target NormKind, ref Reference) error {
	if !target.Valid() {
		return newItypeError(string(target))
	}
	current := t.norm
	if current == NormNone && target == NormNone {
		return nil
	}

	var explicit []float64
	if ref != nil {
		v, err := ref.resolve(t, "reference")
		if err != nil {
			return err
		}
		zeros, nans := vectorHealth(v)
		t.logger.LogVectorHealth("reference", zeros, nans)
		explicit = v
	}

	switch {
	case current == NormNone:
		r := explicit
		if r == nil {
			r = t.reference
		}
		if r == nil {
			return fmt.Errorf("%w: %s requested", ErrNoReference, target.Full())
		}
		t.divide(r)
		t.mapValues(fromRatio(target))
		t.reference = r

	case target == NormNone:
		r := t.reference
		if r == nil {
			r = explicit
		}
		if r == nil {
			return fmt.Errorf("%w: data is %s", ErrNoReference, current.Full())
		}
		t.mapValues(toRatio(current))
		t.multiply(r)
		t.reference = r

	default:
		if explicit != nil && t.reference == nil {
			return fmt.Errorf("%w: cannot recover raw %s data to apply a new reference", ErrNoReference, current.Full())
		}
		t.mapValues(toRatio(current))
		if explicit != nil {
			t.multiply(t.reference)
			t.divide(explicit)
			t.reference = explicit
		}
		t.mapValues(fromRatio(target))
	}

	t.norm = target
	return nil
}

func (t *Table) mapValues(f func(float64) float64) {
	if f == nil {
		return
	}
	t.data.Apply(func(_, _ int, v float64) float64 { return f(v) }, t.data)
}

func (t *Table) divide(ref []float64) {
	t.data.Apply(func(i, _ int, v float64) float64 { return v / ref[i] }, t.data)
}

func (t *Table) multiply(ref []float64) {
	t.data.Apply(func(i, _ int, v float64) float64 { return v * ref[i] }, t.data)
}
