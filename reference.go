package spectra

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lucasjlepore/spectra-analyzer/index"
)

// Reference selects a row-aligned vector for use as a reference or
// baseline. Column selectors read the table's current values.
type Reference interface {
	resolve(t *Table, role string) ([]float64, error)
}

// ColumnAt selects column pos.
func ColumnAt(pos int) Reference { return columnAt(pos) }

// ColumnLabel selects the first column whose axis value equals label.
func ColumnLabel(label float64) Reference { return columnLabel(label) }

// ColumnTime selects the column recorded at ts. The table's column axis must
// be an anchored time index.
func ColumnTime(ts time.Time) Reference { return columnTime(ts) }

// Vector uses values as given; the length must match the row axis.
func Vector(values []float64) Reference { return vectorRef(cloneFloats(values)) }

// Series uses values labelled by idx, which must equal the table's row axis.
func Series(idx *index.ConversionIndex, values []float64) Reference {
	return seriesRef{idx: idx, values: cloneFloats(values)}
}

// MeanOfColumns averages columns [i, j) row by row.
func MeanOfColumns(i, j int) Reference { return meanOfColumns{i: i, j: j} }

type (
	columnAt    int
	columnLabel float64
	columnTime  time.Time
	vectorRef   []float64
)

type seriesRef struct {
	idx    *index.ConversionIndex
	values []float64
}

type meanOfColumns struct{ i, j int }

func (r columnAt) resolve(t *Table, role string) ([]float64, error) {
	_, c := t.data.Dims()
	if int(r) < 0 || int(r) >= c {
		return nil, &ReferenceError{Role: role, Detail: fmt.Sprintf("column %d out of range [0, %d)", int(r), c)}
	}
	return t.Column(int(r)), nil
}

func (r columnLabel) resolve(t *Table, role string) ([]float64, error) {
	values := t.cols.Values()
	for j, v := range values {
		if v == float64(r) {
			return t.Column(j), nil
		}
	}
	lo, hi := finiteRange(values)
	return nil, &ReferenceError{Role: role, Detail: fmt.Sprintf("no column labelled %g in %s (columns span %g..%g)", float64(r), t.cols.Unit(), lo, hi)}
}

func (r columnTime) resolve(t *Table, role string) ([]float64, error) {
	ts := time.Time(r)
	ti, ok := t.cols.(*index.TimeIndex)
	if !ok || !ti.HasAnchor() {
		return nil, &ReferenceError{Role: role, Detail: "column axis has no timestamps"}
	}
	j, ok := ti.Position(ts)
	if !ok {
		return nil, &ReferenceError{Role: role, Detail: fmt.Sprintf("no column at %s", ts.Format(time.RFC3339Nano))}
	}
	return t.Column(j), nil
}

func (r vectorRef) resolve(t *Table, role string) ([]float64, error) {
	if n := t.rows.Len(); len(r) != n {
		return nil, &ReferenceError{Role: role, Want: n, Got: len(r)}
	}
	return cloneFloats(r), nil
}

func (r seriesRef) resolve(t *Table, role string) ([]float64, error) {
	if r.idx == nil {
		return nil, &ReferenceError{Role: role, Detail: "series has no index"}
	}
	if len(r.values) != r.idx.Len() {
		return nil, &ReferenceError{Role: role, Detail: fmt.Sprintf("series has %d values for %d labels", len(r.values), r.idx.Len())}
	}
	if !r.idx.Equal(t.rows) {
		detail := fmt.Sprintf("row index mismatch: table has %d values %s, series has %d values %s",
			t.rows.Len(), describeAxis(t.rows), r.idx.Len(), describeAxis(r.idx))
		return nil, &ReferenceError{Role: role, Want: t.rows.Len(), Got: r.idx.Len(), Detail: detail}
	}
	return cloneFloats(r.values), nil
}

func (r meanOfColumns) resolve(t *Table, role string) ([]float64, error) {
	rows, c := t.data.Dims()
	if r.i < 0 || r.j > c || r.i >= r.j {
		return nil, &ReferenceError{Role: role, Detail: fmt.Sprintf("column range [%d, %d) invalid for %d columns", r.i, r.j, c)}
	}
	out := make([]float64, rows)
	for i := range out {
		out[i] = stat.Mean(t.data.RawRowView(i)[r.i:r.j], nil)
	}
	return out, nil
}

func describeAxis(x *index.ConversionIndex) string {
	lo, hi := finiteRange(x.Values())
	unit := x.Unit()
	if unit == "" {
		unit = "none"
	}
	return fmt.Sprintf("[%g..%g %s]", lo, hi, unit)
}

func finiteRange(values []float64) (float64, float64) {
	finite := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			finite = append(finite, v)
		}
	}
	if len(finite) == 0 {
		return 0, 0
	}
	return floats.Min(finite), floats.Max(finite)
}

// vectorHealth counts zeros and NaNs.
func vectorHealth(v []float64) (zeros, nans int) {
	for _, x := range v {
		switch {
		case math.IsNaN(x):
			nans++
		case x == 0:
			zeros++
		}
	}
	return zeros, nans
}

// SetReference resolves ref and stores it as the reference. The data is not
// changed; use SetNorm to renormalize against a new reference.
func (t *Table) SetReference(ref Reference) error {
	if ref == nil {
		return fmt.Errorf("%w: nil reference", ErrNoReference)
	}
	v, err := ref.resolve(t, "reference")
	if err != nil {
		return err
	}
	if t.norm != NormNone {
		return fmt.Errorf("%w: use SetNorm to change the reference of %s data", ErrReferenceInUse, t.norm.Full())
	}
	zeros, nans := vectorHealth(v)
	t.logger.LogVectorHealth("reference", zeros, nans)
	t.reference = v
	return nil
}

// ClearReference drops the reference of an unnormalized table.
func (t *Table) ClearReference() error {
	if t.norm != NormNone {
		return ErrReferenceInUse
	}
	t.reference = nil
	return nil
}
