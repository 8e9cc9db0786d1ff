// Package spectra holds the spectral time-series table: a numeric matrix whose
// rows follow a spectral ConversionIndex and whose columns follow a time (or
// other variable) axis, together with the intensity normalization state and
// the reference and baseline vectors that drive it.
package spectra

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/lucasjlepore/spectra-analyzer/index"
)

// Table is an N x M matrix of intensities. Row i is the spectral position
// rows.At(i); column j is the variable (usually time) position j.
//
// Methods named As*, Slice*, Take*, RowsBetween and Clone return new tables
// and never share memory with the receiver. SetNorm, SetReference,
// ClearReference, SetBaseline, ClearBaseline, SubtractBaseline and
// AddBaseline mutate the receiver in place.
type Table struct {
	name   string
	data   *mat.Dense
	rows   *index.ConversionIndex
	cols   index.Axis
	logger *Logger

	norm               NormKind
	reference          []float64
	baseline           []float64
	baselineSubtracted bool
}

// Option configures New.
type Option func(*Table)

// WithName sets the table name.
func WithName(name string) Option {
	return func(t *Table) {
		t.name = name
	}
}

// WithLogger sets the logger used for warnings. If nil is passed, the
// default slog logger is used.
func WithLogger(l *Logger) Option {
	return func(t *Table) {
		if l == nil {
			l = defaultLogger()
		}
		t.logger = l
	}
}

// WithNorm declares that data is already in representation k. A reference
// must be supplied too unless k is NormNone.
func WithNorm(k NormKind) Option {
	return func(t *Table) {
		t.norm = k
	}
}

// WithReferenceValues sets the reference vector, one value per row.
func WithReferenceValues(values []float64) Option {
	return func(t *Table) {
		t.reference = cloneFloats(values)
	}
}

// WithBaselineValues sets the baseline vector, one value per row.
func WithBaselineValues(values []float64) Option {
	return func(t *Table) {
		t.baseline = cloneFloats(values)
	}
}

// WithBaselineSubtracted declares that the baseline is already removed from data.
func WithBaselineSubtracted(subtracted bool) Option {
	return func(t *Table) {
		t.baselineSubtracted = subtracted
	}
}

// New builds a table over a copy of data.
func New(data mat.Matrix, rows *index.ConversionIndex, cols index.Axis, opts ...Option) (*Table, error) {
	if data == nil || rows == nil || cols == nil {
		return nil, errors.New("data, rows and cols are required")
	}
	r, c := data.Dims()
	if r == 0 || c == 0 {
		return nil, ErrEmptyTable
	}
	if r != rows.Len() {
		return nil, &ErrDimensionMismatch{Axis: "rows", Expected: rows.Len(), Actual: r}
	}
	if c != cols.Len() {
		return nil, &ErrDimensionMismatch{Axis: "columns", Expected: cols.Len(), Actual: c}
	}

	t := &Table{
		data:   mat.DenseCopyOf(data),
		rows:   rows.Clone(),
		cols:   cols.CloneAxis(),
		logger: defaultLogger(),
	}
	for _, opt := range opts {
		opt(t)
	}

	if !t.norm.Valid() {
		return nil, newItypeError(string(t.norm))
	}
	if t.reference != nil && len(t.reference) != r {
		return nil, &ReferenceError{Role: "reference", Want: r, Got: len(t.reference)}
	}
	if t.baseline != nil && len(t.baseline) != r {
		return nil, &ReferenceError{Role: "baseline", Want: r, Got: len(t.baseline)}
	}
	if t.norm != NormNone && t.reference == nil {
		return nil, fmt.Errorf("%w: table declared as %s", ErrNoReference, t.norm.Full())
	}
	if t.baselineSubtracted && t.baseline == nil {
		return nil, fmt.Errorf("%w: table declared baseline-subtracted", ErrNoBaseline)
	}
	t.logger = t.logger.WithTable(t.name)
	return t, nil
}

// FromRows builds a table from row-major values.
func FromRows(values [][]float64, rows *index.ConversionIndex, cols index.Axis, opts ...Option) (*Table, error) {
	data, err := denseFromRows(values)
	if err != nil {
		return nil, err
	}
	return New(data, rows, cols, opts...)
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Dims returns the number of rows (spectral points) and columns.
func (t *Table) Dims() (int, int) { return t.data.Dims() }

// At returns the value at row i, column j.
func (t *Table) At(i, j int) float64 { return t.data.At(i, j) }

// Data returns a copy of the matrix.
func (t *Table) Data() *mat.Dense { return mat.DenseCopyOf(t.data) }

// Rows returns a row-major copy of the data.
func (t *Table) Rows() [][]float64 {
	r, _ := t.data.Dims()
	out := make([][]float64, r)
	for i := range out {
		out[i] = cloneFloats(t.data.RawRowView(i))
	}
	return out
}

// Column returns a copy of column j.
func (t *Table) Column(j int) []float64 {
	return mat.Col(nil, j, t.data)
}

// Index returns a copy of the row (spectral) axis.
func (t *Table) Index() *index.ConversionIndex { return t.rows.Clone() }

// Columns returns a copy of the column axis.
func (t *Table) Columns() index.Axis { return t.cols.CloneAxis() }

func (t *Table) SpecUnit() string     { return t.rows.Unit() }
func (t *Table) FullSpecUnit() string { return t.rows.FullUnit() }
func (t *Table) VarUnit() string      { return t.cols.Unit() }
func (t *Table) FullVarUnit() string  { return t.cols.FullUnit() }

// Norm returns the current intensity representation.
func (t *Table) Norm() NormKind { return t.norm }

// FullNorm returns the display name of the current representation.
func (t *Table) FullNorm() string { return t.norm.Full() }

// Reference returns a copy of the reference vector, or nil.
func (t *Table) Reference() []float64 { return cloneFloats(t.reference) }

// Baseline returns a copy of the baseline vector, or nil.
func (t *Table) Baseline() []float64 { return cloneFloats(t.baseline) }

// BaselineSubtracted reports whether the baseline is currently removed from the data.
func (t *Table) BaselineSubtracted() bool { return t.baselineSubtracted }

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	return &Table{
		name:               t.name,
		data:               mat.DenseCopyOf(t.data),
		rows:               t.rows.Clone(),
		cols:               t.cols.CloneAxis(),
		logger:             t.logger,
		norm:               t.norm,
		reference:          cloneFloats(t.reference),
		baseline:           cloneFloats(t.baseline),
		baselineSubtracted: t.baselineSubtracted,
	}
}

// AsSpecUnit returns a copy whose row axis is expressed in unit.
func (t *Table) AsSpecUnit(unit string) (*Table, error) {
	rows, err := t.rows.Convert(unit)
	if err != nil {
		return nil, fmt.Errorf("spectral unit: %w", err)
	}
	out := t.Clone()
	out.rows = rows
	return out, nil
}

// AsVarUnit returns a copy whose column axis is expressed in unit.
func (t *Table) AsVarUnit(unit string) (*Table, error) {
	cols, err := t.cols.ConvertAxis(unit)
	if err != nil {
		return nil, fmt.Errorf("variable unit: %w", err)
	}
	out := t.Clone()
	out.cols = cols
	return out, nil
}

// AsNorm returns a copy converted to target; see SetNorm.
func (t *Table) AsNorm(target NormKind, ref Reference) (*Table, error) {
	out := t.Clone()
	if err := out.SetNorm(target, ref); err != nil {
		return nil, err
	}
	return out, nil
}

// SliceRows returns rows [i, j) along with the matching part of the
// reference and baseline.
func (t *Table) SliceRows(i, j int) (*Table, error) {
	rows, err := t.rows.Slice(i, j)
	if err != nil {
		return nil, err
	}
	return t.takeRows(rows, seq(i, j))
}

// TakeRows returns the rows at pos, in that order.
func (t *Table) TakeRows(pos []int) (*Table, error) {
	rows, err := t.rows.Take(pos)
	if err != nil {
		return nil, err
	}
	return t.takeRows(rows, pos)
}

// RowsBetween returns the rows whose spectral value lies between lo and hi
// (inclusive, current spectral unit).
func (t *Table) RowsBetween(lo, hi float64) (*Table, error) {
	pos := t.rows.Between(lo, hi)
	if len(pos) == 0 {
		return nil, fmt.Errorf("%w: no %s rows in [%g, %g]", ErrEmptyTable, t.rows.Unit(), lo, hi)
	}
	return t.TakeRows(pos)
}

func (t *Table) takeRows(rows *index.ConversionIndex, pos []int) (*Table, error) {
	if len(pos) == 0 {
		return nil, ErrEmptyTable
	}
	_, c := t.data.Dims()
	data := mat.NewDense(len(pos), c, nil)
	for k, p := range pos {
		data.SetRow(k, t.data.RawRowView(p))
	}
	out := t.Clone()
	out.data = data
	out.rows = rows
	out.reference = takeFloats(t.reference, pos)
	out.baseline = takeFloats(t.baseline, pos)
	return out, nil
}

// SliceCols returns columns [i, j).
func (t *Table) SliceCols(i, j int) (*Table, error) {
	cols, err := t.cols.SliceAxis(i, j)
	if err != nil {
		return nil, err
	}
	return t.takeCols(cols, seq(i, j))
}

// TakeCols returns the columns at pos, in that order.
func (t *Table) TakeCols(pos []int) (*Table, error) {
	cols, err := t.cols.TakeAxis(pos)
	if err != nil {
		return nil, err
	}
	return t.takeCols(cols, pos)
}

func (t *Table) takeCols(cols index.Axis, pos []int) (*Table, error) {
	if len(pos) == 0 {
		return nil, ErrEmptyTable
	}
	r, _ := t.data.Dims()
	data := mat.NewDense(r, len(pos), nil)
	for k, p := range pos {
		data.SetCol(k, mat.Col(nil, p, t.data))
	}
	out := t.Clone()
	out.data = data
	out.cols = cols
	return out, nil
}

func seq(i, j int) []int {
	out := make([]int, 0, j-i)
	for k := i; k < j; k++ {
		out = append(out, k)
	}
	return out
}

func cloneFloats(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

func takeFloats(v []float64, pos []int) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(pos))
	for k, p := range pos {
		out[k] = v[p]
	}
	return out
}
