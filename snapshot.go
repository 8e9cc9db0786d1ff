package spectra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/lucasjlepore/spectra-analyzer/index"
	"github.com/lucasjlepore/spectra-analyzer/units"
)

// Snapshot is the complete serializable state of a Table.
type Snapshot struct {
	Name               string         `json:"name,omitempty"`
	SpecCategory       units.Category `json:"spec_category"`
	SpecUnit           string         `json:"spec_unit"`
	SpecValues         Floats         `json:"spec_values"`
	VarCategory        units.Category `json:"var_category"`
	VarUnit            string         `json:"var_unit"`
	VarValues          Floats         `json:"var_values"`
	TimeAxis           bool           `json:"time_axis"`
	Anchor             []time.Time    `json:"anchor,omitempty"`
	Norm               NormKind       `json:"norm"`
	Reference          Floats         `json:"reference,omitempty"`
	Baseline           Floats         `json:"baseline,omitempty"`
	BaselineSubtracted bool           `json:"baseline_subtracted"`
	Data               []Floats       `json:"data,omitempty"`
}

// Snapshot captures the table state, data included.
func (t *Table) Snapshot() Snapshot {
	s := Snapshot{
		Name:               t.name,
		SpecCategory:       t.rows.Registry().Category(),
		SpecUnit:           t.rows.Unit(),
		SpecValues:         t.rows.Values(),
		VarCategory:        t.cols.Registry().Category(),
		VarUnit:            t.cols.Unit(),
		VarValues:          t.cols.Values(),
		Norm:               t.norm,
		Reference:          cloneFloats(t.reference),
		Baseline:           cloneFloats(t.baseline),
		BaselineSubtracted: t.baselineSubtracted,
	}
	if ti, ok := t.cols.(*index.TimeIndex); ok {
		s.TimeAxis = true
		if times, err := ti.Times(); err == nil {
			s.Anchor = times
		}
	}
	for _, row := range t.Rows() {
		s.Data = append(s.Data, row)
	}
	return s
}

// FromSnapshot rebuilds a table. data overrides s.Data when non-nil, which
// lets callers keep the matrix outside the snapshot.
func FromSnapshot(s Snapshot, data mat.Matrix, opts ...Option) (*Table, error) {
	specReg, err := units.ForCategory(s.SpecCategory)
	if err != nil {
		return nil, err
	}
	rows, err := index.New(specReg, s.SpecValues, s.SpecUnit)
	if err != nil {
		return nil, fmt.Errorf("row axis: %w", err)
	}

	var cols index.Axis
	if s.TimeAxis {
		ti, err := index.Restore(s.VarValues, s.VarUnit, s.Anchor)
		if err != nil {
			return nil, fmt.Errorf("column axis: %w", err)
		}
		cols = ti
	} else {
		varReg, err := units.ForCategory(s.VarCategory)
		if err != nil {
			return nil, err
		}
		ci, err := index.New(varReg, s.VarValues, s.VarUnit)
		if err != nil {
			return nil, fmt.Errorf("column axis: %w", err)
		}
		cols = ci
	}

	if data == nil {
		if len(s.Data) == 0 {
			return nil, ErrEmptyTable
		}
		raw := make([][]float64, len(s.Data))
		for i, row := range s.Data {
			raw[i] = row
		}
		dense, err := denseFromRows(raw)
		if err != nil {
			return nil, err
		}
		data = dense
	}

	base := []Option{
		WithName(s.Name),
		WithNorm(s.Norm),
		WithBaselineSubtracted(s.BaselineSubtracted),
	}
	if s.Reference != nil {
		base = append(base, WithReferenceValues(s.Reference))
	}
	if s.Baseline != nil {
		base = append(base, WithBaselineValues(s.Baseline))
	}
	return New(data, rows, cols, append(base, opts...)...)
}

func denseFromRows(values [][]float64) (*mat.Dense, error) {
	if len(values) == 0 || len(values[0]) == 0 {
		return nil, ErrEmptyTable
	}
	width := len(values[0])
	flat := make([]float64, 0, len(values)*width)
	for i, row := range values {
		if len(row) != width {
			return nil, &ErrDimensionMismatch{Axis: fmt.Sprintf("row %d", i), Expected: width, Actual: len(row)}
		}
		flat = append(flat, row...)
	}
	return mat.NewDense(len(values), width, flat), nil
}

// MarshalJSON encodes the full snapshot.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Snapshot())
}

// UnmarshalJSON replaces t with the decoded table. Warnings go to the default logger.
func (t *Table) UnmarshalJSON(b []byte) error {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	out, err := FromSnapshot(s, nil)
	if err != nil {
		return err
	}
	*t = *out
	return nil
}

// Floats is a float slice whose JSON form keeps NaN and ±Inf as the strings
// "NaN", "+Inf" and "-Inf".
type Floats []float64

func (f Floats) MarshalJSON() ([]byte, error) {
	if f == nil {
		return []byte("null"), nil
	}
	var b bytes.Buffer
	b.WriteByte('[')
	for i, v := range f {
		if i > 0 {
			b.WriteByte(',')
		}
		switch {
		case math.IsNaN(v):
			b.WriteString(`"NaN"`)
		case math.IsInf(v, 1):
			b.WriteString(`"+Inf"`)
		case math.IsInf(v, -1):
			b.WriteString(`"-Inf"`)
		default:
			b.Write(strconv.AppendFloat(nil, v, 'g', -1, 64))
		}
	}
	b.WriteByte(']')
	return b.Bytes(), nil
}

func (f *Floats) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = nil
		return nil
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := make(Floats, len(raw))
	for i, r := range raw {
		text := string(r)
		if len(r) > 0 && r[0] == '"' {
			if err := json.Unmarshal(r, &text); err != nil {
				return err
			}
		}
		v, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return fmt.Errorf("float %d: %w", i, err)
		}
		out[i] = v
	}
	*f = out
	return nil
}
