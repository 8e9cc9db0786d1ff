package spectra

import (
	"math"
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/lucasjlepore/spectra-analyzer/index"
)

// Summary contains the shape, units and value statistics of a table.
type Summary struct {
	Name               string    `json:"name,omitempty"`
	Rows               int       `json:"rows"`
	Columns            int       `json:"columns"`
	SpecUnit           string    `json:"spec_unit"`
	FullSpecUnit       string    `json:"full_spec_unit"`
	SpecMin            float64   `json:"spec_min"`
	SpecMax            float64   `json:"spec_max"`
	VarUnit            string    `json:"var_unit"`
	FullVarUnit        string    `json:"full_var_unit"`
	VarMin             float64   `json:"var_min"`
	VarMax             float64   `json:"var_max"`
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	SpanSeconds        float64   `json:"span_seconds"`
	Norm               string    `json:"norm"`
	FiniteValues       int       `json:"finite_values"`
	MissingValues      int       `json:"missing_values"`
	Min                float64   `json:"min"`
	Max                float64   `json:"max"`
	Mean               float64   `json:"mean"`
	StdDev             float64   `json:"std_dev"`
	HasReference       bool      `json:"has_reference"`
	ReferenceZeros     int       `json:"reference_zeros"`
	ReferenceNaNs      int       `json:"reference_nans"`
	HasBaseline        bool      `json:"has_baseline"`
	BaselineSubtracted bool      `json:"baseline_subtracted"`
}

// Summarize computes a Summary. Non-finite cells are counted as missing and
// left out of the statistics.
func Summarize(t *Table) Summary {
	r, c := t.Dims()
	s := Summary{
		Name:               t.name,
		Rows:               r,
		Columns:            c,
		SpecUnit:           t.SpecUnit(),
		FullSpecUnit:       t.FullSpecUnit(),
		VarUnit:            t.VarUnit(),
		FullVarUnit:        t.FullVarUnit(),
		Norm:               t.norm.String(),
		HasReference:       t.reference != nil,
		HasBaseline:        t.baseline != nil,
		BaselineSubtracted: t.baselineSubtracted,
	}
	s.SpecMin, s.SpecMax = finiteRange(t.rows.Values())
	s.VarMin, s.VarMax = finiteRange(t.cols.Values())

	if ti, ok := t.cols.(*index.TimeIndex); ok {
		if times, err := ti.Times(); err == nil && len(times) > 0 {
			s.Start, s.End = times[0], times[0]
			for _, ts := range times[1:] {
				if ts.Before(s.Start) {
					s.Start = ts
				}
				if ts.After(s.End) {
					s.End = ts
				}
			}
			s.SpanSeconds = s.End.Sub(s.Start).Seconds()
		}
	}

	finite := make([]float64, 0, r*c)
	for i := 0; i < r; i++ {
		for _, v := range t.data.RawRowView(i) {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				s.MissingValues++
				continue
			}
			finite = append(finite, v)
		}
	}
	s.FiniteValues = len(finite)
	if len(finite) > 0 {
		s.Min = floats.Min(finite)
		s.Max = floats.Max(finite)
		s.Mean, s.StdDev = stat.MeanStdDev(finite, nil)
		if len(finite) == 1 {
			s.StdDev = 0
		}
	}

	if t.reference != nil {
		s.ReferenceZeros, s.ReferenceNaNs = vectorHealth(t.reference)
	}
	return s
}
