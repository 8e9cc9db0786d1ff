package pipeline

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	spectra "github.com/lucasjlepore/spectra-analyzer"
)

// Baseline actions.
const (
	BaselineSubtract = "subtract"
	BaselineAdd      = "add"
)

// Plan is a conversion recipe read from YAML. Empty fields leave the
// corresponding table state unchanged; norm "none" converts back to raw.
//
//	spec_unit: ev
//	var_unit: m
//	norm: absorbance_10
//	reference:
//	  column: 0
//	baseline:
//	  mean_from: 0
//	  mean_to: 5
//	baseline_action: subtract
type Plan struct {
	SpecUnit       string         `yaml:"spec_unit,omitempty" json:"spec_unit,omitempty"`
	VarUnit        string         `yaml:"var_unit,omitempty" json:"var_unit,omitempty"`
	Norm           string         `yaml:"norm,omitempty" json:"norm,omitempty"`
	Reference      *ReferencePlan `yaml:"reference,omitempty" json:"reference,omitempty"`
	Baseline       *ReferencePlan `yaml:"baseline,omitempty" json:"baseline,omitempty"`
	BaselineAction string         `yaml:"baseline_action,omitempty" json:"baseline_action,omitempty"`
}

// ReferencePlan selects a reference or baseline vector. Exactly one
// selector must be set; mean_from and mean_to go together.
type ReferencePlan struct {
	Column   *int       `yaml:"column,omitempty" json:"column,omitempty"`
	Label    *float64   `yaml:"label,omitempty" json:"label,omitempty"`
	Time     *time.Time `yaml:"time,omitempty" json:"time,omitempty"`
	MeanFrom *int       `yaml:"mean_from,omitempty" json:"mean_from,omitempty"`
	MeanTo   *int       `yaml:"mean_to,omitempty" json:"mean_to,omitempty"`
	Values   []float64  `yaml:"values,omitempty" json:"values,omitempty"`
}

// LoadPlan reads a YAML plan file.
func LoadPlan(path string) (*Plan, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan: %w", err)
	}
	p, err := ParsePlan(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

// ParsePlan decodes and validates a YAML plan. Unknown keys are rejected.
func ParsePlan(b []byte) (*Plan, error) {
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)

	var p Plan
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode plan: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks the plan without a table. A baseline_action without a
// baseline selector acts on the baseline stored in the table; Apply reports
// a missing one.
func (p *Plan) Validate() error {
	if p.Norm != "" {
		if _, err := spectra.ParseNorm(p.Norm); err != nil {
			return err
		}
	}
	switch strings.ToLower(p.BaselineAction) {
	case "", BaselineSubtract, BaselineAdd:
	default:
		return fmt.Errorf("invalid baseline_action %q (expected subtract|add)", p.BaselineAction)
	}
	if p.Reference != nil {
		if _, err := p.Reference.Selector(); err != nil {
			return fmt.Errorf("reference: %w", err)
		}
	}
	if p.Baseline != nil {
		if _, err := p.Baseline.Selector(); err != nil {
			return fmt.Errorf("baseline: %w", err)
		}
	}
	return nil
}

// Selector turns the plan entry into a spectra.Reference.
func (r *ReferencePlan) Selector() (spectra.Reference, error) {
	var (
		sel spectra.Reference
		n   int
	)
	if r.Column != nil {
		sel = spectra.ColumnAt(*r.Column)
		n++
	}
	if r.Label != nil {
		sel = spectra.ColumnLabel(*r.Label)
		n++
	}
	if r.Time != nil {
		sel = spectra.ColumnTime(*r.Time)
		n++
	}
	if r.MeanFrom != nil || r.MeanTo != nil {
		if r.MeanFrom == nil || r.MeanTo == nil {
			return nil, errors.New("mean_from and mean_to must be set together")
		}
		sel = spectra.MeanOfColumns(*r.MeanFrom, *r.MeanTo)
		n++
	}
	if r.Values != nil {
		sel = spectra.Vector(r.Values)
		n++
	}
	switch n {
	case 0:
		return nil, errors.New("no selector set (column, label, time, mean_from/mean_to or values)")
	case 1:
		return sel, nil
	}
	return nil, fmt.Errorf("%d selectors set, want exactly one", n)
}

// Apply runs the plan against a copy of t in this order: set baseline,
// baseline action, variable unit, spectral unit, reference and norm.
func Apply(t *spectra.Table, p *Plan) (*spectra.Table, error) {
	out := t.Clone()
	if p == nil {
		return out, nil
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	action := strings.ToLower(p.BaselineAction)
	if action != "" && p.Baseline == nil && out.Baseline() == nil {
		return nil, fmt.Errorf("baseline_action %q: %w", p.BaselineAction, spectra.ErrNoBaseline)
	}
	// A subtracted baseline goes back in before a new one replaces it.
	if action == BaselineAdd && out.Baseline() != nil {
		if err := out.AddBaseline(); err != nil {
			return nil, fmt.Errorf("add baseline: %w", err)
		}
		action = ""
	}
	if p.Baseline != nil {
		sel, _ := p.Baseline.Selector()
		if err := out.SetBaseline(sel); err != nil {
			return nil, fmt.Errorf("set baseline: %w", err)
		}
	}
	switch action {
	case BaselineSubtract:
		if err := out.SubtractBaseline(); err != nil {
			return nil, fmt.Errorf("subtract baseline: %w", err)
		}
	case BaselineAdd:
		if err := out.AddBaseline(); err != nil {
			return nil, fmt.Errorf("add baseline: %w", err)
		}
	}

	var err error
	if p.VarUnit != "" {
		if out, err = out.AsVarUnit(p.VarUnit); err != nil {
			return nil, err
		}
	}
	if p.SpecUnit != "" {
		if out, err = out.AsSpecUnit(p.SpecUnit); err != nil {
			return nil, err
		}
	}

	var ref spectra.Reference
	if p.Reference != nil {
		ref, _ = p.Reference.Selector()
	}
	if p.Norm == "" {
		if ref != nil {
			if err := out.SetReference(ref); err != nil {
				return nil, fmt.Errorf("set reference: %w", err)
			}
		}
		return out, nil
	}
	kind, _ := spectra.ParseNorm(p.Norm)
	if kind == spectra.NormNone {
		// Raw data is recovered with the stored reference; the plan's
		// reference then replaces it.
		if err := out.SetNorm(kind, nil); err != nil {
			return nil, fmt.Errorf("set norm %s: %w", kind, err)
		}
		if ref != nil {
			if err := out.SetReference(ref); err != nil {
				return nil, fmt.Errorf("set reference: %w", err)
			}
		}
		return out, nil
	}
	if err := out.SetNorm(kind, ref); err != nil {
		return nil, fmt.Errorf("set norm %s: %w", kind, err)
	}
	return out, nil
}
