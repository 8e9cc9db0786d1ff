package pipeline

import (
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	spectra "github.com/lucasjlepore/spectra-analyzer"
)

func TestParsePlan(t *testing.T) {
	p, err := ParsePlan([]byte(`
spec_unit: ev
var_unit: m
norm: absorbance_10
reference:
  column: 0
baseline:
  values: [1, 2, 3]
baseline_action: subtract
`))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.SpecUnit != "ev" || p.VarUnit != "m" || p.Norm != "absorbance_10" {
		t.Fatalf("unexpected plan: %+v", p)
	}
	if p.Reference == nil || p.Reference.Column == nil || *p.Reference.Column != 0 {
		t.Fatalf("unexpected reference: %+v", p.Reference)
	}
	if diff := cmp.Diff([]float64{1, 2, 3}, p.Baseline.Values); diff != "" {
		t.Fatalf("baseline values mismatch (-want +got):\n%s", diff)
	}
}

func TestParsePlanTimeSelector(t *testing.T) {
	p, err := ParsePlan([]byte("reference:\n  time: 2024-05-02T14:00:30+03:00\n"))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	if p.Reference.Time == nil || !p.Reference.Time.Equal(testStart.Add(30e9)) {
		t.Fatalf("unexpected time: %v", p.Reference.Time)
	}
}

func TestParsePlanErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "spectral_unit: ev\n",
		"bad norm":      "norm: optical_density\n",
		"bad action":    "baseline_action: remove\nbaseline:\n  column: 0\n",
		"two selectors": "reference:\n  column: 0\n  label: 10\n",
		"no selector":   "reference: {}\n",
		"half mean":     "baseline:\n  mean_from: 0\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := ParsePlan([]byte(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}

	p, err := ParsePlan(nil)
	if err != nil {
		t.Fatalf("empty plan: %v", err)
	}
	if p.Norm != "" || p.Reference != nil {
		t.Fatalf("empty plan should be zero: %+v", p)
	}
}

func TestApplyRunsStepsInOrder(t *testing.T) {
	src := sampleTable(t)
	p, err := ParsePlan([]byte(`
baseline:
  column: 0
baseline_action: subtract
var_unit: s
spec_unit: ev
norm: r
reference:
  label: 90
`))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}

	out, err := Apply(src, p)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.SpecUnit() != "ev" || out.VarUnit() != "s" || out.Norm() != spectra.NormInverseTransmittance {
		t.Fatalf("unexpected state: %s %s %s", out.SpecUnit(), out.VarUnit(), out.Norm())
	}
	if !out.BaselineSubtracted() {
		t.Fatal("baseline should be subtracted")
	}

	// Baseline is column 0 and the reference is the last column after
	// subtraction, so row 0 becomes [0, 1, 2, 3] / 3.
	want := []float64{0, 1.0 / 3, 2.0 / 3, 1}
	opts := cmp.Options{cmpopts.EquateApprox(0, 1e-12), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(want, out.Rows()[0], opts); diff != "" {
		t.Fatalf("row 0 mismatch (-want +got):\n%s", diff)
	}
	if !math.IsNaN(out.At(1, 1)) {
		t.Fatalf("NaN cell should stay NaN, got %v", out.At(1, 1))
	}

	if src.Norm() != spectra.NormNone || src.BaselineSubtracted() {
		t.Fatal("Apply must not modify its input")
	}
}

func TestApplySetsReferenceWithoutNorm(t *testing.T) {
	p := &Plan{Reference: &ReferencePlan{Values: []float64{5, 6, 7}}}
	out, err := Apply(sampleTable(t), p)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if diff := cmp.Diff([]float64{5, 6, 7}, out.Reference()); diff != "" {
		t.Fatalf("reference mismatch (-want +got):\n%s", diff)
	}
	if out.Norm() != spectra.NormNone {
		t.Fatalf("norm should be unchanged, got %s", out.Norm())
	}
}

func TestApplyReportsMissingReference(t *testing.T) {
	tbl := sampleTable(t)
	if err := tbl.ClearReference(); err != nil {
		t.Fatalf("ClearReference: %v", err)
	}

	_, err := Apply(tbl, &Plan{Norm: "a"})
	if !errors.Is(err, spectra.ErrNoReference) {
		t.Fatalf("expected ErrNoReference, got %v", err)
	}
}

func TestLoadPlan(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plan.yaml")
	if err := os.WriteFile(path, []byte("norm: t\n"), 0o644); err != nil {
		t.Fatalf("write plan: %v", err)
	}
	p, err := LoadPlan(path)
	if err != nil {
		t.Fatalf("LoadPlan: %v", err)
	}
	if p.Norm != "t" {
		t.Fatalf("unexpected norm %q", p.Norm)
	}

	_, err = LoadPlan(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "read plan") {
		t.Fatalf("expected read error, got %v", err)
	}
}

func TestApplyAddsStoredBaselineBack(t *testing.T) {
	src := sampleTable(t)
	if err := src.SubtractBaseline(); err != nil {
		t.Fatalf("SubtractBaseline: %v", err)
	}
	dir := filepath.Join(t.TempDir(), "subtracted")
	if _, err := WriteBundle(dir, src, WriteOptions{Format: FormatCSV}); err != nil {
		t.Fatalf("WriteBundle: %v", err)
	}
	tbl, _, err := ReadBundle(dir, spectra.WithLogger(spectra.NoopLogger()))
	if err != nil {
		t.Fatalf("ReadBundle: %v", err)
	}
	if !tbl.BaselineSubtracted() {
		t.Fatal("bundle should keep the subtracted baseline")
	}

	p, err := ParsePlan([]byte("baseline_action: add\n"))
	if err != nil {
		t.Fatalf("ParsePlan: %v", err)
	}
	out, err := Apply(tbl, p)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if out.BaselineSubtracted() {
		t.Fatal("baseline should be added back")
	}
	opts := cmp.Options{cmpopts.EquateApprox(0, 1e-12), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(sampleTable(t).Rows(), out.Rows(), opts); diff != "" {
		t.Fatalf("data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{40, 40, 40}, out.Reference(), opts); diff != "" {
		t.Fatalf("reference mismatch (-want +got):\n%s", diff)
	}

	// A new baseline in the same plan replaces the stored one after the add.
	p = &Plan{Baseline: &ReferencePlan{Values: []float64{5, 5, 5}}, BaselineAction: BaselineAdd}
	out, err = Apply(tbl, p)
	if err != nil {
		t.Fatalf("Apply with new baseline: %v", err)
	}
	if diff := cmp.Diff([]float64{5, 5, 5}, out.Baseline()); diff != "" {
		t.Fatalf("baseline mismatch (-want +got):\n%s", diff)
	}
	if out.BaselineSubtracted() {
		t.Fatal("new baseline should not be subtracted")
	}
}

func TestApplyBaselineActionNeedsStoredBaseline(t *testing.T) {
	tbl := sampleTable(t)
	if err := tbl.ClearBaseline(); err != nil {
		t.Fatalf("ClearBaseline: %v", err)
	}
	_, err := Apply(tbl, &Plan{BaselineAction: BaselineSubtract})
	if !errors.Is(err, spectra.ErrNoBaseline) {
		t.Fatalf("expected ErrNoBaseline, got %v", err)
	}
}

func TestApplyNormNoneStoresPlanReference(t *testing.T) {
	p := &Plan{Norm: "none", Reference: &ReferencePlan{Values: []float64{5, 6, 7}}}

	out, err := Apply(sampleTable(t), p)
	if err != nil {
		t.Fatalf("Apply on raw table: %v", err)
	}
	if diff := cmp.Diff([]float64{5, 6, 7}, out.Reference()); diff != "" {
		t.Fatalf("raw table reference mismatch (-want +got):\n%s", diff)
	}

	normalized, err := sampleTable(t).AsNorm(spectra.NormAbsorbance, nil)
	if err != nil {
		t.Fatalf("AsNorm: %v", err)
	}
	out, err = Apply(normalized, p)
	if err != nil {
		t.Fatalf("Apply on normalized table: %v", err)
	}
	if out.Norm() != spectra.NormNone {
		t.Fatalf("want raw data, got %s", out.Norm())
	}
	opts := cmp.Options{cmpopts.EquateApprox(0, 1e-12), cmpopts.EquateNaNs()}
	if diff := cmp.Diff(sampleTable(t).Rows(), out.Rows(), opts); diff != "" {
		t.Fatalf("raw data mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]float64{5, 6, 7}, out.Reference()); diff != "" {
		t.Fatalf("normalized table reference mismatch (-want +got):\n%s", diff)
	}
}
