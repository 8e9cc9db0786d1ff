package spectra

import (
	"fmt"
	"math"
	"strings"
)

// BuildNotes turns a Summary into a short plain-text report.
func BuildNotes(s Summary) string {
	var b strings.Builder

	name := s.Name
	if name == "" {
		name = "unnamed"
	}
	fmt.Fprintf(&b, "Table: %s (%d x %d)\n", name, s.Rows, s.Columns)
	fmt.Fprintf(
		&b,
		"Spectral axis: %s | %g .. %g\n",
		displayUnit(s.FullSpecUnit),
		s.SpecMin,
		s.SpecMax,
	)
	fmt.Fprintf(
		&b,
		"Variable axis: %s | %g .. %g\n",
		displayUnit(s.FullVarUnit),
		s.VarMin,
		s.VarMax,
	)
	if !s.Start.IsZero() {
		fmt.Fprintf(
			&b,
			"Recorded: %s to %s (%s)\n",
			s.Start.Format("2006-01-02 15:04:05"),
			s.End.Format("2006-01-02 15:04:05"),
			formatDuration(s.SpanSeconds),
		)
	}

	b.WriteString("\nIntensity\n")
	fmt.Fprintf(&b, "- Representation: %s\n", s.Norm)
	if s.FiniteValues > 0 {
		fmt.Fprintf(
			&b,
			"- Values: %.4g min / %.4g mean / %.4g max (std %.3g)\n",
			s.Min,
			s.Mean,
			s.Max,
			s.StdDev,
		)
	} else {
		b.WriteString("- Values: no finite values\n")
	}
	if s.MissingValues > 0 {
		total := s.MissingValues + s.FiniteValues
		fmt.Fprintf(&b, "- Missing: %d of %d cells (%.1f%%)\n", s.MissingValues, total, pct(s.MissingValues, total))
	}

	b.WriteString("\nReference and Baseline\n")
	switch {
	case !s.HasReference:
		b.WriteString("- No reference stored.\n")
	case s.ReferenceZeros > 0 || s.ReferenceNaNs > 0:
		fmt.Fprintf(&b, "- Reference stored; %d zeros and %d NaNs will produce Inf/NaN when normalizing.\n", s.ReferenceZeros, s.ReferenceNaNs)
	default:
		b.WriteString("- Reference stored.\n")
	}
	switch {
	case !s.HasBaseline:
		b.WriteString("- No baseline stored.\n")
	case s.BaselineSubtracted:
		b.WriteString("- Baseline stored and subtracted.\n")
	default:
		b.WriteString("- Baseline stored, not subtracted.\n")
	}

	return strings.TrimSpace(b.String())
}

func displayUnit(full string) string {
	if full == "" {
		return "none"
	}
	return full
}

func pct(part, total int) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(part) / float64(total)
}

func formatDuration(seconds float64) string {
	if seconds <= 0 {
		return "0s"
	}
	s := int(math.Round(seconds))
	h := s / 3600
	m := (s % 3600) / 60
	sec := s % 60
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, sec)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
	return fmt.Sprintf("%ds", sec)
}
