package spectra

import (
	"math"
	"strings"
)

// NormKind is the intensity representation of a table's data.
type NormKind string

const (
	NormNone                 NormKind = ""
	NormTransmittance        NormKind = "t"
	NormPercentTransmittance NormKind = "%t"
	NormInverseTransmittance NormKind = "r"
	NormAbsorbance           NormKind = "a"
	NormAbsorbanceE          NormKind = "ae"
)

var normKinds = []NormKind{
	NormNone,
	NormTransmittance,
	NormPercentTransmittance,
	NormInverseTransmittance,
	NormAbsorbance,
	NormAbsorbanceE,
}

var normNames = map[NormKind]string{
	NormNone:                 "none",
	NormTransmittance:        "transmittance",
	NormPercentTransmittance: "percent_transmittance",
	NormInverseTransmittance: "inverse_transmittance",
	NormAbsorbance:           "absorbance_10",
	NormAbsorbanceE:          "absorbance_e",
}

var normFull = map[NormKind]string{
	NormNone:                 "Counts",
	NormTransmittance:        "Transmittance",
	NormPercentTransmittance: "(%) Transmittance",
	NormInverseTransmittance: "Inverse Transmittance (1/T)",
	NormAbsorbance:           "Absorbance (base 10)",
	NormAbsorbanceE:          "Absorbance (base e)",
}

// ParseNorm accepts a short code ("t", "%t", "r", "a", "ae"), a long name
// ("absorbance_10", ...) or "" / "none".
func ParseNorm(s string) (NormKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, k := range normKinds {
		if s == string(k) || s == normNames[k] {
			return k, nil
		}
	}
	return NormNone, newItypeError(s)
}

// Valid reports whether k is a known kind.
func (k NormKind) Valid() bool {
	_, ok := normNames[k]
	return ok
}

// Full returns the display name.
func (k NormKind) Full() string {
	if f, ok := normFull[k]; ok {
		return f
	}
	return string(k)
}

func (k NormKind) String() string {
	if k == NormNone {
		return "none"
	}
	return string(k)
}

func newItypeError(value string) *ItypeError {
	allowed := make([]string, 0, 2*len(normKinds))
	for _, k := range normKinds {
		allowed = append(allowed, k.String())
		if normNames[k] != k.String() {
			allowed = append(allowed, normNames[k])
		}
	}
	return &ItypeError{Value: value, Allowed: allowed}
}

// fromRatio maps data divided by the reference (inverse transmittance, R)
// into k. toRatio is its exact inverse.
func fromRatio(k NormKind) func(float64) float64 {
	switch k {
	case NormTransmittance:
		return func(x float64) float64 { return 1 / x }
	case NormPercentTransmittance:
		return func(x float64) float64 { return 100 / x }
	case NormAbsorbance:
		return func(x float64) float64 { return -math.Log10(x) }
	case NormAbsorbanceE:
		return func(x float64) float64 { return -math.Log(x) }
	default:
		return nil
	}
}

func toRatio(k NormKind) func(float64) float64 {
	switch k {
	case NormTransmittance:
		return func(x float64) float64 { return 1 / x }
	case NormPercentTransmittance:
		return func(x float64) float64 { return 100 / x }
	case NormAbsorbance:
		return func(x float64) float64 { return math.Pow(10, -x) }
	case NormAbsorbanceE:
		return func(x float64) float64 { return math.Exp(-x) }
	default:
		return nil
	}
}
