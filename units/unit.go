package units

// Category groups units that describe the same physical quantity.
type Category string

const (
	CategorySpectral    Category = "spectral"
	CategoryTime        Category = "time"
	CategoryTemperature Category = "temperature"
)

// None is the unset unit. Every registry accepts it.
const None = ""

// Unit is the display metadata of one unit.
type Unit struct {
	Short    string   `json:"short"`
	Full     string   `json:"full"`
	Symbol   string   `json:"symbol"`
	Category Category `json:"category"`
}

// ConversionUnit is a Unit that knows how to move values to and from the
// canonical unit of its category.
//
// Dynamic units (datetime, interval ordinals) cannot be converted value by
// value; their conversions need the whole index and are handled there.
type ConversionUnit struct {
	Unit

	toCanonical   func(float64) float64
	fromCanonical func(float64) float64
	dynamic       bool
}

// NewConversionUnit builds a unit from a pair of inverse functions.
func NewConversionUnit(u Unit, toCanonical, fromCanonical func(float64) float64) *ConversionUnit {
	return &ConversionUnit{Unit: u, toCanonical: toCanonical, fromCanonical: fromCanonical}
}

// NewDynamicUnit builds a unit whose canonical form depends on index state.
func NewDynamicUnit(u Unit) *ConversionUnit {
	return &ConversionUnit{Unit: u, dynamic: true}
}

// Scaled returns a unit equal to factor canonical units.
func Scaled(u Unit, factor float64) *ConversionUnit {
	return NewConversionUnit(u,
		func(x float64) float64 { return x * factor },
		func(x float64) float64 { return x / factor },
	)
}

// Reciprocal returns a unit whose canonical value is numerator/x.
// The mapping is its own inverse.
func Reciprocal(u Unit, numerator float64) *ConversionUnit {
	f := func(x float64) float64 { return numerator / x }
	return NewConversionUnit(u, f, f)
}

func identity(x float64) float64 { return x }

func noneUnit(c Category) *ConversionUnit {
	return NewConversionUnit(Unit{Short: None, Full: "unitless", Category: c}, identity, identity)
}

// Dynamic reports whether the unit needs index state to convert.
func (u *ConversionUnit) Dynamic() bool {
	return u.dynamic
}

// ToCanonical maps values in u to the canonical unit. The input is not modified.
func (u *ConversionUnit) ToCanonical(values []float64) ([]float64, error) {
	if u.dynamic {
		return nil, NewDatetimeCanonicalError(u.Short, "to canonical", nil)
	}
	return apply(values, u.toCanonical), nil
}

// FromCanonical maps canonical values into u. The input is not modified.
func (u *ConversionUnit) FromCanonical(values []float64) ([]float64, error) {
	if u.dynamic {
		return nil, NewDatetimeCanonicalError(u.Short, "from canonical", nil)
	}
	return apply(values, u.fromCanonical), nil
}

func apply(values []float64, f func(float64) float64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = f(v)
	}
	return out
}
