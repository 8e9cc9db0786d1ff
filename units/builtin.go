package units

import (
	"fmt"
	"math"
)

// Physical constants (CODATA 2018, exact in SI).
const (
	SpeedOfLight   = 299792458.0     // m/s
	Planck         = 6.62607015e-34  // J s
	ElectronCharge = 1.602176634e-19 // C

	// hcOverE is the photon wavelength in meters for one electron-volt.
	hcOverE = Planck * SpeedOfLight / ElectronCharge
)

// Interval unit codes with special meaning for time indices.
const (
	Datetime = "datetime"
	Ordinal  = "intvl"
)

const julianYear = 365.25 * 86400

var (
	spectral    = newSpectralRegistry()
	interval    = newIntervalRegistry()
	temperature = newTemperatureRegistry()
)

// Spectral returns the spectral-axis registry. Canonical unit: meters.
func Spectral() *Registry { return spectral }

// Interval returns the time-axis registry. Canonical unit: seconds.
func Interval() *Registry { return interval }

// Temperature returns the temperature registry. Canonical unit: kelvin.
func Temperature() *Registry { return temperature }

// ForCategory returns the built-in registry for c.
func ForCategory(c Category) (*Registry, error) {
	switch c {
	case CategorySpectral:
		return spectral, nil
	case CategoryTime:
		return interval, nil
	case CategoryTemperature:
		return temperature, nil
	default:
		return nil, fmt.Errorf("no built-in registry for category %q", c)
	}
}

func newSpectralRegistry() *Registry {
	return MustRegistry(CategorySpectral, "m",
		Scaled(Unit{Short: "m", Full: "Meters", Symbol: "m"}, 1),
		Scaled(Unit{Short: "nm", Full: "Nanometers", Symbol: "nm"}, 1e-9),
		Scaled(Unit{Short: "um", Full: "Micrometers", Symbol: "µm"}, 1e-6),
		Scaled(Unit{Short: "cm", Full: "Centimeters", Symbol: "cm"}, 1e-2),
		Reciprocal(Unit{Short: "k", Full: "Wavenumber", Symbol: "cm⁻¹"}, 1e-2),
		Reciprocal(Unit{Short: "ev", Full: "Electron Volts", Symbol: "eV"}, hcOverE),
		Reciprocal(Unit{Short: "nm-1", Full: "Inverse Nanometers", Symbol: "nm⁻¹"}, 1e-9),
		Reciprocal(Unit{Short: "f", Full: "Frequency", Symbol: "Hz"}, SpeedOfLight),
		Reciprocal(Unit{Short: "w", Full: "Angular Frequency", Symbol: "rad/s"}, 2*math.Pi*SpeedOfLight),
	)
}

func newIntervalRegistry() *Registry {
	return MustRegistry(CategoryTime, "s",
		Scaled(Unit{Short: "ns", Full: "Nanoseconds", Symbol: "ns"}, 1e-9),
		Scaled(Unit{Short: "us", Full: "Microseconds", Symbol: "µs"}, 1e-6),
		Scaled(Unit{Short: "ms", Full: "Milliseconds", Symbol: "ms"}, 1e-3),
		Scaled(Unit{Short: "s", Full: "Seconds", Symbol: "s"}, 1),
		Scaled(Unit{Short: "m", Full: "Minutes", Symbol: "min"}, 60),
		Scaled(Unit{Short: "h", Full: "Hours", Symbol: "h"}, 3600),
		Scaled(Unit{Short: "d", Full: "Days", Symbol: "d"}, 86400),
		Scaled(Unit{Short: "y", Full: "Years", Symbol: "yr"}, julianYear),
		NewDynamicUnit(Unit{Short: Datetime, Full: "Timestamp", Symbol: ""}),
		NewDynamicUnit(Unit{Short: Ordinal, Full: "Interval", Symbol: "#"}),
	)
}

func newTemperatureRegistry() *Registry {
	const zeroC = 273.15
	return MustRegistry(CategoryTemperature, "k",
		Scaled(Unit{Short: "k", Full: "Kelvin", Symbol: "K"}, 1),
		NewConversionUnit(Unit{Short: "c", Full: "Celsius", Symbol: "°C"},
			func(x float64) float64 { return x + zeroC },
			func(x float64) float64 { return x - zeroC },
		),
		NewConversionUnit(Unit{Short: "f", Full: "Fahrenheit", Symbol: "°F"},
			func(x float64) float64 { return (x-32)*5/9 + zeroC },
			func(x float64) float64 { return (x-zeroC)*9/5 + 32 },
		),
		Scaled(Unit{Short: "r", Full: "Rankine", Symbol: "°R"}, 5.0/9.0),
	)
}
