// Package units provides shared constants and conversions for temperature units.
//
// The conversion engine works in Kelvin throughout; output layers convert to
// the unit requested by the caller.
package units

// Unit name constants accepted by the CLI and config.
const (
	Kelvin     = "kelvin"
	Celsius    = "celsius"
	Fahrenheit = "fahrenheit"
)

// CelsiusOffset is the Kelvin value of 0 °C.
const CelsiusOffset = 273.15

// ValidUnits contains all valid unit values.
var ValidUnits = []string{Kelvin, Celsius, Fahrenheit}

// IsValid checks if the given unit is in the list of valid units.
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// ValidUnitsString returns a comma-separated string of valid units for error messages.
func ValidUnitsString() string {
	return "kelvin, celsius, fahrenheit"
}

// FromKelvin converts a temperature in Kelvin to the target unit.
// Unknown units pass the Kelvin value through unchanged.
func FromKelvin(tempK float64, targetUnit string) float64 {
	switch targetUnit {
	case Celsius:
		return tempK - CelsiusOffset
	case Fahrenheit:
		return (tempK-CelsiusOffset)*9/5 + 32
	default:
		return tempK
	}
}

// ToKelvin converts a temperature in the source unit to Kelvin.
// Unknown units are treated as Kelvin.
func ToKelvin(temp float64, sourceUnit string) float64 {
	switch sourceUnit {
	case Celsius:
		return temp + CelsiusOffset
	case Fahrenheit:
		return (temp-32)*5/9 + CelsiusOffset
	default:
		return temp
	}
}

// Symbol returns the display symbol for a unit ("K", "°C", "°F").
func Symbol(unit string) string {
	switch unit {
	case Celsius:
		return "°C"
	case Fahrenheit:
		return "°F"
	default:
		return "K"
	}
}
