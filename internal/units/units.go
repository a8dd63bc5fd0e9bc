// Package units provides shared constants and validation for amplitude units
package units

// Unit constants
const (
	V  = "v"
	MV = "mv"
	UV = "uv"
)

// ValidUnits contains all valid unit values
var ValidUnits = []string{V, MV, UV}

// IsValid checks if the given unit is in the list of valid units
func IsValid(unit string) bool {
	for _, validUnit := range ValidUnits {
		if unit == validUnit {
			return true
		}
	}
	return false
}

// GetValidUnitsString returns a comma-separated string of valid units for error messages
func GetValidUnitsString() string {
	return "v, mv, uv"
}

// ConvertAmplitude converts an amplitude from volts to the target units.
// Recordings store channel data in volts.
func ConvertAmplitude(volts float64, targetUnits string) float64 {
	switch targetUnits {
	case V:
		return volts
	case MV:
		return volts * 1e3
	case UV:
		return volts * 1e6
	default:
		return volts
	}
}

// Label returns the display label for a unit.
func Label(unit string) string {
	switch unit {
	case MV:
		return "mV"
	case UV:
		return "uV"
	default:
		return "V"
	}
}
