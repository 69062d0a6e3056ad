package enums

import "fmt"

// QuantityUnit describes how an item is counted. Discrete items move in whole
// units; weighted items move in whole kilograms.
type QuantityUnit string

const (
	QuantityUnitDiscrete QuantityUnit = "unit"
	QuantityUnitWeighted QuantityUnit = "kg"
)

var validQuantityUnits = []QuantityUnit{
	QuantityUnitDiscrete,
	QuantityUnitWeighted,
}

// String implements fmt.Stringer.
func (u QuantityUnit) String() string {
	return string(u)
}

// IsValid reports whether the value is a known QuantityUnit.
func (u QuantityUnit) IsValid() bool {
	for _, candidate := range validQuantityUnits {
		if candidate == u {
			return true
		}
	}
	return false
}

// ParseQuantityUnit converts raw input into a QuantityUnit. Anything other
// than "kg" falls back to the discrete unit, matching the item import contract.
func ParseQuantityUnit(value string) QuantityUnit {
	if QuantityUnit(value) == QuantityUnitWeighted {
		return QuantityUnitWeighted
	}
	return QuantityUnitDiscrete
}

// ParseQuantityUnitStrict converts raw input into a QuantityUnit, rejecting
// unknown values.
func ParseQuantityUnitStrict(value string) (QuantityUnit, error) {
	for _, candidate := range validQuantityUnits {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid quantity unit %q", value)
}
