package enums

import "fmt"

// MovementKind identifies how stock changed: added at a location, deducted
// from a location, or transferred between two locations.
type MovementKind string

const (
	MovementKindAdd      MovementKind = "add"
	MovementKindDeduct   MovementKind = "deduct"
	MovementKindTransfer MovementKind = "transfer"
)

var validMovementKinds = []MovementKind{
	MovementKindAdd,
	MovementKindDeduct,
	MovementKindTransfer,
}

// String implements fmt.Stringer.
func (k MovementKind) String() string {
	return string(k)
}

// IsValid reports whether the value is a known MovementKind.
func (k MovementKind) IsValid() bool {
	for _, candidate := range validMovementKinds {
		if candidate == k {
			return true
		}
	}
	return false
}

// ParseMovementKind converts raw input into a MovementKind.
func ParseMovementKind(value string) (MovementKind, error) {
	for _, candidate := range validMovementKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid movement kind %q", value)
}
