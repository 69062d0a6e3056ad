package enums

import "fmt"

// ActorRole is the role granted by the identity provider. Viewers may only
// read; editors and admins may mutate stock; admins may also run snapshot
// restore operations.
type ActorRole string

const (
	ActorRoleAdmin  ActorRole = "admin"
	ActorRoleEditor ActorRole = "editor"
	ActorRoleViewer ActorRole = "viewer"
)

var validActorRoles = []ActorRole{
	ActorRoleAdmin,
	ActorRoleEditor,
	ActorRoleViewer,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// CanMutate reports whether the role may change catalogue or stock state.
func (r ActorRole) CanMutate() bool {
	return r == ActorRoleAdmin || r == ActorRoleEditor
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
