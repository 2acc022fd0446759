package biblio

// UserRole is the user's role
type UserRole = string

const (
	// RoleAdmin manages every resource including users
	RoleAdmin UserRole = "admin"
	// RoleEditor manages catalog resources (authors, books, loans)
	RoleEditor UserRole = "editor"
	// RoleUser is a regular library member
	RoleUser UserRole = "user"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r UserRole) bool {
	switch r {
	case RoleAdmin, RoleEditor, RoleUser:
		return true
	default:
		return false
	}
}

// ParseRole safely parses a string into a UserRole
func ParseRole(roleStr string) (UserRole, bool) {
	role := UserRole(roleStr)
	return role, IsValidRole(role)
}

// AllRoles returns all predefined roles
func AllRoles() []UserRole {
	return []UserRole{RoleAdmin, RoleEditor, RoleUser}
}
