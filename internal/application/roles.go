package application

import "strings"

// Role is a position in the permission hierarchy admin > manager > user.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleUser    Role = "user"
)

// ParseRole accepts a role name case-insensitively.
func ParseRole(value string) (Role, bool) {
	role := Role(strings.ToLower(strings.TrimSpace(value)))
	if role.rank() == 0 {
		return "", false
	}
	return role, true
}

// Valid reports whether r names a known role.
func (r Role) Valid() bool {
	return r.rank() > 0
}

func (r Role) rank() int {
	switch r {
	case RoleAdmin:
		return 3
	case RoleManager:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

// Satisfies reports whether a session holding actual may perform an
// operation that requires required. Unknown roles satisfy nothing.
func Satisfies(actual, required Role) bool {
	have := actual.rank()
	return have > 0 && have >= required.rank() && required.rank() > 0
}
