package domain

import "fmt"

// Role is the closed set of authorization categories carried by users and tokens.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSalesRep Role = "SALES_REP"
	RoleAnalyst  Role = "ANALYST"
	RoleUser     Role = "USER"
)

// AllRoles lists every known role in declaration order.
var AllRoles = []Role{RoleAdmin, RoleSalesRep, RoleAnalyst, RoleUser}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSalesRep, RoleAnalyst, RoleUser:
		return true
	}
	return false
}

func (r Role) String() string { return string(r) }

// ParseRole converts a role name into a Role. Names are case-sensitive.
func ParseRole(s string) (Role, error) {
	r := Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
	}
	return r, nil
}
