package users

import "strings"

// Role classifies a user's permitted dashboard and routes.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleManager Role = "manager"
	RoleDonor   Role = "donor"
	RoleUser    Role = "user"
)

// Roles is the closed set of known roles
var Roles = []Role{RoleAdmin, RoleManager, RoleDonor, RoleUser}

// ParseRole normalises a role string. Unknown values return false.
func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToLower(s))
	for _, known := range Roles {
		if r == known {
			return r, true
		}
	}
	return "", false
}

// Is compares roles case-insensitively
func (r Role) Is(other Role) bool {
	return r != "" && strings.EqualFold(string(r), string(other))
}

func (r Role) String() string {
	return string(r)
}

// User is the portal's view of the signed in account. It is a denormalised
// snapshot of the backend record, not a source of truth.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role,omitempty"`
}

// Clone returns a copy so callers cannot mutate shared session state
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	return &c
}
