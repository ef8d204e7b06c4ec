package auth

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/users"
)

// RoleSource names the login payload shape a role was read from
type RoleSource string

const (
	SourceRoleObject RoleSource = "role_object"
	SourceRoleString RoleSource = "role_string"
	SourceUserType   RoleSource = "user_type"
	SourceRoleID     RoleSource = "role_id"
)

// RoleMatch is the result of a successful extraction
type RoleMatch struct {
	Source RoleSource
	Role   users.Role
}

// RoleStrategy extracts a role from one payload shape. ok is false when the
// shape is absent.
type RoleStrategy func(rec backend.AdminRecord) (match RoleMatch, ok bool)

// DefaultRoleStrategies is the fixed precedence order: nested role object,
// role string, userType, numeric roleId.
var DefaultRoleStrategies = []RoleStrategy{
	RoleFromObject,
	RoleFromString,
	RoleFromUserType,
	RoleFromRoleID,
}

// ResolveRole returns the first match of the default strategies
func ResolveRole(rec backend.AdminRecord) (RoleMatch, bool) {
	return ResolveRoleWith(rec, DefaultRoleStrategies...)
}

// ResolveRoleWith tries strategies in order and returns the first match
func ResolveRoleWith(rec backend.AdminRecord, strategies ...RoleStrategy) (RoleMatch, bool) {
	for _, strategy := range strategies {
		if match, ok := strategy(rec); ok {
			return match, true
		}
	}
	return RoleMatch{}, false
}

// RoleFromObject reads {"role": {"name": "..."}}
func RoleFromObject(rec backend.AdminRecord) (RoleMatch, bool) {
	raw := bytes.TrimSpace(rec.Role)
	if len(raw) == 0 || raw[0] != '{' {
		return RoleMatch{}, false
	}
	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return RoleMatch{}, false
	}
	return matchName(SourceRoleObject, obj.Name)
}

// RoleFromString reads {"role": "..."}
func RoleFromString(rec backend.AdminRecord) (RoleMatch, bool) {
	raw := bytes.TrimSpace(rec.Role)
	if len(raw) == 0 || raw[0] != '"' {
		return RoleMatch{}, false
	}
	var name string
	if err := json.Unmarshal(raw, &name); err != nil {
		return RoleMatch{}, false
	}
	return matchName(SourceRoleString, name)
}

// RoleFromUserType reads {"userType": "..."}
func RoleFromUserType(rec backend.AdminRecord) (RoleMatch, bool) {
	return matchName(SourceUserType, rec.UserType)
}

// RoleFromRoleID maps {"roleId": n}: 1 is admin, 2 is manager, anything else is user
func RoleFromRoleID(rec backend.AdminRecord) (RoleMatch, bool) {
	if rec.RoleID == nil {
		return RoleMatch{}, false
	}
	id, err := strconv.Atoi(strings.TrimSpace(rec.RoleID.String()))
	if err != nil {
		return RoleMatch{Source: SourceRoleID, Role: users.RoleUser}, true
	}
	switch id {
	case 1:
		return RoleMatch{Source: SourceRoleID, Role: users.RoleAdmin}, true
	case 2:
		return RoleMatch{Source: SourceRoleID, Role: users.RoleManager}, true
	default:
		return RoleMatch{Source: SourceRoleID, Role: users.RoleUser}, true
	}
}

// matchName normalises known role names; unknown names are kept verbatim so
// the route policy can reject them.
func matchName(source RoleSource, name string) (RoleMatch, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return RoleMatch{}, false
	}
	if role, ok := users.ParseRole(name); ok {
		return RoleMatch{Source: source, Role: role}, true
	}
	return RoleMatch{Source: source, Role: users.Role(name)}, true
}
