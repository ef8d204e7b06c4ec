// Package routepolicy maps roles to landing pages and decides which role may
// open which path. Everything here is pure.
package routepolicy

import (
	"strings"

	"github.com/jrsteele09/go-donor-portal/users"
)

const (
	LoginPath        = "/login"
	UnauthorizedPath = "/unauthorized"
)

var dashboards = map[users.Role]string{
	users.RoleAdmin:   "/admin/dashboard",
	users.RoleManager: "/manager/Dashboard",
	users.RoleDonor:   "/donor/dashboard",
	users.RoleUser:    "/user",
}

type guardedPrefix struct {
	prefix string
	role   users.Role
}

// guarded is checked in order; a path matches a prefix when it equals it or
// continues with "/".
var guarded = []guardedPrefix{
	{"/admin", users.RoleAdmin},
	{"/manager", users.RoleManager},
	{"/donor", users.RoleDonor},
	{"/user", users.RoleUser},
}

// DefaultDashboardPath returns the landing page of role (case-insensitive).
// Unknown or empty roles land on the login page.
func DefaultDashboardPath(role string) string {
	r, ok := users.ParseRole(role)
	if !ok {
		return LoginPath
	}
	return dashboards[r]
}

// RequiredRole returns the single role allowed on path. ok is false for public paths.
func RequiredRole(path string) (role users.Role, ok bool) {
	for _, g := range guarded {
		if strings.HasPrefix(path, g.prefix) {
			return g.role, true
		}
	}
	return "", false
}

// IsAuthorizedForRoute reports whether role may open path. There is no role
// hierarchy: admin is not allowed on /manager paths.
func IsAuthorizedForRoute(role, path string) bool {
	required, guardedPath := RequiredRole(path)
	if !guardedPath {
		return true
	}
	return users.Role(role).Is(required)
}
