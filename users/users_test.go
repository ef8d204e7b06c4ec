package users_test

import (
	"testing"

	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in   string
		want users.Role
		ok   bool
	}{
		{"admin", users.RoleAdmin, true},
		{"Admin", users.RoleAdmin, true},
		{"MANAGER", users.RoleManager, true},
		{" manager ", "", false},
		{"donor", users.RoleDonor, true},
		{"user", users.RoleUser, true},
		{"superuser", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := users.ParseRole(tt.in)
			require.Equal(t, tt.ok, ok)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRoleIs(t *testing.T) {
	require.True(t, users.Role("DONOR").Is(users.RoleDonor))
	require.False(t, users.Role("").Is(""))
	require.False(t, users.RoleAdmin.Is(users.RoleManager))
}

func TestCloneIsIndependent(t *testing.T) {
	var nilUser *users.User
	require.Nil(t, nilUser.Clone())

	u := &users.User{ID: "1", Email: "a@b.c", Name: "A", Role: users.RoleDonor}
	c := u.Clone()
	c.Name = "B"
	require.Equal(t, "A", u.Name)
}
