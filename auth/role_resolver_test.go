package auth_test

import (
	"encoding/json"
	"testing"

	"github.com/jrsteele09/go-donor-portal/auth"
	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/stretchr/testify/require"
)

func record(t *testing.T, raw string) backend.AdminRecord {
	t.Helper()
	var rec backend.AdminRecord
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	return rec
}

func TestResolveRole(t *testing.T) {
	tests := []struct {
		name       string
		payload    string
		wantRole   users.Role
		wantSource auth.RoleSource
		wantOK     bool
	}{
		{"nested object", `{"role":{"id":1,"name":"Admin"}}`, users.RoleAdmin, auth.SourceRoleObject, true},
		{"string role", `{"role":"donor"}`, users.RoleDonor, auth.SourceRoleString, true},
		{"user type", `{"userType":"MANAGER"}`, users.RoleManager, auth.SourceUserType, true},
		{"role id 1", `{"roleId":1}`, users.RoleAdmin, auth.SourceRoleID, true},
		{"role id 2", `{"roleId":2}`, users.RoleManager, auth.SourceRoleID, true},
		{"role id as string", `{"roleId":"2"}`, users.RoleManager, auth.SourceRoleID, true},
		{"role id other", `{"roleId":7}`, users.RoleUser, auth.SourceRoleID, true},
		{"object wins over user type", `{"role":{"name":"donor"},"userType":"admin","roleId":1}`, users.RoleDonor, auth.SourceRoleObject, true},
		{"string wins over role id", `{"role":"user","roleId":1}`, users.RoleUser, auth.SourceRoleString, true},
		{"object without name falls through", `{"role":{},"userType":"donor"}`, users.RoleDonor, auth.SourceUserType, true},
		{"empty string falls through", `{"role":"","roleId":2}`, users.RoleManager, auth.SourceRoleID, true},
		{"unknown name kept verbatim", `{"role":"nurse"}`, users.Role("nurse"), auth.SourceRoleString, true},
		{"no shape", `{"id":9,"email":"x@y.z"}`, "", "", false},
		{"null role", `{"role":null}`, "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			match, ok := auth.ResolveRole(record(t, tt.payload))
			require.Equal(t, tt.wantOK, ok)
			require.Equal(t, tt.wantRole, match.Role)
			require.Equal(t, tt.wantSource, match.Source)
		})
	}
}

func TestResolveRoleWithCustomOrder(t *testing.T) {
	rec := record(t, `{"role":"donor","roleId":1}`)
	match, ok := auth.ResolveRoleWith(rec, auth.RoleFromRoleID, auth.RoleFromString)
	require.True(t, ok)
	require.Equal(t, users.RoleAdmin, match.Role)

	_, ok = auth.ResolveRoleWith(rec)
	require.False(t, ok)
}
