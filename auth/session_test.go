package auth_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/jrsteele09/go-donor-portal/auth"
	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/devbackend"
	"github.com/jrsteele09/go-donor-portal/kvstore"
	"github.com/jrsteele09/go-donor-portal/routepolicy"
	"github.com/jrsteele09/go-donor-portal/tokenstore"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeBackend records bearer changes and answers Login from a canned response
type fakeBackend struct {
	resp   *backend.LoginResponse
	err    error
	bearer string
	calls  int
}

func (f *fakeBackend) Login(_ context.Context, _, _ string) (*backend.LoginResponse, error) {
	f.calls++
	return f.resp, f.err
}

func (f *fakeBackend) SetBearer(token string) { f.bearer = token }

func (f *fakeBackend) ClearBearer() { f.bearer = "" }

func newSession(t *testing.T, api auth.Backend) (*auth.Session, *tokenstore.Store) {
	t.Helper()
	tokens := tokenstore.New(kvstore.NewInMemory())
	s, err := auth.New(tokens, api)
	require.NoError(t, err)
	return s, tokens
}

func TestNewRequiresDependencies(t *testing.T) {
	_, err := auth.New(nil, &fakeBackend{})
	require.Error(t, err)
	_, err = auth.New(tokenstore.New(kvstore.NewInMemory()), nil)
	require.Error(t, err)
}

func TestInitializeWithoutTokenIsAnonymous(t *testing.T) {
	api := &fakeBackend{}
	s, _ := newSession(t, api)

	require.Equal(t, auth.State{Loading: true}, s.State())
	s.Initialize()
	require.Equal(t, auth.State{}, s.State())
	require.Empty(t, api.bearer)
}

func TestInitializeHydratesStoredToken(t *testing.T) {
	kv := kvstore.NewInMemory()
	tokenstore.New(kv).SetToken("stored-token", true, &users.User{ID: "3", Role: users.RoleDonor})

	api := &fakeBackend{}
	s, err := auth.New(tokenstore.New(kv), api)
	require.NoError(t, err)

	var transitions []auth.State
	cancel := s.Subscribe(func(st auth.State) { transitions = append(transitions, st) })
	defer cancel()

	before := s.State()
	require.True(t, before.Loading)
	require.False(t, before.IsAuthenticated)

	s.Initialize()

	after := s.State()
	require.False(t, after.Loading)
	require.True(t, after.IsAuthenticated)
	require.Equal(t, "stored-token", after.Token)
	require.Nil(t, after.User, "hydration does not restore the user")
	require.Equal(t, "stored-token", api.bearer)
	require.Equal(t, 0, api.calls, "hydration makes no backend call")
	require.Equal(t, []auth.State{after}, transitions)

	// The cached copy is still reachable for callers that need a profile
	require.Equal(t, "3", s.CurrentUser().ID)

	s.Initialize()
	require.Len(t, transitions, 1, "Initialize runs once")
}

func TestInitializeIgnoresExpiredToken(t *testing.T) {
	kv := kvstore.NewInMemory()
	require.NoError(t, kv.Set(tokenstore.StorageKey, `{"token":"old","expiresAt":1,"rememberMe":false}`))

	api := &fakeBackend{}
	s, err := auth.New(tokenstore.New(kv), api)
	require.NoError(t, err)
	s.Initialize()

	require.False(t, s.State().IsAuthenticated)
	require.Equal(t, 0, kv.Len())
}

func TestLoginSuccess(t *testing.T) {
	api := &fakeBackend{resp: &backend.LoginResponse{
		AccessToken: "fresh",
		Admin: backend.AdminRecord{
			ID:    "42",
			Email: "m@example.com",
			Name:  "Mo",
			Role:  []byte(`{"name":"manager"}`),
		},
	}}
	s, tokens := newSession(t, api)
	s.Initialize()

	result := s.Login(context.Background(), "m@example.com", "pw", false)
	require.True(t, result.Success)
	require.Equal(t, users.RoleManager, result.Role)
	require.Equal(t, &users.User{ID: "42", Email: "m@example.com", Name: "Mo", Role: users.RoleManager}, result.User)

	st := s.State()
	require.True(t, st.IsAuthenticated)
	require.Equal(t, "fresh", st.Token)
	require.Equal(t, result.User, st.User)
	require.Equal(t, "fresh", api.bearer)
	require.Equal(t, "fresh", tokens.GetToken())
	require.Equal(t, result.User, tokens.GetUser())

	info, ok := tokens.GetTokenInfo()
	require.True(t, ok)
	require.False(t, info.RememberMe)
}

func TestLoginFailureMessages(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"backend message", &backend.APIError{Status: 401, Message: "Account disabled"}, "Account disabled"},
		{"no message", &backend.APIError{Status: 500}, auth.DefaultLoginFailureMessage},
		{"network failure", errors.New("connection refused"), auth.DefaultLoginFailureMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &fakeBackend{err: tt.err}
			s, tokens := newSession(t, api)
			s.Initialize()

			result := s.Login(context.Background(), "a@b.c", "pw", true)
			require.False(t, result.Success)
			require.Equal(t, tt.want, result.Message)
			require.Nil(t, result.User)
			require.False(t, s.State().IsAuthenticated)
			require.True(t, tokens.IsTokenExpired())
		})
	}
}

func TestLoginWithoutRecognisableRole(t *testing.T) {
	api := &fakeBackend{resp: &backend.LoginResponse{AccessToken: "t", Admin: backend.AdminRecord{ID: "1"}}}
	s, _ := newSession(t, api)

	result := s.Login(context.Background(), "who@example.com", "pw", false)
	require.True(t, result.Success)
	require.Equal(t, users.Role(""), result.Role)
	require.Equal(t, "who@example.com", result.User.Email)
	require.Equal(t, "/login", routepolicy.DefaultDashboardPath(string(result.Role)))
	require.False(t, s.State().Loading)
}

func TestLogout(t *testing.T) {
	api := &fakeBackend{resp: &backend.LoginResponse{AccessToken: "t", Admin: backend.AdminRecord{ID: "1", Role: []byte(`"admin"`)}}}
	s, tokens := newSession(t, api)
	s.Initialize()
	require.True(t, s.Login(context.Background(), "a@b.c", "pw", true).Success)

	s.Logout()
	require.Equal(t, auth.State{}, s.State())
	require.Empty(t, api.bearer)
	require.Equal(t, "", tokens.GetToken())
	require.Nil(t, s.CurrentUser())

	require.NotPanics(t, s.Logout)
}

func TestHandleUnauthorized(t *testing.T) {
	api := &fakeBackend{resp: &backend.LoginResponse{AccessToken: "t", Admin: backend.AdminRecord{ID: "1", UserType: "donor"}}}
	s, tokens := newSession(t, api)
	s.Initialize()

	var notified int
	s.Subscribe(func(auth.State) { notified++ })

	s.HandleUnauthorized()
	require.Equal(t, 0, notified, "no transition when already signed out")

	require.True(t, s.Login(context.Background(), "a@b.c", "pw", false).Success)
	s.HandleUnauthorized()
	require.False(t, s.State().IsAuthenticated)
	require.Equal(t, "", tokens.GetToken())
	require.Equal(t, 2, notified)
}

func TestSubscribeCancel(t *testing.T) {
	s, _ := newSession(t, &fakeBackend{})
	var calls int
	cancel := s.Subscribe(func(auth.State) { calls++ })
	cancel()
	s.Initialize()
	require.Equal(t, 0, calls)
}

func TestLoginEndToEndWithRoleIDOnly(t *testing.T) {
	dev, err := devbackend.New(devbackend.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, err)
	srv := httptest.NewServer(dev)
	defer srv.Close()

	client := backend.New(srv.URL, backend.WithHTTPClient(srv.Client()))
	s, _ := newSession(t, client)
	s.Initialize()

	// The seeded manager answers with {"roleId": 2} and no role field
	result := s.Login(context.Background(), devbackend.DemoManagerEmail, devbackend.DemoPassword, true)
	require.True(t, result.Success, result.Message)
	require.Equal(t, users.RoleManager, result.Role)
	require.Equal(t, "/manager/Dashboard", routepolicy.DefaultDashboardPath(string(result.Role)))

	requests, err := client.BloodRequests(context.Background())
	require.NoError(t, err, "bearer credential is attached after login")
	require.NotEmpty(t, requests)

	bad := s.Login(context.Background(), devbackend.DemoManagerEmail, "wrong", false)
	require.False(t, bad.Success)
	require.Equal(t, "Invalid credentials", bad.Message)
}
