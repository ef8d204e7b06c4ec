package backend_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/devbackend"
	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newDevAPI(t *testing.T) *httptest.Server {
	t.Helper()
	dev, err := devbackend.New(devbackend.WithPasswordCost(bcrypt.MinCost))
	require.NoError(t, err)
	srv := httptest.NewServer(dev)
	t.Cleanup(srv.Close)
	return srv
}

func TestLoginAndBearerPropagation(t *testing.T) {
	srv := newDevAPI(t)
	client := backend.New(srv.URL, backend.WithHTTPClient(srv.Client()))
	ctx := context.Background()

	_, err := client.Profile(ctx)
	require.True(t, backend.IsUnauthorized(err))

	resp, err := client.Login(ctx, devbackend.DemoDonorEmail, devbackend.DemoPassword)
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "3", resp.Admin.ID.String())
	require.Equal(t, "donor", resp.Admin.UserType)
	require.Empty(t, client.Bearer(), "login alone does not set the default credential")

	client.SetBearer(resp.AccessToken)
	profile, err := client.Profile(ctx)
	require.NoError(t, err)
	require.Equal(t, "Dana Donor", profile.Name)

	history, err := client.History(ctx, profile.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 3)

	city := "Grenoble"
	updated, err := client.UpdateProfile(ctx, backend.ProfileUpdate{City: &city})
	require.NoError(t, err)
	require.Equal(t, "Grenoble", updated.City)

	client.ClearBearer()
	_, err = client.Profile(ctx)
	require.True(t, backend.IsUnauthorized(err))
}

func TestLoginFailureCarriesBackendMessage(t *testing.T) {
	srv := newDevAPI(t)
	client := backend.New(srv.URL, backend.WithHTTPClient(srv.Client()))

	_, err := client.Login(context.Background(), devbackend.DemoDonorEmail, "nope")
	require.Error(t, err)
	require.Equal(t, "Invalid credentials", backend.MessageOf(err))

	var apiErr *backend.APIError
	require.ErrorAs(t, err, &apiErr)
	require.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestErrorPayloadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"message field", `{"message":"Account locked"}`, "Account locked"},
		{"error field", `{"error":"Too many attempts"}`, "Too many attempts"},
		{"not json", `<html>oops</html>`, ""},
		{"empty", ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := backend.New(srv.URL).Login(context.Background(), "a@b.c", "x")
			require.Error(t, err)
			require.Equal(t, tt.want, backend.MessageOf(err))
			require.False(t, backend.IsUnauthorized(err))
		})
	}
}

func TestBearerHeaderIsSentOnEveryRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.Header.Get("Authorization"))
		_ = json.NewEncoder(w).Encode([]any{})
	}))
	defer srv.Close()

	client := backend.New(srv.URL, backend.WithTimeout(time.Second))
	ctx := context.Background()

	_, err := client.Donors(ctx)
	require.NoError(t, err)
	client.SetBearer("abc")
	_, err = client.Donors(ctx)
	require.NoError(t, err)
	_, err = client.BloodRequests(ctx)
	require.NoError(t, err)

	require.Equal(t, []string{"", "Bearer abc", "Bearer abc"}, seen)
}

func TestMissingAccessTokenIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"admin":{"id":1}}`))
	}))
	defer srv.Close()

	_, err := backend.New(srv.URL).Login(context.Background(), "a@b.c", "x")
	require.Error(t, err)
}

func TestFlexStringAcceptsNumbersAndStrings(t *testing.T) {
	var rec backend.AdminRecord
	require.NoError(t, json.Unmarshal([]byte(`{"id": 42, "roleId": "2"}`), &rec))
	require.Equal(t, "42", rec.ID.String())
	require.Equal(t, "2", rec.RoleID.String())

	require.NoError(t, json.Unmarshal([]byte(`{"id": "abc", "roleId": null}`), &rec))
	require.Equal(t, "abc", rec.ID.String())
	require.Nil(t, rec.RoleID)
}

func TestStatusMapsToSentinel(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, apperrors.ErrInvalidRequest},
		{http.StatusUnprocessableEntity, apperrors.ErrInvalidRequest},
		{http.StatusUnauthorized, apperrors.ErrUnauthorized},
		{http.StatusForbidden, apperrors.ErrForbidden},
		{http.StatusNotFound, apperrors.ErrNotFound},
		{http.StatusBadGateway, apperrors.ErrInternal},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := backend.New(srv.URL, backend.WithHTTPClient(srv.Client()))
			_, err := client.Profile(context.Background())
			require.ErrorIs(t, err, tt.want)

			var apiErr *backend.APIError
			require.True(t, apperrors.As(err, &apiErr))
			require.Equal(t, tt.status, apiErr.Status)
		})
	}
}
