package devbackend_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jrsteele09/go-donor-portal/devbackend"
	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type fixture struct {
	srv   *devbackend.Server
	clock time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{clock: time.Now()}
	srv, err := devbackend.New(
		devbackend.WithPasswordCost(bcrypt.MinCost),
		devbackend.WithNowTime(func() time.Time { return f.clock }),
		devbackend.WithTokenTTL(time.Hour),
	)
	require.NoError(t, err)
	f.srv = srv
	return f
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.srv.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) login(t *testing.T, email string) (string, map[string]any) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": email, "password": devbackend.DemoPassword})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp struct {
		AccessToken string         `json:"access_token"`
		Admin       map[string]any `json:"admin"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.AccessToken)
	return resp.AccessToken, resp.Admin
}

func TestLoginServesEveryRoleShape(t *testing.T) {
	f := newFixture(t)

	_, admin := f.login(t, devbackend.DemoAdminEmail)
	require.Equal(t, map[string]any{"id": float64(1), "name": "admin"}, admin["role"])

	_, manager := f.login(t, devbackend.DemoManagerEmail)
	require.Equal(t, float64(2), manager["roleId"])
	require.NotContains(t, manager, "role")

	_, donor := f.login(t, devbackend.DemoDonorEmail)
	require.Equal(t, "donor", donor["userType"])

	_, user := f.login(t, devbackend.DemoUserEmail)
	require.Equal(t, "user", user["role"])
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": devbackend.DemoDonorEmail, "password": "wrong"})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.JSONEq(t, `{"message":"Invalid credentials"}`, rec.Body.String())

	rec = f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": ""})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileRequiresBearer(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/donors/profile", "", nil).Code)
	require.Equal(t, http.StatusUnauthorized, f.do(t, http.MethodGet, "/donors/profile", "garbage", nil).Code)

	token, _ := f.login(t, devbackend.DemoDonorEmail)
	rec := f.do(t, http.MethodGet, "/donors/profile", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"bloodType":"O-"`)
}

func TestExpiredTokenIsRejected(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, devbackend.DemoDonorEmail)

	f.clock = f.clock.Add(2 * time.Hour)
	rec := f.do(t, http.MethodGet, "/donors/profile", token, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSignerVerify(t *testing.T) {
	now := time.Now()
	signer := devbackend.NewHMACSigner("secret", time.Hour, func() time.Time { return now })
	token, err := signer.Issue(&devbackend.Account{ID: "7", Email: "a@b.c", Role: users.RoleDonor})
	require.NoError(t, err)

	sub, err := signer.Verify(token)
	require.NoError(t, err)
	require.Equal(t, "7", sub)

	_, err = devbackend.NewHMACSigner("other", time.Hour, func() time.Time { return now }).Verify(token)
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	_, err = signer.Verify("garbage")
	require.ErrorIs(t, err, apperrors.ErrInvalidToken)

	now = now.Add(2 * time.Hour)
	_, err = signer.Verify(token)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestMalformedLoginIsBadRequest(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/login", "", map[string]string{"email": devbackend.DemoDonorEmail})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.JSONEq(t, `{"message":"Email and password are required"}`, rec.Body.String())
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture(t)
	token, _ := f.login(t, devbackend.DemoDonorEmail)

	rec := f.do(t, http.MethodPatch, "/donors/profile", token, map[string]string{"city": "Paris"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"city":"Paris"`)

	rec = f.do(t, http.MethodPatch, "/donors/profile", token, map[string]string{"name": "  "})
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestHistoryAccess(t *testing.T) {
	f := newFixture(t)
	donorToken, _ := f.login(t, devbackend.DemoDonorEmail)
	userToken, _ := f.login(t, devbackend.DemoUserEmail)
	adminToken, _ := f.login(t, devbackend.DemoAdminEmail)

	rec := f.do(t, http.MethodGet, "/donors/3/history", donorToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var history []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &history))
	require.Len(t, history, 3)

	require.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/donors/3/history", userToken, nil).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/donors/3/history", adminToken, nil).Code)
	require.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/donors/99/history", adminToken, nil).Code)
}

func TestRoleRestrictedLists(t *testing.T) {
	f := newFixture(t)
	adminToken, _ := f.login(t, devbackend.DemoAdminEmail)
	managerToken, _ := f.login(t, devbackend.DemoManagerEmail)
	donorToken, _ := f.login(t, devbackend.DemoDonorEmail)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/donors", adminToken, nil).Code)
	require.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/donors", managerToken, nil).Code)

	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/requests", managerToken, nil).Code)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/requests", adminToken, nil).Code)
	require.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, "/requests", donorToken, nil).Code)
}
