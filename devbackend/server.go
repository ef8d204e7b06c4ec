// Package devbackend is a local stand-in for the donor platform REST API. It
// serves the endpoints the portal consumes so the portal, the CLI and the
// tests can run without the real backend.
package devbackend

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jrsteele09/go-donor-portal/backend"
	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/rs/zerolog/log"
)

type contextKey string

const contextKeyAccountID contextKey = "account_id"

// Server is the dev backend HTTP handler
type Server struct {
	mux      *http.ServeMux
	accounts *AccountRepo
	signer   *HMACSigner

	requestsLock sync.RWMutex
	requests     []backend.BloodRequest
}

// Option configures a Server
type Option func(*options)

type options struct {
	secret       string
	tokenTTL     time.Duration
	nowFunc      func() time.Time
	passwordCost int
	skipSeed     bool
}

// WithSecret sets the HMAC signing secret
func WithSecret(secret string) Option {
	return func(o *options) { o.secret = secret }
}

// WithTokenTTL sets the lifetime of issued access tokens
func WithTokenTTL(ttl time.Duration) Option {
	return func(o *options) { o.tokenTTL = ttl }
}

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) Option {
	return func(o *options) { o.nowFunc = nowFunc }
}

// WithPasswordCost sets the bcrypt cost; tests use bcrypt.MinCost
func WithPasswordCost(cost int) Option {
	return func(o *options) { o.passwordCost = cost }
}

// WithoutSeed starts with no accounts
func WithoutSeed() Option {
	return func(o *options) { o.skipSeed = true }
}

// New creates a dev backend, seeded with the demo accounts unless WithoutSeed is given
func New(opts ...Option) (*Server, error) {
	o := options{
		secret:   "dev-secret",
		tokenTTL: time.Hour,
		nowFunc:  time.Now,
	}
	for _, opt := range opts {
		opt(&o)
	}

	s := &Server{
		mux:      http.NewServeMux(),
		accounts: NewAccountRepo(o.passwordCost),
		signer:   NewHMACSigner(o.secret, o.tokenTTL, o.nowFunc),
	}
	if !o.skipSeed {
		if err := s.Seed(); err != nil {
			return nil, err
		}
	}
	s.initRoutes()
	return s, nil
}

// Accounts exposes the account repo for seeding
func (s *Server) Accounts() *AccountRepo {
	return s.accounts
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) initRoutes() {
	s.mux.HandleFunc("POST "+backend.RouteLogin, s.LoginHandler())
	s.mux.HandleFunc("GET "+backend.RouteDonorProfile, s.requireAuth(s.ProfileHandler()))
	s.mux.HandleFunc("PATCH "+backend.RouteDonorProfile, s.requireAuth(s.UpdateProfileHandler()))
	s.mux.HandleFunc("GET "+backend.RouteDonors+"/{id}/history", s.requireAuth(s.HistoryHandler()))
	s.mux.HandleFunc("GET "+backend.RouteDonors, s.requireAuth(s.requireRole(s.DonorsHandler(), users.RoleAdmin)))
	s.mux.HandleFunc("GET "+backend.RouteBloodRequests, s.requireAuth(s.requireRole(s.BloodRequestsHandler(), users.RoleAdmin, users.RoleManager)))
}

// LoginHandler exchanges credentials for an access token
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req backend.LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeAppError(w, apperrors.ErrInvalidRequest, "Invalid request body")
			return
		}
		if req.Email == "" || req.Password == "" {
			writeAppError(w, apperrors.ErrInvalidRequest, "Email and password are required")
			return
		}

		account, err := s.accounts.Authenticate(req.Email, req.Password)
		if err != nil {
			writeAppError(w, err, "Invalid credentials")
			return
		}

		token, err := s.signer.Issue(account)
		if err != nil {
			log.Err(err).Msg("devbackend: failed to issue token")
			writeAppError(w, apperrors.ErrInternal, "Could not issue token")
			return
		}

		writeJSON(w, http.StatusOK, map[string]any{
			"access_token": token,
			"admin":        account.adminRecord(),
		})
	}
}

func (s *Server) ProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := s.currentAccount(w, r)
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, account.Profile)
	}
}

func (s *Server) UpdateProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := s.currentAccount(w, r)
		if !ok {
			return
		}
		var update backend.ProfileUpdate
		if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
			writeAppError(w, apperrors.ErrInvalidRequest, "Invalid request body")
			return
		}
		if update.Name != nil && strings.TrimSpace(*update.Name) == "" {
			writeError(w, http.StatusUnprocessableEntity, "Name cannot be empty")
			return
		}
		profile, err := s.accounts.UpdateProfile(account.ID, update)
		if err != nil {
			writeAppError(w, err, "Profile not found")
			return
		}
		writeJSON(w, http.StatusOK, profile)
	}
}

// HistoryHandler returns a donor's history. Donors may only read their own.
func (s *Server) HistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		caller, ok := s.currentAccount(w, r)
		if !ok {
			return
		}
		id := r.PathValue("id")
		if caller.ID != id && caller.Role != users.RoleAdmin {
			writeAppError(w, apperrors.ErrForbidden, "Not allowed to view this history")
			return
		}
		donor, err := s.accounts.GetByID(id)
		if err != nil {
			writeAppError(w, err, "Donor not found")
			return
		}
		history := donor.History
		if history == nil {
			history = []backend.Donation{}
		}
		writeJSON(w, http.StatusOK, history)
	}
}

func (s *Server) DonorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.accounts.Donors())
	}
}

func (s *Server) BloodRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.requestsLock.RLock()
		defer s.requestsLock.RUnlock()
		requests := append([]backend.BloodRequest{}, s.requests...)
		writeJSON(w, http.StatusOK, requests)
	}
}

// requireAuth validates the Bearer access token
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
			writeAppError(w, apperrors.ErrUnauthorized, "Missing or invalid Authorization header")
			return
		}
		accountID, err := s.signer.Verify(parts[1])
		if err != nil {
			writeAppError(w, err, "Invalid or expired token")
			return
		}
		ctx := context.WithValue(r.Context(), contextKeyAccountID, accountID)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) requireRole(next http.HandlerFunc, allowed ...users.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		account, ok := s.currentAccount(w, r)
		if !ok {
			return
		}
		for _, role := range allowed {
			if account.Role == role {
				next(w, r)
				return
			}
		}
		writeAppError(w, apperrors.ErrForbidden, "Insufficient role")
	}
}

func (s *Server) currentAccount(w http.ResponseWriter, r *http.Request) (*Account, bool) {
	id, _ := r.Context().Value(contextKeyAccountID).(string)
	account, err := s.accounts.GetByID(id)
	if err != nil {
		writeAppError(w, apperrors.ErrUnauthorized, "Unknown account")
		return nil, false
	}
	return account, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("devbackend: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeAppError answers with the status matching err's sentinel
func writeAppError(w http.ResponseWriter, err error, message string) {
	writeError(w, statusForError(err), message)
}

func statusForError(err error) int {
	switch {
	case apperrors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest
	case apperrors.Is(err, apperrors.ErrInvalidCredentials),
		apperrors.Is(err, apperrors.ErrUnauthorized),
		apperrors.Is(err, apperrors.ErrInvalidToken),
		apperrors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized
	case apperrors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case apperrors.Is(err, apperrors.ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
