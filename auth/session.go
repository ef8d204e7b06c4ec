// Package auth holds the process-wide answer to "who is the current visitor
// and are they signed in". A Session is created per browser (or per CLI
// profile) and handed to whatever needs it; there is no global instance.
package auth

import (
	"context"
	"errors"
	"sync"

	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/rs/zerolog/log"
)

// DefaultLoginFailureMessage is returned when the backend gives no reason
const DefaultLoginFailureMessage = "Invalid email or password."

// Backend is the part of the REST client the session drives
type Backend interface {
	Login(ctx context.Context, email, password string) (*backend.LoginResponse, error)
	SetBearer(token string)
	ClearBearer()
}

// TokenStore is the durable token slot
type TokenStore interface {
	SetToken(token string, rememberMe bool, user *users.User)
	GetToken() string
	RemoveToken()
	GetUser() *users.User
}

// State is an observable snapshot of the session.
//
// Loading is true until Initialize has finished. IsAuthenticated only means a
// token is held in memory; the token is not verified with the backend.
type State struct {
	User            *users.User
	Token           string
	Loading         bool
	IsAuthenticated bool
}

// LoginResult is the outcome of Login. Message is set when Success is false.
type LoginResult struct {
	Success bool
	User    *users.User
	Role    users.Role
	Message string
}

// Session is the auth context of one visitor
type Session struct {
	tokens     TokenStore
	api        Backend
	strategies []RoleStrategy

	mu          sync.RWMutex
	user        *users.User
	token       string
	loading     bool
	initialized bool

	observersLock sync.Mutex
	observers     map[int]func(State)
	nextObserver  int
}

// Option configures a Session
type Option func(*Session)

// WithRoleStrategies replaces the default role extraction order
func WithRoleStrategies(strategies ...RoleStrategy) Option {
	return func(s *Session) {
		s.strategies = strategies
	}
}

// New creates a session in the Initializing state
func New(tokens TokenStore, api Backend, options ...Option) (*Session, error) {
	if tokens == nil {
		return nil, errors.New("[auth.New] token store is required")
	}
	if api == nil {
		return nil, errors.New("[auth.New] backend is required")
	}
	s := &Session{
		tokens:     tokens,
		api:        api,
		strategies: DefaultRoleStrategies,
		loading:    true,
		observers:  make(map[int]func(State)),
	}
	for _, opt := range options {
		opt(s)
	}
	return s, nil
}

// Initialize hydrates the session from the token store. A stored token is
// adopted as-is and becomes the backend's default bearer credential; the
// user is not restored. Calls after the first do nothing.
func (s *Session) Initialize() {
	s.mu.Lock()
	if s.initialized {
		s.mu.Unlock()
		return
	}
	s.initialized = true

	if token := s.tokens.GetToken(); token != "" {
		s.token = token
		s.api.SetBearer(token)
	}
	s.loading = false
	state := s.snapshot()
	s.mu.Unlock()

	s.notify(state)
}

// Login authenticates against the backend. On success the token is persisted
// (30 days when rememberMe, else 7), becomes the default bearer credential
// and the user is held in memory.
func (s *Session) Login(ctx context.Context, email, password string, rememberMe bool) LoginResult {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		message := backend.MessageOf(err)
		if message == "" {
			message = DefaultLoginFailureMessage
		}
		log.Info().Err(err).Str("email", email).Msg("login rejected")
		return LoginResult{Message: message}
	}

	match, ok := ResolveRoleWith(resp.Admin, s.strategies...)
	if !ok {
		log.Warn().Str("email", email).Msg("login response carried no recognisable role")
	}
	user := &users.User{
		ID:    resp.Admin.ID.String(),
		Email: resp.Admin.Email,
		Name:  resp.Admin.DisplayName(),
		Role:  match.Role,
	}
	if user.Email == "" {
		user.Email = email
	}

	s.tokens.SetToken(resp.AccessToken, rememberMe, user)

	s.mu.Lock()
	s.token = resp.AccessToken
	s.user = user
	s.api.SetBearer(resp.AccessToken)
	s.initialized = true
	s.loading = false
	state := s.snapshot()
	s.mu.Unlock()

	s.notify(state)

	log.Info().Str("user_id", user.ID).Str("role", string(match.Role)).Str("role_source", string(match.Source)).Msg("user logged in")
	return LoginResult{Success: true, User: user.Clone(), Role: match.Role}
}

// Logout forgets the user and token, deletes the stored record and clears
// the bearer credential. No network call is made.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.tokens.RemoveToken()
	s.api.ClearBearer()
	state := s.snapshot()
	s.mu.Unlock()

	s.notify(state)
}

// HandleUnauthorized is called when the backend rejects the held token
func (s *Session) HandleUnauthorized() {
	if !s.State().IsAuthenticated {
		return
	}
	log.Info().Msg("backend rejected session token, logging out")
	s.Logout()
}

// State returns a snapshot of the session
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

// CurrentUser returns the in-memory user, falling back to the copy cached
// next to the token. Nil when signed out.
func (s *Session) CurrentUser() *users.User {
	s.mu.RLock()
	user, token := s.user, s.token
	s.mu.RUnlock()

	if user != nil {
		return user.Clone()
	}
	if token == "" {
		return nil
	}
	return s.tokens.GetUser()
}

// Subscribe registers fn to be called with the new state after every
// transition. The returned func unregisters it.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.observersLock.Lock()
	defer s.observersLock.Unlock()

	id := s.nextObserver
	s.nextObserver++
	s.observers[id] = fn
	return func() {
		s.observersLock.Lock()
		defer s.observersLock.Unlock()
		delete(s.observers, id)
	}
}

func (s *Session) snapshot() State {
	return State{
		User:            s.user.Clone(),
		Token:           s.token,
		Loading:         s.loading,
		IsAuthenticated: s.token != "",
	}
}

func (s *Session) notify(state State) {
	s.observersLock.Lock()
	observers := make([]func(State), 0, len(s.observers))
	for _, fn := range s.observers {
		observers = append(observers, fn)
	}
	s.observersLock.Unlock()

	for _, fn := range observers {
		fn(state)
	}
}
