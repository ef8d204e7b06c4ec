package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/go-donor-portal/auth"
	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/internal/config"
	"github.com/jrsteele09/go-donor-portal/kvstore"
	"github.com/jrsteele09/go-donor-portal/server/loginsession"
	"github.com/jrsteele09/go-donor-portal/tokenstore"
	"github.com/rs/zerolog/log"
)

const defaultHydrationWait = 2 * time.Second

// Server is the donor portal. It keeps one auth session per browser, backed
// by that browser's namespace of the storage.
type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	store       kvstore.Store
	sessions    loginsession.Repo
	httpClient  *http.Client
	hydrateWait time.Duration
}

// Option configures a Server
type Option func(*Server)

// WithHTTPClient sets the client used to reach the backend API
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Server) {
		s.httpClient = hc
	}
}

// WithSessionRepo replaces the in-memory per-browser session repo
func WithSessionRepo(repo loginsession.Repo) Option {
	return func(s *Server) {
		s.sessions = repo
	}
}

// WithHydrationWait bounds how long a request waits for a new session to
// finish hydrating before the wait page is served instead
func WithHydrationWait(d time.Duration) Option {
	return func(s *Server) {
		s.hydrateWait = d
	}
}

func New(config config.Config, store kvstore.Store, options ...Option) (*Server, error) {
	if config == nil {
		return nil, errors.New("[Server New] config is required")
	}
	if store == nil {
		return nil, errors.New("[Server New] store is required")
	}

	s := &Server{
		mux:         http.NewServeMux(),
		config:      config,
		store:       store,
		sessions:    loginsession.NewInMemoryLoginSessionRepo(),
		hydrateWait: defaultHydrationWait,
	}
	for _, opt := range options {
		opt(s)
	}
	s.env = config.GetEnv()

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

// Sessions returns the per-browser session repo
func (s *Server) Sessions() loginsession.Repo {
	return s.sessions
}

// RunJanitor drops browser sessions idle for longer than idle, every interval,
// until ctx is done.
func (s *Server) RunJanitor(ctx context.Context, interval, idle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.sessions.Prune(now.Add(-idle)); n > 0 {
				log.Debug().Int("pruned", n).Int("remaining", s.sessions.Len()).Msg("pruned idle browser sessions")
			}
		}
	}
}

// loginSession returns the session of browserID, creating and starting the
// hydration of a new one when needed.
func (s *Server) loginSession(browserID string) (*loginsession.Session, error) {
	session, created, err := s.sessions.GetOrCreate(browserID, func() (*loginsession.Session, error) {
		return s.newLoginSession(browserID)
	})
	if err != nil {
		return nil, err
	}
	if created {
		go session.Auth.Initialize()
	}
	return session, nil
}

func (s *Server) newLoginSession(browserID string) (*loginsession.Session, error) {
	tokens := tokenstore.New(
		kvstore.Namespace(s.store, "browser:"+browserID),
		tokenstore.WithTTLs(s.config.GetShortTokenTTL(), s.config.GetRememberTokenTTL()),
	)

	var clientOptions []backend.Option
	if s.httpClient != nil {
		clientOptions = append(clientOptions, backend.WithHTTPClient(s.httpClient))
	}
	clientOptions = append(clientOptions, backend.WithTimeout(s.config.GetAPITimeout()))
	api := backend.New(s.config.GetAPIBaseURL(), clientOptions...)

	authSession, err := auth.New(tokens, api)
	if err != nil {
		return nil, fmt.Errorf("[Server newLoginSession] %w", err)
	}
	return &loginsession.Session{Auth: authSession, API: api}, nil
}

// awaitHydration waits up to the hydration budget for the session to leave
// the loading state and returns the latest snapshot.
func (s *Server) awaitHydration(ctx context.Context, session *auth.Session) auth.State {
	hydrated := make(chan auth.State, 1)
	cancel := session.Subscribe(func(state auth.State) {
		if state.Loading {
			return
		}
		select {
		case hydrated <- state:
		default:
		}
	})
	defer cancel()

	if state := session.State(); !state.Loading {
		return state
	}

	timer := time.NewTimer(s.hydrateWait)
	defer timer.Stop()
	select {
	case state := <-hydrated:
		return state
	case <-timer.C:
	case <-ctx.Done():
	}
	return session.State()
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	var displayMethod string
	paddedMethod := fmt.Sprintf(" %-7s", method)
	if color, ok := methodColors[method]; ok {
		displayMethod = color + paddedMethod + ResetColor
	} else {
		displayMethod = Gray + paddedMethod + ResetColor
	}
	log.Info().Msgf("[%-19s] %s", displayMethod, path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
