package server

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/jrsteele09/go-donor-portal/routepolicy"
	"github.com/rs/zerolog/log"
)

// LoginPageData contains data for rendering the login page
type LoginPageData struct {
	Error      string
	Email      string // Preserve email on error
	RememberMe bool
}

// LoginPageUIHandler displays the login page (GET /login). A visitor who is
// already signed in with a known role goes straight to their dashboard.
func (s *Server) LoginPageUIHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session := sessionFromContext(r.Context()); session != nil {
			state := s.awaitHydration(r.Context(), session.Auth)
			if user := session.Auth.CurrentUser(); state.IsAuthenticated && user != nil {
				if path := routepolicy.DefaultDashboardPath(string(user.Role)); path != RouteLogin {
					redirectSuccess(w, r, path)
					return
				}
			}
		}

		query := r.URL.Query()
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Sign in",
			Active:   "login",
			Template: "login.html",
			Data: LoginPageData{
				Error:      query.Get("error"),
				Email:      query.Get("email"),
				RememberMe: query.Get("remember") == "on",
			},
		})
	}
}

// LoginSubmissionHandler processes the login form submission
func (s *Server) LoginSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if session == nil {
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		email := strings.TrimSpace(r.FormValue("email"))
		password := r.FormValue("password")
		rememberMe := r.FormValue("remember") == "on"

		if email == "" || password == "" {
			s.renderLoginError(w, r, "Email and password are required", email, rememberMe)
			return
		}

		result := session.Auth.Login(r.Context(), email, password, rememberMe)
		if !result.Success {
			s.renderLoginError(w, r, result.Message, email, rememberMe)
			return
		}

		path := routepolicy.DefaultDashboardPath(string(result.Role))
		log.Debug().Str("browser_id", browserIDFromContext(r.Context())).Str("redirect", path).Msg("login succeeded")
		redirectSuccess(w, r, path)
	}
}

// LogoutHandler signs the browser out and discards its server-side session
func (s *Server) LogoutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if session := sessionFromContext(r.Context()); session != nil {
			session.Auth.Logout()
			if err := s.sessions.Delete(session.BrowserID); err != nil {
				log.Err(err).Msg("Logout: failed to delete browser session")
			}
		}
		redirectSuccess(w, r, RouteIndex)
	}
}

// renderLoginError redirects to login page with an error message
func (s *Server) renderLoginError(w http.ResponseWriter, r *http.Request, errorMsg, email string, rememberMe bool) {
	query := url.Values{}
	query.Set("error", errorMsg)
	if email != "" {
		query.Set("email", email)
	}
	if rememberMe {
		query.Set("remember", "on")
	}
	redirectSuccess(w, r, RouteLogin+"?"+query.Encode())
}
