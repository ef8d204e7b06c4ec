package server

import (
	"context"
	"net/http"
	"net/url"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-donor-portal/server/loginsession"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/rs/zerolog/log"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const (
	// ContextKeyBrowserID stores the browser ID from the browser cookie
	ContextKeyBrowserID ContextKey = "browser_id"
	// ContextKeySession stores the browser's *loginsession.Session
	ContextKeySession ContextKey = "session"
)

// BrowserSessionMiddleware identifies the browser by a long-lived cookie,
// issuing one on the first visit, and puts its session in the request context.
func (s *Server) BrowserSessionMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		browserID := ""
		if cookie, err := r.Cookie(s.config.GetBrowserCookieName()); err == nil {
			if id, err := uuid.Parse(cookie.Value); err == nil {
				browserID = id.String()
			}
		}
		if browserID == "" {
			browserID = uuid.NewString()
			s.SetBrowserCookie(w, browserID, r)
		}

		session, err := s.loginSession(browserID)
		if err != nil {
			log.Err(err).Msg("failed to open browser session")
			http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
			return
		}

		ctx := context.WithValue(r.Context(), ContextKeyBrowserID, browserID)
		ctx = context.WithValue(ctx, ContextKeySession, session)
		next(w, r.WithContext(ctx))
	}
}

func (s *Server) SetBrowserCookie(w http.ResponseWriter, browserID string, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.config.GetBrowserCookieName(),
		Value:    browserID,
		Path:     "/",
		HttpOnly: true,
		Secure:   getScheme(r) == "https",
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.config.GetBrowserCookieMaxAge().Seconds()),
	})
}

func sessionFromContext(ctx context.Context) *loginsession.Session {
	session, _ := ctx.Value(ContextKeySession).(*loginsession.Session)
	return session
}

func browserIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(ContextKeyBrowserID).(string)
	return id
}

// currentUser returns the signed in user of the request, if any
func currentUser(r *http.Request) *users.User {
	session := sessionFromContext(r.Context())
	if session == nil {
		return nil
	}
	return session.Auth.CurrentUser()
}

// redirectSuccess helper for htmx-aware success redirects
func redirectSuccess(w http.ResponseWriter, r *http.Request, path string) {
	if isHTMXRequest(r) {
		w.Header().Set("HX-Redirect", path)
		w.WriteHeader(http.StatusNoContent) // 204 - no content, just redirect instruction
		return
	}
	http.Redirect(w, r, path, http.StatusSeeOther)
}

// redirectWithError helper for htmx-aware error redirects
func redirectWithError(w http.ResponseWriter, r *http.Request, path, errorMsg string) {
	redirectSuccess(w, r, path+"?error="+url.QueryEscape(errorMsg))
}

// isHTMXRequest checks if the request was initiated by HTMX
func isHTMXRequest(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
