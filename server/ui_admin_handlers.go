package server

import (
	"net/http"

	"github.com/jrsteele09/go-donor-portal/backend"
	apperrors "github.com/jrsteele09/go-donor-portal/internal/errors"
	"github.com/jrsteele09/go-donor-portal/server/loginsession"
	"github.com/rs/zerolog/log"
)

const sessionExpiredMessage = "Your session has expired. Please sign in again."

// handleBackendError answers a failed backend call. A 401 means the held
// token is no longer accepted, so the browser is signed out.
func (s *Server) handleBackendError(w http.ResponseWriter, r *http.Request, session *loginsession.Session, err error) {
	if backend.IsUnauthorized(err) {
		session.Auth.HandleUnauthorized()
		redirectWithError(w, r, RouteLogin, sessionExpiredMessage)
		return
	}
	if apperrors.Is(err, apperrors.ErrForbidden) {
		s.renderError(w, r, http.StatusForbidden, "You do not have access to this information.")
		return
	}
	event := log.Err(err).Str("path", r.URL.Path)
	var apiErr *backend.APIError
	if apperrors.As(err, &apiErr) {
		event = event.Int("status", apiErr.Status)
	}
	event.Msg("backend request failed")
	s.renderError(w, r, http.StatusBadGateway, "The donor service is unavailable. Please try again later.")
}

// AdminDashboardHandler renders the admin dashboard
func (s *Server) AdminDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Admin dashboard",
			Active:   RouteAdminDashboard,
			Template: "admin_dashboard.html",
			Data:     map[string]any{"User": currentUser(r)},
		})
	}
}

// AdminDonorsHandler lists every registered donor
func (s *Server) AdminDonorsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		donors, err := session.API.Donors(r.Context())
		if err != nil {
			s.handleBackendError(w, r, session, err)
			return
		}
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Donors",
			Active:   RouteAdminDonors,
			Template: "admin_donors.html",
			Data:     map[string]any{"Donors": donors},
		})
	}
}
