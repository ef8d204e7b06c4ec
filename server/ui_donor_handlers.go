package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/go-donor-portal/backend"
	"github.com/jrsteele09/go-donor-portal/internal/utils"
	"github.com/rs/zerolog/log"
)

// DonorDashboardHandler renders the donor dashboard
func (s *Server) DonorDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Donor dashboard",
			Active:   RouteDonorDashboard,
			Template: "donor_dashboard.html",
			Data:     map[string]any{"User": currentUser(r)},
		})
	}
}

// DonorProfileHandler shows the donor's profile form
func (s *Server) DonorProfileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		profile, err := session.API.Profile(r.Context())
		if err != nil {
			s.handleBackendError(w, r, session, err)
			return
		}
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "My profile",
			Active:   RouteDonorProfile,
			Template: "donor_profile.html",
			Data: map[string]any{
				"Profile": profile,
				"Saved":   r.URL.Query().Get("saved") == "1",
				"Error":   r.URL.Query().Get("error"),
			},
		})
	}
}

// DonorProfileUpdateHandler saves the profile form. Blank fields are left unchanged.
func (s *Server) DonorProfileUpdateHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		var update backend.ProfileUpdate
		if name := strings.TrimSpace(r.FormValue("name")); name != "" {
			update.Name = utils.Ptr(name)
		}
		if phone := strings.TrimSpace(r.FormValue("phone")); phone != "" {
			update.Phone = utils.Ptr(phone)
		}
		if city := strings.TrimSpace(r.FormValue("city")); city != "" {
			update.City = utils.Ptr(city)
		}

		profile, err := session.API.UpdateProfile(r.Context(), update)
		if err != nil {
			if msg := backend.MessageOf(err); msg != "" && !backend.IsUnauthorized(err) {
				redirectWithError(w, r, RouteDonorProfile, msg)
				return
			}
			s.handleBackendError(w, r, session, err)
			return
		}

		log.Info().Str("donor_id", profile.ID.String()).Msg("donor profile updated")
		redirectSuccess(w, r, RouteDonorProfile+"?saved=1")
	}
}

// DonorHistoryHandler lists the donor's past donations
func (s *Server) DonorHistoryHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		user := session.Auth.CurrentUser()
		if user == nil || user.ID == "" {
			redirectWithError(w, r, RouteLogin, sessionExpiredMessage)
			return
		}
		donations, err := session.API.History(r.Context(), user.ID)
		if err != nil {
			s.handleBackendError(w, r, session, err)
			return
		}
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Donation history",
			Active:   RouteDonorHistory,
			Template: "donor_history.html",
			Data:     map[string]any{"Donations": donations},
		})
	}
}
