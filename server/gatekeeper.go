package server

import (
	"net/http"

	"github.com/jrsteele09/go-donor-portal/routepolicy"
	"github.com/rs/zerolog/log"
)

// Section is a role-guarded area of the portal. Which role it needs follows
// from the request path; the section only decides how a visitor with the
// wrong role is answered.
type Section struct {
	Name        string
	OnForbidden http.HandlerFunc
}

// RequireSection gates a page before anything is rendered: a wait page while
// the session hydrates, the login page when signed out, OnForbidden for
// another role.
func (s *Server) RequireSection(section Section) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			session := sessionFromContext(r.Context())
			if session == nil {
				http.Error(w, "500 - Internal Server Error", http.StatusInternalServerError)
				return
			}

			state := s.awaitHydration(r.Context(), session.Auth)
			visitor := routepolicy.Visitor{
				Loading:         state.Loading,
				IsAuthenticated: state.IsAuthenticated,
			}
			if user := session.Auth.CurrentUser(); user != nil {
				visitor.Role = string(user.Role)
			}

			decision := routepolicy.Guard(visitor, r.URL.Path)
			switch decision.Outcome {
			case routepolicy.Wait:
				s.renderWait(w, r)
			case routepolicy.RedirectTo:
				redirectSuccess(w, r, decision.Location)
			case routepolicy.Forbidden:
				log.Info().Str("section", section.Name).Str("role", visitor.Role).Str("path", r.URL.Path).Msg("role not allowed in section")
				if section.OnForbidden == nil {
					redirectSuccess(w, r, decision.Location)
					return
				}
				section.OnForbidden(w, r)
			default:
				next(w, r)
			}
		}
	}
}

// redirectUnauthorized sends the visitor to the unauthorized page
func (s *Server) redirectUnauthorized(w http.ResponseWriter, r *http.Request) {
	redirectSuccess(w, r, RouteUnauthorized)
}

// renderEmptyLayout renders the section layout with no page content
func (s *Server) renderEmptyLayout(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, http.StatusForbidden, pageView{Title: "Dashboard"})
}
