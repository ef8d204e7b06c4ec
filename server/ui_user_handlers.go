package server

import "net/http"

// UserHomeHandler renders the landing page of plain users
func (s *Server) UserHomeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Home",
			Active:   RouteUserHome,
			Template: "user_home.html",
			Data:     map[string]any{"User": currentUser(r)},
		})
	}
}
