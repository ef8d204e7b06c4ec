package server

import "net/http"

// ManagerDashboardHandler renders the manager dashboard
func (s *Server) ManagerDashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Manager dashboard",
			Active:   RouteManagerDashboard,
			Template: "manager_dashboard.html",
			Data:     map[string]any{"User": currentUser(r)},
		})
	}
}

// ManagerRequestsHandler lists the open blood requests
func (s *Server) ManagerRequestsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session := sessionFromContext(r.Context())
		requests, err := session.API.BloodRequests(r.Context())
		if err != nil {
			s.handleBackendError(w, r, session, err)
			return
		}
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Blood requests",
			Active:   RouteManagerRequests,
			Template: "manager_requests.html",
			Data:     map[string]any{"Requests": requests},
		})
	}
}
