package server

import (
	"encoding/json"
	"net/http"
)

// IndexHandler renders the home page
func (s *Server) IndexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, pageView{
			Title:    "Welcome",
			Active:   "home",
			Template: "index.html",
			Data:     map[string]any{"AppName": s.config.GetAppName()},
		})
	}
}

// AboutHandler renders the about page
func (s *Server) AboutHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusOK, pageView{Title: "About", Active: "about", Template: "about.html"})
	}
}

// UnauthorizedHandler renders the page shown to a signed in visitor who
// asked for another role's section
func (s *Server) UnauthorizedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderPage(w, r, http.StatusForbidden, pageView{Title: "Unauthorized", Template: "unauthorized.html"})
	}
}

func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":   "ok",
			"app":      s.config.GetAppName(),
			"sessions": s.sessions.Len(),
		})
	}
}
