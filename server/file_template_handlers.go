package server

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/jrsteele09/go-donor-portal/routepolicy"
	"github.com/jrsteele09/go-donor-portal/users"
	"github.com/rs/zerolog/log"
)

const contentTypeHTML = "text/html; charset=utf-8"

//go:embed templates/*
var templateFiles embed.FS

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a template from the embedded filesystem
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(TemplateFilesFS(), name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Parse(string(content))
}

// pageView describes one page rendered inside the layout. An empty Template
// renders the layout alone.
type pageView struct {
	Title    string
	Active   string
	Template string
	Data     any
}

type navLink struct {
	Path  string
	Label string
}

// navFor returns the section navigation of a role
func navFor(role users.Role) []navLink {
	switch {
	case role.Is(users.RoleAdmin):
		return []navLink{{RouteAdminDashboard, "Dashboard"}, {RouteAdminDonors, "Donors"}}
	case role.Is(users.RoleManager):
		return []navLink{{RouteManagerDashboard, "Dashboard"}, {RouteManagerRequests, "Blood requests"}}
	case role.Is(users.RoleDonor):
		return []navLink{{RouteDonorDashboard, "Dashboard"}, {RouteDonorProfile, "Profile"}, {RouteDonorHistory, "History"}}
	case role.Is(users.RoleUser):
		return []navLink{{RouteUserHome, "Home"}}
	default:
		return nil
	}
}

// renderPage renders view inside the portal layout
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, status int, view pageView) {
	var content bytes.Buffer
	if view.Template != "" {
		contentTmpl, err := ParseTemplate(view.Template)
		if err != nil {
			log.Err(err).Str("template", view.Template).Msg("Failed to parse content template")
			http.Error(w, "Failed to load content template", http.StatusInternalServerError)
			return
		}
		if err := contentTmpl.Execute(&content, view.Data); err != nil {
			log.Err(err).Str("template", view.Template).Msg("Failed to render content template")
			http.Error(w, "Failed to render content", http.StatusInternalServerError)
			return
		}
	}

	layoutTmpl, err := ParseTemplate("layout.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse layout template")
		http.Error(w, "Failed to load layout template", http.StatusInternalServerError)
		return
	}

	data := map[string]any{
		"AppName":    s.config.GetAppName(),
		"PageTitle":  view.Title,
		"ActivePage": view.Active,
		"Content":    template.HTML(content.String()),
	}
	if session := sessionFromContext(r.Context()); session != nil {
		state := session.Auth.State()
		data["IsAuthenticated"] = state.IsAuthenticated
		if user := session.Auth.CurrentUser(); user != nil {
			data["User"] = user
			data["Nav"] = navFor(user.Role)
			data["DashboardPath"] = routepolicy.DefaultDashboardPath(string(user.Role))
		}
	}

	var page bytes.Buffer
	if err := layoutTmpl.Execute(&page, data); err != nil {
		log.Err(err).Msg("Failed to render layout template")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	_, _ = page.WriteTo(w)
}

// renderWait is served while a session is still hydrating. The page reloads
// itself rather than redirecting.
func (s *Server) renderWait(w http.ResponseWriter, r *http.Request) {
	tmpl, err := ParseTemplate("wait.html")
	if err != nil {
		log.Err(err).Msg("Failed to parse wait template")
		http.Error(w, "Loading...", http.StatusOK)
		return
	}
	w.Header().Set("Content-Type", contentTypeHTML)
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Refresh", "1")
	_ = tmpl.Execute(w, map[string]any{"AppName": s.config.GetAppName(), "Path": r.URL.RequestURI()})
}

// renderError renders message inside the layout
func (s *Server) renderError(w http.ResponseWriter, r *http.Request, status int, message string) {
	s.renderPage(w, r, status, pageView{
		Title:    http.StatusText(status),
		Template: "error.html",
		Data:     map[string]any{"Status": status, "Message": message},
	})
}
