package server

func (s *Server) initRoutes() {
	admin := s.RequireSection(Section{Name: "admin", OnForbidden: s.renderEmptyLayout})
	manager := s.RequireSection(Section{Name: "manager", OnForbidden: s.renderEmptyLayout})
	donor := s.RequireSection(Section{Name: "donor", OnForbidden: s.redirectUnauthorized})
	user := s.RequireSection(Section{Name: "user", OnForbidden: s.redirectUnauthorized})

	// Public pages
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteAbout, ChainMiddleware(s.AboutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteUnauthorized, ChainMiddleware(s.UnauthorizedHandler(), s.HTMLMiddleWare()...))

	// LOGIN
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Admin routes
	s.RegisterRouteHandler("GET "+RouteAdminDashboard, ChainMiddleware(s.AdminDashboardHandler(), s.HTMLMiddleWare(admin)...))
	s.RegisterRouteHandler("GET "+RouteAdminDonors, ChainMiddleware(s.AdminDonorsHandler(), s.HTMLMiddleWare(admin)...))

	// Manager routes
	s.RegisterRouteHandler("GET "+RouteManagerDashboard, ChainMiddleware(s.ManagerDashboardHandler(), s.HTMLMiddleWare(manager)...))
	s.RegisterRouteHandler("GET "+RouteManagerRequests, ChainMiddleware(s.ManagerRequestsHandler(), s.HTMLMiddleWare(manager)...))

	// Donor routes
	s.RegisterRouteHandler("GET "+RouteDonorDashboard, ChainMiddleware(s.DonorDashboardHandler(), s.HTMLMiddleWare(donor)...))
	s.RegisterRouteHandler("GET "+RouteDonorProfile, ChainMiddleware(s.DonorProfileHandler(), s.HTMLMiddleWare(donor)...))
	s.RegisterRouteHandler("POST "+RouteDonorProfile, ChainMiddleware(s.DonorProfileUpdateHandler(), s.HTMLMiddleWare(donor)...))
	s.RegisterRouteHandler("GET "+RouteDonorHistory, ChainMiddleware(s.DonorHistoryHandler(), s.HTMLMiddleWare(donor)...))

	// User routes
	s.RegisterRouteHandler("GET "+RouteUserHome, ChainMiddleware(s.UserHomeHandler(), s.HTMLMiddleWare(user)...))

	// API routes
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}
