package server

import "github.com/jrsteele09/go-donor-portal/routepolicy"

// Route path constants
// All application routes are defined here to ensure consistency and prevent typos
const (
	// Public Routes
	RouteIndex        = "/"
	RouteAbout        = "/about"
	RouteLogin        = routepolicy.LoginPath
	RouteLogout       = "/logout"
	RouteUnauthorized = routepolicy.UnauthorizedPath
	RouteHealth       = "/healthz"

	// Admin Routes
	RouteAdminDashboard = "/admin/dashboard"
	RouteAdminDonors    = "/admin/donors"

	// Manager Routes
	RouteManagerDashboard = "/manager/Dashboard"
	RouteManagerRequests  = "/manager/requests"

	// Donor Routes
	RouteDonorDashboard = "/donor/dashboard"
	RouteDonorProfile   = "/donor/profile"
	RouteDonorHistory   = "/donor/history"

	// User Routes
	RouteUserHome = "/user"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
)
