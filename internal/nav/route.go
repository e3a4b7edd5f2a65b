// Package nav resolves in-app destinations and gates every transition on
// session state.
package nav

import (
	"github.com/DauSyQuan/marin-portal/internal/core/session"
)

// Well-known route names.
const (
	RouteLogin      = "login"
	RouteDashboard  = "dashboard"
	RouteShipDetail = "ship-detail"
	RouteAnalytics  = "analytics"
	RouteSettings   = "settings"
)

// Route describes one destination. Pattern is a doublestar glob matched
// against the requested path.
type Route struct {
	Name         string
	Pattern      string
	RequiresAuth bool
}

// DefaultRoutes returns the portal's route table. Dashboard is the
// default authenticated view.
func DefaultRoutes() []Route {
	return []Route{
		{Name: RouteLogin, Pattern: "/login"},
		{Name: RouteDashboard, Pattern: "/", RequiresAuth: true},
		{Name: RouteShipDetail, Pattern: "/ship/*", RequiresAuth: true},
		{Name: RouteAnalytics, Pattern: "/analytics", RequiresAuth: true},
		{Name: RouteSettings, Pattern: "/settings", RequiresAuth: true},
	}
}

// Decision is the guard's verdict on a candidate transition.
type Decision struct {
	Allow      bool
	RedirectTo string // route name, set when Allow is false
}

// Decide is the guard itself: a pure function over the destination
// metadata and the current session.
//
// A protected destination with no session redirects to login; the login
// page with a live session redirects to the dashboard; everything else
// is allowed through.
func Decide(route Route, sess session.Session) Decision {
	switch {
	case route.RequiresAuth && !sess.IsAuthenticated():
		return Decision{RedirectTo: RouteLogin}
	case route.Name == RouteLogin && sess.IsAuthenticated():
		return Decision{RedirectTo: RouteDashboard}
	default:
		return Decision{Allow: true}
	}
}
