package nav

import (
	"context"
	"fmt"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
)

// ErrNoRoute is returned when a path matches nothing in the route table.
var ErrNoRoute = fmt.Errorf("no matching route")

// maxRedirects bounds guard-driven redirect chains. The table admits at
// most one redirect per transition; more indicates a misconfigured table.
const maxRedirects = 3

// Router holds the route table and the current location, and applies the
// guard to every transition. It reads the credential store but never
// mutates it.
type Router struct {
	routes []Route
	creds  session.Store
	log    zerolog.Logger

	mu      sync.Mutex
	current Route
}

// NewRouter creates a Router positioned on the login route.
func NewRouter(routes []Route, creds session.Store, log zerolog.Logger) *Router {
	r := &Router{routes: routes, creds: creds, log: log}

	if login, err := r.route(RouteLogin); err == nil {
		r.current = login
	}

	return r
}

// Resolve matches a path against the route table. Unknown paths fall back
// to the dashboard, mirroring the portal's catch-all redirect.
func (r *Router) Resolve(path string) (Route, error) {
	for _, route := range r.routes {
		ok, err := doublestar.Match(route.Pattern, path)
		if err != nil {
			return Route{}, fmt.Errorf("match route %s: %w", route.Name, err)
		}
		if ok {
			return route, nil
		}
	}

	return r.route(RouteDashboard)
}

// Navigate resolves the path, applies the guard, and follows any redirect
// the guard demands. It returns the route actually landed on.
func (r *Router) Navigate(ctx context.Context, path string) (Route, error) {
	route, err := r.Resolve(path)
	if err != nil {
		return Route{}, err
	}

	return r.transition(ctx, route)
}

// NavigateTo navigates to a route by name.
func (r *Router) NavigateTo(ctx context.Context, name string) error {
	route, err := r.route(name)
	if err != nil {
		return err
	}

	_, err = r.transition(ctx, route)
	return err
}

// Current returns the route the router last landed on.
func (r *Router) Current() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

func (r *Router) transition(ctx context.Context, route Route) (Route, error) {
	sess, err := r.creds.Get(ctx)
	if err != nil {
		return Route{}, fmt.Errorf("read session: %w", err)
	}

	for range maxRedirects {
		decision := Decide(route, sess)
		if decision.Allow {
			r.mu.Lock()
			r.current = route
			r.mu.Unlock()

			r.log.Debug().Str("route", route.Name).Msg("navigated")
			return route, nil
		}

		r.log.Debug().Str("from", route.Name).Str("to", decision.RedirectTo).Msg("guard redirect")

		route, err = r.route(decision.RedirectTo)
		if err != nil {
			return Route{}, err
		}
	}

	return Route{}, fmt.Errorf("redirect loop at route %s", route.Name)
}

func (r *Router) route(name string) (Route, error) {
	for _, route := range r.routes {
		if route.Name == name {
			return route, nil
		}
	}
	return Route{}, fmt.Errorf("%w: %s", ErrNoRoute, name)
}
