// Package auth implements the login/logout state machine.
//
// The controller has two states, anonymous and authenticated, observable
// through the credential store. It is the only component besides the
// gateway's teardown handler that mutates the store.
package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/rs/zerolog"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
	"github.com/DauSyQuan/marin-portal/internal/gateway"
	"github.com/DauSyQuan/marin-portal/internal/nav"
)

// User-facing login failure reasons. Recovery guidance differs per
// reason, so callers need to tell them apart.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrNoConnection       = errors.New("cannot reach the server")
	ErrMalformedLogin     = errors.New("login response carried no token")
)

// Navigator forces a route transition as a side effect of a session
// change.
type Navigator interface {
	NavigateTo(ctx context.Context, name string) error
}

// Gateway is the slice of the HTTP client the controller needs.
type Gateway interface {
	Post(ctx context.Context, path string, body, out any) error
}

// loginResponse is the backend's answer to POST /api/login. Identity
// fields are optional; some deployments nest them under "user".
type loginResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Role     string `json:"role"`
	User     *struct {
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Controller orchestrates login and logout.
type Controller struct {
	creds session.Store
	gw    Gateway
	navi  Navigator
	log   zerolog.Logger

	mu    sync.Mutex // serializes session transitions
	epoch atomic.Uint64
}

// NewController creates a Controller.
func NewController(creds session.Store, gw Gateway, navi Navigator, log zerolog.Logger) *Controller {
	return &Controller{creds: creds, gw: gw, navi: navi, log: log}
}

// Epoch returns the current session epoch. The epoch advances on every
// transition, so a cache write stamped with a stale epoch is known to
// belong to a dead session.
func (c *Controller) Epoch() session.Epoch {
	return session.Epoch(c.epoch.Load())
}

// IsAuthenticated reports the current state.
func (c *Controller) IsAuthenticated(ctx context.Context) bool {
	sess, err := c.creds.Get(ctx)
	return err == nil && sess.IsAuthenticated()
}

// Login exchanges credentials for a session and navigates to the
// dashboard. On failure the state stays anonymous, the store untouched,
// and the returned error names the reason.
//
// The gateway call runs outside c.mu: a 401 response runs the teardown
// interceptor on this goroutine, and Invalidate takes the same lock.
func (c *Controller) Login(ctx context.Context, username, password string) error {
	var resp loginResponse
	err := c.gw.Post(ctx, "/api/login", credentials{Username: username, Password: password}, &resp)
	if err != nil {
		return c.loginError(err)
	}

	// An absent token is never a valid session, whatever the status said.
	if resp.Token == "" {
		return ErrMalformedLogin
	}

	sess := session.Session{
		Token: resp.Token,
		User:  identityFrom(resp, username),
	}

	c.mu.Lock()
	if err := c.creds.Set(ctx, sess); err != nil {
		c.mu.Unlock()
		return fmt.Errorf("store session: %w", err)
	}
	c.epoch.Add(1)
	c.mu.Unlock()

	c.log.Info().Str("user", sess.User.Name).Str("role", string(sess.User.Role)).Msg("logged in")

	if err := c.navi.NavigateTo(ctx, nav.RouteDashboard); err != nil {
		return fmt.Errorf("navigate to dashboard: %w", err)
	}

	return nil
}

// Logout clears the session and navigates to the login view. Logging out
// twice in succession is equivalent to logging out once.
func (c *Controller) Logout(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.clear(ctx); err != nil {
		return err
	}

	c.log.Info().Msg("logged out")

	if err := c.navi.NavigateTo(ctx, nav.RouteLogin); err != nil {
		return fmt.Errorf("navigate to login: %w", err)
	}

	return nil
}

// Invalidate is the gateway-triggered teardown: same effect as Logout,
// but a no-op when the session is already gone, so two concurrent 401s
// tear down exactly once.
func (c *Controller) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	sess, err := c.creds.Get(ctx)
	if err != nil {
		return fmt.Errorf("read session: %w", err)
	}
	if !sess.IsAuthenticated() {
		return nil
	}

	if err := c.clear(ctx); err != nil {
		return err
	}

	c.log.Warn().Msg("session invalidated by backend")

	if err := c.navi.NavigateTo(ctx, nav.RouteLogin); err != nil {
		return fmt.Errorf("navigate to login: %w", err)
	}

	return nil
}

func (c *Controller) clear(ctx context.Context) error {
	if err := c.creds.Clear(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	c.epoch.Add(1)
	return nil
}

// loginError maps gateway failures onto the user-facing reasons.
func (c *Controller) loginError(err error) error {
	switch {
	case errors.Is(err, gateway.ErrUnauthorized):
		// 401 on login means bad credentials, not a dead session.
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	case errors.Is(err, gateway.ErrUnavailable):
		return fmt.Errorf("%w: %w", ErrNoConnection, err)
	case errors.Is(err, gateway.ErrMalformed):
		return fmt.Errorf("%w: %w", ErrMalformedLogin, err)
	default:
		return fmt.Errorf("login: %w", err)
	}
}

// identityFrom derives the user identity from the login response, falling
// back to the submitted username and the default role when the backend
// omits them.
func identityFrom(resp loginResponse, submitted string) *session.User {
	name := resp.Username
	role := resp.Role

	if resp.User != nil {
		if name == "" {
			name = resp.User.Username
		}
		if role == "" {
			role = resp.User.Role
		}
	}

	if name == "" {
		name = submitted
	}
	if role == "" {
		role = string(session.RoleUser)
	}

	return &session.User{Name: name, Role: session.Role(role)}
}
