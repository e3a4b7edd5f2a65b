package gateway

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
)

// Invalidator ends the current session in response to a credential
// failure. Implementations must be idempotent: invalidating an already
// anonymous session is a no-op.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// BearerAuth returns a request interceptor that attaches the stored token
// as a bearer credential. Requests go out unauthenticated when no session
// is held.
func BearerAuth(creds session.Store) RequestInterceptor {
	return func(ctx context.Context, req *http.Request) error {
		sess, err := creds.Get(ctx)
		if err != nil {
			return err
		}

		if sess.IsAuthenticated() {
			req.Header.Set("Authorization", "Bearer "+sess.Token)
		}

		return nil
	}
}

// SessionTeardown returns a response interceptor that ends the session
// when the backend reports the credentials dead. The teardown runs before
// the caller observes the failed result; a failure to tear down is logged
// but does not mask the authentication error itself.
func SessionTeardown(inv Invalidator, log zerolog.Logger) ResponseInterceptor {
	return func(ctx context.Context, resp *http.Response) error {
		if resp.StatusCode != http.StatusUnauthorized {
			return nil
		}

		// A 401 on a request that went out without a bearer token means
		// the submitted credentials were bad, not that a held session
		// died. Login from the anonymous state lands here.
		if resp.Request == nil || resp.Request.Header.Get("Authorization") == "" {
			return nil
		}

		if err := inv.Invalidate(ctx); err != nil {
			log.Warn().Err(err).Msg("session teardown after 401 failed")
		}

		return nil
	}
}
