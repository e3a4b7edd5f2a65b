package session

import (
	"context"
	"errors"
)

// ErrPartialSession is returned when a write would break the token/user
// pairing invariant.
var ErrPartialSession = errors.New("session must carry both token and user")

// Store is the single source of truth for the current session.
//
// Only the auth controller and the gateway's teardown handler mutate it;
// entity stores and the navigation guard are read-only consumers.
type Store interface {
	// Get returns the current session. A missing or unreadable persisted
	// record degrades to the anonymous session, never to an error that
	// would take the client down.
	Get(ctx context.Context) (Session, error)

	// Set replaces the current session. The new session must be
	// authenticated and valid; Set returns ErrPartialSession otherwise.
	// The persisted copy is updated atomically with the in-memory one.
	Set(ctx context.Context, sess Session) error

	// Clear drops the current session. Clearing an anonymous session is
	// a no-op.
	Clear(ctx context.Context) error
}
