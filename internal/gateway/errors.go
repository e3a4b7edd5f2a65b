package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// Taxonomy sentinels. Callers match with errors.Is; every error returned
// by the client wraps exactly one of these.
var (
	// ErrUnauthorized means the backend rejected the credentials. It is
	// not locally recoverable: by the time a caller observes it, the
	// session has already been torn down.
	ErrUnauthorized = errors.New("authentication failed")

	// ErrConflict means the backend rejected a write as a duplicate.
	ErrConflict = errors.New("conflict")

	// ErrUnavailable means no response was received at all. Retrying is
	// the caller's choice, never automatic.
	ErrUnavailable = errors.New("backend unreachable")

	// ErrMalformed means the backend violated the expected contract.
	ErrMalformed = errors.New("malformed backend response")

	// ErrFailed covers every other non-2xx status.
	ErrFailed = errors.New("request failed")
)

// StatusError carries the HTTP status and the backend-provided message so
// callers can render something useful.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("status %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("status %d", e.Code)
}

// Err joins a taxonomy sentinel with detail so callers can match the kind
// with errors.Is while keeping the specifics.
func Err(kind error, inner error, msgTemplate string, args ...any) error {
	if msgTemplate == "" {
		return errors.Join(kind, inner)
	}
	return errors.Join(kind, inner, fmt.Errorf(msgTemplate, args...))
}

// classify maps an HTTP status to its taxonomy sentinel.
func classify(code int) error {
	switch code {
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusConflict:
		return ErrConflict
	default:
		return ErrFailed
	}
}
