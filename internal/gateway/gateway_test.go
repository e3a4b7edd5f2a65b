package gateway

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
)

// memStore implements session.Store in memory for testing.
type memStore struct {
	sess session.Session
}

func (m *memStore) Get(_ context.Context) (session.Session, error) {
	return m.sess, nil
}

func (m *memStore) Set(_ context.Context, sess session.Session) error {
	if !sess.IsAuthenticated() || !sess.Valid() {
		return session.ErrPartialSession
	}
	m.sess = sess
	return nil
}

func (m *memStore) Clear(_ context.Context) error {
	m.sess = session.Anonymous()
	return nil
}

// mockInvalidator records Invalidate calls and clears the store.
type mockInvalidator struct {
	store *memStore
	calls int
}

func (m *mockInvalidator) Invalidate(ctx context.Context) error {
	sess, _ := m.store.Get(ctx)
	if !sess.IsAuthenticated() {
		return nil
	}
	m.calls++
	return m.store.Clear(ctx)
}

func authedStore() *memStore {
	return &memStore{sess: session.Session{
		Token: "tok-live",
		User:  &session.User{Name: "ops", Role: session.RoleUser},
	}}
}

func TestClient_BearerAttach(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`)) //nolint:errcheck
	}))
	defer srv.Close()

	store := authedStore()
	c := New(srv.URL, zerolog.Nop())
	c.Use(BearerAuth(store))

	require.NoError(t, c.Get(context.Background(), "/api/ships", nil))
	assert.Equal(t, "Bearer tok-live", gotAuth)

	// Once the store is cleared, requests go out unauthenticated.
	require.NoError(t, store.Clear(context.Background()))
	require.NoError(t, c.Get(context.Background(), "/api/ships", nil))
	assert.Empty(t, gotAuth)
}

func TestClient_UnauthorizedTearsDownSession(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"token expired"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := authedStore()
	inv := &mockInvalidator{store: store}

	c := New(srv.URL, zerolog.Nop())
	c.Use(BearerAuth(store))
	c.UseResponse(SessionTeardown(inv, zerolog.Nop()))

	err := c.Get(context.Background(), "/api/ships", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Teardown completed before the caller observed the error.
	sess, _ := store.Get(context.Background())
	assert.False(t, sess.IsAuthenticated())
	assert.Equal(t, 1, inv.calls)

	// A second in-flight 401 is a no-op: the session is already gone.
	err = c.Get(context.Background(), "/api/ships", nil)
	require.Error(t, err)
	assert.Equal(t, 1, inv.calls)
}

func TestClient_UnauthenticatedRequestSkipsTeardown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid credentials"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	store := authedStore()
	inv := &mockInvalidator{store: store}

	// No BearerAuth interceptor: the request goes out without a token,
	// like a login from the anonymous state.
	c := New(srv.URL, zerolog.Nop())
	c.UseResponse(SessionTeardown(inv, zerolog.Nop()))

	err := c.Post(context.Background(), "/api/login", map[string]string{"username": "captain"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// A 401 without a bearer token tears nothing down.
	assert.Equal(t, 0, inv.calls)
	sess, _ := store.Get(context.Background())
	assert.True(t, sess.IsAuthenticated())
}

func TestClient_StatusErrorCarriesBackendMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"duplicate ship id"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())

	err := c.Post(context.Background(), "/api/ships", map[string]string{"id": "IMO1"}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConflict)

	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusConflict, statusErr.Code)
	assert.Equal(t, "duplicate ship id", statusErr.Message)
}

func TestClient_TransportFailureIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	c := New(srv.URL, zerolog.Nop())

	err := c.Get(context.Background(), "/api/ships", nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestClient_UndecodableBodyIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())

	var out map[string]any
	err := c.Get(context.Background(), "/api/ships", &out)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestClient_DecodesResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"name":"Marina"}`)) //nolint:errcheck
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())

	var out struct {
		Name string `json:"name"`
	}
	require.NoError(t, c.Post(context.Background(), "/api/ships", map[string]string{"name": "Marina"}, &out))
	assert.Equal(t, "Marina", out.Name)
}

func TestClient_RequestInterceptorFailureAborts(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := New(srv.URL, zerolog.Nop())
	c.Use(func(ctx context.Context, req *http.Request) error {
		return errors.New("boom")
	})

	err := c.Get(context.Background(), "/api/ships", nil)
	require.Error(t, err)
	assert.False(t, called, "request should not reach the server")
}
