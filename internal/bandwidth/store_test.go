package bandwidth

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
	"github.com/DauSyQuan/marin-portal/internal/gateway"
)

type scriptedGateway struct {
	plans      []Plan
	getErr     error
	postResult any // Plan or error
	deleteErr  error
	onGet      func() // runs while the request is "in flight"
}

func (g *scriptedGateway) Get(_ context.Context, _ string, out any) error {
	if g.onGet != nil {
		g.onGet()
	}
	if g.getErr != nil {
		return g.getErr
	}
	*out.(*[]Plan) = g.plans
	return nil
}

func (g *scriptedGateway) Post(_ context.Context, _ string, _, out any) error {
	if err, ok := g.postResult.(error); ok {
		return err
	}
	*out.(*Plan) = g.postResult.(Plan)
	return nil
}

func (g *scriptedGateway) Delete(_ context.Context, _ string) error {
	return g.deleteErr
}

type fixedEpoch struct {
	epoch session.Epoch
}

func (f *fixedEpoch) Epoch() session.Epoch { return f.epoch }

func testPlans() []Plan {
	return []Plan{
		{ID: 1, Name: "Basic", UploadSpeed: 512, DownloadSpeed: 1024},
		{ID: 2, Name: "Premium", UploadSpeed: 2048, DownloadSpeed: 5120},
	}
}

func newStore(t *testing.T, gw *scriptedGateway) *Store {
	t.Helper()
	gw.plans = testPlans()
	store := NewStore(gw, &fixedEpoch{}, zerolog.Nop())
	require.NoError(t, store.FetchAll(context.Background()))
	return store
}

func TestStore_FetchAll(t *testing.T) {
	store := newStore(t, &scriptedGateway{})

	assert.Len(t, store.Plans(), 2)
	assert.NoError(t, store.Err())
	assert.False(t, store.Loading())
}

func TestStore_FetchAllFailureKeepsCache(t *testing.T) {
	gw := &scriptedGateway{}
	store := newStore(t, gw)

	gw.getErr = gateway.Err(gateway.ErrUnavailable, errors.New("dial tcp"), "GET plans")
	err := store.FetchAll(context.Background())
	require.Error(t, err)

	assert.Len(t, store.Plans(), 2)
	assert.Error(t, store.Err())
	assert.False(t, store.Loading())
}

func TestStore_FetchAllFailureFromDeadSessionLeavesErrClear(t *testing.T) {
	epochs := &fixedEpoch{epoch: 1}
	gw := &scriptedGateway{getErr: gateway.Err(gateway.ErrUnavailable, nil, "GET plans")}
	gw.onGet = func() { epochs.epoch++ }

	store := NewStore(gw, epochs, zerolog.Nop())

	require.Error(t, store.FetchAll(context.Background()))
	assert.NoError(t, store.Err())
}

func TestStore_CreatePrependsCanonicalRecord(t *testing.T) {
	gw := &scriptedGateway{}
	store := newStore(t, gw)

	gw.postResult = Plan{ID: 3, Name: "Crew Plus", Status: "Active"}

	created, err := store.Create(context.Background(), Plan{Name: "Crew Plus"})
	require.NoError(t, err)
	assert.Equal(t, uint(3), created.ID)

	plans := store.Plans()
	require.Len(t, plans, 3)
	assert.Equal(t, "Crew Plus", plans[0].Name)
}

func TestStore_CreateConflictLeavesCacheUnchanged(t *testing.T) {
	gw := &scriptedGateway{}
	store := newStore(t, gw)
	before := store.Plans()

	gw.postResult = gateway.Err(gateway.ErrConflict, &gateway.StatusError{Code: 409}, "POST plans")

	_, err := store.Create(context.Background(), Plan{Name: "Basic"})
	require.Error(t, err)
	assert.ErrorIs(t, err, gateway.ErrConflict)
	assert.Equal(t, before, store.Plans())
}

func TestStore_Delete(t *testing.T) {
	gw := &scriptedGateway{}
	store := newStore(t, gw)

	require.NoError(t, store.Delete(context.Background(), 1))

	plans := store.Plans()
	require.Len(t, plans, 1)
	assert.Equal(t, "Premium", plans[0].Name)
}

func TestStore_DeleteFailureLeavesCache(t *testing.T) {
	gw := &scriptedGateway{}
	store := newStore(t, gw)

	gw.deleteErr = gateway.Err(gateway.ErrFailed, &gateway.StatusError{Code: 500}, "DELETE plans")

	err := store.Delete(context.Background(), 1)
	require.Error(t, err)
	assert.Len(t, store.Plans(), 2)
}
