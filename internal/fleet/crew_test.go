package fleet

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DauSyQuan/marin-portal/internal/gateway"
)

func testCrews() []Crew {
	return []Crew{
		{ID: 1, ShipID: "IMO1", FullName: "Dana Reed", Rank: "Captain"},
		{ID: 2, ShipID: "IMO1", FullName: "Kim Tran", Rank: "Engineer"},
	}
}

func newCrewStore(t *testing.T, gw *scriptedGateway) *CrewStore {
	t.Helper()
	store := NewCrewStore(gw, &fixedEpoch{}, zerolog.Nop())
	gw.getCrew = testCrews()
	require.NoError(t, store.FetchCrew(context.Background(), "IMO1"))
	return store
}

func TestCrewStore_FetchCrew(t *testing.T) {
	store := newCrewStore(t, &scriptedGateway{})

	assert.Equal(t, "IMO1", store.ShipID())
	assert.Len(t, store.Crews(), 2)
	assert.NoError(t, store.Err())
	assert.False(t, store.Loading())
}

func TestCrewStore_FetchCrewFailureKeepsCache(t *testing.T) {
	gw := &scriptedGateway{}
	store := newCrewStore(t, gw)

	gw.getCrewErr = gateway.Err(gateway.ErrUnavailable, nil, "GET crew")
	err := store.FetchCrew(context.Background(), "IMO1")
	require.Error(t, err)

	assert.Len(t, store.Crews(), 2)
	assert.Error(t, store.Err())
}

func TestCrewStore_FetchCrewFailureFromDeadSessionLeavesErrClear(t *testing.T) {
	epochs := &fixedEpoch{epoch: 1}
	gw := &scriptedGateway{getCrewErr: gateway.Err(gateway.ErrUnavailable, nil, "GET crew")}
	gw.onGet = func() { epochs.epoch++ }

	store := NewCrewStore(gw, epochs, zerolog.Nop())

	require.Error(t, store.FetchCrew(context.Background(), "IMO1"))
	assert.NoError(t, store.Err())
}

func TestCrewStore_AddCrewPrependsCanonicalRecord(t *testing.T) {
	gw := &scriptedGateway{}
	store := newCrewStore(t, gw)

	gw.postResult = Crew{ID: 3, ShipID: "IMO1", FullName: "Ana Silva", Status: "Active", DataPlan: "Basic (1GB)"}

	created, err := store.AddCrew(context.Background(), Crew{ShipID: "IMO1", FullName: "Ana Silva"})
	require.NoError(t, err)
	assert.Equal(t, uint(3), created.ID)

	crews := store.Crews()
	require.Len(t, crews, 3)
	// Server-assigned defaults came back with the canonical record.
	assert.Equal(t, "Active", crews[0].Status)
}

func TestCrewStore_AddCrewForOtherShipNotCached(t *testing.T) {
	gw := &scriptedGateway{}
	store := newCrewStore(t, gw)

	gw.postResult = Crew{ID: 9, ShipID: "IMO2", FullName: "Lee Park"}

	_, err := store.AddCrew(context.Background(), Crew{ShipID: "IMO2", FullName: "Lee Park"})
	require.NoError(t, err)
	assert.Len(t, store.Crews(), 2)
}

func TestCrewStore_UpdateCrewReplacesRecord(t *testing.T) {
	gw := &scriptedGateway{}
	store := newCrewStore(t, gw)

	gw.putResult = Crew{ID: 2, ShipID: "IMO1", FullName: "Kim Tran", Rank: "Chief Engineer"}

	updated, err := store.UpdateCrew(context.Background(), 2, Crew{Rank: "Chief Engineer"})
	require.NoError(t, err)
	assert.Equal(t, "Chief Engineer", updated.Rank)

	crews := store.Crews()
	assert.Equal(t, "Chief Engineer", crews[1].Rank)
}

func TestCrewStore_UpdateCrewFailureLeavesCache(t *testing.T) {
	gw := &scriptedGateway{}
	store := newCrewStore(t, gw)
	before := store.Crews()

	gw.putResult = gateway.Err(gateway.ErrFailed, &gateway.StatusError{Code: 500}, "PUT crew")

	_, err := store.UpdateCrew(context.Background(), 2, Crew{Rank: "Chief Engineer"})
	require.Error(t, err)
	assert.Equal(t, before, store.Crews())
}

func TestCrewStore_DeleteCrew(t *testing.T) {
	gw := &scriptedGateway{}
	store := newCrewStore(t, gw)

	require.NoError(t, store.DeleteCrew(context.Background(), 1))

	crews := store.Crews()
	require.Len(t, crews, 1)
	assert.Equal(t, uint(2), crews[0].ID)
	assert.Equal(t, []string{"/api/crew/1"}, gw.deleteCalls)
}

func TestCrewStore_DeleteCrewFailureLeavesCache(t *testing.T) {
	gw := &scriptedGateway{}
	store := newCrewStore(t, gw)
	before := store.Crews()

	gw.deleteErr = gateway.Err(gateway.ErrUnavailable, nil, "DELETE crew")

	err := store.DeleteCrew(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, before, store.Crews())
}
