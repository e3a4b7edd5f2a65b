package fleet

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
)

// CrewStore caches the crew of one ship at a time. Mutations are
// server-confirmed only: the cache changes iff the backend accepted the
// call, so a failed update or delete leaves it exactly as it was.
type CrewStore struct {
	gw     Gateway
	epochs EpochSource
	log    zerolog.Logger

	mu       sync.Mutex
	shipID   string
	crews    []Crew
	inflight int
	lastErr  error
}

// NewCrewStore creates a crew store.
func NewCrewStore(gw Gateway, epochs EpochSource, log zerolog.Logger) *CrewStore {
	return &CrewStore{gw: gw, epochs: epochs, log: log}
}

// FetchCrew replaces the cache with the crew of the given ship.
func (s *CrewStore) FetchCrew(ctx context.Context, shipID string) error {
	s.fetchStarted()
	defer s.fetchDone()

	epoch := s.epochs.Epoch()

	var crews []Crew
	if err := s.gw.Get(ctx, "/api/ships/"+shipID+"/crew", &crews); err != nil {
		s.mu.Lock()
		if s.epochs.Epoch() == epoch {
			s.lastErr = err
		}
		s.mu.Unlock()
		return fmt.Errorf("fetch crew for %s: %w", shipID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() != epoch {
		s.log.Debug().Msg("discarding crew snapshot from stale session")
		return nil
	}

	s.shipID = shipID
	s.crews = crews
	s.lastErr = nil
	return nil
}

// AddCrew posts a new crew member and prepends the server's canonical
// record to the cache.
func (s *CrewStore) AddCrew(ctx context.Context, crew Crew) (Crew, error) {
	epoch := s.epochs.Epoch()

	var created Crew
	if err := s.gw.Post(ctx, "/api/crew", crew, &created); err != nil {
		return Crew{}, fmt.Errorf("add crew: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() == epoch && created.ShipID == s.shipID {
		s.crews = append([]Crew{created}, s.crews...)
	}

	return created, nil
}

// UpdateCrew updates a crew member and replaces the cached record with
// the server's canonical copy.
func (s *CrewStore) UpdateCrew(ctx context.Context, id uint, crew Crew) (Crew, error) {
	epoch := s.epochs.Epoch()

	var updated Crew
	if err := s.gw.Put(ctx, fmt.Sprintf("/api/crew/%d", id), crew, &updated); err != nil {
		return Crew{}, fmt.Errorf("update crew %d: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() == epoch {
		for i := range s.crews {
			if s.crews[i].ID == id {
				s.crews[i] = updated
				break
			}
		}
	}

	return updated, nil
}

// DeleteCrew removes a crew member, locally only once the backend has
// confirmed the delete.
func (s *CrewStore) DeleteCrew(ctx context.Context, id uint) error {
	epoch := s.epochs.Epoch()

	if err := s.gw.Delete(ctx, fmt.Sprintf("/api/crew/%d", id)); err != nil {
		return fmt.Errorf("delete crew %d: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() == epoch {
		s.crews = slices.DeleteFunc(s.crews, func(c Crew) bool { return c.ID == id })
	}

	return nil
}

// Crews returns a copy of the cached crew collection.
func (s *CrewStore) Crews() []Crew {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.crews)
}

// ShipID returns the ship whose crew is currently cached.
func (s *CrewStore) ShipID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shipID
}

// Loading reports whether any fetch is in flight.
func (s *CrewStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the error recorded by the last failed fetch.
func (s *CrewStore) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *CrewStore) fetchStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
}

func (s *CrewStore) fetchDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}
