package fleet

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
	"github.com/DauSyQuan/marin-portal/internal/gateway"
)

// Gateway is the slice of the HTTP client the fleet store needs.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Put(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// EpochSource reports the current session epoch so late responses from a
// dead session never land in the cache.
type EpochSource interface {
	Epoch() session.Epoch
}

// Store caches the ship collection and derives stats and filtered views
// from it.
//
// Two concurrent FetchAll calls are not serialized: the cache holds
// whichever response resolved last. Derived state is recomputed on every
// read from the current cache and search term, never cached separately.
type Store struct {
	gw     Gateway
	epochs EpochSource
	log    zerolog.Logger

	mu       sync.Mutex
	ships    []Ship
	haystack []string // lowercased search text, parallel to ships
	search   string
	inflight int
	lastErr  error
}

// NewStore creates a fleet store.
func NewStore(gw Gateway, epochs EpochSource, log zerolog.Logger) *Store {
	return &Store{gw: gw, epochs: epochs, log: log}
}

// FetchAll replaces the cached fleet with a fresh snapshot. On failure
// the previous cache is kept: stale-but-present beats empty.
func (s *Store) FetchAll(ctx context.Context) error {
	s.fetchStarted()
	defer s.fetchDone()

	epoch := s.epochs.Epoch()

	var ships []Ship
	if err := s.gw.Get(ctx, "/api/ships", &ships); err != nil {
		s.mu.Lock()
		if s.epochs.Epoch() == epoch {
			s.lastErr = err
		}
		s.mu.Unlock()
		return fmt.Errorf("fetch ships: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() != epoch {
		// The session ended while the request was in flight; the
		// snapshot belongs to a session that no longer exists.
		s.log.Debug().Msg("discarding fleet snapshot from stale session")
		return nil
	}

	s.ships = ships
	s.haystack = buildHaystack(ships)
	s.lastErr = nil

	s.log.Debug().Int("count", len(ships)).Msg("fleet cache replaced")
	return nil
}

// AddShip posts a new ship and prepends the server's canonical record to
// the cache. The client never trusts its own copy of the record. On
// conflict the cache is untouched and the error matches
// gateway.ErrConflict.
func (s *Store) AddShip(ctx context.Context, ship Ship) (Ship, error) {
	epoch := s.epochs.Epoch()

	var created Ship
	if err := s.gw.Post(ctx, "/api/ships", ship, &created); err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			return Ship{}, fmt.Errorf("ship id %q already exists: %w", ship.ID, err)
		}
		return Ship{}, fmt.Errorf("add ship: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() == epoch {
		s.ships = append([]Ship{created}, s.ships...)
		s.haystack = append([]string{created.searchText()}, s.haystack...)
	}

	return created, nil
}

// SetSearch updates the live search term applied by FilteredShips.
func (s *Store) SetSearch(term string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.search = term
}

// Ships returns a copy of the cached collection.
func (s *Store) Ships() []Ship {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.ships)
}

// FilteredShips returns the ships whose name, id or company contains the
// current search term, case-insensitively.
func (s *Store) FilteredShips() []Ship {
	s.mu.Lock()
	defer s.mu.Unlock()

	q := strings.ToLower(strings.TrimSpace(s.search))
	if q == "" {
		return slices.Clone(s.ships)
	}

	var out []Ship
	for i, text := range s.haystack {
		if strings.Contains(text, q) {
			out = append(out, s.ships[i])
		}
	}
	return out
}

// Stats derives the per-status counts and the weighted health percentage
// from the current cache in one pass.
func (s *Store) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Total: len(s.ships)}
	for _, ship := range s.ships {
		switch ship.Status {
		case StatusOnline:
			stats.Online++
		case StatusOffline:
			stats.Offline++
		case StatusWarning:
			stats.Warning++
		case StatusBlockage:
			stats.Blockage++
		}
	}

	if stats.Total > 0 {
		stats.Health = (float64(stats.Online) + 0.5*float64(stats.Warning)) / float64(stats.Total) * 100
	}

	return stats
}

// Loading reports whether any fetch is in flight. Overlapping fetches
// are counted, so the flag clears only when the last one resolves.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the error recorded by the last failed fetch, or nil after
// a successful one.
func (s *Store) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) fetchStarted() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight++
}

func (s *Store) fetchDone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inflight--
}

func buildHaystack(ships []Ship) []string {
	out := make([]string, len(ships))
	for i, ship := range ships {
		out[i] = ship.searchText()
	}
	return out
}
