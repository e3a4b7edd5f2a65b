// Package bandwidth caches the bandwidth-plan collection.
package bandwidth

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/DauSyQuan/marin-portal/internal/core/session"
	"github.com/DauSyQuan/marin-portal/internal/gateway"
)

// Plan is one bandwidth plan record. Speeds are in Kbps.
type Plan struct {
	ID             uint      `json:"id"`
	Name           string    `json:"name"`
	UploadSpeed    int       `json:"upload_speed"`
	DownloadSpeed  int       `json:"download_speed"`
	BurstLimit     string    `json:"burst_limit"`
	BurstThreshold string    `json:"burst_threshold"`
	BurstTime      string    `json:"burst_time"`
	Priority       int       `json:"priority"`
	LimitAt        string    `json:"limit_at"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// Gateway is the slice of the HTTP client the plan store needs.
type Gateway interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
	Delete(ctx context.Context, path string) error
}

// EpochSource reports the current session epoch.
type EpochSource interface {
	Epoch() session.Epoch
}

// Store caches the bandwidth plans with the same discipline as the fleet
// store: fetches replace the cache wholesale, mutations apply locally
// only after the backend confirms them.
type Store struct {
	gw     Gateway
	epochs EpochSource
	log    zerolog.Logger

	mu       sync.Mutex
	plans    []Plan
	inflight int
	lastErr  error
}

// NewStore creates a plan store.
func NewStore(gw Gateway, epochs EpochSource, log zerolog.Logger) *Store {
	return &Store{gw: gw, epochs: epochs, log: log}
}

// FetchAll replaces the cached plans with a fresh snapshot. A failed
// fetch keeps the previous cache.
func (s *Store) FetchAll(ctx context.Context) error {
	s.fetchStarted()
	defer s.fetchDone()

	epoch := s.epochs.Epoch()

	var plans []Plan
	if err := s.gw.Get(ctx, "/api/bandwidth-plans", &plans); err != nil {
		s.mu.Lock()
		if s.epochs.Epoch() == epoch {
			s.lastErr = err
		}
		s.mu.Unlock()
		return fmt.Errorf("fetch bandwidth plans: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() != epoch {
		s.log.Debug().Msg("discarding plan snapshot from stale session")
		return nil
	}

	s.plans = plans
	s.lastErr = nil
	return nil
}

// Create posts a new plan and prepends the server's canonical record.
func (s *Store) Create(ctx context.Context, plan Plan) (Plan, error) {
	epoch := s.epochs.Epoch()

	var created Plan
	if err := s.gw.Post(ctx, "/api/bandwidth-plans", plan, &created); err != nil {
		if errors.Is(err, gateway.ErrConflict) {
			return Plan{}, fmt.Errorf("plan %q already exists: %w", plan.Name, err)
		}
		return Plan{}, fmt.Errorf("create plan: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() == epoch {
		s.plans = append([]Plan{created}, s.plans...)
	}

	return created, nil
}

// Delete removes a plan, locally only once the backend has confirmed it.
func (s *Store) Delete(ctx context.Context, id uint) error {
	epoch := s.epochs.Epoch()

	if err := s.gw.Delete(ctx, fmt.Sprintf("/api/bandwidth-plans/%d", id)); err != nil {
		return fmt.Errorf("delete plan %d: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.epochs.Epoch() == epoch {
		s.plans = slices.DeleteFunc(s.plans, func(p Plan) bool { return p.ID == id })
	}

	return nil
}

// Plans returns a copy of the cached collection.
func (s *Store) Plans() []Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.plans)
}

// Loading reports whether any fetch is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.inflight > 0
}

// Err returns the error recorded by the last failed fetch.
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
