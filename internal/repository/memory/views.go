package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Rrens/floorboard/internal/clock"
	"github.com/Rrens/floorboard/internal/domain"
	"github.com/Rrens/floorboard/internal/viewstate"
)

type storedView struct {
	state     viewstate.State
	expiresAt time.Time
}

// ViewStore keeps view sessions in memory with a sliding TTL
type ViewStore struct {
	mu    sync.Mutex
	views map[string]storedView
	ttl   time.Duration
	clock clock.Clock
}

// NewViewStore creates a view store. A non-positive ttl keeps views forever.
func NewViewStore(ttl time.Duration, c clock.Clock) *ViewStore {
	if c == nil {
		c = clock.NewSystem()
	}
	return &ViewStore{views: make(map[string]storedView), ttl: ttl, clock: c}
}

// Save stores state under id and renews its expiry.
func (s *ViewStore) Save(ctx context.Context, id string, state viewstate.State) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := storedView{state: state}
	if s.ttl > 0 {
		v.expiresAt = s.clock.Now().Add(s.ttl)
	}
	s.views[id] = v
	return nil
}

// Get returns the state stored under id.
func (s *ViewStore) Get(ctx context.Context, id string) (viewstate.State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.views[id]
	if !ok {
		return viewstate.State{}, domain.ErrViewNotFound
	}
	if !v.expiresAt.IsZero() && !s.clock.Now().Before(v.expiresAt) {
		delete(s.views, id)
		return viewstate.State{}, domain.ErrViewNotFound
	}
	return v.state, nil
}

// Delete removes a view.
func (s *ViewStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.views, id)
	s.mu.Unlock()
	return nil
}
