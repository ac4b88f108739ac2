package cache

import (
	"sync"
	"time"

	"github.com/billing/backend/internal/application/billing"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// DefaultClearGuardWindow is how long a freshly cleared payment is shielded
// from the overdue sweep.
const DefaultClearGuardWindow = 5 * time.Second

// InMemoryClearGuard tracks recently cleared installments in a TTL map.
// Suitable for single-instance deployments and testing.
type InMemoryClearGuard struct {
	mu      sync.RWMutex
	entries map[uuid.UUID]time.Time // installment ID -> expiry
	window  time.Duration
	clock   shared.Clock
}

// ClearGuardOption is a functional option for configuring the guard
type ClearGuardOption func(*InMemoryClearGuard)

// WithGuardWindow sets how long a mark stays active
func WithGuardWindow(window time.Duration) ClearGuardOption {
	return func(g *InMemoryClearGuard) {
		if window > 0 {
			g.window = window
		}
	}
}

// WithGuardClock sets the clock used for expiry, for testing
func WithGuardClock(clock shared.Clock) ClearGuardOption {
	return func(g *InMemoryClearGuard) {
		g.clock = clock
	}
}

// NewInMemoryClearGuard creates a new in-memory clear guard
func NewInMemoryClearGuard(opts ...ClearGuardOption) *InMemoryClearGuard {
	g := &InMemoryClearGuard{
		entries: make(map[uuid.UUID]time.Time),
		window:  DefaultClearGuardWindow,
		clock:   shared.SystemClock{},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Mark records that the installment's payment was just cleared
func (g *InMemoryClearGuard) Mark(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.entries[id] = g.clock.Now().Add(g.window)
}

// ActiveIDs returns the installments still inside the guard window.
// Expired entries are pruned on the way.
func (g *InMemoryClearGuard) ActiveIDs() map[uuid.UUID]bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.clock.Now()
	active := make(map[uuid.UUID]bool, len(g.entries))
	for id, expiresAt := range g.entries {
		if now.Before(expiresAt) {
			active[id] = true
		} else {
			delete(g.entries, id)
		}
	}
	return active
}

// Size returns the number of tracked entries (for testing/monitoring)
func (g *InMemoryClearGuard) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.entries)
}

var _ billing.RecentlyClearedGuard = (*InMemoryClearGuard)(nil)
