package billing

import (
	"context"

	"github.com/google/uuid"
)

// CacheInvalidator notifies other instances that cached schedule data for a
// contract or client is stale and must be refetched.
type CacheInvalidator interface {
	InvalidateContract(ctx context.Context, contractID uuid.UUID) error
	InvalidateClient(ctx context.Context, clientID uuid.UUID) error
}

// RecentlyClearedGuard tracks installments whose payment was cleared moments
// ago. The overdue sweep skips them for a short window so it cannot race with
// the clearing transaction and write a stale status back.
type RecentlyClearedGuard interface {
	// Mark records that the installment's payment was just cleared
	Mark(id uuid.UUID)

	// ActiveIDs returns the installments still inside the guard window
	ActiveIDs() map[uuid.UUID]bool
}
