package contract

import (
	"context"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for contract persistence
type Repository interface {
	// FindByID finds a contract by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Contract, error)

	// FindByNumber finds a contract by its business number
	FindByNumber(ctx context.Context, number string) (*Contract, error)

	// FindByClient finds all contracts of a client
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Contract, error)

	// FindAll finds all contracts with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]Contract, error)

	// Save creates or updates a contract
	Save(ctx context.Context, c *Contract) error

	// Delete removes a contract
	Delete(ctx context.Context, id uuid.UUID) error

	// UpdateClientName refreshes the denormalized client name on all
	// contracts of the client
	UpdateClientName(ctx context.Context, clientID uuid.UUID, name string) error

	// Count counts contracts matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
