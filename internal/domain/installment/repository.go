package installment

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Repository defines the interface for installment persistence
type Repository interface {
	// FindByID finds an installment by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Installment, error)

	// FindByContract finds all installments of a contract ordered by sequence
	FindByContract(ctx context.Context, contractID uuid.UUID) ([]*Installment, error)

	// FindByClient finds all installments of a client ordered by due date
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]*Installment, error)

	// FindUnpaid finds every installment without a payment, across contracts
	FindUnpaid(ctx context.Context) ([]*Installment, error)

	// FindOverdue finds unpaid installments due strictly before the given day
	FindOverdue(ctx context.Context, before time.Time) ([]*Installment, error)

	// FindAll finds installments with filtering
	FindAll(ctx context.Context, filter shared.Filter) ([]*Installment, error)

	// Save creates or updates a single installment
	Save(ctx context.Context, item *Installment) error

	// SaveAll persists a batch of installments
	SaveAll(ctx context.Context, items []*Installment) error

	// ReplaceForContract atomically deletes the given installments and
	// inserts the new ones, all within one transaction
	ReplaceForContract(ctx context.Context, contractID uuid.UUID, deleteIDs []uuid.UUID, create []*Installment) error

	// DeleteByContract removes every installment of a contract
	DeleteByContract(ctx context.Context, contractID uuid.UUID) error

	// UpdateClientName refreshes the denormalized client name on all
	// installments of the client
	UpdateClientName(ctx context.Context, clientID uuid.UUID, name string) error

	// Count counts installments matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
