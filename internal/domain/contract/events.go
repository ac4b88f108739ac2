package contract

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event type names for the contract aggregate
const (
	EventTypeContractCreated      = "ContractCreated"
	EventTypeContractTermsChanged = "ContractTermsChanged"
	EventTypeContractDeleted      = "ContractDeleted"
)

// ContractCreatedEvent is raised when a new contract is created
type ContractCreatedEvent struct {
	shared.BaseDomainEvent
	ContractID       uuid.UUID `json:"contract_id"`
	ContractNumber   string    `json:"contract_number"`
	ClientID         uuid.UUID `json:"client_id"`
	TotalValue       string    `json:"total_value"`
	InstallmentCount int       `json:"installment_count"`
	FirstDueDate     time.Time `json:"first_due_date"`
}

// NewContractCreatedEvent creates a new ContractCreatedEvent
func NewContractCreatedEvent(c *Contract) *ContractCreatedEvent {
	return &ContractCreatedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeContractCreated, "Contract", c.ID),
		ContractID:       c.ID,
		ContractNumber:   c.ContractNumber,
		ClientID:         c.ClientID,
		TotalValue:       c.TotalValue.StringFixed(2),
		InstallmentCount: c.InstallmentCount,
		FirstDueDate:     c.FirstDueDate,
	}
}

// ContractTermsChangedEvent is raised when schedule-relevant terms change.
// The unpaid part of the installment schedule must be recalculated.
type ContractTermsChangedEvent struct {
	shared.BaseDomainEvent
	ContractID       uuid.UUID `json:"contract_id"`
	ClientID         uuid.UUID `json:"client_id"`
	TotalValue       string    `json:"total_value"`
	DownPayment      string    `json:"down_payment"`
	InstallmentCount int       `json:"installment_count"`
	FirstDueDate     time.Time `json:"first_due_date"`
}

// NewContractTermsChangedEvent creates a new ContractTermsChangedEvent
func NewContractTermsChangedEvent(c *Contract) *ContractTermsChangedEvent {
	return &ContractTermsChangedEvent{
		BaseDomainEvent:  shared.NewBaseDomainEvent(EventTypeContractTermsChanged, "Contract", c.ID),
		ContractID:       c.ID,
		ClientID:         c.ClientID,
		TotalValue:       c.TotalValue.StringFixed(2),
		DownPayment:      c.DownPayment.StringFixed(2),
		InstallmentCount: c.InstallmentCount,
		FirstDueDate:     c.FirstDueDate,
	}
}

// ContractDeletedEvent is raised after a contract and its installments are removed
type ContractDeletedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	ClientID   uuid.UUID `json:"client_id"`
}

// NewContractDeletedEvent creates a new ContractDeletedEvent
func NewContractDeletedEvent(c *Contract) *ContractDeletedEvent {
	return &ContractDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeContractDeleted, "Contract", c.ID),
		ContractID:      c.ID,
		ClientID:        c.ClientID,
	}
}
