package installment

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event type names for the installment aggregate
const (
	EventTypeScheduleGenerated    = "InstallmentScheduleGenerated"
	EventTypeScheduleRecalculated = "InstallmentScheduleRecalculated"
	EventTypeInstallmentPaid      = "InstallmentPaid"
	EventTypePaymentCleared       = "InstallmentPaymentCleared"
	EventTypeInstallmentOverdue   = "InstallmentOverdue"
)

// ScheduleGeneratedEvent is raised when a full schedule is generated for a contract
type ScheduleGeneratedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	Count      int       `json:"count"`
}

// NewScheduleGeneratedEvent creates a new ScheduleGeneratedEvent
func NewScheduleGeneratedEvent(contractID uuid.UUID, count int) *ScheduleGeneratedEvent {
	return &ScheduleGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleGenerated, "Contract", contractID),
		ContractID:      contractID,
		Count:           count,
	}
}

// ScheduleRecalculatedEvent is raised when the unpaid part of a schedule is rebuilt
type ScheduleRecalculatedEvent struct {
	shared.BaseDomainEvent
	ContractID uuid.UUID `json:"contract_id"`
	Deleted    int       `json:"deleted"`
	Created    int       `json:"created"`
}

// NewScheduleRecalculatedEvent creates a new ScheduleRecalculatedEvent
func NewScheduleRecalculatedEvent(contractID uuid.UUID, deleted, created int) *ScheduleRecalculatedEvent {
	return &ScheduleRecalculatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeScheduleRecalculated, "Contract", contractID),
		ContractID:      contractID,
		Deleted:         deleted,
		Created:         created,
	}
}

// InstallmentPaidEvent is raised when a payment is registered
type InstallmentPaidEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID `json:"installment_id"`
	ContractID    uuid.UUID `json:"contract_id"`
	Sequence      int       `json:"sequence"`
	PaymentDate   time.Time `json:"payment_date"`
	PaidAmount    string    `json:"paid_amount"`
}

// NewInstallmentPaidEvent creates a new InstallmentPaidEvent
func NewInstallmentPaidEvent(i *Installment) *InstallmentPaidEvent {
	e := &InstallmentPaidEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentPaid, "Installment", i.ID),
		InstallmentID:   i.ID,
		ContractID:      i.ContractID,
		Sequence:        i.Sequence,
	}
	if i.PaymentDate != nil {
		e.PaymentDate = *i.PaymentDate
	}
	if i.PaidAmount != nil {
		e.PaidAmount = i.PaidAmount.StringFixed(2)
	}
	return e
}

// PaymentClearedEvent is raised when a payment is removed from an installment
type PaymentClearedEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID `json:"installment_id"`
	ContractID    uuid.UUID `json:"contract_id"`
	Sequence      int       `json:"sequence"`
}

// NewPaymentClearedEvent creates a new PaymentClearedEvent
func NewPaymentClearedEvent(i *Installment) *PaymentClearedEvent {
	return &PaymentClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePaymentCleared, "Installment", i.ID),
		InstallmentID:   i.ID,
		ContractID:      i.ContractID,
		Sequence:        i.Sequence,
	}
}

// InstallmentOverdueEvent is raised the first time an installment turns late
type InstallmentOverdueEvent struct {
	shared.BaseDomainEvent
	InstallmentID uuid.UUID `json:"installment_id"`
	ContractID    uuid.UUID `json:"contract_id"`
	Sequence      int       `json:"sequence"`
	DaysLate      int       `json:"days_late"`
}

// NewInstallmentOverdueEvent creates a new InstallmentOverdueEvent
func NewInstallmentOverdueEvent(i *Installment, daysLate int) *InstallmentOverdueEvent {
	return &InstallmentOverdueEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeInstallmentOverdue, "Installment", i.ID),
		InstallmentID:   i.ID,
		ContractID:      i.ContractID,
		Sequence:        i.Sequence,
		DaysLate:        daysLate,
	}
}
