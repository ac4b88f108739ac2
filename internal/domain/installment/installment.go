package installment

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Status represents the lifecycle state of an installment
type Status string

const (
	StatusPending Status = "PENDING"
	StatusPaid    Status = "PAID"
	StatusLate    Status = "LATE"
)

// IsValid checks if the status is a known value
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusPaid, StatusLate:
		return true
	}
	return false
}

// Installment represents a single monthly installment of a contract.
// Status is derived state: an installment with a payment date is Paid, an
// unpaid one past its due date is Late, otherwise Pending. The payment date
// is the source of truth; status and days late are recomputed from it.
type Installment struct {
	shared.BaseAggregateRoot
	ContractID  uuid.UUID          `json:"contract_id"`
	ClientID    uuid.UUID          `json:"client_id"`
	ClientName  string             `json:"client_name"` // denormalized for listings
	Sequence    int                `json:"sequence"`    // 1-based position in the schedule
	Amount      valueobject.Money  `json:"amount"`
	DueDate     time.Time          `json:"due_date"`
	Status      Status             `json:"status"`
	PaymentDate *time.Time         `json:"payment_date,omitempty"`
	PaidAmount  *valueobject.Money `json:"paid_amount,omitempty"`
	DaysLate    int                `json:"days_late"`
	Note        string             `json:"note,omitempty"` // free-form payment note
}

// NewInstallment creates a pending installment
func NewInstallment(contractID, clientID uuid.UUID, clientName string, sequence int, amount valueobject.Money, dueDate time.Time) (*Installment, error) {
	if contractID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CONTRACT_ID", "Contract ID is required")
	}
	if sequence < 1 {
		return nil, shared.NewDomainError("INVALID_SEQUENCE", "Installment sequence must be at least 1")
	}
	if amount.IsNegative() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Installment amount cannot be negative")
	}

	return &Installment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractID:        contractID,
		ClientID:          clientID,
		ClientName:        clientName,
		Sequence:          sequence,
		Amount:            amount,
		DueDate:           DateOnly(dueDate),
		Status:            StatusPending,
	}, nil
}

// IsPaid returns true if a payment has been registered
func (i *Installment) IsPaid() bool {
	return i.PaymentDate != nil
}

// RegisterPayment records a payment on the installment. Days late captures
// how far past the due date the payment came in, kept as historical record.
// A nil paid amount means the installment amount was paid in full. The note
// is free-form text attached to the payment, empty when none was given.
func (i *Installment) RegisterPayment(paymentDate time.Time, paidAmount *valueobject.Money, note string) error {
	if i.IsPaid() {
		return shared.NewDomainError("ALREADY_PAID", "Installment is already paid")
	}
	if paidAmount != nil && paidAmount.IsNegative() {
		return shared.NewDomainError("INVALID_AMOUNT", "Paid amount cannot be negative")
	}

	date := DateOnly(paymentDate)
	i.PaymentDate = &date
	if paidAmount != nil {
		i.PaidAmount = paidAmount
	} else {
		amount := i.Amount
		i.PaidAmount = &amount
	}
	i.Status = StatusPaid
	i.Note = note
	daysLate := DaysBetween(i.DueDate, date)
	if daysLate < 0 {
		daysLate = 0
	}
	i.DaysLate = daysLate
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewInstallmentPaidEvent(i))

	return nil
}

// ClearPayment removes the payment record and its note, returning the installment to
// Pending with zero days late. A past-due installment is flagged Late again
// by the next sweep, once its recently-cleared guard window has passed.
func (i *Installment) ClearPayment() error {
	if !i.IsPaid() {
		return shared.NewDomainError("NOT_PAID", "Installment has no payment to clear")
	}

	i.PaymentDate = nil
	i.PaidAmount = nil
	i.Status = StatusPending
	i.DaysLate = 0
	i.Note = ""
	i.Touch()
	i.IncrementVersion()
	i.AddDomainEvent(NewPaymentClearedEvent(i))

	return nil
}

// Refresh recomputes the derived status and days late against the given day.
// Paid installments never change. Returns true if anything changed.
func (i *Installment) Refresh(today time.Time) bool {
	if i.IsPaid() {
		return false
	}

	status := StatusPending
	daysLate := DaysBetween(i.DueDate, today)
	if daysLate > 0 {
		status = StatusLate
	} else {
		daysLate = 0
	}

	if i.Status == status && i.DaysLate == daysLate {
		return false
	}

	if status == StatusLate && i.Status != StatusLate {
		i.AddDomainEvent(NewInstallmentOverdueEvent(i, daysLate))
	}
	i.Status = status
	i.DaysLate = daysLate
	return true
}

// DateOnly truncates a timestamp to a calendar date in UTC
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole days from one calendar date to another.
// Time-of-day and timezone are ignored.
func DaysBetween(from, to time.Time) int {
	return int(DateOnly(to).Sub(DateOnly(from)).Hours() / 24)
}
