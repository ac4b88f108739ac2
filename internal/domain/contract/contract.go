package contract

import (
	"time"

	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Contract represents a billed service contract aggregate root.
// Its payment terms drive the installment schedule: the financed amount
// (total minus down payment) is split into monthly installments starting at
// FirstDueDate.
type Contract struct {
	shared.BaseAggregateRoot
	ContractNumber   string            `json:"contract_number"`
	ClientID         uuid.UUID         `json:"client_id"`
	ClientName       string            `json:"client_name"` // denormalized for listings
	TotalValue       valueobject.Money `json:"total_value"`
	DownPayment      valueobject.Money `json:"down_payment"`
	InstallmentCount int               `json:"installment_count"`
	FirstDueDate     time.Time         `json:"first_due_date"`
	Notes            string            `json:"notes"`
}

// Terms holds the schedule-relevant payment terms of a contract
type Terms struct {
	TotalValue       valueobject.Money
	DownPayment      valueobject.Money
	InstallmentCount int
	FirstDueDate     time.Time
}

// NewContract creates a new contract
func NewContract(contractNumber string, clientID uuid.UUID, clientName string, terms Terms, notes string) (*Contract, error) {
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT_ID", "Client ID is required")
	}
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	c := &Contract{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ContractNumber:    contractNumber,
		ClientID:          clientID,
		ClientName:        clientName,
		TotalValue:        terms.TotalValue,
		DownPayment:       terms.DownPayment,
		InstallmentCount:  terms.InstallmentCount,
		FirstDueDate:      normalizeDate(terms.FirstDueDate),
		Notes:             notes,
	}

	c.AddDomainEvent(NewContractCreatedEvent(c))

	return c, nil
}

func validateTerms(terms Terms) error {
	if terms.TotalValue.IsNegative() {
		return shared.NewDomainError("INVALID_TOTAL_VALUE", "Contract total value cannot be negative")
	}
	if !terms.TotalValue.IsCentPrecise() {
		return shared.NewDomainError("INVALID_TOTAL_VALUE", "Contract total value cannot be finer than cents")
	}
	if terms.DownPayment.IsNegative() {
		return shared.NewDomainError("INVALID_DOWN_PAYMENT", "Down payment cannot be negative")
	}
	if !terms.DownPayment.IsCentPrecise() {
		return shared.NewDomainError("INVALID_DOWN_PAYMENT", "Down payment cannot be finer than cents")
	}
	exceeds, err := terms.DownPayment.GreaterThan(terms.TotalValue)
	if err != nil {
		return shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
	}
	if exceeds {
		return shared.ErrDownPaymentExceedsTotal
	}
	if terms.InstallmentCount < 1 {
		return shared.ErrInvalidInstallmentCount
	}
	if terms.FirstDueDate.IsZero() {
		return shared.NewDomainError("INVALID_FIRST_DUE_DATE", "First due date is required")
	}
	return nil
}

// Terms returns the current schedule-relevant terms
func (c *Contract) Terms() Terms {
	return Terms{
		TotalValue:       c.TotalValue,
		DownPayment:      c.DownPayment,
		InstallmentCount: c.InstallmentCount,
		FirstDueDate:     c.FirstDueDate,
	}
}

// FinancedAmount returns the amount to be split into installments
// (total value minus down payment)
func (c *Contract) FinancedAmount() valueobject.Money {
	return c.TotalValue.MustSubtract(c.DownPayment)
}

// ChangeTerms updates the contract payment terms.
// Returns true when a schedule-relevant term actually changed, meaning the
// installment schedule must be recalculated.
func (c *Contract) ChangeTerms(terms Terms) (bool, error) {
	if err := validateTerms(terms); err != nil {
		return false, err
	}

	terms.FirstDueDate = normalizeDate(terms.FirstDueDate)
	if c.termsEqual(terms) {
		return false, nil
	}

	c.TotalValue = terms.TotalValue
	c.DownPayment = terms.DownPayment
	c.InstallmentCount = terms.InstallmentCount
	c.FirstDueDate = terms.FirstDueDate
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewContractTermsChangedEvent(c))

	return true, nil
}

func (c *Contract) termsEqual(terms Terms) bool {
	return c.TotalValue.Equals(terms.TotalValue) &&
		c.DownPayment.Equals(terms.DownPayment) &&
		c.InstallmentCount == terms.InstallmentCount &&
		c.FirstDueDate.Equal(terms.FirstDueDate)
}

// UpdateNotes updates the free-form notes field
func (c *Contract) UpdateNotes(notes string) {
	c.Notes = notes
	c.Touch()
	c.IncrementVersion()
}

// SetClientName refreshes the denormalized client name copy
func (c *Contract) SetClientName(name string) {
	if c.ClientName == name {
		return
	}
	c.ClientName = name
	c.Touch()
}

// normalizeDate truncates a timestamp to a date in UTC.
// Due dates are calendar dates; time-of-day must never influence the
// schedule or lateness math.
func normalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
