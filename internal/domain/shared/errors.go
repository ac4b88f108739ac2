package shared

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// Common domain errors
var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input provided")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
)

// Schedule generation and recalculation errors
var (
	ErrDownPaymentExceedsTotal = NewDomainError("DOWN_PAYMENT_EXCEEDS_TOTAL", "Down payment cannot exceed the contract total value")
	ErrDueDateInPast           = NewDomainError("DUE_DATE_IN_PAST", "First due date cannot be in the past")
	ErrInvalidInstallmentCount = NewDomainError("INVALID_INSTALLMENT_COUNT", "Installment count must be at least 1")
	ErrNothingToInstall        = NewDomainError("NOTHING_TO_INSTALL", "Contract has no remaining value to split into installments")
)
