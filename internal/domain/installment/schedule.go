package installment

import (
	"time"

	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/shared"
)

// GenerateSchedule builds the full installment schedule for a contract.
// The financed amount (total minus down payment) is split across the
// installment count with cent-exact allocation, and due dates advance one
// calendar month per installment from the first due date.
//
// Validation is fail-fast in a fixed order: down payment above total, first
// due date in the past, non-positive count, nothing left to split.
func GenerateSchedule(c *contract.Contract, today time.Time) ([]*Installment, error) {
	terms := c.Terms()

	exceeds, err := terms.DownPayment.GreaterThan(terms.TotalValue)
	if err != nil {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
	}
	if exceeds {
		return nil, shared.ErrDownPaymentExceedsTotal
	}
	if DateOnly(terms.FirstDueDate).Before(DateOnly(today)) {
		return nil, shared.ErrDueDateInPast
	}
	if terms.InstallmentCount < 1 {
		return nil, shared.ErrInvalidInstallmentCount
	}

	net := c.FinancedAmount()
	if !net.IsPositive() {
		return nil, shared.ErrNothingToInstall
	}

	amounts, err := net.Allocate(terms.InstallmentCount)
	if err != nil {
		return nil, err
	}

	items := make([]*Installment, 0, terms.InstallmentCount)
	for seq := 1; seq <= terms.InstallmentCount; seq++ {
		item, err := NewInstallment(c.ID, c.ClientID, c.ClientName, seq, amounts[seq-1], DueDateForSequence(terms.FirstDueDate, seq))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return items, nil
}

// DueDateForSequence returns the due date of the installment at the given
// 1-based sequence. The day of month anchors on the first due date's day and
// clamps to the last day of shorter months instead of overflowing into the
// next month, so a schedule anchored on the 31st falls on Feb 28/29 and back
// on Mar 31.
func DueDateForSequence(firstDueDate time.Time, sequence int) time.Time {
	first := DateOnly(firstDueDate)
	offset := sequence - 1
	if offset == 0 {
		return first
	}

	year := first.Year()
	month := int(first.Month()) + offset
	year += (month - 1) / 12
	month = (month-1)%12 + 1

	day := first.Day()
	if last := lastDayOfMonth(year, time.Month(month)); day > last {
		day = last
	}

	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

func lastDayOfMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
