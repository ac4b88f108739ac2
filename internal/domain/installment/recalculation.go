package installment

import (
	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RecalculationPlan describes how to bring a contract's schedule in line with
// changed terms: which existing installments to delete and which new ones to
// create. Paid installments are never part of DeleteIDs.
type RecalculationPlan struct {
	DeleteIDs []uuid.UUID
	Create    []*Installment
}

// IsEmpty returns true if the plan changes nothing
func (p *RecalculationPlan) IsEmpty() bool {
	return len(p.DeleteIDs) == 0 && len(p.Create) == 0
}

// PlanRecalculation rebuilds the unpaid tail of a schedule after the contract
// terms changed. Paid installments are kept untouched as historical record;
// every unpaid one is replaced. The tail holds one installment per open slot
// (installment count minus the number of paid rows), numbered from the
// sequence after the highest paid one, with amounts taken from the
// full-contract allocation. Paid rows consume the leading allocation slots,
// so paid amounts plus the new tail cover the financed amount as if the
// schedule had been generated under the new terms from the start. When the
// paid sequences have gaps the tail runs past the installment count to keep
// the open-slot count right.
//
// Unlike initial generation, a first due date in the past is accepted here:
// terms may legitimately be edited months into a contract. A financed amount
// of zero or less yields a plan that only deletes the unpaid tail.
func PlanRecalculation(c *contract.Contract, existing []*Installment) (*RecalculationPlan, error) {
	terms := c.Terms()

	exceeds, err := terms.DownPayment.GreaterThan(terms.TotalValue)
	if err != nil {
		return nil, shared.NewDomainError("CURRENCY_MISMATCH", err.Error())
	}
	if exceeds {
		return nil, shared.ErrDownPaymentExceedsTotal
	}
	if terms.InstallmentCount < 1 {
		return nil, shared.ErrInvalidInstallmentCount
	}

	plan := &RecalculationPlan{DeleteIDs: make([]uuid.UUID, 0), Create: make([]*Installment, 0)}

	paidCount := 0
	lastPaidSeq := 0
	for _, item := range existing {
		if item.IsPaid() {
			paidCount++
			if item.Sequence > lastPaidSeq {
				lastPaidSeq = item.Sequence
			}
			continue
		}
		plan.DeleteIDs = append(plan.DeleteIDs, item.ID)
	}

	remaining := terms.InstallmentCount - paidCount
	net := c.FinancedAmount()
	if !net.IsPositive() || remaining <= 0 {
		return plan, nil
	}

	amounts, err := net.Allocate(terms.InstallmentCount)
	if err != nil {
		return nil, err
	}

	for idx := 0; idx < remaining; idx++ {
		seq := lastPaidSeq + 1 + idx
		item, err := NewInstallment(c.ID, c.ClientID, c.ClientName, seq, amounts[paidCount+idx], DueDateForSequence(terms.FirstDueDate, seq))
		if err != nil {
			return nil, err
		}
		plan.Create = append(plan.Create, item)
	}

	return plan, nil
}
