package installment

import (
	"time"

	"github.com/google/uuid"
)

// DeriveStatuses recomputes status and days late for every unpaid installment
// against the given day and returns only the ones that changed. Running it
// twice for the same day yields no changes the second time.
//
// IDs in skip are left untouched. The application layer passes installments
// whose payment was cleared moments ago, so a concurrent sweep does not race
// with the clearing transaction.
func DeriveStatuses(items []*Installment, today time.Time, skip map[uuid.UUID]bool) []*Installment {
	changed := make([]*Installment, 0)
	for _, item := range items {
		if skip[item.ID] {
			continue
		}
		if item.Refresh(today) {
			changed = append(changed, item)
		}
	}
	return changed
}
