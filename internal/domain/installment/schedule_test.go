package installment

import (
	"errors"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newContract(t *testing.T, total, down float64, count int, firstDue time.Time) *contract.Contract {
	t.Helper()
	c, err := contract.NewContract("CT-TEST", uuid.New(), "Acme Ltda", contract.Terms{
		TotalValue:       valueobject.NewMoneyBRLFromFloat(total),
		DownPayment:      valueobject.NewMoneyBRLFromFloat(down),
		InstallmentCount: count,
		FirstDueDate:     firstDue,
	}, "")
	require.NoError(t, err)
	return c
}

func assertDomainCode(t *testing.T, err error, code string) {
	t.Helper()
	var domainErr *shared.DomainError
	require.True(t, errors.As(err, &domainErr), "expected a domain error, got %v", err)
	assert.Equal(t, code, domainErr.Code)
}

func TestGenerateSchedule(t *testing.T) {
	today := date(2026, 8, 1)

	t.Run("even split across monthly due dates", func(t *testing.T) {
		c := newContract(t, 1000, 200, 4, date(2026, 9, 15))

		items, err := GenerateSchedule(c, today)
		require.NoError(t, err)
		require.Len(t, items, 4)

		for idx, item := range items {
			assert.Equal(t, idx+1, item.Sequence)
			assert.Equal(t, "200.00", item.Amount.StringFixed(2))
			assert.Equal(t, StatusPending, item.Status)
			assert.Nil(t, item.PaymentDate)
			assert.Equal(t, c.ID, item.ContractID)
			assert.Equal(t, "Acme Ltda", item.ClientName)
		}

		assert.Equal(t, date(2026, 9, 15), items[0].DueDate)
		assert.Equal(t, date(2026, 10, 15), items[1].DueDate)
		assert.Equal(t, date(2026, 11, 15), items[2].DueDate)
		assert.Equal(t, date(2026, 12, 15), items[3].DueDate)
	})

	t.Run("remainder cents land on the first installments", func(t *testing.T) {
		c := newContract(t, 100, 0, 3, date(2026, 9, 10))

		items, err := GenerateSchedule(c, today)
		require.NoError(t, err)
		require.Len(t, items, 3)

		assert.Equal(t, "33.34", items[0].Amount.StringFixed(2))
		assert.Equal(t, "33.33", items[1].Amount.StringFixed(2))
		assert.Equal(t, "33.33", items[2].Amount.StringFixed(2))

		total := valueobject.ZeroBRL()
		for _, item := range items {
			total = total.MustAdd(item.Amount)
		}
		assert.True(t, total.Equals(c.FinancedAmount()))
	})

	t.Run("day of month clamps in short months and recovers", func(t *testing.T) {
		c := newContract(t, 600, 0, 5, date(2024, 1, 31))

		items, err := GenerateSchedule(c, date(2024, 1, 1))
		require.NoError(t, err)
		require.Len(t, items, 5)

		assert.Equal(t, date(2024, 1, 31), items[0].DueDate)
		assert.Equal(t, date(2024, 2, 29), items[1].DueDate) // leap year
		assert.Equal(t, date(2024, 3, 31), items[2].DueDate)
		assert.Equal(t, date(2024, 4, 30), items[3].DueDate)
		assert.Equal(t, date(2024, 5, 31), items[4].DueDate)
	})

	t.Run("year rollover", func(t *testing.T) {
		c := newContract(t, 300, 0, 3, date(2026, 11, 20))

		items, err := GenerateSchedule(c, today)
		require.NoError(t, err)

		assert.Equal(t, date(2026, 11, 20), items[0].DueDate)
		assert.Equal(t, date(2026, 12, 20), items[1].DueDate)
		assert.Equal(t, date(2027, 1, 20), items[2].DueDate)
	})

	t.Run("first due date today is allowed", func(t *testing.T) {
		c := newContract(t, 100, 0, 1, today)

		items, err := GenerateSchedule(c, today)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, "100.00", items[0].Amount.StringFixed(2))
	})

	t.Run("first due date in the past is rejected", func(t *testing.T) {
		c := newContract(t, 100, 0, 1, date(2026, 7, 31))

		_, err := GenerateSchedule(c, today)
		assertDomainCode(t, err, "DUE_DATE_IN_PAST")
	})

	t.Run("time of day does not make today count as past", func(t *testing.T) {
		c := newContract(t, 100, 0, 1, date(2026, 8, 1))

		_, err := GenerateSchedule(c, time.Date(2026, 8, 1, 23, 59, 0, 0, time.UTC))
		require.NoError(t, err)
	})

	t.Run("nothing to split when down payment covers the total", func(t *testing.T) {
		c := newContract(t, 500, 500, 2, date(2026, 9, 1))

		_, err := GenerateSchedule(c, today)
		assertDomainCode(t, err, "NOTHING_TO_INSTALL")
	})

	t.Run("past date check wins over nothing to split", func(t *testing.T) {
		c := newContract(t, 500, 500, 2, date(2026, 1, 1))

		_, err := GenerateSchedule(c, today)
		assertDomainCode(t, err, "DUE_DATE_IN_PAST")
	})
}

func TestDueDateForSequence(t *testing.T) {
	tests := []struct {
		name     string
		first    time.Time
		sequence int
		want     time.Time
	}{
		{"first installment keeps the first due date", date(2026, 9, 15), 1, date(2026, 9, 15)},
		{"advances one month per sequence", date(2026, 9, 15), 3, date(2026, 11, 15)},
		{"jan 31 clamps to feb 29 on leap years", date(2024, 1, 31), 2, date(2024, 2, 29)},
		{"jan 31 clamps to feb 28 otherwise", date(2026, 1, 31), 2, date(2026, 2, 28)},
		{"anchor day recovers after a clamped month", date(2024, 1, 31), 3, date(2024, 3, 31)},
		{"day 30 clamps in february only", date(2026, 1, 30), 4, date(2026, 4, 30)},
		{"crosses the year boundary", date(2026, 12, 5), 2, date(2027, 1, 5)},
		{"many months ahead", date(2026, 1, 31), 13, date(2027, 1, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DueDateForSequence(tt.first, tt.sequence))
		})
	}
}
