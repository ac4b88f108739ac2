package persistence

import (
	"context"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustNewInstallment(t *testing.T, contractID, clientID uuid.UUID, sequence int, dueDate time.Time) *installment.Installment {
	t.Helper()
	item, err := installment.NewInstallment(contractID, clientID, "Maria Souza", sequence, valueobject.NewMoneyBRLFromFloat(100), dueDate)
	require.NoError(t, err)
	return item
}

func TestInstallmentRepository_SaveAndFind(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	t.Run("saves and loads an installment", func(t *testing.T) {
		item := mustNewInstallment(t, uuid.New(), uuid.New(), 1,
			time.Date(2030, time.March, 15, 0, 0, 0, 0, time.UTC))

		err := repo.Save(ctx, item)
		require.NoError(t, err)

		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, item.ID, found.ID)
		assert.Equal(t, 1, found.Sequence)
		assert.Equal(t, installment.StatusPending, found.Status)
		assert.True(t, found.Amount.Amount().Equal(item.Amount.Amount()))
		assert.Equal(t, item.DueDate, found.DueDate)
		assert.Nil(t, found.PaymentDate)
		assert.Nil(t, found.PaidAmount)
	})

	t.Run("round-trips payment fields", func(t *testing.T) {
		item := mustNewInstallment(t, uuid.New(), uuid.New(), 1,
			time.Date(2030, time.April, 15, 0, 0, 0, 0, time.UTC))
		paid := valueobject.NewMoneyBRLFromFloat(80)
		require.NoError(t, item.RegisterPayment(time.Date(2030, time.April, 10, 0, 0, 0, 0, time.UTC), &paid, "partial, rest next month"))
		require.NoError(t, repo.Save(ctx, item))

		found, err := repo.FindByID(ctx, item.ID)
		require.NoError(t, err)
		assert.Equal(t, installment.StatusPaid, found.Status)
		require.NotNil(t, found.PaymentDate)
		assert.Equal(t, time.Date(2030, time.April, 10, 0, 0, 0, 0, time.UTC), *found.PaymentDate)
		require.NotNil(t, found.PaidAmount)
		assert.True(t, found.PaidAmount.Amount().Equal(paid.Amount()))
		assert.Equal(t, "partial, rest next month", found.Note)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestInstallmentRepository_FindByContract(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	clientID := uuid.New()
	first := time.Date(2030, time.March, 15, 0, 0, 0, 0, time.UTC)

	// Insert out of order to exercise the ordering
	for _, seq := range []int{3, 1, 2} {
		item := mustNewInstallment(t, contractID, clientID, seq, first.AddDate(0, seq-1, 0))
		require.NoError(t, repo.Save(ctx, item))
	}
	other := mustNewInstallment(t, uuid.New(), uuid.New(), 1, first)
	require.NoError(t, repo.Save(ctx, other))

	items, err := repo.FindByContract(ctx, contractID)
	require.NoError(t, err)
	require.Len(t, items, 3)
	for i, item := range items {
		assert.Equal(t, i+1, item.Sequence)
		assert.Equal(t, contractID, item.ContractID)
	}
}

func TestInstallmentRepository_FindUnpaidAndOverdue(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	clientID := uuid.New()

	overdue := mustNewInstallment(t, contractID, clientID, 1,
		time.Date(2030, time.March, 15, 0, 0, 0, 0, time.UTC))
	dueToday := mustNewInstallment(t, contractID, clientID, 2,
		time.Date(2030, time.April, 15, 0, 0, 0, 0, time.UTC))
	paid := mustNewInstallment(t, contractID, clientID, 3,
		time.Date(2030, time.February, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, paid.RegisterPayment(time.Date(2030, time.February, 10, 0, 0, 0, 0, time.UTC), nil, ""))

	require.NoError(t, repo.SaveAll(ctx, []*installment.Installment{overdue, dueToday, paid}))

	t.Run("unpaid excludes paid installments", func(t *testing.T) {
		items, err := repo.FindUnpaid(ctx)
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, 1, items[0].Sequence)
		assert.Equal(t, 2, items[1].Sequence)
	})

	t.Run("overdue is strictly before the reference day", func(t *testing.T) {
		today := time.Date(2030, time.April, 15, 13, 45, 0, 0, time.UTC)

		items, err := repo.FindOverdue(ctx, today)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, overdue.ID, items[0].ID)
	})
}

func TestInstallmentRepository_ReplaceForContract(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	clientID := uuid.New()
	first := time.Date(2030, time.March, 15, 0, 0, 0, 0, time.UTC)

	paid := mustNewInstallment(t, contractID, clientID, 1, first)
	require.NoError(t, paid.RegisterPayment(first, nil, ""))
	old2 := mustNewInstallment(t, contractID, clientID, 2, first.AddDate(0, 1, 0))
	old3 := mustNewInstallment(t, contractID, clientID, 3, first.AddDate(0, 2, 0))
	require.NoError(t, repo.SaveAll(ctx, []*installment.Installment{paid, old2, old3}))

	t.Run("replaces the unpaid tail keeping paid rows", func(t *testing.T) {
		create := []*installment.Installment{
			mustNewInstallment(t, contractID, clientID, 2, first.AddDate(0, 1, 0)),
			mustNewInstallment(t, contractID, clientID, 3, first.AddDate(0, 2, 0)),
			mustNewInstallment(t, contractID, clientID, 4, first.AddDate(0, 3, 0)),
		}

		err := repo.ReplaceForContract(ctx, contractID, []uuid.UUID{old2.ID, old3.ID}, create)
		require.NoError(t, err)

		items, err := repo.FindByContract(ctx, contractID)
		require.NoError(t, err)
		require.Len(t, items, 4)
		assert.Equal(t, paid.ID, items[0].ID)
		assert.Equal(t, installment.StatusPaid, items[0].Status)
		for i, item := range items {
			assert.Equal(t, i+1, item.Sequence)
		}
	})

	t.Run("delete-only plan leaves no unpaid rows", func(t *testing.T) {
		items, err := repo.FindByContract(ctx, contractID)
		require.NoError(t, err)
		var deleteIDs []uuid.UUID
		for _, item := range items {
			if item.Status != installment.StatusPaid {
				deleteIDs = append(deleteIDs, item.ID)
			}
		}

		err = repo.ReplaceForContract(ctx, contractID, deleteIDs, nil)
		require.NoError(t, err)

		items, err = repo.FindByContract(ctx, contractID)
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, paid.ID, items[0].ID)
	})
}

func TestInstallmentRepository_UpdateClientName(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	first := time.Date(2030, time.March, 15, 0, 0, 0, 0, time.UTC)
	mine := mustNewInstallment(t, uuid.New(), clientID, 1, first)
	other := mustNewInstallment(t, uuid.New(), uuid.New(), 1, first)
	require.NoError(t, repo.SaveAll(ctx, []*installment.Installment{mine, other}))

	require.NoError(t, repo.UpdateClientName(ctx, clientID, "Maria Souza Lima"))

	found, err := repo.FindByID(ctx, mine.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza Lima", found.ClientName)

	untouched, err := repo.FindByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, "Maria Souza", untouched.ClientName)
}

func TestInstallmentRepository_DeleteByContract(t *testing.T) {
	db := setupTestDB(t)
	repo := NewGormInstallmentRepository(db)
	ctx := context.Background()

	contractID := uuid.New()
	clientID := uuid.New()
	first := time.Date(2030, time.March, 15, 0, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveAll(ctx, []*installment.Installment{
		mustNewInstallment(t, contractID, clientID, 1, first),
		mustNewInstallment(t, contractID, clientID, 2, first.AddDate(0, 1, 0)),
	}))
	other := mustNewInstallment(t, uuid.New(), clientID, 1, first)
	require.NoError(t, repo.Save(ctx, other))

	require.NoError(t, repo.DeleteByContract(ctx, contractID))

	items, err := repo.FindByContract(ctx, contractID)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = repo.FindByID(ctx, other.ID)
	require.NoError(t, err)
}
