package billing

import (
	"context"
	"testing"
	"time"

	"github.com/billing/backend/internal/domain/client"
	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func fixedClock(t time.Time) shared.Clock {
	return shared.ClockFunc(func() time.Time { return t })
}

func testClient(t *testing.T) *client.Client {
	t.Helper()
	c, err := client.NewClient("Acme Ltda", "12.345.678/0001-90", "", "")
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func testContract(t *testing.T, clientID uuid.UUID, total, down float64, count int, firstDue time.Time) *contract.Contract {
	t.Helper()
	c, err := contract.NewContract("CT-2026-001", clientID, "Acme Ltda", contract.Terms{
		TotalValue:       valueobject.NewMoneyBRLFromFloat(total),
		DownPayment:      valueobject.NewMoneyBRLFromFloat(down),
		InstallmentCount: count,
		FirstDueDate:     firstDue,
	}, "")
	require.NoError(t, err)
	c.ClearDomainEvents()
	return c
}

func newContractService(
	contractRepo *mockContractRepo,
	clientRepo *mockClientRepo,
	installmentRepo *mockInstallmentRepo,
	now time.Time,
) (*ContractService, *mockEventPublisher, *mockInvalidator) {
	publisher := &mockEventPublisher{}
	invalidator := &mockInvalidator{}
	svc := NewContractService(contractRepo, clientRepo, installmentRepo, publisher, invalidator, fixedClock(now), nil)
	return svc, publisher, invalidator
}

func TestContractService_CreateContract(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	firstDue := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("creates contract with generated schedule", func(t *testing.T) {
		cl := testClient(t)
		contractRepo := &mockContractRepo{}
		clientRepo := &mockClientRepo{}
		installmentRepo := &mockInstallmentRepo{}
		svc, publisher, invalidator := newContractService(contractRepo, clientRepo, installmentRepo, now)

		clientRepo.On("FindByID", mock.Anything, cl.ID).Return(cl, nil)
		contractRepo.On("FindByNumber", mock.Anything, "CT-2026-001").Return(nil, shared.ErrNotFound)
		contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*contract.Contract")).Return(nil)
		installmentRepo.On("SaveAll", mock.Anything, mock.MatchedBy(func(items []*installment.Installment) bool {
			return len(items) == 4 && items[0].Amount.StringFixed(2) == "200.00"
		})).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		invalidator.On("InvalidateContract", mock.Anything, mock.Anything).Return(nil)
		invalidator.On("InvalidateClient", mock.Anything, cl.ID).Return(nil)

		resp, err := svc.CreateContract(context.Background(), CreateContractRequest{
			ContractNumber:   "CT-2026-001",
			ClientID:         cl.ID,
			TotalValue:       decimal.NewFromInt(1000),
			DownPayment:      decimal.NewFromInt(200),
			InstallmentCount: 4,
			FirstDueDate:     firstDue,
		})
		require.NoError(t, err)

		assert.Equal(t, "Acme Ltda", resp.ClientName)
		assert.True(t, resp.FinancedAmount.Equal(decimal.NewFromInt(800)))
		installmentRepo.AssertExpectations(t)
		contractRepo.AssertExpectations(t)
	})

	t.Run("nothing persisted when generation fails", func(t *testing.T) {
		cl := testClient(t)
		contractRepo := &mockContractRepo{}
		clientRepo := &mockClientRepo{}
		installmentRepo := &mockInstallmentRepo{}
		svc, _, _ := newContractService(contractRepo, clientRepo, installmentRepo, now)

		clientRepo.On("FindByID", mock.Anything, cl.ID).Return(cl, nil)
		contractRepo.On("FindByNumber", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

		_, err := svc.CreateContract(context.Background(), CreateContractRequest{
			ContractNumber:   "CT-2026-001",
			ClientID:         cl.ID,
			TotalValue:       decimal.NewFromInt(1000),
			DownPayment:      decimal.NewFromInt(200),
			InstallmentCount: 4,
			FirstDueDate:     time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DUE_DATE_IN_PAST", domainErr.Code)
		contractRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		installmentRepo.AssertNotCalled(t, "SaveAll", mock.Anything, mock.Anything)
	})

	t.Run("unknown client fails", func(t *testing.T) {
		contractRepo := &mockContractRepo{}
		clientRepo := &mockClientRepo{}
		installmentRepo := &mockInstallmentRepo{}
		svc, _, _ := newContractService(contractRepo, clientRepo, installmentRepo, now)

		unknown := uuid.New()
		clientRepo.On("FindByID", mock.Anything, unknown).Return(nil, shared.ErrNotFound)

		_, err := svc.CreateContract(context.Background(), CreateContractRequest{
			ContractNumber:   "CT-X",
			ClientID:         unknown,
			TotalValue:       decimal.NewFromInt(100),
			InstallmentCount: 1,
			FirstDueDate:     firstDue,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("duplicate contract number fails", func(t *testing.T) {
		cl := testClient(t)
		contractRepo := &mockContractRepo{}
		clientRepo := &mockClientRepo{}
		installmentRepo := &mockInstallmentRepo{}
		svc, _, _ := newContractService(contractRepo, clientRepo, installmentRepo, now)

		existing := testContract(t, cl.ID, 1000, 0, 4, firstDue)
		clientRepo.On("FindByID", mock.Anything, cl.ID).Return(cl, nil)
		contractRepo.On("FindByNumber", mock.Anything, "CT-2026-001").Return(existing, nil)

		_, err := svc.CreateContract(context.Background(), CreateContractRequest{
			ContractNumber:   "CT-2026-001",
			ClientID:         cl.ID,
			TotalValue:       decimal.NewFromInt(100),
			InstallmentCount: 1,
			FirstDueDate:     firstDue,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	})
}

func TestContractService_UpdateContractTerms(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	firstDue := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	t.Run("term change replaces the unpaid tail atomically", func(t *testing.T) {
		cl := testClient(t)
		c := testContract(t, cl.ID, 1000, 200, 4, firstDue)

		existing, err := installment.GenerateSchedule(c, now)
		require.NoError(t, err)
		require.NoError(t, existing[0].RegisterPayment(firstDue, nil, ""))

		contractRepo := &mockContractRepo{}
		clientRepo := &mockClientRepo{}
		installmentRepo := &mockInstallmentRepo{}
		svc, publisher, invalidator := newContractService(contractRepo, clientRepo, installmentRepo, now)

		contractRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		contractRepo.On("Save", mock.Anything, c).Return(nil)
		installmentRepo.On("FindByContract", mock.Anything, c.ID).Return(existing, nil)
		installmentRepo.On("ReplaceForContract", mock.Anything, c.ID,
			mock.MatchedBy(func(deleteIDs []uuid.UUID) bool { return len(deleteIDs) == 3 }),
			mock.MatchedBy(func(create []*installment.Installment) bool {
				return len(create) == 7 && create[0].Sequence == 2
			}),
		).Return(nil)
		publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
		invalidator.On("InvalidateContract", mock.Anything, c.ID).Return(nil)
		invalidator.On("InvalidateClient", mock.Anything, cl.ID).Return(nil)

		resp, err := svc.UpdateContractTerms(context.Background(), c.ID, UpdateContractTermsRequest{
			TotalValue:       decimal.NewFromInt(1000),
			DownPayment:      decimal.NewFromInt(200),
			InstallmentCount: 8,
			FirstDueDate:     firstDue,
		})
		require.NoError(t, err)

		assert.Equal(t, 8, resp.InstallmentCount)
		installmentRepo.AssertExpectations(t)
	})

	t.Run("unchanged terms do not touch the schedule", func(t *testing.T) {
		cl := testClient(t)
		c := testContract(t, cl.ID, 1000, 200, 4, firstDue)

		contractRepo := &mockContractRepo{}
		clientRepo := &mockClientRepo{}
		installmentRepo := &mockInstallmentRepo{}
		svc, _, _ := newContractService(contractRepo, clientRepo, installmentRepo, now)

		contractRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
		contractRepo.On("Save", mock.Anything, c).Return(nil)

		_, err := svc.UpdateContractTerms(context.Background(), c.ID, UpdateContractTermsRequest{
			TotalValue:       decimal.NewFromInt(1000),
			DownPayment:      decimal.NewFromInt(200),
			InstallmentCount: 4,
			FirstDueDate:     firstDue,
		})
		require.NoError(t, err)

		installmentRepo.AssertNotCalled(t, "ReplaceForContract", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		installmentRepo.AssertNotCalled(t, "FindByContract", mock.Anything, mock.Anything)
	})

	t.Run("invalid terms are rejected before any persistence", func(t *testing.T) {
		cl := testClient(t)
		c := testContract(t, cl.ID, 1000, 200, 4, firstDue)

		contractRepo := &mockContractRepo{}
		clientRepo := &mockClientRepo{}
		installmentRepo := &mockInstallmentRepo{}
		svc, _, _ := newContractService(contractRepo, clientRepo, installmentRepo, now)

		contractRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)

		_, err := svc.UpdateContractTerms(context.Background(), c.ID, UpdateContractTermsRequest{
			TotalValue:       decimal.NewFromInt(1000),
			DownPayment:      decimal.NewFromInt(2000),
			InstallmentCount: 4,
			FirstDueDate:     firstDue,
		})
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "DOWN_PAYMENT_EXCEEDS_TOTAL", domainErr.Code)
		contractRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestContractService_DeleteContract(t *testing.T) {
	now := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	cl := testClient(t)
	c := testContract(t, cl.ID, 1000, 0, 4, time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC))

	contractRepo := &mockContractRepo{}
	clientRepo := &mockClientRepo{}
	installmentRepo := &mockInstallmentRepo{}
	svc, publisher, invalidator := newContractService(contractRepo, clientRepo, installmentRepo, now)

	contractRepo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	installmentRepo.On("DeleteByContract", mock.Anything, c.ID).Return(nil)
	contractRepo.On("Delete", mock.Anything, c.ID).Return(nil)
	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)
	invalidator.On("InvalidateContract", mock.Anything, c.ID).Return(nil)
	invalidator.On("InvalidateClient", mock.Anything, cl.ID).Return(nil)

	require.NoError(t, svc.DeleteContract(context.Background(), c.ID))

	installmentRepo.AssertCalled(t, "DeleteByContract", mock.Anything, c.ID)
	contractRepo.AssertCalled(t, "Delete", mock.Anything, c.ID)
}
