package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/client"
	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockClientRepo struct {
	mock.Mock
}

func (m *mockClientRepo) FindByID(ctx context.Context, id uuid.UUID) (*client.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*client.Client), args.Error(1)
}

func (m *mockClientRepo) FindAll(ctx context.Context, filter shared.Filter) ([]client.Client, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]client.Client), args.Error(1)
}

func (m *mockClientRepo) Save(ctx context.Context, c *client.Client) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockClientRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockClientRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockContractRepo struct {
	mock.Mock
}

func (m *mockContractRepo) FindByID(ctx context.Context, id uuid.UUID) (*contract.Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *mockContractRepo) FindByNumber(ctx context.Context, number string) (*contract.Contract, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contract.Contract), args.Error(1)
}

func (m *mockContractRepo) FindByClient(ctx context.Context, clientID uuid.UUID) ([]contract.Contract, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *mockContractRepo) FindAll(ctx context.Context, filter shared.Filter) ([]contract.Contract, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]contract.Contract), args.Error(1)
}

func (m *mockContractRepo) Save(ctx context.Context, c *contract.Contract) error {
	return m.Called(ctx, c).Error(0)
}

func (m *mockContractRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockContractRepo) UpdateClientName(ctx context.Context, clientID uuid.UUID, name string) error {
	return m.Called(ctx, clientID, name).Error(0)
}

func (m *mockContractRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockInstallmentRepo struct {
	mock.Mock
}

func (m *mockInstallmentRepo) FindByID(ctx context.Context, id uuid.UUID) (*installment.Installment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*installment.Installment), args.Error(1)
}

func (m *mockInstallmentRepo) FindByContract(ctx context.Context, contractID uuid.UUID) ([]*installment.Installment, error) {
	args := m.Called(ctx, contractID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*installment.Installment), args.Error(1)
}

func (m *mockInstallmentRepo) FindByClient(ctx context.Context, clientID uuid.UUID) ([]*installment.Installment, error) {
	args := m.Called(ctx, clientID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*installment.Installment), args.Error(1)
}

func (m *mockInstallmentRepo) FindUnpaid(ctx context.Context) ([]*installment.Installment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*installment.Installment), args.Error(1)
}

func (m *mockInstallmentRepo) FindOverdue(ctx context.Context, before time.Time) ([]*installment.Installment, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*installment.Installment), args.Error(1)
}

func (m *mockInstallmentRepo) FindAll(ctx context.Context, filter shared.Filter) ([]*installment.Installment, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*installment.Installment), args.Error(1)
}

func (m *mockInstallmentRepo) Save(ctx context.Context, item *installment.Installment) error {
	return m.Called(ctx, item).Error(0)
}

func (m *mockInstallmentRepo) SaveAll(ctx context.Context, items []*installment.Installment) error {
	return m.Called(ctx, items).Error(0)
}

func (m *mockInstallmentRepo) ReplaceForContract(ctx context.Context, contractID uuid.UUID, deleteIDs []uuid.UUID, create []*installment.Installment) error {
	return m.Called(ctx, contractID, deleteIDs, create).Error(0)
}

func (m *mockInstallmentRepo) DeleteByContract(ctx context.Context, contractID uuid.UUID) error {
	return m.Called(ctx, contractID).Error(0)
}

func (m *mockInstallmentRepo) UpdateClientName(ctx context.Context, clientID uuid.UUID, name string) error {
	return m.Called(ctx, clientID, name).Error(0)
}

func (m *mockInstallmentRepo) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

type mockEventPublisher struct {
	mock.Mock
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

type mockInvalidator struct {
	mock.Mock
}

func (m *mockInvalidator) InvalidateContract(ctx context.Context, contractID uuid.UUID) error {
	return m.Called(ctx, contractID).Error(0)
}

func (m *mockInvalidator) InvalidateClient(ctx context.Context, clientID uuid.UUID) error {
	return m.Called(ctx, clientID).Error(0)
}

type stubGuard struct {
	marked []uuid.UUID
	active map[uuid.UUID]bool
}

func (g *stubGuard) Mark(id uuid.UUID) {
	g.marked = append(g.marked, id)
	if g.active == nil {
		g.active = make(map[uuid.UUID]bool)
	}
	g.active[id] = true
}

func (g *stubGuard) ActiveIDs() map[uuid.UUID]bool {
	return g.active
}

var (
	_ client.Repository      = (*mockClientRepo)(nil)
	_ contract.Repository    = (*mockContractRepo)(nil)
	_ installment.Repository = (*mockInstallmentRepo)(nil)
	_ shared.EventPublisher  = (*mockEventPublisher)(nil)
	_ CacheInvalidator       = (*mockInvalidator)(nil)
	_ RecentlyClearedGuard   = (*stubGuard)(nil)
)
