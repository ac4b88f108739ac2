package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InstallmentService provides application-level installment operations:
// payment registration and clearing, listings, and the overdue sweep that
// keeps derived statuses current.
type InstallmentService struct {
	installmentRepo installment.Repository
	eventPublisher  shared.EventPublisher
	invalidator     CacheInvalidator
	guard           RecentlyClearedGuard
	clock           shared.Clock
	validate        *validator.Validate
	logger          *zap.Logger
}

// NewInstallmentService creates a new InstallmentService
func NewInstallmentService(
	installmentRepo installment.Repository,
	eventPublisher shared.EventPublisher,
	invalidator CacheInvalidator,
	guard RecentlyClearedGuard,
	clock shared.Clock,
	logger *zap.Logger,
) *InstallmentService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstallmentService{
		installmentRepo: installmentRepo,
		eventPublisher:  eventPublisher,
		invalidator:     invalidator,
		guard:           guard,
		clock:           clock,
		validate:        validator.New(),
		logger:          logger,
	}
}

// RegisterPaymentRequest is the input for registering a payment
type RegisterPaymentRequest struct {
	PaymentDate time.Time        `json:"payment_date" validate:"required"`
	PaidAmount  *decimal.Decimal `json:"paid_amount,omitempty"`
	Note        string           `json:"note,omitempty" validate:"max=500"`
}

// InstallmentResponse represents an installment in API responses
type InstallmentResponse struct {
	ID          uuid.UUID        `json:"id"`
	ContractID  uuid.UUID        `json:"contract_id"`
	ClientID    uuid.UUID        `json:"client_id"`
	ClientName  string           `json:"client_name"`
	Sequence    int              `json:"sequence"`
	Amount      decimal.Decimal  `json:"amount"`
	DueDate     time.Time        `json:"due_date"`
	Status      string           `json:"status"`
	PaymentDate *time.Time       `json:"payment_date,omitempty"`
	PaidAmount  *decimal.Decimal `json:"paid_amount,omitempty"`
	DaysLate    int              `json:"days_late"`
	Note        string           `json:"note,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
	Version     int              `json:"version"`
}

func toInstallmentResponse(i *installment.Installment) *InstallmentResponse {
	resp := &InstallmentResponse{
		ID:          i.ID,
		ContractID:  i.ContractID,
		ClientID:    i.ClientID,
		ClientName:  i.ClientName,
		Sequence:    i.Sequence,
		Amount:      i.Amount.Amount(),
		DueDate:     i.DueDate,
		Status:      string(i.Status),
		PaymentDate: i.PaymentDate,
		DaysLate:    i.DaysLate,
		Note:        i.Note,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
		Version:     i.Version,
	}
	if i.PaidAmount != nil {
		amount := i.PaidAmount.Amount()
		resp.PaidAmount = &amount
	}
	return resp
}

func toInstallmentResponses(items []*installment.Installment) []InstallmentResponse {
	responses := make([]InstallmentResponse, len(items))
	for idx, item := range items {
		responses[idx] = *toInstallmentResponse(item)
	}
	return responses
}

// GetInstallment gets an installment by ID
func (s *InstallmentService) GetInstallment(ctx context.Context, id uuid.UUID) (*InstallmentResponse, error) {
	item, err := s.installmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toInstallmentResponse(item), nil
}

// RegisterPayment records a payment on an installment. An absent paid amount
// means the installment amount was paid in full. An optional note is stored
// alongside the payment.
func (s *InstallmentService) RegisterPayment(ctx context.Context, id uuid.UUID, req RegisterPaymentRequest) (*InstallmentResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	item, err := s.installmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var paidAmount *valueobject.Money
	if req.PaidAmount != nil {
		amount := valueobject.NewMoneyBRL(*req.PaidAmount)
		paidAmount = &amount
	}

	if err := item.RegisterPayment(req.PaymentDate, paidAmount, req.Note); err != nil {
		return nil, err
	}
	if err := s.installmentRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	s.logger.Info("payment registered",
		zap.String("installment_id", item.ID.String()),
		zap.String("contract_id", item.ContractID.String()),
		zap.Int("sequence", item.Sequence))

	s.publishDomainEvents(ctx, item)
	s.invalidate(ctx, item)

	return toInstallmentResponse(item), nil
}

// ClearPayment removes the payment record from an installment, returning it
// to Pending. The installment is shielded from the overdue sweep for a short
// window so the caller observes the cleared state before the sweep can flag
// it Late again.
func (s *InstallmentService) ClearPayment(ctx context.Context, id uuid.UUID) (*InstallmentResponse, error) {
	item, err := s.installmentRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := item.ClearPayment(); err != nil {
		return nil, err
	}
	if err := s.installmentRepo.Save(ctx, item); err != nil {
		return nil, err
	}

	if s.guard != nil {
		s.guard.Mark(item.ID)
	}

	s.logger.Info("payment cleared",
		zap.String("installment_id", item.ID.String()),
		zap.String("contract_id", item.ContractID.String()),
		zap.Int("sequence", item.Sequence))

	s.publishDomainEvents(ctx, item)
	s.invalidate(ctx, item)

	return toInstallmentResponse(item), nil
}

// ListByContract lists all installments of a contract ordered by sequence
func (s *InstallmentService) ListByContract(ctx context.Context, contractID uuid.UUID) ([]InstallmentResponse, error) {
	items, err := s.installmentRepo.FindByContract(ctx, contractID)
	if err != nil {
		return nil, err
	}
	return toInstallmentResponses(items), nil
}

// ListByClient lists all installments of a client across contracts
func (s *InstallmentService) ListByClient(ctx context.Context, clientID uuid.UUID) ([]InstallmentResponse, error) {
	items, err := s.installmentRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return toInstallmentResponses(items), nil
}

// ListOverdue lists all unpaid installments past their due date
func (s *InstallmentService) ListOverdue(ctx context.Context) ([]InstallmentResponse, error) {
	items, err := s.installmentRepo.FindOverdue(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return toInstallmentResponses(items), nil
}

// SweepOverdue recomputes the derived status of every unpaid installment
// against today and persists only the ones that changed. Installments whose
// payment was cleared within the guard window are skipped. Returns the number
// of updated installments. Running the sweep twice on the same day is a no-op
// the second time.
func (s *InstallmentService) SweepOverdue(ctx context.Context) (int, error) {
	items, err := s.installmentRepo.FindUnpaid(ctx)
	if err != nil {
		return 0, err
	}

	var skip map[uuid.UUID]bool
	if s.guard != nil {
		skip = s.guard.ActiveIDs()
	}

	changed := installment.DeriveStatuses(items, s.clock.Now(), skip)
	if len(changed) == 0 {
		return 0, nil
	}

	if err := s.installmentRepo.SaveAll(ctx, changed); err != nil {
		return 0, err
	}

	contracts := make(map[uuid.UUID]uuid.UUID, len(changed))
	for _, item := range changed {
		contracts[item.ContractID] = item.ClientID
		s.publishDomainEvents(ctx, item)
	}
	for contractID, clientID := range contracts {
		s.invalidateIDs(ctx, contractID, clientID)
	}

	s.logger.Info("overdue sweep finished",
		zap.Int("scanned", len(items)),
		zap.Int("updated", len(changed)))

	return len(changed), nil
}

// publishDomainEvents publishes all pending domain events from the installment
func (s *InstallmentService) publishDomainEvents(ctx context.Context, item *installment.Installment) {
	if s.eventPublisher == nil {
		return
	}
	events := item.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	item.ClearDomainEvents()
}

func (s *InstallmentService) invalidate(ctx context.Context, item *installment.Installment) {
	s.invalidateIDs(ctx, item.ContractID, item.ClientID)
}

func (s *InstallmentService) invalidateIDs(ctx context.Context, contractID, clientID uuid.UUID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateContract(ctx, contractID); err != nil {
		s.logger.Warn("contract cache invalidation failed", zap.Error(err))
	}
	if err := s.invalidator.InvalidateClient(ctx, clientID); err != nil {
		s.logger.Warn("client cache invalidation failed", zap.Error(err))
	}
}
