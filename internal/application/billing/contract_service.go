package billing

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/client"
	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/billing/backend/internal/domain/shared/valueobject"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ContractService provides application-level contract operations. Creating a
// contract generates its installment schedule; changing its payment terms
// recalculates the unpaid tail of the schedule.
type ContractService struct {
	contractRepo    contract.Repository
	clientRepo      client.Repository
	installmentRepo installment.Repository
	eventPublisher  shared.EventPublisher
	invalidator     CacheInvalidator
	clock           shared.Clock
	validate        *validator.Validate
	logger          *zap.Logger
}

// NewContractService creates a new ContractService
func NewContractService(
	contractRepo contract.Repository,
	clientRepo client.Repository,
	installmentRepo installment.Repository,
	eventPublisher shared.EventPublisher,
	invalidator CacheInvalidator,
	clock shared.Clock,
	logger *zap.Logger,
) *ContractService {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContractService{
		contractRepo:    contractRepo,
		clientRepo:      clientRepo,
		installmentRepo: installmentRepo,
		eventPublisher:  eventPublisher,
		invalidator:     invalidator,
		clock:           clock,
		validate:        validator.New(),
		logger:          logger,
	}
}

// CreateContractRequest is the input for creating a contract
type CreateContractRequest struct {
	ContractNumber   string          `json:"contract_number" validate:"required,max=50"`
	ClientID         uuid.UUID       `json:"client_id" validate:"required"`
	TotalValue       decimal.Decimal `json:"total_value" validate:"required"`
	DownPayment      decimal.Decimal `json:"down_payment"`
	InstallmentCount int             `json:"installment_count" validate:"required"`
	FirstDueDate     time.Time       `json:"first_due_date" validate:"required"`
	Notes            string          `json:"notes" validate:"max=2000"`
}

// UpdateContractTermsRequest is the input for changing contract payment terms
type UpdateContractTermsRequest struct {
	TotalValue       decimal.Decimal `json:"total_value" validate:"required"`
	DownPayment      decimal.Decimal `json:"down_payment"`
	InstallmentCount int             `json:"installment_count" validate:"required"`
	FirstDueDate     time.Time       `json:"first_due_date" validate:"required"`
	Notes            string          `json:"notes" validate:"max=2000"`
}

// ContractResponse represents a contract in API responses
type ContractResponse struct {
	ID               uuid.UUID       `json:"id"`
	ContractNumber   string          `json:"contract_number"`
	ClientID         uuid.UUID       `json:"client_id"`
	ClientName       string          `json:"client_name"`
	TotalValue       decimal.Decimal `json:"total_value"`
	DownPayment      decimal.Decimal `json:"down_payment"`
	FinancedAmount   decimal.Decimal `json:"financed_amount"`
	InstallmentCount int             `json:"installment_count"`
	FirstDueDate     time.Time       `json:"first_due_date"`
	Notes            string          `json:"notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	Version          int             `json:"version"`
}

func toContractResponse(c *contract.Contract) *ContractResponse {
	return &ContractResponse{
		ID:               c.ID,
		ContractNumber:   c.ContractNumber,
		ClientID:         c.ClientID,
		ClientName:       c.ClientName,
		TotalValue:       c.TotalValue.Amount(),
		DownPayment:      c.DownPayment.Amount(),
		FinancedAmount:   c.FinancedAmount().Amount(),
		InstallmentCount: c.InstallmentCount,
		FirstDueDate:     c.FirstDueDate,
		Notes:            c.Notes,
		CreatedAt:        c.CreatedAt,
		UpdatedAt:        c.UpdatedAt,
		Version:          c.Version,
	}
}

// CreateContract creates a contract and generates its full installment
// schedule in one operation. Nothing is persisted if schedule generation
// fails.
func (s *ContractService) CreateContract(ctx context.Context, req CreateContractRequest) (*ContractResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	cl, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}

	if existing, err := s.contractRepo.FindByNumber(ctx, req.ContractNumber); err == nil && existing != nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Contract number already in use")
	}

	terms := contract.Terms{
		TotalValue:       valueobject.NewMoneyBRL(req.TotalValue),
		DownPayment:      valueobject.NewMoneyBRL(req.DownPayment),
		InstallmentCount: req.InstallmentCount,
		FirstDueDate:     req.FirstDueDate,
	}

	c, err := contract.NewContract(req.ContractNumber, cl.ID, cl.Name, terms, req.Notes)
	if err != nil {
		return nil, err
	}

	schedule, err := installment.GenerateSchedule(c, s.clock.Now())
	if err != nil {
		return nil, err
	}

	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := s.installmentRepo.SaveAll(ctx, schedule); err != nil {
		return nil, err
	}

	s.logger.Info("contract created",
		zap.String("contract_id", c.ID.String()),
		zap.String("contract_number", c.ContractNumber),
		zap.Int("installments", len(schedule)))

	c.AddDomainEvent(installment.NewScheduleGeneratedEvent(c.ID, len(schedule)))
	s.publishDomainEvents(ctx, c)
	s.invalidateContract(ctx, c)

	return toContractResponse(c), nil
}

// UpdateContractTerms changes a contract's payment terms and recalculates the
// unpaid part of its schedule. Paid installments are preserved untouched; the
// unpaid ones are deleted and rebuilt atomically under the new terms.
func (s *ContractService) UpdateContractTerms(ctx context.Context, id uuid.UUID, req UpdateContractTermsRequest) (*ContractResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	c, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	terms := contract.Terms{
		TotalValue:       valueobject.NewMoneyBRL(req.TotalValue),
		DownPayment:      valueobject.NewMoneyBRL(req.DownPayment),
		InstallmentCount: req.InstallmentCount,
		FirstDueDate:     req.FirstDueDate,
	}

	changed, err := c.ChangeTerms(terms)
	if err != nil {
		return nil, err
	}
	c.UpdateNotes(req.Notes)

	if !changed {
		if err := s.contractRepo.Save(ctx, c); err != nil {
			return nil, err
		}
		return toContractResponse(c), nil
	}

	existing, err := s.installmentRepo.FindByContract(ctx, c.ID)
	if err != nil {
		return nil, err
	}

	plan, err := installment.PlanRecalculation(c, existing)
	if err != nil {
		return nil, err
	}
	if len(plan.Create) == 0 && len(plan.DeleteIDs) > 0 {
		s.logger.Warn("recalculation leaves contract with no open installments",
			zap.String("contract_id", c.ID.String()),
			zap.Int("installment_count", c.InstallmentCount))
	}

	if err := s.contractRepo.Save(ctx, c); err != nil {
		return nil, err
	}
	if err := s.installmentRepo.ReplaceForContract(ctx, c.ID, plan.DeleteIDs, plan.Create); err != nil {
		return nil, err
	}

	s.logger.Info("contract schedule recalculated",
		zap.String("contract_id", c.ID.String()),
		zap.Int("deleted", len(plan.DeleteIDs)),
		zap.Int("created", len(plan.Create)))

	c.AddDomainEvent(installment.NewScheduleRecalculatedEvent(c.ID, len(plan.DeleteIDs), len(plan.Create)))
	s.publishDomainEvents(ctx, c)
	s.invalidateContract(ctx, c)

	return toContractResponse(c), nil
}

// GetContract gets a contract by ID
func (s *ContractService) GetContract(ctx context.Context, id uuid.UUID) (*ContractResponse, error) {
	c, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toContractResponse(c), nil
}

// ListContracts lists contracts with filtering
func (s *ContractService) ListContracts(ctx context.Context, filter shared.Filter) (*shared.Paginated[ContractResponse], error) {
	if filter.PageSize <= 0 {
		filter = shared.DefaultFilter()
	}
	contracts, err := s.contractRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.contractRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = *toContractResponse(&contracts[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// ListContractsByClient lists all contracts of a client
func (s *ContractService) ListContractsByClient(ctx context.Context, clientID uuid.UUID) ([]ContractResponse, error) {
	contracts, err := s.contractRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	responses := make([]ContractResponse, len(contracts))
	for i := range contracts {
		responses[i] = *toContractResponse(&contracts[i])
	}
	return responses, nil
}

// DeleteContract removes a contract together with its whole schedule,
// including paid installments
func (s *ContractService) DeleteContract(ctx context.Context, id uuid.UUID) error {
	c, err := s.contractRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.installmentRepo.DeleteByContract(ctx, c.ID); err != nil {
		return err
	}
	if err := s.contractRepo.Delete(ctx, c.ID); err != nil {
		return err
	}

	s.logger.Info("contract deleted", zap.String("contract_id", c.ID.String()))

	c.AddDomainEvent(contract.NewContractDeletedEvent(c))
	s.publishDomainEvents(ctx, c)
	s.invalidateContract(ctx, c)

	return nil
}

// publishDomainEvents publishes all pending domain events from the contract
func (s *ContractService) publishDomainEvents(ctx context.Context, c *contract.Contract) {
	if s.eventPublisher == nil {
		return
	}
	events := c.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	c.ClearDomainEvents()
}

func (s *ContractService) invalidateContract(ctx context.Context, c *contract.Contract) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateContract(ctx, c.ID); err != nil {
		s.logger.Warn("contract cache invalidation failed", zap.Error(err))
	}
	if err := s.invalidator.InvalidateClient(ctx, c.ClientID); err != nil {
		s.logger.Warn("client cache invalidation failed", zap.Error(err))
	}
}
