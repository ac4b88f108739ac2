package client

import (
	"context"
	"time"

	"github.com/billing/backend/internal/domain/client"
	"github.com/billing/backend/internal/domain/contract"
	"github.com/billing/backend/internal/domain/installment"
	"github.com/billing/backend/internal/domain/shared"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService provides application-level client operations. A rename is
// propagated to the denormalized client name copies on contracts and
// installments; a delete cascades through the client's contracts and their
// schedules.
type ClientService struct {
	clientRepo      client.Repository
	contractRepo    contract.Repository
	installmentRepo installment.Repository
	eventPublisher  shared.EventPublisher
	validate        *validator.Validate
	logger          *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(
	clientRepo client.Repository,
	contractRepo contract.Repository,
	installmentRepo installment.Repository,
	eventPublisher shared.EventPublisher,
	logger *zap.Logger,
) *ClientService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ClientService{
		clientRepo:      clientRepo,
		contractRepo:    contractRepo,
		installmentRepo: installmentRepo,
		eventPublisher:  eventPublisher,
		validate:        validator.New(),
		logger:          logger,
	}
}

// RegisterClientRequest is the input for registering a client
type RegisterClientRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Document string `json:"document" validate:"max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=30"`
}

// UpdateClientRequest is the input for updating a client
type UpdateClientRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Document string `json:"document" validate:"max=20"`
	Email    string `json:"email" validate:"omitempty,email"`
	Phone    string `json:"phone" validate:"max=30"`
}

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Document  string    `json:"document,omitempty"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

func toClientResponse(c *client.Client) *ClientResponse {
	return &ClientResponse{
		ID:        c.ID,
		Name:      c.Name,
		Document:  c.Document,
		Email:     c.Email,
		Phone:     c.Phone,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
		Version:   c.Version,
	}
}

// RegisterClient registers a new client
func (s *ClientService) RegisterClient(ctx context.Context, req RegisterClientRequest) (*ClientResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	c, err := client.NewClient(req.Name, req.Document, req.Email, req.Phone)
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("client registered",
		zap.String("client_id", c.ID.String()),
		zap.String("name", c.Name))

	s.publishDomainEvents(ctx, c)
	return toClientResponse(c), nil
}

// UpdateClient updates a client. When the name changes, the denormalized
// copies on the client's contracts and installments are refreshed as well.
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, shared.NewDomainError("INVALID_INPUT", err.Error())
	}

	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	renamed, err := c.Rename(req.Name)
	if err != nil {
		return nil, err
	}
	c.UpdateContactInfo(req.Document, req.Email, req.Phone)

	if err := s.clientRepo.Save(ctx, c); err != nil {
		return nil, err
	}

	if renamed {
		if err := s.contractRepo.UpdateClientName(ctx, c.ID, c.Name); err != nil {
			return nil, err
		}
		if err := s.installmentRepo.UpdateClientName(ctx, c.ID, c.Name); err != nil {
			return nil, err
		}
		s.logger.Info("client renamed",
			zap.String("client_id", c.ID.String()),
			zap.String("name", c.Name))
	}

	s.publishDomainEvents(ctx, c)
	return toClientResponse(c), nil
}

// GetClient gets a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(c), nil
}

// ListClients lists clients with filtering
func (s *ClientService) ListClients(ctx context.Context, filter shared.Filter) (*shared.Paginated[ClientResponse], error) {
	if filter.PageSize <= 0 {
		filter = shared.DefaultFilter()
	}
	clients, err := s.clientRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	total, err := s.clientRepo.Count(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *toClientResponse(&clients[i])
	}
	page := shared.NewPaginated(responses, total, filter.Page, filter.PageSize)
	return &page, nil
}

// DeleteClient removes a client together with all of its contracts and their
// installment schedules
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	c, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	contracts, err := s.contractRepo.FindByClient(ctx, c.ID)
	if err != nil {
		return err
	}
	for i := range contracts {
		if err := s.installmentRepo.DeleteByContract(ctx, contracts[i].ID); err != nil {
			return err
		}
		if err := s.contractRepo.Delete(ctx, contracts[i].ID); err != nil {
			return err
		}
	}

	if err := s.clientRepo.Delete(ctx, c.ID); err != nil {
		return err
	}

	s.logger.Info("client deleted",
		zap.String("client_id", c.ID.String()),
		zap.Int("contracts", len(contracts)))

	c.AddDomainEvent(client.NewClientDeletedEvent(c))
	s.publishDomainEvents(ctx, c)

	return nil
}

// publishDomainEvents publishes all pending domain events from the client
func (s *ClientService) publishDomainEvents(ctx context.Context, c *client.Client) {
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
