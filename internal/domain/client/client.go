package client

import (
	"github.com/billing/backend/internal/domain/shared"
)

// Client represents a billed client aggregate root.
// Contracts and installments denormalize the client name for display, so a
// rename must be propagated by the application layer.
type Client struct {
	shared.BaseAggregateRoot
	Name     string `json:"name"`
	Document string `json:"document"` // CPF/CNPJ, free-form
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Active   bool   `json:"active"`
}

// NewClient creates a new client
func NewClient(name, document, email, phone string) (*Client, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot exceed 200 characters")
	}

	c := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Document:          document,
		Email:             email,
		Phone:             phone,
		Active:            true,
	}

	c.AddDomainEvent(NewClientRegisteredEvent(c))

	return c, nil
}

// Rename changes the client display name.
// Returns true if the name actually changed.
func (c *Client) Rename(name string) (bool, error) {
	if name == "" {
		return false, shared.NewDomainError("INVALID_CLIENT_NAME", "Client name cannot be empty")
	}
	if name == c.Name {
		return false, nil
	}

	c.Name = name
	c.Touch()
	c.IncrementVersion()
	c.AddDomainEvent(NewClientRenamedEvent(c))

	return true, nil
}

// UpdateContactInfo updates document, email and phone
func (c *Client) UpdateContactInfo(document, email, phone string) {
	c.Document = document
	c.Email = email
	c.Phone = phone
	c.Touch()
	c.IncrementVersion()
}

// Deactivate marks the client as inactive
func (c *Client) Deactivate() error {
	if !c.Active {
		return shared.ErrInvalidState
	}
	c.Active = false
	c.Touch()
	c.IncrementVersion()
	return nil
}

// Activate marks the client as active again
func (c *Client) Activate() {
	c.Active = true
	c.Touch()
	c.IncrementVersion()
}
