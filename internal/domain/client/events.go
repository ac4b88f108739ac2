package client

import (
	"github.com/billing/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event type names for the client aggregate
const (
	EventTypeClientRegistered = "ClientRegistered"
	EventTypeClientRenamed    = "ClientRenamed"
	EventTypeClientDeleted    = "ClientDeleted"
)

// ClientRegisteredEvent is raised when a new client is registered
type ClientRegisteredEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID `json:"client_id"`
	ClientName string    `json:"client_name"`
	Document   string    `json:"document"`
}

// NewClientRegisteredEvent creates a new ClientRegisteredEvent
func NewClientRegisteredEvent(c *Client) *ClientRegisteredEvent {
	return &ClientRegisteredEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientRegistered, "Client", c.ID),
		ClientID:        c.ID,
		ClientName:      c.Name,
		Document:        c.Document,
	}
}

// ClientRenamedEvent is raised when a client display name changes.
// Subscribers must refresh any denormalized client name copies.
type ClientRenamedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID `json:"client_id"`
	ClientName string    `json:"client_name"`
}

// NewClientRenamedEvent creates a new ClientRenamedEvent
func NewClientRenamedEvent(c *Client) *ClientRenamedEvent {
	return &ClientRenamedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientRenamed, "Client", c.ID),
		ClientID:        c.ID,
		ClientName:      c.Name,
	}
}

// ClientDeletedEvent is raised after a client and its contracts are removed
type ClientDeletedEvent struct {
	shared.BaseDomainEvent
	ClientID   uuid.UUID `json:"client_id"`
	ClientName string    `json:"client_name"`
}

// NewClientDeletedEvent creates a new ClientDeletedEvent
func NewClientDeletedEvent(c *Client) *ClientDeletedEvent {
	return &ClientDeletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientDeleted, "Client", c.ID),
		ClientID:        c.ID,
		ClientName:      c.Name,
	}
}
