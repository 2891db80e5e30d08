package events

import "github.com/spec-kit/nexus-ai/internal/domain"

// EventType names a domain event.
type EventType string

// EventTicketCreated fires after a ticket row is committed.
const EventTicketCreated EventType = "ticket.created"

// Event carries the subject of a domain event.
type Event struct {
	Type   EventType
	Ticket *domain.Ticket
}
