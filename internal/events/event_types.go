package events

import (
	"time"

	"github.com/spec-kit/ticket-bot/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketOpened   EventType = "ticket_opened"
	EventCloseRequested EventType = "ticket_close_requested"
	EventCloseCancelled EventType = "ticket_close_cancelled"
	EventTicketClosed   EventType = "ticket_closed"
)

// All lists every event type, for subscribers that want the full stream.
func All() []EventType {
	return []EventType{EventTicketOpened, EventCloseRequested, EventCloseCancelled, EventTicketClosed}
}

// Event represents a lifecycle event emitted by the ticket service.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	ChannelID string    `json:"channel_id"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// TicketOpenedPayload payload.
type TicketOpenedPayload struct {
	Kind          domain.TicketKind `json:"kind"`
	ChannelName   string            `json:"channel_name"`
	Owner         string            `json:"owner"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	TotalAmount   string            `json:"total_amount,omitempty"`
}

// CloseRequestedPayload payload.
type CloseRequestedPayload struct {
	Token       string    `json:"token"`
	ChannelName string    `json:"channel_name"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// CloseCancelledPayload payload.
type CloseCancelledPayload struct {
	Token string `json:"token"`
}

// TicketClosedPayload payload.
type TicketClosedPayload struct {
	ChannelName string `json:"channel_name"`
}
