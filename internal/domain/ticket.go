package domain

import "time"

// TicketKind enumerates the supported ticket flavors. The string value doubles
// as the channel-name prefix.
type TicketKind string

const (
	KindSupport  TicketKind = "ticket"
	KindPurchase TicketKind = "purchase"
	KindRewards  TicketKind = "rewards"
)

// Prefix returns the channel-name prefix for the kind.
func (k TicketKind) Prefix() string {
	return string(k)
}

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusRequested TicketStatus = "REQUESTED"
	TicketStatusOpen      TicketStatus = "OPEN"
	TicketStatusClosing   TicketStatus = "CLOSING"
	TicketStatusClosed    TicketStatus = "CLOSED"
)

// OwnerIdentity names the requester a ticket belongs to. MemberID is empty
// when the requester could not be resolved to a guild member.
type OwnerIdentity struct {
	DisplayName string
	Handle      string
	MemberID    string
}

// Ticket is the in-memory view of a ticket channel. Tickets are not persisted;
// the channel itself is the record.
type Ticket struct {
	ChannelID     string
	ChannelName   string
	Kind          TicketKind
	Owner         OwnerIdentity
	CategoryID    string
	CorrelationID string
	Status        TicketStatus
	CreatedAt     time.Time
}
