package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusNew        TicketStatus = "NEW"
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusOnHold     TicketStatus = "ON_HOLD"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
)

// TicketPriority enumerates SLA urgency.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "LOW"
	TicketPriorityMedium TicketPriority = "MEDIUM"
	TicketPriorityHigh   TicketPriority = "HIGH"
	TicketPriorityUrgent TicketPriority = "URGENT"
)

// ValidPriority reports whether p is one of the known priorities.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

// IsTerminal reports whether a ticket in this status counts as completed
// for resolution-SLA purposes.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved || s == TicketStatusClosed
}

// Ticket is the aggregate for support requests. Due dates are computed once
// at creation and never re-derived; breach flags only move false to true.
type Ticket struct {
	ID             string
	ExternalKey    string
	OrganizationID string
	CompanyID      *string
	RequesterID    *string
	AssigneeID     *string
	Title          string
	Description    string
	Status         TicketStatus
	Priority       TicketPriority
	Tags           []string

	SLAPolicyID           *string
	ResponseDueAt         *time.Time
	ResolutionDueAt       *time.Time
	FirstResponseAt       *time.Time
	SLAResponseBreached   bool
	SLAResolutionBreached bool

	CreatedAt  time.Time
	UpdatedAt  time.Time
	ResolvedAt *time.Time
	ClosedAt   *time.Time
}
