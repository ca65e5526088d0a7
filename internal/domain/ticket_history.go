package domain

import "time"

// TicketChangeType captures what changed in a history entry.
type TicketChangeType string

const (
	ChangeTypeStatus   TicketChangeType = "STATUS_CHANGE"
	ChangeTypeAssignee TicketChangeType = "ASSIGNEE_CHANGE"
	ChangeTypePriority TicketChangeType = "PRIORITY_CHANGE"
	ChangeTypeSLA      TicketChangeType = "SLA_CHANGE"
)

// TicketHistory is an immutable audit trail entry. SLA breach transitions are
// recorded here so breach remains a historical fact even after ticket edits.
type TicketHistory struct {
	ID             string
	TicketID       string
	OrganizationID string
	ChangedByType  MessageAuthorType
	ChangedByID    *string
	ChangeType     TicketChangeType
	OldValue       map[string]any
	NewValue       map[string]any
	CreatedAt      time.Time
}
