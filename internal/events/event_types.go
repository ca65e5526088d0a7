package events

import (
	"time"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated         EventType = "ticket_created"
	EventTicketStatusChanged   EventType = "ticket_status_changed"
	EventTicketPriorityChanged EventType = "ticket_priority_changed"
	EventTicketAssigned        EventType = "ticket_assigned"
	EventTicketCommentAdded    EventType = "ticket_comment_added"
	EventSLABreached           EventType = "sla_breached"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	OrganizationID string      `json:"organization_id"`
	TicketID       string      `json:"ticket_id"`
	Actor          Actor       `json:"actor"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	Priority        domain.TicketPriority `json:"priority"`
	Title           string                `json:"title"`
	SLAPolicyID     *string               `json:"sla_policy_id,omitempty"`
	ResponseDueAt   *time.Time            `json:"response_due_at,omitempty"`
	ResolutionDueAt *time.Time            `json:"resolution_due_at,omitempty"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketPriorityChangedPayload payload.
type TicketPriorityChangedPayload struct {
	OldPriority domain.TicketPriority `json:"old_priority"`
	NewPriority domain.TicketPriority `json:"new_priority"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeStaffID *string `json:"assignee_staff_id,omitempty"`
}

// TicketCommentAddedPayload payload.
type TicketCommentAddedPayload struct {
	CommentID     string                   `json:"comment_id"`
	CommentType   domain.TicketCommentType `json:"comment_type"`
	AuthorType    domain.MessageAuthorType `json:"author_type"`
	AuthorID      *string                  `json:"author_id,omitempty"`
	BodyPreview   string                   `json:"body_preview"`
	FirstResponse bool                     `json:"first_response"`
}

// SLABreachedPayload payload. The booleans indicate which clocks crossed
// their due date in this transition; flags never revert.
type SLABreachedPayload struct {
	ResponseBreached   bool                  `json:"response_breached"`
	ResolutionBreached bool                  `json:"resolution_breached"`
	Priority           domain.TicketPriority `json:"priority"`
}
