package dto

import (
	"time"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// CreateTicketRequest payload for new tickets. Staff callers set company_id
// and requester_id; end-user callers have both derived from their account.
type CreateTicketRequest struct {
	CompanyID   *string               `json:"company_id,omitempty"`
	RequesterID *string               `json:"requester_id,omitempty"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Priority    domain.TicketPriority `json:"priority,omitempty"`
	Tags        []string              `json:"tags,omitempty"`
}

// CreateCommentRequest payload for ticket comments. CommentType is only
// honored for staff callers; end-users always post public replies.
type CreateCommentRequest struct {
	Body        string                    `json:"body"`
	CommentType *domain.TicketCommentType `json:"comment_type,omitempty"`
}

// UpdateStatusRequest payload for staff status transitions.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment,omitempty"`
}

// UpdatePriorityRequest payload for staff priority changes.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload for supervisor/admin assignment.
type AssignTicketRequest struct {
	StaffID string `json:"staff_id"`
}

// TicketSummary list-item response shape.
type TicketSummary struct {
	ID                    string                `json:"id"`
	ExternalKey           string                `json:"external_key"`
	CompanyID             *string               `json:"company_id,omitempty"`
	RequesterID           *string               `json:"requester_id,omitempty"`
	AssigneeID            *string               `json:"assignee_id,omitempty"`
	Title                 string                `json:"title"`
	Status                domain.TicketStatus   `json:"status"`
	Priority              domain.TicketPriority `json:"priority"`
	Tags                  []string              `json:"tags,omitempty"`
	ResponseDueAt         *time.Time            `json:"response_due_at,omitempty"`
	ResolutionDueAt       *time.Time            `json:"resolution_due_at,omitempty"`
	SLAResponseBreached   bool                  `json:"sla_response_breached"`
	SLAResolutionBreached bool                  `json:"sla_resolution_breached"`
	CreatedAt             time.Time             `json:"created_at"`
	UpdatedAt             time.Time             `json:"updated_at"`
}

// TicketDetailResponse detail response including thread and audit trail.
type TicketDetailResponse struct {
	ID                    string                  `json:"id"`
	ExternalKey           string                  `json:"external_key"`
	CompanyID             *string                 `json:"company_id,omitempty"`
	RequesterID           *string                 `json:"requester_id,omitempty"`
	AssigneeID            *string                 `json:"assignee_id,omitempty"`
	Title                 string                  `json:"title"`
	Description           string                  `json:"description"`
	Status                domain.TicketStatus     `json:"status"`
	Priority              domain.TicketPriority   `json:"priority"`
	Tags                  []string                `json:"tags,omitempty"`
	SLAPolicyID           *string                 `json:"sla_policy_id,omitempty"`
	ResponseDueAt         *time.Time              `json:"response_due_at,omitempty"`
	ResolutionDueAt       *time.Time              `json:"resolution_due_at,omitempty"`
	FirstResponseAt       *time.Time              `json:"first_response_at,omitempty"`
	SLAResponseBreached   bool                    `json:"sla_response_breached"`
	SLAResolutionBreached bool                    `json:"sla_resolution_breached"`
	CreatedAt             time.Time               `json:"created_at"`
	UpdatedAt             time.Time               `json:"updated_at"`
	ResolvedAt            *time.Time              `json:"resolved_at,omitempty"`
	ClosedAt              *time.Time              `json:"closed_at,omitempty"`
	Comments              []TicketCommentResponse `json:"comments"`
}

// TicketCommentResponse single thread entry.
type TicketCommentResponse struct {
	ID          string                   `json:"id"`
	CommentType domain.TicketCommentType `json:"comment_type"`
	AuthorType  domain.MessageAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	Body        string                   `json:"body"`
	CreatedAt   time.Time                `json:"created_at"`
}

// TicketHistoryResponse audit trail entry.
type TicketHistoryResponse struct {
	ID            string                   `json:"id"`
	ChangeType    domain.TicketChangeType  `json:"change_type"`
	ChangedByType domain.MessageAuthorType `json:"changed_by_type"`
	ChangedByID   *string                  `json:"changed_by_id,omitempty"`
	OldValue      map[string]any           `json:"old_value,omitempty"`
	NewValue      map[string]any           `json:"new_value,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}
