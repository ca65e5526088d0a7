package domain

import "time"

// MessageAuthorType indicates who authored a comment.
type MessageAuthorType string

const (
	AuthorTypeUser   MessageAuthorType = "END_USER"
	AuthorTypeStaff  MessageAuthorType = "STAFF"
	AuthorTypeSystem MessageAuthorType = "SYSTEM"
)

// TicketCommentType differentiates staff-only notes from client-visible replies.
type TicketCommentType string

const (
	CommentTypePublicReply  TicketCommentType = "PUBLIC_REPLY"
	CommentTypeInternalNote TicketCommentType = "INTERNAL_NOTE"
)

// TicketComment captures communications in a ticket thread. A staff public
// reply is the milestone that stops the response-SLA clock.
type TicketComment struct {
	ID             string
	TicketID       string
	OrganizationID string
	AuthorType     MessageAuthorType
	AuthorID       *string
	CommentType    TicketCommentType
	Body           string
	CreatedAt      time.Time
}
