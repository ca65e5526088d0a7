package dto

import "time"

// StartSessionRequest payload for starting a work session.
type StartSessionRequest struct {
	TicketID        *string `json:"ticket_id,omitempty"`
	Notes           string  `json:"notes,omitempty"`
	VisibleToClient bool    `json:"visible_to_client,omitempty"`
}

// SessionResponse work session response shape.
type SessionResponse struct {
	ID              string     `json:"id"`
	StaffID         string     `json:"staff_id"`
	TicketID        *string    `json:"ticket_id,omitempty"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes *int       `json:"duration_minutes,omitempty"`
	Notes           string     `json:"notes,omitempty"`
	VisibleToClient bool       `json:"visible_to_client"`
}
