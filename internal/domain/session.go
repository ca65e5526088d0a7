package domain

import "time"

// WorkSession is a tracked block of staff time, optionally linked to a
// ticket. Duration is derived when the session is closed.
type WorkSession struct {
	ID              string
	OrganizationID  string
	StaffID         string
	TicketID        *string
	StartTime       time.Time
	EndTime         *time.Time
	DurationMinutes *int
	Notes           string
	VisibleToClient bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
