package domain

import "time"

// SLAPolicy defines response and resolution time budgets for one priority.
// At most one active policy exists per (organization, priority) pair.
type SLAPolicy struct {
	ID                string
	OrganizationID    string
	Name              string
	Priority          TicketPriority
	ResponseMinutes   int
	ResolutionMinutes int
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BusinessHours is the recurring weekly window during which SLA budgets are
// consumed. One record per organization; absence means "always open".
// Weekdays use ISO numbering, 1=Monday through 7=Sunday.
type BusinessHours struct {
	ID             string
	OrganizationID string
	Name           string
	Timezone       string
	WorkDays       []int
	StartTime      string // HH:MM
	EndTime        string // HH:MM
	Holidays       []string // dates as YYYY-MM-DD, skipped like non-working days
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
