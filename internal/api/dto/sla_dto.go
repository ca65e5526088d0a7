package dto

import (
	"time"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// SLAPolicyRequest payload for creating or updating a policy.
type SLAPolicyRequest struct {
	Name              string                `json:"name"`
	Priority          domain.TicketPriority `json:"priority"`
	ResponseMinutes   int                   `json:"response_minutes"`
	ResolutionMinutes int                   `json:"resolution_minutes"`
	IsActive          *bool                 `json:"is_active,omitempty"`
}

// SLAPolicyResponse policy response shape.
type SLAPolicyResponse struct {
	ID                string                `json:"id"`
	Name              string                `json:"name"`
	Priority          domain.TicketPriority `json:"priority"`
	ResponseMinutes   int                   `json:"response_minutes"`
	ResolutionMinutes int                   `json:"resolution_minutes"`
	IsActive          bool                  `json:"is_active"`
	CreatedAt         time.Time             `json:"created_at"`
}

// BusinessHoursRequest payload for the weekly SLA calendar. Work days use
// ISO numbering, 1=Monday through 7=Sunday. Holidays are YYYY-MM-DD dates.
type BusinessHoursRequest struct {
	Name      string   `json:"name,omitempty"`
	Timezone  string   `json:"timezone"`
	WorkDays  []int    `json:"work_days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Holidays  []string `json:"holidays,omitempty"`
}

// BusinessHoursResponse calendar response shape.
type BusinessHoursResponse struct {
	ID        string   `json:"id"`
	Name      string   `json:"name,omitempty"`
	Timezone  string   `json:"timezone"`
	WorkDays  []int    `json:"work_days"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
	Holidays  []string `json:"holidays,omitempty"`
}
