package domain

import "time"

// StaffRole enumerates internal operator roles.
type StaffRole string

const (
	StaffRoleAdmin      StaffRole = "ADMIN"
	StaffRoleSupervisor StaffRole = "SUPERVISOR"
	StaffRoleTechnician StaffRole = "TECHNICIAN"
)

// StaffMember models an organization operator (technician, supervisor or
// administrator). Staff occupy seats against the organization's seat count.
type StaffMember struct {
	ID             string
	OrganizationID string
	Name           string
	Email          string
	PasswordHash   string
	Role           StaffRole
	Active         bool
	LastLoginAt    *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
