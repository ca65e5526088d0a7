package domain

import "time"

// ClientCompany represents a customer account serviced by an organization.
type ClientCompany struct {
	ID             string
	OrganizationID string
	Name           string
	ContactEmail   string
	Phone          string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
