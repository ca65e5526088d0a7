package domain

import "time"

// SubjectType differentiates end-user vs staff tokens.
type SubjectType string

const (
	SubjectTypeUser   SubjectType = "END_USER"
	SubjectTypeStaff  SubjectType = "STAFF"
	SubjectTypeSystem SubjectType = "SYSTEM"
)

// Token represents issued authentication token metadata.
type Token struct {
	ID             string
	SubjectID      string
	Subject        SubjectType
	OrganizationID string
	Role           *StaffRole
	ExpiresAt      time.Time
	IssuedAt       time.Time
}
