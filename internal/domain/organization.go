package domain

import "time"

// PlanTier identifies a subscription plan.
type PlanTier string

const (
	PlanTierCore  PlanTier = "CORE"
	PlanTierPlus  PlanTier = "PLUS"
	PlanTierPrime PlanTier = "PRIME"
	PlanTierScale PlanTier = "SCALE"
)

// OrgStatus enumerates lifecycle states for an organization.
type OrgStatus string

const (
	OrgStatusActive    OrgStatus = "ACTIVE"
	OrgStatusSuspended OrgStatus = "SUSPENDED"
	OrgStatusTrial     OrgStatus = "TRIAL"
)

// Organization is a tenant account. Every resource in the system is scoped
// to exactly one organization.
type Organization struct {
	ID        string
	Name      string
	PlanTier  PlanTier
	Status    OrgStatus
	Language  string
	SeatCount int
	CreatedAt time.Time
	UpdatedAt time.Time
}
