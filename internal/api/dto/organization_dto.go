package dto

import (
	"time"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// CreateOrganizationRequest payload for tenant provisioning.
type CreateOrganizationRequest struct {
	Name     string          `json:"name"`
	PlanTier domain.PlanTier `json:"plan_tier,omitempty"`
	Language string          `json:"language,omitempty"`
}

// ChangePlanRequest payload for plan upgrades and downgrades.
type ChangePlanRequest struct {
	PlanTier domain.PlanTier `json:"plan_tier"`
}

// SetOrgStatusRequest payload for suspending or reactivating a tenant.
type SetOrgStatusRequest struct {
	Status domain.OrgStatus `json:"status"`
}

// OrganizationResponse tenant response shape.
type OrganizationResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	PlanTier  domain.PlanTier  `json:"plan_tier"`
	Status    domain.OrgStatus `json:"status"`
	Language  string           `json:"language"`
	SeatCount int              `json:"seat_count"`
	CreatedAt time.Time        `json:"created_at"`
}
