package plan

import (
	"fmt"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// PlanLimitError is returned when a resource creation would exceed the
// tier's limit. It carries everything the request issuer needs to upgrade
// or free capacity.
type PlanLimitError struct {
	Resource Resource
	Tier     domain.PlanTier
	Limit    int
	Current  int
}

func (e *PlanLimitError) Error() string {
	return fmt.Sprintf("plan limit exceeded for %s: %d of %d used on tier %s", e.Resource, e.Current, e.Limit, e.Tier)
}

// FeatureError is returned when a tier does not include a feature.
// MinimumTier is nil when no tier in the catalog grants it.
type FeatureError struct {
	Feature     Feature
	Tier        domain.PlanTier
	MinimumTier *domain.PlanTier
}

func (e *FeatureError) Error() string {
	if e.MinimumTier != nil {
		return fmt.Sprintf("feature %s not available on tier %s, requires %s or higher", e.Feature, e.Tier, *e.MinimumTier)
	}
	return fmt.Sprintf("feature %s not available on tier %s", e.Feature, e.Tier)
}

// SuspendedError is returned when an organization's status blocks the
// request. Suspension is a harder gate than any plan limit.
type SuspendedError struct {
	Status domain.OrgStatus
}

func (e *SuspendedError) Error() string {
	return "organization is suspended"
}

// SeatLimitError is returned when all configured staff seats are occupied.
type SeatLimitError struct {
	Seats  int
	Active int
}

func (e *SeatLimitError) Error() string {
	return fmt.Sprintf("all %d staff seats in use", e.Seats)
}
