package plan

import "github.com/josoro11/FOXITE-V2/internal/domain"

// Guard decides whether a tenant's tier permits a requested mutation. It is
// a pure function of the catalog and the caller-supplied counts: all
// counting happens in the caller, and the guard never touches persistence.
type Guard struct {
	catalog *Catalog
}

// NewGuard wraps a catalog.
func NewGuard(catalog *Catalog) *Guard {
	return &Guard{catalog: catalog}
}

// Decision is the outcome of a resource-limit check.
type Decision struct {
	Allowed bool
	Limit   *int // nil = unlimited
	Current int
}

// CanAddResource reports whether one more resource of the given kind fits
// under the tier's limit. A nil limit always allows; otherwise the check is
// strict: current must be below the limit.
func (g *Guard) CanAddResource(tier domain.PlanTier, resource Resource, current int) Decision {
	lim := g.catalog.LimitFor(tier, resource)
	return Decision{
		Allowed: lim == nil || current < *lim,
		Limit:   lim,
		Current: current,
	}
}

// EnforceResourceLimit is CanAddResource for the point of a mutating
// request: it returns a PlanLimitError instead of a boolean.
func (g *Guard) EnforceResourceLimit(tier domain.PlanTier, resource Resource, current int) error {
	d := g.CanAddResource(tier, resource, current)
	if d.Allowed {
		return nil
	}
	return &PlanLimitError{
		Resource: resource,
		Tier:     tier,
		Limit:    *d.Limit,
		Current:  d.Current,
	}
}

// CanUseFeature reports whether the tier grants the feature at any level.
func (g *Guard) CanUseFeature(tier domain.PlanTier, feature Feature) bool {
	return g.catalog.FeatureFor(tier, feature).Enabled()
}

// FeatureLevel exposes the granted level so callers can make finer-grained
// decisions than the plain accept/deny boundary.
func (g *Guard) FeatureLevel(tier domain.PlanTier, feature Feature) FeatureLevel {
	return g.catalog.FeatureFor(tier, feature)
}

// EnforceFeatureAccess returns a FeatureError naming the minimum tier that
// grants the feature when the current tier does not.
func (g *Guard) EnforceFeatureAccess(tier domain.PlanTier, feature Feature) error {
	if g.CanUseFeature(tier, feature) {
		return nil
	}
	ferr := &FeatureError{Feature: feature, Tier: tier}
	if minimum, ok := g.catalog.MinimumTierFor(feature); ok {
		ferr.MinimumTier = &minimum
	}
	return ferr
}

// EnforceNotSuspended rejects any request from a suspended organization.
// Callers must apply this gate before any resource-limit check.
func EnforceNotSuspended(status domain.OrgStatus) error {
	if status == domain.OrgStatusSuspended {
		return &SuspendedError{Status: status}
	}
	return nil
}

// CanAddSeat reports whether another active staff member fits within the
// organization's configured seat count. Seats are tenant-configured
// capacity, not a plan-tier constant, so this sits outside the catalog.
func CanAddSeat(seatCount, activeStaff int) bool {
	return activeStaff < seatCount
}

// EnforceSeatAvailable is the enforcing variant of CanAddSeat.
func EnforceSeatAvailable(seatCount, activeStaff int) error {
	if CanAddSeat(seatCount, activeStaff) {
		return nil
	}
	return &SeatLimitError{Seats: seatCount, Active: activeStaff}
}
