package service

import (
	"context"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
)

// PlanService exposes the plan catalog for the public pricing endpoint and
// per-tenant entitlement summaries.
type PlanService struct {
	catalog *plan.Catalog
	orgs    *OrganizationService
}

// NewPlanService constructs the service.
func NewPlanService(catalog *plan.Catalog, orgs *OrganizationService) *PlanService {
	return &PlanService{catalog: catalog, orgs: orgs}
}

// PlanListing is the public description of one purchasable tier.
type PlanListing struct {
	ID       domain.PlanTier                    `json:"id"`
	PriceUSD int                                `json:"price_usd"`
	Limits   map[plan.Resource]*int             `json:"limits"`
	Features map[plan.Feature]plan.FeatureLevel `json:"features"`
}

// Entitlements summarizes what one organization can currently do.
type Entitlements struct {
	PlanTier domain.PlanTier                    `json:"plan_tier"`
	Status   domain.OrgStatus                   `json:"status"`
	Features map[plan.Feature]plan.FeatureLevel `json:"features"`
	Usage    []ResourceUsage                    `json:"usage"`
}

// ListPublicPlans returns purchasable tiers in ascending order. Tiers
// without a list price (SCALE is sales-negotiated) are omitted.
func (s *PlanService) ListPublicPlans() []PlanListing {
	tiers := s.catalog.Tiers()
	listings := make([]PlanListing, 0, len(tiers))
	for _, tier := range tiers {
		if tier.PriceUSD == nil {
			continue
		}
		listings = append(listings, PlanListing{
			ID:       tier.ID,
			PriceUSD: *tier.PriceUSD,
			Limits:   tier.Limits,
			Features: tier.Features,
		})
	}
	return listings
}

// EntitlementsFor reports the feature levels and resource usage for one
// organization.
func (s *PlanService) EntitlementsFor(ctx context.Context, orgID string) (*Entitlements, error) {
	org, err := s.orgs.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	usage, err := s.orgs.Usage(ctx, orgID)
	if err != nil {
		return nil, err
	}

	features := make(map[plan.Feature]plan.FeatureLevel)
	for _, feature := range []plan.Feature{
		plan.FeatureLicensesInventory,
		plan.FeatureTimeTracking,
		plan.FeatureReporting,
		plan.FeatureAPIAccess,
		plan.FeatureCustomRoles,
		plan.FeatureAutomation,
	} {
		features[feature] = s.catalog.FeatureFor(org.PlanTier, feature)
	}

	return &Entitlements{
		PlanTier: org.PlanTier,
		Status:   org.Status,
		Features: features,
		Usage:    usage,
	}, nil
}
