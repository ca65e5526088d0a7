package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// OrganizationService manages tenant accounts and their plan assignment.
type OrganizationService struct {
	orgs      repository.OrganizationRepository
	staff     repository.StaffRepository
	companies repository.CompanyRepository
	endUsers  repository.EndUserRepository
	devices   repository.DeviceRepository
	licenses  repository.LicenseRepository
	policies  repository.SLARepository
	catalog   *plan.Catalog
}

// OrganizationDependencies bundles repositories for the service.
type OrganizationDependencies struct {
	OrgRepo     repository.OrganizationRepository
	StaffRepo   repository.StaffRepository
	CompanyRepo repository.CompanyRepository
	EndUserRepo repository.EndUserRepository
	DeviceRepo  repository.DeviceRepository
	LicenseRepo repository.LicenseRepository
	SLARepo     repository.SLARepository
	Catalog     *plan.Catalog
}

// NewOrganizationService constructs the service.
func NewOrganizationService(deps OrganizationDependencies) *OrganizationService {
	return &OrganizationService{
		orgs:      deps.OrgRepo,
		staff:     deps.StaffRepo,
		companies: deps.CompanyRepo,
		endUsers:  deps.EndUserRepo,
		devices:   deps.DeviceRepo,
		licenses:  deps.LicenseRepo,
		policies:  deps.SLARepo,
		catalog:   deps.Catalog,
	}
}

// OrganizationCreateInput describes a new tenant.
type OrganizationCreateInput struct {
	Name     string
	PlanTier domain.PlanTier
	Language string
}

// ResourceUsage pairs a consumed count with the plan ceiling for one
// resource kind. Limit nil means unlimited.
type ResourceUsage struct {
	Resource plan.Resource `json:"resource"`
	Current  int           `json:"current"`
	Limit    *int          `json:"limit,omitempty"`
}

// CreateOrganization provisions a tenant. Seat count is seeded from the
// plan's staff ceiling; unlimited tiers start with a generous default that
// admins can raise later.
func (s *OrganizationService) CreateOrganization(ctx context.Context, input OrganizationCreateInput) (*domain.Organization, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("organization name required", nil)
	}
	tier := input.PlanTier
	if tier == "" {
		tier = domain.PlanTierCore
	}
	language := input.Language
	if language == "" {
		language = "en"
	}

	org := &domain.Organization{
		Name:      name,
		PlanTier:  tier,
		Status:    domain.OrgStatusTrial,
		Language:  language,
		SeatCount: s.seatsForTier(tier),
	}
	if err := s.orgs.Create(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// GetOrganization fetches a tenant by id.
func (s *OrganizationService) GetOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// ChangePlan moves the organization to a different tier. Downgrades are
// allowed even when current usage exceeds the new ceilings: existing
// resources stay, only further additions are blocked by the guard.
func (s *OrganizationService) ChangePlan(ctx context.Context, orgID string, tier domain.PlanTier) (*domain.Organization, error) {
	org, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	org.PlanTier = tier
	org.SeatCount = s.seatsForTier(tier)
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// SetStatus suspends or reactivates a tenant.
func (s *OrganizationService) SetStatus(ctx context.Context, orgID string, status domain.OrgStatus) (*domain.Organization, error) {
	switch status {
	case domain.OrgStatusActive, domain.OrgStatusSuspended, domain.OrgStatusTrial:
	default:
		return nil, apperrors.NewValidationError("unknown organization status", map[string]any{"status": status})
	}
	org, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}
	org.Status = status
	if err := s.orgs.Update(ctx, org); err != nil {
		return nil, apperrors.MapError(err)
	}
	return org, nil
}

// Usage reports current consumption against plan ceilings for every
// limited resource kind, plus seat occupancy.
func (s *OrganizationService) Usage(ctx context.Context, orgID string) ([]ResourceUsage, error) {
	org, err := s.GetOrganization(ctx, orgID)
	if err != nil {
		return nil, err
	}

	counters := []struct {
		resource plan.Resource
		count    func(context.Context, string) (int, error)
	}{
		{plan.ResourceStaffUsers, s.staff.CountActiveByOrganization},
		{plan.ResourceClientCompanies, s.companies.CountByOrganization},
		{plan.ResourceEndUsers, s.endUsers.CountByOrganization},
		{plan.ResourceDevices, s.devices.CountByOrganization},
		{plan.ResourceLicenses, s.licenses.CountByOrganization},
		{plan.ResourceSLAPolicies, s.policies.CountPoliciesByOrganization},
	}

	usage := make([]ResourceUsage, 0, len(counters))
	for _, c := range counters {
		current, err := c.count(ctx, orgID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		usage = append(usage, ResourceUsage{
			Resource: c.resource,
			Current:  current,
			Limit:    s.catalog.LimitFor(org.PlanTier, c.resource),
		})
	}
	return usage, nil
}

// seatsForTier derives the initial seat count from the plan's staff
// ceiling. SCALE has no ceiling, so seats start at a fixed default.
func (s *OrganizationService) seatsForTier(tier domain.PlanTier) int {
	if limit := s.catalog.LimitFor(tier, plan.ResourceStaffUsers); limit != nil {
		return *limit
	}
	return 100
}
