package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// AssetService manages the device and license inventories. Devices are
// plan-limited; licenses additionally require the licenses_inventory
// plan feature.
type AssetService struct {
	orgs     repository.OrganizationRepository
	devices  repository.DeviceRepository
	licenses repository.LicenseRepository
	guard    *plan.Guard
	locks    *tenantLocks
}

// AssetDependencies bundles repositories for the service.
type AssetDependencies struct {
	OrgRepo     repository.OrganizationRepository
	DeviceRepo  repository.DeviceRepository
	LicenseRepo repository.LicenseRepository
	Guard       *plan.Guard
	Locks       *tenantLocks
}

// NewAssetService constructs the service.
func NewAssetService(deps AssetDependencies) *AssetService {
	locks := deps.Locks
	if locks == nil {
		locks = newTenantLocks()
	}
	return &AssetService{
		orgs:     deps.OrgRepo,
		devices:  deps.DeviceRepo,
		licenses: deps.LicenseRepo,
		guard:    deps.Guard,
		locks:    locks,
	}
}

// DeviceCreateInput describes a new device record.
type DeviceCreateInput struct {
	CompanyID    *string
	Name         string
	DeviceType   string
	SerialNumber string
	Notes        string
}

// LicenseCreateInput describes a new license record.
type LicenseCreateInput struct {
	CompanyID  *string
	Name       string
	Vendor     string
	LicenseKey string
	Seats      int
	ExpiresAt  *string
}

func (s *AssetService) loadActiveOrg(ctx context.Context, orgID string) (*domain.Organization, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("organization", map[string]any{"organization_id": orgID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := plan.EnforceNotSuspended(org.Status); err != nil {
		return nil, err
	}
	return org, nil
}

// CreateDevice adds a device if the plan ceiling allows it.
func (s *AssetService) CreateDevice(ctx context.Context, orgID string, input DeviceCreateInput) (*domain.Device, error) {
	org, err := s.loadActiveOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("device name required", nil)
	}

	unlock := s.locks.Acquire(orgID, string(plan.ResourceDevices))
	defer unlock()

	current, err := s.devices.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.guard.EnforceResourceLimit(org.PlanTier, plan.ResourceDevices, current); err != nil {
		return nil, err
	}

	device := &domain.Device{
		OrganizationID: orgID,
		CompanyID:      input.CompanyID,
		Name:           name,
		DeviceType:     strings.TrimSpace(input.DeviceType),
		SerialNumber:   strings.TrimSpace(input.SerialNumber),
		Status:         domain.AssetStatusActive,
		Notes:          input.Notes,
	}
	if err := s.devices.Create(ctx, device); err != nil {
		return nil, apperrors.MapError(err)
	}
	return device, nil
}

// GetDevice fetches a device within the organization.
func (s *AssetService) GetDevice(ctx context.Context, orgID, id string) (*domain.Device, error) {
	device, err := s.devices.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("device", map[string]any{"device_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return device, nil
}

// ListDevices lists devices for an organization.
func (s *AssetService) ListDevices(ctx context.Context, orgID string, limit, offset int) ([]domain.Device, error) {
	devices, err := s.devices.ListByOrganization(ctx, orgID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return devices, nil
}

// UpdateDevice updates device metadata or status.
func (s *AssetService) UpdateDevice(ctx context.Context, orgID string, device *domain.Device) (*domain.Device, error) {
	if device.OrganizationID != orgID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if err := s.devices.Update(ctx, device); err != nil {
		return nil, apperrors.MapError(err)
	}
	return device, nil
}

// CreateLicense adds a license record. The license inventory is gated on
// the plan feature first, then on the numeric ceiling.
func (s *AssetService) CreateLicense(ctx context.Context, orgID string, input LicenseCreateInput) (*domain.License, error) {
	org, err := s.loadActiveOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.EnforceFeatureAccess(org.PlanTier, plan.FeatureLicensesInventory); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("license name required", nil)
	}

	unlock := s.locks.Acquire(orgID, string(plan.ResourceLicenses))
	defer unlock()

	current, err := s.licenses.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.guard.EnforceResourceLimit(org.PlanTier, plan.ResourceLicenses, current); err != nil {
		return nil, err
	}

	license := &domain.License{
		OrganizationID: orgID,
		CompanyID:      input.CompanyID,
		Name:           name,
		Vendor:         strings.TrimSpace(input.Vendor),
		LicenseKey:     strings.TrimSpace(input.LicenseKey),
		Seats:          input.Seats,
		ExpiresAt:      nil,
	}
	if input.ExpiresAt != nil {
		expires, err := parseDate(*input.ExpiresAt)
		if err != nil {
			return nil, apperrors.NewValidationError("invalid expiry date", map[string]any{"expires_at": *input.ExpiresAt})
		}
		license.ExpiresAt = &expires
	}
	if err := s.licenses.Create(ctx, license); err != nil {
		return nil, apperrors.MapError(err)
	}
	return license, nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

// ListLicenses lists licenses, still gated on the plan feature so a
// downgraded tenant loses read access along with write access.
func (s *AssetService) ListLicenses(ctx context.Context, orgID string, limit, offset int) ([]domain.License, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.guard.EnforceFeatureAccess(org.PlanTier, plan.FeatureLicensesInventory); err != nil {
		return nil, err
	}
	licenses, err := s.licenses.ListByOrganization(ctx, orgID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return licenses, nil
}

// GetLicense fetches a license within the organization.
func (s *AssetService) GetLicense(ctx context.Context, orgID, id string) (*domain.License, error) {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.guard.EnforceFeatureAccess(org.PlanTier, plan.FeatureLicensesInventory); err != nil {
		return nil, err
	}
	license, err := s.licenses.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("license", map[string]any{"license_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return license, nil
}
