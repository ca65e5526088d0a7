package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/josoro11/FOXITE-V2/internal/auth"
	"github.com/josoro11/FOXITE-V2/internal/config"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// StaffService manages staff accounts within an organization. Staff occupy
// seats; the seat ceiling is the organization's seat count, not the plan
// catalog directly.
type StaffService struct {
	orgs       repository.OrganizationRepository
	staff      repository.StaffRepository
	guard      *plan.Guard
	locks      *tenantLocks
	bcryptCost int
}

// StaffDependencies encapsulates repositories for staff management.
type StaffDependencies struct {
	OrgRepo   repository.OrganizationRepository
	StaffRepo repository.StaffRepository
	Guard     *plan.Guard
	Locks     *tenantLocks
}

// StaffCreateInput describes a new staff account.
type StaffCreateInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.StaffRole
}

// StaffListFilters define listing parameters.
type StaffListFilters struct {
	Role   *domain.StaffRole
	Active *bool
	Limit  int
	Offset int
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps StaffDependencies) *StaffService {
	locks := deps.Locks
	if locks == nil {
		locks = newTenantLocks()
	}
	return &StaffService{
		orgs:       deps.OrgRepo,
		staff:      deps.StaffRepo,
		guard:      deps.Guard,
		locks:      locks,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil || actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateStaffMember adds a staff account, consuming one seat. The check
// and insert run under the tenant's seat lock so two concurrent creations
// cannot both squeeze into the last seat.
func (s *StaffService) CreateStaffMember(ctx context.Context, actor *domain.StaffMember, orgID string, input StaffCreateInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.create(ctx, orgID, input, false)
}

// BootstrapAdmin creates the founding ADMIN account of a newly provisioned
// organization. It only works while the organization has no staff at all,
// so it cannot be used to sidestep the admin-only creation path later.
func (s *StaffService) BootstrapAdmin(ctx context.Context, orgID string, input StaffCreateInput) (*domain.StaffMember, error) {
	input.Role = domain.StaffRoleAdmin
	return s.create(ctx, orgID, input, true)
}

func (s *StaffService) create(ctx context.Context, orgID string, input StaffCreateInput, bootstrap bool) (*domain.StaffMember, error) {
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

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.staff.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("staff email already exists", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	switch input.Role {
	case domain.StaffRoleAdmin, domain.StaffRoleSupervisor, domain.StaffRoleTechnician:
	default:
		return nil, apperrors.NewValidationError("unknown staff role", map[string]any{"role": input.Role})
	}

	unlock := s.locks.Acquire(orgID, string(plan.ResourceStaffUsers))
	defer unlock()

	active, err := s.staff.CountActiveByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if bootstrap && active > 0 {
		return nil, apperrors.NewConflict("organization already has staff", map[string]any{"organization_id": orgID})
	}
	if err := plan.EnforceSeatAvailable(org.SeatCount, active); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	staff := &domain.StaffMember{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		PasswordHash:   hash,
		Role:           input.Role,
		Active:         true,
	}
	if err := s.staff.Create(ctx, staff); err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// ListStaffMembers lists staff with filters.
func (s *StaffService) ListStaffMembers(ctx context.Context, actor *domain.StaffMember, filters StaffListFilters) ([]domain.StaffMember, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	repoFilter := repository.StaffFilter{
		OrganizationID: actor.OrganizationID,
		Role:           filters.Role,
		Active:         filters.Active,
		Limit:          filters.Limit,
		Offset:         filters.Offset,
	}
	members, err := s.staff.List(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

// GetStaffMemberByID fetches a staff account in the actor's organization.
func (s *StaffService) GetStaffMemberByID(ctx context.Context, actor *domain.StaffMember, id string) (*domain.StaffMember, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	staff, err := s.staff.GetByID(ctx, actor.OrganizationID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}

// UpdateStaffMember updates staff details. Reactivating a deactivated
// account re-checks seat availability under the tenant lock.
func (s *StaffService) UpdateStaffMember(ctx context.Context, actor *domain.StaffMember, staffID, name, email string, role domain.StaffRole, active bool) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	staff, err := s.GetStaffMemberByID(ctx, actor, staffID)
	if err != nil {
		return nil, err
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email != "" && email != staff.Email {
		if existing, err := s.staff.GetByEmail(ctx, email); err == nil && existing != nil && existing.ID != staff.ID {
			return nil, apperrors.NewConflict("staff email already exists", map[string]any{"email": email})
		} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.MapError(err)
		}
		staff.Email = email
	}

	if active && !staff.Active {
		unlock := s.locks.Acquire(actor.OrganizationID, string(plan.ResourceStaffUsers))
		defer unlock()

		org, err := s.orgs.GetByID(ctx, actor.OrganizationID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		current, err := s.staff.CountActiveByOrganization(ctx, actor.OrganizationID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if err := plan.EnforceSeatAvailable(org.SeatCount, current); err != nil {
			return nil, err
		}
	}

	if name != "" {
		staff.Name = name
	}
	if role != "" {
		staff.Role = role
	}
	staff.Active = active

	if err := s.staff.Update(ctx, staff); err != nil {
		return nil, apperrors.MapError(err)
	}
	return staff, nil
}
