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

// CompanyService manages client companies and their end-users. Both are
// plan-limited resources, so creations run count-then-insert under the
// tenant lock for the respective resource kind.
type CompanyService struct {
	orgs       repository.OrganizationRepository
	companies  repository.CompanyRepository
	endUsers   repository.EndUserRepository
	guard      *plan.Guard
	locks      *tenantLocks
	bcryptCost int
}

// CompanyDependencies bundles repositories for the service.
type CompanyDependencies struct {
	OrgRepo     repository.OrganizationRepository
	CompanyRepo repository.CompanyRepository
	EndUserRepo repository.EndUserRepository
	Guard       *plan.Guard
	Locks       *tenantLocks
}

// NewCompanyService constructs the service.
func NewCompanyService(cfg config.Config, deps CompanyDependencies) *CompanyService {
	locks := deps.Locks
	if locks == nil {
		locks = newTenantLocks()
	}
	return &CompanyService{
		orgs:       deps.OrgRepo,
		companies:  deps.CompanyRepo,
		endUsers:   deps.EndUserRepo,
		guard:      deps.Guard,
		locks:      locks,
		bcryptCost: cfg.Auth.BcryptCost,
	}
}

// CompanyCreateInput describes a new client company.
type CompanyCreateInput struct {
	Name         string
	ContactEmail string
	Phone        string
}

// EndUserCreateInput describes a new end-user account.
type EndUserCreateInput struct {
	CompanyID string
	Name      string
	Email     string
	Password  string
}

func (s *CompanyService) loadActiveOrg(ctx context.Context, orgID string) (*domain.Organization, error) {
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

// CreateCompany adds a client company if the plan ceiling allows it.
func (s *CompanyService) CreateCompany(ctx context.Context, orgID string, input CompanyCreateInput) (*domain.ClientCompany, error) {
	org, err := s.loadActiveOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("company name required", nil)
	}

	unlock := s.locks.Acquire(orgID, string(plan.ResourceClientCompanies))
	defer unlock()

	current, err := s.companies.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.guard.EnforceResourceLimit(org.PlanTier, plan.ResourceClientCompanies, current); err != nil {
		return nil, err
	}

	company := &domain.ClientCompany{
		OrganizationID: orgID,
		Name:           name,
		ContactEmail:   strings.ToLower(strings.TrimSpace(input.ContactEmail)),
		Phone:          strings.TrimSpace(input.Phone),
		IsActive:       true,
	}
	if err := s.companies.Create(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// GetCompany fetches a company within the organization.
func (s *CompanyService) GetCompany(ctx context.Context, orgID, id string) (*domain.ClientCompany, error) {
	company, err := s.companies.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("company", map[string]any{"company_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// ListCompanies lists companies for an organization.
func (s *CompanyService) ListCompanies(ctx context.Context, orgID string, limit, offset int) ([]domain.ClientCompany, error) {
	companies, err := s.companies.ListByOrganization(ctx, orgID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return companies, nil
}

// UpdateCompany updates company metadata.
func (s *CompanyService) UpdateCompany(ctx context.Context, orgID string, company *domain.ClientCompany) (*domain.ClientCompany, error) {
	if company.OrganizationID != orgID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if err := s.companies.Update(ctx, company); err != nil {
		return nil, apperrors.MapError(err)
	}
	return company, nil
}

// CreateEndUser provisions a portal account for a company contact.
func (s *CompanyService) CreateEndUser(ctx context.Context, orgID string, input EndUserCreateInput) (*domain.User, error) {
	org, err := s.loadActiveOrg(ctx, orgID)
	if err != nil {
		return nil, err
	}
	company, err := s.GetCompany(ctx, orgID, input.CompanyID)
	if err != nil {
		return nil, err
	}
	if !company.IsActive {
		return nil, apperrors.NewConflict("company inactive", map[string]any{"company_id": company.ID})
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	if existing, err := s.endUsers.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, apperrors.NewConflict("email already registered", map[string]any{"email": email})
	} else if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	unlock := s.locks.Acquire(orgID, string(plan.ResourceEndUsers))
	defer unlock()

	current, err := s.endUsers.CountByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.guard.EnforceResourceLimit(org.PlanTier, plan.ResourceEndUsers, current); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		OrganizationID: orgID,
		CompanyID:      company.ID,
		Name:           strings.TrimSpace(input.Name),
		Email:          email,
		PasswordHash:   hash,
		Status:         domain.UserStatusActive,
	}
	if err := s.endUsers.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// GetEndUser fetches an end-user within the organization.
func (s *CompanyService) GetEndUser(ctx context.Context, orgID, id string) (*domain.User, error) {
	user, err := s.endUsers.GetByID(ctx, orgID, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("end-user", map[string]any{"user_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListEndUsers lists end-users for an organization.
func (s *CompanyService) ListEndUsers(ctx context.Context, orgID string, limit, offset int) ([]domain.User, error) {
	users, err := s.endUsers.ListByOrganization(ctx, orgID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}
