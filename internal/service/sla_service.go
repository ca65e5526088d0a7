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
	"github.com/josoro11/FOXITE-V2/internal/sla"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// SLAService manages SLA policies and the organization's business-hours
// calendar. Policies are plan-limited; the calendar is validated with a
// probe walk before it is saved so a broken record never reaches tickets.
type SLAService struct {
	orgs    repository.OrganizationRepository
	slaRepo repository.SLARepository
	guard   *plan.Guard
	locks   *tenantLocks
}

// SLAServiceDependencies bundles repositories for the service.
type SLAServiceDependencies struct {
	OrgRepo repository.OrganizationRepository
	SLARepo repository.SLARepository
	Guard   *plan.Guard
	Locks   *tenantLocks
}

// NewSLAService constructs the service.
func NewSLAService(deps SLAServiceDependencies) *SLAService {
	locks := deps.Locks
	if locks == nil {
		locks = newTenantLocks()
	}
	return &SLAService{
		orgs:    deps.OrgRepo,
		slaRepo: deps.SLARepo,
		guard:   deps.Guard,
		locks:   locks,
	}
}

// PolicyInput describes an SLA policy payload.
type PolicyInput struct {
	Name              string
	Priority          domain.TicketPriority
	ResponseMinutes   int
	ResolutionMinutes int
	IsActive          bool
}

// BusinessHoursInput describes the weekly calendar payload.
type BusinessHoursInput struct {
	Name      string
	Timezone  string
	WorkDays  []int
	StartTime string
	EndTime   string
	Holidays  []string
}

func validatePolicyInput(input PolicyInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return apperrors.NewValidationError("policy name required", nil)
	}
	if !domain.ValidPriority(input.Priority) {
		return apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}
	if input.ResponseMinutes <= 0 || input.ResolutionMinutes <= 0 {
		return apperrors.NewValidationError("minute budgets must be positive", map[string]any{
			"response_minutes":   input.ResponseMinutes,
			"resolution_minutes": input.ResolutionMinutes,
		})
	}
	if input.ResolutionMinutes < input.ResponseMinutes {
		return apperrors.NewValidationError("resolution budget cannot be below response budget", nil)
	}
	return nil
}

// CreatePolicy adds an SLA policy if the plan ceiling allows it. At most
// one active policy may exist per priority.
func (s *SLAService) CreatePolicy(ctx context.Context, orgID string, input PolicyInput) (*domain.SLAPolicy, error) {
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
	if err := validatePolicyInput(input); err != nil {
		return nil, err
	}

	unlock := s.locks.Acquire(orgID, string(plan.ResourceSLAPolicies))
	defer unlock()

	current, err := s.slaRepo.CountPoliciesByOrganization(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.guard.EnforceResourceLimit(org.PlanTier, plan.ResourceSLAPolicies, current); err != nil {
		return nil, err
	}

	if input.IsActive {
		if err := s.ensureNoActiveDuplicate(ctx, orgID, input.Priority, ""); err != nil {
			return nil, err
		}
	}

	policy := &domain.SLAPolicy{
		OrganizationID:    orgID,
		Name:              strings.TrimSpace(input.Name),
		Priority:          input.Priority,
		ResponseMinutes:   input.ResponseMinutes,
		ResolutionMinutes: input.ResolutionMinutes,
		IsActive:          input.IsActive,
	}
	if err := s.slaRepo.CreatePolicy(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}

// UpdatePolicy edits an SLA policy. Tickets created under the old values
// keep their due dates; only future tickets see the change.
func (s *SLAService) UpdatePolicy(ctx context.Context, orgID, policyID string, input PolicyInput) (*domain.SLAPolicy, error) {
	if err := validatePolicyInput(input); err != nil {
		return nil, err
	}
	policy, err := s.slaRepo.GetPolicy(ctx, orgID, policyID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("sla policy", map[string]any{"policy_id": policyID})
		}
		return nil, apperrors.MapError(err)
	}

	if input.IsActive {
		if err := s.ensureNoActiveDuplicate(ctx, orgID, input.Priority, policy.ID); err != nil {
			return nil, err
		}
	}

	policy.Name = strings.TrimSpace(input.Name)
	policy.Priority = input.Priority
	policy.ResponseMinutes = input.ResponseMinutes
	policy.ResolutionMinutes = input.ResolutionMinutes
	policy.IsActive = input.IsActive
	if err := s.slaRepo.UpdatePolicy(ctx, policy); err != nil {
		return nil, apperrors.MapError(err)
	}
	return policy, nil
}

func (s *SLAService) ensureNoActiveDuplicate(ctx context.Context, orgID string, priority domain.TicketPriority, excludeID string) error {
	active, err := s.slaRepo.ListActivePolicies(ctx, orgID)
	if err != nil {
		return apperrors.MapError(err)
	}
	for _, p := range active {
		if p.Priority == priority && p.ID != excludeID {
			return apperrors.NewConflict("an active policy already exists for this priority", map[string]any{
				"priority":  priority,
				"policy_id": p.ID,
			})
		}
	}
	return nil
}

// ListPolicies returns the organization's active policies.
func (s *SLAService) ListPolicies(ctx context.Context, orgID string) ([]domain.SLAPolicy, error) {
	policies, err := s.slaRepo.ListActivePolicies(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return policies, nil
}

// SetBusinessHours validates and saves the organization's weekly calendar.
// Validation runs a probe walk through the calendar arithmetic so every
// ConfigurationError surfaces here, at admin time, instead of at ticket
// creation.
func (s *SLAService) SetBusinessHours(ctx context.Context, orgID string, input BusinessHoursInput) (*domain.BusinessHours, error) {
	hours := &domain.BusinessHours{
		OrganizationID: orgID,
		Name:           strings.TrimSpace(input.Name),
		Timezone:       strings.TrimSpace(input.Timezone),
		WorkDays:       input.WorkDays,
		StartTime:      input.StartTime,
		EndTime:        input.EndTime,
		Holidays:       input.Holidays,
	}
	if hours.Name == "" {
		hours.Name = "Default"
	}
	for _, day := range hours.WorkDays {
		if day < 1 || day > 7 {
			return nil, apperrors.NewValidationError("work days must use ISO numbering 1..7", map[string]any{"day": day})
		}
	}
	for _, holiday := range hours.Holidays {
		if _, err := time.Parse("2006-01-02", holiday); err != nil {
			return nil, apperrors.NewValidationError("invalid holiday date", map[string]any{"holiday": holiday})
		}
	}
	if _, err := sla.Advance(time.Now(), 1, hours); err != nil {
		var confErr *sla.ConfigurationError
		if errors.As(err, &confErr) {
			return nil, apperrors.NewValidationError("invalid business hours", map[string]any{"reason": confErr.Reason})
		}
		return nil, apperrors.MapError(err)
	}

	if err := s.slaRepo.UpsertBusinessHours(ctx, hours); err != nil {
		return nil, apperrors.MapError(err)
	}
	return hours, nil
}

// GetBusinessHours returns the calendar, or nil when the organization
// operates around the clock.
func (s *SLAService) GetBusinessHours(ctx context.Context, orgID string) (*domain.BusinessHours, error) {
	hours, err := s.slaRepo.GetBusinessHours(ctx, orgID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return hours, nil
}
