package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// SessionService manages staff work sessions. Time tracking is gated on
// the time_tracking plan feature.
type SessionService struct {
	orgs     repository.OrganizationRepository
	sessions repository.SessionRepository
	tickets  repository.TicketRepository
	guard    *plan.Guard
	now      func() time.Time
}

// SessionDependencies bundles repositories for the service.
type SessionDependencies struct {
	OrgRepo     repository.OrganizationRepository
	SessionRepo repository.SessionRepository
	TicketRepo  repository.TicketRepository
	Guard       *plan.Guard
	Now         func() time.Time
}

// NewSessionService constructs the service.
func NewSessionService(deps SessionDependencies) *SessionService {
	svc := &SessionService{
		orgs:     deps.OrgRepo,
		sessions: deps.SessionRepo,
		tickets:  deps.TicketRepo,
		guard:    deps.Guard,
		now:      deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// SessionStartInput describes a new work session.
type SessionStartInput struct {
	TicketID        *string
	Notes           string
	VisibleToClient bool
}

func (s *SessionService) requireTimeTracking(ctx context.Context, orgID string) error {
	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("organization", map[string]any{"organization_id": orgID})
		}
		return apperrors.MapError(err)
	}
	if err := plan.EnforceNotSuspended(org.Status); err != nil {
		return err
	}
	return s.guard.EnforceFeatureAccess(org.PlanTier, plan.FeatureTimeTracking)
}

// StartSession opens a work session for a staff member, optionally bound
// to a ticket in the same organization.
func (s *SessionService) StartSession(ctx context.Context, staff *domain.StaffMember, input SessionStartInput) (*domain.WorkSession, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if err := s.requireTimeTracking(ctx, staff.OrganizationID); err != nil {
		return nil, err
	}
	if input.TicketID != nil {
		if _, err := s.tickets.GetByID(ctx, staff.OrganizationID, *input.TicketID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": *input.TicketID})
			}
			return nil, apperrors.MapError(err)
		}
	}

	session := &domain.WorkSession{
		OrganizationID:  staff.OrganizationID,
		StaffID:         staff.ID,
		TicketID:        input.TicketID,
		StartTime:       s.now(),
		Notes:           input.Notes,
		VisibleToClient: input.VisibleToClient,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, apperrors.MapError(err)
	}
	return session, nil
}

// StopSession closes an open session and derives its duration in whole
// minutes, rounded up so sub-minute work is never recorded as zero.
func (s *SessionService) StopSession(ctx context.Context, staff *domain.StaffMember, sessionID string) (*domain.WorkSession, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if err := s.requireTimeTracking(ctx, staff.OrganizationID); err != nil {
		return nil, err
	}
	session, err := s.sessions.GetByID(ctx, staff.OrganizationID, sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("work session", map[string]any{"session_id": sessionID})
		}
		return nil, apperrors.MapError(err)
	}
	if session.StaffID != staff.ID && staff.Role == domain.StaffRoleTechnician {
		return nil, apperrors.NewForbidden("access denied")
	}
	if session.EndTime != nil {
		return nil, apperrors.NewConflict("session already closed", map[string]any{"session_id": sessionID})
	}

	end := s.now()
	minutes := int((end.Sub(session.StartTime) + time.Minute - 1) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	session.EndTime = &end
	session.DurationMinutes = &minutes
	if err := s.sessions.Update(ctx, session); err != nil {
		return nil, apperrors.MapError(err)
	}
	return session, nil
}

// ListSessions lists sessions for an organization.
func (s *SessionService) ListSessions(ctx context.Context, staff *domain.StaffMember, limit, offset int) ([]domain.WorkSession, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if err := s.requireTimeTracking(ctx, staff.OrganizationID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByOrganization(ctx, staff.OrganizationID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sessions, nil
}

// ListTicketSessions lists sessions recorded against one ticket.
func (s *SessionService) ListTicketSessions(ctx context.Context, staff *domain.StaffMember, ticketID string) ([]domain.WorkSession, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if err := s.requireTimeTracking(ctx, staff.OrganizationID); err != nil {
		return nil, err
	}
	sessions, err := s.sessions.ListByTicket(ctx, staff.OrganizationID, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return sessions, nil
}
