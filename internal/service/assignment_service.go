package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/events"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// AssignmentService handles ticket assignment operations.
type AssignmentService struct {
	tickets     repository.TicketRepository
	staff       repository.StaffRepository
	historyRepo repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	StaffRepo   repository.StaffRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		staff:       deps.StaffRepo,
		historyRepo: deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// SelfAssignTicket allows a staff member to take a ticket themselves.
func (s *AssignmentService) SelfAssignTicket(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return s.assign(ctx, staff, ticketID, staff)
}

// AssignTicketToStaff assigns a ticket to another staff member. Only
// supervisors and admins can assign on behalf of others.
func (s *AssignmentService) AssignTicketToStaff(ctx context.Context, actor *domain.StaffMember, ticketID, assigneeStaffID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if actor.Role != domain.StaffRoleSupervisor && actor.Role != domain.StaffRoleAdmin {
		return nil, apperrors.NewForbidden("insufficient role for assignment")
	}
	assignee, err := s.staff.GetByID(ctx, actor.OrganizationID, assigneeStaffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": assigneeStaffID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.Active {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"staff_id": assigneeStaffID})
	}
	return s.assign(ctx, actor, ticketID, assignee)
}

// UnassignTicket clears the assignee (SUPERVISOR/ADMIN).
func (s *AssignmentService) UnassignTicket(ctx context.Context, actor *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if actor == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if actor.Role != domain.StaffRoleSupervisor && actor.Role != domain.StaffRoleAdmin {
		return nil, apperrors.NewForbidden("insufficient role for assignment")
	}
	return s.assign(ctx, actor, ticketID, nil)
}

func (s *AssignmentService) assign(ctx context.Context, actor *domain.StaffMember, ticketID string, assignee *domain.StaffMember) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, actor.OrganizationID, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	oldAssignee := ticket.AssigneeID
	if assignee != nil {
		ticket.AssigneeID = &assignee.ID
	} else {
		ticket.AssigneeID = nil
	}
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordAssigneeChange(ctx, actor.ID, ticket, oldAssignee, ticket.AssigneeID); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssignmentEvent(ctx, actor.ID, ticket)
	return ticket, nil
}

func (s *AssignmentService) recordAssigneeChange(ctx context.Context, actorID string, ticket *domain.Ticket, oldAssignee, newAssignee *string) error {
	return s.historyRepo.Create(ctx, &domain.TicketHistory{
		TicketID:       ticket.ID,
		OrganizationID: ticket.OrganizationID,
		ChangedByType:  domain.AuthorTypeStaff,
		ChangedByID:    &actorID,
		ChangeType:     domain.ChangeTypeAssignee,
		OldValue: map[string]any{
			"assignee_staff_id": oldAssignee,
		},
		NewValue: map[string]any{
			"assignee_staff_id": newAssignee,
		},
	})
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, actorID string, ticket *domain.Ticket) {
	if s.dispatcher == nil {
		return
	}
	event := events.Event{
		ID:             uuid.NewString(),
		Type:           events.EventTicketAssigned,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          staffActor(actorID),
		Timestamp:      time.Now(),
		Payload: events.TicketAssignedPayload{
			AssigneeStaffID: ticket.AssigneeID,
		},
	}
	_ = s.dispatcher.Publish(ctx, event)
}
