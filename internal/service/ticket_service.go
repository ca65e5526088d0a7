package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/events"
	"github.com/josoro11/FOXITE-V2/internal/plan"
	"github.com/josoro11/FOXITE-V2/internal/repository"
	"github.com/josoro11/FOXITE-V2/internal/sla"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// TicketService coordinates the ticket lifecycle: creation with SLA due
// dates, commenting, status transitions and breach detection.
type TicketService struct {
	tickets    repository.TicketRepository
	comments   repository.CommentRepository
	history    repository.TicketHistoryRepository
	slaRepo    repository.SLARepository
	orgs       repository.OrganizationRepository
	companies  repository.CompanyRepository
	dispatcher events.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CommentRepo repository.CommentRepository
	HistoryRepo repository.TicketHistoryRepository
	SLARepo     repository.SLARepository
	OrgRepo     repository.OrganizationRepository
	CompanyRepo repository.CompanyRepository
	Dispatcher  events.Dispatcher
	Logger      *zap.Logger
	Now         func() time.Time
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	CompanyID   *string
	RequesterID *string
	Title       string
	Description string
	Priority    domain.TicketPriority
	Tags        []string
}

// TicketListFilter describes listing filters applied on top of the
// caller's organization scope.
type TicketListFilter struct {
	CompanyID   *string
	RequesterID *string
	AssigneeID  *string
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	svc := &TicketService{
		tickets:    deps.TicketRepo,
		comments:   deps.CommentRepo,
		history:    deps.HistoryRepo,
		slaRepo:    deps.SLARepo,
		orgs:       deps.OrgRepo,
		companies:  deps.CompanyRepo,
		dispatcher: deps.Dispatcher,
		logger:     deps.Logger,
		now:        deps.Now,
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	return svc
}

// CreateTicket creates a ticket within an organization and stamps SLA due
// dates from the active policy for its priority. Due dates are computed
// exactly once here; later priority or policy edits never move them. A
// broken business-hours record downgrades the ticket to no-SLA instead of
// failing the creation.
func (s *TicketService) CreateTicket(ctx context.Context, orgID string, actor events.Actor, input TicketCreateInput) (*domain.Ticket, error) {
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

	if input.CompanyID != nil {
		company, err := s.companies.GetByID(ctx, orgID, *input.CompanyID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("company", map[string]any{"company_id": *input.CompanyID})
			}
			return nil, apperrors.MapError(err)
		}
		if !company.IsActive {
			return nil, apperrors.NewConflict("company inactive", map[string]any{"company_id": company.ID})
		}
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.TicketPriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": priority})
	}

	ticket := &domain.Ticket{
		ExternalKey:    generateTicketKey(),
		OrganizationID: orgID,
		CompanyID:      input.CompanyID,
		RequesterID:    input.RequesterID,
		Title:          strings.TrimSpace(input.Title),
		Description:    strings.TrimSpace(input.Description),
		Status:         domain.TicketStatusNew,
		Priority:       priority,
		Tags:           input.Tags,
	}

	createdAt := s.now()
	applied, err := s.applySLA(ctx, orgID, priority, createdAt)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if applied != nil {
		ticket.SLAPolicyID = &applied.PolicyID
		ticket.ResponseDueAt = &applied.ResponseDueAt
		ticket.ResolutionDueAt = &applied.ResolutionDueAt
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketCreated,
		OrganizationID: orgID,
		TicketID:       ticket.ID,
		Actor:          actor,
		Payload: events.TicketCreatedPayload{
			Priority:        ticket.Priority,
			Title:           ticket.Title,
			SLAPolicyID:     ticket.SLAPolicyID,
			ResponseDueAt:   ticket.ResponseDueAt,
			ResolutionDueAt: ticket.ResolutionDueAt,
		},
	})
	return ticket, nil
}

// applySLA computes due dates for a new ticket. A missing policy yields nil
// without error. A ConfigurationError is logged and swallowed so that a
// misconfigured calendar never blocks ticket intake.
func (s *TicketService) applySLA(ctx context.Context, orgID string, priority domain.TicketPriority, createdAt time.Time) (*sla.Applied, error) {
	policies, err := s.slaRepo.ListActivePolicies(ctx, orgID)
	if err != nil {
		return nil, err
	}
	hours, err := s.slaRepo.GetBusinessHours(ctx, orgID)
	if err != nil {
		return nil, err
	}

	applied, err := sla.Apply(priority, createdAt, policies, hours)
	if err != nil {
		var confErr *sla.ConfigurationError
		if errors.As(err, &confErr) {
			s.logger.Warn("business hours misconfigured, creating ticket without SLA",
				zap.String("organization_id", orgID),
				zap.String("reason", confErr.Reason))
			return nil, nil
		}
		return nil, err
	}
	return applied, nil
}

// GetTicketForUser fetches a ticket ensuring requester ownership, returning
// client-visible comments only.
func (s *TicketService) GetTicketForUser(ctx context.Context, orgID, userID, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	ticket, err := s.loadTicket(ctx, orgID, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.RequesterID == nil || *ticket.RequesterID != userID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	all, err := s.comments.ListByTicket(ctx, orgID, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	visible := make([]domain.TicketComment, 0, len(all))
	for _, c := range all {
		if c.CommentType == domain.CommentTypeInternalNote {
			continue
		}
		visible = append(visible, c)
	}
	return ticket, visible, nil
}

// GetTicketForStaff fetches a ticket with the full comment thread.
func (s *TicketService) GetTicketForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, []domain.TicketComment, error) {
	if staff == nil {
		return nil, nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.loadTicket(ctx, staff.OrganizationID, ticketID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.comments.ListByTicket(ctx, staff.OrganizationID, ticket.ID)
	if err != nil {
		return nil, nil, apperrors.MapError(err)
	}
	return ticket, comments, nil
}

// loadTicket fetches a ticket and refreshes its breach state. Every read
// path goes through here so breach flags are current even between sweeps.
func (s *TicketService) loadTicket(ctx context.Context, orgID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, orgID, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	if err := s.RefreshBreach(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// RefreshBreach evaluates the ticket's breach state at the current time and
// persists any newly crossed due date. Flags only move false to true; the
// SQL update is itself monotonic, so a concurrent sweep cannot conflict.
func (s *TicketService) RefreshBreach(ctx context.Context, ticket *domain.Ticket) error {
	breach := sla.EvaluateBreach(ticket, s.now())
	if !breach.ChangedFrom(ticket) {
		return nil
	}
	if err := s.tickets.RecordBreach(ctx, ticket.OrganizationID, ticket.ID, breach.Response, breach.Resolution); err != nil {
		return err
	}
	oldResponse := ticket.SLAResponseBreached
	oldResolution := ticket.SLAResolutionBreached
	newResponse := breach.Response && !oldResponse
	newResolution := breach.Resolution && !oldResolution
	ticket.SLAResponseBreached = breach.Response
	ticket.SLAResolutionBreached = breach.Resolution

	entry := &domain.TicketHistory{
		TicketID:       ticket.ID,
		OrganizationID: ticket.OrganizationID,
		ChangedByType:  domain.AuthorTypeSystem,
		ChangeType:     domain.ChangeTypeSLA,
		OldValue: map[string]any{
			"sla_breached_response":   oldResponse,
			"sla_breached_resolution": oldResolution,
		},
		NewValue: map[string]any{
			"sla_breached_response":   breach.Response,
			"sla_breached_resolution": breach.Resolution,
		},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return err
	}
	s.publishEvent(ctx, events.Event{
		Type:           events.EventSLABreached,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          events.Actor{Type: domain.SubjectTypeSystem},
		Payload: events.SLABreachedPayload{
			ResponseBreached:   newResponse,
			ResolutionBreached: newResolution,
			Priority:           ticket.Priority,
		},
	})
	return nil
}

// ListTickets returns tickets for the organization with optional filters.
func (s *TicketService) ListTickets(ctx context.Context, orgID string, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		OrganizationID: orgID,
		CompanyID:      filter.CompanyID,
		RequesterID:    filter.RequesterID,
		AssigneeID:     filter.AssigneeID,
		Statuses:       filter.Statuses,
		Priorities:     filter.Priorities,
		SearchTerm:     filter.SearchTerm,
		CreatedFrom:    filter.CreatedFrom,
		CreatedTo:      filter.CreatedTo,
		Limit:          filter.Limit,
		Offset:         filter.Offset,
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// AddComment appends a comment to a ticket. The first staff public reply
// stops the response-SLA clock by stamping first_response_at.
func (s *TicketService) AddComment(ctx context.Context, actor domain.SubjectType, actorOrgID, actorID string, ticketID string, commentType domain.TicketCommentType, body string) (*domain.TicketComment, error) {
	ticket, err := s.loadTicket(ctx, actorOrgID, ticketID)
	if err != nil {
		return nil, err
	}

	comment := &domain.TicketComment{
		TicketID:       ticket.ID,
		OrganizationID: ticket.OrganizationID,
		CommentType:    commentType,
		Body:           strings.TrimSpace(body),
	}

	switch actor {
	case domain.SubjectTypeUser:
		if ticket.RequesterID == nil || *ticket.RequesterID != actorID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if commentType != domain.CommentTypePublicReply {
			return nil, apperrors.NewValidationError("end-users can only post public replies", nil)
		}
		comment.AuthorType = domain.AuthorTypeUser
		comment.AuthorID = &actorID
	case domain.SubjectTypeStaff:
		if commentType != domain.CommentTypePublicReply && commentType != domain.CommentTypeInternalNote {
			return nil, apperrors.NewValidationError("invalid comment type", map[string]any{"comment_type": commentType})
		}
		comment.AuthorType = domain.AuthorTypeStaff
		comment.AuthorID = &actorID
	default:
		return nil, apperrors.NewUnauthorized("unknown actor")
	}

	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, apperrors.MapError(err)
	}

	firstResponse := false
	if comment.AuthorType == domain.AuthorTypeStaff &&
		comment.CommentType == domain.CommentTypePublicReply &&
		ticket.FirstResponseAt == nil {
		at := s.now()
		if err := s.tickets.SetFirstResponse(ctx, ticket.OrganizationID, ticket.ID, at); err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.FirstResponseAt = &at
		firstResponse = true
	}

	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketCommentAdded,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          actorFromSubject(actor, actorID),
		Payload: events.TicketCommentAddedPayload{
			CommentID:     comment.ID,
			CommentType:   comment.CommentType,
			AuthorType:    comment.AuthorType,
			AuthorID:      comment.AuthorID,
			BodyPreview:   stringPreview(comment.Body, 120),
			FirstResponse: firstResponse,
		},
	})
	return comment, nil
}

// UpdateStatus transitions a ticket's status by staff. Breach state is
// refreshed against the pre-transition status first, so resolving a ticket
// after its resolution due date still records the breach.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.loadTicket(ctx, staff.OrganizationID, ticketID)
	if err != nil {
		return nil, err
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}

	oldStatus := ticket.Status
	now := s.now()
	switch newStatus {
	case domain.TicketStatusResolved:
		ticket.ResolvedAt = &now
	case domain.TicketStatusClosed:
		ticket.ClosedAt = &now
		if ticket.ResolvedAt == nil {
			ticket.ResolvedAt = &now
		}
	default:
		// reopening clears completion timestamps, never breach flags
		ticket.ResolvedAt = nil
		ticket.ClosedAt = nil
	}
	ticket.Status = newStatus

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, &staff.ID, ticket, oldStatus, newStatus, comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketStatusChanged,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          staffActor(staff.ID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// CloseTicketAsUser lets the requester close their resolved ticket.
func (s *TicketService) CloseTicketAsUser(ctx context.Context, orgID, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.loadTicket(ctx, orgID, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID == nil || *ticket.RequesterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewConflict("ticket cannot be closed in current status", map[string]any{"status": ticket.Status})
	}
	oldStatus := ticket.Status
	now := s.now()
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordStatusChange(ctx, &userID, ticket, oldStatus, ticket.Status, "closed_by_requester"); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketStatusChanged,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          userActor(userID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Comment:   "closed_by_requester",
		},
	})
	return ticket, nil
}

// UpdatePriority changes ticket priority by staff. Due dates stay as
// computed at creation; only the audit trail records the change.
func (s *TicketService) UpdatePriority(ctx context.Context, staff *domain.StaffMember, ticketID string, newPriority domain.TicketPriority) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if !domain.ValidPriority(newPriority) {
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": newPriority})
	}
	ticket, err := s.loadTicket(ctx, staff.OrganizationID, ticketID)
	if err != nil {
		return nil, err
	}
	oldPriority := ticket.Priority
	if oldPriority == newPriority {
		return ticket, nil
	}
	ticket.Priority = newPriority
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	entry := &domain.TicketHistory{
		TicketID:       ticket.ID,
		OrganizationID: ticket.OrganizationID,
		ChangedByType:  domain.AuthorTypeStaff,
		ChangedByID:    &staff.ID,
		ChangeType:     domain.ChangeTypePriority,
		OldValue:       map[string]any{"priority": oldPriority},
		NewValue:       map[string]any{"priority": newPriority},
	}
	if err := s.history.Create(ctx, entry); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishEvent(ctx, events.Event{
		Type:           events.EventTicketPriorityChanged,
		OrganizationID: ticket.OrganizationID,
		TicketID:       ticket.ID,
		Actor:          staffActor(staff.ID),
		Payload: events.TicketPriorityChangedPayload{
			OldPriority: oldPriority,
			NewPriority: newPriority,
		},
	})
	return ticket, nil
}

// ListHistory returns the audit trail for a ticket.
func (s *TicketService) ListHistory(ctx context.Context, orgID, ticketID string, limit, offset int) ([]domain.TicketHistory, error) {
	entries, err := s.history.ListByTicket(ctx, orgID, ticketID, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return entries, nil
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorID *string, ticket *domain.Ticket, oldStatus, newStatus domain.TicketStatus, comment string) error {
	authorType := domain.AuthorTypeStaff
	if ticket.RequesterID != nil && actorID != nil && *ticket.RequesterID == *actorID {
		authorType = domain.AuthorTypeUser
	}
	entry := &domain.TicketHistory{
		TicketID:       ticket.ID,
		OrganizationID: ticket.OrganizationID,
		ChangedByType:  authorType,
		ChangedByID:    actorID,
		ChangeType:     domain.ChangeTypeStatus,
		OldValue:       map[string]any{"status": oldStatus},
		NewValue:       map[string]any{"status": newStatus, "comment": comment},
	}
	return s.history.Create(ctx, entry)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func userActor(userID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeUser, UserID: &userID}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{Type: domain.SubjectTypeStaff, StaffID: &staffID}
}

func actorFromSubject(subject domain.SubjectType, id string) events.Actor {
	switch subject {
	case domain.SubjectTypeStaff:
		return staffActor(id)
	default:
		return userActor(id)
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	// truncate on rune boundaries so the preview stays valid UTF-8
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusNew:        {domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusOnHold, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusOpen:       {domain.TicketStatusInProgress, domain.TicketStatusOnHold, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusInProgress: {domain.TicketStatusOpen, domain.TicketStatusOnHold, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusOnHold:     {domain.TicketStatusOpen, domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusClosed},
	domain.TicketStatusResolved:   {domain.TicketStatusOpen, domain.TicketStatusClosed},
	domain.TicketStatusClosed:     {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}
