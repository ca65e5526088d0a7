package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/api/dto"
	"github.com/josoro11/FOXITE-V2/internal/auth"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/events"
	"github.com/josoro11/FOXITE-V2/internal/service"
	apperrors "github.com/josoro11/FOXITE-V2/pkg/util/errorutil"
)

// TicketsHandler manages end-user portal ticket endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Title == "" || req.Description == "" {
		return apperrors.NewValidationError("title and description required", nil)
	}

	input := service.TicketCreateInput{
		CompanyID:   &user.CompanyID,
		RequesterID: &user.ID,
		Title:       req.Title,
		Description: req.Description,
		Priority:    req.Priority,
		Tags:        req.Tags,
	}
	actor := events.Actor{Type: domain.SubjectTypeUser, UserID: &user.ID}
	ticket, err := h.service.CreateTicket(c.Context(), principal.OrganizationID, actor, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// ListTickets GET /tickets. End-users only ever see their own tickets.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	principal, user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	filter := parseTicketFilter(c)
	filter.RequesterID = &user.ID
	tickets, err := h.service.ListTickets(c.Context(), principal.OrganizationID, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// GetTicket GET /tickets/:id. Internal notes are filtered out of the thread.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	principal, user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	ticket, comments, err := h.service.GetTicketForUser(c.Context(), principal.OrganizationID, user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, comments)})
}

// AddComment POST /tickets/:id/comments.
func (h *TicketsHandler) AddComment(c *fiber.Ctx) error {
	principal, user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	comment, err := h.service.AddComment(c.Context(), domain.SubjectTypeUser, principal.OrganizationID, user.ID, c.Params("id"), domain.CommentTypePublicReply, req.Body)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": ticketCommentResponse(comment)})
}

// CloseTicket POST /tickets/:id/close. Only resolved tickets may be closed
// by the requester.
func (h *TicketsHandler) CloseTicket(c *fiber.Ctx) error {
	principal, user, err := userPrincipal(c)
	if err != nil {
		return err
	}
	ticket, err := h.service.CloseTicketAsUser(c.Context(), principal.OrganizationID, user.ID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

func userPrincipal(c *fiber.Ctx) (*auth.Principal, *domain.User, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, nil, apperrors.NewUnauthorized("user required")
	}
	return principal, principal.User, nil
}

func parseTicketFilter(c *fiber.Ctx) service.TicketListFilter {
	filter := service.TicketListFilter{}
	if companyID := c.Query("company_id"); companyID != "" {
		filter.CompanyID = &companyID
	}
	if requester := c.Query("requester_id"); requester != "" {
		filter.RequesterID = &requester
	}
	if assignee := c.Query("assignee_id"); assignee != "" {
		filter.AssigneeID = &assignee
	}
	if statuses := c.Query("status"); statuses != "" {
		for _, part := range strings.Split(statuses, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if priorities := c.Query("priority"); priorities != "" {
		for _, part := range strings.Split(priorities, ",") {
			filter.Priorities = append(filter.Priorities, domain.TicketPriority(strings.TrimSpace(part)))
		}
	}
	if search := c.Query("search"); search != "" {
		filter.SearchTerm = &search
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func parseTime(val string) *time.Time {
	if val == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return nil
	}
	return &t
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}

func ticketSummary(ticket *domain.Ticket) dto.TicketSummary {
	return dto.TicketSummary{
		ID:                    ticket.ID,
		ExternalKey:           ticket.ExternalKey,
		CompanyID:             ticket.CompanyID,
		RequesterID:           ticket.RequesterID,
		AssigneeID:            ticket.AssigneeID,
		Title:                 ticket.Title,
		Status:                ticket.Status,
		Priority:              ticket.Priority,
		Tags:                  ticket.Tags,
		ResponseDueAt:         ticket.ResponseDueAt,
		ResolutionDueAt:       ticket.ResolutionDueAt,
		SLAResponseBreached:   ticket.SLAResponseBreached,
		SLAResolutionBreached: ticket.SLAResolutionBreached,
		CreatedAt:             ticket.CreatedAt,
		UpdatedAt:             ticket.UpdatedAt,
	}
}

func ticketDetail(ticket *domain.Ticket, comments []domain.TicketComment) dto.TicketDetailResponse {
	resp := make([]dto.TicketCommentResponse, 0, len(comments))
	for i := range comments {
		resp = append(resp, ticketCommentResponse(&comments[i]))
	}
	return dto.TicketDetailResponse{
		ID:                    ticket.ID,
		ExternalKey:           ticket.ExternalKey,
		CompanyID:             ticket.CompanyID,
		RequesterID:           ticket.RequesterID,
		AssigneeID:            ticket.AssigneeID,
		Title:                 ticket.Title,
		Description:           ticket.Description,
		Status:                ticket.Status,
		Priority:              ticket.Priority,
		Tags:                  ticket.Tags,
		SLAPolicyID:           ticket.SLAPolicyID,
		ResponseDueAt:         ticket.ResponseDueAt,
		ResolutionDueAt:       ticket.ResolutionDueAt,
		FirstResponseAt:       ticket.FirstResponseAt,
		SLAResponseBreached:   ticket.SLAResponseBreached,
		SLAResolutionBreached: ticket.SLAResolutionBreached,
		CreatedAt:             ticket.CreatedAt,
		UpdatedAt:             ticket.UpdatedAt,
		ResolvedAt:            ticket.ResolvedAt,
		ClosedAt:              ticket.ClosedAt,
		Comments:              resp,
	}
}

func ticketCommentResponse(comment *domain.TicketComment) dto.TicketCommentResponse {
	return dto.TicketCommentResponse{
		ID:          comment.ID,
		CommentType: comment.CommentType,
		AuthorType:  comment.AuthorType,
		AuthorID:    comment.AuthorID,
		Body:        comment.Body,
		CreatedAt:   comment.CreatedAt,
	}
}

func historyResponses(entries []domain.TicketHistory) []dto.TicketHistoryResponse {
	resp := make([]dto.TicketHistoryResponse, 0, len(entries))
	for _, entry := range entries {
		resp = append(resp, dto.TicketHistoryResponse{
			ID:            entry.ID,
			ChangeType:    entry.ChangeType,
			ChangedByType: entry.ChangedByType,
			ChangedByID:   entry.ChangedByID,
			OldValue:      entry.OldValue,
			NewValue:      entry.NewValue,
			CreatedAt:     entry.CreatedAt,
		})
	}
	return resp
}
