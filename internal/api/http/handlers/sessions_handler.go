package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/api/dto"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/service"
)

// SessionsHandler manages time tracking endpoints. The whole surface is
// gated by the time_tracking plan feature.
type SessionsHandler struct {
	sessions *service.SessionService
}

// NewSessionsHandler constructs handler.
func NewSessionsHandler(sessions *service.SessionService) *SessionsHandler {
	return &SessionsHandler{sessions: sessions}
}

// StartSession handles POST /staff/sessions.
func (h *SessionsHandler) StartSession(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.StartSessionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	session, err := h.sessions.StartSession(c.Context(), staff, service.SessionStartInput{
		TicketID:        req.TicketID,
		Notes:           req.Notes,
		VisibleToClient: req.VisibleToClient,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(session)})
}

// StopSession handles POST /staff/sessions/:id/stop. Duration is rounded
// up to whole minutes.
func (h *SessionsHandler) StopSession(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	session, err := h.sessions.StopSession(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(session)})
}

// ListSessions handles GET /staff/sessions.
func (h *SessionsHandler) ListSessions(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	list, err := h.sessions.ListSessions(c.Context(), staff, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.SessionResponse, 0, len(list))
	for i := range list {
		resp = append(resp, sessionResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

func sessionResponse(session *domain.WorkSession) dto.SessionResponse {
	return dto.SessionResponse{
		ID:              session.ID,
		StaffID:         session.StaffID,
		TicketID:        session.TicketID,
		StartTime:       session.StartTime,
		EndTime:         session.EndTime,
		DurationMinutes: session.DurationMinutes,
		Notes:           session.Notes,
		VisibleToClient: session.VisibleToClient,
	}
}
