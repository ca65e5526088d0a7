package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/api/dto"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/service"
)

// SLAHandler manages SLA policy and business-hours configuration.
type SLAHandler struct {
	sla *service.SLAService
}

// NewSLAHandler constructs handler.
func NewSLAHandler(slaService *service.SLAService) *SLAHandler {
	return &SLAHandler{sla: slaService}
}

// CreatePolicy handles POST /staff/sla/policies. At most one active policy
// per priority; policies count against the plan's sla_policies ceiling.
func (h *SLAHandler) CreatePolicy(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SLAPolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	policy, err := h.sla.CreatePolicy(c.Context(), staff.OrganizationID, policyInput(req))
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": policyResponse(policy)})
}

// UpdatePolicy handles PUT /staff/sla/policies/:id. Due dates on existing
// tickets never move.
func (h *SLAHandler) UpdatePolicy(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SLAPolicyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	policy, err := h.sla.UpdatePolicy(c.Context(), staff.OrganizationID, c.Params("id"), policyInput(req))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": policyResponse(policy)})
}

// ListPolicies handles GET /staff/sla/policies.
func (h *SLAHandler) ListPolicies(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	policies, err := h.sla.ListPolicies(c.Context(), staff.OrganizationID)
	if err != nil {
		return err
	}
	resp := make([]dto.SLAPolicyResponse, 0, len(policies))
	for i := range policies {
		resp = append(resp, policyResponse(&policies[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// SetBusinessHours handles PUT /staff/sla/business-hours. The calendar is
// validated with a probe walk before saving so a broken configuration can
// never reach ticket creation.
func (h *SLAHandler) SetBusinessHours(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.BusinessHoursRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	hours, err := h.sla.SetBusinessHours(c.Context(), staff.OrganizationID, service.BusinessHoursInput{
		Name:      req.Name,
		Timezone:  req.Timezone,
		WorkDays:  req.WorkDays,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Holidays:  req.Holidays,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": businessHoursResponse(hours)})
}

// GetBusinessHours handles GET /staff/sla/business-hours. Absence of a
// calendar means SLA clocks run around the clock.
func (h *SLAHandler) GetBusinessHours(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	hours, err := h.sla.GetBusinessHours(c.Context(), staff.OrganizationID)
	if err != nil {
		return err
	}
	if hours == nil {
		return c.JSON(fiber.Map{"data": nil})
	}
	return c.JSON(fiber.Map{"data": businessHoursResponse(hours)})
}

func policyInput(req dto.SLAPolicyRequest) service.PolicyInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return service.PolicyInput{
		Name:              req.Name,
		Priority:          req.Priority,
		ResponseMinutes:   req.ResponseMinutes,
		ResolutionMinutes: req.ResolutionMinutes,
		IsActive:          active,
	}
}

func policyResponse(policy *domain.SLAPolicy) dto.SLAPolicyResponse {
	return dto.SLAPolicyResponse{
		ID:                policy.ID,
		Name:              policy.Name,
		Priority:          policy.Priority,
		ResponseMinutes:   policy.ResponseMinutes,
		ResolutionMinutes: policy.ResolutionMinutes,
		IsActive:          policy.IsActive,
		CreatedAt:         policy.CreatedAt,
	}
}

func businessHoursResponse(hours *domain.BusinessHours) dto.BusinessHoursResponse {
	return dto.BusinessHoursResponse{
		ID:        hours.ID,
		Name:      hours.Name,
		Timezone:  hours.Timezone,
		WorkDays:  hours.WorkDays,
		StartTime: hours.StartTime,
		EndTime:   hours.EndTime,
		Holidays:  hours.Holidays,
	}
}
