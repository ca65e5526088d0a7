package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/api/dto"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/service"
)

// OrganizationsHandler exposes tenant signup and plan administration.
type OrganizationsHandler struct {
	orgs  *service.OrganizationService
	staff *service.StaffService
	plans *service.PlanService
}

// NewOrganizationsHandler constructs handler.
func NewOrganizationsHandler(orgs *service.OrganizationService, staff *service.StaffService, plans *service.PlanService) *OrganizationsHandler {
	return &OrganizationsHandler{orgs: orgs, staff: staff, plans: plans}
}

// SignupRequest provisions a tenant together with its founding admin.
type SignupRequest struct {
	Organization dto.CreateOrganizationRequest `json:"organization"`
	Admin        dto.StaffCreateRequest        `json:"admin"`
}

// Signup handles POST /signup. The new tenant starts in TRIAL with one
// admin account already seated.
func (h *OrganizationsHandler) Signup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Organization.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "organization name required")
	}
	if req.Admin.Name == "" || req.Admin.Email == "" || req.Admin.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "admin name, email, password required")
	}

	org, err := h.orgs.CreateOrganization(c.Context(), service.OrganizationCreateInput{
		Name:     req.Organization.Name,
		PlanTier: req.Organization.PlanTier,
		Language: req.Organization.Language,
	})
	if err != nil {
		return err
	}
	admin, err := h.staff.BootstrapAdmin(c.Context(), org.ID, service.StaffCreateInput{
		Name:     req.Admin.Name,
		Email:    req.Admin.Email,
		Password: req.Admin.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{
		"data": fiber.Map{
			"organization": organizationResponse(org),
			"admin":        staffResponse(admin),
		},
	})
}

// ListPlans handles GET /plans. Tiers without a list price are omitted.
func (h *OrganizationsHandler) ListPlans(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.plans.ListPublicPlans()})
}

// GetOrganization handles GET /staff/organization.
func (h *OrganizationsHandler) GetOrganization(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	org, err := h.orgs.GetOrganization(c.Context(), staff.OrganizationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// GetEntitlements handles GET /staff/organization/entitlements. Returns the
// tenant's plan, feature levels and per-resource usage against ceilings.
func (h *OrganizationsHandler) GetEntitlements(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	ent, err := h.plans.EntitlementsFor(c.Context(), staff.OrganizationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ent})
}

// GetUsage handles GET /staff/organization/usage.
func (h *OrganizationsHandler) GetUsage(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	usage, err := h.orgs.Usage(c.Context(), staff.OrganizationID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": usage})
}

// ChangePlan handles PUT /staff/organization/plan. Downgrades are allowed;
// resources over the new ceiling stay but further additions are blocked.
func (h *OrganizationsHandler) ChangePlan(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.ChangePlanRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.PlanTier == "" {
		return fiber.NewError(http.StatusBadRequest, "plan_tier required")
	}
	org, err := h.orgs.ChangePlan(c.Context(), staff.OrganizationID, req.PlanTier)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

// SetStatus handles PUT /staff/organization/status. Used for voluntary
// suspension and reactivation of the tenant.
func (h *OrganizationsHandler) SetStatus(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.SetOrgStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	org, err := h.orgs.SetStatus(c.Context(), staff.OrganizationID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": organizationResponse(org)})
}

func organizationResponse(org *domain.Organization) dto.OrganizationResponse {
	return dto.OrganizationResponse{
		ID:        org.ID,
		Name:      org.Name,
		PlanTier:  org.PlanTier,
		Status:    org.Status,
		Language:  org.Language,
		SeatCount: org.SeatCount,
		CreatedAt: org.CreatedAt,
	}
}
