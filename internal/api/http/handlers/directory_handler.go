package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/api/dto"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/service"
)

// DirectoryHandler manages client companies and their portal accounts.
type DirectoryHandler struct {
	companies *service.CompanyService
}

// NewDirectoryHandler constructs handler.
func NewDirectoryHandler(companies *service.CompanyService) *DirectoryHandler {
	return &DirectoryHandler{companies: companies}
}

// CreateCompany handles POST /staff/companies.
func (h *DirectoryHandler) CreateCompany(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}
	company, err := h.companies.CreateCompany(c.Context(), staff.OrganizationID, service.CompanyCreateInput{
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
		Phone:        req.Phone,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": companyResponse(company)})
}

// ListCompanies handles GET /staff/companies.
func (h *DirectoryHandler) ListCompanies(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	list, err := h.companies.ListCompanies(c.Context(), staff.OrganizationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.CompanyResponse, 0, len(list))
	for i := range list {
		resp = append(resp, companyResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetCompany handles GET /staff/companies/:id.
func (h *DirectoryHandler) GetCompany(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	company, err := h.companies.GetCompany(c.Context(), staff.OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(company)})
}

// UpdateCompany handles PUT /staff/companies/:id.
func (h *DirectoryHandler) UpdateCompany(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	company, err := h.companies.GetCompany(c.Context(), staff.OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.CompanyRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name != "" {
		company.Name = req.Name
	}
	company.ContactEmail = req.ContactEmail
	company.Phone = req.Phone
	if req.IsActive != nil {
		company.IsActive = *req.IsActive
	}
	updated, err := h.companies.UpdateCompany(c.Context(), staff.OrganizationID, company)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": companyResponse(updated)})
}

// CreateEndUser handles POST /staff/end-users. Portal accounts count
// against the plan's end-user ceiling.
func (h *DirectoryHandler) CreateEndUser(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.CreateEndUserRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.CompanyID == "" || req.Name == "" || req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "company_id, name, email, password required")
	}
	user, err := h.companies.CreateEndUser(c.Context(), staff.OrganizationID, service.EndUserCreateInput{
		CompanyID: req.CompanyID,
		Name:      req.Name,
		Email:     req.Email,
		Password:  req.Password,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": endUserResponse(user)})
}

// ListEndUsers handles GET /staff/end-users.
func (h *DirectoryHandler) ListEndUsers(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	list, err := h.companies.ListEndUsers(c.Context(), staff.OrganizationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.EndUserResponse, 0, len(list))
	for i := range list {
		resp = append(resp, endUserResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetEndUser handles GET /staff/end-users/:id.
func (h *DirectoryHandler) GetEndUser(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	user, err := h.companies.GetEndUser(c.Context(), staff.OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": endUserResponse(user)})
}

func companyResponse(company *domain.ClientCompany) dto.CompanyResponse {
	return dto.CompanyResponse{
		ID:           company.ID,
		Name:         company.Name,
		ContactEmail: company.ContactEmail,
		Phone:        company.Phone,
		IsActive:     company.IsActive,
		CreatedAt:    company.CreatedAt,
	}
}

func endUserResponse(user *domain.User) dto.EndUserResponse {
	return dto.EndUserResponse{
		ID:        user.ID,
		CompanyID: user.CompanyID,
		Name:      user.Name,
		Email:     user.Email,
		Status:    string(user.Status),
		CreatedAt: user.CreatedAt,
	}
}
