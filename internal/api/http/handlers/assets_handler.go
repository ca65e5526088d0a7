package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/josoro11/FOXITE-V2/internal/api/dto"
	"github.com/josoro11/FOXITE-V2/internal/domain"
	"github.com/josoro11/FOXITE-V2/internal/service"
)

// AssetsHandler manages device and license inventory endpoints.
type AssetsHandler struct {
	assets *service.AssetService
}

// NewAssetsHandler constructs handler.
func NewAssetsHandler(assets *service.AssetService) *AssetsHandler {
	return &AssetsHandler{assets: assets}
}

// CreateDevice handles POST /staff/devices.
func (h *AssetsHandler) CreateDevice(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.DeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}
	device, err := h.assets.CreateDevice(c.Context(), staff.OrganizationID, service.DeviceCreateInput{
		CompanyID:    req.CompanyID,
		Name:         req.Name,
		DeviceType:   req.DeviceType,
		SerialNumber: req.SerialNumber,
		Notes:        req.Notes,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": deviceResponse(device)})
}

// ListDevices handles GET /staff/devices.
func (h *AssetsHandler) ListDevices(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	list, err := h.assets.ListDevices(c.Context(), staff.OrganizationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.DeviceResponse, 0, len(list))
	for i := range list {
		resp = append(resp, deviceResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetDevice handles GET /staff/devices/:id.
func (h *AssetsHandler) GetDevice(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	device, err := h.assets.GetDevice(c.Context(), staff.OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": deviceResponse(device)})
}

// UpdateDevice handles PUT /staff/devices/:id.
func (h *AssetsHandler) UpdateDevice(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	device, err := h.assets.GetDevice(c.Context(), staff.OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	var req dto.DeviceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name != "" {
		device.Name = req.Name
	}
	if req.DeviceType != "" {
		device.DeviceType = req.DeviceType
	}
	if req.SerialNumber != "" {
		device.SerialNumber = req.SerialNumber
	}
	if req.Status != nil {
		device.Status = *req.Status
	}
	device.Notes = req.Notes
	if req.CompanyID != nil {
		device.CompanyID = req.CompanyID
	}
	updated, err := h.assets.UpdateDevice(c.Context(), staff.OrganizationID, device)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": deviceResponse(updated)})
}

// CreateLicense handles POST /staff/licenses. License inventory is gated
// by the licenses_inventory plan feature.
func (h *AssetsHandler) CreateLicense(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	var req dto.LicenseRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Name == "" {
		return fiber.NewError(http.StatusBadRequest, "name required")
	}
	license, err := h.assets.CreateLicense(c.Context(), staff.OrganizationID, service.LicenseCreateInput{
		CompanyID:  req.CompanyID,
		Name:       req.Name,
		Vendor:     req.Vendor,
		LicenseKey: req.LicenseKey,
		Seats:      req.Seats,
		ExpiresAt:  req.ExpiresAt,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": licenseResponse(license)})
}

// ListLicenses handles GET /staff/licenses.
func (h *AssetsHandler) ListLicenses(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	page := parseIntQuery(c, "page", 1)
	pageSize := parseIntQuery(c, "page_size", 50)
	list, err := h.assets.ListLicenses(c.Context(), staff.OrganizationID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	resp := make([]dto.LicenseResponse, 0, len(list))
	for i := range list {
		resp = append(resp, licenseResponse(&list[i]))
	}
	return c.JSON(fiber.Map{"data": resp})
}

// GetLicense handles GET /staff/licenses/:id.
func (h *AssetsHandler) GetLicense(c *fiber.Ctx) error {
	staff, err := staffPrincipal(c)
	if err != nil {
		return err
	}
	license, err := h.assets.GetLicense(c.Context(), staff.OrganizationID, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": licenseResponse(license)})
}

func deviceResponse(device *domain.Device) dto.DeviceResponse {
	return dto.DeviceResponse{
		ID:           device.ID,
		CompanyID:    device.CompanyID,
		Name:         device.Name,
		DeviceType:   device.DeviceType,
		SerialNumber: device.SerialNumber,
		Status:       device.Status,
		Notes:        device.Notes,
		CreatedAt:    device.CreatedAt,
	}
}

func licenseResponse(license *domain.License) dto.LicenseResponse {
	return dto.LicenseResponse{
		ID:         license.ID,
		CompanyID:  license.CompanyID,
		Name:       license.Name,
		Vendor:     license.Vendor,
		LicenseKey: license.LicenseKey,
		Seats:      license.Seats,
		ExpiresAt:  license.ExpiresAt,
		CreatedAt:  license.CreatedAt,
	}
}
