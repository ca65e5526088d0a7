package dto

import (
	"time"

	"github.com/josoro11/FOXITE-V2/internal/domain"
)

// DeviceRequest payload for creating or updating a managed device.
type DeviceRequest struct {
	CompanyID    *string             `json:"company_id,omitempty"`
	Name         string              `json:"name"`
	DeviceType   string              `json:"device_type,omitempty"`
	SerialNumber string              `json:"serial_number,omitempty"`
	Status       *domain.AssetStatus `json:"status,omitempty"`
	Notes        string              `json:"notes,omitempty"`
}

// DeviceResponse device response shape.
type DeviceResponse struct {
	ID           string             `json:"id"`
	CompanyID    *string            `json:"company_id,omitempty"`
	Name         string             `json:"name"`
	DeviceType   string             `json:"device_type,omitempty"`
	SerialNumber string             `json:"serial_number,omitempty"`
	Status       domain.AssetStatus `json:"status"`
	Notes        string             `json:"notes,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
}

// LicenseRequest payload for creating a license record. ExpiresAt is a
// YYYY-MM-DD date.
type LicenseRequest struct {
	CompanyID  *string `json:"company_id,omitempty"`
	Name       string  `json:"name"`
	Vendor     string  `json:"vendor,omitempty"`
	LicenseKey string  `json:"license_key,omitempty"`
	Seats      int     `json:"seats,omitempty"`
	ExpiresAt  *string `json:"expires_at,omitempty"`
}

// LicenseResponse license response shape.
type LicenseResponse struct {
	ID         string     `json:"id"`
	CompanyID  *string    `json:"company_id,omitempty"`
	Name       string     `json:"name"`
	Vendor     string     `json:"vendor,omitempty"`
	LicenseKey string     `json:"license_key,omitempty"`
	Seats      int        `json:"seats"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}
