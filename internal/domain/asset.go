package domain

import "time"

// AssetStatus enumerates device lifecycle states.
type AssetStatus string

const (
	AssetStatusActive      AssetStatus = "ACTIVE"
	AssetStatusMaintenance AssetStatus = "MAINTENANCE"
	AssetStatusRetired     AssetStatus = "RETIRED"
)

// Device is a managed hardware asset tied to a client company.
type Device struct {
	ID             string
	OrganizationID string
	CompanyID      *string
	Name           string
	DeviceType     string
	SerialNumber   string
	Status         AssetStatus
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// License is a tracked software entitlement. License inventory is gated by
// the licenses_inventory plan feature.
type License struct {
	ID             string
	OrganizationID string
	CompanyID      *string
	Name           string
	Vendor         string
	LicenseKey     string
	Seats          int
	ExpiresAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
