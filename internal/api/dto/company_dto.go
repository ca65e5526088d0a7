package dto

import "time"

// CompanyRequest payload for creating or updating a client company.
type CompanyRequest struct {
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email,omitempty"`
	Phone        string `json:"phone,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// CompanyResponse client company response shape.
type CompanyResponse struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	ContactEmail string    `json:"contact_email,omitempty"`
	Phone        string    `json:"phone,omitempty"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
