package entity

import "time"

// OwnerContact is the public subset of the owning agent joined onto listings.
type OwnerContact struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// Property is a real-estate listing created by an agent.
type Property struct {
	ID           string        `json:"id"`
	Title        string        `json:"title"`
	Description  string        `json:"description"`
	Price        float64       `json:"price"`
	Location     string        `json:"location"`
	PropertyType string        `json:"property_type"`
	Images       []string      `json:"images"`
	CreatedBy    string        `json:"created_by"`
	Owner        *OwnerContact `json:"owner,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}
