package dto

import (
	"time"

	"github.com/spec-kit/panchayat-portal/internal/domain"
)

// ServiceRequest payload for catalog create/update.
type ServiceRequest struct {
	Name           string   `json:"name" validate:"required,min=2,max=200"`
	Description    string   `json:"description"`
	Requirements   []string `json:"requirements"`
	ProcessingTime string   `json:"processing_time"`
	Category       *string  `json:"category"`
	IsActive       bool     `json:"is_active"`
}

// ServiceResponse response.
type ServiceResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Description    string    `json:"description"`
	Requirements   []string  `json:"requirements"`
	ProcessingTime string    `json:"processing_time"`
	Category       *string   `json:"category"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// ServiceFromDomain maps the entity to its response shape.
func ServiceFromDomain(svc *domain.Service) ServiceResponse {
	return ServiceResponse{
		ID:             svc.ID,
		Name:           svc.Name,
		Description:    svc.Description,
		Requirements:   svc.Requirements,
		ProcessingTime: svc.ProcessingTime,
		Category:       svc.Category,
		IsActive:       svc.IsActive,
		CreatedAt:      svc.CreatedAt,
		UpdatedAt:      svc.UpdatedAt,
	}
}
