package dto

import (
	"time"

	"github.com/spec-kit/panchayat-portal/internal/domain"
)

// NotificationResponse response.
type NotificationResponse struct {
	ID            string                  `json:"id"`
	ApplicationID *string                 `json:"application_id,omitempty"`
	Type          domain.NotificationType `json:"type"`
	Title         string                  `json:"title"`
	Body          string                  `json:"body"`
	Read          bool                    `json:"read"`
	CreatedAt     time.Time               `json:"created_at"`
}

// NotificationFromDomain maps the entity to its response shape.
func NotificationFromDomain(n *domain.Notification) NotificationResponse {
	return NotificationResponse{
		ID:            n.ID,
		ApplicationID: n.ApplicationID,
		Type:          n.Type,
		Title:         n.Title,
		Body:          n.Body,
		Read:          n.Read,
		CreatedAt:     n.CreatedAt,
	}
}
