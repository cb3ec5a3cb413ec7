package events

import (
	"time"

	"github.com/spec-kit/panchayat-portal/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventApplicationSubmitted     EventType = "application_submitted"
	EventApplicationStatusChanged EventType = "application_status_changed"
	EventApplicationAssigned      EventType = "application_assigned"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	ID   string      `json:"id"`
	Role domain.Role `json:"role"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID            string      `json:"id"`
	Type          EventType   `json:"type"`
	ApplicationID string      `json:"application_id"`
	Actor         Actor       `json:"actor"`
	Timestamp     time.Time   `json:"timestamp"`
	Payload       interface{} `json:"payload"`
}

// ApplicationSubmittedPayload payload.
type ApplicationSubmittedPayload struct {
	ReferenceNo string `json:"reference_no"`
	ServiceID   string `json:"service_id"`
	ServiceName string `json:"service_name"`
	ApplicantID string `json:"applicant_id"`
}

// ApplicationStatusChangedPayload payload.
type ApplicationStatusChangedPayload struct {
	ReferenceNo string                   `json:"reference_no"`
	ApplicantID string                   `json:"applicant_id"`
	OldStatus   domain.ApplicationStatus `json:"old_status"`
	NewStatus   domain.ApplicationStatus `json:"new_status"`
	Remarks     *string                  `json:"remarks,omitempty"`
}

// ApplicationAssignedPayload payload.
type ApplicationAssignedPayload struct {
	ReferenceNo   string  `json:"reference_no"`
	AssigneeID    *string `json:"assignee_id,omitempty"`
	OldAssigneeID *string `json:"old_assignee_id,omitempty"`
}
