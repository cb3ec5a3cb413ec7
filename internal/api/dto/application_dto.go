package dto

import (
	"time"

	"github.com/spec-kit/panchayat-portal/internal/domain"
)

// SubmitApplicationRequest payload.
type SubmitApplicationRequest struct {
	ServiceID string          `json:"service_id" validate:"required,uuid4"`
	FormData  domain.FormData `json:"form_data"`
}

// UpdateApplicationRequest payload for PUT /applications/:id. Absent
// fields are untouched; which fields a caller may set depends on role.
type UpdateApplicationRequest struct {
	Status     *domain.ApplicationStatus `json:"status,omitempty"`
	Remarks    *string                   `json:"remarks,omitempty"`
	AssignedTo *string                   `json:"assigned_to,omitempty" validate:"omitempty,uuid4"`
	FormData   domain.FormData           `json:"form_data,omitempty"`
}

// ApplicationSummary response.
type ApplicationSummary struct {
	ID          string                   `json:"id"`
	ReferenceNo string                   `json:"reference_no"`
	ServiceID   string                   `json:"service_id"`
	ApplicantID string                   `json:"applicant_id"`
	AssignedTo  *string                  `json:"assigned_to"`
	Status      domain.ApplicationStatus `json:"status"`
	Remarks     *string                  `json:"remarks"`
	SubmittedAt time.Time                `json:"submitted_at"`
	UpdatedAt   time.Time                `json:"updated_at"`
	ProcessedAt *time.Time               `json:"processed_at"`
}

// ApplicantResponse is the embedded applicant projection.
type ApplicantResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ApplicationDetailResponse provides full application info.
type ApplicationDetailResponse struct {
	ApplicationSummary
	FormData  domain.FormData              `json:"form_data"`
	Applicant ApplicantResponse            `json:"applicant"`
	History   []ApplicationHistoryResponse `json:"history,omitempty"`
}

// ApplicationHistoryResponse represents one audit entry.
type ApplicationHistoryResponse struct {
	ID            string                       `json:"id"`
	ChangeType    domain.ApplicationChangeType `json:"change_type"`
	ChangedByID   *string                      `json:"changed_by_id"`
	ChangedByRole domain.Role                  `json:"changed_by_role"`
	OldValue      map[string]any               `json:"old_value"`
	NewValue      map[string]any               `json:"new_value"`
	CreatedAt     time.Time                    `json:"created_at"`
}
