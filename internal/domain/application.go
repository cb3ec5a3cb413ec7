package domain

import "time"

// ApplicationStatus enumerates the application lifecycle.
type ApplicationStatus string

const (
	ApplicationStatusPending    ApplicationStatus = "PENDING"
	ApplicationStatusInProgress ApplicationStatus = "IN_PROGRESS"
	ApplicationStatusApproved   ApplicationStatus = "APPROVED"
	ApplicationStatusRejected   ApplicationStatus = "REJECTED"
)

// IsTerminal reports whether no further transitions are allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusApproved || s == ApplicationStatusRejected
}

// FormData holds the submitted form payload. Values are scalars or, for
// uploaded documents, objects matching the FileRef shape. Stored as JSONB.
type FormData map[string]any

// FileRef describes an uploaded document referenced from FormData. The
// file itself lives in external storage; only the descriptor travels here.
type FileRef struct {
	FileName  string `json:"file_name"`
	URL       string `json:"url"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

// Application is the aggregate for a citizen's service request.
type Application struct {
	ID          string
	ReferenceNo string
	ServiceID   string
	ApplicantID string
	AssigneeID  *string
	Status      ApplicationStatus
	FormData    FormData
	Remarks     *string
	SubmittedAt time.Time
	UpdatedAt   time.Time
	ProcessedAt *time.Time
}
