package domain

import "time"

// NotificationType enumerates in-app notification kinds.
type NotificationType string

const (
	NotificationTypeStatusChange NotificationType = "STATUS_CHANGE"
	NotificationTypeAssignment   NotificationType = "ASSIGNMENT"
	NotificationTypeSubmission   NotificationType = "SUBMISSION"
)

// Notification is a user-visible in-app notification row.
type Notification struct {
	ID            string
	UserID        string
	ApplicationID *string
	Type          NotificationType
	Title         string
	Body          string
	Read          bool
	CreatedAt     time.Time
}

// Mail job types consumed by cmd/notifier.
const (
	MailJobStatusChanged = "application_status_changed"
	MailJobSubmitted     = "application_submitted"
)

// MailJob is the JSON message published to the email queue.
type MailJob struct {
	Type string         `json:"type"`
	To   string         `json:"to"`
	Data map[string]any `json:"data"`
}
