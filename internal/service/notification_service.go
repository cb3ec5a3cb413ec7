package service

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/events"
	"github.com/spec-kit/panchayat-portal/internal/repository"
)

// NotificationService turns domain events into in-app notification rows
// and queued emails. Everything here is best-effort: failures are logged
// and never propagate to the write that triggered the event.
type NotificationService struct {
	notifications repository.NotificationRepository
	users         repository.UserRepository
	dispatcher    events.Dispatcher
	mail          MailPublisher
	logger        *zap.Logger
}

// NewNotificationService creates the service. mail may be nil.
func NewNotificationService(notifications repository.NotificationRepository, users repository.UserRepository, dispatcher events.Dispatcher, mail MailPublisher, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		notifications: notifications,
		users:         users,
		dispatcher:    dispatcher,
		mail:          mail,
		logger:        logger,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventApplicationSubmitted, n.handleSubmitted)
	n.dispatcher.Subscribe(events.EventApplicationStatusChanged, n.handleStatusChanged)
	n.dispatcher.Subscribe(events.EventApplicationAssigned, n.handleAssigned)
}

// ListForUser returns the caller's notifications.
func (n *NotificationService) ListForUser(ctx context.Context, userID string, unreadOnly bool, limit, offset int) ([]domain.Notification, error) {
	return n.notifications.ListByUser(ctx, userID, unreadOnly, limit, offset)
}

// MarkRead marks one notification read for its owner.
func (n *NotificationService) MarkRead(ctx context.Context, userID, id string) error {
	return n.notifications.MarkRead(ctx, userID, id)
}

// MarkAllRead marks every unread notification read for the owner.
func (n *NotificationService) MarkAllRead(ctx context.Context, userID string) error {
	return n.notifications.MarkAllRead(ctx, userID)
}

// CountUnread returns the badge count for the notification dropdown.
func (n *NotificationService) CountUnread(ctx context.Context, userID string) (int64, error) {
	return n.notifications.CountUnread(ctx, userID)
}

func (n *NotificationService) handleSubmitted(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationSubmittedPayload)
	if !ok {
		return nil
	}
	n.createNotification(ctx, &domain.Notification{
		UserID:        payload.ApplicantID,
		ApplicationID: &event.ApplicationID,
		Type:          domain.NotificationTypeSubmission,
		Title:         "Application submitted",
		Body:          fmt.Sprintf("Your application %s for %s has been received.", payload.ReferenceNo, payload.ServiceName),
	})
	n.queueMail(ctx, payload.ApplicantID, domain.MailJob{
		Type: domain.MailJobSubmitted,
		Data: map[string]any{
			"reference_no": payload.ReferenceNo,
			"service_name": payload.ServiceName,
		},
	})
	return nil
}

func (n *NotificationService) handleStatusChanged(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationStatusChangedPayload)
	if !ok {
		return nil
	}
	body := fmt.Sprintf("Your application %s is now %s.", payload.ReferenceNo, statusLabel(payload.NewStatus))
	if payload.Remarks != nil && *payload.Remarks != "" {
		body += " Remarks: " + *payload.Remarks
	}
	n.createNotification(ctx, &domain.Notification{
		UserID:        payload.ApplicantID,
		ApplicationID: &event.ApplicationID,
		Type:          domain.NotificationTypeStatusChange,
		Title:         "Application " + statusLabel(payload.NewStatus),
		Body:          body,
	})
	n.queueMail(ctx, payload.ApplicantID, domain.MailJob{
		Type: domain.MailJobStatusChanged,
		Data: map[string]any{
			"reference_no": payload.ReferenceNo,
			"new_status":   statusLabel(payload.NewStatus),
			"remarks":      payload.Remarks,
		},
	})
	return nil
}

func (n *NotificationService) handleAssigned(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.ApplicationAssignedPayload)
	if !ok || payload.AssigneeID == nil {
		return nil
	}
	n.createNotification(ctx, &domain.Notification{
		UserID:        *payload.AssigneeID,
		ApplicationID: &event.ApplicationID,
		Type:          domain.NotificationTypeAssignment,
		Title:         "Application assigned to you",
		Body:          fmt.Sprintf("Application %s has been assigned to you for processing.", payload.ReferenceNo),
	})
	return nil
}

func (n *NotificationService) createNotification(ctx context.Context, notification *domain.Notification) {
	if err := n.notifications.Create(ctx, notification); err != nil {
		n.logger.Warn("failed to create notification",
			zap.String("user_id", notification.UserID),
			zap.Error(err))
	}
}

// queueMail publishes an email job when the user's preferences allow it.
func (n *NotificationService) queueMail(ctx context.Context, userID string, job domain.MailJob) {
	if n.mail == nil {
		return
	}
	user, err := n.users.GetByID(ctx, userID)
	if err != nil {
		n.logger.Warn("failed to load user for email", zap.String("user_id", userID), zap.Error(err))
		return
	}
	if !user.Preferences.EmailEnabled || !user.Preferences.ApplicationUpdates {
		return
	}
	job.To = user.Email
	if job.Data == nil {
		job.Data = map[string]any{}
	}
	job.Data["name"] = user.Name
	if err := n.mail.PublishMail(ctx, job); err != nil {
		n.logger.Warn("failed to queue email", zap.String("user_id", userID), zap.Error(err))
	}
}

func statusLabel(status domain.ApplicationStatus) string {
	return strings.ToLower(strings.ReplaceAll(string(status), "_", " "))
}
