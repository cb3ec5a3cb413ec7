package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/events"
)

type fakeNotificationRepo struct {
	rows []domain.Notification
}

func (f *fakeNotificationRepo) Create(_ context.Context, notification *domain.Notification) error {
	notification.ID = uuid.NewString()
	f.rows = append(f.rows, *notification)
	return nil
}

func (f *fakeNotificationRepo) ListByUser(_ context.Context, userID string, unreadOnly bool, _, _ int) ([]domain.Notification, error) {
	var out []domain.Notification
	for _, row := range f.rows {
		if row.UserID != userID {
			continue
		}
		if unreadOnly && row.Read {
			continue
		}
		out = append(out, row)
	}
	return out, nil
}

func (f *fakeNotificationRepo) MarkRead(_ context.Context, userID, id string) error {
	for i := range f.rows {
		if f.rows[i].ID == id && f.rows[i].UserID == userID {
			f.rows[i].Read = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotificationRepo) MarkAllRead(_ context.Context, userID string) error {
	for i := range f.rows {
		if f.rows[i].UserID == userID {
			f.rows[i].Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) CountUnread(_ context.Context, userID string) (int64, error) {
	var count int64
	for _, row := range f.rows {
		if row.UserID == userID && !row.Read {
			count++
		}
	}
	return count, nil
}

type fakeMailPublisher struct {
	jobs []domain.MailJob
}

func (f *fakeMailPublisher) PublishMail(_ context.Context, job domain.MailJob) error {
	f.jobs = append(f.jobs, job)
	return nil
}

func TestStatusChangeCreatesNotificationAndQueuesMail(t *testing.T) {
	users := newFakeUserRepo()
	citizen := &domain.User{
		Name:   "Asha Kumari",
		Email:  "asha@example.com",
		Role:   "citizen",
		Status: domain.UserStatusActive,
		Preferences: domain.NotificationPreferences{
			EmailEnabled:       true,
			ApplicationUpdates: true,
		},
	}
	require.NoError(t, users.Create(context.Background(), citizen))

	repo := &fakeNotificationRepo{}
	mail := &fakeMailPublisher{}
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewNotificationService(repo, users, dispatcher, mail, zap.NewNop())
	svc.RegisterHandlers()

	remarks := "verified"
	appID := uuid.NewString()
	err := dispatcher.Publish(context.Background(), events.Event{
		ID:            uuid.NewString(),
		Type:          events.EventApplicationStatusChanged,
		ApplicationID: appID,
		Payload: events.ApplicationStatusChangedPayload{
			ReferenceNo: "APP-AB12CD34",
			ApplicantID: citizen.ID,
			OldStatus:   domain.ApplicationStatusPending,
			NewStatus:   domain.ApplicationStatusApproved,
			Remarks:     &remarks,
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	row := repo.rows[0]
	assert.Equal(t, citizen.ID, row.UserID)
	assert.Equal(t, domain.NotificationTypeStatusChange, row.Type)
	assert.Contains(t, row.Body, "APP-AB12CD34")
	assert.Contains(t, row.Body, "approved")
	assert.Contains(t, row.Body, "verified")
	require.NotNil(t, row.ApplicationID)
	assert.Equal(t, appID, *row.ApplicationID)

	require.Len(t, mail.jobs, 1)
	job := mail.jobs[0]
	assert.Equal(t, domain.MailJobStatusChanged, job.Type)
	assert.Equal(t, citizen.Email, job.To)
	assert.Equal(t, "approved", job.Data["new_status"])
}

func TestStatusChangeRespectsEmailPreferences(t *testing.T) {
	users := newFakeUserRepo()
	citizen := &domain.User{
		Name:   "Asha Kumari",
		Email:  "asha@example.com",
		Role:   "citizen",
		Status: domain.UserStatusActive,
		Preferences: domain.NotificationPreferences{
			EmailEnabled:       false,
			ApplicationUpdates: true,
		},
	}
	require.NoError(t, users.Create(context.Background(), citizen))

	repo := &fakeNotificationRepo{}
	mail := &fakeMailPublisher{}
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewNotificationService(repo, users, dispatcher, mail, zap.NewNop())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:          events.EventApplicationStatusChanged,
		ApplicationID: uuid.NewString(),
		Payload: events.ApplicationStatusChangedPayload{
			ReferenceNo: "APP-AB12CD34",
			ApplicantID: citizen.ID,
			NewStatus:   domain.ApplicationStatusRejected,
		},
	})
	require.NoError(t, err)

	// The in-app row still lands; only the email is skipped.
	assert.Len(t, repo.rows, 1)
	assert.Empty(t, mail.jobs)
}

func TestAssignmentNotifiesAssignee(t *testing.T) {
	users := newFakeUserRepo()
	staff := &domain.User{Name: "Ravi Menon", Email: "ravi@panchayat.gov.example", Role: "staff", Status: domain.UserStatusActive}
	require.NoError(t, users.Create(context.Background(), staff))

	repo := &fakeNotificationRepo{}
	dispatcher := events.NewInMemoryDispatcher()

	svc := NewNotificationService(repo, users, dispatcher, nil, zap.NewNop())
	svc.RegisterHandlers()

	err := dispatcher.Publish(context.Background(), events.Event{
		Type:          events.EventApplicationAssigned,
		ApplicationID: uuid.NewString(),
		Payload: events.ApplicationAssignedPayload{
			ReferenceNo: "APP-AB12CD34",
			AssigneeID:  &staff.ID,
		},
	})
	require.NoError(t, err)

	require.Len(t, repo.rows, 1)
	assert.Equal(t, staff.ID, repo.rows[0].UserID)
	assert.Equal(t, domain.NotificationTypeAssignment, repo.rows[0].Type)
}

func TestNotificationReadFlow(t *testing.T) {
	users := newFakeUserRepo()
	repo := &fakeNotificationRepo{}
	svc := NewNotificationService(repo, users, nil, nil, zap.NewNop())

	ownerID := uuid.NewString()
	otherID := uuid.NewString()
	for _, userID := range []string{ownerID, ownerID, otherID} {
		require.NoError(t, repo.Create(context.Background(), &domain.Notification{
			UserID: userID,
			Type:   domain.NotificationTypeSubmission,
			Title:  "Application submitted",
		}))
	}

	count, err := svc.CountUnread(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// Marking another user's notification must not succeed.
	err = svc.MarkRead(context.Background(), ownerID, repo.rows[2].ID)
	assert.Error(t, err)

	require.NoError(t, svc.MarkRead(context.Background(), ownerID, repo.rows[0].ID))
	unread, err := svc.ListForUser(context.Background(), ownerID, true, 10, 0)
	require.NoError(t, err)
	assert.Len(t, unread, 1)

	require.NoError(t, svc.MarkAllRead(context.Background(), ownerID))
	count, err = svc.CountUnread(context.Background(), ownerID)
	require.NoError(t, err)
	assert.Zero(t, count)
}
