package authz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/panchayat-portal/internal/domain"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

const (
	applicantID = "11111111-1111-1111-1111-111111111111"
	staffID     = "22222222-2222-2222-2222-222222222222"
	officerID   = "33333333-3333-3333-3333-333333333333"
	strangerID  = "44444444-4444-4444-4444-444444444444"
)

func pendingApplication() *domain.Application {
	assignee := staffID
	return &domain.Application{
		ID:          "55555555-5555-5555-5555-555555555555",
		ReferenceNo: "APP-AB12CD34",
		ApplicantID: applicantID,
		AssigneeID:  &assignee,
		Status:      domain.ApplicationStatusPending,
		FormData:    domain.FormData{"ward": "4"},
	}
}

func statusPtr(s domain.ApplicationStatus) *domain.ApplicationStatus { return &s }
func strPtr(s string) *string                                        { return &s }

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func TestCanRead(t *testing.T) {
	app := pendingApplication()

	cases := []struct {
		name     string
		role     domain.Role
		callerID string
		want     bool
	}{
		{"officer reads anything", domain.RoleOfficer, strangerID, true},
		{"staff reads assigned", domain.RoleStaff, staffID, true},
		{"staff denied unassigned", domain.RoleStaff, strangerID, false},
		{"citizen reads own", domain.RoleCitizen, applicantID, true},
		{"citizen denied other", domain.RoleCitizen, strangerID, false},
		{"unknown role denied", domain.Role("MANAGER"), officerID, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CanRead(tc.role, tc.callerID, app))
		})
	}

	t.Run("staff denied when unassigned", func(t *testing.T) {
		unassigned := pendingApplication()
		unassigned.AssigneeID = nil
		assert.False(t, CanRead(domain.RoleStaff, staffID, unassigned))
	})
}

func TestTransitions(t *testing.T) {
	cases := []struct {
		from  domain.ApplicationStatus
		to    domain.ApplicationStatus
		valid bool
	}{
		{domain.ApplicationStatusPending, domain.ApplicationStatusInProgress, true},
		{domain.ApplicationStatusPending, domain.ApplicationStatusApproved, true},
		{domain.ApplicationStatusPending, domain.ApplicationStatusRejected, true},
		{domain.ApplicationStatusInProgress, domain.ApplicationStatusApproved, true},
		{domain.ApplicationStatusInProgress, domain.ApplicationStatusRejected, true},
		{domain.ApplicationStatusInProgress, domain.ApplicationStatusPending, false},
		{domain.ApplicationStatusApproved, domain.ApplicationStatusRejected, false},
		{domain.ApplicationStatusApproved, domain.ApplicationStatusPending, false},
		{domain.ApplicationStatusRejected, domain.ApplicationStatusInProgress, false},
	}

	for _, tc := range cases {
		name := string(tc.from) + "_to_" + string(tc.to)
		t.Run(name, func(t *testing.T) {
			app := pendingApplication()
			app.Status = tc.from
			change, err := Apply(domain.RoleOfficer, officerID, app, Patch{Status: statusPtr(tc.to)}, time.Now())
			if tc.valid {
				require.NoError(t, err)
				assert.True(t, change.StatusChanged)
				assert.Equal(t, tc.from, change.OldStatus)
				assert.Equal(t, tc.to, app.Status)
			} else {
				assert.Equal(t, "INVALID_STATE", errorCode(t, err))
				assert.Equal(t, tc.from, app.Status)
			}
		})
	}
}

func TestApplySameStatusIsNoOp(t *testing.T) {
	app := pendingApplication()
	app.Status = domain.ApplicationStatusApproved
	stamp := time.Now().Add(-time.Hour)
	app.ProcessedAt = &stamp

	change, err := Apply(domain.RoleOfficer, officerID, app, Patch{Status: statusPtr(domain.ApplicationStatusApproved)}, time.Now())
	require.NoError(t, err)
	assert.False(t, change.StatusChanged)
	assert.Equal(t, stamp, *app.ProcessedAt)
}

func TestApplyStampsProcessedAtOnTerminal(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)

	app := pendingApplication()
	change, err := Apply(domain.RoleStaff, staffID, app, Patch{Status: statusPtr(domain.ApplicationStatusApproved)}, now)
	require.NoError(t, err)
	assert.True(t, change.StatusChanged)
	require.NotNil(t, app.ProcessedAt)
	assert.Equal(t, now, *app.ProcessedAt)

	// Moving to IN_PROGRESS must not stamp.
	app = pendingApplication()
	_, err = Apply(domain.RoleStaff, staffID, app, Patch{Status: statusPtr(domain.ApplicationStatusInProgress)}, now)
	require.NoError(t, err)
	assert.Nil(t, app.ProcessedAt)
}

func TestApplyPreservesExistingProcessedAt(t *testing.T) {
	earlier := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	app := pendingApplication()
	app.Status = domain.ApplicationStatusInProgress
	app.ProcessedAt = &earlier

	_, err := Apply(domain.RoleOfficer, officerID, app, Patch{Status: statusPtr(domain.ApplicationStatusRejected)}, time.Now())
	require.NoError(t, err)
	assert.Equal(t, earlier, *app.ProcessedAt)
}

func TestApplyCitizen(t *testing.T) {
	t.Run("edits form data while pending", func(t *testing.T) {
		app := pendingApplication()
		change, err := Apply(domain.RoleCitizen, applicantID, app, Patch{FormData: domain.FormData{"ward": "7"}}, time.Now())
		require.NoError(t, err)
		assert.False(t, change.StatusChanged)
		assert.Equal(t, "7", app.FormData["ward"])
	})

	t.Run("form data locked once in progress", func(t *testing.T) {
		app := pendingApplication()
		app.Status = domain.ApplicationStatusInProgress
		_, err := Apply(domain.RoleCitizen, applicantID, app, Patch{FormData: domain.FormData{"ward": "7"}}, time.Now())
		assert.Equal(t, "INVALID_STATE", errorCode(t, err))
		assert.Equal(t, "4", app.FormData["ward"])
	})

	t.Run("status change rejected", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleCitizen, applicantID, app, Patch{Status: statusPtr(domain.ApplicationStatusApproved)}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("remarks rejected", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleCitizen, applicantID, app, Patch{Remarks: strPtr("please hurry")}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("not the applicant", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleCitizen, strangerID, app, Patch{FormData: domain.FormData{"ward": "7"}}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})
}

func TestApplyStaff(t *testing.T) {
	t.Run("approves assigned application", func(t *testing.T) {
		app := pendingApplication()
		change, err := Apply(domain.RoleStaff, staffID, app, Patch{
			Status:  statusPtr(domain.ApplicationStatusApproved),
			Remarks: strPtr("verified documents"),
		}, time.Now())
		require.NoError(t, err)
		assert.True(t, change.StatusChanged)
		assert.Equal(t, domain.ApplicationStatusApproved, app.Status)
		assert.Equal(t, "verified documents", *app.Remarks)
		assert.NotNil(t, app.ProcessedAt)
	})

	t.Run("denied when not assignee", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleStaff, strangerID, app, Patch{Status: statusPtr(domain.ApplicationStatusApproved)}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("may not reassign", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleStaff, staffID, app, Patch{AssigneeID: strPtr(strangerID)}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("may not edit form data", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleStaff, staffID, app, Patch{FormData: domain.FormData{"ward": "9"}}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("may not reset to pending", func(t *testing.T) {
		app := pendingApplication()
		app.Status = domain.ApplicationStatusInProgress
		_, err := Apply(domain.RoleStaff, staffID, app, Patch{Status: statusPtr(domain.ApplicationStatusPending)}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})
}

func TestApplyOfficer(t *testing.T) {
	t.Run("reassigns application", func(t *testing.T) {
		app := pendingApplication()
		change, err := Apply(domain.RoleOfficer, officerID, app, Patch{AssigneeID: strPtr(strangerID)}, time.Now())
		require.NoError(t, err)
		assert.True(t, change.AssigneeChanged)
		assert.Equal(t, staffID, *change.OldAssigneeID)
		assert.Equal(t, strangerID, *app.AssigneeID)
	})

	t.Run("same assignee is no-op", func(t *testing.T) {
		app := pendingApplication()
		change, err := Apply(domain.RoleOfficer, officerID, app, Patch{AssigneeID: strPtr(staffID)}, time.Now())
		require.NoError(t, err)
		assert.False(t, change.AssigneeChanged)
	})

	t.Run("may not edit form data", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleOfficer, officerID, app, Patch{FormData: domain.FormData{"ward": "9"}}, time.Now())
		assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
	})

	t.Run("unknown status rejected", func(t *testing.T) {
		app := pendingApplication()
		_, err := Apply(domain.RoleOfficer, officerID, app, Patch{Status: statusPtr(domain.ApplicationStatus("ARCHIVED"))}, time.Now())
		assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
	})
}

func TestApplyUnknownRole(t *testing.T) {
	app := pendingApplication()
	_, err := Apply(domain.Role("MANAGER"), officerID, app, Patch{Status: statusPtr(domain.ApplicationStatusApproved)}, time.Now())
	assert.Equal(t, "UNAUTHORIZED", errorCode(t, err))
}
