// Package authz centralizes the portal's role-based access decisions. All
// handlers and services go through CanRead/Apply rather than comparing raw
// role strings so the rules cannot drift between endpoints.
package authz

import (
	"fmt"
	"time"

	"github.com/spec-kit/panchayat-portal/internal/domain"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

// CanRead reports whether the caller may view the application. Evaluated
// first match wins: officers see everything, staff see their assigned
// applications, citizens see their own.
func CanRead(role domain.Role, callerID string, app *domain.Application) bool {
	if app == nil {
		return false
	}
	switch role {
	case domain.RoleOfficer:
		return true
	case domain.RoleStaff:
		return app.AssigneeID != nil && *app.AssigneeID == callerID
	case domain.RoleCitizen:
		return app.ApplicantID == callerID
	}
	return false
}

// Patch is a requested field update on an application. Nil fields are
// untouched.
type Patch struct {
	Status     *domain.ApplicationStatus
	Remarks    *string
	AssigneeID *string
	FormData   domain.FormData
}

// Change reports what Apply actually modified, so callers know whether to
// record history and dispatch notifications.
type Change struct {
	StatusChanged   bool
	OldStatus       domain.ApplicationStatus
	AssigneeChanged bool
	OldAssigneeID   *string
}

var allowedTransitions = map[domain.ApplicationStatus][]domain.ApplicationStatus{
	domain.ApplicationStatusPending:    {domain.ApplicationStatusInProgress, domain.ApplicationStatusApproved, domain.ApplicationStatusRejected},
	domain.ApplicationStatusInProgress: {domain.ApplicationStatusApproved, domain.ApplicationStatusRejected},
	domain.ApplicationStatusApproved:   {},
	domain.ApplicationStatusRejected:   {},
}

func isValidTransition(current, next domain.ApplicationStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidStatus reports whether the value is a known application status.
func ValidStatus(s domain.ApplicationStatus) bool {
	_, ok := allowedTransitions[s]
	return ok
}

// staff may move an application forward but never back to PENDING.
var staffWritableStatuses = map[domain.ApplicationStatus]struct{}{
	domain.ApplicationStatusInProgress: {},
	domain.ApplicationStatusApproved:   {},
	domain.ApplicationStatusRejected:   {},
}

// Apply validates the patch against the caller's role class and the
// record's current state, then mutates app in place. Returned errors are
// DomainErrors from the portal taxonomy; on error the application is left
// unmodified.
func Apply(role domain.Role, callerID string, app *domain.Application, patch Patch, now time.Time) (Change, error) {
	var change Change
	if app == nil {
		return change, apperrors.NewNotFound("application", nil)
	}

	switch role {
	case domain.RoleCitizen:
		if patch.Status != nil || patch.Remarks != nil || patch.AssigneeID != nil {
			return change, apperrors.NewUnauthorized("citizens may only update form data")
		}
		if app.ApplicantID != callerID {
			return change, apperrors.NewUnauthorized("not the applicant")
		}
		if patch.FormData != nil {
			if app.Status != domain.ApplicationStatusPending {
				return change, apperrors.NewInvalidState("application is no longer pending")
			}
			app.FormData = patch.FormData
		}
		return change, nil

	case domain.RoleStaff:
		if app.AssigneeID == nil || *app.AssigneeID != callerID {
			return change, apperrors.NewUnauthorized("application not assigned to caller")
		}
		if patch.FormData != nil || patch.AssigneeID != nil {
			return change, apperrors.NewUnauthorized("staff may only update status and remarks")
		}
		if patch.Status != nil {
			if _, ok := staffWritableStatuses[*patch.Status]; !ok && *patch.Status != app.Status {
				return change, apperrors.NewUnauthorized("staff may not set this status")
			}
		}

	case domain.RoleOfficer:
		if patch.FormData != nil {
			return change, apperrors.NewUnauthorized("only the applicant may edit form data")
		}

	default:
		return change, apperrors.NewUnauthorized("unrecognized role")
	}

	// staff and officer share status/remarks/assignee application.
	if patch.Status != nil && *patch.Status != app.Status {
		next := *patch.Status
		if !ValidStatus(next) {
			return change, apperrors.NewValidationError("unknown status", map[string]any{"status": next})
		}
		if !isValidTransition(app.Status, next) {
			return change, apperrors.NewInvalidState(fmt.Sprintf("cannot transition from %s to %s", app.Status, next))
		}
		change.StatusChanged = true
		change.OldStatus = app.Status
		app.Status = next
		if next.IsTerminal() && app.ProcessedAt == nil {
			stamp := now
			app.ProcessedAt = &stamp
		}
	}
	if patch.Remarks != nil {
		app.Remarks = patch.Remarks
	}
	if patch.AssigneeID != nil && role == domain.RoleOfficer {
		if app.AssigneeID == nil || *app.AssigneeID != *patch.AssigneeID {
			change.AssigneeChanged = true
			change.OldAssigneeID = app.AssigneeID
			assignee := *patch.AssigneeID
			app.AssigneeID = &assignee
		}
	}
	return change, nil
}
