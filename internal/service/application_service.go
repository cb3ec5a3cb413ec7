package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/authz"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/events"
	"github.com/spec-kit/panchayat-portal/internal/repository"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

// ApplicationService coordinates the application workflow.
type ApplicationService struct {
	applications repository.ApplicationRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
	history      repository.ApplicationHistoryRepository
	dispatcher   events.Dispatcher
	logger       *zap.Logger
}

// ApplicationDependencies bundles repositories for the service.
type ApplicationDependencies struct {
	ApplicationRepo repository.ApplicationRepository
	ServiceRepo     repository.ServiceRepository
	UserRepo        repository.UserRepository
	HistoryRepo     repository.ApplicationHistoryRepository
	Dispatcher      events.Dispatcher
	Logger          *zap.Logger
}

// NewApplicationService constructs the service.
func NewApplicationService(deps ApplicationDependencies) *ApplicationService {
	return &ApplicationService{
		applications: deps.ApplicationRepo,
		services:     deps.ServiceRepo,
		users:        deps.UserRepo,
		history:      deps.HistoryRepo,
		dispatcher:   deps.Dispatcher,
		logger:       deps.Logger,
	}
}

// ApplicantSummary is the applicant projection embedded in responses.
type ApplicantSummary struct {
	ID    string
	Name  string
	Email string
}

// ApplicationDetail is an application with its applicant and audit trail.
type ApplicationDetail struct {
	Application *domain.Application
	Applicant   ApplicantSummary
	History     []domain.ApplicationHistory
}

// ApplicationListFilter describes listing parameters from the caller.
type ApplicationListFilter struct {
	Statuses  []domain.ApplicationStatus
	ServiceID *string
	Limit     int
	Offset    int
}

// Submit creates a pending application for an active service.
func (s *ApplicationService) Submit(ctx context.Context, applicant *domain.User, serviceID string, formData domain.FormData) (*domain.Application, error) {
	svc, err := s.services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": serviceID})
		}
		return nil, apperrors.MapError(err)
	}
	if !svc.IsActive {
		return nil, apperrors.NewValidationError("service is not accepting applications", map[string]any{"service_id": serviceID})
	}

	if formData == nil {
		formData = domain.FormData{}
	}
	app := &domain.Application{
		ReferenceNo: generateReferenceNo(),
		ServiceID:   svc.ID,
		ApplicantID: applicant.ID,
		Status:      domain.ApplicationStatusPending,
		FormData:    formData,
	}
	if err := s.applications.Create(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:          events.EventApplicationSubmitted,
		ApplicationID: app.ID,
		Actor:         events.Actor{ID: applicant.ID, Role: domain.RoleCitizen},
		Payload: events.ApplicationSubmittedPayload{
			ReferenceNo: app.ReferenceNo,
			ServiceID:   svc.ID,
			ServiceName: svc.Name,
			ApplicantID: applicant.ID,
		},
	})
	return app, nil
}

// Get returns the application with applicant details if the caller's role
// class permits reading it.
func (s *ApplicationService) Get(ctx context.Context, role domain.Role, callerID, applicationID string) (*ApplicationDetail, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", map[string]any{"application_id": applicationID})
		}
		return nil, apperrors.MapError(err)
	}
	if !authz.CanRead(role, callerID, app) {
		return nil, apperrors.NewUnauthorized("access denied")
	}

	detail := &ApplicationDetail{
		Application: app,
		Applicant:   s.applicantSummary(ctx, app.ApplicantID),
	}
	if role != domain.RoleCitizen {
		entries, err := s.history.ListByApplication(ctx, app.ID)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		detail.History = entries
	}
	return detail, nil
}

// List returns applications scoped to the caller's role class: citizens
// see their own, staff their assignments, officers everything.
func (s *ApplicationService) List(ctx context.Context, role domain.Role, callerID string, filter ApplicationListFilter) ([]domain.Application, error) {
	repoFilter := repository.ApplicationFilter{
		Statuses:  filter.Statuses,
		ServiceID: filter.ServiceID,
		Limit:     filter.Limit,
		Offset:    filter.Offset,
	}
	switch role {
	case domain.RoleCitizen:
		repoFilter.ApplicantID = &callerID
	case domain.RoleStaff:
		repoFilter.AssigneeID = &callerID
	case domain.RoleOfficer:
	default:
		return nil, apperrors.NewUnauthorized("unrecognized role")
	}
	apps, err := s.applications.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return apps, nil
}

// Update applies a field patch through the authorization state machine,
// persists the result, records audit entries and dispatches events for
// actual changes. Notification delivery is decoupled: a failing handler
// never rolls back the persisted write.
func (s *ApplicationService) Update(ctx context.Context, role domain.Role, callerID, applicationID string, patch authz.Patch) (*domain.Application, error) {
	app, err := s.applications.GetByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("application", map[string]any{"application_id": applicationID})
		}
		return nil, apperrors.MapError(err)
	}

	if patch.AssigneeID != nil {
		if err := s.validateAssignee(ctx, *patch.AssigneeID); err != nil {
			return nil, err
		}
	}

	change, err := authz.Apply(role, callerID, app, patch, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.applications.Update(ctx, app); err != nil {
		return nil, apperrors.MapError(err)
	}

	if change.StatusChanged {
		s.recordHistory(ctx, app.ID, callerID, role, domain.ChangeTypeStatus,
			map[string]any{"status": change.OldStatus},
			map[string]any{"status": app.Status, "remarks": app.Remarks})
		s.publishEvent(ctx, events.Event{
			Type:          events.EventApplicationStatusChanged,
			ApplicationID: app.ID,
			Actor:         events.Actor{ID: callerID, Role: role},
			Payload: events.ApplicationStatusChangedPayload{
				ReferenceNo: app.ReferenceNo,
				ApplicantID: app.ApplicantID,
				OldStatus:   change.OldStatus,
				NewStatus:   app.Status,
				Remarks:     app.Remarks,
			},
		})
	}
	if change.AssigneeChanged {
		s.recordHistory(ctx, app.ID, callerID, role, domain.ChangeTypeAssignee,
			map[string]any{"assignee_id": change.OldAssigneeID},
			map[string]any{"assignee_id": app.AssigneeID})
		s.publishEvent(ctx, events.Event{
			Type:          events.EventApplicationAssigned,
			ApplicationID: app.ID,
			Actor:         events.Actor{ID: callerID, Role: role},
			Payload: events.ApplicationAssignedPayload{
				ReferenceNo:   app.ReferenceNo,
				AssigneeID:    app.AssigneeID,
				OldAssigneeID: change.OldAssigneeID,
			},
		})
	}
	return app, nil
}

func (s *ApplicationService) validateAssignee(ctx context.Context, assigneeID string) error {
	assignee, err := s.users.GetByID(ctx, assigneeID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewValidationError("assignee not found", map[string]any{"assignee_id": assigneeID})
		}
		return apperrors.MapError(err)
	}
	role, ok := assignee.RoleClass()
	if !ok || role == domain.RoleCitizen {
		return apperrors.NewValidationError("assignee must be staff or officer", map[string]any{"assignee_id": assigneeID})
	}
	if assignee.Status != domain.UserStatusActive {
		return apperrors.NewValidationError("assignee is not active", map[string]any{"assignee_id": assigneeID})
	}
	return nil
}

// applicantSummary loads applicant details, substituting a placeholder
// when the row is missing. Seen in production data after account cleanup;
// logged as a data-quality condition rather than failing the read.
func (s *ApplicationService) applicantSummary(ctx context.Context, applicantID string) ApplicantSummary {
	user, err := s.users.GetByID(ctx, applicantID)
	if err != nil {
		s.logger.Warn("applicant record missing, substituting placeholder",
			zap.String("applicant_id", applicantID),
			zap.Error(err))
		return ApplicantSummary{ID: applicantID, Name: "Unknown applicant"}
	}
	return ApplicantSummary{ID: user.ID, Name: user.Name, Email: user.Email}
}

func (s *ApplicationService) recordHistory(ctx context.Context, applicationID, actorID string, role domain.Role, changeType domain.ApplicationChangeType, oldValue, newValue map[string]any) {
	if s.history == nil {
		return
	}
	actor := actorID
	entry := &domain.ApplicationHistory{
		ApplicationID: applicationID,
		ChangedByID:   &actor,
		ChangedByRole: role,
		ChangeType:    changeType,
		OldValue:      oldValue,
		NewValue:      newValue,
	}
	if err := s.history.Create(ctx, entry); err != nil {
		s.logger.Warn("failed to record history entry",
			zap.String("application_id", applicationID),
			zap.Error(err))
	}
}

func (s *ApplicationService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func generateReferenceNo() string {
	return "APP-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
