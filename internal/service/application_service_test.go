package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/authz"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/events"
	"github.com/spec-kit/panchayat-portal/internal/repository"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

type fakeApplicationRepo struct {
	apps map[string]*domain.Application
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: map[string]*domain.Application{}}
}

func (f *fakeApplicationRepo) Create(_ context.Context, app *domain.Application) error {
	if app.ID == "" {
		app.ID = uuid.NewString()
	}
	app.SubmittedAt = time.Now()
	app.UpdatedAt = app.SubmittedAt
	clone := *app
	f.apps[app.ID] = &clone
	return nil
}

func (f *fakeApplicationRepo) Update(_ context.Context, app *domain.Application) error {
	if _, ok := f.apps[app.ID]; !ok {
		return pgx.ErrNoRows
	}
	app.UpdatedAt = time.Now()
	clone := *app
	f.apps[app.ID] = &clone
	return nil
}

func (f *fakeApplicationRepo) GetByID(_ context.Context, id string) (*domain.Application, error) {
	app, ok := f.apps[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *app
	return &clone, nil
}

func (f *fakeApplicationRepo) GetByReferenceNo(_ context.Context, ref string) (*domain.Application, error) {
	for _, app := range f.apps {
		if app.ReferenceNo == ref {
			clone := *app
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeApplicationRepo) ListWithFilter(_ context.Context, filter repository.ApplicationFilter) ([]domain.Application, error) {
	var out []domain.Application
	for _, app := range f.apps {
		if filter.ApplicantID != nil && app.ApplicantID != *filter.ApplicantID {
			continue
		}
		if filter.AssigneeID != nil && (app.AssigneeID == nil || *app.AssigneeID != *filter.AssigneeID) {
			continue
		}
		out = append(out, *app)
	}
	return out, nil
}

func (f *fakeApplicationRepo) CountByStatus(_ context.Context) (map[domain.ApplicationStatus]int64, error) {
	counts := map[domain.ApplicationStatus]int64{}
	for _, app := range f.apps {
		counts[app.Status]++
	}
	return counts, nil
}

type fakeServiceRepo struct {
	services map[string]*domain.Service
}

func newFakeServiceRepo() *fakeServiceRepo {
	return &fakeServiceRepo{services: map[string]*domain.Service{}}
}

func (f *fakeServiceRepo) Create(_ context.Context, svc *domain.Service) error {
	if svc.ID == "" {
		svc.ID = uuid.NewString()
	}
	clone := *svc
	f.services[svc.ID] = &clone
	return nil
}

func (f *fakeServiceRepo) Update(_ context.Context, svc *domain.Service) error {
	clone := *svc
	f.services[svc.ID] = &clone
	return nil
}

func (f *fakeServiceRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.services[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.services, id)
	return nil
}

func (f *fakeServiceRepo) GetByID(_ context.Context, id string) (*domain.Service, error) {
	svc, ok := f.services[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *svc
	return &clone, nil
}

func (f *fakeServiceRepo) List(_ context.Context, activeOnly bool) ([]domain.Service, error) {
	var out []domain.Service
	for _, svc := range f.services {
		if activeOnly && !svc.IsActive {
			continue
		}
		out = append(out, *svc)
	}
	return out, nil
}

func (f *fakeServiceRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.services)), nil
}

type fakeUserRepo struct {
	users map[string]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*domain.User{}}
}

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Update(_ context.Context, user *domain.User) error {
	clone := *user
	f.users[user.ID] = &clone
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id string) error {
	if _, ok := f.users[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.users, id)
	return nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, _, _ int) ([]domain.User, error) {
	var out []domain.User
	for _, user := range f.users {
		out = append(out, *user)
	}
	return out, nil
}

func (f *fakeUserRepo) CountByRole(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, user := range f.users {
		counts[user.Role]++
	}
	return counts, nil
}

type fakeHistoryRepo struct {
	entries []domain.ApplicationHistory
}

func (f *fakeHistoryRepo) Create(_ context.Context, history *domain.ApplicationHistory) error {
	history.ID = uuid.NewString()
	history.CreatedAt = time.Now()
	f.entries = append(f.entries, *history)
	return nil
}

func (f *fakeHistoryRepo) ListByApplication(_ context.Context, applicationID string) ([]domain.ApplicationHistory, error) {
	var out []domain.ApplicationHistory
	for _, entry := range f.entries {
		if entry.ApplicationID == applicationID {
			out = append(out, entry)
		}
	}
	return out, nil
}

type fixture struct {
	service   *ApplicationService
	apps      *fakeApplicationRepo
	services  *fakeServiceRepo
	users     *fakeUserRepo
	history   *fakeHistoryRepo
	events    *[]events.Event
	citizen   *domain.User
	staff     *domain.User
	officer   *domain.User
	birthCert *domain.Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	apps := newFakeApplicationRepo()
	services := newFakeServiceRepo()
	users := newFakeUserRepo()
	history := &fakeHistoryRepo{}

	dispatcher := events.NewInMemoryDispatcher()
	var published []events.Event
	for _, eventType := range []events.EventType{
		events.EventApplicationSubmitted,
		events.EventApplicationStatusChanged,
		events.EventApplicationAssigned,
	} {
		dispatcher.Subscribe(eventType, func(_ context.Context, event events.Event) error {
			published = append(published, event)
			return nil
		})
	}

	citizen := &domain.User{Name: "Asha Kumari", Email: "asha@example.com", Role: "citizen", Status: domain.UserStatusActive}
	staff := &domain.User{Name: "Ravi Menon", Email: "ravi@panchayat.gov.example", Role: "staff", Status: domain.UserStatusActive}
	officer := &domain.User{Name: "Officer Rao", Email: "rao@panchayat.gov.example", Role: "officer", Status: domain.UserStatusActive}
	for _, user := range []*domain.User{citizen, staff, officer} {
		require.NoError(t, users.Create(context.Background(), user))
	}

	birthCert := &domain.Service{Name: "Birth Certificate", IsActive: true}
	require.NoError(t, services.Create(context.Background(), birthCert))

	svc := NewApplicationService(ApplicationDependencies{
		ApplicationRepo: apps,
		ServiceRepo:     services,
		UserRepo:        users,
		HistoryRepo:     history,
		Dispatcher:      dispatcher,
		Logger:          zap.NewNop(),
	})

	return &fixture{
		service:   svc,
		apps:      apps,
		services:  services,
		users:     users,
		history:   history,
		events:    &published,
		citizen:   citizen,
		staff:     staff,
		officer:   officer,
		birthCert: birthCert,
	}
}

func (f *fixture) submit(t *testing.T) *domain.Application {
	t.Helper()
	app, err := f.service.Submit(context.Background(), f.citizen, f.birthCert.ID, domain.FormData{"child_name": "Meera"})
	require.NoError(t, err)
	return app
}

func (f *fixture) assign(t *testing.T, app *domain.Application) {
	t.Helper()
	_, err := f.service.Update(context.Background(), domain.RoleOfficer, f.officer.ID, app.ID, authz.Patch{AssigneeID: &f.staff.ID})
	require.NoError(t, err)
}

func TestSubmitCreatesPendingApplication(t *testing.T) {
	f := newFixture(t)

	app := f.submit(t)

	assert.Equal(t, domain.ApplicationStatusPending, app.Status)
	assert.Equal(t, f.citizen.ID, app.ApplicantID)
	assert.Regexp(t, `^APP-[0-9A-F]{8}$`, app.ReferenceNo)
	assert.Nil(t, app.ProcessedAt)

	require.Len(t, *f.events, 1)
	assert.Equal(t, events.EventApplicationSubmitted, (*f.events)[0].Type)
}

func TestSubmitRejectsInactiveService(t *testing.T) {
	f := newFixture(t)
	f.birthCert.IsActive = false
	require.NoError(t, f.services.Update(context.Background(), f.birthCert))

	_, err := f.service.Submit(context.Background(), f.citizen, f.birthCert.ID, nil)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestSubmitUnknownServiceIsNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Submit(context.Background(), f.citizen, uuid.NewString(), nil)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestGetEnforcesReadRules(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	_, err := f.service.Get(context.Background(), domain.RoleCitizen, f.citizen.ID, app.ID)
	assert.NoError(t, err)

	otherCitizen := &domain.User{Name: "Binod", Email: "binod@example.com", Role: "citizen", Status: domain.UserStatusActive}
	require.NoError(t, f.users.Create(context.Background(), otherCitizen))
	_, err = f.service.Get(context.Background(), domain.RoleCitizen, otherCitizen.ID, app.ID)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	// Staff cannot read until assigned.
	_, err = f.service.Get(context.Background(), domain.RoleStaff, f.staff.ID, app.ID)
	require.Error(t, err)
	assert.Equal(t, "UNAUTHORIZED", apperrors.ToDomainError(err).Code)

	f.assign(t, app)
	_, err = f.service.Get(context.Background(), domain.RoleStaff, f.staff.ID, app.ID)
	assert.NoError(t, err)

	_, err = f.service.Get(context.Background(), domain.RoleOfficer, f.officer.ID, app.ID)
	assert.NoError(t, err)
}

func TestGetMissingApplication(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Get(context.Background(), domain.RoleOfficer, f.officer.ID, uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestGetSubstitutesPlaceholderApplicant(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	require.NoError(t, f.users.Delete(context.Background(), f.citizen.ID))

	detail, err := f.service.Get(context.Background(), domain.RoleOfficer, f.officer.ID, app.ID)
	require.NoError(t, err)
	assert.Equal(t, "Unknown applicant", detail.Applicant.Name)
	assert.Equal(t, f.citizen.ID, detail.Applicant.ID)
}

func TestStaffApprovesAssignedApplication(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	f.assign(t, app)

	remarks := "documents verified"
	status := domain.ApplicationStatusApproved
	updated, err := f.service.Update(context.Background(), domain.RoleStaff, f.staff.ID, app.ID, authz.Patch{
		Status:  &status,
		Remarks: &remarks,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.ApplicationStatusApproved, updated.Status)
	assert.Equal(t, remarks, *updated.Remarks)
	require.NotNil(t, updated.ProcessedAt)

	// Persisted, audited, and announced.
	stored, err := f.apps.GetByID(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.ApplicationStatusApproved, stored.Status)

	history, err := f.history.ListByApplication(context.Background(), app.ID)
	require.NoError(t, err)
	var statusEntries int
	for _, entry := range history {
		if entry.ChangeType == domain.ChangeTypeStatus {
			statusEntries++
		}
	}
	assert.Equal(t, 1, statusEntries)

	last := (*f.events)[len(*f.events)-1]
	assert.Equal(t, events.EventApplicationStatusChanged, last.Type)
	payload, ok := last.Payload.(events.ApplicationStatusChangedPayload)
	require.True(t, ok)
	assert.Equal(t, domain.ApplicationStatusPending, payload.OldStatus)
	assert.Equal(t, domain.ApplicationStatusApproved, payload.NewStatus)
}

func TestUpdateSameStatusIsIdempotent(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	f.assign(t, app)

	status := domain.ApplicationStatusApproved
	first, err := f.service.Update(context.Background(), domain.RoleStaff, f.staff.ID, app.ID, authz.Patch{Status: &status})
	require.NoError(t, err)
	firstStamp := *first.ProcessedAt

	eventsBefore := len(*f.events)
	second, err := f.service.Update(context.Background(), domain.RoleStaff, f.staff.ID, app.ID, authz.Patch{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, firstStamp, *second.ProcessedAt)
	assert.Len(t, *f.events, eventsBefore)
}

func TestUpdateRejectsTerminalTransition(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)
	f.assign(t, app)

	rejected := domain.ApplicationStatusRejected
	_, err := f.service.Update(context.Background(), domain.RoleStaff, f.staff.ID, app.ID, authz.Patch{Status: &rejected})
	require.NoError(t, err)

	approved := domain.ApplicationStatusApproved
	_, err = f.service.Update(context.Background(), domain.RoleOfficer, f.officer.ID, app.ID, authz.Patch{Status: &approved})
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", apperrors.ToDomainError(err).Code)
}

func TestOfficerReassignValidatesAssignee(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	// Citizens cannot be assignees.
	_, err := f.service.Update(context.Background(), domain.RoleOfficer, f.officer.ID, app.ID, authz.Patch{AssigneeID: &f.citizen.ID})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	missing := uuid.NewString()
	_, err = f.service.Update(context.Background(), domain.RoleOfficer, f.officer.ID, app.ID, authz.Patch{AssigneeID: &missing})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	updated, err := f.service.Update(context.Background(), domain.RoleOfficer, f.officer.ID, app.ID, authz.Patch{AssigneeID: &f.staff.ID})
	require.NoError(t, err)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, f.staff.ID, *updated.AssigneeID)

	last := (*f.events)[len(*f.events)-1]
	assert.Equal(t, events.EventApplicationAssigned, last.Type)
}

func TestCitizenEditsFormDataOnlyWhilePending(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	updated, err := f.service.Update(context.Background(), domain.RoleCitizen, f.citizen.ID, app.ID, authz.Patch{
		FormData: domain.FormData{"child_name": "Meera", "ward": "12"},
	})
	require.NoError(t, err)
	assert.Equal(t, "12", updated.FormData["ward"])

	f.assign(t, app)
	inProgress := domain.ApplicationStatusInProgress
	_, err = f.service.Update(context.Background(), domain.RoleStaff, f.staff.ID, app.ID, authz.Patch{Status: &inProgress})
	require.NoError(t, err)

	_, err = f.service.Update(context.Background(), domain.RoleCitizen, f.citizen.ID, app.ID, authz.Patch{
		FormData: domain.FormData{"ward": "13"},
	})
	require.Error(t, err)
	assert.Equal(t, "INVALID_STATE", apperrors.ToDomainError(err).Code)
}

func TestListScopesByRole(t *testing.T) {
	f := newFixture(t)
	app := f.submit(t)

	otherCitizen := &domain.User{Name: "Binod", Email: "binod@example.com", Role: "citizen", Status: domain.UserStatusActive}
	require.NoError(t, f.users.Create(context.Background(), otherCitizen))
	_, err := f.service.Submit(context.Background(), otherCitizen, f.birthCert.ID, nil)
	require.NoError(t, err)

	f.assign(t, app)

	mine, err := f.service.List(context.Background(), domain.RoleCitizen, f.citizen.ID, ApplicationListFilter{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, app.ID, mine[0].ID)

	assigned, err := f.service.List(context.Background(), domain.RoleStaff, f.staff.ID, ApplicationListFilter{})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, app.ID, assigned[0].ID)

	everything, err := f.service.List(context.Background(), domain.RoleOfficer, f.officer.ID, ApplicationListFilter{})
	require.NoError(t, err)
	assert.Len(t, everything, 2)
}
