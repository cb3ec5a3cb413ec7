package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/domain"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

func newCatalog(t *testing.T) (*CatalogService, *fakeServiceRepo) {
	t.Helper()
	repo := newFakeServiceRepo()
	return NewCatalogService(repo, nil, 5*time.Minute, zap.NewNop()), repo
}

func TestListActiveFiltersInactive(t *testing.T) {
	catalog, repo := newCatalog(t)
	require.NoError(t, repo.Create(context.Background(), &domain.Service{Name: "Birth Certificate", IsActive: true}))
	require.NoError(t, repo.Create(context.Background(), &domain.Service{Name: "Trade License", IsActive: false}))

	active, err := catalog.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Birth Certificate", active[0].Name)

	all, err := catalog.ListAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestCatalogCRUD(t *testing.T) {
	catalog, _ := newCatalog(t)

	created, err := catalog.Create(context.Background(), ServiceInput{
		Name:           "Income Certificate",
		Description:    "Annual income certification",
		Requirements:   []string{"Ration card"},
		ProcessingTime: "10 working days",
		IsActive:       true,
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ID)

	updated, err := catalog.Update(context.Background(), created.ID, ServiceInput{
		Name:     "Income Certificate",
		IsActive: false,
	})
	require.NoError(t, err)
	assert.False(t, updated.IsActive)

	require.NoError(t, catalog.Delete(context.Background(), created.ID))

	_, err = catalog.Get(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestCatalogGetUnknownService(t *testing.T) {
	catalog, _ := newCatalog(t)
	_, err := catalog.Get(context.Background(), uuid.NewString())
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
