package service

import (
	"context"

	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/repository"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

// StatsService aggregates counts for the officer dashboard.
type StatsService struct {
	applications repository.ApplicationRepository
	services     repository.ServiceRepository
	users        repository.UserRepository
}

// NewStatsService builds the service.
func NewStatsService(applications repository.ApplicationRepository, services repository.ServiceRepository, users repository.UserRepository) *StatsService {
	return &StatsService{applications: applications, services: services, users: users}
}

// DashboardStats is the officer dashboard summary.
type DashboardStats struct {
	ApplicationsByStatus map[domain.ApplicationStatus]int64
	UsersByRole          map[domain.Role]int64
	ServiceCount         int64
}

// Dashboard collects counts across the portal. Raw role strings are
// normalized so historical aliases land in the right bucket; rows with an
// unparseable role are skipped.
func (s *StatsService) Dashboard(ctx context.Context) (*DashboardStats, error) {
	byStatus, err := s.applications.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	rawRoles, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	serviceCount, err := s.services.Count(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	byRole := make(map[domain.Role]int64)
	for raw, count := range rawRoles {
		if role, ok := domain.ParseRole(raw); ok {
			byRole[role] += count
		}
	}

	return &DashboardStats{
		ApplicationsByStatus: byStatus,
		UsersByRole:          byRole,
		ServiceCount:         serviceCount,
	}, nil
}
