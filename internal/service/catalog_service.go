package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/repository"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

const activeServicesCacheKey = "catalog:active_services"

// CatalogService manages the service catalog. Officer-only writes; the
// active set, which every citizen browse hits, is cached in Redis and
// invalidated on writes.
type CatalogService struct {
	services repository.ServiceRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCatalogService constructs the service. cache may be nil, in which
// case every read goes to Postgres.
func NewCatalogService(services repository.ServiceRepository, cache *redis.Client, cacheTTL time.Duration, logger *zap.Logger) *CatalogService {
	return &CatalogService{
		services: services,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// ServiceInput describes catalog create/update payloads.
type ServiceInput struct {
	Name           string
	Description    string
	Requirements   []string
	ProcessingTime string
	Category       *string
	IsActive       bool
}

// ListActive returns active services, preferring the Redis cache. Cache
// errors degrade to a direct read.
func (s *CatalogService) ListActive(ctx context.Context) ([]domain.Service, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, activeServicesCacheKey).Bytes()
		if err == nil {
			var cached []domain.Service
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.Warn("catalog cache read failed", zap.Error(err))
		}
	}

	services, err := s.services.List(ctx, true)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(services); err == nil {
			if err := s.cache.Set(ctx, activeServicesCacheKey, raw, s.cacheTTL).Err(); err != nil {
				s.logger.Warn("catalog cache write failed", zap.Error(err))
			}
		}
	}
	return services, nil
}

// ListAll returns the full catalog including inactive services, for
// administrative visibility.
func (s *CatalogService) ListAll(ctx context.Context) ([]domain.Service, error) {
	services, err := s.services.List(ctx, false)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return services, nil
}

// Get returns a single service.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := s.services.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	return svc, nil
}

// Create adds a service to the catalog.
func (s *CatalogService) Create(ctx context.Context, input ServiceInput) (*domain.Service, error) {
	svc := &domain.Service{
		Name:           input.Name,
		Description:    input.Description,
		Requirements:   input.Requirements,
		ProcessingTime: input.ProcessingTime,
		Category:       input.Category,
		IsActive:       input.IsActive,
	}
	if err := s.services.Create(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCache(ctx)
	return svc, nil
}

// Update replaces catalog fields for a service.
func (s *CatalogService) Update(ctx context.Context, id string, input ServiceInput) (*domain.Service, error) {
	svc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	svc.Name = input.Name
	svc.Description = input.Description
	svc.Requirements = input.Requirements
	svc.ProcessingTime = input.ProcessingTime
	svc.Category = input.Category
	svc.IsActive = input.IsActive
	if err := s.services.Update(ctx, svc); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCache(ctx)
	return svc, nil
}

// Delete removes a service from the catalog.
func (s *CatalogService) Delete(ctx context.Context, id string) error {
	if err := s.services.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("service", map[string]any{"service_id": id})
		}
		return apperrors.MapError(err)
	}
	s.invalidateCache(ctx)
	return nil
}

func (s *CatalogService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, activeServicesCacheKey).Err(); err != nil {
		s.logger.Warn("catalog cache invalidation failed", zap.Error(err))
	}
}
