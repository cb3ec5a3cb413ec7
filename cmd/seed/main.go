package main

import (
	"context"
	"errors"
	"log"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/panchayat-portal/internal/auth"
	"github.com/spec-kit/panchayat-portal/internal/config"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/observability"
	"github.com/spec-kit/panchayat-portal/internal/persistence"
	"github.com/spec-kit/panchayat-portal/internal/repository"
)

// Seeds the bootstrap officer account and a starter service catalog.
// Safe to run repeatedly: existing rows are left alone.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx := context.Background()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	pool := pg.PoolHandle()
	users := repository.NewUserRepository(pool)
	services := repository.NewServiceRepository(pool)

	seedOfficer(ctx, users, cfg.Auth.BcryptCost, logger)
	seedServices(ctx, services, logger)
}

func seedOfficer(ctx context.Context, users repository.UserRepository, bcryptCost int, logger *zap.Logger) {
	email := "officer@panchayat.gov.example"
	if _, err := users.GetByEmail(ctx, email); err == nil {
		logger.Info("officer account already present", zap.String("email", email))
		return
	} else if !errors.Is(err, pgx.ErrNoRows) {
		logger.Fatal("failed to check officer account", zap.Error(err))
	}

	hash, err := auth.HashPassword("ChangeMe!123", bcryptCost)
	if err != nil {
		logger.Fatal("failed to hash password", zap.Error(err))
	}

	department := "Administration"
	officer := &domain.User{
		Name:         "Panchayat Officer",
		Email:        email,
		PasswordHash: hash,
		Role:         "officer",
		Status:       domain.UserStatusActive,
		Department:   &department,
		Preferences: domain.NotificationPreferences{
			EmailEnabled:       true,
			ApplicationUpdates: true,
		},
	}
	if err := users.Create(ctx, officer); err != nil {
		logger.Fatal("failed to create officer account", zap.Error(err))
	}
	logger.Info("officer account created", zap.String("email", email))
}

func seedServices(ctx context.Context, services repository.ServiceRepository, logger *zap.Logger) {
	existing, err := services.Count(ctx)
	if err != nil {
		logger.Fatal("failed to count services", zap.Error(err))
	}
	if existing > 0 {
		logger.Info("service catalog already seeded", zap.Int64("count", existing))
		return
	}

	certificates := "Certificates"
	welfare := "Welfare"
	catalog := []domain.Service{
		{
			Name:           "Birth Certificate",
			Description:    "Issue of birth certificate for births registered within the panchayat.",
			Requirements:   []string{"Hospital discharge summary", "Parent ID proof", "Address proof"},
			ProcessingTime: "7 working days",
			Category:       &certificates,
			IsActive:       true,
		},
		{
			Name:           "Income Certificate",
			Description:    "Certificate of annual household income for scholarship and welfare eligibility.",
			Requirements:   []string{"Salary slip or income declaration", "Ration card", "Address proof"},
			ProcessingTime: "10 working days",
			Category:       &certificates,
			IsActive:       true,
		},
		{
			Name:           "Old Age Pension",
			Description:    "Monthly pension scheme for senior citizens residing in the panchayat.",
			Requirements:   []string{"Age proof", "Bank passbook", "Residence certificate"},
			ProcessingTime: "15 working days",
			Category:       &welfare,
			IsActive:       true,
		},
	}

	for i := range catalog {
		if err := services.Create(ctx, &catalog[i]); err != nil {
			logger.Fatal("failed to seed service", zap.String("name", catalog[i].Name), zap.Error(err))
		}
	}
	logger.Info("service catalog seeded", zap.Int("count", len(catalog)))
}
