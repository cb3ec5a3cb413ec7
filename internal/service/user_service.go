package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/panchayat-portal/internal/auth"
	"github.com/spec-kit/panchayat-portal/internal/domain"
	"github.com/spec-kit/panchayat-portal/internal/repository"
	apperrors "github.com/spec-kit/panchayat-portal/pkg/util"
)

// UserService covers profile updates and officer user management.
type UserService struct {
	users      repository.UserRepository
	bcryptCost int
}

// NewUserService builds the service.
func NewUserService(users repository.UserRepository, bcryptCost int) *UserService {
	return &UserService{users: users, bcryptCost: bcryptCost}
}

// ProfileInput describes self-service profile updates.
type ProfileInput struct {
	Name        *string
	Preferences *domain.NotificationPreferences
}

// CreateUserInput describes officer-created accounts.
type CreateUserInput struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department *string
	Position   *string
	EmployeeID *string
}

// ManageUserInput describes officer updates to an existing account.
type ManageUserInput struct {
	Name       *string
	Role       *string
	Status     *domain.UserStatus
	Department *string
	Position   *string
	EmployeeID *string
}

// UpdateProfile applies self-service changes to the caller's account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, input ProfileInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Preferences != nil {
		user.Preferences = *input.Preferences
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// CreateUser creates a staff or officer account. The role must normalize
// to a known class; citizens register themselves.
func (s *UserService) CreateUser(ctx context.Context, input CreateUserInput) (*domain.User, error) {
	role, ok := domain.ParseRole(input.Role)
	if !ok {
		return nil, apperrors.NewValidationError("unrecognized role", map[string]any{"role": input.Role})
	}
	if role == domain.RoleCitizen {
		return nil, apperrors.NewValidationError("citizens register through /auth/register", nil)
	}

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.MapError(err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		Status:       domain.UserStatusActive,
		Department:   input.Department,
		Position:     input.Position,
		EmployeeID:   input.EmployeeID,
		Preferences: domain.NotificationPreferences{
			EmailEnabled:       true,
			ApplicationUpdates: true,
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ManageUser applies officer updates to an account.
func (s *UserService) ManageUser(ctx context.Context, userID string, input ManageUserInput) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return nil, apperrors.MapError(err)
	}
	if input.Role != nil {
		if _, ok := domain.ParseRole(*input.Role); !ok {
			return nil, apperrors.NewValidationError("unrecognized role", map[string]any{"role": *input.Role})
		}
		user.Role = *input.Role
	}
	if input.Name != nil {
		user.Name = *input.Name
	}
	if input.Status != nil {
		user.Status = *input.Status
	}
	if input.Department != nil {
		user.Department = input.Department
	}
	if input.Position != nil {
		user.Position = input.Position
	}
	if input.EmployeeID != nil {
		user.EmployeeID = input.EmployeeID
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, apperrors.MapError(err)
	}
	return user, nil
}

// ListUsers returns paginated accounts for officer screens.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]domain.User, error) {
	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return users, nil
}

// DeleteUser removes an account.
func (s *UserService) DeleteUser(ctx context.Context, userID string) error {
	if err := s.users.Delete(ctx, userID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("user", map[string]any{"user_id": userID})
		}
		return apperrors.MapError(err)
	}
	return nil
}
