package dto

import (
	"time"

	"github.com/spec-kit/panchayat-portal/internal/domain"
)

// UserResponse is the account projection returned by the API. The
// password hash never leaves the repository layer boundary.
type UserResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Email       string            `json:"email"`
	Role        string            `json:"role"`
	Status      domain.UserStatus `json:"status"`
	Department  *string           `json:"department,omitempty"`
	Position    *string           `json:"position,omitempty"`
	EmployeeID  *string           `json:"employee_id,omitempty"`
	Preferences PreferencesDTO    `json:"preferences"`
	CreatedAt   time.Time         `json:"created_at"`
}

// PreferencesDTO mirrors notification preferences.
type PreferencesDTO struct {
	EmailEnabled       bool `json:"email_enabled"`
	ApplicationUpdates bool `json:"application_updates"`
}

// UserFromDomain maps the entity to its response shape.
func UserFromDomain(user *domain.User) UserResponse {
	return UserResponse{
		ID:         user.ID,
		Name:       user.Name,
		Email:      user.Email,
		Role:       user.Role,
		Status:     user.Status,
		Department: user.Department,
		Position:   user.Position,
		EmployeeID: user.EmployeeID,
		Preferences: PreferencesDTO{
			EmailEnabled:       user.Preferences.EmailEnabled,
			ApplicationUpdates: user.Preferences.ApplicationUpdates,
		},
		CreatedAt: user.CreatedAt,
	}
}

// UpdateProfileRequest payload for self-service profile updates.
type UpdateProfileRequest struct {
	Name        *string         `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Preferences *PreferencesDTO `json:"preferences,omitempty"`
}

// CreateUserRequest payload for officer-created accounts.
type CreateUserRequest struct {
	Name       string  `json:"name" validate:"required,min=2,max=120"`
	Email      string  `json:"email" validate:"required,email"`
	Password   string  `json:"password" validate:"required,min=8"`
	Role       string  `json:"role" validate:"required"`
	Department *string `json:"department,omitempty"`
	Position   *string `json:"position,omitempty"`
	EmployeeID *string `json:"employee_id,omitempty"`
}

// ManageUserRequest payload for officer account updates.
type ManageUserRequest struct {
	Name       *string            `json:"name,omitempty" validate:"omitempty,min=2,max=120"`
	Role       *string            `json:"role,omitempty"`
	Status     *domain.UserStatus `json:"status,omitempty"`
	Department *string            `json:"department,omitempty"`
	Position   *string            `json:"position,omitempty"`
	EmployeeID *string            `json:"employee_id,omitempty"`
}
