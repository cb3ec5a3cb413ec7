package domain

import "time"

// UserStatus represents account lifecycle states.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// NotificationPreferences controls which channels a user receives.
type NotificationPreferences struct {
	EmailEnabled       bool
	ApplicationUpdates bool
}

// User is the domain model for every account on the portal. Citizens,
// staff and officers share one table; Role holds the raw stored string,
// which may be any historical alias and must go through ParseRole before
// any authorization decision.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         string
	Status       UserStatus
	Department   *string
	Position     *string
	EmployeeID   *string
	Preferences  NotificationPreferences
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// RoleClass resolves the stored role string to its canonical class.
func (u *User) RoleClass() (Role, bool) {
	return ParseRole(u.Role)
}
