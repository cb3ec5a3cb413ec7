package domain

import "time"

// Service is a government service citizens can apply for.
type Service struct {
	ID             string
	Name           string
	Description    string
	Requirements   []string
	ProcessingTime string
	Category       *string
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
