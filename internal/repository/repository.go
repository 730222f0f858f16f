package repository

import (
	"context"
	"errors"

	"github.com/Dan9191/auth-service/internal/models"
)

var (
	// ErrNotFound is returned when no user matches a lookup
	ErrNotFound = errors.New("user not found")

	// ErrDuplicate is returned when a create breaks the email or username uniqueness constraint
	ErrDuplicate = errors.New("user already exists")
)

// UserRepository is the credential store consumed by the auth service
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByUsername(ctx context.Context, username string) (*models.User, error)
	// Create assigns an id when the user has none and returns the stored record
	Create(ctx context.Context, user *models.User) (*models.User, error)
}
