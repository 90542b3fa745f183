// Package users persists account records.
package users

import (
	"context"

	"github.com/expreshop/expreshop/internal/server/models"
)

// Repository is the UserStore consumed by the auth service. Lookups return
// common.ErrNotFound when no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, hashedPassword string) error
	Delete(ctx context.Context, username string) error
}
