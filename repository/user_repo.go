package repository

import (
	"context"

	"horseshipt/models"
)

// UserRepository stores marketplace accounts for both roles.
// Gets return (nil, nil) when no user matches.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.AppUser) error
	GetUserByEmail(ctx context.Context, email string) (*models.AppUser, error)
	GetUserByID(ctx context.Context, id string) (*models.AppUser, error)
}
