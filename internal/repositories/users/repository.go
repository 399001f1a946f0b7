package users

import (
	"context"

	"peerchat/internal/models"
)

type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByPhone(ctx context.Context, phoneNo uint64) (*models.User, error)
}
