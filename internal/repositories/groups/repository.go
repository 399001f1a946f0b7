package groups

import (
	"context"

	"peerchat/internal/models"
)

type Repository interface {
	Create(ctx context.Context, group *models.Group) (*models.Group, error)

	// FindByName returns every group with the given name, each joined with
	// its owner's display name, in insertion order.
	FindByName(ctx context.Context, name string) ([]models.GroupWithOwner, error)
}
