package catalog

import (
	"context"

	"venuehouse/internal/domain"
)

type ResourceRepository interface {
	Create(ctx context.Context, res *domain.Resource) error
	GetByID(ctx context.Context, id int64) (*domain.Resource, error)
	List(ctx context.Context) ([]domain.Resource, error)
}

type HoldReader interface {
	ListByResource(ctx context.Context, resourceID int64) ([]domain.ResourceHold, error)
}
