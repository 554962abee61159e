package hold

import (
	"context"
	"time"

	"venuehouse/internal/domain"
)

// HoldRepository defines the persistence operations the manager needs.
type HoldRepository interface {
	Create(ctx context.Context, h *domain.ResourceHold) error
	GetByRequestID(ctx context.Context, requestID int64) (*domain.ResourceHold, error)
	DeleteByRequestID(ctx context.Context, requestID int64) (bool, error)
	Update(ctx context.Context, h *domain.ResourceHold) error
	CountActiveOverlapping(ctx context.Context, resourceID int64, start time.Time, end *time.Time) (int64, error)
}
