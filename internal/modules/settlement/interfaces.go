package settlement

import (
	"context"

	"venuehouse/internal/domain"
)

// LineItemRepository is the append-only store for settlement line items.
type LineItemRepository interface {
	Create(ctx context.Context, li *domain.SettlementLineItem) error
	ListByRequest(ctx context.Context, requestID int64) ([]domain.SettlementLineItem, error)
}
