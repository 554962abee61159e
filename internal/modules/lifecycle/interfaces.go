package lifecycle

import (
	"context"
	"time"

	"venuehouse/internal/domain"
	"venuehouse/internal/events"
	"venuehouse/internal/repository"
)

// RequestRepository defines the persistence operations the state machine
// needs. Status writes are compare-and-set; the repository surfaces
// repository.ErrStaleVersion on a lost race.
type RequestRepository interface {
	Create(ctx context.Context, req *domain.BookingRequest) error
	GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error)
	List(ctx context.Context, f repository.RequestFilters) ([]domain.BookingRequest, error)
	UpdateCAS(ctx context.Context, req *domain.BookingRequest) error
	AppendLineItemCAS(ctx context.Context, req *domain.BookingRequest, item *domain.SettlementLineItem) error
}

// HoldManager is the provisional-hold side of a transition.
type HoldManager interface {
	CreateHold(ctx context.Context, requestID, requesterID, resourceID int64, startDate time.Time, termMonths *int) (*domain.ResourceHold, error)
	DeleteHold(ctx context.Context, requestID int64) (bool, error)
	GetHold(ctx context.Context, requestID int64) (*domain.ResourceHold, error)
	RefreshDates(ctx context.Context, requestID int64, start time.Time, end *time.Time) (bool, error)
	UpgradeHold(ctx context.Context, requestID, requesterID, resourceID int64, terms domain.Terms) (*domain.ResourceHold, error)
}

// Ledger reads the settlement line items the deposit status derives from.
type Ledger interface {
	ListByRequest(ctx context.Context, requestID int64) ([]domain.SettlementLineItem, error)
}

// EventPublisher receives outbound notices after a transition commits.
// Publishing never blocks and its outcome is never reported back.
type EventPublisher interface {
	Publish(e events.Event)
}
