package settlement

import (
	"context"
	"fmt"
	"time"

	"venuehouse/internal/domain"
	"venuehouse/internal/pkg/proration"
)

// Service is the settlement ledger: an append-only record of money due
// and paid against a request, and the derivation of the aggregate deposit
// status from it. Totals are recomputed from the rows on every read; a
// cached balance that can drift from the all-or-nothing invariant is a
// correctness risk, not an optimization.
type Service struct {
	items LineItemRepository
}

func NewService(items LineItemRepository) *Service {
	return &Service{items: items}
}

var validLineTypes = map[domain.LineType]bool{
	domain.LineMoveInDeposit:   true,
	domain.LineSecurityDeposit: true,
	domain.LineReservationFee:  true,
	domain.LineRent:            true,
	domain.LineProratedRent:    true,
	domain.LineDamageDeduction: true,
	domain.LineRefund:          true,
}

// negativeAllowed marks the correction types recorded with negative
// amounts. Everything else must be non-negative.
var negativeAllowed = map[domain.LineType]bool{
	domain.LineDamageDeduction: true,
	domain.LineRefund:          true,
}

// ValidateLineItem normalizes an item before it is appended: type and
// sign checks, rounding, and a paid timestamp when money moved.
func ValidateLineItem(li *domain.SettlementLineItem) error {
	if li.RequestID == 0 {
		return fmt.Errorf("%w: request reference is required", ErrValidation)
	}
	if !validLineTypes[li.Type] {
		return fmt.Errorf("%w: unknown line type %q", ErrValidation, li.Type)
	}
	if !negativeAllowed[li.Type] && (li.AmountDue < 0 || li.AmountPaid < 0) {
		return fmt.Errorf("%w: negative amount on %s", ErrValidation, li.Type)
	}
	if li.AmountPaid != 0 && li.PaidAt == nil {
		now := time.Now().UTC()
		li.PaidAt = &now
	}
	li.AmountDue = proration.Round2(li.AmountDue)
	li.AmountPaid = proration.Round2(li.AmountPaid)
	return nil
}

// RecordLineItem validates and appends one immutable item. Corrections
// are new items; there is no mutation path.
func (s *Service) RecordLineItem(ctx context.Context, li *domain.SettlementLineItem) error {
	if err := ValidateLineItem(li); err != nil {
		return err
	}
	return s.items.Create(ctx, li)
}

// ListByRequest returns the request's items in insertion order.
func (s *Service) ListByRequest(ctx context.Context, requestID int64) ([]domain.SettlementLineItem, error) {
	return s.items.ListByRequest(ctx, requestID)
}

// DeriveDepositStatus computes the aggregate deposit state from the line
// items alone. It only ever returns requested, partial, or received:
// confirmed and refunded are administrative decisions, never derived.
func DeriveDepositStatus(items []domain.SettlementLineItem, profile domain.VariantProfile, terms domain.Terms) domain.DepositStatus {
	required := profile.RequiredLineTypes(terms)

	due := map[domain.LineType]float64{}
	paid := map[domain.LineType]float64{}
	stamped := map[domain.LineType]bool{}
	anyPayment := false

	for _, li := range items {
		due[li.Type] += li.AmountDue
		paid[li.Type] += li.AmountPaid
		if li.Paid() {
			stamped[li.Type] = true
			if li.AmountPaid > 0 {
				anyPayment = true
			}
		}
	}

	covered := true
	for _, t := range required {
		if !stamped[t] || paid[t] < due[t] {
			covered = false
			break
		}
	}

	if covered && anyPayment {
		return domain.DepositReceived
	}
	if anyPayment {
		return domain.DepositPartial
	}
	return domain.DepositRequested
}

// Summarize aggregates the request's items into totals and a per-type
// breakdown, recomputed from scratch.
func (s *Service) Summarize(ctx context.Context, requestID int64) (*domain.SettlementSummary, error) {
	items, err := s.items.ListByRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}

	sum := &domain.SettlementSummary{
		RequestID: requestID,
		ByType:    make(map[domain.LineType]domain.LineSum),
	}
	for _, li := range items {
		sum.TotalDue += li.AmountDue
		sum.TotalPaid += li.AmountPaid
		byType := sum.ByType[li.Type]
		byType.Due += li.AmountDue
		byType.Paid += li.AmountPaid
		sum.ByType[li.Type] = byType
	}
	sum.TotalDue = proration.Round2(sum.TotalDue)
	sum.TotalPaid = proration.Round2(sum.TotalPaid)
	sum.Outstanding = proration.Round2(sum.TotalDue - sum.TotalPaid)
	return sum, nil
}
