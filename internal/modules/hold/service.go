package hold

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"venuehouse/internal/domain"
	"venuehouse/internal/logger"
)

// DefaultTermMonths is the provisional hold span when a request carries
// no explicit term.
const DefaultTermMonths = 6

// Manager owns the reversible resource hold tied 1:1 to a request.
type Manager struct {
	holds HoldRepository
}

func NewManager(holds HoldRepository) *Manager {
	return &Manager{holds: holds}
}

// CreateHold inserts a prospect hold for the request's desired resource
// and date. Overlap with an active booking is enforced by the store's
// exclusion constraint; a violation is logged and swallowed so the parent
// lifecycle operation is never aborted by it.
func (m *Manager) CreateHold(ctx context.Context, requestID, requesterID, resourceID int64, startDate time.Time, termMonths *int) (*domain.ResourceHold, error) {
	term := DefaultTermMonths
	openEnded := false
	if termMonths != nil {
		if *termMonths <= 0 {
			openEnded = true
		} else {
			term = *termMonths
		}
	}

	h := &domain.ResourceHold{
		RequestID:   requestID,
		RequesterID: requesterID,
		ResourceID:  resourceID,
		Kind:        domain.HoldProspect,
		StartDate:   startDate,
	}
	if !openEnded {
		end := startDate.AddDate(0, term, 0)
		h.EndDate = &end
	}

	if cnt, err := m.holds.CountActiveOverlapping(ctx, resourceID, startDate, h.EndDate); err == nil && cnt > 0 {
		logger.Warn("prospect hold overlaps an active booking",
			"request_id", requestID, "resource_id", resourceID, "active_overlaps", cnt)
	}

	if err := m.holds.Create(ctx, h); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01") {
			logger.Warn("hold rejected by store constraint",
				"request_id", requestID, "resource_id", resourceID, "constraint", pgErr.ConstraintName)
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

// DeleteHold removes the request's hold and its resource links. Calling
// it without a hold present is a no-op.
func (m *Manager) DeleteHold(ctx context.Context, requestID int64) (bool, error) {
	return m.holds.DeleteByRequestID(ctx, requestID)
}

// GetHold returns the request's hold, or nil when none exists.
func (m *Manager) GetHold(ctx context.Context, requestID int64) (*domain.ResourceHold, error) {
	h, err := m.holds.GetByRequestID(ctx, requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return h, nil
}

// RefreshDates moves an existing hold to newly approved dates. Returns
// false when the request has no hold or the dates already match.
func (m *Manager) RefreshDates(ctx context.Context, requestID int64, start time.Time, end *time.Time) (bool, error) {
	h, err := m.GetHold(ctx, requestID)
	if err != nil || h == nil {
		return false, err
	}

	sameEnd := (h.EndDate == nil && end == nil) ||
		(h.EndDate != nil && end != nil && h.EndDate.Equal(*end))
	if h.StartDate.Equal(start) && sameEnd {
		return false, nil
	}

	h.StartDate = start
	h.EndDate = end
	if err := m.holds.Update(ctx, h); err != nil {
		return false, err
	}
	return true, nil
}

// UpgradeHold converts the existing prospect hold in place to the active
// assignment, or creates the assignment directly when no hold survived.
// Upgrading in place preserves the hold's identity for payment linkage
// and leaves no window where the resource appears unheld.
func (m *Manager) UpgradeHold(ctx context.Context, requestID, requesterID, resourceID int64, terms domain.Terms) (*domain.ResourceHold, error) {
	h, err := m.GetHold(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if h == nil {
		h = &domain.ResourceHold{
			RequestID:   requestID,
			RequesterID: requesterID,
			ResourceID:  resourceID,
			Kind:        domain.HoldActive,
		}
		applyFinalTerms(h, terms)
		if err := m.holds.Create(ctx, h); err != nil {
			return nil, err
		}
		return h, nil
	}

	h.Kind = domain.HoldActive
	applyFinalTerms(h, terms)
	if err := m.holds.Update(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func applyFinalTerms(h *domain.ResourceHold, terms domain.Terms) {
	if terms.StartDate != nil {
		h.StartDate = *terms.StartDate
	}
	h.EndDate = terms.EndDate
	h.Rate = terms.Rate
	h.MoveInDeposit = terms.MoveInDeposit
	h.SecurityDeposit = terms.SecurityDeposit
}
