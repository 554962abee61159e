package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

type HoldRepository struct {
	db *gorm.DB
}

func NewHoldRepository(db *gorm.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

type resourceHoldModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	RequestID   int64      `gorm:"column:request_id;uniqueIndex"`
	RequesterID int64      `gorm:"column:requester_id"`
	ResourceID  int64      `gorm:"column:resource_id;index"`
	Kind        string     `gorm:"column:kind"`
	StartDate   time.Time  `gorm:"column:start_date"`
	EndDate     *time.Time `gorm:"column:end_date"`

	Rate            float64 `gorm:"column:rate"`
	MoveInDeposit   float64 `gorm:"column:move_in_deposit"`
	SecurityDeposit float64 `gorm:"column:security_deposit"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (resourceHoldModel) TableName() string { return "resource_holds" }

type holdResourceLinkModel struct {
	ID         int64     `gorm:"column:id;primaryKey"`
	HoldID     int64     `gorm:"column:hold_id;index"`
	ResourceID int64     `gorm:"column:resource_id;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (holdResourceLinkModel) TableName() string { return "hold_resource_links" }

func toDomainHold(m resourceHoldModel) *domain.ResourceHold {
	return &domain.ResourceHold{
		ID:              m.ID,
		RequestID:       m.RequestID,
		RequesterID:     m.RequesterID,
		ResourceID:      m.ResourceID,
		Kind:            domain.HoldKind(m.Kind),
		StartDate:       m.StartDate,
		EndDate:         m.EndDate,
		Rate:            m.Rate,
		MoveInDeposit:   m.MoveInDeposit,
		SecurityDeposit: m.SecurityDeposit,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

func toHoldModel(h *domain.ResourceHold) resourceHoldModel {
	return resourceHoldModel{
		ID:              h.ID,
		RequestID:       h.RequestID,
		RequesterID:     h.RequesterID,
		ResourceID:      h.ResourceID,
		Kind:            string(h.Kind),
		StartDate:       h.StartDate,
		EndDate:         h.EndDate,
		Rate:            h.Rate,
		MoveInDeposit:   h.MoveInDeposit,
		SecurityDeposit: h.SecurityDeposit,
		CreatedAt:       h.CreatedAt,
		UpdatedAt:       h.UpdatedAt,
	}
}

// Create inserts the hold and its resource link in one transaction.
func (r *HoldRepository) Create(ctx context.Context, h *domain.ResourceHold) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		m := toHoldModel(h)
		if err := tx.Create(&m).Error; err != nil {
			return err
		}
		link := holdResourceLinkModel{HoldID: m.ID, ResourceID: m.ResourceID}
		if err := tx.Create(&link).Error; err != nil {
			return err
		}
		*h = *toDomainHold(m)
		return nil
	})
}

func (r *HoldRepository) GetByRequestID(ctx context.Context, requestID int64) (*domain.ResourceHold, error) {
	var m resourceHoldModel
	tx := r.db.WithContext(ctx).Where("request_id = ?", requestID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainHold(m), nil
}

// DeleteByRequestID removes the hold and its links together. Returns
// false without error when no hold exists, so callers stay idempotent.
func (r *HoldRepository) DeleteByRequestID(ctx context.Context, requestID int64) (bool, error) {
	deleted := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m resourceHoldModel
		if err := tx.Where("request_id = ?", requestID).First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}
		if err := tx.Where("hold_id = ?", m.ID).Delete(&holdResourceLinkModel{}).Error; err != nil {
			return err
		}
		if err := tx.Delete(&resourceHoldModel{}, m.ID).Error; err != nil {
			return err
		}
		deleted = true
		return nil
	})
	return deleted, err
}

// Update rewrites the hold row in place, preserving its identity.
func (r *HoldRepository) Update(ctx context.Context, h *domain.ResourceHold) error {
	m := toHoldModel(h)
	m.UpdatedAt = time.Now().UTC()
	tx := r.db.WithContext(ctx).
		Model(&resourceHoldModel{}).
		Where("id = ?", m.ID).
		Select("kind", "start_date", "end_date", "rate", "move_in_deposit", "security_deposit", "updated_at").
		Updates(&m)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	h.UpdatedAt = m.UpdatedAt
	return nil
}

// CountActiveOverlapping reports active (non-prospect) holds on the
// resource whose span intersects [start, end). A nil end is open-ended.
func (r *HoldRepository) CountActiveOverlapping(ctx context.Context, resourceID int64, start time.Time, end *time.Time) (int64, error) {
	var cnt int64
	q := r.db.WithContext(ctx).
		Model(&resourceHoldModel{}).
		Where("resource_id = ? AND kind = ?", resourceID, string(domain.HoldActive)).
		Where("end_date IS NULL OR end_date > ?", start)
	if end != nil {
		q = q.Where("start_date < ?", *end)
	}
	if tx := q.Count(&cnt); tx.Error != nil {
		return 0, tx.Error
	}
	return cnt, nil
}

// ListByResource returns every hold on a resource, prospect and active.
func (r *HoldRepository) ListByResource(ctx context.Context, resourceID int64) ([]domain.ResourceHold, error) {
	var rows []resourceHoldModel
	tx := r.db.WithContext(ctx).Where("resource_id = ?", resourceID).Order("start_date ASC").Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.ResourceHold, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainHold(m))
	}
	return out, nil
}
