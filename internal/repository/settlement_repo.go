package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

type SettlementRepository struct {
	db *gorm.DB
}

func NewSettlementRepository(db *gorm.DB) *SettlementRepository {
	return &SettlementRepository{db: db}
}

type settlementLineItemModel struct {
	ID         int64      `gorm:"column:id;primaryKey"`
	RequestID  int64      `gorm:"column:request_id;index"`
	Type       string     `gorm:"column:line_type"`
	AmountDue  float64    `gorm:"column:amount_due"`
	AmountPaid float64    `gorm:"column:amount_paid"`
	PaidAt     *time.Time `gorm:"column:paid_at"`
	Method     *string    `gorm:"column:method"`
	TxnRef     *string    `gorm:"column:txn_ref"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
}

func (settlementLineItemModel) TableName() string { return "settlement_line_items" }

func toDomainLineItem(m settlementLineItemModel) *domain.SettlementLineItem {
	return &domain.SettlementLineItem{
		ID:         m.ID,
		RequestID:  m.RequestID,
		Type:       domain.LineType(m.Type),
		AmountDue:  m.AmountDue,
		AmountPaid: m.AmountPaid,
		PaidAt:     m.PaidAt,
		Method:     strOrEmpty(m.Method),
		TxnRef:     strOrEmpty(m.TxnRef),
		CreatedAt:  m.CreatedAt,
	}
}

func toLineItemModel(li *domain.SettlementLineItem) settlementLineItemModel {
	return settlementLineItemModel{
		ID:         li.ID,
		RequestID:  li.RequestID,
		Type:       string(li.Type),
		AmountDue:  li.AmountDue,
		AmountPaid: li.AmountPaid,
		PaidAt:     li.PaidAt,
		Method:     strOrNil(li.Method),
		TxnRef:     strOrNil(li.TxnRef),
		CreatedAt:  li.CreatedAt,
	}
}

// Create appends a line item. There is deliberately no update or delete:
// corrections are new rows with negative amounts.
func (r *SettlementRepository) Create(ctx context.Context, li *domain.SettlementLineItem) error {
	m := toLineItemModel(li)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*li = *toDomainLineItem(m)
	return nil
}

func (r *SettlementRepository) ListByRequest(ctx context.Context, requestID int64) ([]domain.SettlementLineItem, error) {
	var rows []settlementLineItemModel
	tx := r.db.WithContext(ctx).
		Where("request_id = ?", requestID).
		Order("created_at ASC, id ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.SettlementLineItem, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainLineItem(m))
	}
	return out, nil
}
