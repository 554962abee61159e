package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

type ResourceRepository struct {
	db *gorm.DB
}

func NewResourceRepository(db *gorm.DB) *ResourceRepository {
	return &ResourceRepository{db: db}
}

type resourceModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	Kind        string    `gorm:"column:kind"`
	MonthlyRate float64   `gorm:"column:monthly_rate"`
	Active      bool      `gorm:"column:active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (resourceModel) TableName() string { return "resources" }

func toDomainResource(m resourceModel) *domain.Resource {
	return &domain.Resource{
		ID:          m.ID,
		Name:        m.Name,
		Kind:        domain.ResourceKind(m.Kind),
		MonthlyRate: m.MonthlyRate,
		Active:      m.Active,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *ResourceRepository) Create(ctx context.Context, res *domain.Resource) error {
	m := resourceModel{
		Name:        res.Name,
		Kind:        string(res.Kind),
		MonthlyRate: res.MonthlyRate,
		Active:      res.Active,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*res = *toDomainResource(m)
	return nil
}

func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*domain.Resource, error) {
	var m resourceModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainResource(m), nil
}

func (r *ResourceRepository) List(ctx context.Context) ([]domain.Resource, error) {
	var rows []resourceModel
	tx := r.db.WithContext(ctx).Order("name ASC").Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}
	out := make([]domain.Resource, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainResource(m))
	}
	return out, nil
}
