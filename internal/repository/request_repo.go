package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

// ErrStaleVersion signals that a compare-and-set write found a different
// version than the one read. Callers re-read and retry.
var ErrStaleVersion = errors.New("stale version")

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

type bookingRequestModel struct {
	ID          int64      `gorm:"column:id;primaryKey"`
	PublicID    string     `gorm:"column:public_id;uniqueIndex"`
	Kind        string     `gorm:"column:kind;index"`
	RequesterID int64      `gorm:"column:requester_id;index"`
	ResourceID  *int64     `gorm:"column:resource_id"`
	DesiredDate *time.Time `gorm:"column:desired_date"`
	TermMonths  *int       `gorm:"column:term_months"`

	RequestStatus   string `gorm:"column:request_status;index"`
	AgreementStatus string `gorm:"column:agreement_status"`
	DepositStatus   string `gorm:"column:deposit_status"`

	ApprovedRate       float64    `gorm:"column:approved_rate"`
	ApprovedStart      *time.Time `gorm:"column:approved_start"`
	ApprovedEnd        *time.Time `gorm:"column:approved_end"`
	MoveInDeposit      float64    `gorm:"column:move_in_deposit"`
	SecurityDeposit    float64    `gorm:"column:security_deposit"`
	ReservationDeposit float64    `gorm:"column:reservation_deposit"`

	AgreementDocRef *string    `gorm:"column:agreement_doc_ref"`
	Reviewer        *string    `gorm:"column:reviewer"`
	DecisionReason  *string    `gorm:"column:decision_reason"`
	RevisitDate     *time.Time `gorm:"column:revisit_date"`

	Archived bool `gorm:"column:archived"`
	Test     bool `gorm:"column:test"`

	ActivatedAt *time.Time `gorm:"column:activated_at"`
	Version     int64      `gorm:"column:version"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
}

func (bookingRequestModel) TableName() string { return "booking_requests" }

func strOrEmpty(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func strOrNil(s string) *string {
	if s == "" {
		return nil
	}
	v := s
	return &v
}

func toDomainRequest(m bookingRequestModel) *domain.BookingRequest {
	return &domain.BookingRequest{
		ID:          m.ID,
		PublicID:    m.PublicID,
		Kind:        domain.RequestKind(m.Kind),
		RequesterID: m.RequesterID,
		ResourceID:  m.ResourceID,
		DesiredDate: m.DesiredDate,
		TermMonths:  m.TermMonths,

		RequestStatus:   domain.RequestStatus(m.RequestStatus),
		AgreementStatus: domain.AgreementStatus(m.AgreementStatus),
		DepositStatus:   domain.DepositStatus(m.DepositStatus),

		Terms: domain.Terms{
			Rate:               m.ApprovedRate,
			StartDate:          m.ApprovedStart,
			EndDate:            m.ApprovedEnd,
			MoveInDeposit:      m.MoveInDeposit,
			SecurityDeposit:    m.SecurityDeposit,
			ReservationDeposit: m.ReservationDeposit,
		},
		AgreementDocRef: strOrEmpty(m.AgreementDocRef),

		Reviewer:       strOrEmpty(m.Reviewer),
		DecisionReason: strOrEmpty(m.DecisionReason),
		RevisitDate:    m.RevisitDate,

		Archived: m.Archived,
		Test:     m.Test,

		ActivatedAt: m.ActivatedAt,
		Version:     m.Version,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func toRequestModel(r *domain.BookingRequest) bookingRequestModel {
	return bookingRequestModel{
		ID:          r.ID,
		PublicID:    r.PublicID,
		Kind:        string(r.Kind),
		RequesterID: r.RequesterID,
		ResourceID:  r.ResourceID,
		DesiredDate: r.DesiredDate,
		TermMonths:  r.TermMonths,

		RequestStatus:   string(r.RequestStatus),
		AgreementStatus: string(r.AgreementStatus),
		DepositStatus:   string(r.DepositStatus),

		ApprovedRate:       r.Terms.Rate,
		ApprovedStart:      r.Terms.StartDate,
		ApprovedEnd:        r.Terms.EndDate,
		MoveInDeposit:      r.Terms.MoveInDeposit,
		SecurityDeposit:    r.Terms.SecurityDeposit,
		ReservationDeposit: r.Terms.ReservationDeposit,

		AgreementDocRef: strOrNil(r.AgreementDocRef),
		Reviewer:        strOrNil(r.Reviewer),
		DecisionReason:  strOrNil(r.DecisionReason),
		RevisitDate:     r.RevisitDate,

		Archived: r.Archived,
		Test:     r.Test,

		ActivatedAt: r.ActivatedAt,
		Version:     r.Version,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func (r *RequestRepository) Create(ctx context.Context, req *domain.BookingRequest) error {
	m := toRequestModel(req)
	m.Version = 1
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*req = *toDomainRequest(m)
	return nil
}

func (r *RequestRepository) GetByID(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	var m bookingRequestModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainRequest(m), nil
}

func (r *RequestRepository) GetByPublicID(ctx context.Context, publicID string) (*domain.BookingRequest, error) {
	var m bookingRequestModel
	tx := r.db.WithContext(ctx).Where("public_id = ?", publicID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainRequest(m), nil
}

// RequestFilters narrows List. Nil pointer fields are ignored.
type RequestFilters struct {
	Kind          *domain.RequestKind
	RequestStatus *domain.RequestStatus
	Archived      *bool
	Test          *bool
	Limit         int
	Offset        int
}

func (r *RequestRepository) List(ctx context.Context, f RequestFilters) ([]domain.BookingRequest, error) {
	q := r.db.WithContext(ctx).Model(&bookingRequestModel{})
	if f.Kind != nil {
		q = q.Where("kind = ?", string(*f.Kind))
	}
	if f.RequestStatus != nil {
		q = q.Where("request_status = ?", string(*f.RequestStatus))
	}
	if f.Archived != nil {
		q = q.Where("archived = ?", *f.Archived)
	}
	if f.Test != nil {
		q = q.Where("test = ?", *f.Test)
	}
	if f.Limit > 0 {
		q = q.Limit(f.Limit)
	}
	if f.Offset > 0 {
		q = q.Offset(f.Offset)
	}

	var rows []bookingRequestModel
	if tx := q.Order("created_at DESC").Find(&rows); tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.BookingRequest, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRequest(m))
	}
	return out, nil
}

// UpdateCAS writes the request's mutable fields guarded by the version it
// was read at. A concurrent writer bumps the version and this write
// affects zero rows, surfacing ErrStaleVersion instead of overwriting.
func (r *RequestRepository) UpdateCAS(ctx context.Context, req *domain.BookingRequest) error {
	m := toRequestModel(req)
	readVersion := m.Version
	m.Version = readVersion + 1
	m.UpdatedAt = time.Now().UTC()

	tx := r.db.WithContext(ctx).
		Model(&bookingRequestModel{}).
		Where("id = ? AND version = ?", m.ID, readVersion).
		Select(
			"request_status", "agreement_status", "deposit_status",
			"approved_rate", "approved_start", "approved_end",
			"move_in_deposit", "security_deposit", "reservation_deposit",
			"agreement_doc_ref", "reviewer", "decision_reason", "revisit_date",
			"archived", "activated_at", "version", "updated_at",
		).
		Updates(&m)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrStaleVersion
	}
	req.Version = m.Version
	req.UpdatedAt = m.UpdatedAt
	return nil
}

// AppendLineItemCAS inserts a settlement line item and moves the
// request's deposit status in one transaction. Money-state mutations are
// all-or-nothing: the item, the derived status, and the version bump
// commit together or not at all.
func (r *RequestRepository) AppendLineItemCAS(ctx context.Context, req *domain.BookingRequest, item *domain.SettlementLineItem) error {
	readVersion := req.Version
	now := time.Now().UTC()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		im := toLineItemModel(item)
		if err := tx.Create(&im).Error; err != nil {
			return err
		}

		res := tx.Model(&bookingRequestModel{}).
			Where("id = ? AND version = ?", req.ID, readVersion).
			Updates(map[string]any{
				"deposit_status": string(req.DepositStatus),
				"version":        readVersion + 1,
				"updated_at":     now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrStaleVersion
		}

		*item = *toDomainLineItem(im)
		return nil
	})
	if err != nil {
		return err
	}

	req.Version = readVersion + 1
	req.UpdatedAt = now
	return nil
}
