package hold

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) Create(ctx context.Context, h *domain.ResourceHold) error {
	args := m.Called(ctx, h)
	if h != nil && h.ID == 0 {
		h.ID = 77
	}
	return args.Error(0)
}

func (m *MockHoldRepository) GetByRequestID(ctx context.Context, requestID int64) (*domain.ResourceHold, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ResourceHold), args.Error(1)
}

func (m *MockHoldRepository) DeleteByRequestID(ctx context.Context, requestID int64) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockHoldRepository) Update(ctx context.Context, h *domain.ResourceHold) error {
	args := m.Called(ctx, h)
	return args.Error(0)
}

func (m *MockHoldRepository) CountActiveOverlapping(ctx context.Context, resourceID int64, start time.Time, end *time.Time) (int64, error) {
	args := m.Called(ctx, resourceID, start, end)
	return args.Get(0).(int64), args.Error(1)
}

func TestCreateHold_DefaultTerm(t *testing.T) {
	repo := new(MockHoldRepository)
	repo.On("CountActiveOverlapping", mock.Anything, int64(3), mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	mgr := NewManager(repo)
	start := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	h, err := mgr.CreateHold(context.Background(), 1, 10, 3, start, nil)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, domain.HoldProspect, h.Kind)
	require.NotNil(t, h.EndDate)
	assert.Equal(t, time.Date(2025, time.September, 15, 0, 0, 0, 0, time.UTC), *h.EndDate)
	repo.AssertExpectations(t)
}

func TestCreateHold_ExplicitTerm(t *testing.T) {
	repo := new(MockHoldRepository)
	repo.On("CountActiveOverlapping", mock.Anything, int64(3), mock.Anything, mock.Anything).Return(int64(0), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	mgr := NewManager(repo)
	start := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)
	term := 12

	h, err := mgr.CreateHold(context.Background(), 1, 10, 3, start, &term)
	require.NoError(t, err)
	require.NotNil(t, h.EndDate)
	assert.Equal(t, time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC), *h.EndDate)
}

func TestCreateHold_OverlapIsLoggedNotFatal(t *testing.T) {
	repo := new(MockHoldRepository)
	repo.On("CountActiveOverlapping", mock.Anything, int64(3), mock.Anything, mock.Anything).Return(int64(2), nil)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	mgr := NewManager(repo)
	start := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	h, err := mgr.CreateHold(context.Background(), 1, 10, 3, start, nil)
	assert.NoError(t, err)
	assert.NotNil(t, h)
}

func TestDeleteHold_NoopWhenAbsent(t *testing.T) {
	repo := new(MockHoldRepository)
	repo.On("DeleteByRequestID", mock.Anything, int64(42)).Return(false, nil)

	mgr := NewManager(repo)
	deleted, err := mgr.DeleteHold(context.Background(), 42)
	assert.NoError(t, err)
	assert.False(t, deleted)
}

func TestUpgradeHold_InPlace(t *testing.T) {
	repo := new(MockHoldRepository)
	existing := &domain.ResourceHold{
		ID:        77,
		RequestID: 1,
		Kind:      domain.HoldProspect,
	}
	repo.On("GetByRequestID", mock.Anything, int64(1)).Return(existing, nil)
	repo.On("Update", mock.Anything, mock.Anything).Return(nil)

	mgr := NewManager(repo)
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	terms := domain.Terms{Rate: 1500, StartDate: &start, MoveInDeposit: 1500, SecurityDeposit: 500}

	h, err := mgr.UpgradeHold(context.Background(), 1, 10, 3, terms)
	require.NoError(t, err)
	assert.Equal(t, int64(77), h.ID, "upgrade must preserve hold identity")
	assert.Equal(t, domain.HoldActive, h.Kind)
	assert.Equal(t, 1500.0, h.Rate)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpgradeHold_CreatesWhenAbsent(t *testing.T) {
	repo := new(MockHoldRepository)
	repo.On("GetByRequestID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)
	repo.On("Create", mock.Anything, mock.Anything).Return(nil)

	mgr := NewManager(repo)
	start := time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC)
	terms := domain.Terms{Rate: 1500, StartDate: &start}

	h, err := mgr.UpgradeHold(context.Background(), 1, 10, 3, terms)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldActive, h.Kind)
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}
