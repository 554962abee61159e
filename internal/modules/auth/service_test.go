package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

type MockStaffRepository struct {
	mock.Mock
}

func (m *MockStaffRepository) Create(ctx context.Context, u *domain.StaffUser) error {
	args := m.Called(ctx, u)
	if u.ID == 0 {
		u.ID = 1
	}
	return args.Error(0)
}

func (m *MockStaffRepository) GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StaffUser), args.Error(1)
}

type stubJWT struct{}

func (stubJWT) GenerateToken(staffID int64, role string) (string, error) {
	return "token", nil
}

func TestLogin_Success(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := new(MockStaffRepository)
	repo.On("GetByEmail", mock.Anything, "ops@venuehouse.io").Return(&domain.StaffUser{
		ID:           7,
		Email:        "ops@venuehouse.io",
		PasswordHash: string(hash),
		Role:         domain.RoleOperator,
	}, nil)

	svc := NewService(repo, stubJWT{})
	result, err := svc.Login(context.Background(), LoginRequest{Email: "Ops@venuehouse.io ", Password: "hunter22"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), result.Staff.ID)
	assert.Equal(t, "token", result.Token)
	assert.Empty(t, result.Staff.PasswordHash)
}

func TestLogin_WrongPassword(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	repo := new(MockStaffRepository)
	repo.On("GetByEmail", mock.Anything, "ops@venuehouse.io").Return(&domain.StaffUser{
		Email:        "ops@venuehouse.io",
		PasswordHash: string(hash),
	}, nil)

	svc := NewService(repo, stubJWT{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "ops@venuehouse.io", Password: "wrong"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockStaffRepository)
	repo.On("GetByEmail", mock.Anything, "nobody@venuehouse.io").Return(nil, gorm.ErrRecordNotFound)

	svc := NewService(repo, stubJWT{})
	_, err := svc.Login(context.Background(), LoginRequest{Email: "nobody@venuehouse.io", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestCreateStaff_HashesPassword(t *testing.T) {
	repo := new(MockStaffRepository)
	repo.On("Create", mock.Anything, mock.MatchedBy(func(u *domain.StaffUser) bool {
		return u.PasswordHash != "secret123" && u.Email == "new@venuehouse.io"
	})).Return(nil)

	svc := NewService(repo, stubJWT{})
	user, err := svc.CreateStaff(context.Background(), CreateStaffRequest{
		Name:     "New Operator",
		Email:    "New@venuehouse.io",
		Password: "secret123",
		Role:     "operator",
	})
	require.NoError(t, err)
	assert.Empty(t, user.PasswordHash)
	assert.Equal(t, domain.RoleOperator, user.Role)
}
