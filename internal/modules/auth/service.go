package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"venuehouse/internal/domain"
)

// Service covers staff sign-in. Requesters never log in; they exist only
// as references on booking requests, so there is no registration flow,
// no email verification, no refresh tokens.
type Service struct {
	staff StaffRepository
	jwt   jwtService
}

type LoginResult struct {
	Staff *domain.StaffUser
	Token string
}

func NewService(staff StaffRepository, jwt jwtService) *Service {
	return &Service{staff: staff, jwt: jwt}
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	user, err := s.staff.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID, string(user.Role))
	if err != nil {
		return nil, err
	}

	user.PasswordHash = ""
	return &LoginResult{Staff: user, Token: token}, nil
}

// CreateStaff provisions an operator or manager account. Exposed to
// managers over HTTP and to the ops CLI for bootstrapping.
func (s *Service) CreateStaff(ctx context.Context, req CreateStaffRequest) (*domain.StaffUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.StaffUser{
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PasswordHash: string(hash),
		Name:         req.Name,
		Role:         domain.StaffRole(req.Role),
	}
	if err := s.staff.Create(ctx, user); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrEmailAlreadyExists
		}
		return nil, err
	}

	user.PasswordHash = ""
	return user, nil
}
