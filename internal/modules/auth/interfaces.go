package auth

import (
	"context"

	"venuehouse/internal/domain"
)

type StaffRepository interface {
	Create(ctx context.Context, u *domain.StaffUser) error
	GetByEmail(ctx context.Context, email string) (*domain.StaffUser, error)
}

type jwtService interface {
	GenerateToken(staffID int64, role string) (string, error)
}
