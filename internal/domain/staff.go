package domain

import "time"

type StaffRole string

const (
	RoleOperator StaffRole = "operator"
	RoleManager  StaffRole = "manager"
)

// StaffUser is an operator-side account. Requesters are tracked only by
// reference on their booking requests.
type StaffUser struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         string    `json:"name"`
	Role         StaffRole `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
