package domain

import "time"

type ResourceKind string

const (
	ResourceDwelling   ResourceKind = "dwelling"
	ResourceEventSpace ResourceKind = "event_space"
)

// Resource is one of the operator's bookable units.
type Resource struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	Kind        ResourceKind `json:"kind"`
	MonthlyRate float64      `json:"monthly_rate"`
	Active      bool         `json:"active"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}
