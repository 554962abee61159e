package domain

import "time"

type HoldKind string

const (
	// HoldProspect blocks external availability while a request is pending.
	HoldProspect HoldKind = "prospect"
	// HoldActive is the activated assignment a prospect hold upgrades into.
	HoldActive HoldKind = "active"
)

// ResourceHold ties a resource to exactly one booking request. A prospect
// hold is reversible; on activation it is upgraded in place rather than
// deleted and recreated, so its identity survives for payment linkage.
type ResourceHold struct {
	ID          int64      `json:"id"`
	RequestID   int64      `json:"request_id"`
	RequesterID int64      `json:"requester_id"`
	ResourceID  int64      `json:"resource_id"`
	Kind        HoldKind   `json:"kind"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"`

	// Final terms, populated when the hold is upgraded to active.
	Rate            float64 `json:"rate,omitempty"`
	MoveInDeposit   float64 `json:"move_in_deposit,omitempty"`
	SecurityDeposit float64 `json:"security_deposit,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HoldResourceLink joins a hold to the calendar rows the external sync
// job mirrors. Links are removed in the same transaction as their hold.
type HoldResourceLink struct {
	ID         int64     `json:"id"`
	HoldID     int64     `json:"hold_id"`
	ResourceID int64     `json:"resource_id"`
	CreatedAt  time.Time `json:"created_at"`
}
