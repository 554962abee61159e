package domain

import "time"

type LineType string

const (
	LineMoveInDeposit   LineType = "move_in_deposit"
	LineSecurityDeposit LineType = "security_deposit"
	LineReservationFee  LineType = "reservation_fee"
	LineRent            LineType = "rent"
	LineProratedRent    LineType = "prorated_rent"
	LineDamageDeduction LineType = "damage_deduction"
	LineRefund          LineType = "refund"
)

// SettlementLineItem is one immutable record of money due or paid against
// a request. Corrections are appended as new items with negative amounts,
// never written over existing rows.
type SettlementLineItem struct {
	ID         int64      `json:"id"`
	RequestID  int64      `json:"request_id"`
	Type       LineType   `json:"type"`
	AmountDue  float64    `json:"amount_due"`
	AmountPaid float64    `json:"amount_paid"`
	PaidAt     *time.Time `json:"paid_at,omitempty"`
	Method     string     `json:"method,omitempty"`
	TxnRef     string     `json:"txn_ref,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// Paid reports whether the item carries a paid timestamp.
func (li *SettlementLineItem) Paid() bool { return li.PaidAt != nil }

// SettlementSummary is the aggregate view over a request's line items,
// recomputed from the rows on every read.
type SettlementSummary struct {
	RequestID   int64                `json:"request_id"`
	TotalDue    float64              `json:"total_due"`
	TotalPaid   float64              `json:"total_paid"`
	Outstanding float64              `json:"outstanding"`
	ByType      map[LineType]LineSum `json:"by_type"`
}

type LineSum struct {
	Due  float64 `json:"due"`
	Paid float64 `json:"paid"`
}
