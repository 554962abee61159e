package lifecycle

import "time"

type SubmitRequest struct {
	Kind        string     `json:"kind" binding:"required"`
	RequesterID int64      `json:"requester_id" binding:"required"`
	ResourceID  *int64     `json:"resource_id"`
	DesiredDate *time.Time `json:"desired_date"`
	TermMonths  *int       `json:"term_months"`
	Test        bool       `json:"test"`
}

type StartReviewRequest struct {
	Reviewer string `json:"reviewer" binding:"required"`
}

// ApproveRequest carries the commercial terms being approved. Zero
// deposit amounts take their documented defaults: the move-in deposit
// defaults to one period's rate, the reservation deposit to the rate.
type ApproveRequest struct {
	Rate               float64    `json:"rate" binding:"required" validate:"gt=0"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	MoveInDeposit      float64    `json:"move_in_deposit" validate:"gte=0"`
	SecurityDeposit    float64    `json:"security_deposit" validate:"gte=0"`
	ReservationDeposit float64    `json:"reservation_deposit" validate:"gte=0"`
}

// TermsPatch is a partial, non-transitioning edit of the approved-terms
// fields. Nil fields are left untouched.
type TermsPatch struct {
	Rate               *float64   `json:"rate"`
	StartDate          *time.Time `json:"start_date"`
	EndDate            *time.Time `json:"end_date"`
	MoveInDeposit      *float64   `json:"move_in_deposit"`
	SecurityDeposit    *float64   `json:"security_deposit"`
	ReservationDeposit *float64   `json:"reservation_deposit"`
}

type DecisionRequest struct {
	Reason      string     `json:"reason" binding:"required"`
	RevisitDate *time.Time `json:"revisit_date"`
}

type AdvanceAgreementRequest struct {
	Status      string `json:"status" binding:"required"`
	DocumentRef string `json:"document_ref"`
}

type RecordPaymentRequest struct {
	LineType string  `json:"line_type" binding:"required"`
	Amount   float64 `json:"amount" binding:"required"`
	Method   string  `json:"method" binding:"required"`
	TxnRef   string  `json:"txn_ref"`
}

type RefundRequest struct {
	Amount float64 `json:"amount" binding:"required" validate:"gt=0"`
	Method string  `json:"method" binding:"required"`
}

type ListRequestsQuery struct {
	Kind     string `form:"kind"`
	Status   string `form:"status"`
	Archived *bool  `form:"archived"`
	Test     *bool  `form:"test"`
	Limit    int    `form:"limit"`
	Offset   int    `form:"offset"`
}
