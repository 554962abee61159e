package domain

import "time"

type RequestKind string

const (
	KindRentalApplication RequestKind = "rental_application"
	KindEventHosting      RequestKind = "event_hosting"
)

type RequestStatus string

const (
	RequestSubmitted   RequestStatus = "submitted"
	RequestUnderReview RequestStatus = "under_review"
	RequestApproved    RequestStatus = "approved"
	RequestDenied      RequestStatus = "denied"
	RequestDelayed     RequestStatus = "delayed"
)

type AgreementStatus string

const (
	AgreementPending   AgreementStatus = "pending"
	AgreementGenerated AgreementStatus = "generated"
	AgreementSent      AgreementStatus = "sent"
	AgreementSigned    AgreementStatus = "signed"
)

type DepositStatus string

const (
	DepositPending   DepositStatus = "pending"
	DepositRequested DepositStatus = "requested"
	DepositPartial   DepositStatus = "partial"
	DepositReceived  DepositStatus = "received"
	DepositConfirmed DepositStatus = "confirmed"
	DepositRefunded  DepositStatus = "refunded"
)

// Terms holds the approved commercial terms for a request. Zero values
// mean "not set yet"; Approve fills in defaults for the deposit amounts.
type Terms struct {
	Rate               float64    `json:"rate"`
	StartDate          *time.Time `json:"start_date,omitempty"`
	EndDate            *time.Time `json:"end_date,omitempty"`
	MoveInDeposit      float64    `json:"move_in_deposit"`
	SecurityDeposit    float64    `json:"security_deposit"`
	ReservationDeposit float64    `json:"reservation_deposit"`
}

// BookingRequest is the unit of work: a rental application or an
// event-hosting request. It owns the three independent status enums and
// is mutated only through lifecycle operations, never deleted.
type BookingRequest struct {
	ID          int64       `json:"id"`
	PublicID    string      `json:"public_id"`
	Kind        RequestKind `json:"kind"`
	RequesterID int64       `json:"requester_id"`

	ResourceID  *int64     `json:"resource_id,omitempty"`
	DesiredDate *time.Time `json:"desired_date,omitempty"`
	TermMonths  *int       `json:"term_months,omitempty"`

	RequestStatus   RequestStatus   `json:"request_status"`
	AgreementStatus AgreementStatus `json:"agreement_status"`
	DepositStatus   DepositStatus   `json:"deposit_status"`

	Terms           Terms  `json:"terms"`
	AgreementDocRef string `json:"agreement_doc_ref,omitempty"`

	Reviewer       string     `json:"reviewer,omitempty"`
	DecisionReason string     `json:"decision_reason,omitempty"`
	RevisitDate    *time.Time `json:"revisit_date,omitempty"`

	Archived bool `json:"archived"`
	Test     bool `json:"test"`

	ActivatedAt *time.Time `json:"activated_at,omitempty"`

	// Version backs the compare-and-set writes on the status enums.
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Decided reports whether the request has reached a decision state.
func (r *BookingRequest) Decided() bool {
	return r.RequestStatus == RequestApproved ||
		r.RequestStatus == RequestDenied ||
		r.RequestStatus == RequestDelayed
}

// HoldEligible reports whether the request may carry a provisional hold:
// a desired resource and date exist and the request is still in play.
func (r *BookingRequest) HoldEligible() bool {
	if r.ResourceID == nil || r.DesiredDate == nil {
		return false
	}
	switch r.RequestStatus {
	case RequestSubmitted, RequestUnderReview, RequestApproved:
		return true
	}
	return false
}
