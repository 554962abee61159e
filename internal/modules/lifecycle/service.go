package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"venuehouse/internal/domain"
	"venuehouse/internal/events"
	"venuehouse/internal/logger"
	"venuehouse/internal/modules/settlement"
	"venuehouse/internal/pkg/proration"
	"venuehouse/internal/repository"
)

// Service is the lifecycle state machine. It owns the three status enums
// of a booking request and is the only writer of them. Each operation
// reads current state, validates the move against the transition tables,
// and writes with compare-and-set; a lost race surfaces as
// ErrConflictRetry and the caller re-reads and retries.
type Service struct {
	requests RequestRepository
	holds    HoldManager
	ledger   Ledger
	events   EventPublisher
}

func NewService(requests RequestRepository, holds HoldManager, ledger Ledger, publisher EventPublisher) *Service {
	return &Service{
		requests: requests,
		holds:    holds,
		ledger:   ledger,
		events:   publisher,
	}
}

// requestTransitions is the single source of truth for RequestStatus
// moves. Everything not listed is rejected.
var requestTransitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.RequestSubmitted:   {domain.RequestUnderReview, domain.RequestApproved, domain.RequestDenied, domain.RequestDelayed},
	domain.RequestUnderReview: {domain.RequestApproved, domain.RequestDenied, domain.RequestDelayed},
	domain.RequestDelayed:     {domain.RequestSubmitted, domain.RequestUnderReview},
	domain.RequestApproved:    {},
	domain.RequestDenied:      {},
}

func canMoveRequest(from, to domain.RequestStatus) bool {
	for _, allowed := range requestTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// agreementOrder encodes the forward-only agreement chain.
var agreementOrder = map[domain.AgreementStatus]int{
	domain.AgreementPending:   0,
	domain.AgreementGenerated: 1,
	domain.AgreementSent:      2,
	domain.AgreementSigned:    3,
}

func (s *Service) getRequest(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	r, err := s.requests.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return r, nil
}

func mapCASError(err error) error {
	if errors.Is(err, repository.ErrStaleVersion) {
		return ErrConflictRetry
	}
	return err
}

func (s *Service) publish(t events.EventType, requestID int64, resourceID *int64, detail string) {
	if s.events == nil {
		return
	}
	e := events.Event{Type: t, RequestID: requestID, Detail: detail}
	if resourceID != nil {
		e.ResourceID = *resourceID
	}
	s.events.Publish(e)
}

// Submit creates a request in submitted state. When a desired resource
// and date were supplied, a prospect hold goes up and the availability
// trigger fires; a hold failure is logged but never fails the submit,
// since the request itself is already the authoritative record.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*domain.BookingRequest, error) {
	kind := domain.RequestKind(req.Kind)
	if !domain.ValidKind(kind) {
		return nil, fmt.Errorf("%w: unknown request kind %q", ErrValidation, req.Kind)
	}
	if req.TermMonths != nil && *req.TermMonths < 0 {
		return nil, fmt.Errorf("%w: term months must not be negative", ErrValidation)
	}

	r := &domain.BookingRequest{
		PublicID:        uuid.NewString(),
		Kind:            kind,
		RequesterID:     req.RequesterID,
		ResourceID:      req.ResourceID,
		DesiredDate:     req.DesiredDate,
		TermMonths:      req.TermMonths,
		RequestStatus:   domain.RequestSubmitted,
		AgreementStatus: domain.AgreementPending,
		DepositStatus:   domain.DepositPending,
		Test:            req.Test,
	}
	if err := s.requests.Create(ctx, r); err != nil {
		return nil, err
	}

	if r.HoldEligible() {
		h, err := s.holds.CreateHold(ctx, r.ID, r.RequesterID, *r.ResourceID, *r.DesiredDate, r.TermMonths)
		if err != nil {
			logger.Error("hold creation failed on submit", "request_id", r.ID, "error", err)
		} else if h != nil {
			s.publish(events.EventHoldCreated, r.ID, r.ResourceID, "")
		}
	}
	return r, nil
}

// StartReview moves submitted or delayed requests under review.
func (s *Service) StartReview(ctx context.Context, id int64, reviewer string) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequestStatus == domain.RequestUnderReview {
		return r, nil
	}
	if !canMoveRequest(r.RequestStatus, domain.RequestUnderReview) {
		return nil, fmt.Errorf("%w: %s -> under_review", ErrInvalidTransition, r.RequestStatus)
	}

	r.RequestStatus = domain.RequestUnderReview
	r.Reviewer = reviewer
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}
	s.publish(events.EventStatusChanged, r.ID, r.ResourceID, string(r.RequestStatus))
	return r, nil
}

func buildTerms(req ApproveRequest) domain.Terms {
	t := domain.Terms{
		Rate:               proration.Round2(req.Rate),
		StartDate:          req.StartDate,
		EndDate:            req.EndDate,
		MoveInDeposit:      proration.Round2(req.MoveInDeposit),
		SecurityDeposit:    proration.Round2(req.SecurityDeposit),
		ReservationDeposit: proration.Round2(req.ReservationDeposit),
	}
	if t.MoveInDeposit == 0 {
		t.MoveInDeposit = t.Rate
	}
	if t.ReservationDeposit == 0 {
		t.ReservationDeposit = t.Rate
	}
	return t
}

func validateTerms(t domain.Terms) error {
	if t.Rate <= 0 {
		return fmt.Errorf("%w: rate must be positive", ErrValidation)
	}
	if t.MoveInDeposit < 0 || t.SecurityDeposit < 0 || t.ReservationDeposit < 0 {
		return fmt.Errorf("%w: deposit amounts must not be negative", ErrValidation)
	}
	if t.StartDate != nil && t.EndDate != nil && !t.EndDate.After(*t.StartDate) {
		return fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}
	return nil
}

func timesEqual(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func sameTerms(a, b domain.Terms) bool {
	return a.Rate == b.Rate &&
		timesEqual(a.StartDate, b.StartDate) &&
		timesEqual(a.EndDate, b.EndDate) &&
		a.MoveInDeposit == b.MoveInDeposit &&
		a.SecurityDeposit == b.SecurityDeposit &&
		a.ReservationDeposit == b.ReservationDeposit
}

// Approve stores the approved terms and moves the request to approved.
// The agreement and deposit enums are not touched. Re-approving with
// identical terms is a no-op; re-approving with different terms from an
// already committed decision is rejected. The availability trigger fires
// because approval may have moved the dates.
func (s *Service) Approve(ctx context.Context, id int64, req ApproveRequest) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	terms := buildTerms(req)
	if err := validateTerms(terms); err != nil {
		return nil, err
	}

	if r.RequestStatus == domain.RequestApproved {
		if sameTerms(r.Terms, terms) {
			return r, nil
		}
		return nil, fmt.Errorf("%w: already approved with different terms, use saveTerms", ErrInvalidTransition)
	}
	if !canMoveRequest(r.RequestStatus, domain.RequestApproved) {
		return nil, fmt.Errorf("%w: %s -> approved", ErrInvalidTransition, r.RequestStatus)
	}

	r.RequestStatus = domain.RequestApproved
	r.Terms = terms
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}

	if terms.StartDate != nil {
		if _, err := s.holds.RefreshDates(ctx, r.ID, *terms.StartDate, terms.EndDate); err != nil {
			logger.Error("hold date refresh failed on approve", "request_id", r.ID, "error", err)
		}
	}
	s.publish(events.EventHoldDatesChanged, r.ID, r.ResourceID, "approved")
	return r, nil
}

// SaveTerms edits approved-terms fields without transitioning anything.
func (s *Service) SaveTerms(ctx context.Context, id int64, patch TermsPatch) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	t := r.Terms
	if patch.Rate != nil {
		t.Rate = proration.Round2(*patch.Rate)
	}
	if patch.StartDate != nil {
		t.StartDate = patch.StartDate
	}
	if patch.EndDate != nil {
		t.EndDate = patch.EndDate
	}
	if patch.MoveInDeposit != nil {
		t.MoveInDeposit = proration.Round2(*patch.MoveInDeposit)
	}
	if patch.SecurityDeposit != nil {
		t.SecurityDeposit = proration.Round2(*patch.SecurityDeposit)
	}
	if patch.ReservationDeposit != nil {
		t.ReservationDeposit = proration.Round2(*patch.ReservationDeposit)
	}

	if t.Rate < 0 || t.MoveInDeposit < 0 || t.SecurityDeposit < 0 || t.ReservationDeposit < 0 {
		return nil, fmt.Errorf("%w: amounts must not be negative", ErrValidation)
	}
	if t.StartDate != nil && t.EndDate != nil && !t.EndDate.After(*t.StartDate) {
		return nil, fmt.Errorf("%w: end date must be after start date", ErrValidation)
	}

	if sameTerms(r.Terms, t) {
		return r, nil
	}
	r.Terms = t
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}
	return r, nil
}

// Deny transitions to denied and tears down the hold. Calling it again
// on an already denied request is a no-op that still guarantees zero
// holds remain.
func (s *Service) Deny(ctx context.Context, id int64, reason string) (*domain.BookingRequest, error) {
	return s.decide(ctx, id, domain.RequestDenied, reason, nil)
}

// Delay parks the request; reactivate brings it back.
func (s *Service) Delay(ctx context.Context, id int64, reason string, revisitDate *time.Time) (*domain.BookingRequest, error) {
	return s.decide(ctx, id, domain.RequestDelayed, reason, revisitDate)
}

func (s *Service) decide(ctx context.Context, id int64, to domain.RequestStatus, reason string, revisitDate *time.Time) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	if r.RequestStatus != to {
		if !canMoveRequest(r.RequestStatus, to) {
			return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.RequestStatus, to)
		}
		r.RequestStatus = to
		r.DecisionReason = reason
		r.RevisitDate = revisitDate
		if err := s.requests.UpdateCAS(ctx, r); err != nil {
			return nil, mapCASError(err)
		}
	}

	deleted, err := s.holds.DeleteHold(ctx, r.ID)
	if err != nil {
		logger.Error("hold teardown failed", "request_id", r.ID, "error", err)
	} else if deleted {
		s.publish(events.EventHoldDeleted, r.ID, r.ResourceID, string(to))
	}
	return r, nil
}

// Reactivate returns a delayed request to submitted and puts the hold
// back up if the original resource and date still apply.
func (s *Service) Reactivate(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequestStatus != domain.RequestSubmitted {
		if !canMoveRequest(r.RequestStatus, domain.RequestSubmitted) {
			return nil, fmt.Errorf("%w: %s -> submitted", ErrInvalidTransition, r.RequestStatus)
		}
		r.RequestStatus = domain.RequestSubmitted
		r.DecisionReason = ""
		r.RevisitDate = nil
		if err := s.requests.UpdateCAS(ctx, r); err != nil {
			return nil, mapCASError(err)
		}
	}

	if r.HoldEligible() {
		existing, err := s.holds.GetHold(ctx, r.ID)
		if err != nil {
			logger.Error("hold lookup failed on reactivate", "request_id", r.ID, "error", err)
			return r, nil
		}
		if existing == nil {
			h, err := s.holds.CreateHold(ctx, r.ID, r.RequesterID, *r.ResourceID, *r.DesiredDate, r.TermMonths)
			if err != nil {
				logger.Error("hold recreation failed on reactivate", "request_id", r.ID, "error", err)
			} else if h != nil {
				s.publish(events.EventHoldCreated, r.ID, r.ResourceID, "reactivated")
			}
		}
	}
	return r, nil
}

// AdvanceAgreement moves the agreement enum exactly one step forward.
// Repeating the current status is a no-op; skipping or going backward is
// rejected. The deposit and request enums are untouched.
func (s *Service) AdvanceAgreement(ctx context.Context, id int64, newStatus domain.AgreementStatus, documentRef string) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}

	to, ok := agreementOrder[newStatus]
	if !ok {
		return nil, fmt.Errorf("%w: unknown agreement status %q", ErrValidation, newStatus)
	}
	if r.RequestStatus != domain.RequestApproved {
		return nil, fmt.Errorf("%w: agreement flow requires an approved request", ErrPreconditionFailed)
	}

	from := agreementOrder[r.AgreementStatus]
	if to == from {
		return r, nil
	}
	if to != from+1 {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, r.AgreementStatus, newStatus)
	}

	r.AgreementStatus = newStatus
	if documentRef != "" {
		r.AgreementDocRef = documentRef
	}
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}
	s.publish(events.EventStatusChanged, r.ID, r.ResourceID, string(newStatus))
	return r, nil
}

// RequestDeposit opens the deposit flow once the request is approved.
func (s *Service) RequestDeposit(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequestStatus != domain.RequestApproved {
		return nil, fmt.Errorf("%w: deposit flow requires an approved request", ErrPreconditionFailed)
	}

	switch r.DepositStatus {
	case domain.DepositRequested:
		return r, nil
	case domain.DepositPending:
		// fall through to the write
	default:
		return nil, fmt.Errorf("%w: %s -> requested", ErrInvalidTransition, r.DepositStatus)
	}

	r.DepositStatus = domain.DepositRequested
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}
	s.publish(events.EventStatusChanged, r.ID, r.ResourceID, string(r.DepositStatus))
	return r, nil
}

// expectedDue maps a line type to the amount the approved terms say is
// owed for it, net of what earlier items already recorded as due.
func expectedDue(t domain.LineType, terms domain.Terms, existing []domain.SettlementLineItem) float64 {
	var full float64
	switch t {
	case domain.LineMoveInDeposit:
		full = terms.MoveInDeposit
	case domain.LineSecurityDeposit:
		full = terms.SecurityDeposit
	case domain.LineReservationFee:
		full = terms.ReservationDeposit
	case domain.LineRent:
		full = terms.Rate
	case domain.LineProratedRent:
		if terms.StartDate != nil {
			if p, err := proration.ProratePeriod(*terms.StartDate, terms.Rate); err == nil {
				full = p.ProratedAmount
			}
		}
	default:
		return 0
	}

	var already float64
	for _, li := range existing {
		if li.Type == t {
			already += li.AmountDue
		}
	}
	due := proration.Round2(full - already)
	if due < 0 {
		due = 0
	}
	return due
}

// RecordPayment appends a settlement line item and recomputes the
// derived deposit status in one transaction: the item, the status, and
// the version bump commit together or not at all. A status already at
// confirmed or refunded is never regressed by the derivation.
func (s *Service) RecordPayment(ctx context.Context, id int64, req RecordPaymentRequest) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.RequestStatus != domain.RequestApproved {
		return nil, fmt.Errorf("%w: payments require an approved request", ErrPreconditionFailed)
	}

	existing, err := s.ledger.ListByRequest(ctx, r.ID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	txnRef := req.TxnRef
	if txnRef == "" {
		txnRef = uuid.NewString()
	}
	item := &domain.SettlementLineItem{
		RequestID:  r.ID,
		Type:       domain.LineType(req.LineType),
		AmountDue:  expectedDue(domain.LineType(req.LineType), r.Terms, existing),
		AmountPaid: req.Amount,
		PaidAt:     &now,
		Method:     req.Method,
		TxnRef:     txnRef,
	}
	if err := settlement.ValidateLineItem(item); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	all := append(append([]domain.SettlementLineItem{}, existing...), *item)
	derived := settlement.DeriveDepositStatus(all, domain.ProfileFor(r.Kind), r.Terms)
	if r.DepositStatus != domain.DepositConfirmed && r.DepositStatus != domain.DepositRefunded {
		r.DepositStatus = derived
	}

	if err := s.requests.AppendLineItemCAS(ctx, r, item); err != nil {
		return nil, mapCASError(err)
	}
	s.publish(events.EventStatusChanged, r.ID, r.ResourceID, string(r.DepositStatus))
	return r, nil
}

// ConfirmDeposit is the administrative sign-off on a fully received
// deposit. Derivation never sets confirmed; this call does.
func (s *Service) ConfirmDeposit(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.DepositStatus == domain.DepositConfirmed {
		return r, nil
	}
	if r.DepositStatus != domain.DepositReceived {
		return nil, fmt.Errorf("%w: %s -> confirmed", ErrInvalidTransition, r.DepositStatus)
	}

	r.DepositStatus = domain.DepositConfirmed
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}
	s.publish(events.EventStatusChanged, r.ID, r.ResourceID, string(r.DepositStatus))
	return r, nil
}

// ConfirmActivation turns the request into a live assignment: requires a
// signed agreement and a confirmed deposit, upgrades the hold in place,
// and stamps the activation. The hold upgrade runs before the status
// write; if the write then loses its race the retry converges because
// the upgrade is idempotent.
func (s *Service) ConfirmActivation(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.ActivatedAt != nil {
		return r, nil
	}
	if r.AgreementStatus != domain.AgreementSigned || r.DepositStatus != domain.DepositConfirmed {
		return nil, fmt.Errorf("%w: activation requires a signed agreement and a confirmed deposit (agreement=%s deposit=%s)",
			ErrPreconditionFailed, r.AgreementStatus, r.DepositStatus)
	}

	resourceID, err := s.activationResource(ctx, r)
	if err != nil {
		return nil, err
	}

	if _, err := s.holds.UpgradeHold(ctx, r.ID, r.RequesterID, resourceID, r.Terms); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	r.ActivatedAt = &now
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}
	s.publish(events.EventHoldUpgraded, r.ID, &resourceID, "activated")
	return r, nil
}

func (s *Service) activationResource(ctx context.Context, r *domain.BookingRequest) (int64, error) {
	if r.ResourceID != nil {
		return *r.ResourceID, nil
	}
	h, err := s.holds.GetHold(ctx, r.ID)
	if err != nil {
		return 0, err
	}
	if h == nil {
		return 0, fmt.Errorf("%w: activation requires a resource", ErrPreconditionFailed)
	}
	return h.ResourceID, nil
}

// RefundDeposit records the refund line item and moves a confirmed
// rental deposit to its terminal refunded state, atomically.
func (s *Service) RefundDeposit(ctx context.Context, id int64, req RefundRequest) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if !domain.ProfileFor(r.Kind).RefundReachable {
		return nil, fmt.Errorf("%w: refunds are not part of the %s flow", ErrInvalidTransition, r.Kind)
	}
	if r.DepositStatus == domain.DepositRefunded {
		return r, nil
	}
	if r.DepositStatus != domain.DepositConfirmed {
		return nil, fmt.Errorf("%w: %s -> refunded", ErrInvalidTransition, r.DepositStatus)
	}
	if req.Amount <= 0 {
		return nil, fmt.Errorf("%w: refund amount must be positive", ErrValidation)
	}

	now := time.Now().UTC()
	item := &domain.SettlementLineItem{
		RequestID:  r.ID,
		Type:       domain.LineRefund,
		AmountPaid: -proration.Round2(req.Amount),
		PaidAt:     &now,
		Method:     req.Method,
		TxnRef:     uuid.NewString(),
	}

	r.DepositStatus = domain.DepositRefunded
	if err := s.requests.AppendLineItemCAS(ctx, r, item); err != nil {
		return nil, mapCASError(err)
	}
	s.publish(events.EventStatusChanged, r.ID, r.ResourceID, string(r.DepositStatus))
	return r, nil
}

// Archive and Unarchive flip the visibility flag only. No status or hold
// effect.
func (s *Service) Archive(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	return s.setArchived(ctx, id, true)
}

func (s *Service) Unarchive(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	return s.setArchived(ctx, id, false)
}

func (s *Service) setArchived(ctx context.Context, id int64, archived bool) (*domain.BookingRequest, error) {
	r, err := s.getRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Archived == archived {
		return r, nil
	}
	r.Archived = archived
	if err := s.requests.UpdateCAS(ctx, r); err != nil {
		return nil, mapCASError(err)
	}
	return r, nil
}

// GetRequest returns one request by id.
func (s *Service) GetRequest(ctx context.Context, id int64) (*domain.BookingRequest, error) {
	return s.getRequest(ctx, id)
}

// ListRequests returns requests matching the query.
func (s *Service) ListRequests(ctx context.Context, q ListRequestsQuery) ([]domain.BookingRequest, error) {
	f := repository.RequestFilters{
		Archived: q.Archived,
		Test:     q.Test,
		Limit:    q.Limit,
		Offset:   q.Offset,
	}
	if q.Kind != "" {
		kind := domain.RequestKind(q.Kind)
		if !domain.ValidKind(kind) {
			return nil, fmt.Errorf("%w: unknown request kind %q", ErrValidation, q.Kind)
		}
		f.Kind = &kind
	}
	if q.Status != "" {
		status := domain.RequestStatus(q.Status)
		if _, ok := requestTransitions[status]; !ok {
			return nil, fmt.Errorf("%w: unknown request status %q", ErrValidation, q.Status)
		}
		f.RequestStatus = &status
	}
	return s.requests.List(ctx, f)
}
