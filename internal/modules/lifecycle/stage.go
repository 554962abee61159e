package lifecycle

import "venuehouse/internal/domain"

// PipelineStage is the derived display bucket for a request's position.
// It is recomputed from the three status enums and timestamps on every
// read and never persisted.
type PipelineStage string

const (
	StageApplications PipelineStage = "applications"
	StageApproved     PipelineStage = "approved"
	StageContract     PipelineStage = "contract"
	StageDeposit      PipelineStage = "deposit"
	StageReady        PipelineStage = "ready"
	StageComplete     PipelineStage = "complete"
	StageDenied       PipelineStage = "denied"
	StageDelayed      PipelineStage = "delayed"
)

// StageOf classifies a request. Later stages win: a signed agreement
// with a confirmed deposit is "ready" even though both intermediate
// stages would also match.
func StageOf(r *domain.BookingRequest) PipelineStage {
	switch r.RequestStatus {
	case domain.RequestDenied:
		return StageDenied
	case domain.RequestDelayed:
		return StageDelayed
	case domain.RequestSubmitted, domain.RequestUnderReview:
		return StageApplications
	}

	// Approved: position within the contract/deposit funnel.
	if r.ActivatedAt != nil {
		return StageComplete
	}
	if r.AgreementStatus == domain.AgreementSigned && r.DepositStatus == domain.DepositConfirmed {
		return StageReady
	}
	if r.DepositStatus != domain.DepositPending {
		return StageDeposit
	}
	if r.AgreementStatus != domain.AgreementPending {
		return StageContract
	}
	return StageApproved
}
