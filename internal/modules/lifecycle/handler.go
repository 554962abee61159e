package lifecycle

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"venuehouse/internal/domain"
	"venuehouse/internal/pkg/response"
	"venuehouse/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/requests", h.Submit)
	rg.GET("/requests", h.List)
	rg.GET("/requests/:id", h.Get)
	rg.GET("/requests/:id/stage", h.Stage)
	rg.POST("/requests/:id/review", h.StartReview)
	rg.POST("/requests/:id/approve", h.Approve)
	rg.PATCH("/requests/:id/terms", h.SaveTerms)
	rg.POST("/requests/:id/deny", h.Deny)
	rg.POST("/requests/:id/delay", h.Delay)
	rg.POST("/requests/:id/reactivate", h.Reactivate)
	rg.POST("/requests/:id/agreement", h.AdvanceAgreement)
	rg.POST("/requests/:id/deposit/request", h.RequestDeposit)
	rg.POST("/requests/:id/payments", h.RecordPayment)
	rg.POST("/requests/:id/deposit/confirm", h.ConfirmDeposit)
	rg.POST("/requests/:id/activate", h.ConfirmActivation)
	rg.POST("/requests/:id/deposit/refund", h.RefundDeposit)
	rg.POST("/requests/:id/archive", h.Archive)
	rg.POST("/requests/:id/unarchive", h.Unarchive)
}

// requestView is the API shape of a request; the stage field is derived
// on every read.
type requestView struct {
	*domain.BookingRequest
	Stage PipelineStage `json:"stage"`
}

func view(r *domain.BookingRequest) requestView {
	return requestView{BookingRequest: r, Stage: StageOf(r)}
}

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "Request not found")
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrInvalidTransition):
		response.Error(c, http.StatusConflict, "INVALID_TRANSITION", err.Error())
	case errors.Is(err, ErrPreconditionFailed):
		response.Error(c, http.StatusPreconditionFailed, "PRECONDITION_FAILED", err.Error())
	case errors.Is(err, ErrConflictRetry):
		response.Error(c, http.StatusConflict, "CONFLICT_RETRY", "Concurrent update, retry the operation")
	default:
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
	}
}

func requestID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request id")
		return 0, false
	}
	return id, true
}

func (h *Handler) Submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	r, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"request": view(r)})
}

func (h *Handler) List(c *gin.Context) {
	var q ListRequestsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	list, err := h.service.ListRequests(c.Request.Context(), q)
	if err != nil {
		handleError(c, err)
		return
	}
	views := make([]requestView, 0, len(list))
	for i := range list {
		views = append(views, view(&list[i]))
	}
	response.Success(c, http.StatusOK, gin.H{"requests": views})
}

func (h *Handler) Get(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) Stage(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"stage": StageOf(r)})
}

func (h *Handler) StartReview(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req StartReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	r, err := h.service.StartReview(c.Request.Context(), id, req.Reviewer)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) Approve(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req ApproveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid approval terms", fields)
		return
	}
	r, err := h.service.Approve(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) SaveTerms(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var patch TermsPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	r, err := h.service.SaveTerms(c.Request.Context(), id, patch)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) Deny(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	r, err := h.service.Deny(c.Request.Context(), id, req.Reason)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) Delay(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	r, err := h.service.Delay(c.Request.Context(), id, req.Reason, req.RevisitDate)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) Reactivate(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.Reactivate(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) AdvanceAgreement(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req AdvanceAgreementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	r, err := h.service.AdvanceAgreement(c.Request.Context(), id, domain.AgreementStatus(req.Status), req.DocumentRef)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) RequestDeposit(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.RequestDeposit(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) RecordPayment(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	r, err := h.service.RecordPayment(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) ConfirmDeposit(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.ConfirmDeposit(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) ConfirmActivation(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.ConfirmActivation(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) RefundDeposit(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	var req RefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}
	if fields := validator.Validate(req); fields != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid refund request", fields)
		return
	}
	r, err := h.service.RefundDeposit(c.Request.Context(), id, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) Archive(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.Archive(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}

func (h *Handler) Unarchive(c *gin.Context) {
	id, ok := requestID(c)
	if !ok {
		return
	}
	r, err := h.service.Unarchive(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"request": view(r)})
}
