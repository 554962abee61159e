package settlement

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"venuehouse/internal/pkg/response"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/requests/:id/settlement", h.GetSummary)
	rg.GET("/requests/:id/line-items", h.ListLineItems)
}

func (h *Handler) GetSummary(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request id")
		return
	}

	sum, err := h.service.Summarize(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to summarize settlement")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"summary": sum})
}

func (h *Handler) ListLineItems(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request id")
		return
	}

	items, err := h.service.ListByRequest(c.Request.Context(), id)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to list line items")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"line_items": items})
}
