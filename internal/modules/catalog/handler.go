package catalog

import (
	"errors"
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
	rg.POST("/resources", h.Create)
	rg.GET("/resources", h.List)
	rg.GET("/resources/:id", h.Get)
	rg.GET("/resources/:id/holds", h.Holds)
}

func (h *Handler) Create(c *gin.Context) {
	var req CreateResourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	res, err := h.service.CreateResource(c.Request.Context(), req)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "CREATE_FAILED", "Failed to create resource")
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"resource": res})
}

func (h *Handler) List(c *gin.Context) {
	list, err := h.service.ListResources(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "FETCH_ERROR", "Failed to list resources")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resources": list})
}

func (h *Handler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid resource id")
		return
	}

	res, err := h.service.GetResource(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch resource")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"resource": res})
}

func (h *Handler) Holds(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid resource id")
		return
	}

	holds, err := h.service.ResourceHolds(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "Resource not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, "FETCH_ERROR", "Failed to fetch holds")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"holds": holds})
}
