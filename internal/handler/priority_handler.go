package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/service"
	"github.com/roadcare/roadcare-backend-go/pkg/response"
)

// PriorityHandler handles HTTP requests for maintenance priorities
type PriorityHandler struct {
	service *service.PriorityService
}

// NewPriorityHandler creates a new priority handler
func NewPriorityHandler(service *service.PriorityService) *PriorityHandler {
	return &PriorityHandler{service: service}
}

// Compute handles POST /api/v1/priority/compute
func (h *PriorityHandler) Compute(c *gin.Context) {
	var input models.ComputePriorityInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	score, err := h.service.ComputeSegmentPriority(c.Request.Context(), input.SegmentID, input.Defects)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, score)
}

// Recompute handles POST /api/v1/priority/recompute
func (h *PriorityHandler) Recompute(c *gin.Context) {
	summary, err := h.service.RecomputeAll(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, summary)
}

// List handles GET /api/v1/priority/list
func (h *PriorityHandler) List(c *gin.Context) {
	var filter models.PriorityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid query parameters", err)
		return
	}

	scores, err := h.service.GetPriorityList(c.Request.Context(), filter)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"count":    len(scores),
		"segments": scores,
	})
}

// SegmentPriority handles GET /api/v1/priority/segment/:id
func (h *PriorityHandler) SegmentPriority(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid segment ID", err)
		return
	}

	score, err := h.service.GetSegmentPriority(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, score)
}

// Statistics handles GET /api/v1/priority/statistics
func (h *PriorityHandler) Statistics(c *gin.Context) {
	stats, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, stats)
}
