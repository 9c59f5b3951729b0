package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/roadcare/roadcare-backend-go/internal/models"
	"github.com/roadcare/roadcare-backend-go/internal/service"
	"github.com/roadcare/roadcare-backend-go/pkg/response"
)

// GeorefHandler handles HTTP requests for defect georeferencing
type GeorefHandler struct {
	service *service.GeorefService
}

// NewGeorefHandler creates a new georeferencing handler
func NewGeorefHandler(service *service.GeorefService) *GeorefHandler {
	return &GeorefHandler{service: service}
}

// Georeference handles POST /api/v1/georef
func (h *GeorefHandler) Georeference(c *gin.Context) {
	var input models.GeorefInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	defect, err := h.service.GeoreferenceDefect(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, defect)
}

// BatchGeoreference handles POST /api/v1/georef/batch
func (h *GeorefHandler) BatchGeoreference(c *gin.Context) {
	var input models.BatchGeorefInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	summary, err := h.service.BatchGeoreference(c.Request.Context(), input.Defects)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, summary)
}

// Nearby handles POST /api/v1/georef/nearby
func (h *GeorefHandler) Nearby(c *gin.Context) {
	var input models.NearbySearchInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	defects, err := h.service.NearbyDefects(c.Request.Context(), input)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"search_center": gin.H{
			"latitude":  input.Latitude,
			"longitude": input.Longitude,
		},
		"radius_meters": input.RadiusMeters,
		"count":         len(defects),
		"defects":       defects,
	})
}

// Statistics handles GET /api/v1/georef/statistics
func (h *GeorefHandler) Statistics(c *gin.Context) {
	stats, err := h.service.GetStatistics(c.Request.Context())
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, stats)
}

// SegmentDefects handles GET /api/v1/georef/segment/:id
func (h *GeorefHandler) SegmentDefects(c *gin.Context) {
	idStr := c.Param("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "Invalid segment ID", err)
		return
	}

	defects, err := h.service.SegmentDefects(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}

	response.Success(c, gin.H{
		"segment_id": id,
		"count":      len(defects),
		"defects":    defects,
	})
}
