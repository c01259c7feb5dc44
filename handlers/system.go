package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeck/backend/services"
)

type SystemHandler struct {
	incidentService *services.IncidentService
}

func NewSystemHandler(incidentService *services.IncidentService) *SystemHandler {
	return &SystemHandler{incidentService: incidentService}
}

// GetStats handles GET /api/system/stats.
func (h *SystemHandler) GetStats(c *gin.Context) {
	stats, err := h.incidentService.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
