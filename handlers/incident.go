package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeck/backend/middleware"
	"github.com/pulsedeck/backend/models"
	"github.com/pulsedeck/backend/services"
)

type IncidentHandler struct {
	incidentService *services.IncidentService
	defaultLimit    int
}

func NewIncidentHandler(incidentService *services.IncidentService, defaultLimit int) *IncidentHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &IncidentHandler{
		incidentService: incidentService,
		defaultLimit:    defaultLimit,
	}
}

// ListIncidents handles GET /api/incidents with optional status, severity,
// category, serviceId, and limit query params.
func (h *IncidentHandler) ListIncidents(c *gin.Context) {
	filter := models.IncidentFilter{
		Status:    models.IncidentStatus(c.Query("status")),
		Severity:  models.IncidentSeverity(c.Query("severity")),
		Category:  models.IncidentCategory(c.Query("category")),
		ServiceID: c.Query("serviceId"),
		Limit:     h.defaultLimit,
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		filter.Limit = limit
	}

	incidents, err := h.incidentService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":     len(incidents),
		"incidents": incidents,
	})
}

// GetIncident handles GET /api/incidents/:id.
func (h *IncidentHandler) GetIncident(c *gin.Context) {
	detail, err := h.incidentService.GetDetail(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

// CreateIncident handles POST /api/incidents.
func (h *IncidentHandler) CreateIncident(c *gin.Context) {
	var req models.CreateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.CreateIncident(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[IncidentHandler] incident created id=%s", incident.ID)
	c.JSON(http.StatusCreated, incident)
}

// UpdateStatus handles PATCH /api/incidents/:id/status. Authenticated callers
// act as engineers.
func (h *IncidentHandler) UpdateStatus(c *gin.Context) {
	var req models.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.UpdateStatus(c.Request.Context(), c.Param("id"), &req, models.ActorEngineer)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, incident)
}

// ApproveAction handles POST /api/incidents/:id/approve-action.
func (h *IncidentHandler) ApproveAction(c *gin.Context) {
	var req models.ApproveActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	incident, err := h.incidentService.ApproveAction(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[IncidentHandler] action approved incident=%s by=%s", incident.ID, middleware.GetEmail(c))
	c.JSON(http.StatusOK, incident)
}

// GetHistory handles GET /api/incidents/:id/history.
func (h *IncidentHandler) GetHistory(c *gin.Context) {
	id := c.Param("id")
	history, err := h.incidentService.History(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"incidentId": id,
		"count":      len(history),
		"history":    history,
	})
}

// AppendLog handles POST /api/incidents/:id/logs.
func (h *IncidentHandler) AppendLog(c *gin.Context) {
	var req models.AppendLogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	entry, err := h.incidentService.AppendLog(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entry)
}

// GetLogs handles GET /api/logs/:incidentId.
func (h *IncidentHandler) GetLogs(c *gin.Context) {
	logs, err := h.incidentService.Logs(c.Request.Context(), c.Param("incidentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, logs)
}
