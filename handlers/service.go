package handlers

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeck/backend/models"
	"github.com/pulsedeck/backend/services"
)

type ServiceHandler struct {
	registry *services.RegistryService
}

func NewServiceHandler(registry *services.RegistryService) *ServiceHandler {
	return &ServiceHandler{registry: registry}
}

// ListServices handles GET /api/services with optional enabled, category, and
// environment query params.
func (h *ServiceHandler) ListServices(c *gin.Context) {
	filter := models.ServiceFilter{
		Category:    models.ServiceCategory(c.Query("category")),
		Environment: models.Environment(c.Query("environment")),
	}
	if raw := c.Query("enabled"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "enabled must be true or false"})
			return
		}
		filter.Enabled = &enabled
	}

	svcs, err := h.registry.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":    len(svcs),
		"services": svcs,
	})
}

// GetService handles GET /api/services/:id.
func (h *ServiceHandler) GetService(c *gin.Context) {
	svc, err := h.registry.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CreateService handles POST /api/services.
func (h *ServiceHandler) CreateService(c *gin.Context) {
	var req models.CreateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.registry.Create(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[ServiceHandler] service registered id=%s", svc.ID)
	c.JSON(http.StatusCreated, svc)
}

// UpdateService handles PATCH /api/services/:id.
func (h *ServiceHandler) UpdateService(c *gin.Context) {
	var req models.UpdateServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	svc, err := h.registry.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, svc)
}

// DeleteService handles DELETE /api/services/:id.
func (h *ServiceHandler) DeleteService(c *gin.Context) {
	if err := h.registry.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "service deleted successfully"})
}

// TestService handles POST /api/services/:id/test. The probe is diagnostic
// only; unhealthy targets are a normal result, not an error.
func (h *ServiceHandler) TestService(c *gin.Context) {
	result, err := h.registry.Test(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
