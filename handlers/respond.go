package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeck/backend/apperr"
)

// respondError maps the error taxonomy onto HTTP statuses. Internal errors are
// logged server-side and surfaced as a generic message.
func respondError(c *gin.Context, err error) {
	kind := apperr.KindOf(err)
	status := http.StatusInternalServerError
	switch kind {
	case apperr.NotFound:
		status = http.StatusNotFound
	case apperr.Validation, apperr.InvalidReference:
		status = http.StatusBadRequest
	case apperr.Unauthorized:
		status = http.StatusUnauthorized
	case apperr.Conflict:
		status = http.StatusConflict
	case apperr.Upstream:
		status = http.StatusBadGateway
	}
	if status == http.StatusInternalServerError {
		log.Printf("[Handler] internal error: %v", err)
	}
	c.JSON(status, gin.H{"error": apperr.Message(err)})
}
