package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pulsedeck/backend/config"
)

type App struct {
	Cfg config.Config
}

func NewApp(cfg config.Config) *App {
	return &App{
		Cfg: cfg,
	}
}

// Health is the service's own liveness endpoint.
func (a *App) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
