package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pulsedeck/backend/handlers"
	"github.com/pulsedeck/backend/middleware"
)

// Handlers groups everything Register wires up.
type Handlers struct {
	App      *handlers.App
	Auth     *handlers.AuthHandler
	Incident *handlers.IncidentHandler
	Service  *handlers.ServiceHandler
	System   *handlers.SystemHandler
	AI       *handlers.AIHandler
}

// Register wires middleware and routes. Reads are public; writes sit behind the
// auth middleware.
func Register(r *gin.Engine, h Handlers, corsOrigins []string, jwtSecret string) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     corsOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))
	r.Use(middleware.Metrics())

	r.GET("/health", h.App.Health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/api/auth/login", h.Auth.Login)

	// Public reads
	api := r.Group("/api")
	{
		api.GET("/incidents", h.Incident.ListIncidents)
		api.GET("/incidents/:id", h.Incident.GetIncident)
		api.GET("/incidents/:id/history", h.Incident.GetHistory)
		api.GET("/logs/:incidentId", h.Incident.GetLogs)
		api.GET("/services", h.Service.ListServices)
		api.GET("/services/:id", h.Service.GetService)
		api.GET("/system/stats", h.System.GetStats)

		// AI analysis is read-only apart from the attached snapshot; both
		// surfaces return the same payload.
		api.GET("/ai/analysis/:id", h.AI.Analyze)
		api.POST("/mcp/jsonrpc", h.AI.JSONRPC)
	}

	// Protected writes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(jwtSecret))
	{
		protected.POST("/incidents", h.Incident.CreateIncident)
		protected.PATCH("/incidents/:id/status", h.Incident.UpdateStatus)
		protected.POST("/incidents/:id/approve-action", h.Incident.ApproveAction)
		protected.POST("/incidents/:id/logs", h.Incident.AppendLog)

		protected.POST("/services", h.Service.CreateService)
		protected.PATCH("/services/:id", h.Service.UpdateService)
		protected.DELETE("/services/:id", h.Service.DeleteService)
		protected.POST("/services/:id/test", h.Service.TestService)
	}
}
