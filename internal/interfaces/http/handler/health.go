package handler

import (
	"net/http"
	"time"

	"github.com/bizcms/backend/internal/infrastructure/logger"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Pinger checks a dependency
type Pinger interface {
	Ping() error
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

// NewHealthHandler creates a new HealthHandler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Time     string `json:"time" example:"2026-10-15T08:00:00Z"`
	Database string `json:"database" example:"connected"`
}

// Check godoc
//
//	@ID				healthCheck
//	@Summary		Health check
//	@Tags			system
//	@Produce		json
//	@Success		200	{object}	HealthResponse
//	@Failure		503	{object}	HealthResponse
//	@Router			/health [get]
func (h *HealthHandler) Check(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Time:     h.now().UTC().Format(time.RFC3339),
		Database: "connected",
	}
	if err := h.db.Ping(); err != nil {
		logger.GetGinLogger(c).Error("Database health check failed", zap.Error(err))
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
