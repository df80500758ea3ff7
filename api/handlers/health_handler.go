// api/handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sql-sketcher-backend/api/models"
	"github.com/Annany2002/sql-sketcher-backend/config"
	"github.com/Annany2002/sql-sketcher-backend/internal/generation"
)

const serviceName = "SQL Sketcher Backend"

type HealthHandler struct {
	Cfg       *config.Config
	DB        Pinger
	Generator *generation.Service
}

func NewHealthHandler(cfg *config.Config, db Pinger, generator *generation.Service) *HealthHandler {
	return &HealthHandler{Cfg: cfg, DB: db, Generator: generator}
}

// Health reports configuration and database reachability. An unreachable database answers 503.
func (h *HealthHandler) Health(c *gin.Context) {
	configured := "No"
	if h.Cfg.APIKeyConfigured() {
		configured = "Yes"
	}
	mode := generation.ModeTest
	if h.Generator.ModelConfigured() {
		mode = generation.ModeOpenAI
	}

	status, statusCode, database := "OK", http.StatusOK, "connected"
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.Ping(ctx); err != nil {
		customLog.Warnf("Health: database ping failed: %v", err)
		status, statusCode, database = "DEGRADED", http.StatusServiceUnavailable, "unavailable"
	}

	c.JSON(statusCode, models.HealthResponse{
		Status:           status,
		Timestamp:        time.Now().UTC(),
		Service:          serviceName,
		APIKeyConfigured: configured,
		Environment:      h.Cfg.AppEnv,
		GenerationMode:   string(mode),
		Database:         database,
	})
}
