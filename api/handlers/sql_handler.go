// api/handlers/sql_handler.go
package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sql-sketcher-backend/api/models"
	"github.com/Annany2002/sql-sketcher-backend/internal/core"
	"github.com/Annany2002/sql-sketcher-backend/internal/generation"
)

// SQLHandler serves the generation and validation endpoints.
type SQLHandler struct {
	Generator *generation.Service
}

func NewSQLHandler(generator *generation.Service) *SQLHandler {
	return &SQLHandler{Generator: generator}
}

var modeLabels = map[generation.Mode]string{
	generation.ModeOpenAI:   "OpenAI GPT",
	generation.ModeFallback: "Modo fallback",
	generation.ModeTest:     "Modo prueba",
}

// Generate produces SQL through the model when configured, falling back to the
// deterministic synthesizer on any model failure.
func (h *SQLHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Generate binding error: %v", err)
		bindError(c, err)
		return
	}

	tables := models.ToDomain(req.Tables)
	if err := core.ValidateTables(tables); err != nil {
		_ = c.Error(err)
		return
	}

	customLog.Printf("Generating SQL for %d tables", len(tables))
	result, err := h.Generator.Generate(c.Request.Context(), tables, req.Description)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.GenerateResponse{
		Success:        true,
		SQLCode:        result.SQL,
		Message:        "SQL generado exitosamente (" + modeLabels[result.Mode] + ")",
		TablesReceived: len(tables),
		Mode:           string(result.Mode),
		Model:          result.Model,
		Usage:          result.Usage,
		Timestamp:      time.Now().UTC(),
	})
}

// GenerateWithModel calls the model once and surfaces its failures.
func (h *SQLHandler) GenerateWithModel(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("GenerateWithModel binding error: %v", err)
		bindError(c, err)
		return
	}

	tables := models.ToDomain(req.Tables)
	if err := core.ValidateTables(tables); err != nil {
		_ = c.Error(err)
		return
	}

	result, err := h.Generator.GenerateWithModel(c.Request.Context(), tables, req.Description)
	if err != nil {
		customLog.Warnf("Model generation failed: %v", err)
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.ModelGenerateResponse{
		Success: true,
		SQLCode: result.SQL,
		Usage:   result.Usage,
		Model:   result.Model,
	})
}

// Validate is a placeholder that accepts any non-empty SQL text.
func (h *SQLHandler) Validate(c *gin.Context) {
	var req models.ValidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if strings.TrimSpace(req.SQL) == "" {
		_ = c.Error(core.ErrSQLRequired)
		return
	}

	c.JSON(http.StatusOK, models.ValidateResponse{Valid: true, Message: "SQL válido"})
}
