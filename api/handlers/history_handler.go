// api/handlers/history_handler.go
package handlers

import (
	"mime"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sql-sketcher-backend/api/models"
	"github.com/Annany2002/sql-sketcher-backend/internal/core"
	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
	"github.com/Annany2002/sql-sketcher-backend/internal/storage"
)

// HistoryHandler serves a user's saved SQL artifacts.
type HistoryHandler struct {
	Store   HistoryStore
	Archive SQLArchiver // nil when no object store is configured
}

func NewHistoryHandler(store HistoryStore, archive SQLArchiver) *HistoryHandler {
	return &HistoryHandler{Store: store, Archive: archive}
}

// List returns one page of the caller's artifacts without their SQL text.
func (h *HistoryHandler) List(c *gin.Context) {
	page, err := core.ParsePagination(c.Request.URL.Query())
	if err != nil {
		_ = c.Error(err)
		return
	}

	userID := currentUserID(c)
	ctx := c.Request.Context()
	history, err := h.Store.ListArtifacts(ctx, userID, page.Limit, page.Offset())
	if err != nil {
		_ = c.Error(err)
		return
	}
	total, err := h.Store.CountArtifacts(ctx, userID)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, models.HistoryListResponse{
		History: history,
		Pagination: models.Pagination{
			Page:  page.Page,
			Limit: page.Limit,
			Total: total,
			Pages: page.Pages(total),
		},
	})
}

// Get returns one artifact including its SQL text.
func (h *HistoryHandler) Get(c *gin.Context) {
	artifact, ok := h.lookup(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, artifact)
}

// Download returns the SQL text as a file attachment.
func (h *HistoryHandler) Download(c *gin.Context) {
	artifact, ok := h.lookup(c)
	if !ok {
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{
		"filename": downloadName(artifact.Name),
	}))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(artifact.SQLCode))
}

// Save persists a generated artifact for the caller.
func (h *HistoryHandler) Save(c *gin.Context) {
	var req models.SaveHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		customLog.Warnf("Save history binding error: %v", err)
		bindError(c, err)
		return
	}
	if strings.TrimSpace(req.SQLCode) == "" {
		_ = c.Error(core.ErrSQLRequired)
		return
	}

	artifact := &domain.Artifact{
		UserID:      currentUserID(c),
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		Tables:      models.ToDomain(req.Tables),
		SQLCode:     req.SQLCode,
		Usage:       req.Usage,
		IsPublic:    req.IsPublic,
		Tags:        req.Tags,
	}
	if err := h.Store.CreateArtifact(c.Request.Context(), artifact); err != nil {
		_ = c.Error(err)
		return
	}

	if h.Archive != nil {
		if err := h.Archive.PutSQL(c.Request.Context(), artifact.UserID, artifact.ID, artifact.SQLCode); err != nil {
			customLog.Warnf("Archive: failed to mirror artifact %s: %v", artifact.ID, err)
		}
	}

	customLog.Printf("Saved SQL artifact %s for user %s", artifact.ID, artifact.UserID)
	c.JSON(http.StatusCreated, artifact)
}

// Update changes name, description or tags. Empty values leave the field untouched.
func (h *HistoryHandler) Update(c *gin.Context) {
	id := c.Param("id")
	if !core.IsValidArtifactID(id) {
		_ = c.Error(storage.ErrArtifactNotFound)
		return
	}

	var req models.UpdateHistoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	var patch domain.ArtifactPatch
	if req.Name != nil && strings.TrimSpace(*req.Name) != "" {
		name := strings.TrimSpace(*req.Name)
		patch.Name = &name
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) != "" {
		description := strings.TrimSpace(*req.Description)
		patch.Description = &description
	}
	if len(req.Tags) > 0 {
		patch.Tags = req.Tags
	}

	artifact, err := h.Store.UpdateArtifact(c.Request.Context(), currentUserID(c), id, patch)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, artifact)
}

// Delete removes an artifact and its archived copy.
func (h *HistoryHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if !core.IsValidArtifactID(id) {
		_ = c.Error(storage.ErrArtifactNotFound)
		return
	}

	userID := currentUserID(c)
	if err := h.Store.DeleteArtifact(c.Request.Context(), userID, id); err != nil {
		_ = c.Error(err)
		return
	}

	if h.Archive != nil {
		if err := h.Archive.DeleteSQL(c.Request.Context(), userID, id); err != nil {
			customLog.Warnf("Archive: failed to remove artifact %s: %v", id, err)
		}
	}

	c.JSON(http.StatusOK, models.MessageResponse{Message: "SQL eliminado exitosamente"})
}

// Stats summarises the caller's history.
func (h *HistoryHandler) Stats(c *gin.Context) {
	stats, err := h.Store.Stats(c.Request.Context(), currentUserID(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *HistoryHandler) lookup(c *gin.Context) (*domain.Artifact, bool) {
	id := c.Param("id")
	if !core.IsValidArtifactID(id) {
		_ = c.Error(storage.ErrArtifactNotFound)
		return nil, false
	}
	artifact, err := h.Store.GetArtifact(c.Request.Context(), currentUserID(c), id)
	if err != nil {
		_ = c.Error(err)
		return nil, false
	}
	return artifact, true
}

func downloadName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', '"', '\r', '\n':
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if cleaned == "" {
		cleaned = "schema"
	}
	return cleaned + ".sql"
}
