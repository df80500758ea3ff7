// api/models/history_models.go
package models

import "github.com/Annany2002/sql-sketcher-backend/internal/domain"

// SaveHistoryRequest persists a generated SQL artifact.
type SaveHistoryRequest struct {
	Name        string            `json:"name" binding:"required,max=200"`
	Description string            `json:"description" binding:"max=1000"`
	Tables      []TableDefinition `json:"tables" binding:"dive"`
	SQLCode     string            `json:"sqlCode" binding:"required"`
	Usage       *domain.Usage     `json:"usage"`
	IsPublic    bool              `json:"isPublic"`
	Tags        []string          `json:"tags" binding:"max=20,dive,max=50"`
}

// UpdateHistoryRequest changes the descriptive fields of an artifact.
type UpdateHistoryRequest struct {
	Name        *string  `json:"name" binding:"omitempty,max=200"`
	Description *string  `json:"description" binding:"omitempty,max=1000"`
	Tags        []string `json:"tags" binding:"omitempty,max=20,dive,max=50"`
}

// Pagination describes one page of a listing.
type Pagination struct {
	Page  int   `json:"page"`
	Limit int   `json:"limit"`
	Total int64 `json:"total"`
	Pages int64 `json:"pages"`
}

// HistoryListResponse is returned by GET /api/history.
type HistoryListResponse struct {
	History    []domain.Artifact `json:"history"`
	Pagination Pagination        `json:"pagination"`
}

// MessageResponse carries a confirmation message.
type MessageResponse struct {
	Message string `json:"message"`
}
