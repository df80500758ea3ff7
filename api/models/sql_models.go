// api/models/sql_models.go
package models

import (
	"time"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

// ColumnDefinition is one column of a requested table. Missing flags default to false.
type ColumnDefinition struct {
	Name         string `json:"name" binding:"required"`
	Type         string `json:"type" binding:"required"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
	IsForeignKey bool   `json:"isForeignKey"`
	IsRequired   bool   `json:"isRequired"`
}

// TableDefinition is one requested table.
type TableDefinition struct {
	Name    string             `json:"name" binding:"required"`
	Columns []ColumnDefinition `json:"columns" binding:"dive"`
}

// GenerateRequest is the body of both generation endpoints.
type GenerateRequest struct {
	Tables      []TableDefinition `json:"tables" binding:"dive"`
	Description string            `json:"description" binding:"max=1000"`
}

// GenerateResponse is returned by POST /api/sql/generate.
type GenerateResponse struct {
	Success        bool          `json:"success"`
	SQLCode        string        `json:"sqlCode"`
	Message        string        `json:"message"`
	TablesReceived int           `json:"tablesReceived"`
	Mode           string        `json:"mode"`
	Model          string        `json:"model,omitempty"`
	Usage          *domain.Usage `json:"usage,omitempty"`
	Timestamp      time.Time     `json:"timestamp"`
}

// ModelGenerateResponse is returned by POST /api/sql/generate/ai.
type ModelGenerateResponse struct {
	Success bool          `json:"success"`
	SQLCode string        `json:"sqlCode"`
	Usage   *domain.Usage `json:"usage"`
	Model   string        `json:"model"`
}

// ValidateRequest is the body of POST /api/sql/validate.
type ValidateRequest struct {
	SQL string `json:"sql"`
}

// ValidateResponse reports the outcome of SQL validation.
type ValidateResponse struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message"`
}

// HealthResponse is returned by GET /api/health.
type HealthResponse struct {
	Status           string    `json:"status"`
	Timestamp        time.Time `json:"timestamp"`
	Service          string    `json:"service"`
	APIKeyConfigured string    `json:"apiKeyConfigured"`
	Environment      string    `json:"environment"`
	GenerationMode   string    `json:"generationMode"`
	Database         string    `json:"database"`
}

// ToDomain converts request tables into synthesizer input.
func ToDomain(tables []TableDefinition) []domain.TableSpec {
	specs := make([]domain.TableSpec, 0, len(tables))
	for _, table := range tables {
		spec := domain.TableSpec{Name: table.Name, Columns: make([]domain.ColumnSpec, 0, len(table.Columns))}
		for _, col := range table.Columns {
			spec.Columns = append(spec.Columns, domain.ColumnSpec{
				Name:         col.Name,
				Type:         col.Type,
				IsPrimaryKey: col.IsPrimaryKey,
				IsForeignKey: col.IsForeignKey,
				IsRequired:   col.IsRequired,
			})
		}
		specs = append(specs, spec)
	}
	return specs
}
