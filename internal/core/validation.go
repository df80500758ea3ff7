// internal/core/validation.go
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

// User-facing validation errors. Their text is returned to clients as-is.
var (
	ErrNoTables     = errors.New("Se requiere al menos una tabla")
	ErrInvalidTable = errors.New("Definición de tabla inválida")
	ErrSQLRequired  = errors.New("Código SQL requerido")
)

// ValidateTables checks the request shape the synthesizer relies on: at least one table,
// every table and column named. Types are passed through without interpretation.
func ValidateTables(tables []domain.TableSpec) error {
	if len(tables) == 0 {
		return ErrNoTables
	}
	for i, table := range tables {
		if strings.TrimSpace(table.Name) == "" {
			return fmt.Errorf("%w: la tabla #%d no tiene nombre", ErrInvalidTable, i+1)
		}
		for j, col := range table.Columns {
			if strings.TrimSpace(col.Name) == "" {
				return fmt.Errorf("%w: la columna #%d de %s no tiene nombre", ErrInvalidTable, j+1, table.Name)
			}
			if strings.TrimSpace(col.Type) == "" {
				return fmt.Errorf("%w: la columna %s de %s no tiene tipo", ErrInvalidTable, col.Name, table.Name)
			}
		}
	}
	return nil
}

// IsValidArtifactID reports whether id has the shape of a stored artifact id.
func IsValidArtifactID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
