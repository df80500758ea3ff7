package sqlgen

import (
	"fmt"
	"strings"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

const (
	SystemPrompt = "Eres un experto en bases de datos SQL. Genera código SQL limpio, bien estructurado y con comentarios explicativos."

	defaultPromptDescription = "Esquema de base de datos"
)

// BuildPrompt renders the user message sent to the model for tables and description.
func BuildPrompt(tables []domain.TableSpec, description string) string {
	if strings.TrimSpace(description) == "" {
		description = defaultPromptDescription
	}

	var b strings.Builder
	b.WriteString("Genera código SQL CREATE TABLE para las siguientes tablas y datos de ejemplo:\n\n")
	fmt.Fprintf(&b, "Descripción: %s\n\n", strings.TrimSpace(description))
	b.WriteString("Tablas:\n")
	for _, table := range tables {
		fmt.Fprintf(&b, "- Tabla: %s\n", table.Name)
		b.WriteString("  Columnas:\n")
		for _, col := range table.Columns {
			fmt.Fprintf(&b, "    * %s (%s)%s\n", col.Name, col.Type, columnAnnotations(col))
		}
	}
	b.WriteString(`
Instrucciones:
1. Genera CREATE TABLE statements para cada tabla
2. Incluye constraints apropiados (PRIMARY KEY, NOT NULL, etc.)
3. Agrega declaraciones ALTER TABLE para las claves foráneas
4. Agrega algunos datos de ejemplo con INSERT statements
5. Usa comentarios en español para explicar cada sección
6. Asegúrate de que el SQL sea compatible con MySQL

Responde solo con el código SQL, sin explicaciones adicionales.`)
	return b.String()
}

func columnAnnotations(col domain.ColumnSpec) string {
	var notes []string
	if col.IsPrimaryKey {
		notes = append(notes, "PRIMARY KEY")
	}
	if col.IsForeignKey {
		notes = append(notes, "FOREIGN KEY")
	}
	if col.IsRequired {
		notes = append(notes, "NOT NULL")
	}
	if len(notes) == 0 {
		return ""
	}
	return " - " + strings.Join(notes, " - ")
}
