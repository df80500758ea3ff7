// Package sqlgen renders SQL text from table definitions without any external service.
package sqlgen

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

var ErrTableNameRequired = errors.New("table name is required")

const (
	DefaultDescription = "Sin descripción"
	DatabaseName       = "sql_sketcher_db"
)

// defaultTable is emitted when no tables are supplied.
const defaultTable = `-- Tabla por defecto
CREATE TABLE usuarios (
  id INT PRIMARY KEY AUTO_INCREMENT,
  nombre VARCHAR(100) NOT NULL,
  email VARCHAR(255) UNIQUE NOT NULL,
  created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO usuarios (nombre, email) VALUES
('Usuario Test', 'test@example.com'),
('Admin', 'admin@example.com');
`

var (
	userSampleRows = []string{
		"('Juan Pérez', 'juan@email.com')",
		"('Ana García', 'ana@email.com')",
		"('Carlos López', 'carlos@email.com')",
	}
	genericSampleRows = []string{
		"('Ejemplo 1', 'valor1')",
		"('Ejemplo 2', 'valor2')",
	}
)

// Render produces the deterministic SQL script for tables.
// The sample rows always carry two literals regardless of how many columns the INSERT names.
func Render(tables []domain.TableSpec, description string, generatedAt time.Time) (string, error) {
	for i, table := range tables {
		if strings.TrimSpace(table.Name) == "" {
			return "", fmt.Errorf("%w: table #%d", ErrTableNameRequired, i+1)
		}
	}

	var b strings.Builder
	writeHeader(&b, description, generatedAt)

	if len(tables) == 0 {
		b.WriteString(defaultTable)
		return b.String(), nil
	}

	for _, table := range tables {
		writeTable(&b, table)
	}
	return b.String(), nil
}

func writeHeader(b *strings.Builder, description string, generatedAt time.Time) {
	if strings.TrimSpace(description) == "" {
		description = DefaultDescription
	}
	b.WriteString("-- SQL generado automáticamente por el backend personalizado\n")
	fmt.Fprintf(b, "-- %s\n", oneLine(description))
	fmt.Fprintf(b, "-- Generado el: %s\n\n", generatedAt.UTC().Format("2006-01-02T15:04:05.000Z"))
	fmt.Fprintf(b, "CREATE DATABASE IF NOT EXISTS %s;\n", DatabaseName)
	fmt.Fprintf(b, "USE %s;\n\n", DatabaseName)
}

func writeTable(b *strings.Builder, table domain.TableSpec) {
	fmt.Fprintf(b, "-- Tabla: %s\n", table.Name)
	fmt.Fprintf(b, "CREATE TABLE %s (\n", quote(table.Name))

	clauses := make([]string, 0, len(table.Columns))
	insertColumns := make([]string, 0, len(table.Columns))
	for _, col := range table.Columns {
		clauses = append(clauses, "    "+ColumnClause(col))
		if !col.IsPrimaryKey {
			insertColumns = append(insertColumns, quote(col.Name))
		}
	}
	b.WriteString(strings.Join(clauses, ",\n"))
	b.WriteString("\n);\n\n")

	fmt.Fprintf(b, "-- Datos de ejemplo para %s\n", table.Name)
	fmt.Fprintf(b, "INSERT INTO %s (%s) VALUES\n", quote(table.Name), strings.Join(insertColumns, ", "))

	rows := SampleRows(table.Name)
	for i, row := range rows {
		b.WriteString("    ")
		b.WriteString(row)
		if i == len(rows)-1 {
			b.WriteString(";\n\n")
		} else {
			b.WriteString(",\n")
		}
	}
}

// ColumnClause renders a single column definition. PRIMARY KEY wins over NOT NULL.
func ColumnClause(col domain.ColumnSpec) string {
	clause := quote(col.Name) + " " + col.Type
	switch {
	case col.IsPrimaryKey:
		clause += " PRIMARY KEY AUTO_INCREMENT"
	case col.IsRequired:
		clause += " NOT NULL"
	}
	return clause
}

// SampleRows picks the illustrative VALUES tuples for a table by name.
func SampleRows(tableName string) []string {
	if strings.Contains(strings.ToLower(tableName), "user") {
		return userSampleRows
	}
	return genericSampleRows
}

func quote(name string) string {
	return "`" + name + "`"
}

// oneLine keeps a free-text description inside a single SQL line comment.
func oneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
