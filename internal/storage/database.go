// internal/storage/database.go
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib" // Driver registration
	_ "github.com/mattn/go-sqlite3"    // Driver registration

	"github.com/Annany2002/sql-sketcher-backend/config"
	"github.com/Annany2002/sql-sketcher-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "pgx"
	DriverMySQL    = "mysql"
)

// Store owns the connection pool holding users and generated SQL history.
type Store struct {
	db     *sql.DB
	driver string
}

// New wraps an already opened pool. driver selects placeholder style and error mapping.
func New(db *sql.DB, driver string) *Store {
	return &Store{db: db, driver: driver}
}

// Open connects to the history database selected by cfg and ensures the schema exists.
func Open(ctx context.Context, cfg config.HistoryConfig) (*Store, error) {
	dsn, err := dataSourceName(cfg)
	if err != nil {
		return nil, err
	}
	customLog.Printf("Storage: Initializing %s history database", cfg.Driver)

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		customLog.Warnf("Storage: Failed to open %s history db: %v", cfg.Driver, err)
		return nil, fmt.Errorf("failed to open history db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err = db.PingContext(pingCtx); err != nil {
		db.Close()
		customLog.Warnf("Storage: Failed to ping %s history db: %v", cfg.Driver, err)
		return nil, fmt.Errorf("failed to connect to history db: %w", err)
	}
	customLog.Println("Storage: History database connection successful.")

	if cfg.Driver != DriverSQLite {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	store := New(db, cfg.Driver)
	if err := store.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

func dataSourceName(cfg config.HistoryConfig) (string, error) {
	switch cfg.Driver {
	case DriverSQLite:
		if cfg.DSN != "" {
			return cfg.DSN, nil
		}
		if err := os.MkdirAll(cfg.DbDir, 0o750); err != nil {
			customLog.Warnf("Storage: Error creating data directory '%s': %v", cfg.DbDir, err)
			return "", fmt.Errorf("failed to create data directory: %w", err)
		}
		// WAL mode and a busy timeout so concurrent requests do not fail on a locked db
		return filepath.Join(cfg.DbDir, cfg.DbFile) + "?_foreign_keys=on&_journal_mode=WAL&_busy_timeout=5000", nil
	case DriverPostgres:
		return cfg.DSN, nil
	case DriverMySQL:
		mcfg, err := mysql.ParseDSN(cfg.DSN)
		if err != nil {
			return "", fmt.Errorf("invalid mysql dsn: %w", err)
		}
		// timestamps are scanned into time.Time
		mcfg.ParseTime = true
		mcfg.Loc = time.UTC
		return mcfg.FormatDSN(), nil
	default:
		return "", fmt.Errorf("unsupported history driver %q", cfg.Driver)
	}
}

// Migrate creates the users and sql_history tables when missing.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range schemaFor(s.driver) {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			customLog.Warnf("Storage: Failed to apply schema statement: %v", err)
			return fmt.Errorf("failed to ensure history schema: %w", err)
		}
	}
	customLog.Println("Storage: Users and sql_history tables ensured.")
	return nil
}

// Ping reports whether the pool can still reach the database.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// rebind rewrites '?' placeholders for drivers that use numbered parameters.
func (s *Store) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func schemaFor(driver string) []string {
	switch driver {
	case DriverPostgres:
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				user_id VARCHAR(36) PRIMARY KEY,
				username TEXT NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sql_history (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				name VARCHAR(200) NOT NULL,
				description TEXT NOT NULL,
				tables_json TEXT NOT NULL,
				sql_code TEXT NOT NULL,
				prompt_tokens INTEGER,
				completion_tokens INTEGER,
				total_tokens INTEGER,
				is_public BOOLEAN NOT NULL DEFAULT FALSE,
				tags_json TEXT NOT NULL,
				created_at TIMESTAMPTZ NOT NULL,
				updated_at TIMESTAMPTZ NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sql_history_user_created ON sql_history (user_id, created_at DESC)`,
		}
	case DriverMySQL:
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				user_id VARCHAR(36) PRIMARY KEY,
				username VARCHAR(255) NOT NULL,
				email VARCHAR(255) UNIQUE NOT NULL,
				password_hash VARCHAR(255) NOT NULL,
				created_at DATETIME(3) NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sql_history (
				id VARCHAR(36) PRIMARY KEY,
				user_id VARCHAR(36) NOT NULL,
				name VARCHAR(200) NOT NULL,
				description TEXT NOT NULL,
				tables_json MEDIUMTEXT NOT NULL,
				sql_code MEDIUMTEXT NOT NULL,
				prompt_tokens INT NULL,
				completion_tokens INT NULL,
				total_tokens INT NULL,
				is_public BOOLEAN NOT NULL DEFAULT FALSE,
				tags_json TEXT NOT NULL,
				created_at DATETIME(3) NOT NULL,
				updated_at DATETIME(3) NOT NULL,
				INDEX idx_sql_history_user_created (user_id, created_at)
			)`,
		}
	default:
		return []string{
			`CREATE TABLE IF NOT EXISTS users (
				user_id TEXT PRIMARY KEY NOT NULL,
				username TEXT NOT NULL,
				email TEXT UNIQUE NOT NULL,
				password_hash TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS sql_history (
				id TEXT PRIMARY KEY NOT NULL,
				user_id TEXT NOT NULL,
				name TEXT NOT NULL,
				description TEXT NOT NULL,
				tables_json TEXT NOT NULL,
				sql_code TEXT NOT NULL,
				prompt_tokens INTEGER,
				completion_tokens INTEGER,
				total_tokens INTEGER,
				is_public BOOLEAN NOT NULL DEFAULT 0,
				tags_json TEXT NOT NULL,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_sql_history_user_created ON sql_history (user_id, created_at DESC)`,
		}
	}
}
