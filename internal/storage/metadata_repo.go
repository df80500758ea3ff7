// internal/storage/metadata_repo.go
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/mattn/go-sqlite3"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

// Specific errors for storage operations
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrArtifactNotFound   = errors.New("sql artifact not found")
)

const (
	pgUniqueViolation   = "23505"
	mysqlDuplicateEntry = 1062
	userColumns         = `user_id, username, email, password_hash, created_at`
)

// isUniqueViolation recognises unique-constraint failures from every supported driver.
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlDuplicateEntry
	}
	return false
}

// --- User Operations ---

// CreateUser inserts a new user and returns its id.
func (s *Store) CreateUser(ctx context.Context, userID, username, email, passwordHash string) (string, error) {
	sqlStatement := s.rebind(`INSERT INTO users (` + userColumns + `) VALUES (?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, sqlStatement, userID, username, email, passwordHash, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return "", ErrEmailExists
		}
		customLog.Warnf("Storage: Failed to insert user %s: %v", email, err)
		return "", fmt.Errorf("database error during user creation: %w", err)
	}

	return userID, nil
}

// FindUserByEmail retrieves a user by their email address.
func (s *Store) FindUserByEmail(ctx context.Context, email string) (*domain.UserMetadata, error) {
	sqlStatement := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE email = ? LIMIT 1`)
	return s.scanUser(s.db.QueryRowContext(ctx, sqlStatement, email), "email", email)
}

// FindUserByUserId finds a user with user_id
func (s *Store) FindUserByUserId(ctx context.Context, userID string) (*domain.UserMetadata, error) {
	sqlStatement := s.rebind(`SELECT ` + userColumns + ` FROM users WHERE user_id = ? LIMIT 1`)
	return s.scanUser(s.db.QueryRowContext(ctx, sqlStatement, userID), "user_id", userID)
}

func (s *Store) scanUser(row *sql.Row, by, value string) (*domain.UserMetadata, error) {
	var user domain.UserMetadata
	err := row.Scan(&user.UserId, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		customLog.Warnf("Storage: Failed to find user by %s %s: %v", by, value, err)
		return nil, fmt.Errorf("database error finding user: %w", err)
	}
	return &user, nil
}
