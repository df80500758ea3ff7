// internal/storage/history_repo.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
)

const (
	summaryColumns = `id, user_id, name, description, tables_json, prompt_tokens, completion_tokens, total_tokens, is_public, tags_json, created_at, updated_at`
	fullColumns    = `id, user_id, name, description, tables_json, sql_code, prompt_tokens, completion_tokens, total_tokens, is_public, tags_json, created_at, updated_at`
)

type rowScanner interface {
	Scan(dest ...any) error
}

// CreateArtifact stores a generated SQL artifact. ID and timestamps are assigned here.
func (s *Store) CreateArtifact(ctx context.Context, artifact *domain.Artifact) error {
	tablesJSON, tagsJSON, err := encodeArtifactJSON(artifact.Tables, artifact.Tags)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	artifact.ID = uuid.NewString()
	artifact.CreatedAt = now
	artifact.UpdatedAt = now
	if artifact.Tables == nil {
		artifact.Tables = []domain.TableSpec{}
	}
	if artifact.Tags == nil {
		artifact.Tags = []string{}
	}

	var prompt, completion, total sql.NullInt64
	if artifact.Usage != nil {
		prompt = sql.NullInt64{Int64: int64(artifact.Usage.PromptTokens), Valid: true}
		completion = sql.NullInt64{Int64: int64(artifact.Usage.CompletionTokens), Valid: true}
		total = sql.NullInt64{Int64: int64(artifact.Usage.TotalTokens), Valid: true}
	}

	insertSQL := s.rebind(`INSERT INTO sql_history (` + fullColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, insertSQL,
		artifact.ID, artifact.UserID, artifact.Name, artifact.Description, tablesJSON, artifact.SQLCode,
		prompt, completion, total, artifact.IsPublic, tagsJSON, now, now)
	if err != nil {
		customLog.Warnf("Storage: Failed to insert sql artifact for UserID %s: %v", artifact.UserID, err)
		return fmt.Errorf("database error saving sql artifact: %w", err)
	}
	return nil
}

// ListArtifacts returns one page of a user's artifacts, newest first, without the SQL text.
func (s *Store) ListArtifacts(ctx context.Context, userID string, limit, offset int) ([]domain.Artifact, error) {
	query := s.rebind(`SELECT ` + summaryColumns + ` FROM sql_history WHERE user_id = ? ORDER BY created_at DESC LIMIT ? OFFSET ?`)
	rows, err := s.db.QueryContext(ctx, query, userID, limit, offset)
	if err != nil {
		customLog.Warnf("Storage: Error listing history for UserID %s: %v", userID, err)
		return nil, fmt.Errorf("database error listing history: %w", err)
	}
	defer rows.Close()

	artifacts := make([]domain.Artifact, 0, limit)
	for rows.Next() {
		artifact, err := scanArtifact(rows, false)
		if err != nil {
			customLog.Warnf("Storage: Error scanning history row for UserID %s: %v", userID, err)
			return nil, fmt.Errorf("failed processing history list: %w", err)
		}
		artifacts = append(artifacts, *artifact)
	}
	if err = rows.Err(); err != nil {
		customLog.Warnf("Storage: Error iterating history for UserID %s: %v", userID, err)
		return nil, fmt.Errorf("failed reading history list: %w", err)
	}
	return artifacts, nil
}

// CountArtifacts returns how many artifacts a user owns.
func (s *Store) CountArtifacts(ctx context.Context, userID string) (int64, error) {
	var total int64
	query := s.rebind(`SELECT COUNT(*) FROM sql_history WHERE user_id = ?`)
	if err := s.db.QueryRowContext(ctx, query, userID).Scan(&total); err != nil {
		customLog.Warnf("Storage: Error counting history for UserID %s: %v", userID, err)
		return 0, fmt.Errorf("database error counting history: %w", err)
	}
	return total, nil
}

// GetArtifact returns the full artifact when it exists and belongs to userID.
func (s *Store) GetArtifact(ctx context.Context, userID, id string) (*domain.Artifact, error) {
	query := s.rebind(`SELECT ` + fullColumns + ` FROM sql_history WHERE id = ? AND user_id = ? LIMIT 1`)
	artifact, err := scanArtifact(s.db.QueryRowContext(ctx, query, id, userID), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArtifactNotFound
		}
		customLog.Warnf("Storage: Error fetching artifact %s for UserID %s: %v", id, userID, err)
		return nil, fmt.Errorf("database error fetching artifact: %w", err)
	}
	return artifact, nil
}

// UpdateArtifact applies the non-nil fields of patch and returns the updated artifact.
func (s *Store) UpdateArtifact(ctx context.Context, userID, id string, patch domain.ArtifactPatch) (*domain.Artifact, error) {
	setClauses := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Name != nil {
		setClauses = append(setClauses, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Description != nil {
		setClauses = append(setClauses, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Tags != nil {
		tagsJSON, err := json.Marshal(patch.Tags)
		if err != nil {
			return nil, fmt.Errorf("failed to encode tags: %w", err)
		}
		setClauses = append(setClauses, "tags_json = ?")
		args = append(args, string(tagsJSON))
	}

	args = append(args, id, userID)
	// nolint:gosec // setClauses only contains hardcoded column names
	updateSQL := s.rebind(fmt.Sprintf("UPDATE sql_history SET %s WHERE id = ? AND user_id = ?", strings.Join(setClauses, ", ")))
	if _, err := s.db.ExecContext(ctx, updateSQL, args...); err != nil {
		customLog.Warnf("Storage: Failed to update artifact %s for UserID %s: %v", id, userID, err)
		return nil, fmt.Errorf("database error updating artifact: %w", err)
	}

	// MySQL reports zero affected rows for no-op updates, so existence is decided by the read.
	return s.GetArtifact(ctx, userID, id)
}

// DeleteArtifact removes an artifact owned by userID.
func (s *Store) DeleteArtifact(ctx context.Context, userID, id string) error {
	deleteSQL := s.rebind(`DELETE FROM sql_history WHERE id = ? AND user_id = ?`)
	result, err := s.db.ExecContext(ctx, deleteSQL, id, userID)
	if err != nil {
		customLog.Warnf("Storage: Error deleting artifact %s for UserID %s: %v", id, userID, err)
		return fmt.Errorf("database error deleting artifact: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed confirming artifact deletion: %w", err)
	}
	if rowsAffected == 0 {
		return ErrArtifactNotFound
	}
	return nil
}

// Stats aggregates token usage over a user's artifacts. Artifacts without usage do not
// count towards the average.
func (s *Store) Stats(ctx context.Context, userID string) (*domain.HistoryStats, error) {
	var (
		totalGenerated, withUsage int64
		totalTokens               int64
	)
	aggSQL := s.rebind(`SELECT COUNT(*), COUNT(total_tokens), COALESCE(SUM(total_tokens), 0) FROM sql_history WHERE user_id = ?`)
	if err := s.db.QueryRowContext(ctx, aggSQL, userID).Scan(&totalGenerated, &withUsage, &totalTokens); err != nil {
		customLog.Warnf("Storage: Error aggregating history stats for UserID %s: %v", userID, err)
		return nil, fmt.Errorf("database error aggregating stats: %w", err)
	}

	stats := &domain.HistoryStats{
		TotalGenerated: totalGenerated,
		TotalTokens:    totalTokens,
	}
	if withUsage > 0 {
		stats.AvgTokens = int64(math.Round(float64(totalTokens) / float64(withUsage)))
	}
	if totalGenerated == 0 {
		return stats, nil
	}

	var last domain.LastGenerated
	lastSQL := s.rebind(`SELECT id, created_at FROM sql_history WHERE user_id = ? ORDER BY created_at DESC LIMIT 1`)
	err := s.db.QueryRowContext(ctx, lastSQL, userID).Scan(&last.ID, &last.CreatedAt)
	switch {
	case errors.Is(err, sql.ErrNoRows):
	case err != nil:
		customLog.Warnf("Storage: Error finding latest artifact for UserID %s: %v", userID, err)
		return nil, fmt.Errorf("database error finding latest artifact: %w", err)
	default:
		stats.LastGenerated = &last
	}
	return stats, nil
}

func scanArtifact(row rowScanner, withSQL bool) (*domain.Artifact, error) {
	var (
		artifact                  domain.Artifact
		tablesJSON, tagsJSON      string
		prompt, completion, total sql.NullInt64
	)

	dest := []any{&artifact.ID, &artifact.UserID, &artifact.Name, &artifact.Description, &tablesJSON}
	if withSQL {
		dest = append(dest, &artifact.SQLCode)
	}
	dest = append(dest, &prompt, &completion, &total, &artifact.IsPublic, &tagsJSON, &artifact.CreatedAt, &artifact.UpdatedAt)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(tablesJSON), &artifact.Tables); err != nil {
		return nil, fmt.Errorf("decode tables of artifact %s: %w", artifact.ID, err)
	}
	if err := json.Unmarshal([]byte(tagsJSON), &artifact.Tags); err != nil {
		return nil, fmt.Errorf("decode tags of artifact %s: %w", artifact.ID, err)
	}
	if artifact.Tables == nil {
		artifact.Tables = []domain.TableSpec{}
	}
	if artifact.Tags == nil {
		artifact.Tags = []string{}
	}
	if total.Valid {
		artifact.Usage = &domain.Usage{
			PromptTokens:     int(prompt.Int64),
			CompletionTokens: int(completion.Int64),
			TotalTokens:      int(total.Int64),
		}
	}
	artifact.CreatedAt = artifact.CreatedAt.UTC()
	artifact.UpdatedAt = artifact.UpdatedAt.UTC()
	return &artifact, nil
}

func encodeArtifactJSON(tables []domain.TableSpec, tags []string) (string, string, error) {
	if tables == nil {
		tables = []domain.TableSpec{}
	}
	if tags == nil {
		tags = []string{}
	}
	tablesJSON, err := json.Marshal(tables)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tables: %w", err)
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return "", "", fmt.Errorf("failed to encode tags: %w", err)
	}
	return string(tablesJSON), string(tagsJSON), nil
}
