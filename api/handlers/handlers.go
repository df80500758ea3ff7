// api/handlers/handlers.go
package handlers

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Annany2002/sql-sketcher-backend/api/middleware"
	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
	"github.com/Annany2002/sql-sketcher-backend/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

// UserStore is the persistence needed by AuthHandler.
type UserStore interface {
	CreateUser(ctx context.Context, userID, username, email, passwordHash string) (string, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.UserMetadata, error)
	FindUserByUserId(ctx context.Context, userID string) (*domain.UserMetadata, error)
}

// Pinger reports whether the backing database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HistoryStore is the persistence needed by HistoryHandler.
type HistoryStore interface {
	CreateArtifact(ctx context.Context, artifact *domain.Artifact) error
	ListArtifacts(ctx context.Context, userID string, limit, offset int) ([]domain.Artifact, error)
	CountArtifacts(ctx context.Context, userID string) (int64, error)
	GetArtifact(ctx context.Context, userID, id string) (*domain.Artifact, error)
	UpdateArtifact(ctx context.Context, userID, id string, patch domain.ArtifactPatch) (*domain.Artifact, error)
	DeleteArtifact(ctx context.Context, userID, id string) error
	Stats(ctx context.Context, userID string) (*domain.HistoryStats, error)
}

// SQLArchiver mirrors saved SQL text outside the database.
type SQLArchiver interface {
	PutSQL(ctx context.Context, userID, artifactID, sqlText string) error
	DeleteSQL(ctx context.Context, userID, artifactID string) error
}

// bindError attaches a request binding failure so ErrorHandler answers 400.
func bindError(c *gin.Context, err error) {
	_ = c.Error(err).SetType(gin.ErrorTypeBind)
}

func currentUserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}
