// internal/domain/models.go
package domain

import "time"

// ColumnSpec describes one column of a requested table.
// Type is passed through verbatim; flags default to false.
type ColumnSpec struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsPrimaryKey bool   `json:"isPrimaryKey"`
	IsForeignKey bool   `json:"isForeignKey"`
	IsRequired   bool   `json:"isRequired"`
}

// TableSpec is one logical SQL table with its columns in declaration order.
type TableSpec struct {
	Name    string       `json:"name"`
	Columns []ColumnSpec `json:"columns"`
}

// Usage holds token counters reported by the model service.
type Usage struct {
	PromptTokens     int `json:"promptTokens"`
	CompletionTokens int `json:"completionTokens"`
	TotalTokens      int `json:"totalTokens"`
}

// Artifact is a persisted generation result owned by one user.
type Artifact struct {
	ID          string      `json:"id"`
	UserID      string      `json:"userId"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Tables      []TableSpec `json:"tables"`
	SQLCode     string      `json:"sqlCode,omitempty"`
	Usage       *Usage      `json:"openaiUsage,omitempty"`
	IsPublic    bool        `json:"isPublic"`
	Tags        []string    `json:"tags"`
	CreatedAt   time.Time   `json:"createdAt"`
	UpdatedAt   time.Time   `json:"updatedAt"`
}

// ArtifactPatch carries the optional fields of a history update. Nil means untouched.
type ArtifactPatch struct {
	Name        *string
	Description *string
	Tags        []string
}

// HistoryStats summarises a user's generated artifacts.
type HistoryStats struct {
	TotalGenerated int64          `json:"totalGenerated"`
	TotalTokens    int64          `json:"totalTokens"`
	AvgTokens      int64          `json:"avgTokens"`
	LastGenerated  *LastGenerated `json:"lastGenerated"`
}

// LastGenerated points at the most recent artifact.
type LastGenerated struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
}

// UserMetadata defines the structure for user data in the DB
type UserMetadata struct {
	UserId       string    `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}
