// Package generation turns table definitions into SQL, preferring the model and
// falling back to the deterministic renderer.
package generation

import (
	"context"
	"errors"
	"time"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
	"github.com/Annany2002/sql-sketcher-backend/internal/llm"
	"github.com/Annany2002/sql-sketcher-backend/internal/logger"
	"github.com/Annany2002/sql-sketcher-backend/internal/metrics"
	"github.com/Annany2002/sql-sketcher-backend/internal/sqlgen"
)

var (
	customLog = logger.NewLogger()

	// ErrModelUnavailable is returned by GenerateWithModel when no model client is configured.
	ErrModelUnavailable = errors.New("model service is not configured")
)

// Mode names the path that produced a result.
type Mode string

const (
	ModeOpenAI   Mode = "openai"
	ModeFallback Mode = "fallback"
	ModeTest     Mode = "test"
)

// Result is the generated SQL and its provenance.
type Result struct {
	SQL   string
	Mode  Mode
	Model string
	Usage *domain.Usage
}

// Service generates SQL. A nil completer keeps it in test mode.
type Service struct {
	completer llm.Completer
	now       func() time.Time
}

// NewService creates a Service. completer may be nil.
func NewService(completer llm.Completer) *Service {
	return &Service{completer: completer, now: time.Now}
}

// ModelConfigured reports whether a model client is wired in.
func (s *Service) ModelConfigured() bool {
	return s.completer != nil
}

// Generate makes one model attempt when configured and falls back to the deterministic
// renderer on any failure. The only error it returns comes from the renderer.
func (s *Service) Generate(ctx context.Context, tables []domain.TableSpec, description string) (Result, error) {
	if s.completer == nil {
		return s.render(tables, description, ModeTest)
	}

	res, err := s.GenerateWithModel(ctx, tables, description)
	if err == nil {
		return res, nil
	}
	customLog.Warnf("Generation: model call failed (%s), using deterministic fallback: %v", llm.KindOf(err), err)
	return s.render(tables, description, ModeFallback)
}

// GenerateWithModel calls the model once without any fallback.
func (s *Service) GenerateWithModel(ctx context.Context, tables []domain.TableSpec, description string) (Result, error) {
	if s.completer == nil {
		return Result{}, ErrModelUnavailable
	}

	completion, err := s.completer.Complete(ctx, llm.Prompt{
		System: sqlgen.SystemPrompt,
		User:   sqlgen.BuildPrompt(tables, description),
	})
	if err != nil {
		metrics.ModelFailuresTotal.WithLabelValues(llm.KindOf(err).String()).Inc()
		return Result{}, err
	}

	usage := completion.Usage
	metrics.GenerationsTotal.WithLabelValues(string(ModeOpenAI)).Inc()
	metrics.ModelTokensTotal.WithLabelValues("prompt").Add(float64(usage.PromptTokens))
	metrics.ModelTokensTotal.WithLabelValues("completion").Add(float64(usage.CompletionTokens))
	customLog.Printf("Generation: SQL produced by model %s (%d tokens)", completion.Model, usage.TotalTokens)

	return Result{
		SQL:   completion.Text,
		Mode:  ModeOpenAI,
		Model: completion.Model,
		Usage: &usage,
	}, nil
}

func (s *Service) render(tables []domain.TableSpec, description string, mode Mode) (Result, error) {
	sql, err := sqlgen.Render(tables, description, s.now())
	if err != nil {
		return Result{}, err
	}
	metrics.GenerationsTotal.WithLabelValues(string(mode)).Inc()
	return Result{SQL: sql, Mode: mode}, nil
}
