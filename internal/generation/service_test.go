package generation

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/sql-sketcher-backend/internal/domain"
	"github.com/Annany2002/sql-sketcher-backend/internal/llm"
	"github.com/Annany2002/sql-sketcher-backend/internal/sqlgen"
)

type stubCompleter struct {
	completion llm.Completion
	err        error
	calls      int
	lastPrompt llm.Prompt
}

func (s *stubCompleter) Complete(_ context.Context, prompt llm.Prompt) (llm.Completion, error) {
	s.calls++
	s.lastPrompt = prompt
	return s.completion, s.err
}

var sampleTables = []domain.TableSpec{{
	Name: "products",
	Columns: []domain.ColumnSpec{
		{Name: "id", Type: "INT", IsPrimaryKey: true},
		{Name: "title", Type: "VARCHAR(100)", IsRequired: true},
	},
}}

func TestGenerateWithoutModelUsesTestMode(t *testing.T) {
	svc := NewService(nil)
	assert.False(t, svc.ModelConfigured())

	res, err := svc.Generate(context.Background(), sampleTables, "")
	require.NoError(t, err)

	assert.Equal(t, ModeTest, res.Mode)
	assert.Nil(t, res.Usage)
	assert.Contains(t, res.SQL, "CREATE TABLE `products` (")
}

func TestGenerateUsesModel(t *testing.T) {
	stub := &stubCompleter{completion: llm.Completion{
		Text:  "CREATE TABLE products (id INT);",
		Model: "gpt-test",
		Usage: domain.Usage{PromptTokens: 7, CompletionTokens: 3, TotalTokens: 10},
	}}
	svc := NewService(stub)

	res, err := svc.Generate(context.Background(), sampleTables, "catálogo")
	require.NoError(t, err)

	assert.Equal(t, ModeOpenAI, res.Mode)
	assert.Equal(t, "CREATE TABLE products (id INT);", res.SQL)
	assert.Equal(t, "gpt-test", res.Model)
	require.NotNil(t, res.Usage)
	assert.Equal(t, 10, res.Usage.TotalTokens)

	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, sqlgen.SystemPrompt, stub.lastPrompt.System)
	assert.Contains(t, stub.lastPrompt.User, "Descripción: catálogo")
}

func TestGenerateFallsBackOnEveryErrorKind(t *testing.T) {
	for _, kind := range []llm.ErrorKind{llm.KindAuthFailure, llm.KindRateLimited, llm.KindTimeout, llm.KindUnknown} {
		t.Run(kind.String(), func(t *testing.T) {
			stub := &stubCompleter{err: &llm.Error{Kind: kind, Err: errors.New("upstream")}}
			svc := NewService(stub)
			svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }

			res, err := svc.Generate(context.Background(), sampleTables, "")
			require.NoError(t, err)

			assert.Equal(t, 1, stub.calls, "exactly one model attempt")
			assert.Equal(t, ModeFallback, res.Mode)
			assert.Nil(t, res.Usage)
			assert.True(t, strings.Contains(res.SQL, "-- Generado el: 2025-01-02T03:04:05.000Z"))
			assert.Contains(t, res.SQL, "INSERT INTO `products` (`title`) VALUES")
		})
	}
}

func TestGenerateWithModelSurfacesErrors(t *testing.T) {
	stub := &stubCompleter{err: &llm.Error{Kind: llm.KindRateLimited, Err: errors.New("slow down")}}

	_, err := NewService(stub).GenerateWithModel(context.Background(), sampleTables, "")
	require.Error(t, err)
	assert.Equal(t, llm.KindRateLimited, llm.KindOf(err))

	_, err = NewService(nil).GenerateWithModel(context.Background(), sampleTables, "")
	assert.ErrorIs(t, err, ErrModelUnavailable)
}

func TestGenerateRejectsNamelessTable(t *testing.T) {
	_, err := NewService(nil).Generate(context.Background(), []domain.TableSpec{{Name: ""}}, "")
	assert.ErrorIs(t, err, sqlgen.ErrTableNameRequired)
}
