package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/sql-sketcher-backend/api"
	"github.com/Annany2002/sql-sketcher-backend/config"
	"github.com/Annany2002/sql-sketcher-backend/internal/auth"
	"github.com/Annany2002/sql-sketcher-backend/internal/generation"
	"github.com/Annany2002/sql-sketcher-backend/internal/llm"
	"github.com/Annany2002/sql-sketcher-backend/internal/storage"
)

const testJWTSecret = "test_secret_key_for_integration_tests_1234567890"

// fakeArchive records mirrored objects in memory.
type fakeArchive struct {
	mu      sync.Mutex
	objects map[string]string
}

func (f *fakeArchive) PutSQL(_ context.Context, userID, artifactID, sqlText string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[userID+"/"+artifactID] = sqlText
	return nil
}

func (f *fakeArchive) DeleteSQL(_ context.Context, userID, artifactID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, userID+"/"+artifactID)
	return nil
}

func (f *fakeArchive) get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.objects[key]
	return v, ok
}

type testEnv struct {
	server  *httptest.Server
	store   *storage.Store
	archive *fakeArchive
	cfg     *config.Config
}

type serverOption func(vars map[string]string)

// withModel points the model client at baseURL.
func withModel(baseURL string) serverOption {
	return func(vars map[string]string) {
		vars["OPENAI_API_KEY"] = "sk-test"
		vars["OPENAI_BASE_URL"] = baseURL
		vars["OPENAI_TIMEOUT"] = "2s"
	}
}

// setupTestServer creates a test server backed by a temporary SQLite database.
func setupTestServer(t *testing.T, opts ...serverOption) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	tempDir := t.TempDir()
	vars := map[string]string{
		"APP_ENV":                 "test",
		"JWT_SECRET":              testJWTSecret,
		"JWT_EXPIRATION_HOURS":    "1",
		"RATE_LIMIT_MAX":          "1000",
		"DATABASE_DIRECTORY":      tempDir,
		"DATABASE_DIRECTORY_FILE": "test_history.db",
	}
	for _, opt := range opts {
		opt(vars)
	}
	cfg, err := config.Parse(env.Options{Environment: vars})
	require.NoError(t, err)

	store, err := storage.Open(context.Background(), cfg.History)
	require.NoError(t, err)

	var completer llm.Completer
	if cfg.ModelEnabled() {
		client, err := llm.NewOpenAIClient(llm.OpenAIConfig{
			BaseURL:     cfg.OpenAI.BaseURL,
			APIKey:      cfg.OpenAI.APIKey,
			Model:       cfg.OpenAI.Model,
			MaxTokens:   cfg.OpenAI.MaxTokens,
			Temperature: cfg.OpenAI.Temperature,
			Timeout:     cfg.OpenAI.Timeout,
		})
		require.NoError(t, err)
		completer = client
	}

	archive := &fakeArchive{objects: map[string]string{}}
	router := api.SetupRouter(cfg, api.Dependencies{
		Users:     store,
		History:   store,
		DB:        store,
		Archive:   archive,
		Generator: generation.NewService(completer),
	})
	server := httptest.NewServer(router)

	t.Cleanup(func() {
		server.Close()
		if err := store.Close(); err != nil {
			t.Logf("Warning: failed to close test database: %v", err)
		}
	})

	return &testEnv{server: server, store: store, archive: archive, cfg: cfg}
}

func (e *testEnv) token(t *testing.T, userID, email string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.GenerateJWT(userID, email, testJWTSecret, ttl)
	require.NoError(t, err)
	return token
}

// do sends a JSON request and decodes a JSON response into out when out is non-nil.
func (e *testEnv) do(t *testing.T, method, path, token string, body any, out any) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}

	req, err := http.NewRequest(method, e.server.URL+path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = res.Body.Close() })

	if out != nil {
		require.NoError(t, json.NewDecoder(res.Body).Decode(out))
	}
	return res
}
