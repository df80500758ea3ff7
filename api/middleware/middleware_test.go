package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Annany2002/sql-sketcher-backend/internal/auth"
	"github.com/Annany2002/sql-sketcher-backend/internal/core"
	"github.com/Annany2002/sql-sketcher-backend/internal/generation"
	"github.com/Annany2002/sql-sketcher-backend/internal/llm"
	"github.com/Annany2002/sql-sketcher-backend/internal/storage"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestErrorHandlerMapping(t *testing.T) {
	testCases := []struct {
		name       string
		err        error
		wantStatus int
		wantError  string
	}{
		{"missing token", auth.ErrTokenMissing, http.StatusUnauthorized, MsgTokenRequired},
		{"expired token", auth.ErrTokenExpired, http.StatusUnauthorized, MsgTokenExpired},
		{"invalid token", auth.ErrTokenInvalid, http.StatusUnauthorized, MsgTokenInvalid},
		{"claims", auth.ErrTokenClaimsInvalid, http.StatusUnauthorized, MsgTokenAccessInvalid},
		{"no tables", core.ErrNoTables, http.StatusBadRequest, "Se requiere al menos una tabla"},
		{"sql required", core.ErrSQLRequired, http.StatusBadRequest, "Código SQL requerido"},
		{"artifact missing", fmt.Errorf("lookup: %w", storage.ErrArtifactNotFound), http.StatusNotFound, MsgSQLNotFound},
		{"email exists", storage.ErrEmailExists, http.StatusConflict, MsgEmailExists},
		{"bad credentials", storage.ErrInvalidCredentials, http.StatusUnauthorized, MsgInvalidCredentials},
		{"model missing", generation.ErrModelUnavailable, http.StatusServiceUnavailable, MsgModelUnavailable},
		{"model rate limited", &llm.Error{Kind: llm.KindRateLimited, Err: errors.New("429")}, http.StatusTooManyRequests, MsgModelRateLimited},
		{"model auth", &llm.Error{Kind: llm.KindAuthFailure, Err: errors.New("401")}, http.StatusInternalServerError, MsgModelAuthFailure},
		{"model timeout", &llm.Error{Kind: llm.KindTimeout, Err: errors.New("slow")}, http.StatusInternalServerError, MsgModelFailure},
		{"unknown", errors.New("disk on fire"), http.StatusInternalServerError, MsgInternal},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			router := gin.New()
			router.Use(ErrorHandler(false))
			router.GET("/", func(c *gin.Context) { _ = c.Error(tc.err) })

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tc.wantError, body["error"])
			assert.NotContains(t, body, "details")
		})
	}
}

func TestErrorHandlerExposesDetailsInDevelopment(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(true))
	router.GET("/", func(c *gin.Context) { _ = c.Error(errors.New("disk on fire")) })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "disk on fire", body["details"])
}

func TestErrorHandlerBindingErrors(t *testing.T) {
	type payload struct {
		Name string `json:"name" binding:"required"`
	}
	router := gin.New()
	router.Use(ErrorHandler(false))
	router.POST("/", func(c *gin.Context) {
		var p payload
		if err := c.ShouldBindJSON(&p); err != nil {
			_ = c.Error(err).SetType(gin.ErrorTypeBind)
		}
	})

	for _, body := range []string{`{}`, `{not json`} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, MsgInvalidInput, decodeBody(t, rec)["error"])
	}
}

func TestAuthMiddleware(t *testing.T) {
	router := gin.New()
	router.Use(ErrorHandler(false))
	router.GET("/private", AuthMiddleware(testSecret), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"userId": c.GetString(ContextUserID), "email": c.GetString(ContextEmail)})
	})

	valid, err := auth.GenerateJWT("user-1", "ana@example.com", testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := auth.GenerateJWT("user-1", "ana@example.com", testSecret, -time.Hour)
	require.NoError(t, err)

	testCases := []struct {
		name       string
		header     string
		wantStatus int
		wantError  string
	}{
		{"no header", "", http.StatusUnauthorized, MsgTokenRequired},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized, MsgTokenInvalid},
		{"garbage", "Bearer garbage", http.StatusUnauthorized, MsgTokenInvalid},
		{"expired", "Bearer " + expired, http.StatusUnauthorized, MsgTokenExpired},
		{"valid", "Bearer " + valid, http.StatusOK, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/private", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			if tc.wantError != "" {
				assert.Equal(t, tc.wantError, body["error"])
				return
			}
			assert.Equal(t, "user-1", body["userId"])
			assert.Equal(t, "ana@example.com", body["email"])
		})
	}
}

func TestRateLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	assert.True(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("1.2.3.4"))
	assert.False(t, rl.Allow("1.2.3.4"))
	assert.True(t, rl.Allow("5.6.7.8"), "limits are per client")

	now = now.Add(61 * time.Second)
	assert.True(t, rl.Allow("1.2.3.4"))

	now = now.Add(2 * time.Minute)
	rl.Sweep()
	assert.Empty(t, rl.requests)
}

func TestRateLimitMiddlewareAnswers429(t *testing.T) {
	router := gin.New()
	router.Use(RateLimitMiddleware(NewRateLimiter(1, time.Minute)))
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusNoContent, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, MsgTooManyRequests, decodeBody(t, second)["error"])
}

func TestRecoveryAndNoRoute(t *testing.T) {
	router := gin.New()
	router.Use(Recovery(false))
	router.NoRoute(NoRoute)
	router.GET("/panic", func(c *gin.Context) { panic("boom") })

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, MsgInternal, body["error"])
	assert.NotContains(t, body, "details")

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, MsgRouteNotFound, decodeBody(t, rec)["error"])
}
