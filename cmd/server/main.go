// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Annany2002/sql-sketcher-backend/api" // Import router setup
	"github.com/Annany2002/sql-sketcher-backend/api/handlers"
	"github.com/Annany2002/sql-sketcher-backend/api/middleware"
	"github.com/Annany2002/sql-sketcher-backend/config" // Import config loading
	"github.com/Annany2002/sql-sketcher-backend/internal/archive"
	"github.com/Annany2002/sql-sketcher-backend/internal/generation"
	"github.com/Annany2002/sql-sketcher-backend/internal/llm"
	"github.com/Annany2002/sql-sketcher-backend/internal/logger"
	"github.com/Annany2002/sql-sketcher-backend/internal/storage"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	customLog.Println("Starting SQL Sketcher Backend server...")

	// 1. Load Configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		customLog.Fatalf("Failed to load configuration: %v", err)
	}
	logger.Configure(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 2. Initialize History Database Connection
	store, err := storage.Open(ctx, cfg.History)
	if err != nil {
		customLog.Fatalf("Failed to initialize history database: %v", err)
	}
	defer func() {
		customLog.Println("Closing history database connection...")
		if err := store.Close(); err != nil {
			customLog.Printf("Error closing history database: %v", err)
		}
	}()

	// 3. Optional object-store mirror
	var sqlArchive handlers.SQLArchiver
	if cfg.Archive.Enabled() {
		archiveStore, err := archive.New(ctx, cfg.Archive)
		if err != nil {
			customLog.Fatalf("Failed to initialize SQL archive: %v", err)
		}
		defer func() {
			if err := archiveStore.Close(); err != nil {
				customLog.Printf("Error closing SQL archive: %v", err)
			}
		}()
		sqlArchive = archiveStore
		customLog.Printf("Mirroring saved SQL to bucket %s", cfg.Archive.Bucket)
	}

	// 4. Model client; without one every generation runs in test mode
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
		if err != nil {
			customLog.Fatalf("Failed to initialize model client: %v", err)
		}
		completer = client
		customLog.Printf("Model-backed generation enabled (model %s)", client.Model())
	} else {
		customLog.Warnln("OPENAI_API_KEY not configured, generation runs in test mode")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	go limiter.RunSweeper(ctx, cfg.RateLimitWindow)

	// 5. Setup Router (passing dependencies)
	router := api.SetupRouter(cfg, api.Dependencies{
		Users:     store,
		History:   store,
		DB:        store,
		Archive:   sqlArchive,
		Generator: generation.NewService(completer),
		Limiter:   limiter,
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.ServerPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// generation may wait for the model for the whole client timeout
		WriteTimeout: cfg.OpenAI.Timeout + 15*time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	// 6. Start Server
	go func() {
		customLog.Printf("Server listening on port %s", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			customLog.Errorf("Server failed: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	customLog.Println("Shutting down server...")
	if err := server.Shutdown(shutdownCtx); err != nil {
		customLog.Errorf("Graceful shutdown failed: %v", err)
		_ = server.Close()
		os.Exit(1)
	}
}
