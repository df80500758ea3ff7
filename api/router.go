// api/router.go
package api

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Annany2002/sql-sketcher-backend/api/handlers"
	"github.com/Annany2002/sql-sketcher-backend/api/middleware"
	"github.com/Annany2002/sql-sketcher-backend/config"
	"github.com/Annany2002/sql-sketcher-backend/internal/generation"
)

// Dependencies are the collaborators the router hands to its handlers.
// The caller owns their lifecycle.
type Dependencies struct {
	Users     handlers.UserStore
	History   handlers.HistoryStore
	DB        handlers.Pinger
	Archive   handlers.SQLArchiver // optional
	Generator *generation.Service
	Limiter   *middleware.RateLimiter // optional; built from cfg when nil
}

// SetupRouter initializes the Gin router and sets up all routes.
func SetupRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	router := gin.New()
	exposeDetails := cfg.IsDevelopment()

	router.Use(middleware.Recovery(exposeDetails))
	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(secure.New(secureConfig(cfg)))
	router.Use(cors.New(corsConfig(cfg)))

	limiter := deps.Limiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
	}
	// ErrorHandler wraps everything below it, including the auth middleware
	router.Use(middleware.ErrorHandler(exposeDetails))

	router.NoRoute(middleware.NoRoute)

	// Initialize Handlers
	healthHandler := handlers.NewHealthHandler(cfg, deps.DB, deps.Generator)
	sqlHandler := handlers.NewSQLHandler(deps.Generator)
	historyHandler := handlers.NewHistoryHandler(deps.History, deps.Archive)
	authHandler := handlers.NewAuthHandler(deps.Users, cfg)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiRoutes := router.Group("/api")
	apiRoutes.Use(middleware.RateLimitMiddleware(limiter))
	apiRoutes.GET("/health", healthHandler.Health)

	// --- Public Routes ---
	authRoutes := apiRoutes.Group("/auth")
	{
		authRoutes.POST("/signup", authHandler.Signup)
		authRoutes.POST("/login", authHandler.Login)
		authRoutes.GET("/me", middleware.AuthMiddleware(cfg.JWTSecret), authHandler.Me)
	}

	sqlRoutes := apiRoutes.Group("/sql")
	{
		sqlRoutes.POST("/generate", sqlHandler.Generate)
		sqlRoutes.POST("/generate/ai", sqlHandler.GenerateWithModel)
		sqlRoutes.POST("/validate", sqlHandler.Validate)
	}

	// --- Protected Routes ---
	historyRoutes := apiRoutes.Group("/history")
	historyRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	{
		historyRoutes.GET("", historyHandler.List)
		historyRoutes.POST("", historyHandler.Save)
		historyRoutes.GET("/stats/summary", historyHandler.Stats)
		historyRoutes.GET("/:id", historyHandler.Get)
		historyRoutes.GET("/:id/download", historyHandler.Download)
		historyRoutes.PUT("/:id", historyHandler.Update)
		historyRoutes.DELETE("/:id", historyHandler.Delete)
	}

	return router
}

func corsConfig(cfg *config.Config) cors.Config {
	corsCfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	switch {
	case len(cfg.AllowedOrigins) > 0:
		corsCfg.AllowOrigins = cfg.AllowedOrigins
		corsCfg.AllowCredentials = true
	case cfg.IsProduction():
		// production without an allowlist only serves same-origin callers
		corsCfg.AllowOriginFunc = func(string) bool { return false }
	default:
		corsCfg.AllowAllOrigins = true
	}
	return corsCfg
}

func secureConfig(cfg *config.Config) secure.Config {
	return secure.Config{
		FrameDeny:             true,
		ContentTypeNosniff:    true,
		BrowserXssFilter:      true,
		ContentSecurityPolicy: "default-src 'none'; frame-ancestors 'none'",
		ReferrerPolicy:        "no-referrer",
		IsDevelopment:         !cfg.IsProduction(),
		STSSeconds:            15552000,
		STSIncludeSubdomains:  true,
	}
}
