package main

import (
	"aitool-service/internal/handler"
	"aitool-service/internal/middleware"
	"aitool-service/internal/provider"
	"aitool-service/internal/repository"
	"aitool-service/internal/tool"
	"aitool-service/internal/usage"
	"aitool-service/pkg/config"
	"aitool-service/pkg/database"
	"aitool-service/pkg/jwtutil"
	"aitool-service/pkg/logger"
	"aitool-service/prometheus"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

func main() {
	// Load configuration from .env file and environment variables
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger with config
	logger.InitLogger(cfg)
	log := logger.GetLogger()
	log.Info("Starting AI tool service...", zap.String("environment", cfg.Server.Env))

	jwtutil.SetSigningKey(cfg.JWT.SigningKey)

	// Initialize database (includes migrations)
	if err := database.InitDB(cfg, log); err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	log.Info("Database connection established and migrations completed")

	// Initialize Prometheus metrics
	prometheus.InitMetrics(cfg)
	log.Info("Prometheus metrics initialized")

	// Wire repositories and core services
	db := database.GetDB()
	companies := repository.NewCompaniesRepo(db)
	users := repository.NewUsersRepo(db)
	ledger := repository.NewUsageLogsRepo(db)

	quota := usage.NewQuotaEvaluator(companies, ledger, cfg.Quota, log)
	abuse := usage.NewAbuseDetector(ledger, users, cfg.Abuse, log)
	stats := usage.NewStatsService(companies, ledger)
	chain := provider.NewChain(cfg.AI, log)
	orchestrator := tool.NewOrchestrator(abuse, quota, ledger, companies, chain, cfg.AI.DefaultMaxTokens, log)

	toolHandler := handler.NewToolHandler(orchestrator)
	usageHandler := handler.NewUsageHandler(stats)

	// Initialize Echo framework
	e := echo.New()

	// Apply global middleware - order matters
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.CORS())
	e.Use(middleware.RequestIDMiddleware)
	e.Use(logger.Middleware(log))
	e.Use(prometheus.MetricsMiddleware())

	// Public routes - no authentication required
	e.GET("/", handler.Hello)
	e.GET("/health", handler.HealthCheck)
	e.GET("/metrics", prometheus.HandlerFunc())

	// Protected API routes
	api := e.Group("/api")
	api.Use(middleware.AuthMiddleware)

	// Tool routes carry the per-user throttle in addition to the abuse checks
	tools := api.Group("/tools", middleware.RateLimitMiddleware(cfg.RateLimit))
	tools.POST("/use", toolHandler.UseTool)
	tools.POST("/chat", toolHandler.Chatbot)

	usageRoutes := api.Group("/usage")
	usageRoutes.GET("/stats", usageHandler.GetUsageStats)
	usageRoutes.GET("/history", usageHandler.GetUserHistory)

	// Start server
	port := cfg.Server.Port
	log.Info("Starting server", zap.String("port", port))
	if err := e.Start(":" + port); err != nil {
		log.Fatal("Failed to start server", zap.Error(err))
	}
}
