package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/nexus/nexus-backend/internal/config"
	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/handler"
	"github.com/dafibh/nexus/nexus-backend/internal/middleware"
	"github.com/dafibh/nexus/nexus-backend/internal/migrate"
	"github.com/dafibh/nexus/nexus-backend/internal/repository/postgres"
	redisrepo "github.com/dafibh/nexus/nexus-backend/internal/repository/redis"
	"github.com/dafibh/nexus/nexus-backend/internal/service"
	"github.com/dafibh/nexus/nexus-backend/internal/webhook"
	"github.com/dafibh/nexus/nexus-backend/internal/websocket"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Nexus API
// @version 1.0
// @description Workspace and project API synchronized from Clerk organizations.
// @host localhost:3000
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Clerk session token: "Bearer {token}"
func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Run migrations before the pool opens
	if cfg.AutoMigrate {
		runner, err := migrate.New(cfg.DatabaseURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create migration runner")
		}
		if err := runner.Ensure(context.Background()); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	// Connect to database
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid DATABASE_URL")
	}
	poolConfig.MaxConns = cfg.DatabaseMaxConns

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Int32("max_conns", cfg.DatabaseMaxConns).Msg("Connected to database")

	// Webhook delivery log (optional)
	var deliveries domain.DeliveryLog = domain.NoopDeliveryLog{}
	var redisClient *goredis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redisrepo.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to redis")
		}
		deliveries = redisrepo.NewDeliveryLog(redisClient, redisrepo.DefaultDeliveryTTL)
		log.Info().Msg("Webhook delivery de-duplication enabled")
	} else {
		log.Warn().Msg("REDIS_URL not set, webhook delivery de-duplication disabled")
	}

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	memberRepo := postgres.NewWorkspaceMemberRepository(pool)
	projectRepo := postgres.NewProjectRepository(pool)
	transactor := postgres.NewWorkspaceTransactor(pool)

	// WebSocket hub for live workspace updates
	hub := websocket.NewHub()

	// Initialize services
	identitySyncService := service.NewIdentitySyncService(userRepo, workspaceRepo, memberRepo, transactor)
	identitySyncService.SetEventPublisher(hub)
	workspaceService := service.NewWorkspaceService(workspaceRepo, memberRepo, userRepo, projectRepo)
	workspaceService.SetEventPublisher(hub)

	// Initialize auth middleware
	authMiddleware, err := middleware.NewAuthMiddleware(cfg.AuthIssuerURL, cfg.AuthAudience, cfg.AuthAuthorizedParties)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create auth middleware")
	}

	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimit.RequestsPerMinute, cfg.RateLimit.Burst)
	defer rateLimiter.Stop()

	// Webhook verification
	verifier, err := webhook.NewVerifier(cfg.WebhookSecret)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create webhook verifier")
	}
	schemas, err := webhook.NewSchemaValidator()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to compile webhook schemas")
	}

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(pool)
	workspaceHandler := handler.NewWorkspaceHandler(workspaceService)
	webhookHandler := handler.NewWebhookHandler(identitySyncService, verifier, schemas, deliveries)
	wsHandler := handler.NewWebSocketHandler(hub, websocket.NewAuthorizer(authMiddleware, workspaceService), cfg.CORSOrigins)
	openAPIHandler := handler.NewOpenAPIHandler(cfg.PublicURL, cfg.Env)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Request body limit
	e.Use(echomiddleware.BodyLimit("1M"))

	// Register routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, healthHandler, workspaceHandler, webhookHandler, wsHandler, openAPIHandler)

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.CloseAll()

	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
