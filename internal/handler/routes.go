package handler

import (
	"github.com/dafibh/nexus/nexus-backend/internal/middleware"
	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	authMiddleware *middleware.AuthMiddleware,
	rateLimiter *middleware.RateLimiter,
	healthHandler *HealthHandler,
	workspaceHandler *WorkspaceHandler,
	webhookHandler *WebhookHandler,
	wsHandler *WebSocketHandler,
	openAPIHandler *OpenAPIHandler,
) {
	e.GET("/health", healthHandler.Health)

	// API documentation
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	e.GET("/openapi.json", openAPIHandler.Serve)

	// Identity provider webhooks (signature-verified, no session)
	e.POST("/webhooks/clerk", webhookHandler.HandleClerk)

	// Live workspace updates (token in query)
	e.GET("/ws", wsHandler.HandleWS)

	// Workspace routes (protected)
	workspaces := e.Group("/workspaces")
	workspaces.Use(authMiddleware.Authenticate())
	workspaces.Use(middleware.RateLimitMiddleware(rateLimiter))
	workspaces.Use(middleware.Protect())
	workspaces.GET("", workspaceHandler.ListWorkspaces)
	workspaces.POST("/members", workspaceHandler.AddMember)
}
