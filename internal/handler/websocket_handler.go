package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/dafibh/nexus/nexus-backend/internal/websocket"
	ws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// SocketAuthorizer admits a socket for a workspace and returns the user behind the token.
// *websocket.Authorizer satisfies it.
type SocketAuthorizer interface {
	Authorize(ctx context.Context, token, workspaceID string) (userID string, err error)
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub            *websocket.Hub
	authorizer     SocketAuthorizer
	allowedOrigins map[string]bool
	upgrader       ws.Upgrader
}

// NewWebSocketHandler creates a new WebSocketHandler
func NewWebSocketHandler(hub *websocket.Hub, authorizer SocketAuthorizer, allowedOrigins []string) *WebSocketHandler {
	// Build origin lookup map
	originMap := make(map[string]bool)
	for _, origin := range allowedOrigins {
		originMap[origin] = true
	}

	h := &WebSocketHandler{
		hub:            hub,
		authorizer:     authorizer,
		allowedOrigins: originMap,
	}

	h.upgrader = ws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}

	return h
}

// checkOrigin validates the request origin against allowed origins
func (h *WebSocketHandler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Allow requests with no Origin header (e.g., same-origin or non-browser clients)
		return true
	}

	if h.allowedOrigins[origin] {
		return true
	}

	log.Warn().
		Str("origin", origin).
		Msg("WebSocket connection rejected: origin not allowed")
	return false
}

// HandleWS handles WebSocket connection requests at GET /ws?token=..&workspaceId=..
func (h *WebSocketHandler) HandleWS(c echo.Context) error {
	token := c.QueryParam("token")
	if token == "" {
		log.Debug().Msg("WebSocket connection rejected: missing token")
		return echo.NewHTTPError(http.StatusUnauthorized, "missing token")
	}

	workspaceID := c.QueryParam("workspaceId")
	if workspaceID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "workspaceId is required")
	}

	userID, err := h.authorizer.Authorize(c.Request().Context(), token, workspaceID)
	switch {
	case errors.Is(err, websocket.ErrInvalidToken):
		log.Debug().Err(err).Msg("WebSocket connection rejected: invalid token")
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
	case errors.Is(err, websocket.ErrNotMember):
		log.Debug().Str("workspace_id", workspaceID).Msg("WebSocket connection rejected: not a member")
		return echo.NewHTTPError(http.StatusUnauthorized, "not a workspace member")
	case err != nil:
		log.Error().Err(err).Str("workspace_id", workspaceID).Msg("WebSocket authorization failed")
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		log.Error().Err(err).Msg("WebSocket upgrade failed")
		return err
	}

	client := websocket.NewClient(conn, workspaceID, userID, h.hub)
	h.hub.Register(client)

	log.Info().
		Str("workspace_id", workspaceID).
		Str("user_id", userID).
		Str("client_id", client.ID()).
		Msg("WebSocket client connected")

	go client.WritePump()
	go client.ReadPump()

	return nil
}
