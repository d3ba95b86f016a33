package handler

import (
	"net/http"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/middleware"
	"github.com/dafibh/nexus/nexus-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// WorkspaceHandler handles workspace-related HTTP requests
type WorkspaceHandler struct {
	workspaceService *service.WorkspaceService
}

// NewWorkspaceHandler creates a new WorkspaceHandler
func NewWorkspaceHandler(workspaceService *service.WorkspaceService) *WorkspaceHandler {
	return &WorkspaceHandler{workspaceService: workspaceService}
}

// WorkspacesResponse is the body of GET /workspaces
type WorkspacesResponse struct {
	Workspaces []*domain.WorkspaceDetail `json:"workspaces"`
}

// AddMemberRequest is the body of POST /workspaces/members
type AddMemberRequest struct {
	Email       string  `json:"email"`
	Role        string  `json:"role"`
	WorkspaceID string  `json:"workspaceId"`
	Message     *string `json:"message,omitempty"`
}

// AddMemberResponse is the body of a successful add-member call
type AddMemberResponse struct {
	Member  *domain.WorkspaceMember `json:"member"`
	Message string                  `json:"message"`
}

// ListWorkspaces godoc
// @Summary List the caller's workspaces
// @Description Every workspace the caller belongs to, with owner, members and the project tree
// @Tags workspaces
// @Produce json
// @Security BearerAuth
// @Success 200 {object} WorkspacesResponse
// @Failure 401 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /workspaces [get]
func (h *WorkspaceHandler) ListWorkspaces(c echo.Context) error {
	principalID := middleware.GetPrincipalID(c)
	if principalID == "" {
		return NewUnauthorizedError(c, "Unauthorized")
	}

	workspaces, err := h.workspaceService.ListForUser(c.Request().Context(), principalID)
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, WorkspacesResponse{Workspaces: workspaces})
}

// AddMember godoc
// @Summary Add a member to a workspace
// @Description Adds an existing user by email, or updates their role and message. The caller must be a workspace admin.
// @Tags workspaces
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddMemberRequest true "Member to add"
// @Success 200 {object} AddMemberResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /workspaces/members [post]
func (h *WorkspaceHandler) AddMember(c echo.Context) error {
	principalID := middleware.GetPrincipalID(c)
	if principalID == "" {
		return NewUnauthorizedError(c, "Unauthorized")
	}

	var req AddMemberRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body")
	}

	member, err := h.workspaceService.AddMember(c.Request().Context(), principalID, domain.AddMemberInput{
		Email:       req.Email,
		Role:        domain.WorkspaceRole(req.Role),
		WorkspaceID: req.WorkspaceID,
		Message:     req.Message,
	})
	if err != nil {
		return respondServiceError(c, err)
	}

	return c.JSON(http.StatusOK, AddMemberResponse{
		Member:  member,
		Message: "Member added successfully",
	})
}
