package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/dafibh/nexus/nexus-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// WorkspaceService handles workspace-related business logic
type WorkspaceService struct {
	workspaceRepo  domain.WorkspaceRepository
	memberRepo     domain.WorkspaceMemberRepository
	userRepo       domain.UserRepository
	projectRepo    domain.ProjectRepository
	eventPublisher websocket.EventPublisher
}

// NewWorkspaceService creates a new WorkspaceService
func NewWorkspaceService(
	workspaceRepo domain.WorkspaceRepository,
	memberRepo domain.WorkspaceMemberRepository,
	userRepo domain.UserRepository,
	projectRepo domain.ProjectRepository,
) *WorkspaceService {
	return &WorkspaceService{
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		userRepo:      userRepo,
		projectRepo:   projectRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *WorkspaceService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *WorkspaceService) publishEvent(workspaceID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// ListForUser returns every workspace the user belongs to with owner, members and project tree
func (s *WorkspaceService) ListForUser(ctx context.Context, userID string) ([]*domain.WorkspaceDetail, error) {
	workspaces, err := s.workspaceRepo.ListByMember(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}

	details := make([]*domain.WorkspaceDetail, 0, len(workspaces))
	for _, ws := range workspaces {
		detail, err := s.loadDetail(ctx, ws)
		if err != nil {
			return nil, err
		}
		details = append(details, detail)
	}
	return details, nil
}

func (s *WorkspaceService) loadDetail(ctx context.Context, ws *domain.Workspace) (*domain.WorkspaceDetail, error) {
	members, err := s.memberRepo.ListByWorkspace(ctx, ws.ID)
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", ws.ID, err)
	}
	projects, err := s.projectRepo.ListByWorkspace(ctx, ws.ID)
	if err != nil {
		return nil, fmt.Errorf("listing projects of %s: %w", ws.ID, err)
	}

	detail := &domain.WorkspaceDetail{
		Workspace: *ws,
		Members:   members,
		Projects:  projects,
	}

	if ws.OwnerID != nil {
		owner, err := s.userRepo.GetByID(ctx, *ws.OwnerID)
		switch {
		case err == nil:
			detail.Owner = owner
		case errors.Is(err, domain.ErrUserNotFound):
		default:
			return nil, fmt.Errorf("loading owner of %s: %w", ws.ID, err)
		}
	}
	return detail, nil
}

// AddMember lets a workspace admin add an existing user by email, or change their role.
// Users are never created here.
func (s *WorkspaceService) AddMember(ctx context.Context, callerID string, input domain.AddMemberInput) (*domain.WorkspaceMember, error) {
	input.Email = strings.TrimSpace(input.Email)
	input.WorkspaceID = strings.TrimSpace(input.WorkspaceID)
	if err := input.Validate(); err != nil {
		return nil, err
	}

	target, err := s.userRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return nil, err
	}

	workspace, err := s.workspaceRepo.GetByID(ctx, input.WorkspaceID)
	if err != nil {
		return nil, err
	}
	members, err := s.memberRepo.ListByWorkspace(ctx, workspace.ID)
	if err != nil {
		return nil, fmt.Errorf("listing members of %s: %w", workspace.ID, err)
	}
	if !hasAdmin(members, callerID) {
		log.Warn().
			Str("caller_id", callerID).
			Str("workspace_id", workspace.ID).
			Msg("Add member rejected: caller is not a workspace admin")
		return nil, domain.ErrNotWorkspaceAdmin
	}

	member, err := s.memberRepo.Upsert(ctx, &domain.WorkspaceMember{
		UserID:      target.ID,
		WorkspaceID: workspace.ID,
		Role:        input.Role,
		Message:     input.Message,
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", target.ID).
			Str("workspace_id", workspace.ID).
			Msg("Failed to add member")
		return nil, fmt.Errorf("adding member: %w", err)
	}
	member.User = target

	log.Info().
		Str("caller_id", callerID).
		Str("user_id", member.UserID).
		Str("workspace_id", member.WorkspaceID).
		Str("role", string(member.Role)).
		Msg("Member added")
	s.publishEvent(member.WorkspaceID, websocket.MemberAdded(member))
	return member, nil
}

// IsMember reports whether the user belongs to the workspace
func (s *WorkspaceService) IsMember(ctx context.Context, userID, workspaceID string) (bool, error) {
	_, err := s.memberRepo.Get(ctx, userID, workspaceID)
	if errors.Is(err, domain.ErrMemberNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func hasAdmin(members []*domain.WorkspaceMember, userID string) bool {
	for _, m := range members {
		if m.UserID == userID && m.Role == domain.WorkspaceRoleAdmin {
			return true
		}
	}
	return false
}
