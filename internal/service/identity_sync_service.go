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

// IdentitySyncService mirrors identity-provider users, organizations and memberships
// into the store. Every operation is idempotent so redelivered events converge.
type IdentitySyncService struct {
	userRepo       domain.UserRepository
	workspaceRepo  domain.WorkspaceRepository
	memberRepo     domain.WorkspaceMemberRepository
	transactor     domain.WorkspaceTransactor
	eventPublisher websocket.EventPublisher
}

// NewIdentitySyncService creates a new IdentitySyncService
func NewIdentitySyncService(
	userRepo domain.UserRepository,
	workspaceRepo domain.WorkspaceRepository,
	memberRepo domain.WorkspaceMemberRepository,
	transactor domain.WorkspaceTransactor,
) *IdentitySyncService {
	return &IdentitySyncService{
		userRepo:      userRepo,
		workspaceRepo: workspaceRepo,
		memberRepo:    memberRepo,
		transactor:    transactor,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *IdentitySyncService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// publishEvent publishes a WebSocket event if a publisher is configured
func (s *IdentitySyncService) publishEvent(workspaceID string, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(workspaceID, event)
	}
}

// SyncUser upserts a user. Created and updated events take the same path.
func (s *IdentitySyncService) SyncUser(ctx context.Context, in domain.IdentityUser) (*domain.User, error) {
	user, err := s.userRepo.Upsert(ctx, &domain.User{
		ID:       in.ID,
		Email:    in.Email,
		Name:     DisplayName(in.FirstName, in.LastName),
		ImageURL: in.ImageURL,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", in.ID).Msg("Failed to upsert user")
		return nil, fmt.Errorf("upserting user %s: %w", in.ID, err)
	}

	log.Info().Str("user_id", user.ID).Msg("User synced")
	return user, nil
}

// DeleteUser removes a user. An unknown user counts as already deleted.
func (s *IdentitySyncService) DeleteUser(ctx context.Context, id string) error {
	err := s.userRepo.Delete(ctx, id)
	if errors.Is(err, domain.ErrUserNotFound) {
		log.Info().Str("user_id", id).Msg("User already absent")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", id).Msg("Failed to delete user")
		return fmt.Errorf("deleting user %s: %w", id, err)
	}

	log.Info().Str("user_id", id).Msg("User deleted")
	return nil
}

// CreateWorkspace upserts the workspace and its creator's ADMIN membership in one transaction.
// The owner is only written when the workspace row is inserted.
func (s *IdentitySyncService) CreateWorkspace(ctx context.Context, in domain.IdentityOrganization) (*domain.Workspace, error) {
	var created *domain.Workspace
	var ownerID *string
	if in.CreatedBy != "" {
		ownerID = &in.CreatedBy
	}

	err := s.transactor.WithTx(ctx, func(repos domain.WorkspaceTxRepositories) error {
		workspace, err := repos.Workspaces().Upsert(ctx, &domain.Workspace{
			ID:       in.ID,
			Name:     in.Name,
			Slug:     in.Slug,
			OwnerID:  ownerID,
			ImageURL: in.ImageURL,
		})
		if err != nil {
			return fmt.Errorf("upserting workspace: %w", err)
		}

		if ownerID != nil {
			if _, err := repos.Members().Upsert(ctx, &domain.WorkspaceMember{
				UserID:      *ownerID,
				WorkspaceID: workspace.ID,
				Role:        domain.WorkspaceRoleAdmin,
			}); err != nil {
				return fmt.Errorf("upserting owner membership: %w", err)
			}
		}

		created = workspace
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("workspace_id", in.ID).Str("owner_id", in.CreatedBy).Msg("Failed to create workspace")
		return nil, fmt.Errorf("creating workspace %s: %w", in.ID, err)
	}

	if ownerID == nil {
		log.Warn().Str("workspace_id", created.ID).Msg("Workspace created without creator, no admin membership written")
	}
	log.Info().Str("workspace_id", created.ID).Str("owner_id", in.CreatedBy).Msg("Workspace created")
	return created, nil
}

// UpdateWorkspace refreshes name, slug and image. Ownership and membership are left untouched.
// An unknown workspace is an error so the event is redelivered after the create lands.
func (s *IdentitySyncService) UpdateWorkspace(ctx context.Context, in domain.IdentityOrganization) (*domain.Workspace, error) {
	workspace, err := s.workspaceRepo.Update(ctx, &domain.Workspace{
		ID:       in.ID,
		Name:     in.Name,
		Slug:     in.Slug,
		ImageURL: in.ImageURL,
	})
	if err != nil {
		log.Error().Err(err).Str("workspace_id", in.ID).Msg("Failed to update workspace")
		return nil, fmt.Errorf("updating workspace %s: %w", in.ID, err)
	}

	log.Info().Str("workspace_id", workspace.ID).Msg("Workspace updated")
	s.publishEvent(workspace.ID, websocket.WorkspaceUpdated(workspace))
	return workspace, nil
}

// DeleteWorkspace removes a workspace; the store cascades to its children.
// An unknown workspace counts as already deleted.
func (s *IdentitySyncService) DeleteWorkspace(ctx context.Context, id string) error {
	err := s.workspaceRepo.Delete(ctx, id)
	if errors.Is(err, domain.ErrWorkspaceNotFound) {
		log.Info().Str("workspace_id", id).Msg("Workspace already absent")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Str("workspace_id", id).Msg("Failed to delete workspace")
		return fmt.Errorf("deleting workspace %s: %w", id, err)
	}

	log.Info().Str("workspace_id", id).Msg("Workspace deleted")
	s.publishEvent(id, websocket.WorkspaceDeleted(map[string]string{"id": id}))
	return nil
}

// UpsertMembership writes the membership with the role mapped from the provider tag.
// Without a user ID the user is resolved by email.
func (s *IdentitySyncService) UpsertMembership(ctx context.Context, in domain.IdentityMembership) (*domain.WorkspaceMember, error) {
	userID := in.UserID
	if userID == "" {
		if in.UserEmail == "" {
			return nil, fmt.Errorf("membership for workspace %s: %w", in.OrganizationID, domain.ErrUserNotFound)
		}
		user, err := s.userRepo.GetByEmail(ctx, in.UserEmail)
		if err != nil {
			log.Error().Err(err).Str("workspace_id", in.OrganizationID).Msg("Failed to resolve membership user by email")
			return nil, fmt.Errorf("resolving membership user: %w", err)
		}
		userID = user.ID
	}

	member, err := s.memberRepo.Upsert(ctx, &domain.WorkspaceMember{
		UserID:      userID,
		WorkspaceID: in.OrganizationID,
		Role:        domain.RoleFromProviderTag(in.RoleTag),
	})
	if err != nil {
		log.Error().Err(err).
			Str("user_id", userID).
			Str("workspace_id", in.OrganizationID).
			Msg("Failed to upsert membership")
		return nil, fmt.Errorf("upserting membership: %w", err)
	}

	log.Info().
		Str("user_id", member.UserID).
		Str("workspace_id", member.WorkspaceID).
		Str("role", string(member.Role)).
		Msg("Membership synced")
	s.publishEvent(member.WorkspaceID, websocket.MemberAdded(member))
	return member, nil
}

// DeleteMembership removes a membership. An unknown pair counts as already deleted.
func (s *IdentitySyncService) DeleteMembership(ctx context.Context, userID, workspaceID string) error {
	err := s.memberRepo.Delete(ctx, userID, workspaceID)
	if errors.Is(err, domain.ErrMemberNotFound) {
		log.Info().Str("user_id", userID).Str("workspace_id", workspaceID).Msg("Membership already absent")
		return nil
	}
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("workspace_id", workspaceID).Msg("Failed to delete membership")
		return fmt.Errorf("deleting membership: %w", err)
	}

	log.Info().Str("user_id", userID).Str("workspace_id", workspaceID).Msg("Membership deleted")
	s.publishEvent(workspaceID, websocket.MemberRemoved(websocket.RemovedMember{
		UserID:      userID,
		WorkspaceID: workspaceID,
	}))
	return nil
}

// DisplayName joins first and last name, trimming the separator when either is missing
func DisplayName(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}
