package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// WorkspaceRole is the role a user holds inside a workspace
type WorkspaceRole string

const (
	WorkspaceRoleAdmin  WorkspaceRole = "ADMIN"
	WorkspaceRoleMember WorkspaceRole = "MEMBER"
)

// ProviderAdminRole is the identity provider's organization admin role tag
const ProviderAdminRole = "org:admin"

// IsValid reports whether r is one of the known roles
func (r WorkspaceRole) IsValid() bool {
	return r == WorkspaceRoleAdmin || r == WorkspaceRoleMember
}

// RoleFromProviderTag maps a provider organization role tag to a workspace role.
// Only the admin tag yields ADMIN; every other tag, known or not, yields MEMBER.
func RoleFromProviderTag(tag string) WorkspaceRole {
	if tag == ProviderAdminRole {
		return WorkspaceRoleAdmin
	}
	return WorkspaceRoleMember
}

// WorkspaceMember links a user to a workspace. (UserID, WorkspaceID) is unique.
type WorkspaceMember struct {
	ID          uuid.UUID     `json:"id"`
	UserID      string        `json:"userId"`
	WorkspaceID string        `json:"workspaceId"`
	Role        WorkspaceRole `json:"role"`
	Message     *string       `json:"message"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	User        *User         `json:"user,omitempty"`
}

// WorkspaceMemberRepository defines the interface for membership persistence operations
type WorkspaceMemberRepository interface {
	Get(ctx context.Context, userID, workspaceID string) (*WorkspaceMember, error)
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*WorkspaceMember, error)
	// Upsert inserts or updates the (UserID, WorkspaceID) row.
	// A nil Message keeps the stored message.
	Upsert(ctx context.Context, member *WorkspaceMember) (*WorkspaceMember, error)
	// Delete returns ErrMemberNotFound when no row was removed.
	Delete(ctx context.Context, userID, workspaceID string) error
}

// AddMemberInput is the manual add-member request of a workspace admin
type AddMemberInput struct {
	Email       string        `json:"email"`
	Role        WorkspaceRole `json:"role"`
	WorkspaceID string        `json:"workspaceId"`
	Message     *string       `json:"message,omitempty"`
}

// Validate checks the required fields and the role
func (in AddMemberInput) Validate() error {
	if in.Email == "" {
		return ErrEmailRequired
	}
	if in.WorkspaceID == "" {
		return ErrWorkspaceIDRequired
	}
	if in.Role == "" {
		return ErrRoleRequired
	}
	if !in.Role.IsValid() {
		return ErrInvalidRole
	}
	return nil
}
