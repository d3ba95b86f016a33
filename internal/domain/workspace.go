package domain

import (
	"context"
	"time"
)

// Workspace is the tenant unit, mirrored from an identity-provider organization
type Workspace struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Description *string   `json:"description"`
	OwnerID     *string   `json:"ownerId"`
	ImageURL    string    `json:"image_url"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WorkspaceDetail is the nested snapshot returned to a workspace member
type WorkspaceDetail struct {
	Workspace
	Owner    *User              `json:"owner"`
	Members  []*WorkspaceMember `json:"members"`
	Projects []*Project         `json:"projects"`
}

// WorkspaceRepository defines the interface for workspace persistence operations
type WorkspaceRepository interface {
	GetByID(ctx context.Context, id string) (*Workspace, error)
	ListByMember(ctx context.Context, userID string) ([]*Workspace, error)
	// Upsert inserts the workspace or refreshes name, slug and image.
	// OwnerID is only written on insert.
	Upsert(ctx context.Context, workspace *Workspace) (*Workspace, error)
	// Update returns ErrWorkspaceNotFound when the workspace does not exist.
	Update(ctx context.Context, workspace *Workspace) (*Workspace, error)
	// Delete returns ErrWorkspaceNotFound when no row was removed.
	Delete(ctx context.Context, id string) error
}

// WorkspaceTxRepositories exposes the repositories bound to a single transaction
type WorkspaceTxRepositories interface {
	Workspaces() WorkspaceRepository
	Members() WorkspaceMemberRepository
}

// WorkspaceTransactor runs fn inside one store transaction.
// Writes made through the provided repositories commit together or not at all.
type WorkspaceTransactor interface {
	WithTx(ctx context.Context, fn func(repos WorkspaceTxRepositories) error) error
}
