package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/nexus/nexus-backend/db/sqlc"
	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkspaceRepository implements domain.WorkspaceRepository using PostgreSQL
type WorkspaceRepository struct {
	queries *sqlc.Queries
}

// NewWorkspaceRepository creates a new WorkspaceRepository
func NewWorkspaceRepository(pool *pgxpool.Pool) *WorkspaceRepository {
	return newWorkspaceRepository(sqlc.New(pool))
}

func newWorkspaceRepository(queries *sqlc.Queries) *WorkspaceRepository {
	return &WorkspaceRepository{queries: queries}
}

// GetByID retrieves a workspace by its ID
func (r *WorkspaceRepository) GetByID(ctx context.Context, id string) (*domain.Workspace, error) {
	workspace, err := r.queries.GetWorkspaceByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, err
	}
	return sqlcWorkspaceToDomain(workspace), nil
}

// ListByMember retrieves every workspace the user belongs to
func (r *WorkspaceRepository) ListByMember(ctx context.Context, userID string) ([]*domain.Workspace, error) {
	rows, err := r.queries.ListWorkspacesByMember(ctx, userID)
	if err != nil {
		return nil, err
	}
	workspaces := make([]*domain.Workspace, 0, len(rows))
	for _, w := range rows {
		workspaces = append(workspaces, sqlcWorkspaceToDomain(w))
	}
	return workspaces, nil
}

// Upsert creates the workspace or refreshes its name, slug and image.
// The owner is only set on insert.
func (r *WorkspaceRepository) Upsert(ctx context.Context, workspace *domain.Workspace) (*domain.Workspace, error) {
	upserted, err := r.queries.UpsertWorkspace(ctx, sqlc.UpsertWorkspaceParams{
		ID:       workspace.ID,
		Name:     workspace.Name,
		Slug:     workspace.Slug,
		OwnerID:  stringPtrToPgText(workspace.OwnerID),
		ImageUrl: workspace.ImageURL,
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return sqlcWorkspaceToDomain(upserted), nil
}

// Update updates name, slug and image of an existing workspace
func (r *WorkspaceRepository) Update(ctx context.Context, workspace *domain.Workspace) (*domain.Workspace, error) {
	updated, err := r.queries.UpdateWorkspace(ctx, sqlc.UpdateWorkspaceParams{
		ID:       workspace.ID,
		Name:     workspace.Name,
		Slug:     workspace.Slug,
		ImageUrl: workspace.ImageURL,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWorkspaceNotFound
		}
		return nil, mapWriteError(err)
	}
	return sqlcWorkspaceToDomain(updated), nil
}

// Delete deletes a workspace by its ID; members and projects cascade
func (r *WorkspaceRepository) Delete(ctx context.Context, id string) error {
	rows, err := r.queries.DeleteWorkspace(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrWorkspaceNotFound
	}
	return nil
}

// Helper functions

func sqlcWorkspaceToDomain(w sqlc.Workspace) *domain.Workspace {
	return &domain.Workspace{
		ID:          w.ID,
		Name:        w.Name,
		Slug:        w.Slug,
		Description: pgTextToStringPtr(w.Description),
		OwnerID:     pgTextToStringPtr(w.OwnerID),
		ImageURL:    w.ImageUrl,
		CreatedAt:   w.CreatedAt.Time,
		UpdatedAt:   w.UpdatedAt.Time,
	}
}
