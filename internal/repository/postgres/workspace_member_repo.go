package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/nexus/nexus-backend/db/sqlc"
	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkspaceMemberRepository implements domain.WorkspaceMemberRepository using PostgreSQL
type WorkspaceMemberRepository struct {
	queries *sqlc.Queries
}

// NewWorkspaceMemberRepository creates a new WorkspaceMemberRepository
func NewWorkspaceMemberRepository(pool *pgxpool.Pool) *WorkspaceMemberRepository {
	return newWorkspaceMemberRepository(sqlc.New(pool))
}

func newWorkspaceMemberRepository(queries *sqlc.Queries) *WorkspaceMemberRepository {
	return &WorkspaceMemberRepository{queries: queries}
}

// Get retrieves the membership of a user in a workspace
func (r *WorkspaceMemberRepository) Get(ctx context.Context, userID, workspaceID string) (*domain.WorkspaceMember, error) {
	member, err := r.queries.GetWorkspaceMember(ctx, sqlc.GetWorkspaceMemberParams{
		UserID:      userID,
		WorkspaceID: workspaceID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrMemberNotFound
		}
		return nil, err
	}
	return sqlcMemberToDomain(member), nil
}

// ListByWorkspace retrieves the members of a workspace with their user records
func (r *WorkspaceMemberRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.WorkspaceMember, error) {
	rows, err := r.queries.ListWorkspaceMembersWithUser(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	members := make([]*domain.WorkspaceMember, 0, len(rows))
	for _, row := range rows {
		member := sqlcMemberToDomain(row.WorkspaceMember)
		member.User = sqlcUserToDomain(row.User)
		members = append(members, member)
	}
	return members, nil
}

// Upsert inserts the membership or updates role and message of the existing pair.
// Conflicts on (user_id, workspace_id) resolve in the database, so concurrent calls converge to one row.
func (r *WorkspaceMemberRepository) Upsert(ctx context.Context, member *domain.WorkspaceMember) (*domain.WorkspaceMember, error) {
	id := member.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	upserted, err := r.queries.UpsertWorkspaceMember(ctx, sqlc.UpsertWorkspaceMemberParams{
		ID:          uuidToPgUUID(id),
		UserID:      member.UserID,
		WorkspaceID: member.WorkspaceID,
		Role:        string(member.Role),
		Message:     stringPtrToPgText(member.Message),
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return sqlcMemberToDomain(upserted), nil
}

// Delete removes the membership of a user in a workspace
func (r *WorkspaceMemberRepository) Delete(ctx context.Context, userID, workspaceID string) error {
	rows, err := r.queries.DeleteWorkspaceMember(ctx, sqlc.DeleteWorkspaceMemberParams{
		UserID:      userID,
		WorkspaceID: workspaceID,
	})
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrMemberNotFound
	}
	return nil
}

func sqlcMemberToDomain(m sqlc.WorkspaceMember) *domain.WorkspaceMember {
	return &domain.WorkspaceMember{
		ID:          pgUUIDToUUID(m.ID),
		UserID:      m.UserID,
		WorkspaceID: m.WorkspaceID,
		Role:        domain.WorkspaceRole(m.Role),
		Message:     pgTextToStringPtr(m.Message),
		CreatedAt:   m.CreatedAt.Time,
		UpdatedAt:   m.UpdatedAt.Time,
	}
}
