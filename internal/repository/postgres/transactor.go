package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/nexus/nexus-backend/db/sqlc"
	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

// WorkspaceTransactor implements domain.WorkspaceTransactor using PostgreSQL
type WorkspaceTransactor struct {
	pool    *pgxpool.Pool
	queries *sqlc.Queries
}

// NewWorkspaceTransactor creates a new WorkspaceTransactor
func NewWorkspaceTransactor(pool *pgxpool.Pool) *WorkspaceTransactor {
	return &WorkspaceTransactor{
		pool:    pool,
		queries: sqlc.New(pool),
	}
}

type txRepositories struct {
	workspaces *WorkspaceRepository
	members    *WorkspaceMemberRepository
}

func (t txRepositories) Workspaces() domain.WorkspaceRepository {
	return t.workspaces
}

func (t txRepositories) Members() domain.WorkspaceMemberRepository {
	return t.members
}

// WithTx runs fn in a transaction. If fn returns an error the transaction is rolled back.
func (t *WorkspaceTransactor) WithTx(ctx context.Context, fn func(repos domain.WorkspaceTxRepositories) error) error {
	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	// no-op once committed
	defer tx.Rollback(ctx) //nolint:errcheck

	qtx := t.queries.WithTx(tx)
	repos := txRepositories{
		workspaces: newWorkspaceRepository(qtx),
		members:    newWorkspaceMemberRepository(qtx),
	}
	if err := fn(repos); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
