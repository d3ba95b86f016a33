package postgres

import (
	"context"
	"errors"

	"github.com/dafibh/nexus/nexus-backend/db/sqlc"
	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserRepository implements domain.UserRepository using PostgreSQL
type UserRepository struct {
	queries *sqlc.Queries
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{queries: sqlc.New(pool)}
}

// GetByID retrieves a user by their provider-issued ID
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := r.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return sqlcUserToDomain(user), nil
}

// GetByEmail retrieves a user by email address
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return sqlcUserToDomain(user), nil
}

// Upsert creates the user or overwrites its profile fields
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) (*domain.User, error) {
	upserted, err := r.queries.UpsertUser(ctx, sqlc.UpsertUserParams{
		ID:       user.ID,
		Email:    user.Email,
		Name:     user.Name,
		ImageUrl: user.ImageURL,
	})
	if err != nil {
		return nil, mapWriteError(err)
	}
	return sqlcUserToDomain(upserted), nil
}

// Delete removes a user by ID
func (r *UserRepository) Delete(ctx context.Context, id string) error {
	rows, err := r.queries.DeleteUser(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// Helper functions

func sqlcUserToDomain(u sqlc.User) *domain.User {
	return &domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		ImageURL:  u.ImageUrl,
		CreatedAt: u.CreatedAt.Time,
		UpdatedAt: u.UpdatedAt.Time,
	}
}
