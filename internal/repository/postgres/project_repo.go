package postgres

import (
	"context"
	"fmt"

	"github.com/dafibh/nexus/nexus-backend/db/sqlc"
	"github.com/dafibh/nexus/nexus-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ProjectRepository implements domain.ProjectRepository using PostgreSQL
type ProjectRepository struct {
	queries *sqlc.Queries
}

// NewProjectRepository creates a new ProjectRepository
func NewProjectRepository(pool *pgxpool.Pool) *ProjectRepository {
	return &ProjectRepository{queries: sqlc.New(pool)}
}

// ListByWorkspace loads the project tree of a workspace with four flat queries
// and stitches tasks, comments and members onto their parents.
func (r *ProjectRepository) ListByWorkspace(ctx context.Context, workspaceID string) ([]*domain.Project, error) {
	projectRows, err := r.queries.ListProjectsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	if len(projectRows) == 0 {
		return []*domain.Project{}, nil
	}

	taskRows, err := r.queries.ListTasksByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	commentRows, err := r.queries.ListCommentsByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing comments: %w", err)
	}
	memberRows, err := r.queries.ListProjectMembersByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, fmt.Errorf("listing project members: %w", err)
	}

	projects := make([]*domain.Project, 0, len(projectRows))
	byID := make(map[uuid.UUID]*domain.Project, len(projectRows))
	for _, p := range projectRows {
		project := sqlcProjectToDomain(p)
		projects = append(projects, project)
		byID[project.ID] = project
	}

	tasksByID := make(map[uuid.UUID]*domain.Task, len(taskRows))
	for _, row := range taskRows {
		task := sqlcTaskRowToDomain(row)
		tasksByID[task.ID] = task
		if project, ok := byID[task.ProjectID]; ok {
			project.Tasks = append(project.Tasks, task)
		}
	}

	for _, row := range commentRows {
		comment := &domain.Comment{
			ID:        pgUUIDToUUID(row.Comment.ID),
			Content:   row.Comment.Content,
			UserID:    row.Comment.UserID,
			TaskID:    pgUUIDToUUID(row.Comment.TaskID),
			CreatedAt: row.Comment.CreatedAt.Time,
			User:      sqlcUserToDomain(row.User),
		}
		if task, ok := tasksByID[comment.TaskID]; ok {
			task.Comments = append(task.Comments, comment)
		}
	}

	for _, row := range memberRows {
		member := &domain.ProjectMember{
			ID:        pgUUIDToUUID(row.ProjectMember.ID),
			UserID:    row.ProjectMember.UserID,
			ProjectID: pgUUIDToUUID(row.ProjectMember.ProjectID),
			User:      sqlcUserToDomain(row.User),
		}
		if project, ok := byID[member.ProjectID]; ok {
			project.Members = append(project.Members, member)
		}
	}

	return projects, nil
}

// Helper functions

func sqlcProjectToDomain(p sqlc.Project) *domain.Project {
	return &domain.Project{
		ID:          pgUUIDToUUID(p.ID),
		WorkspaceID: p.WorkspaceID,
		Name:        p.Name,
		Description: pgTextToStringPtr(p.Description),
		Priority:    p.Priority,
		Status:      p.Status,
		TeamLeadID:  pgTextToStringPtr(p.TeamLeadID),
		StartDate:   pgTimestamptzToTimePtr(p.StartDate),
		EndDate:     pgTimestamptzToTimePtr(p.EndDate),
		Progress:    p.Progress,
		CreatedAt:   p.CreatedAt.Time,
		UpdatedAt:   p.UpdatedAt.Time,
		Tasks:       []*domain.Task{},
		Members:     []*domain.ProjectMember{},
	}
}

func sqlcTaskRowToDomain(t sqlc.ListTasksByWorkspaceRow) *domain.Task {
	task := &domain.Task{
		ID:          pgUUIDToUUID(t.ID),
		ProjectID:   pgUUIDToUUID(t.ProjectID),
		Title:       t.Title,
		Description: pgTextToStringPtr(t.Description),
		Status:      t.Status,
		Type:        t.Type,
		Priority:    t.Priority,
		AssigneeID:  pgTextToStringPtr(t.AssigneeID),
		DueDate:     pgTimestamptzToTimePtr(t.DueDate),
		CreatedAt:   t.CreatedAt.Time,
		UpdatedAt:   t.UpdatedAt.Time,
		Comments:    []*domain.Comment{},
	}
	if t.AssigneeID.Valid && t.AssigneeEmail.Valid {
		task.Assignee = &domain.User{
			ID:       t.AssigneeID.String,
			Email:    t.AssigneeEmail.String,
			Name:     t.AssigneeName.String,
			ImageURL: t.AssigneeImageUrl.String,
		}
	}
	return task
}
