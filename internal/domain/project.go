package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Project belongs to a workspace and groups tasks
type Project struct {
	ID          uuid.UUID        `json:"id"`
	WorkspaceID string           `json:"workspaceId"`
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	Priority    string           `json:"priority"`
	Status      string           `json:"status"`
	TeamLeadID  *string          `json:"team_lead"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
	Progress    int32            `json:"progress"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
	Tasks       []*Task          `json:"tasks"`
	Members     []*ProjectMember `json:"members"`
}

// ProjectMember links a user to a project
type ProjectMember struct {
	ID        uuid.UUID `json:"id"`
	UserID    string    `json:"userId"`
	ProjectID uuid.UUID `json:"projectId"`
	User      *User     `json:"user"`
}

// Task is a unit of work inside a project
type Task struct {
	ID          uuid.UUID  `json:"id"`
	ProjectID   uuid.UUID  `json:"projectId"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Type        string     `json:"type"`
	Priority    string     `json:"priority"`
	AssigneeID  *string    `json:"assigneeId"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	Assignee    *User      `json:"assignee"`
	Comments    []*Comment `json:"comments"`
}

// Comment is a user's note on a task
type Comment struct {
	ID        uuid.UUID `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	TaskID    uuid.UUID `json:"taskId"`
	CreatedAt time.Time `json:"createdAt"`
	User      *User     `json:"user"`
}

// ProjectRepository reads the project tree of a workspace
type ProjectRepository interface {
	// ListByWorkspace returns projects with tasks (assignee, comments with user) and members (with user).
	ListByWorkspace(ctx context.Context, workspaceID string) ([]*Project, error)
}
