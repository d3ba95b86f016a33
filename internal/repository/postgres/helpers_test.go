package postgres

import (
	"github.com/dafibh/nexus/nexus-backend/db/sqlc"
	"github.com/google/uuid"
)

func sqlcTaskRowFixture() sqlc.ListTasksByWorkspaceRow {
	return sqlc.ListTasksByWorkspaceRow{
		ID:        uuidToPgUUID(uuid.New()),
		ProjectID: uuidToPgUUID(uuid.New()),
		Title:     "Write docs",
		Status:    "TODO",
		Type:      "TASK",
		Priority:  "MEDIUM",
	}
}
