package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"projectflow_reminder/internal/domain/workitem"
)

type PostgresWorkItemRepository struct {
	db *sql.DB
}

func NewPostgresWorkItemRepository(db *sql.DB) *PostgresWorkItemRepository {
	return &PostgresWorkItemRepository{db: db}
}

func (r *PostgresWorkItemRepository) ListOpenByAssignee(ctx context.Context, assigneeID string) ([]*workitem.WorkItem, error) {
	query := `SELECT id, title, assignee_id, status, planned_start_time
               FROM work_items
               WHERE assignee_id = $1 AND NOT (status::text = ANY($2))
               ORDER BY planned_start_time NULLS LAST, id
               LIMIT $3`

	terminal := make([]string, 0, len(workitem.TerminalStatuses))
	for _, s := range workitem.TerminalStatuses {
		terminal = append(terminal, string(s))
	}

	rows, err := r.db.QueryContext(ctx, query, assigneeID, pq.Array(terminal), candidateLimit)
	if err != nil {
		return nil, wrapQueryError(err, TableWorkItems, "listing work items by assignee")
	}
	defer rows.Close()

	items := make([]*workitem.WorkItem, 0)
	for rows.Next() {
		it := &workitem.WorkItem{}
		if err := rows.Scan(&it.ID, &it.Title, &it.AssigneeID, &it.Status, &it.PlannedStartTime); err != nil {
			return nil, fmt.Errorf("error scanning work item: %w", err)
		}
		items = append(items, it)
	}
	if err = rows.Err(); err != nil {
		return nil, wrapQueryError(err, TableWorkItems, "iterating work items")
	}
	return items, nil
}
