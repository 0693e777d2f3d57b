package workitem

import (
	"database/sql"
)

// Status is the lifecycle state of a team work item.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
	StatusBlocked    Status = "blocked"
)

// TerminalStatuses are excluded from reminder evaluation.
var TerminalStatuses = []Status{StatusCompleted, StatusCancelled}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// WorkItem represents a row of the 'work_items' table.
type WorkItem struct {
	ID               int64
	Title            string
	AssigneeID       sql.NullString
	Status           Status
	PlannedStartTime sql.NullTime
}
