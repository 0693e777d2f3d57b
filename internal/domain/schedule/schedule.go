package schedule

import (
	"database/sql"
	"time"
)

// Status is the lifecycle state of a personal schedule.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// TerminalStatuses are excluded from reminder evaluation.
var TerminalStatuses = []Status{StatusCompleted, StatusCancelled}

// IsTerminal reports whether s is completed or cancelled.
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// Schedule represents a row of the 'schedules' table.
type Schedule struct {
	ID          int64
	UserID      string
	Title       string
	Description sql.NullString
	StartDate   sql.NullTime // planned start day
	EndDate     sql.NullTime // planned completion day
	LegacyDate  sql.NullTime // single-day 'date' column kept for old rows
	Status      Status
	CreatedAt   time.Time
}

// Range returns the day range of the schedule, falling back to the legacy
// single-day date when the range columns are empty.
func (s *Schedule) Range() (start, end sql.NullTime) {
	start, end = s.StartDate, s.EndDate
	if !start.Valid {
		start = s.LegacyDate
	}
	if !end.Valid {
		end = s.LegacyDate
	}
	return start, end
}
