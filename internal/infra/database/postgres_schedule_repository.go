package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"projectflow_reminder/internal/domain/schedule"
)

const scheduleColumns = `id, user_id, title, description, start_date, end_date, date, status, created_at`

// A missing range end falls back to the legacy date column, as schedule.Range does.
const scheduleCoversDay = `(COALESCE(start_date, date) = $3::date
                      OR COALESCE(end_date, date) = $3::date
                      OR (COALESCE(start_date, date) <= $3::date AND COALESCE(end_date, date) >= $3::date))`

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type PostgresScheduleRepository struct {
	db querier
}

func NewPostgresScheduleRepository(db *sql.DB) *PostgresScheduleRepository {
	return &PostgresScheduleRepository{db: db}
}

func (r *PostgresScheduleRepository) ListOpenCoveringDay(ctx context.Context, userID string, day time.Time) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
               FROM schedules
               WHERE user_id = $1
                 AND NOT (status::text = ANY($2))
                 AND ` + scheduleCoversDay + `
               ORDER BY id
               LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(terminalScheduleStatuses()), day.Format("2006-01-02"), candidateLimit)
	if err != nil {
		return nil, wrapQueryError(err, TableSchedules, "listing schedules covering day")
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func (r *PostgresScheduleRepository) ListOpenByOwner(ctx context.Context, userID string) ([]*schedule.Schedule, error) {
	query := `SELECT ` + scheduleColumns + `
               FROM schedules
               WHERE user_id = $1 AND NOT (status::text = ANY($2))
               ORDER BY created_at
               LIMIT $3`

	rows, err := r.db.QueryContext(ctx, query, userID, pq.Array(terminalScheduleStatuses()), candidateLimit)
	if err != nil {
		return nil, wrapQueryError(err, TableSchedules, "listing open schedules")
	}
	defer rows.Close()
	return scanSchedules(rows)
}

func terminalScheduleStatuses() []string {
	out := make([]string, 0, len(schedule.TerminalStatuses))
	for _, s := range schedule.TerminalStatuses {
		out = append(out, string(s))
	}
	return out
}

func scanSchedules(rows *sql.Rows) ([]*schedule.Schedule, error) {
	schedules := make([]*schedule.Schedule, 0)
	for rows.Next() {
		s := &schedule.Schedule{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.Title, &s.Description, &s.StartDate, &s.EndDate, &s.LegacyDate, &s.Status, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning schedule: %w", err)
		}
		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapQueryError(err, TableSchedules, "iterating schedules")
	}
	return schedules, nil
}
