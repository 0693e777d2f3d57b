package schedule

import (
	"context"
	"time"
)

// Repository defines the read operations the reminder engine runs against schedules.
type Repository interface {
	// ListOpenCoveringDay returns the owner's non-terminal schedules whose start date,
	// end date, or start..end range matches day.
	ListOpenCoveringDay(ctx context.Context, userID string, day time.Time) ([]*Schedule, error)
	// ListOpenByOwner returns all non-terminal schedules of the owner.
	ListOpenByOwner(ctx context.Context, userID string) ([]*Schedule, error)
}
