package workitem

import "context"

// Repository defines the read operations the reminder engine runs against work items.
type Repository interface {
	// ListOpenByAssignee returns non-terminal work items assigned to the user.
	ListOpenByAssignee(ctx context.Context, assigneeID string) ([]*WorkItem, error)
}
