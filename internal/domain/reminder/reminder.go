// Package reminder holds the types shared by the reminder engine and its collaborators.
package reminder

import (
	"context"
	"errors"
	"fmt"
)

// ID names one (entity, condition) pair for deduplication. Equality is exact.
type ID string

// StagnantTasksID is the fixed identifier of the aggregate stagnant-items reminder.
const StagnantTasksID ID = "stagnant-tasks"

func ScheduleID(id int64) ID { return ID(fmt.Sprintf("schedule-%d", id)) }

func WorkItemID(id int64) ID { return ID(fmt.Sprintf("workitem-%d", id)) }

// ErrCollectionUnavailable marks a query against a collection that is not provisioned.
var ErrCollectionUnavailable = errors.New("collection unavailable")

// Notification is what the engine decided to tell the user.
type Notification struct {
	Title string
	Body  string
	Tag   ID
}

// Permission is the presentation permission state.
type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// PresentOptions are passed along with the title to the presentation layer.
type PresentOptions struct {
	Body string
	Tag  string // collapse key, set to the reminder ID
	Icon string
}

// Capability presents notifications to the user. Implementations live in infra.
type Capability interface {
	Permission() Permission
	RequestPermission(ctx context.Context) (Permission, error)
	Present(ctx context.Context, title string, opts PresentOptions) error
}
