package app

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"projectflow_reminder/internal/domain/reminder"
)

// NotificationIcon is attached to every presented notification.
const NotificationIcon = "🔔"

// Dispatcher decides whether a notification reaches the presentation capability.
type Dispatcher struct {
	capability reminder.Capability
	log        *logrus.Entry

	mu         sync.RWMutex
	permission reminder.Permission
}

// NewDispatcher initializes the permission state from the capability. When it is
// still default, permission is requested once in the background.
func NewDispatcher(ctx context.Context, capability reminder.Capability, log *logrus.Entry) *Dispatcher {
	d := &Dispatcher{
		capability: capability,
		log:        log.WithField("component", "dispatcher"),
		permission: capability.Permission(),
	}
	if d.permission == reminder.PermissionDefault {
		go func() {
			if _, err := d.RequestPermission(ctx); err != nil {
				d.log.WithError(err).Warn("Initial permission request failed")
			}
		}()
	}
	return d
}

func (d *Dispatcher) Permission() reminder.Permission {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.permission
}

// RequestPermission asks the capability again and stores the outcome.
func (d *Dispatcher) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	p, err := d.capability.RequestPermission(ctx)
	if err != nil {
		return d.Permission(), err
	}
	d.mu.Lock()
	d.permission = p
	d.mu.Unlock()
	d.log.WithField("permission", p).Info("Notification permission resolved")
	return p, nil
}

// Notify logs the notification and presents it when permission is granted.
// Presentation failures are logged and not retried.
func (d *Dispatcher) Notify(ctx context.Context, n reminder.Notification) {
	logCtx := d.log.WithFields(logrus.Fields{
		"title":       n.Title,
		"body":        n.Body,
		"reminder_id": n.Tag,
	})
	logCtx.Info("Notification")

	if d.Permission() != reminder.PermissionGranted {
		logCtx.Debug("Permission not granted, notification not presented")
		return
	}

	err := d.capability.Present(ctx, n.Title, reminder.PresentOptions{
		Body: n.Body,
		Tag:  string(n.Tag),
		Icon: NotificationIcon,
	})
	if err != nil {
		logCtx.WithError(err).Warn("Failed to present notification")
	}
}
