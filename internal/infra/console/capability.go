// Package console presents reminders through the application log. It is used
// when no Telegram bot is configured.
package console

import (
	"context"

	"github.com/sirupsen/logrus"

	"projectflow_reminder/internal/domain/reminder"
)

type Capability struct {
	logger *logrus.Entry
}

func NewCapability(logger *logrus.Entry) *Capability {
	return &Capability{logger: logger.WithField("component", "console_capability")}
}

func (c *Capability) Permission() reminder.Permission { return reminder.PermissionGranted }

func (c *Capability) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	return reminder.PermissionGranted, nil
}

func (c *Capability) Present(ctx context.Context, title string, opts reminder.PresentOptions) error {
	c.logger.WithFields(logrus.Fields{
		"icon":        opts.Icon,
		"reminder_id": opts.Tag,
		"body":        opts.Body,
	}).Info(title)
	return nil
}
