package telegram

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"projectflow_reminder/internal/domain/reminder"
	domainTelegram "projectflow_reminder/internal/domain/telegram"
)

// NotificationCapability presents reminders as messages in one Telegram chat.
// Permission is granted while the bot can reach the chat.
type NotificationCapability struct {
	client domainTelegram.Client
	chatID int64
	logger *logrus.Entry

	mu         sync.Mutex
	permission reminder.Permission
	presented  map[string]struct{} // tags already sent in this process
}

// NewNotificationCapability checks the chat before returning, so the first
// reminder pass already sees the resolved permission.
func NewNotificationCapability(client domainTelegram.Client, chatID int64, logger *logrus.Entry) *NotificationCapability {
	c := &NotificationCapability{
		client:    client,
		chatID:    chatID,
		logger:    logger.WithFields(logrus.Fields{"component": "telegram_capability", "chat_id": chatID}),
		presented: make(map[string]struct{}),
	}
	c.permission = c.checkChat()
	return c
}

func (c *NotificationCapability) Permission() reminder.Permission {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.permission
}

// RequestPermission checks the chat again and stores the outcome.
func (c *NotificationCapability) RequestPermission(ctx context.Context) (reminder.Permission, error) {
	p := c.checkChat()
	c.mu.Lock()
	c.permission = p
	c.mu.Unlock()
	return p, nil
}

func (c *NotificationCapability) checkChat() reminder.Permission {
	if c.chatID == 0 {
		c.logger.Warn("No notification chat configured")
		return reminder.PermissionDenied
	}
	if err := c.client.ChatReachable(c.chatID); err != nil {
		c.logger.WithError(err).Warn("Notification chat is not reachable")
		return reminder.PermissionDenied
	}
	return reminder.PermissionGranted
}

// Present sends the notification. A tag already presented is collapsed.
func (c *NotificationCapability) Present(ctx context.Context, title string, opts reminder.PresentOptions) error {
	if opts.Tag != "" {
		c.mu.Lock()
		_, seen := c.presented[opts.Tag]
		c.presented[opts.Tag] = struct{}{}
		c.mu.Unlock()
		if seen {
			c.logger.WithField("reminder_id", opts.Tag).Debug("Duplicate presentation collapsed")
			return nil
		}
	}

	text := title
	if opts.Body != "" {
		text += "\n\n" + opts.Body
	}
	if err := c.client.SendMessage(c.chatID, text, &telebot.SendOptions{ParseMode: telebot.ModeDefault}); err != nil {
		if opts.Tag != "" {
			c.mu.Lock()
			delete(c.presented, opts.Tag)
			c.mu.Unlock()
		}
		return fmt.Errorf("failed to send notification to chat %d: %w", c.chatID, err)
	}
	return nil
}
