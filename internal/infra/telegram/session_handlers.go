package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"projectflow_reminder/internal/app"
	"projectflow_reminder/internal/domain/reminder"
)

const msgNotAuthorized = "Error: you are not allowed to control reminders."

// RegisterSessionHandlers registers the commands that control the reminder engine.
func RegisterSessionHandlers(ctx context.Context, b *telebot.Bot, sessions *app.SessionService, baseLogger *logrus.Entry) {
	b.Handle("/login", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/login",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		// Expected format: /login <user_id>
		args := c.Args()
		if len(args) != 1 {
			return c.Send("Invalid command format. Use: /login <user_id>")
		}
		userID := args[0]
		handlerLogger = handlerLogger.WithField("user_id", userID)

		if err := sessions.Login(ctx, c.Sender().ID, userID); err != nil {
			switch {
			case errors.Is(err, app.ErrNotAuthorized):
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgNotAuthorized)
			case errors.Is(err, app.ErrUserIDRequired):
				return c.Send("Error: user id cannot be empty.")
			default:
				handlerLogger.WithError(err).Error("Failed to start reminders")
				return c.Send(fmt.Sprintf("Failed to start reminders: %s", err.Error()))
			}
		}

		handlerLogger.Info("Reminders started")
		return c.Send(fmt.Sprintf("Reminders are now running for user %s.", userID))
	})

	b.Handle("/logout", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/logout",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if err := sessions.Logout(ctx, c.Sender().ID); err != nil {
			if errors.Is(err, app.ErrNotAuthorized) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgNotAuthorized)
			}
			handlerLogger.WithError(err).Error("Failed to stop reminders")
			return c.Send(fmt.Sprintf("Failed to stop reminders: %s", err.Error()))
		}
		return c.Send("Reminders stopped.")
	})

	b.Handle("/reset_reminders", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/reset_reminders",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		if err := sessions.ResetReminders(ctx, c.Sender().ID); err != nil {
			if errors.Is(err, app.ErrNotAuthorized) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgNotAuthorized)
			}
			handlerLogger.WithError(err).Error("Failed to reset reminders")
			return c.Send(fmt.Sprintf("Failed to reset reminders: %s", err.Error()))
		}
		handlerLogger.Info("Reminder cache reset")
		return c.Send("Reminder history cleared. Reminders may fire again.")
	})

	b.Handle("/notifications_on", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/notifications_on",
			"sender_id": c.Sender().ID,
		})
		handlerLogger.Info("Command received")

		p, err := sessions.EnableNotifications(ctx, c.Sender().ID)
		if err != nil {
			if errors.Is(err, app.ErrNotAuthorized) {
				handlerLogger.Warn("Unauthorized access attempt")
				return c.Send(msgNotAuthorized)
			}
			handlerLogger.WithError(err).Error("Failed to request permission")
			return c.Send(fmt.Sprintf("Failed to enable notifications: %s", err.Error()))
		}
		if p != reminder.PermissionGranted {
			return c.Send("Notifications are still disabled: the reminder chat cannot be reached.")
		}
		return c.Send("Notifications enabled.")
	})

	b.Handle("/status", func(c telebot.Context) error {
		handlerLogger := baseLogger.WithFields(logrus.Fields{
			"handler":   "/status",
			"sender_id": c.Sender().ID,
		})

		st, err := sessions.Status(ctx, c.Sender().ID)
		if err != nil {
			handlerLogger.WithError(err).Warn("Status refused")
			return c.Send(msgNotAuthorized)
		}

		var response strings.Builder
		response.WriteString("--- Reminder status ---\n")
		if st.ActiveUser == "" {
			response.WriteString("Loop: stopped\n")
		} else {
			response.WriteString(fmt.Sprintf("Loop: running for %s\n", st.ActiveUser))
		}
		response.WriteString(fmt.Sprintf("Permission: %s\n", st.Permission))
		response.WriteString(fmt.Sprintf("Reminded items: %d", st.Reminded))
		return c.Send(response.String())
	})
}
