package telegram

import (
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// RegisterBotCommands registers /start and /help.
func RegisterBotCommands(b *telebot.Bot, adminTelegramID int64, baseLogger *logrus.Entry) {
	startHelpLogger := baseLogger.WithField("handler_group", "start_help")

	b.Handle("/start", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/start").WithField("sender_id", senderID)
		logCtx.Info("Processing /start command")

		if senderID == adminTelegramID {
			return c.Send("Hi! I send reminders about your schedules and team work items. Use /help for the list of commands.")
		}
		logCtx.Info("User is unknown")
		return c.Send("Hi! This bot delivers ProjectFlow reminders to its owner only.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		senderID := c.Sender().ID
		logCtx := startHelpLogger.WithField("command", "/help").WithField("sender_id", senderID)
		logCtx.Info("Processing /help command")

		if senderID != adminTelegramID {
			return c.Send("No commands are available for you.")
		}

		var helpText strings.Builder
		helpText.WriteString("Available commands:\n\n")
		helpText.WriteString("`/login <user_id>`\n - Start reminders for a user.\n\n")
		helpText.WriteString("`/logout`\n - Stop reminders.\n\n")
		helpText.WriteString("`/reset_reminders`\n - Forget which reminders were already sent.\n\n")
		helpText.WriteString("`/notifications_on`\n - Re-check that this chat can receive reminders.\n\n")
		helpText.WriteString("`/status`\n - Show loop state.\n\n")
		helpText.WriteString("`/help`\n - Show this message.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})
}
