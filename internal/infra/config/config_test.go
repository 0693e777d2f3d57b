package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, kv map[string]string) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "TELEGRAM_TOKEN", "ADMIN_TELEGRAM_ID", "NOTIFY_CHAT_ID", "NOTIFY_DRIVER",
		"REMINDER_USER_ID", "CRON_SPEC_REMINDER_POLL", "CACHE_DRIVER", "CACHE_PATH", "LOG_LEVEL", "ENVIRONMENT",
	} {
		t.Setenv(k, kv[k])
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{"DATABASE_URL": "postgres://localhost/app"})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NotifyDriverLog, cfg.NotifyDriver)
	assert.Equal(t, "@every 60s", cfg.CronSpecPoll)
	assert.Equal(t, "sqlite", cfg.CacheDriver)
	assert.Equal(t, "data/reminders.db", cfg.CachePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
}

func TestLoad_TelegramDriver(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":      "postgres://localhost/app",
		"TELEGRAM_TOKEN":    "token",
		"ADMIN_TELEGRAM_ID": "42",
		"REMINDER_USER_ID":  " user-1 ",
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, NotifyDriverTelegram, cfg.NotifyDriver)
	assert.Equal(t, int64(42), cfg.AdminTelegramID)
	assert.Equal(t, int64(42), cfg.NotifyChatID)
	assert.Equal(t, "user-1", cfg.ReminderUserID)
}

func TestLoad_Errors(t *testing.T) {
	cases := map[string]map[string]string{
		"missing database":   {},
		"bad admin id":       {"DATABASE_URL": "x", "ADMIN_TELEGRAM_ID": "abc"},
		"telegram no token":  {"DATABASE_URL": "x", "NOTIFY_DRIVER": "telegram", "ADMIN_TELEGRAM_ID": "1"},
		"telegram no admin":  {"DATABASE_URL": "x", "TELEGRAM_TOKEN": "t"},
		"unknown driver":     {"DATABASE_URL": "x", "NOTIFY_DRIVER": "sms"},
		"bad notify chat id": {"DATABASE_URL": "x", "NOTIFY_CHAT_ID": "chat"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			setEnv(t, env)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
