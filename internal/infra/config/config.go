package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Presentation drivers
const (
	NotifyDriverTelegram = "telegram"
	NotifyDriverLog      = "log"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DatabaseURL     string
	TelegramToken   string
	AdminTelegramID int64
	NotifyChatID    int64  // chat receiving reminders; defaults to the admin chat
	NotifyDriver    string // telegram or log
	ReminderUserID  string // user whose reminders run at startup; empty waits for /login
	CronSpecPoll    string
	CacheDriver     string // sqlite or file
	CachePath       string
	LogLevel        string
	Environment     string
}

// Load reads configuration from environment variables and .env file (if present).
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	cfg := &AppConfig{}
	var err error

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}

	cfg.TelegramToken = os.Getenv("TELEGRAM_TOKEN")

	if adminIDStr := os.Getenv("ADMIN_TELEGRAM_ID"); adminIDStr != "" {
		cfg.AdminTelegramID, err = strconv.ParseInt(adminIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_TELEGRAM_ID: %w", err)
		}
	}

	cfg.NotifyChatID = cfg.AdminTelegramID
	if chatIDStr := os.Getenv("NOTIFY_CHAT_ID"); chatIDStr != "" {
		cfg.NotifyChatID, err = strconv.ParseInt(chatIDStr, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid NOTIFY_CHAT_ID: %w", err)
		}
	}

	cfg.NotifyDriver = strings.ToLower(os.Getenv("NOTIFY_DRIVER"))
	if cfg.NotifyDriver == "" {
		cfg.NotifyDriver = NotifyDriverLog
		if cfg.TelegramToken != "" {
			cfg.NotifyDriver = NotifyDriverTelegram
		}
	}
	switch cfg.NotifyDriver {
	case NotifyDriverLog:
	case NotifyDriverTelegram:
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_TOKEN is not set")
		}
		if cfg.AdminTelegramID == 0 {
			return nil, fmt.Errorf("ADMIN_TELEGRAM_ID is not set")
		}
	default:
		return nil, fmt.Errorf("invalid NOTIFY_DRIVER %q", cfg.NotifyDriver)
	}

	cfg.ReminderUserID = strings.TrimSpace(os.Getenv("REMINDER_USER_ID"))

	cfg.CronSpecPoll = os.Getenv("CRON_SPEC_REMINDER_POLL")
	if cfg.CronSpecPoll == "" {
		cfg.CronSpecPoll = "@every 60s" // Default: every minute
	}

	cfg.CacheDriver = strings.ToLower(os.Getenv("CACHE_DRIVER"))
	if cfg.CacheDriver == "" {
		cfg.CacheDriver = "sqlite"
	}
	cfg.CachePath = os.Getenv("CACHE_PATH")
	if cfg.CachePath == "" {
		cfg.CachePath = "data/reminders.db"
	}

	cfg.LogLevel = strings.ToLower(os.Getenv("LOG_LEVEL"))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info" // Default log level
	}

	cfg.Environment = strings.ToLower(os.Getenv("ENVIRONMENT"))
	if cfg.Environment == "" {
		cfg.Environment = "development" // Default environment
	}

	return cfg, nil
}
