package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"

	"projectflow_reminder/internal/app"
	"projectflow_reminder/internal/domain/reminder"
	"projectflow_reminder/internal/infra/config"
	"projectflow_reminder/internal/infra/console"
	idb "projectflow_reminder/internal/infra/database"
	"projectflow_reminder/internal/infra/kvstore"
	"projectflow_reminder/internal/infra/logger"
	"projectflow_reminder/internal/infra/scheduler"
	"projectflow_reminder/internal/infra/telegram"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatalf("Could not load application configuration: %v", err)
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")
	mainLogger.WithFields(logrus.Fields{
		"environment":   cfg.Environment,
		"notify_driver": cfg.NotifyDriver,
		"cache_driver":  cfg.CacheDriver,
	}).Info("Configuration loaded")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := idb.NewPostgresConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not connect to database")
	}
	defer db.Close()
	mainLogger.Info("Database connection established successfully.")

	probe := idb.NewAvailabilityProbe(db)
	if msg := idb.MissingTablesMessage(probe.CheckRequired(ctx, idb.TableSchedules, idb.TableWorkItems)); msg != "" {
		mainLogger.Warn(msg)
	}

	store, err := kvstore.Open(kvstore.Config{Driver: cfg.CacheDriver, Path: cfg.CachePath}, logger.Component("kvstore"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not open reminder state store")
	}
	defer store.Close()

	cache := app.LoadRemindedCache(ctx, store, logger.Component("reminded_cache"))
	mainLogger.WithField("reminded", cache.Len()).Info("Reminder cache loaded")

	var (
		bot        *telebot.Bot
		capability reminder.Capability
	)
	switch cfg.NotifyDriver {
	case config.NotifyDriverTelegram:
		bot, err = telebot.NewBot(telebot.Settings{
			Token:  cfg.TelegramToken,
			Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
			OnError: func(err error, c telebot.Context) {
				logCtx := logger.Component("telebot").WithError(err)
				if c != nil && c.Sender() != nil && c.Chat() != nil {
					logCtx = logCtx.WithFields(logrus.Fields{"sender_id": c.Sender().ID, "chat_id": c.Chat().ID})
				}
				logCtx.Error("Telegram handler error")
			},
		})
		if err != nil {
			mainLogger.WithError(err).Fatal("Could not create Telegram bot")
		}
		capability = telegram.NewNotificationCapability(telegram.NewTelebotAdapter(bot), cfg.NotifyChatID, logger.Component("telegram"))
	default:
		capability = console.NewCapability(logger.Component("console"))
	}

	dispatcher := app.NewDispatcher(ctx, capability, logger.Component("dispatcher"))

	deps := app.EngineDeps{
		Probe:     probe,
		Cache:     cache,
		Notifier:  dispatcher,
		Schedules: idb.NewPostgresScheduleRepository(db),
		WorkItems: idb.NewPostgresWorkItemRepository(db),
		Logger:    logger.Component("engine"),
	}
	reminderScheduler, err := scheduler.NewReminderScheduler(deps.NewEngine, cfg.CronSpecPoll, logger.Component("scheduler"))
	if err != nil {
		mainLogger.WithError(err).Fatal("Could not create reminder scheduler")
	}

	sessions := app.NewSessionService(reminderScheduler, cache, dispatcher, cfg.AdminTelegramID)

	if bot != nil {
		handlerLogger := logger.Component("telegram_handlers")
		telegram.RegisterBotCommands(bot, cfg.AdminTelegramID, handlerLogger)
		telegram.RegisterSessionHandlers(ctx, bot, sessions, handlerLogger)
		go bot.Start()
		mainLogger.Info("Telegram command handlers registered.")
	}

	reminderScheduler.Start(cfg.ReminderUserID)
	if cfg.ReminderUserID == "" {
		mainLogger.Info("No REMINDER_USER_ID configured, waiting for /login")
	}

	<-ctx.Done()

	mainLogger.Info("Shutting down application...")
	reminderScheduler.Stop()
	if bot != nil {
		bot.Stop()
	}
	mainLogger.Info("Application shut down gracefully.")
}
