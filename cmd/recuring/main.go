package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"recuring/internal/api"
	"recuring/internal/config"
	"recuring/internal/logging"
	"recuring/internal/notify"
	"recuring/internal/repository"
	"recuring/internal/service"
)

const sessionPurgeInterval = 15 * time.Minute

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped with error", "error", err)
		os.Exit(1)
	}
	logger.Info("shutdown complete")
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	loc, err := cfg.Location()
	if err != nil {
		return fmt.Errorf("timezone: %w", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	sessions := service.NewMemorySessionStore(cfg.SessionTTL)
	authSvc := service.NewAuthService(userRepo, sessions)
	taskSvc := service.NewTaskService(taskRepo)

	notifier, err := buildNotifier(cfg, logger)
	if err != nil {
		return fmt.Errorf("notifier: %w", err)
	}
	reminderSvc := service.NewReminderService(
		userRepo, taskRepo, service.NewDigestBuilder(cfg.AppName), notifier, loc,
		service.WithSendTimeout(cfg.ReminderSendTimeout),
		service.WithLogger(logger),
	)

	scheduler := service.NewSchedulerService(loc, logger)
	if _, err := scheduler.ScheduleInterval(sessionPurgeInterval, func() {
		if n := sessions.PurgeExpired(); n > 0 {
			logger.Debug("expired sessions purged", "count", n, "active", sessions.Len())
		}
	}); err != nil {
		return fmt.Errorf("schedule session purge: %w", err)
	}

	reminders, err := service.NewReminderScheduler(scheduler, reminderSvc, cfg.ReminderTime, logger)
	if err != nil {
		return err
	}
	if err := reminders.Start(); err != nil {
		return err
	}
	defer reminders.Stop()

	handler := api.NewHandler(authSvc, taskSvc, reminderSvc.Today, logger)
	server := api.NewServer(cfg.HTTPAddr, handler.Router(cfg.AllowedOrigins), logger)

	logger.Info("recuring started", "addr", cfg.HTTPAddr, "notifier", cfg.Notifier, "timezone", loc.String())
	if err := server.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// buildNotifier picks the digest transport and mirrors into Telegram when a
// bot token is configured.
func buildNotifier(cfg config.Config, logger *slog.Logger) (notify.Notifier, error) {
	var primary notify.Notifier
	switch cfg.Notifier {
	case "smtp":
		primary = notify.NewSMTP(cfg.SMTPServer, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPassword, cfg.EmailFrom)
	case "postmark":
		primary = notify.NewPostmark(cfg.PostmarkToken, cfg.EmailFrom)
	default:
		primary = notify.NewLog(logger)
	}

	if cfg.TelegramToken == "" {
		return primary, nil
	}
	tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
	if err != nil {
		return nil, err
	}
	return notify.Multi{primary, tg}, nil
}
