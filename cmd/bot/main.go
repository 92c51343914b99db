package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"

	"github.com/kutkeldi-dev/telegram-financial-bot/internal/bot"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/conversation"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/database"
	apperrors "github.com/kutkeldi-dev/telegram-financial-bot/internal/errors"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/expense"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/health"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/middleware"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/mirror"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/notification"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/repository"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/scheduler"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/state"
	"github.com/kutkeldi-dev/telegram-financial-bot/internal/user"
	"github.com/kutkeldi-dev/telegram-financial-bot/pkg/config"
	"github.com/kutkeldi-dev/telegram-financial-bot/pkg/graceful"
	"github.com/kutkeldi-dev/telegram-financial-bot/pkg/logger"
	appredis "github.com/kutkeldi-dev/telegram-financial-bot/pkg/redis"

	_ "github.com/lib/pq"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, v, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.Sentry.DSN,
			Environment: cfg.AppEnv,
		}); err != nil {
			return fmt.Errorf("init sentry: %w", err)
		}
		defer sentry.Flush(2 * time.Second)
	}

	log := logger.New(logger.Options{
		Level:         cfg.LogLevel,
		File:          cfg.LogFile,
		SentryEnabled: cfg.Sentry.Enabled,
	})
	slog.SetDefault(log)
	config.Watch(v, log)

	log.Info("starting expense bot", "env", cfg.AppEnv, "log_level", cfg.LogLevel)

	reminderHour, reminderMinute, err := cfg.Reminder.ReminderAt()
	if err != nil {
		return err
	}
	loc, err := cfg.Reminder.Location()
	if err != nil {
		return fmt.Errorf("load timezone: %w", err)
	}

	db, err := sql.Open("postgres", cfg.DB.DSN())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil {
			log.Error("error closing database", "error", cerr)
		}
	}()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}

	if err := database.NewMigrator(db, log).ApplyDir(ctx, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	// Sessions live in Redis when configured, so drafts survive restarts.
	var storage state.Storage = state.NewMemoryStorage()
	redisClient, err := connectRedis(ctx, cfg, log)
	if err != nil {
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
		storage = state.NewRedisStorage(redisClient, log)
	}

	fsm := state.NewStateMachine(storage, log, redisClient)

	userRepo := repository.NewUserRepository(db, log)
	expenseRepo := repository.NewExpenseRepository(db, log)
	reminderRepo := repository.NewReminderRepository(db, log)

	users := user.NewService(userRepo, cfg.Auth.Codes, log)

	sink, err := buildSink(ctx, cfg, log)
	if err != nil {
		return err
	}

	expenses := expense.NewService(expenseRepo, reminderRepo, sink, log, loc)
	errHandler := apperrors.NewHandler(log, cfg.Sentry.Enabled)
	flow := conversation.NewFlow(fsm, expenses, errHandler, log, loc)

	rateLimitMw := middleware.NewRateLimitMiddleware(20, time.Minute, log)
	go rateLimitMw.RunCleanup(ctx, 10*time.Minute, time.Hour)

	b, err := bot.New(cfg, log, flow, users, expenseRepo, rateLimitMw, loc)
	if err != nil {
		return err
	}

	notifier := notification.NewTelegramNotifier(b.Telebot(), log)
	sched := scheduler.New(clockwork.NewRealClock(), users, reminderRepo, notifier, log, loc, reminderHour, reminderMinute)
	sched.Start()
	defer sched.Stop()

	checker := health.NewChecker(log)
	checker.AddCheck("database", health.NewDBChecker(db))
	checker.AddCheck("telegram", health.NewTelegramChecker(b.Telebot()))
	if redisClient != nil {
		checker.AddCheck("redis", health.NewRedisChecker(redisClient))
	}

	opsErr := make(chan error, 1)
	go func() {
		opsErr <- serveOps(ctx, cfg, log, checker)
	}()

	go b.Start()
	defer b.Stop()

	select {
	case err := <-opsErr:
		if err != nil {
			return fmt.Errorf("ops server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("expense bot shutting down")

	return nil
}

func connectRedis(ctx context.Context, cfg *config.Config, log *slog.Logger) (client *redis.Client, err error) {
	if cfg.Redis.Addr == "" {
		log.Info("redis not configured, sessions kept in memory")
		return nil, nil
	}

	client, err = appredis.New(ctx, cfg.Redis)
	if err != nil {
		return nil, err
	}

	log.Info("connected to redis", "addr", cfg.Redis.Addr)

	return client, nil
}

func buildSink(ctx context.Context, cfg *config.Config, log *slog.Logger) (mirror.Sink, error) {
	if !cfg.Sheets.Enabled {
		log.Info("sheets mirror disabled")
		return mirror.NopSink{}, nil
	}

	sink, err := mirror.NewSheetsSink(ctx, cfg.Sheets.SpreadsheetID, cfg.Sheets.SheetName, cfg.Sheets.CredentialsFile, log)
	if err != nil {
		return nil, fmt.Errorf("init sheets mirror: %w", err)
	}

	log.Info("sheets mirror enabled", "spreadsheet_id", cfg.Sheets.SpreadsheetID, "sheet", cfg.Sheets.SheetName)

	return sink, nil
}

func serveOps(ctx context.Context, cfg *config.Config, log *slog.Logger, checker *health.Checker) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.Handle("/healthz", checker.Handler())

	handler := logger.Middleware(middleware.Logging(log)(mux))

	srv := &http.Server{
		Addr:    cfg.Server.Port,
		Handler: handler,
	}

	return graceful.NewServer(log, srv, cfg.Server.ShutdownTimeout).ListenAndServe(ctx)
}
