package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/studyspace/internal/app"
	"github.com/Freeeeeet/studyspace/internal/cache"
	"github.com/Freeeeeet/studyspace/internal/config"
	"github.com/Freeeeeet/studyspace/internal/notify"
	"github.com/Freeeeeet/studyspace/internal/repository"
	"github.com/Freeeeeet/studyspace/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting study space service",
		zap.String("environment", cfg.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	if version, err := migrator.Version(ctx); err == nil {
		logger.Info("Database schema ready", zap.Int64("version", version))
	}
	migrator.Close()

	userRepo := repository.NewUserRepository()
	spaceRepo := repository.NewSpaceRepository()
	bookingRepo := repository.NewBookingRepository()
	equipmentRepo := repository.NewEquipmentRepository()
	qrRepo := repository.NewQRRepository()
	configRepo := repository.NewConfigRepository()

	// Redis опционален: без него статистика читается напрямую из базы
	var usageCache *cache.Cache
	if cfg.RedisAddr != "" {
		usageCache = cache.New(cfg.RedisAddr, cfg.CacheTTL)
		defer usageCache.Close()
	}

	mailSender := notify.NewMailSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.MailFrom)

	var telegramSender notify.Sender
	if cfg.TelegramToken != "" {
		sender, err := notify.NewTelegramSender(cfg.TelegramToken)
		if err != nil {
			logger.Fatal("Failed to create telegram sender", zap.Error(err))
		}
		telegramSender = sender
	}

	notifier := notify.NewNotifier(mailSender, telegramSender, logger)

	bookingService := service.NewBookingService(pool, userRepo, spaceRepo, bookingRepo, equipmentRepo, qrRepo, usageCache, logger)
	reconciler := service.NewReconcilerService(pool, bookingRepo, configRepo, bookingService, notifier, logger)

	scheduler := app.NewScheduler(reconciler, cfg.ReconcileInterval, cfg.ReminderInterval, logger)
	scheduler.Start(ctx)

	logger.Info("Service started, waiting for shutdown signal")

	<-ctx.Done()

	scheduler.Stop()
	logger.Info("Service stopped")
}
