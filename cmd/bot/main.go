package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/Freeeeeet/moments_bot/internal/app"
	"github.com/Freeeeeet/moments_bot/internal/config"
	"github.com/Freeeeeet/moments_bot/internal/controller"
	"github.com/Freeeeeet/moments_bot/internal/repository"
	"github.com/Freeeeeet/moments_bot/internal/service"
	"github.com/Freeeeeet/moments_bot/internal/telegram"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
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

	logger.Sugar().Infow("Starting moments bot",
		"environment", cfg.Environment,
		"bot_username", cfg.BotUsername)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create database pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Failed to ping database", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsPath)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Контроллер создаётся после бота (клиенту нужен *bot.Bot),
	// поэтому default handler привязываем через замыкание
	var botController *controller.BotController

	b, err := bot.New(cfg.TelegramToken, bot.WithDefaultHandler(func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if botController != nil {
			botController.HandleUpdate(ctx, b, update)
		}
	}))
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	tgClient := telegram.NewClient(b, logger)

	chatRepo := repository.NewChatRepository(pool)
	notificationRepo := repository.NewNotificationRepository(pool)
	momentRepo := repository.NewMomentRepository(pool)
	photoRepo := repository.NewPhotoRepository(pool)
	userRepo := repository.NewUserRepository(pool)

	notificationService := service.NewNotificationService(
		notificationRepo,
		chatRepo,
		momentRepo,
		tgClient,
		cfg.BotUsername,
		logger,
	)
	chatService := service.NewChatService(chatRepo, notificationService, logger)
	momentService := service.NewMomentService(
		momentRepo,
		photoRepo,
		userRepo,
		tgClient,
		tgClient,
		logger,
	)

	botController = controller.NewBotController(b, chatService, momentService, tgClient, cfg.BotUsername, logger)
	if err := botController.RegisterHandlers(ctx); err != nil {
		logger.Fatal("Failed to register bot handlers", zap.Error(err))
	}

	scheduler := app.NewScheduler(notificationService, momentService, logger)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	botController.Start(ctx)

	logger.Info("Moments bot stopped")
}
