package controller

import (
	"context"

	"github.com/Freeeeeet/moments_bot/internal/controller/handlers"
	"github.com/Freeeeeet/moments_bot/internal/service"
	"github.com/Freeeeeet/moments_bot/internal/telegram"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

func NewBotController(
	botInstance *bot.Bot,
	chatService *service.ChatService,
	momentService *service.MomentService,
	tgClient *telegram.Client,
	botUsername string,
	logger *zap.Logger,
) *BotController {
	cmdHandlers := handlers.NewHandlers(
		chatService,
		momentService,
		tgClient,
		botUsername,
		logger,
	)

	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, c.handlers.HandleStart)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/settings", bot.MatchTypePrefix, c.handlers.HandleSettings)

	// Устанавливаем меню команд
	return c.setCommands(ctx)
}

// HandleUpdate принимает обновления, которые не попали в зарегистрированные
// обработчики: изменения статуса бота в чатах и сообщения с фотографиями
func (c *BotController) HandleUpdate(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.MyChatMember != nil {
		c.handlers.HandleMyChatMember(ctx, b, update)
		return
	}

	if update.Message != nil && len(update.Message.Photo) > 0 {
		c.handlers.HandlePhotoMessage(ctx, b, update)
	}
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "settings", Description: "⚙️ Настройки уведомлений (для админов чата)"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})

	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("✅ Bot commands menu set")
	return nil
}

// Start запускает бота
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
