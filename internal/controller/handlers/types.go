package handlers

import (
	"github.com/Freeeeeet/moments_bot/internal/service"
	"github.com/Freeeeeet/moments_bot/internal/telegram"
	"go.uber.org/zap"
)

// Handlers содержит все зависимости для обработки обновлений от Telegram
type Handlers struct {
	chatService   *service.ChatService
	momentService *service.MomentService
	tg            *telegram.Client
	botUsername   string
	logger        *zap.Logger
}

// NewHandlers создаёт новый обработчик команд
func NewHandlers(
	chatService *service.ChatService,
	momentService *service.MomentService,
	tg *telegram.Client,
	botUsername string,
	logger *zap.Logger,
) *Handlers {
	return &Handlers{
		chatService:   chatService,
		momentService: momentService,
		tg:            tg,
		botUsername:   botUsername,
		logger:        logger,
	}
}
