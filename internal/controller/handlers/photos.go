package handlers

import (
	"context"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandlePhotoMessage принимает фото, отправленные в групповой чат.
// Фото попадает в открытый момент чата; если открытого момента нет,
// сообщение молча игнорируется.
func (h *Handlers) HandlePhotoMessage(ctx context.Context, b *bot.Bot, update *models.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || len(msg.Photo) == 0 {
		return
	}

	if msg.Chat.Type != models.ChatTypeGroup && msg.Chat.Type != models.ChatTypeSupergroup {
		return
	}

	// Telegram присылает фото в нескольких размерах, берём самый крупный
	largest := msg.Photo[len(msg.Photo)-1]

	user := &model.User{
		ID:           msg.From.ID,
		Username:     msg.From.Username,
		FirstName:    msg.From.FirstName,
		LastName:     msg.From.LastName,
		LanguageCode: msg.From.LanguageCode,
	}

	accepted, err := h.momentService.SubmitPhoto(ctx, msg.Chat.ID, user, largest.FileID)
	if err != nil {
		h.logger.Error("Failed to submit photo",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("user_id", msg.From.ID),
			zap.Error(err))
		return
	}

	if accepted {
		h.logger.Debug("Photo accepted into moment",
			zap.Int64("chat_id", msg.Chat.ID),
			zap.Int64("user_id", msg.From.ID))
	}
}
