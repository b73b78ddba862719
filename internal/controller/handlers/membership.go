package handlers

import (
	"context"

	"github.com/Freeeeeet/moments_bot/internal/i18n"
	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleMyChatMember обрабатывает изменение статуса бота в чате:
// добавили - регистрируем чат и приветствуем, удалили - деактивируем.
func (h *Handlers) HandleMyChatMember(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.MyChatMember == nil {
		return
	}

	upd := update.MyChatMember
	chat := upd.Chat

	if chat.Type != models.ChatTypeGroup && chat.Type != models.ChatTypeSupergroup {
		return
	}

	switch upd.NewChatMember.Type {
	case models.ChatMemberTypeMember, models.ChatMemberTypeAdministrator:
		h.handleBotAdded(ctx, b, upd)
	case models.ChatMemberTypeLeft, models.ChatMemberTypeBanned:
		if err := h.chatService.DeactivateChat(ctx, chat.ID); err != nil {
			h.logger.Error("Failed to deactivate chat",
				zap.Int64("chat_id", chat.ID),
				zap.Error(err))
		}
	}
}

func (h *Handlers) handleBotAdded(ctx context.Context, b *bot.Bot, upd *models.ChatMemberUpdated) {
	chat := upd.Chat
	languageCode := upd.From.LanguageCode

	memberCount, err := h.tg.GetChatMemberCount(ctx, chat.ID)
	if err != nil {
		// Не критично, обновим при следующем событии
		h.logger.Warn("Failed to get chat member count",
			zap.Int64("chat_id", chat.ID),
			zap.Error(err))
	}

	newChat := &model.Chat{
		ID:           chat.ID,
		Type:         model.ChatType(chat.Type),
		Title:        chat.Title,
		Username:     chat.Username,
		MemberCount:  memberCount,
		LanguageCode: languageCode,
	}

	if err := h.chatService.RegisterChat(ctx, newChat); err != nil {
		h.logger.Error("Failed to register chat",
			zap.Int64("chat_id", chat.ID),
			zap.Error(err))
		return
	}

	locale := i18n.GetLocale(languageCode)
	h.reply(ctx, b, chat.ID, i18n.T(locale, "bot.chatRegistered"))
}
