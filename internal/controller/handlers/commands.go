package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/Freeeeeet/moments_bot/internal/controller/keyboard"
	"github.com/Freeeeeet/moments_bot/internal/i18n"
	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil {
		return
	}

	locale := i18n.LocaleEN
	if update.Message.From != nil {
		locale = i18n.GetLocale(update.Message.From.LanguageCode)
	}

	text := i18n.T(locale, "bot.hello") + "\n\n" + i18n.T(locale, "bot.startDescription")

	markup := keyboard.NewBuilder().
		Row(keyboard.URLButton(i18n.T(locale, "bot.openApp"), fmt.Sprintf("https://t.me/%s?startapp", h.botUsername))).
		Row(keyboard.URLButton(i18n.T(locale, "bot.addToGroup"), fmt.Sprintf("https://t.me/%s?startgroup=", h.botUsername))).
		Build()

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        text,
		ReplyMarkup: markup,
	})
	if err != nil {
		h.logger.Error("Failed to send start message", zap.Error(err))
	}
}

// HandleSettings обрабатывает команду /settings.
// Без аргументов показывает текущие настройки чата, с аргументами
// (/settings <perDay> <from> <to> [minutes]) сохраняет новые - только
// для администраторов.
func (h *Handlers) HandleSettings(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	chatID := update.Message.Chat.ID
	locale := i18n.GetLocale(update.Message.From.LanguageCode)

	if update.Message.Chat.Type != models.ChatTypeGroup && update.Message.Chat.Type != models.ChatTypeSupergroup {
		h.reply(ctx, b, chatID, i18n.T(locale, "bot.settingsGroupsOnly"))
		return
	}

	chat, err := h.chatService.GetChat(ctx, chatID)
	if err != nil {
		h.logger.Error("Failed to get chat for settings",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		return
	}
	if chat == nil {
		return // Бот в чате, но чат не зарегистрирован - не отвечаем
	}
	if chat.LanguageCode != "" {
		locale = i18n.GetLocale(chat.LanguageCode)
	}

	args := strings.Fields(update.Message.Text)[1:]

	if len(args) == 0 {
		text := i18n.Render(i18n.T(locale, "bot.settingsCurrent"), map[string]string{
			"perDay":  strconv.Itoa(chat.NotificationsPerDay),
			"from":    strconv.Itoa(chat.NotificationRange.From),
			"to":      strconv.Itoa(chat.NotificationRange.To),
			"minutes": strconv.Itoa(chat.MinutesTakePhoto),
		})
		h.reply(ctx, b, chatID, text)
		return
	}

	isAdmin, err := h.tg.IsChatAdmin(ctx, chatID, update.Message.From.ID)
	if err != nil {
		h.logger.Error("Failed to check admin status",
			zap.Int64("chat_id", chatID),
			zap.Int64("user_id", update.Message.From.ID),
			zap.Error(err))
		return
	}
	if !isAdmin {
		h.reply(ctx, b, chatID, i18n.T(locale, "bot.settingsAdminsOnly"))
		return
	}

	perDay, window, minutes, ok := parseSettingsArgs(args, chat.MinutesTakePhoto)
	if !ok {
		h.reply(ctx, b, chatID, i18n.T(locale, "bot.settingsInvalid"))
		return
	}

	if err := h.chatService.UpdateSettings(ctx, chatID, perDay, window, minutes); err != nil {
		h.logger.Warn("Settings update rejected",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
		h.reply(ctx, b, chatID, i18n.T(locale, "bot.settingsInvalid"))
		return
	}

	h.reply(ctx, b, chatID, i18n.T(locale, "bot.settingsUpdated"))
}

// parseSettingsArgs разбирает аргументы /settings: perDay, from, to и
// опционально minutes (если не задан, сохраняется текущее значение)
func parseSettingsArgs(args []string, currentMinutes int) (int, model.TimeRange, int, bool) {
	if len(args) < 3 || len(args) > 4 {
		return 0, model.TimeRange{}, 0, false
	}

	numbers := make([]int, 0, len(args))
	for _, arg := range args {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return 0, model.TimeRange{}, 0, false
		}
		numbers = append(numbers, n)
	}

	minutes := currentMinutes
	if len(numbers) == 4 {
		minutes = numbers[3]
	}

	return numbers[0], model.TimeRange{From: numbers[1], To: numbers[2]}, minutes, true
}

func (h *Handlers) reply(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send reply",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}
