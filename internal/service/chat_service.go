package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"go.uber.org/zap"
)

type chatStore interface {
	Upsert(ctx context.Context, chat *model.Chat) error
	GetByID(ctx context.Context, chatID int64) (*model.Chat, error)
	UpdateSettings(ctx context.Context, chatID int64, perDay int, window model.TimeRange, minutesTakePhoto int) error
	SetActive(ctx context.Context, chatID int64, active bool) error
	UpdateMemberCount(ctx context.Context, chatID int64, memberCount int) error
}

type scheduleGenerator interface {
	GenerateForChat(ctx context.Context, chatID int64, perDay int, window model.TimeRange, forceImmediateStart bool) (int, error)
}

type ChatService struct {
	chatRepo  chatStore
	scheduler scheduleGenerator
	logger    *zap.Logger
}

func NewChatService(chatRepo chatStore, scheduler scheduleGenerator, logger *zap.Logger) *ChatService {
	return &ChatService{
		chatRepo:  chatRepo,
		scheduler: scheduler,
		logger:    logger,
	}
}

// RegisterChat регистрирует чат, в который добавили бота (или реактивирует,
// если бота вернули), и сразу генерирует расписание на остаток дня.
func (s *ChatService) RegisterChat(ctx context.Context, chat *model.Chat) error {
	chat.ID = model.NormalizeChatID(chat.ID)

	if chat.NotificationsPerDay == 0 {
		chat.NotificationsPerDay = model.DefaultNotificationsPerDay
	}
	if chat.NotificationRange.From == 0 && chat.NotificationRange.To == 0 {
		chat.NotificationRange = model.TimeRange{From: model.DefaultWindowFrom, To: model.DefaultWindowTo}
	}
	if chat.MinutesTakePhoto == 0 {
		chat.MinutesTakePhoto = model.DefaultMinutesTakePhoto
	}

	if err := s.chatRepo.Upsert(ctx, chat); err != nil {
		return fmt.Errorf("register chat: %w", err)
	}

	s.logger.Info("Chat registered",
		zap.Int64("chat_id", chat.ID),
		zap.String("title", chat.Title),
		zap.String("type", string(chat.Type)),
	)

	// Расписание на сегодня: с отступом, чтобы первое уведомление
	// не прилетело в момент добавления бота. Ошибка генерации
	// регистрацию не отменяет.
	_, err := s.scheduler.GenerateForChat(ctx, chat.ID, chat.NotificationsPerDay, chat.NotificationRange, true)
	if err != nil {
		s.logger.Error("Failed to generate schedule for new chat",
			zap.Int64("chat_id", chat.ID),
			zap.Error(err),
		)
	}

	return nil
}

// UpdateSettings валидирует и сохраняет настройки уведомлений чата,
// после чего пересоздаёт расписание на сегодня с force-стартом,
// чтобы изменения вступили в силу сегодня же.
func (s *ChatService) UpdateSettings(ctx context.Context, chatID int64, perDay int, window model.TimeRange, minutesTakePhoto int) error {
	chatID = model.NormalizeChatID(chatID)

	if perDay < 1 || perDay > 3 {
		return fmt.Errorf("notifications per day must be between 1 and 3")
	}
	if window.From < 0 || window.From > 23 {
		return fmt.Errorf("time range from must be between 0 and 23")
	}
	if window.To < 0 || window.To > 23 {
		return fmt.Errorf("time range to must be between 0 and 23")
	}
	if window.From >= window.To {
		return fmt.Errorf("time range from must be less than to")
	}
	if minutesTakePhoto < 1 || minutesTakePhoto > 120 {
		return fmt.Errorf("minutes to take photo must be between 1 and 120")
	}

	if err := s.chatRepo.UpdateSettings(ctx, chatID, perDay, window, minutesTakePhoto); err != nil {
		return fmt.Errorf("update settings: %w", err)
	}

	s.logger.Info("Chat settings updated",
		zap.Int64("chat_id", chatID),
		zap.Int("notifications_per_day", perDay),
		zap.Int("window_from", window.From),
		zap.Int("window_to", window.To),
		zap.Int("minutes_take_photo", minutesTakePhoto),
	)

	_, err := s.scheduler.GenerateForChat(ctx, chatID, perDay, window, true)
	if err != nil {
		// Настройки уже сохранены, расписание догенерирует дневной джоб
		s.logger.Error("Failed to regenerate schedule after settings update",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}

	return nil
}

// GetChat получает чат по внешнему (ненормализованному) ID
func (s *ChatService) GetChat(ctx context.Context, chatID int64) (*model.Chat, error) {
	return s.chatRepo.GetByID(ctx, model.NormalizeChatID(chatID))
}

// DeactivateChat помечает чат неактивным (бота удалили из чата)
func (s *ChatService) DeactivateChat(ctx context.Context, chatID int64) error {
	chatID = model.NormalizeChatID(chatID)

	if err := s.chatRepo.SetActive(ctx, chatID, false); err != nil {
		return fmt.Errorf("deactivate chat: %w", err)
	}

	s.logger.Info("Chat deactivated", zap.Int64("chat_id", chatID))
	return nil
}

// UpdateMemberCount обновляет количество участников чата
func (s *ChatService) UpdateMemberCount(ctx context.Context, chatID int64, memberCount int) error {
	return s.chatRepo.UpdateMemberCount(ctx, model.NormalizeChatID(chatID), memberCount)
}
