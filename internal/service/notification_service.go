package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/i18n"
	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// Сколько due уведомлений диспетчер забирает за один проход
	dispatchBatchSize = 100
	// Таймаут одной попытки доставки: медленный Telegram не должен
	// блокировать весь батч
	sendTimeout = 10 * time.Second
)

type notificationStore interface {
	ReplacePending(ctx context.Context, chatID int64, notifications []*model.Notification) error
	GetDue(ctx context.Context, now time.Time, limit int) ([]*model.DueNotification, error)
	MarkSent(ctx context.Context, id string, sentAt time.Time) (bool, error)
	MarkFailed(ctx context.Context, id string, errText string) error
}

type activeChatStore interface {
	GetActive(ctx context.Context) ([]*model.Chat, error)
}

type momentOpener interface {
	Create(ctx context.Context, moment *model.Moment) error
}

type reminderSender interface {
	SendReminder(ctx context.Context, chatID int64, text, buttonText, buttonURL string) error
}

type NotificationService struct {
	notificationRepo notificationStore
	chatRepo         activeChatStore
	momentRepo       momentOpener
	sender           reminderSender
	botUsername      string
	logger           *zap.Logger
	now              func() time.Time
}

func NewNotificationService(
	notificationRepo notificationStore,
	chatRepo activeChatStore,
	momentRepo momentOpener,
	sender reminderSender,
	botUsername string,
	logger *zap.Logger,
) *NotificationService {
	return &NotificationService{
		notificationRepo: notificationRepo,
		chatRepo:         chatRepo,
		momentRepo:       momentRepo,
		sender:           sender,
		botUsername:      botUsername,
		logger:           logger,
		now:              time.Now,
	}
}

// GenerateForChat пересоздаёт расписание уведомлений чата на сегодня.
// forceImmediateStart=true используется при смене настроек: первый слот
// не раньше чем через regenerationLead от "сейчас". Возвращает количество
// созданных уведомлений; 0 - нормальный результат, если окно на сегодня
// уже прошло.
func (s *NotificationService) GenerateForChat(ctx context.Context, chatID int64, perDay int, window model.TimeRange, forceImmediateStart bool) (int, error) {
	chatID = model.NormalizeChatID(chatID)
	now := s.now().UTC()

	slots := pickSlots(candidateSlots(window, now, forceImmediateStart), perDay)

	notifications := make([]*model.Notification, 0, len(slots))
	for _, slot := range slots {
		notifications = append(notifications, &model.Notification{
			ID:            uuid.New().String(),
			ChatID:        chatID,
			ScheduledTime: slot,
			Status:        model.NotificationStatusPending,
			CreatedAt:     now,
		})
	}

	err := s.notificationRepo.ReplacePending(ctx, chatID, notifications)
	if err != nil {
		return 0, fmt.Errorf("replace schedule for chat: %w", err)
	}

	s.logger.Info("Schedule generated for chat",
		zap.Int64("chat_id", chatID),
		zap.Int("notifications_per_day", perDay),
		zap.Int("window_from", window.From),
		zap.Int("window_to", window.To),
		zap.Bool("force_immediate_start", forceImmediateStart),
		zap.Int("created", len(notifications)),
	)

	return len(notifications), nil
}

// GenerateForAllActiveChats генерирует расписание на сегодня для всех активных
// чатов. Ошибка одного чата не мешает остальным - логируем и идём дальше.
func (s *NotificationService) GenerateForAllActiveChats(ctx context.Context) (int, error) {
	chats, err := s.chatRepo.GetActive(ctx)
	if err != nil {
		return 0, fmt.Errorf("get active chats: %w", err)
	}

	totalCount := 0
	for _, chat := range chats {
		count, err := s.GenerateForChat(ctx, chat.ID, chat.NotificationsPerDay, chat.NotificationRange, false)
		if err != nil {
			s.logger.Error("Failed to generate schedule for chat",
				zap.Int64("chat_id", chat.ID),
				zap.Error(err),
			)
			continue
		}
		totalCount += count
	}

	s.logger.Info("Schedule generated for all active chats",
		zap.Int("total_chats", len(chats)),
		zap.Int("total_notifications_created", totalCount),
	)

	return totalCount, nil
}

// DispatchDue отправляет уведомления, время которых наступило, и переводит
// каждое в терминальный статус. Ошибки изолированы на уровне одного
// уведомления: упавшая доставка помечает его failed и не прерывает батч.
// Возвращает количество успешно отправленных.
func (s *NotificationService) DispatchDue(ctx context.Context) (int, error) {
	now := s.now().UTC()

	due, err := s.notificationRepo.GetDue(ctx, now, dispatchBatchSize)
	if err != nil {
		return 0, fmt.Errorf("get due notifications: %w", err)
	}

	sentCount := 0
	for _, notification := range due {
		if notification.Chat == nil {
			// Чат исчез между генерацией и отправкой. Причина может быть
			// временной, поэтому статус не трогаем - оставляем pending.
			s.logger.Warn("Chat for due notification not found, skipping",
				zap.String("notification_id", notification.ID),
				zap.Int64("chat_id", notification.ChatID),
			)
			continue
		}

		if s.dispatchOne(ctx, notification) {
			sentCount++
		}
	}

	if len(due) > 0 {
		s.logger.Info("Dispatch finished",
			zap.Int("due", len(due)),
			zap.Int("sent", sentCount),
		)
	}

	return sentCount, nil
}

// dispatchOne доставляет одно уведомление. true - уведомление отправлено
// и окно момента открыто.
func (s *NotificationService) dispatchOne(ctx context.Context, notification *model.DueNotification) bool {
	chat := notification.Chat
	locale := i18n.GetLocale(chat.LanguageCode)

	minutesWord := i18n.Pluralize(locale, chat.MinutesTakePhoto, "room.minutes")
	text := i18n.Render(i18n.T(locale, "bot.notificationReminder"), map[string]string{
		"minutes":     strconv.Itoa(chat.MinutesTakePhoto),
		"minutesWord": minutesWord,
	})
	buttonURL := fmt.Sprintf("https://t.me/%s?startapp=%d", s.botUsername, absChatID(notification.ChatID))

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	err := s.sender.SendReminder(sendCtx, notification.ChatID, text, i18n.T(locale, "bot.openApp"), buttonURL)
	cancel()

	if err != nil {
		s.markFailed(ctx, notification.ID, err)
		return false
	}

	sentAt := s.now().UTC()

	claimed, err := s.notificationRepo.MarkSent(ctx, notification.ID, sentAt)
	if err != nil {
		// Запись статуса не прошла - уведомление остаётся pending
		// и будет повторено на следующем проходе
		s.logger.Error("Failed to mark notification sent",
			zap.String("notification_id", notification.ID),
			zap.Error(err),
		)
		return false
	}

	if !claimed {
		// Параллельный прогон диспетчера успел раньше
		s.logger.Warn("Notification already claimed by another dispatch run",
			zap.String("notification_id", notification.ID),
		)
		return false
	}

	moment := &model.Moment{
		ID:             uuid.New().String(),
		ChatID:         notification.ChatID,
		NotificationID: notification.ID,
		CreatedAt:      sentAt,
	}

	if err := s.momentRepo.Create(ctx, moment); err != nil {
		s.markFailed(ctx, notification.ID, err)
		return false
	}

	return true
}

func (s *NotificationService) markFailed(ctx context.Context, notificationID string, cause error) {
	s.logger.Error("Failed to deliver notification",
		zap.String("notification_id", notificationID),
		zap.Error(cause),
	)

	if err := s.notificationRepo.MarkFailed(ctx, notificationID, cause.Error()); err != nil {
		s.logger.Error("Failed to mark notification failed",
			zap.String("notification_id", notificationID),
			zap.Error(err),
		)
	}
}

func absChatID(chatID int64) int64 {
	if chatID < 0 {
		return -chatID
	}
	return chatID
}
