package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/Freeeeeet/moments_bot/internal/repository/base"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type NotificationRepository struct {
	*base.Repository
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{Repository: base.NewRepository(pool)}
}

// ReplacePending заменяет все pending уведомления чата новым набором.
// Именно replace, а не append: сначала delete, потом insert, в одной транзакции,
// чтобы при повторной генерации не оставались дубликаты от прошлого запуска.
func (r *NotificationRepository) ReplacePending(ctx context.Context, chatID int64, notifications []*model.Notification) error {
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			DELETE FROM notifications
			WHERE chat_id = $1 AND status = 'pending'
		`, chatID)
		if err != nil {
			return fmt.Errorf("delete pending: %w", err)
		}

		for _, n := range notifications {
			_, err := tx.Exec(ctx, `
				INSERT INTO notifications (id, chat_id, scheduled_time, status, created_at)
				VALUES ($1, $2, $3, $4, $5)
			`, n.ID, n.ChatID, n.ScheduledTime, n.Status, n.CreatedAt)
			if err != nil {
				return fmt.Errorf("insert notification: %w", err)
			}
		}

		return nil
	})

	if err != nil {
		return fmt.Errorf("replace pending notifications: %w", err)
	}

	return nil
}

// GetDue получает уведомления, время которых наступило, вместе с настройками
// чата-владельца. LEFT JOIN: если чат исчез из базы, уведомление всё равно
// возвращается с Chat == nil, решение что с ним делать принимает диспетчер.
func (r *NotificationRepository) GetDue(ctx context.Context, now time.Time, limit int) ([]*model.DueNotification, error) {
	query := `
		SELECT n.id, n.chat_id, n.scheduled_time,
		       c.id, c.language_code, c.minutes_take_photo
		FROM notifications n
		LEFT JOIN chats c ON c.id = n.chat_id
		WHERE n.status = 'pending'
		  AND n.scheduled_time <= $1
		ORDER BY n.scheduled_time
		LIMIT $2
	`

	rows, err := r.Pool().Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get due notifications: %w", err)
	}
	defer rows.Close()

	var due []*model.DueNotification
	for rows.Next() {
		var n model.DueNotification
		var chatID *int64
		var languageCode *string
		var minutesTakePhoto *int

		err := rows.Scan(
			&n.ID,
			&n.ChatID,
			&n.ScheduledTime,
			&chatID,
			&languageCode,
			&minutesTakePhoto,
		)
		if err != nil {
			return nil, fmt.Errorf("scan due notification: %w", err)
		}

		if chatID != nil {
			n.Chat = &model.DueChat{
				ID:               *chatID,
				LanguageCode:     *languageCode,
				MinutesTakePhoto: *minutesTakePhoto,
			}
		}

		due = append(due, &n)
	}

	return due, nil
}

// MarkSent переводит уведомление pending -> sent. Условие status = 'pending'
// защищает от параллельного диспетчера: false означает что уведомление уже
// кто-то забрал.
func (r *NotificationRepository) MarkSent(ctx context.Context, id string, sentAt time.Time) (bool, error) {
	affected, err := r.ExecAffected(ctx, `
		UPDATE notifications
		SET status = 'sent', sent_at = $1
		WHERE id = $2 AND status = 'pending'
	`, sentAt, id)

	if err != nil {
		return false, fmt.Errorf("mark notification sent: %w", err)
	}

	return affected > 0, nil
}

// MarkFailed переводит уведомление в failed с текстом ошибки
func (r *NotificationRepository) MarkFailed(ctx context.Context, id string, errText string) error {
	_, err := r.Pool().Exec(ctx, `
		UPDATE notifications
		SET status = 'failed', error = $1
		WHERE id = $2
	`, errText, id)

	if err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}

	return nil
}

// GetPendingByChat получает pending уведомления чата (для отладки и тестов окружения)
func (r *NotificationRepository) GetPendingByChat(ctx context.Context, chatID int64) ([]*model.Notification, error) {
	query := `
		SELECT id, chat_id, scheduled_time, status, created_at, sent_at, COALESCE(error, '')
		FROM notifications
		WHERE chat_id = $1 AND status = 'pending'
		ORDER BY scheduled_time
	`

	rows, err := r.Pool().Query(ctx, query, chatID)
	if err != nil {
		return nil, fmt.Errorf("get pending by chat: %w", err)
	}
	defer rows.Close()

	var notifications []*model.Notification
	for rows.Next() {
		var n model.Notification
		err := rows.Scan(
			&n.ID,
			&n.ChatID,
			&n.ScheduledTime,
			&n.Status,
			&n.CreatedAt,
			&n.SentAt,
			&n.Error,
		)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	return notifications, nil
}
