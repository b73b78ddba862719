package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

// Upsert создаёт чат или реактивирует существующий (бота добавили обратно).
// first_added_at выставляется только при первой вставке.
func (r *ChatRepository) Upsert(ctx context.Context, chat *model.Chat) error {
	query := `
		INSERT INTO chats (id, type, title, username, member_count, active, language_code,
		                   notifications_per_day, notification_from, notification_to, minutes_take_photo,
		                   first_added_at, added_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, TRUE, $6, $7, $8, $9, $10, NOW(), NOW(), NOW())
		ON CONFLICT (id) DO UPDATE SET
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			username = EXCLUDED.username,
			member_count = EXCLUDED.member_count,
			active = TRUE,
			added_at = NOW(),
			updated_at = NOW()
		RETURNING first_added_at, added_at, updated_at
	`

	err := r.pool.QueryRow(
		ctx, query,
		chat.ID,
		chat.Type,
		chat.Title,
		chat.Username,
		chat.MemberCount,
		chat.LanguageCode,
		chat.NotificationsPerDay,
		chat.NotificationRange.From,
		chat.NotificationRange.To,
		chat.MinutesTakePhoto,
	).Scan(&chat.FirstAddedAt, &chat.AddedAt, &chat.UpdatedAt)

	if err != nil {
		return fmt.Errorf("upsert chat: %w", err)
	}

	return nil
}

// GetByID получает чат по ID
func (r *ChatRepository) GetByID(ctx context.Context, chatID int64) (*model.Chat, error) {
	query := `
		SELECT id, type, title, username, member_count, active, language_code,
		       notifications_per_day, notification_from, notification_to, minutes_take_photo,
		       first_added_at, added_at, updated_at
		FROM chats
		WHERE id = $1
	`

	var chat model.Chat
	err := r.pool.QueryRow(ctx, query, chatID).Scan(
		&chat.ID,
		&chat.Type,
		&chat.Title,
		&chat.Username,
		&chat.MemberCount,
		&chat.Active,
		&chat.LanguageCode,
		&chat.NotificationsPerDay,
		&chat.NotificationRange.From,
		&chat.NotificationRange.To,
		&chat.MinutesTakePhoto,
		&chat.FirstAddedAt,
		&chat.AddedAt,
		&chat.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Чат не найден
		}
		return nil, fmt.Errorf("get chat by id: %w", err)
	}

	return &chat, nil
}

// GetActive получает все активные чаты (только поля, нужные генерации расписания)
func (r *ChatRepository) GetActive(ctx context.Context) ([]*model.Chat, error) {
	query := `
		SELECT id, notifications_per_day, notification_from, notification_to
		FROM chats
		WHERE active = TRUE
		ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get active chats: %w", err)
	}
	defer rows.Close()

	var chats []*model.Chat
	for rows.Next() {
		var chat model.Chat
		err := rows.Scan(
			&chat.ID,
			&chat.NotificationsPerDay,
			&chat.NotificationRange.From,
			&chat.NotificationRange.To,
		)
		if err != nil {
			return nil, fmt.Errorf("scan active chat: %w", err)
		}
		chats = append(chats, &chat)
	}

	return chats, nil
}

// UpdateSettings обновляет настройки уведомлений чата
func (r *ChatRepository) UpdateSettings(ctx context.Context, chatID int64, perDay int, window model.TimeRange, minutesTakePhoto int) error {
	query := `
		UPDATE chats
		SET notifications_per_day = $1,
		    notification_from = $2,
		    notification_to = $3,
		    minutes_take_photo = $4,
		    updated_at = NOW()
		WHERE id = $5
	`

	result, err := r.pool.Exec(ctx, query, perDay, window.From, window.To, minutesTakePhoto, chatID)
	if err != nil {
		return fmt.Errorf("update chat settings: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("chat not found")
	}

	return nil
}

// SetActive помечает чат активным/неактивным (бота удалили или вернули)
func (r *ChatRepository) SetActive(ctx context.Context, chatID int64, active bool) error {
	query := `
		UPDATE chats
		SET active = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.pool.Exec(ctx, query, active, chatID)
	if err != nil {
		return fmt.Errorf("set chat active: %w", err)
	}

	return nil
}

// UpdateMemberCount обновляет количество участников чата
func (r *ChatRepository) UpdateMemberCount(ctx context.Context, chatID int64, memberCount int) error {
	query := `
		UPDATE chats
		SET member_count = $1, updated_at = NOW()
		WHERE id = $2
	`

	_, err := r.pool.Exec(ctx, query, memberCount, chatID)
	if err != nil {
		return fmt.Errorf("update member count: %w", err)
	}

	return nil
}
