package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type MomentRepository struct {
	pool *pgxpool.Pool
}

func NewMomentRepository(pool *pgxpool.Pool) *MomentRepository {
	return &MomentRepository{pool: pool}
}

// Create открывает новое окно сбора фотографий
func (r *MomentRepository) Create(ctx context.Context, moment *model.Moment) error {
	query := `
		INSERT INTO moments (id, chat_id, notification_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.pool.Exec(ctx, query, moment.ID, moment.ChatID, moment.NotificationID, moment.CreatedAt)
	if err != nil {
		return fmt.Errorf("create moment: %w", err)
	}

	return nil
}

// GetOpenByChat получает момент чата, окно которого ещё не истекло.
// Окно моментa = minutes_take_photo чата, последний открытый момент выигрывает.
func (r *MomentRepository) GetOpenByChat(ctx context.Context, chatID int64, now time.Time) (*model.Moment, error) {
	query := `
		SELECT m.id, m.chat_id, m.notification_id, m.created_at, m.shared_at
		FROM moments m
		JOIN chats c ON c.id = m.chat_id
		WHERE m.chat_id = $1
		  AND m.shared_at IS NULL
		  AND m.created_at + (c.minutes_take_photo || ' minutes')::interval > $2
		ORDER BY m.created_at DESC
		LIMIT 1
	`

	var moment model.Moment
	err := r.pool.QueryRow(ctx, query, chatID, now).Scan(
		&moment.ID,
		&moment.ChatID,
		&moment.NotificationID,
		&moment.CreatedAt,
		&moment.SharedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // Открытого момента нет
		}
		return nil, fmt.Errorf("get open moment: %w", err)
	}

	return &moment, nil
}

// GetClosable получает моменты, окно которых истекло, но коллаж ещё не отправлен
func (r *MomentRepository) GetClosable(ctx context.Context, now time.Time, limit int) ([]*model.ClosableMoment, error) {
	query := `
		SELECT m.id, m.chat_id, m.created_at, c.language_code
		FROM moments m
		JOIN chats c ON c.id = m.chat_id
		WHERE m.shared_at IS NULL
		  AND m.created_at + (c.minutes_take_photo || ' minutes')::interval <= $1
		ORDER BY m.created_at
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, now, limit)
	if err != nil {
		return nil, fmt.Errorf("get closable moments: %w", err)
	}
	defer rows.Close()

	var moments []*model.ClosableMoment
	for rows.Next() {
		var m model.ClosableMoment
		err := rows.Scan(&m.ID, &m.ChatID, &m.CreatedAt, &m.LanguageCode)
		if err != nil {
			return nil, fmt.Errorf("scan closable moment: %w", err)
		}
		moments = append(moments, &m)
	}

	return moments, nil
}

// MarkShared помечает момент закрытым (коллаж отправлен или отправлять нечего)
func (r *MomentRepository) MarkShared(ctx context.Context, momentID string, sharedAt time.Time) error {
	query := `
		UPDATE moments
		SET shared_at = $1
		WHERE id = $2 AND shared_at IS NULL
	`

	_, err := r.pool.Exec(ctx, query, sharedAt, momentID)
	if err != nil {
		return fmt.Errorf("mark moment shared: %w", err)
	}

	return nil
}
