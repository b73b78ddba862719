package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/moments_bot/internal/model"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PhotoRepository struct {
	pool *pgxpool.Pool
}

func NewPhotoRepository(pool *pgxpool.Pool) *PhotoRepository {
	return &PhotoRepository{pool: pool}
}

// Upsert сохраняет фото участника в моменте. Повторная отправка от того же
// участника заменяет предыдущее фото, а не добавляет второе.
func (r *PhotoRepository) Upsert(ctx context.Context, photo *model.MomentPhoto) error {
	query := `
		INSERT INTO moment_photos (moment_id, user_id, data, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (moment_id, user_id) DO UPDATE SET
			data = EXCLUDED.data,
			created_at = NOW()
		RETURNING id, created_at
	`

	err := r.pool.QueryRow(ctx, query, photo.MomentID, photo.UserID, photo.Data).
		Scan(&photo.ID, &photo.CreatedAt)

	if err != nil {
		return fmt.Errorf("upsert moment photo: %w", err)
	}

	return nil
}

// GetByMoment получает все фото момента в порядке отправки
func (r *PhotoRepository) GetByMoment(ctx context.Context, momentID string) ([]*model.MomentPhoto, error) {
	query := `
		SELECT id, moment_id, user_id, data, created_at
		FROM moment_photos
		WHERE moment_id = $1
		ORDER BY created_at
	`

	rows, err := r.pool.Query(ctx, query, momentID)
	if err != nil {
		return nil, fmt.Errorf("get photos by moment: %w", err)
	}
	defer rows.Close()

	var photos []*model.MomentPhoto
	for rows.Next() {
		var photo model.MomentPhoto
		err := rows.Scan(
			&photo.ID,
			&photo.MomentID,
			&photo.UserID,
			&photo.Data,
			&photo.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan moment photo: %w", err)
		}
		photos = append(photos, &photo)
	}

	return photos, nil
}

// CountByMoment возвращает количество фото в моменте
func (r *PhotoRepository) CountByMoment(ctx context.Context, momentID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM moment_photos WHERE moment_id = $1
	`, momentID).Scan(&count)

	if err != nil {
		return 0, fmt.Errorf("count photos by moment: %w", err)
	}

	return count, nil
}
