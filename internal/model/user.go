package model

import "time"

// User участник чата, приславший хотя бы одно фото. Нужен для подписей на коллаже.
type User struct {
	ID           int64     `json:"id"` // Telegram ID
	Username     string    `json:"username"`
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	LanguageCode string    `json:"language_code"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
