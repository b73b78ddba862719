package model

import "time"

// Moment окно сбора фотографий, открывается при успешной отправке уведомления.
// Фото принимаются пока с createdAt не прошло minutes_take_photo минут чата.
type Moment struct {
	ID             string     `json:"id"`
	ChatID         int64      `json:"chat_id"`
	NotificationID string     `json:"notification_id"`
	CreatedAt      time.Time  `json:"created_at"`
	SharedAt       *time.Time `json:"shared_at"` // когда коллаж отправлен в чат
}

// MomentPhoto фотография участника внутри момента. У одного участника
// в одном моменте может быть только одно фото - повторная отправка заменяет.
type MomentPhoto struct {
	ID        int64     `json:"id"`
	MomentID  string    `json:"moment_id"`
	UserID    int64     `json:"user_id"`
	Data      []byte    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// ClosableMoment момент, окно которого истекло, вместе с данными чата,
// нужными для отправки коллажа
type ClosableMoment struct {
	ID           string    `json:"id"`
	ChatID       int64     `json:"chat_id"`
	CreatedAt    time.Time `json:"created_at"`
	LanguageCode string    `json:"language_code"`
}
