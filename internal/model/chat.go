package model

import "time"

type ChatType string

const (
	ChatTypePrivate    ChatType = "private"
	ChatTypeGroup      ChatType = "group"
	ChatTypeSupergroup ChatType = "supergroup"
	ChatTypeChannel    ChatType = "channel"
)

// Дефолтные настройки нового чата
const (
	DefaultNotificationsPerDay = 1
	DefaultWindowFrom          = 9
	DefaultWindowTo            = 21
	DefaultMinutesTakePhoto    = 15
)

// TimeRange разрешённое окно часов (UTC), в котором можно планировать уведомления
type TimeRange struct {
	From int `json:"from"`
	To   int `json:"to"`
}

type Chat struct {
	ID                  int64     `json:"id"` // нормализованный ID (всегда отрицательный)
	Type                ChatType  `json:"type"`
	Title               string    `json:"title"`
	Username            string    `json:"username"`
	MemberCount         int       `json:"member_count"`
	Active              bool      `json:"active"`
	LanguageCode        string    `json:"language_code"`
	NotificationsPerDay int       `json:"notifications_per_day"`
	NotificationRange   TimeRange `json:"notification_time_range"`
	MinutesTakePhoto    int       `json:"minutes_take_photo"`
	FirstAddedAt        time.Time `json:"first_added_at"`
	AddedAt             time.Time `json:"added_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

// NormalizeChatID приводит ID группового чата к виду, в котором он хранится в базе.
// Telegram отдаёт ID групп со знаком минус, но знак может теряться при передаче
// через startapp параметр, поэтому храним всегда -abs(id).
func NormalizeChatID(chatID int64) int64 {
	if chatID > 0 {
		return -chatID
	}
	return chatID
}
