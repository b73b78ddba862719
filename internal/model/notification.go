package model

import "time"

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification запланированное напоминание "пора сделать фото".
// pending -> sent и pending -> failed терминальные переходы, повторной
// отправки failed уведомлений нет.
type Notification struct {
	ID            string             `json:"id"`
	ChatID        int64              `json:"chat_id"`
	ScheduledTime time.Time          `json:"scheduled_time"` // UTC, минутная точность
	Status        NotificationStatus `json:"status"`
	CreatedAt     time.Time          `json:"created_at"`
	SentAt        *time.Time         `json:"sent_at"` // указатель - ставится только при переходе в sent
	Error         string             `json:"error"`   // заполняется только при переходе в failed
}

// DueChat срез настроек чата, который нужен диспетчеру для отправки
type DueChat struct {
	ID               int64  `json:"id"`
	LanguageCode     string `json:"language_code"`
	MinutesTakePhoto int    `json:"minutes_take_photo"`
}

// DueNotification уведомление, время которого наступило, вместе с настройками
// чата-владельца. Chat == nil означает что чат из базы исчез - уведомление
// пропускаем, не трогая статус.
type DueNotification struct {
	ID            string    `json:"id"`
	ChatID        int64     `json:"chat_id"`
	ScheduledTime time.Time `json:"scheduled_time"`
	Chat          *DueChat  `json:"chat"`
}
