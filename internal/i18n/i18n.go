package i18n

import "strings"

type Locale string

const (
	LocaleEN Locale = "en"
	LocaleRU Locale = "ru"
)

// GetLocale приводит language_code из Telegram к поддерживаемой локали
func GetLocale(languageCode string) Locale {
	if languageCode == "ru" {
		return LocaleRU
	}
	return LocaleEN
}

var messages = map[Locale]map[string]string{
	LocaleEN: {
		"bot.hello":                "👋 Hi! I'm Moments bot.",
		"bot.startDescription":     "Add me to a group chat and a few times a day I'll ask everyone to capture the moment. All photos end up in a shared collage.",
		"bot.openApp":              "📸 Open app",
		"bot.addToGroup":           "➕ Add to group",
		"bot.notificationReminder": "📸 It's moment time! You have {minutes} {minutesWord} to take a photo.",
		"bot.collageCaption":       "✨ Here is your moment!",
		"bot.chatRegistered":       "🎉 Moments bot is here! I'll remind this chat to take photos. Admins can tune me with /settings.",
		"bot.settingsCurrent":      "⚙️ Current settings:\nNotifications per day: {perDay}\nTime window (UTC): {from}:00-{to}:00\nMinutes to take a photo: {minutes}\n\nTo change: /settings <perDay> <from> <to> [minutes]",
		"bot.settingsUpdated":      "✅ Settings saved. Today's schedule has been regenerated.",
		"bot.settingsAdminsOnly":   "❌ Only chat administrators can change settings.",
		"bot.settingsInvalid":      "❌ Invalid settings. Usage: /settings <perDay 1-3> <from 0-23> <to 0-23> [minutes], from must be less than to.",
		"bot.settingsGroupsOnly":   "❌ Settings are available only in group chats.",
		"room.minutes.one":         "minute",
		"room.minutes.many":        "minutes",
	},
	LocaleRU: {
		"bot.hello":                "👋 Привет! Я бот Моменты.",
		"bot.startDescription":     "Добавь меня в групповой чат, и несколько раз в день я буду просить всех поймать момент. Все фото собираются в общий коллаж.",
		"bot.openApp":              "📸 Открыть приложение",
		"bot.addToGroup":           "➕ Добавить в группу",
		"bot.notificationReminder": "📸 Время момента! У вас есть {minutes} {minutesWord}, чтобы сделать фото.",
		"bot.collageCaption":       "✨ Ваш момент готов!",
		"bot.chatRegistered":       "🎉 Бот Моменты на месте! Буду напоминать этому чату делать фото. Админы могут настроить меня через /settings.",
		"bot.settingsCurrent":      "⚙️ Текущие настройки:\nУведомлений в день: {perDay}\nОкно времени (UTC): {from}:00-{to}:00\nМинут на фото: {minutes}\n\nИзменить: /settings <perDay> <from> <to> [minutes]",
		"bot.settingsUpdated":      "✅ Настройки сохранены. Расписание на сегодня пересоздано.",
		"bot.settingsAdminsOnly":   "❌ Менять настройки могут только администраторы чата.",
		"bot.settingsInvalid":      "❌ Неверные настройки. Формат: /settings <perDay 1-3> <from 0-23> <to 0-23> [minutes], from должен быть меньше to.",
		"bot.settingsGroupsOnly":   "❌ Настройки доступны только в групповых чатах.",
		"room.minutes.one":         "минута",
		"room.minutes.few":         "минуты",
		"room.minutes.many":        "минут",
	},
}

// T возвращает локализованный текст по ключу. Если ключа нет - возвращает сам ключ,
// чтобы пропажа перевода была видна в чате, а не роняла бота.
func T(locale Locale, key string) string {
	if m, ok := messages[locale]; ok {
		if text, ok := m[key]; ok {
			return text
		}
	}
	if text, ok := messages[LocaleEN][key]; ok {
		return text
	}
	return key
}

// Pluralize подбирает форму слова под число: для русского - одна/несколько/много,
// для английского - one/many
func Pluralize(locale Locale, count int, keyBase string) string {
	if locale == LocaleRU {
		if count%10 == 1 && count%100 != 11 {
			return T(locale, keyBase+".one")
		}
		if count%10 >= 2 && count%10 <= 4 && (count%100 < 10 || count%100 >= 20) {
			return T(locale, keyBase+".few")
		}
		return T(locale, keyBase+".many")
	}
	if count == 1 {
		return T(locale, keyBase+".one")
	}
	return T(locale, keyBase+".many")
}

// Render подставляет значения в плейсхолдеры вида {name}
func Render(template string, values map[string]string) string {
	out := template
	for name, value := range values {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}
