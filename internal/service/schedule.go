package service

import (
	"math/rand"
	"slices"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/model"
)

const (
	// Минимальный интервал между двумя уведомлениями одного чата
	minSlotSeparation = 30 * time.Minute
	// Отступ от "сейчас" при перегенерации расписания среди дня,
	// чтобы уведомление не прилетело сразу после смены настроек
	regenerationLead = 30 * time.Minute
)

// candidateSlots перечисляет минутные кандидаты на сегодня внутри окна чата.
// Начало - max(now, сегодня@from:00); при withLead начало дополнительно
// сдвигается на regenerationLead от "сейчас". Если начало оказалось позже
// конца окна - кандидатов на сегодня нет.
func candidateSlots(window model.TimeRange, now time.Time, withLead bool) []time.Time {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	start := dayStart.Add(time.Duration(window.From) * time.Hour)
	end := dayStart.Add(time.Duration(window.To) * time.Hour)

	if withLead {
		minStart := now.Add(regenerationLead)
		if start.Before(minStart) {
			start = minStart
		}
	} else if start.Before(now) {
		start = now
	}

	// Минутная точность: округляем начало вверх до целой минуты
	if truncated := start.Truncate(time.Minute); truncated.Before(start) {
		start = truncated.Add(time.Minute)
	}

	var slots []time.Time
	for t := start; !t.After(end); t = t.Add(time.Minute) {
		slots = append(slots, t)
	}

	return slots
}

// pickSlots выбирает не более n кандидатов случайно и без корреляции между
// вызовами. После каждого выбора из пула выкидываются все кандидаты ближе
// minSlotSeparation к выбранному, поэтому узкое окно может дать меньше n
// слотов - это нормальный результат, а не ошибка.
func pickSlots(candidates []time.Time, n int) []time.Time {
	available := slices.Clone(candidates)

	var selected []time.Time
	for len(selected) < n && len(available) > 0 {
		picked := available[rand.Intn(len(available))]
		selected = append(selected, picked)

		remaining := make([]time.Time, 0, len(available))
		for _, t := range available {
			if absDuration(t.Sub(picked)) >= minSlotSeparation {
				remaining = append(remaining, t)
			}
		}
		available = remaining
	}

	slices.SortFunc(selected, func(a, b time.Time) int {
		return a.Compare(b)
	})

	return selected
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
