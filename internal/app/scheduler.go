package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/moments_bot/internal/service"
	"go.uber.org/zap"
)

const (
	// Генерация расписаний: при старте и дальше раз в сутки
	generationInterval = 24 * time.Hour
	// Отправка due уведомлений и закрытие истёкших моментов
	dispatchInterval = time.Minute
)

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	notificationService *service.NotificationService
	momentService       *service.MomentService
	logger              *zap.Logger
	stopChan            chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(notificationService *service.NotificationService, momentService *service.MomentService, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		notificationService: notificationService,
		momentService:       momentService,
		logger:              logger,
		stopChan:            make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler")

	go s.runGenerationTask(ctx)
	go s.runDispatchTask(ctx)
	go s.runMomentCloseTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runGenerationTask периодически генерирует расписание уведомлений
// для всех активных чатов
func (s *Scheduler) runGenerationTask(ctx context.Context) {
	// Первый запуск сразу при старте: после простоя расписание на сегодня
	// могло не создаться
	s.generateSchedules(ctx)

	ticker := time.NewTicker(generationInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.generateSchedules(ctx)
		case <-s.stopChan:
			s.logger.Info("Schedule generation task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Schedule generation task cancelled")
			return
		}
	}
}

// runDispatchTask периодически отправляет уведомления, время которых наступило
func (s *Scheduler) runDispatchTask(ctx context.Context) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.notificationService.DispatchDue(ctx); err != nil {
				s.logger.Error("Failed to dispatch due notifications", zap.Error(err))
			}
		case <-s.stopChan:
			s.logger.Info("Dispatch task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Dispatch task cancelled")
			return
		}
	}
}

// runMomentCloseTask периодически закрывает истёкшие моменты и
// рассылает коллажи
func (s *Scheduler) runMomentCloseTask(ctx context.Context) {
	ticker := time.NewTicker(dispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := s.momentService.CloseElapsed(ctx); err != nil {
				s.logger.Error("Failed to close elapsed moments", zap.Error(err))
			}
		case <-s.stopChan:
			s.logger.Info("Moment close task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Moment close task cancelled")
			return
		}
	}
}

// generateSchedules генерирует расписание на сегодня для всех активных чатов
func (s *Scheduler) generateSchedules(ctx context.Context) {
	s.logger.Info("Starting schedule generation for all active chats")

	count, err := s.notificationService.GenerateForAllActiveChats(ctx)
	if err != nil {
		s.logger.Error("Failed to generate schedules", zap.Error(err))
		return
	}

	s.logger.Info("Schedule generation completed", zap.Int("notifications_created", count))
}
