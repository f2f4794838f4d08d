package app

import (
	"context"
	"time"

	"github.com/Freeeeeet/studyspace/internal/service"
	"go.uber.org/zap"
)

// Scheduler управляет фоновыми задачами: сверка бронирований и напоминания
type Scheduler struct {
	reconciler        *service.ReconcilerService
	reconcileInterval time.Duration
	reminderInterval  time.Duration
	logger            *zap.Logger
	stopChan          chan struct{}
}

// NewScheduler создаёт новый планировщик
func NewScheduler(reconciler *service.ReconcilerService, reconcileInterval, reminderInterval time.Duration, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reconciler:        reconciler,
		reconcileInterval: reconcileInterval,
		reminderInterval:  reminderInterval,
		logger:            logger,
		stopChan:          make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("reconcile_interval", s.reconcileInterval),
		zap.Duration("reminder_interval", s.reminderInterval),
	)

	go s.runSweepTask(ctx)
	go s.runReminderTask(ctx)
}

// Stop останавливает фоновые задачи
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping background scheduler")
	close(s.stopChan)
}

// runSweepTask периодически отменяет no-show и выселяет overstay
func (s *Scheduler) runSweepTask(ctx context.Context) {
	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.reconcileInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Sweep task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Sweep task cancelled")
			return
		}
	}
}

// runReminderTask периодически рассылает напоминания о check-in и check-out
func (s *Scheduler) runReminderTask(ctx context.Context) {
	ticker := time.NewTicker(s.reminderInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.remind(ctx)
		case <-s.stopChan:
			s.logger.Info("Reminder task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reminder task cancelled")
			return
		}
	}
}

func (s *Scheduler) sweep(ctx context.Context) {
	if err := s.reconciler.Sweep(ctx); err != nil {
		s.logger.Error("Booking sweep failed", zap.Error(err))
	}
}

func (s *Scheduler) remind(ctx context.Context) {
	if err := s.reconciler.SendCheckinReminders(ctx); err != nil {
		s.logger.Error("Check-in reminders failed", zap.Error(err))
	}

	if err := s.reconciler.SendCheckoutReminders(ctx); err != nil {
		s.logger.Error("Check-out reminders failed", zap.Error(err))
	}
}
