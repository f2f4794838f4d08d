package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// lifecycleManager переходы статуса с проверкой ожидаемого состояния
type lifecycleManager interface {
	AutoTransition(ctx context.Context, bookingID int64, expected, next model.BookingStatus) error
}

// reminderSender отправка напоминаний о check-in/check-out
type reminderSender interface {
	SendCheckinReminder(ctx context.Context, booking *model.Booking) error
	SendCheckoutReminder(ctx context.Context, booking *model.Booking) error
}

// ReconcilerService фоновая сверка бронирований: авто-отмена no-show,
// авто-check-out overstay и рассылка напоминаний. Ошибки по отдельным
// бронированиям не прерывают проход.
type ReconcilerService struct {
	db          base.DBTX
	bookingRepo BookingStore
	configRepo  ConfigStore
	lifecycle   lifecycleManager
	notifier    reminderSender
	logger      *zap.Logger
	now         func() time.Time
}

func NewReconcilerService(
	pool *pgxpool.Pool,
	bookingRepo *repository.BookingRepository,
	configRepo *repository.ConfigRepository,
	bookingService *BookingService,
	notifier reminderSender,
	logger *zap.Logger,
) *ReconcilerService {
	return &ReconcilerService{
		db:          pool,
		bookingRepo: bookingRepo,
		configRepo:  configRepo,
		lifecycle:   bookingService,
		notifier:    notifier,
		logger:      logger,
		now:         time.Now,
	}
}

// sweepTransition определяет авто-переход для бронирования на момент now.
// CONFIRMED старше start_time + 30 минут — no-show, отменяем.
// CHECK_IN старше end_time + 30 минут — overstay, выселяем.
func sweepTransition(booking *model.Booking, now time.Time) (model.BookingStatus, bool) {
	switch booking.Status {
	case model.BookingStatusConfirmed:
		if now.After(booking.StartTime.Add(model.GracePeriod)) {
			return model.BookingStatusCancelled, true
		}
	case model.BookingStatusCheckIn:
		if now.After(booking.EndTime.Add(model.GracePeriod)) {
			return model.BookingStatusCheckOut, true
		}
	}

	return "", false
}

// Sweep проходит по активным бронированиям и применяет просроченные переходы
func (s *ReconcilerService) Sweep(ctx context.Context) error {
	bookings, err := s.bookingRepo.ListActive(ctx, s.db)
	if err != nil {
		return fmt.Errorf("list active bookings: %w", err)
	}

	now := s.now()

	for _, booking := range bookings {
		next, ok := sweepTransition(booking, now)
		if !ok {
			continue
		}

		err := s.lifecycle.AutoTransition(ctx, booking.ID, booking.Status, next)
		if err != nil {
			// Пользователь успел перевести бронирование сам — пропускаем
			if errors.Is(err, ErrInvalidBookingState) {
				continue
			}
			s.logger.Error("Failed to auto-transition booking",
				zap.Int64("booking_id", booking.ID),
				zap.String("next", string(next)),
				zap.Error(err),
			)
			continue
		}

		s.logger.Info("Booking auto-transitioned",
			zap.Int64("booking_id", booking.ID),
			zap.String("from", string(booking.Status)),
			zap.String("to", string(next)),
		)
	}

	return nil
}

// SendCheckinReminders напоминает о бронированиях, начинающихся в окне
// [now, now + reminder_before_checkin_minutes]
func (s *ReconcilerService) SendCheckinReminders(ctx context.Context) error {
	config, err := s.configRepo.Get(ctx, s.db)
	if err != nil {
		return fmt.Errorf("get notification config: %w", err)
	}

	now := s.now()
	bookings, err := s.bookingRepo.ListStartingBetween(ctx, s.db, now, now.Add(config.CheckinLead()))
	if err != nil {
		return fmt.Errorf("list upcoming bookings: %w", err)
	}

	for _, booking := range bookings {
		// Best-effort: без повторов, ошибка не прерывает рассылку
		if err := s.notifier.SendCheckinReminder(ctx, booking); err != nil {
			s.logger.Warn("Failed to send check-in reminder",
				zap.Int64("booking_id", booking.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}

// SendCheckoutReminders напоминает о бронированиях, заканчивающихся в окне
// [now, now + reminder_before_checkout_minutes]
func (s *ReconcilerService) SendCheckoutReminders(ctx context.Context) error {
	config, err := s.configRepo.Get(ctx, s.db)
	if err != nil {
		return fmt.Errorf("get notification config: %w", err)
	}

	now := s.now()
	bookings, err := s.bookingRepo.ListEndingBetween(ctx, s.db, now, now.Add(config.CheckoutLead()))
	if err != nil {
		return fmt.Errorf("list ending bookings: %w", err)
	}

	for _, booking := range bookings {
		if err := s.notifier.SendCheckoutReminder(ctx, booking); err != nil {
			s.logger.Warn("Failed to send check-out reminder",
				zap.Int64("booking_id", booking.ID),
				zap.Error(err),
			)
		}
	}

	return nil
}
