package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Freeeeeet/studyspace/internal/auth"
	"github.com/Freeeeeet/studyspace/internal/cache"
	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/qr"
	"github.com/Freeeeeet/studyspace/internal/repository"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// BookingService управляет жизненным циклом бронирований: создание с выдачей
// оборудования, переходы статуса, отмена и обработка сканов QR-кода.
type BookingService struct {
	db            base.DBTX
	txer          TxBeginner
	userRepo      UserStore
	spaceRepo     SpaceStore
	bookingRepo   BookingStore
	equipmentRepo EquipmentStore
	qrRepo        QRStore
	cache         *cache.Cache
	logger        *zap.Logger
	now           func() time.Time
}

func NewBookingService(
	pool *pgxpool.Pool,
	userRepo *repository.UserRepository,
	spaceRepo *repository.SpaceRepository,
	bookingRepo *repository.BookingRepository,
	equipmentRepo *repository.EquipmentRepository,
	qrRepo *repository.QRRepository,
	usageCache *cache.Cache,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		db:            pool,
		txer:          pool,
		userRepo:      userRepo,
		spaceRepo:     spaceRepo,
		bookingRepo:   bookingRepo,
		equipmentRepo: equipmentRepo,
		qrRepo:        qrRepo,
		cache:         usageCache,
		logger:        logger,
		now:           time.Now,
	}
}

// CreateBooking создаёт бронирование помещения с выдачей оборудования.
// Все шаги выполняются в одной транзакции, строка помещения блокируется
// на всё её время — конкурирующие попытки забронировать одно помещение
// сериализуются. Выдача оборудования атомарна: нехватка любой позиции
// откатывает бронирование целиком.
func (s *BookingService) CreateBooking(ctx context.Context, userID, spaceID int64, start, end time.Time, equipmentRequests []model.EquipmentRequest) (*model.Booking, error) {
	if !start.Before(end) || start.Before(s.now()) {
		return nil, fmt.Errorf("start %s, end %s: %w", start, end, ErrInvalidInterval)
	}

	// Начинаем транзакцию
	tx, err := s.txer.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку помещения до конца транзакции
	space, err := s.spaceRepo.GetByIDForUpdate(ctx, tx, spaceID)
	if err != nil {
		return nil, fmt.Errorf("get space: %w", err)
	}
	if space == nil {
		return nil, fmt.Errorf("space %d: %w", spaceID, ErrNotFound)
	}

	user, err := s.userRepo.GetByID(ctx, tx, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	// Проверяем доступность помещения уже под блокировкой
	available, err := s.roomAvailable(ctx, tx, space, start, end)
	if err != nil {
		return nil, fmt.Errorf("check room availability: %w", err)
	}
	if !available {
		return nil, fmt.Errorf("space %q from %s to %s: %w", space.Name, start, end, ErrSpaceUnavailable)
	}

	booking := &model.Booking{
		UserID:    userID,
		SpaceID:   spaceID,
		Status:    model.BookingStatusConfirmed,
		StartTime: start,
		EndTime:   end,
	}

	if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if err := s.spaceRepo.UpdateStatus(ctx, tx, spaceID, model.SpaceStatusBooked); err != nil {
		return nil, fmt.Errorf("update space status: %w", err)
	}

	// Выдаём оборудование: каждая позиция либо целиком, либо откат всего
	for _, request := range equipmentRequests {
		if err := s.allocateEquipment(ctx, tx, booking, request, start, end); err != nil {
			return nil, err
		}
	}

	// Выпускаем QR-код в той же транзакции
	qrCode, err := qr.NewCode(booking, user, space)
	if err != nil {
		return nil, fmt.Errorf("issue qr code: %w", err)
	}

	if err := s.qrRepo.Create(ctx, tx, qrCode); err != nil {
		return nil, fmt.Errorf("save qr code: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.invalidateUsage(ctx)

	s.logger.Info("Booking created",
		zap.Int64("booking_id", booking.ID),
		zap.Int64("user_id", userID),
		zap.String("space", space.Name),
		zap.Time("start_time", start),
		zap.Time("end_time", end),
		zap.Int("equipment_requests", len(equipmentRequests)),
	)

	booking.User = user
	booking.Space = space

	return booking, nil
}

// allocateEquipment выдаёт бронированию count единиц типа с наименьшими ID
func (s *BookingService) allocateEquipment(ctx context.Context, db base.DBTX, booking *model.Booking, request model.EquipmentRequest, start, end time.Time) error {
	available, err := s.equipmentAvailable(ctx, db, request.EquipmentTypeID, request.Count, start, end)
	if err != nil {
		return fmt.Errorf("check equipment availability: %w", err)
	}
	if !available {
		return fmt.Errorf("equipment type %d x%d: %w", request.EquipmentTypeID, request.Count, ErrInsufficientEquipment)
	}

	units, err := s.equipmentRepo.SelectAvailableForUpdate(ctx, db, request.EquipmentTypeID, request.Count)
	if err != nil {
		return fmt.Errorf("select equipment: %w", err)
	}
	if len(units) < request.Count {
		return fmt.Errorf("equipment type %d x%d: %w", request.EquipmentTypeID, request.Count, ErrInsufficientEquipment)
	}

	for _, unit := range units {
		if err := s.equipmentRepo.MarkBorrowed(ctx, db, unit.ID, booking.ID); err != nil {
			return fmt.Errorf("mark equipment borrowed: %w", err)
		}
	}

	return nil
}

// RoomAvailable проверяет доступность помещения в интервале [start, end)
func (s *BookingService) RoomAvailable(ctx context.Context, spaceID int64, start, end time.Time) (bool, error) {
	space, err := s.spaceRepo.GetByID(ctx, s.db, spaceID)
	if err != nil {
		return false, fmt.Errorf("get space: %w", err)
	}
	if space == nil {
		return false, fmt.Errorf("space %d: %w", spaceID, ErrNotFound)
	}

	return s.roomAvailable(ctx, s.db, space, start, end)
}

func (s *BookingService) roomAvailable(ctx context.Context, db base.DBTX, space *model.StudySpace, start, end time.Time) (bool, error) {
	if space.SpaceStatus == model.SpaceStatusInUse {
		return false, nil
	}

	exists, err := s.bookingRepo.ExistsOverlapping(ctx, db, space.ID, start, end)
	if err != nil {
		return false, err
	}

	return !exists, nil
}

// EquipmentAvailable проверяет что в интервале [start, end) свободно
// хотя бы count единиц типа
func (s *BookingService) EquipmentAvailable(ctx context.Context, typeID int64, count int, start, end time.Time) (bool, error) {
	return s.equipmentAvailable(ctx, s.db, typeID, count, start, end)
}

func (s *BookingService) equipmentAvailable(ctx context.Context, db base.DBTX, typeID int64, count int, start, end time.Time) (bool, error) {
	equipmentType, err := s.equipmentRepo.GetTypeByID(ctx, db, typeID)
	if err != nil {
		return false, fmt.Errorf("get equipment type: %w", err)
	}
	if equipmentType == nil {
		return false, fmt.Errorf("equipment type %d: %w", typeID, ErrNotFound)
	}

	borrowed, err := s.equipmentRepo.CountBorrowedOverlapping(ctx, db, typeID, start, end)
	if err != nil {
		return false, fmt.Errorf("count borrowed equipment: %w", err)
	}

	return equipmentType.TotalQuantity-borrowed >= count, nil
}

// UpdateStatus переводит бронирование в новый статус. Статус помещения
// меняется по фиксированному соответствию, на CHECK_OUT и CANCELLED
// оборудование возвращается в пул. Переходы из конечных статусов запрещены.
func (s *BookingService) UpdateStatus(ctx context.Context, bookingID int64, newStatus model.BookingStatus) (*model.Booking, error) {
	if !newStatus.Valid() {
		return nil, fmt.Errorf("status %q: %w", newStatus, ErrInvalidStatus)
	}

	tx, err := s.txer.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}

	if booking.Status.Terminal() {
		return nil, fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, ErrInvalidBookingState)
	}

	if err := s.transition(ctx, tx, booking, newStatus); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.invalidateUsage(ctx)

	s.logger.Info("Booking status updated",
		zap.Int64("booking_id", bookingID),
		zap.String("status", string(newStatus)),
	)

	return booking, nil
}

// CancelBooking отменяет бронирование. Разрешено только владельцу или
// менеджеру и только пока бронирование в статусе CONFIRMED.
func (s *BookingService) CancelBooking(ctx context.Context, bookingID, actorID int64) error {
	actor, err := s.userRepo.GetByID(ctx, s.db, actorID)
	if err != nil {
		return fmt.Errorf("get actor: %w", err)
	}
	if actor == nil {
		return fmt.Errorf("user %d: %w", actorID, ErrNotFound)
	}

	tx, err := s.txer.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}

	if !auth.CanCancelBooking(actor, booking) {
		return fmt.Errorf("user %d cannot cancel booking %d: %w", actorID, bookingID, ErrPermissionDenied)
	}

	if booking.Status != model.BookingStatusConfirmed {
		return fmt.Errorf("booking %d is %s: %w", bookingID, booking.Status, ErrInvalidBookingState)
	}

	if err := s.transition(ctx, tx, booking, model.BookingStatusCancelled); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.invalidateUsage(ctx)

	s.logger.Info("Booking canceled",
		zap.Int64("booking_id", bookingID),
		zap.Int64("actor_id", actorID),
	)

	return nil
}

// ProcessQRScan обрабатывает скан QR-кода: первый валидный скан делает
// check-in, второй — check-out. Это единственный путь в CHECK_IN.
func (s *BookingService) ProcessQRScan(ctx context.Context, token string, qrData string) (*model.Booking, error) {
	qrToken, err := uuid.Parse(token)
	if err != nil {
		return nil, fmt.Errorf("parse qr token: %w", ErrInvalidQRData)
	}

	qrCode, err := s.qrRepo.GetByToken(ctx, s.db, qrToken)
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	if qrCode == nil {
		return nil, fmt.Errorf("qr code %s: %w", token, ErrNotFound)
	}

	// Строгий разбор: любые огрехи формата — невалидные данные
	payload, err := qr.Parse(qrData)
	if err != nil {
		return nil, fmt.Errorf("parse qr payload: %v: %w", err, ErrInvalidQRData)
	}

	tx, err := s.txer.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, qrCode.BookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", qrCode.BookingID, ErrNotFound)
	}

	if payload.QRID != qrCode.Token || payload.BookingID != booking.ID {
		return nil, fmt.Errorf("qr payload does not match stored code: %w", ErrInvalidQRData)
	}

	now := s.now()
	if now.Before(payload.StartTime) || now.After(payload.EndTime) {
		return nil, fmt.Errorf("scan at %s outside booking window: %w", now, ErrInvalidQRData)
	}

	var next model.BookingStatus
	switch booking.Status {
	case model.BookingStatusConfirmed:
		next = model.BookingStatusCheckIn
	case model.BookingStatusCheckIn:
		next = model.BookingStatusCheckOut
	default:
		return nil, fmt.Errorf("booking %d is %s: %w", booking.ID, booking.Status, ErrInvalidBookingState)
	}

	if err := s.transition(ctx, tx, booking, next); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}

	s.invalidateUsage(ctx)

	s.logger.Info("QR scan processed",
		zap.Int64("booking_id", booking.ID),
		zap.String("status", string(next)),
	)

	return booking, nil
}

// AutoTransition применяет переход только если бронирование всё ещё в
// ожидаемом статусе. Используется reconciler'ом: если пользователь успел
// сделать check-in/check-out раньше, переход не выполняется.
func (s *BookingService) AutoTransition(ctx context.Context, bookingID int64, expected, next model.BookingStatus) error {
	tx, err := s.txer.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	booking, err := s.bookingRepo.GetByIDForUpdate(ctx, tx, bookingID)
	if err != nil {
		return fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}

	if booking.Status != expected {
		return fmt.Errorf("booking %d is %s, expected %s: %w", bookingID, booking.Status, expected, ErrInvalidBookingState)
	}

	if err := s.transition(ctx, tx, booking, next); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	s.invalidateUsage(ctx)

	return nil
}

// transition применяет переход статуса внутри открытой транзакции:
// статус бронирования и помещения меняются в связке, на конечных
// статусах оборудование возвращается в пул
func (s *BookingService) transition(ctx context.Context, db base.DBTX, booking *model.Booking, next model.BookingStatus) error {
	if err := s.bookingRepo.UpdateStatus(ctx, db, booking.ID, next); err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if err := s.spaceRepo.UpdateStatus(ctx, db, booking.SpaceID, model.SpaceStatusFor(next)); err != nil {
		return fmt.Errorf("update space status: %w", err)
	}

	if next == model.BookingStatusCheckOut || next == model.BookingStatusCancelled {
		returned, err := s.equipmentRepo.ReturnByBookingID(ctx, db, booking.ID)
		if err != nil {
			return fmt.Errorf("return equipment: %w", err)
		}
		if returned > 0 {
			s.logger.Info("Equipment returned",
				zap.Int64("booking_id", booking.ID),
				zap.Int64("count", returned),
			)
		}
	}

	booking.Status = next

	return nil
}

// GetByID получает бронирование по ID
func (s *BookingService) GetByID(ctx context.Context, bookingID int64) (*model.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, s.db, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	if booking == nil {
		return nil, fmt.Errorf("booking %d: %w", bookingID, ErrNotFound)
	}

	return booking, nil
}

// GetUserBookings получает бронирования пользователя. Чужие бронирования
// доступны только менеджеру.
func (s *BookingService) GetUserBookings(ctx context.Context, userID, actorID int64) ([]*model.Booking, error) {
	if userID != actorID {
		actor, err := s.userRepo.GetByID(ctx, s.db, actorID)
		if err != nil {
			return nil, fmt.Errorf("get actor: %w", err)
		}
		if !auth.CanViewAllBookings(actor) {
			return nil, fmt.Errorf("user %d cannot view bookings of user %d: %w", actorID, userID, ErrPermissionDenied)
		}
	}

	return s.bookingRepo.ListByUserID(ctx, s.db, userID)
}

// GetQRCode получает QR-код бронирования
func (s *BookingService) GetQRCode(ctx context.Context, bookingID int64) (*model.QRCode, error) {
	qrCode, err := s.qrRepo.GetByBookingID(ctx, s.db, bookingID)
	if err != nil {
		return nil, fmt.Errorf("get qr code: %w", err)
	}
	if qrCode == nil {
		return nil, fmt.Errorf("qr code for booking %d: %w", bookingID, ErrNotFound)
	}

	return qrCode, nil
}

// invalidateUsage сбрасывает кэш статистики после мутаций
func (s *BookingService) invalidateUsage(ctx context.Context) {
	if err := s.cache.Delete(ctx, usageCacheKey); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Warn("Failed to invalidate usage cache", zap.Error(err))
	}
}
