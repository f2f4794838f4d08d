package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type bookingEnv struct {
	svc       *BookingService
	txer      *fakeTxer
	users     *fakeUserStore
	spaces    *fakeSpaceStore
	bookings  *fakeBookingStore
	equipment *fakeEquipmentStore
	qrs       *fakeQRStore
	now       time.Time
}

func newBookingEnv(t *testing.T) *bookingEnv {
	t.Helper()

	env := &bookingEnv{
		txer:      newFakeTxer(),
		users:     newFakeUserStore(),
		spaces:    newFakeSpaceStore(),
		bookings:  newFakeBookingStore(),
		equipment: newFakeEquipmentStore(),
		qrs:       newFakeQRStore(),
		now:       time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC),
	}

	env.svc = &BookingService{
		txer:          env.txer,
		userRepo:      env.users,
		spaceRepo:     env.spaces,
		bookingRepo:   env.bookings,
		equipmentRepo: env.equipment,
		qrRepo:        env.qrs,
		logger:        zap.NewNop(),
		now:           func() time.Time { return env.now },
	}

	env.users.users[1] = &model.User{ID: 1, Username: "alice", Email: "alice@example.com", Role: model.RoleStudent}
	env.users.users[2] = &model.User{ID: 2, Username: "bob", Email: "bob@example.com", Role: model.RoleStudent}
	env.users.users[3] = &model.User{ID: 3, Username: "boss", Email: "boss@example.com", Role: model.RoleManager}

	env.spaces.spaces[1] = &model.StudySpace{ID: 1, Name: "Room 101", Capacity: 4, SpaceType: model.SpaceTypeGroup, SpaceStatus: model.SpaceStatusEmpty}

	return env
}

// interval возвращает интервал бронирования через час после now
func (env *bookingEnv) interval() (time.Time, time.Time) {
	return env.now.Add(time.Hour), env.now.Add(3 * time.Hour)
}

func TestCreateBooking(t *testing.T) {
	env := newBookingEnv(t)
	env.equipment.addType(1, "projector", 2)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end,
		[]model.EquipmentRequest{{EquipmentTypeID: 1, Count: 2}})
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusConfirmed, booking.Status)
	assert.True(t, env.txer.tx.committed)
	assert.Equal(t, model.SpaceStatusBooked, env.spaces.spaces[1].SpaceStatus)

	borrowed, err := env.equipment.ListByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)
	assert.Len(t, borrowed, 2)
	for _, unit := range borrowed {
		assert.Equal(t, model.EquipmentStatusBorrowed, unit.Status)
	}

	qrCode, err := env.qrs.GetByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)
	require.NotNil(t, qrCode)
	assert.NotEmpty(t, qrCode.Image)
}

func TestCreateBooking_InvalidInterval(t *testing.T) {
	env := newBookingEnv(t)

	_, err := env.svc.CreateBooking(context.Background(), 1, 1, env.now.Add(3*time.Hour), env.now.Add(time.Hour), nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)

	// Начало в прошлом
	_, err = env.svc.CreateBooking(context.Background(), 1, 1, env.now.Add(-time.Hour), env.now.Add(time.Hour), nil)
	assert.ErrorIs(t, err, ErrInvalidInterval)
}

func TestCreateBooking_SpaceUnavailable(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	_, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	// Пересекающийся интервал того же помещения
	_, err = env.svc.CreateBooking(context.Background(), 2, 1, start.Add(time.Hour), end.Add(time.Hour), nil)
	assert.ErrorIs(t, err, ErrSpaceUnavailable)
	assert.True(t, env.txer.tx.rolledBack)
	assert.False(t, env.txer.tx.committed)
}

func TestCreateBooking_CancelledBookingFreesInterval(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelBooking(context.Background(), booking.ID, 1))

	// Интервал отменённого бронирования снова свободен
	_, err = env.svc.CreateBooking(context.Background(), 2, 1, start, end, nil)
	assert.NoError(t, err)
}

func TestCreateBooking_InsufficientEquipment(t *testing.T) {
	env := newBookingEnv(t)
	env.equipment.addType(1, "projector", 1)
	start, end := env.interval()

	_, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end,
		[]model.EquipmentRequest{{EquipmentTypeID: 1, Count: 2}})
	assert.ErrorIs(t, err, ErrInsufficientEquipment)

	// Нехватка оборудования откатывает бронирование целиком
	assert.True(t, env.txer.tx.rolledBack)
	assert.False(t, env.txer.tx.committed)
}

func TestCreateBooking_UnknownSpace(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	_, err := env.svc.CreateBooking(context.Background(), 1, 99, start, end, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestProcessQRScan_FullLifecycle(t *testing.T) {
	env := newBookingEnv(t)
	env.equipment.addType(1, "whiteboard", 1)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end,
		[]model.EquipmentRequest{{EquipmentTypeID: 1, Count: 1}})
	require.NoError(t, err)

	qrCode, err := env.qrs.GetByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)

	// Двигаем часы внутрь окна бронирования
	env.now = start.Add(5 * time.Minute)

	// Первый скан: check-in
	scanned, err := env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), qrCode.Payload)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCheckIn, scanned.Status)
	assert.Equal(t, model.SpaceStatusInUse, env.spaces.spaces[1].SpaceStatus)

	// Второй скан: check-out, оборудование возвращается
	scanned, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), qrCode.Payload)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCheckOut, scanned.Status)
	assert.Equal(t, model.SpaceStatusEmpty, env.spaces.spaces[1].SpaceStatus)

	borrowed, err := env.equipment.ListByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)
	assert.Empty(t, borrowed)

	// Третий скан: бронирование уже завершено
	_, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), qrCode.Payload)
	assert.ErrorIs(t, err, ErrInvalidBookingState)
}

func TestProcessQRScan_OutsideWindow(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	qrCode, err := env.qrs.GetByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)

	// До начала бронирования
	env.now = start.Add(-10 * time.Minute)
	_, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), qrCode.Payload)
	assert.ErrorIs(t, err, ErrInvalidQRData)

	// После конца бронирования
	env.now = end.Add(10 * time.Minute)
	_, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), qrCode.Payload)
	assert.ErrorIs(t, err, ErrInvalidQRData)
}

func TestProcessQRScan_TamperedPayload(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	qrCode, err := env.qrs.GetByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)

	env.now = start.Add(5 * time.Minute)

	// Подменён booking id
	tampered := strings.Replace(qrCode.Payload, "Booking ID: 1", "Booking ID: 999", 1)
	_, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), tampered)
	assert.ErrorIs(t, err, ErrInvalidQRData)

	// Изуродованная запись
	_, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), "garbage")
	assert.ErrorIs(t, err, ErrInvalidQRData)
}

func TestProcessQRScan_UnknownToken(t *testing.T) {
	env := newBookingEnv(t)

	_, err := env.svc.ProcessQRScan(context.Background(), "not-a-uuid", "")
	assert.ErrorIs(t, err, ErrInvalidQRData)

	_, err = env.svc.ProcessQRScan(context.Background(), "0b921f5a-95cb-43d4-a0a7-42cbd4c8345a", "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_TerminalGuard(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	env.bookings.bookings[1] = &model.Booking{
		ID: 1, UserID: 1, SpaceID: 1,
		Status: model.BookingStatusCheckOut, StartTime: start, EndTime: end,
	}

	_, err := env.svc.UpdateStatus(context.Background(), 1, model.BookingStatusCheckIn)
	assert.ErrorIs(t, err, ErrInvalidBookingState)
}

func TestUpdateStatus_UnknownStatus(t *testing.T) {
	env := newBookingEnv(t)

	_, err := env.svc.UpdateStatus(context.Background(), 1, model.BookingStatus("LOST"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestCancelBooking_Permissions(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	// Чужой студент не может отменить
	err = env.svc.CancelBooking(context.Background(), booking.ID, 2)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	// Менеджер может
	err = env.svc.CancelBooking(context.Background(), booking.ID, 3)
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusCancelled, env.bookings.bookings[booking.ID].Status)
	assert.Equal(t, model.SpaceStatusEmpty, env.spaces.spaces[1].SpaceStatus)
}

func TestCancelBooking_OnlyConfirmed(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	qrCode, err := env.qrs.GetByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)

	env.now = start.Add(5 * time.Minute)
	_, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), qrCode.Payload)
	require.NoError(t, err)

	// После check-in отмена запрещена
	err = env.svc.CancelBooking(context.Background(), booking.ID, 1)
	assert.ErrorIs(t, err, ErrInvalidBookingState)
}

func TestCancelBooking_ReturnsEquipment(t *testing.T) {
	env := newBookingEnv(t)
	env.equipment.addType(1, "projector", 2)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end,
		[]model.EquipmentRequest{{EquipmentTypeID: 1, Count: 2}})
	require.NoError(t, err)

	require.NoError(t, env.svc.CancelBooking(context.Background(), booking.ID, 1))

	borrowed, err := env.equipment.ListByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)
	assert.Empty(t, borrowed)
}

func TestAutoTransition_StatusMismatch(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	// Пользователь уже сделал check-in, авто-отмена не должна пройти
	qrCode, err := env.qrs.GetByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)
	env.now = start.Add(5 * time.Minute)
	_, err = env.svc.ProcessQRScan(context.Background(), qrCode.Token.String(), qrCode.Payload)
	require.NoError(t, err)

	err = env.svc.AutoTransition(context.Background(), booking.ID, model.BookingStatusConfirmed, model.BookingStatusCancelled)
	assert.ErrorIs(t, err, ErrInvalidBookingState)
	assert.Equal(t, model.BookingStatusCheckIn, env.bookings.bookings[booking.ID].Status)
}

func TestAutoTransition_NoShowReleasesEquipment(t *testing.T) {
	env := newBookingEnv(t)
	env.equipment.addType(1, "projector", 1)
	start, end := env.interval()

	booking, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end,
		[]model.EquipmentRequest{{EquipmentTypeID: 1, Count: 1}})
	require.NoError(t, err)

	// Пользователь так и не пришёл: авто-отмена возвращает оборудование
	err = env.svc.AutoTransition(context.Background(), booking.ID, model.BookingStatusConfirmed, model.BookingStatusCancelled)
	require.NoError(t, err)

	assert.Equal(t, model.BookingStatusCancelled, env.bookings.bookings[booking.ID].Status)
	assert.Equal(t, model.SpaceStatusEmpty, env.spaces.spaces[1].SpaceStatus)

	borrowed, err := env.equipment.ListByBookingID(context.Background(), nil, booking.ID)
	require.NoError(t, err)
	assert.Empty(t, borrowed)
}

func TestGetUserBookings_Permissions(t *testing.T) {
	env := newBookingEnv(t)
	start, end := env.interval()

	_, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end, nil)
	require.NoError(t, err)

	// Свои бронирования доступны всегда
	bookings, err := env.svc.GetUserBookings(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)

	// Чужие — только менеджеру
	_, err = env.svc.GetUserBookings(context.Background(), 1, 2)
	assert.ErrorIs(t, err, ErrPermissionDenied)

	bookings, err = env.svc.GetUserBookings(context.Background(), 1, 3)
	require.NoError(t, err)
	assert.Len(t, bookings, 1)
}

func TestEquipmentAvailable_CountsBorrowed(t *testing.T) {
	env := newBookingEnv(t)
	env.equipment.addType(1, "projector", 2)
	start, end := env.interval()

	_, err := env.svc.CreateBooking(context.Background(), 1, 1, start, end,
		[]model.EquipmentRequest{{EquipmentTypeID: 1, Count: 1}})
	require.NoError(t, err)

	available, err := env.svc.EquipmentAvailable(context.Background(), 1, 1, start, end)
	require.NoError(t, err)
	assert.True(t, available)

	available, err = env.svc.EquipmentAvailable(context.Background(), 1, 2, start, end)
	require.NoError(t, err)
	assert.False(t, available)
}
