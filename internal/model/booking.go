package model

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED" // Подтверждено, ожидает check-in
	BookingStatusCheckIn   BookingStatus = "CHECK_IN"  // Пользователь в помещении
	BookingStatusCheckOut  BookingStatus = "CHECK_OUT" // Завершено
	BookingStatusCancelled BookingStatus = "CANCELLED" // Отменено
)

// GracePeriod окно ожидания после start_time (no-show) и end_time (overstay)
const GracePeriod = 30 * time.Minute

// spaceStatusMapping фиксированное соответствие статуса бронирования и статуса помещения
var spaceStatusMapping = map[BookingStatus]SpaceStatus{
	BookingStatusConfirmed: SpaceStatusBooked,
	BookingStatusCheckIn:   SpaceStatusInUse,
	BookingStatusCheckOut:  SpaceStatusEmpty,
	BookingStatusCancelled: SpaceStatusEmpty,
}

// SpaceStatusFor возвращает статус помещения для статуса бронирования
func SpaceStatusFor(status BookingStatus) SpaceStatus {
	if s, ok := spaceStatusMapping[status]; ok {
		return s
	}
	return SpaceStatusEmpty
}

// Valid проверяет что статус является одним из известных значений
func (s BookingStatus) Valid() bool {
	_, ok := spaceStatusMapping[s]
	return ok
}

// Terminal проверяет что статус конечный (переходы из него запрещены)
func (s BookingStatus) Terminal() bool {
	return s == BookingStatusCheckOut || s == BookingStatusCancelled
}

type Booking struct {
	ID        int64         `json:"id"`
	UserID    int64         `json:"user_id"`
	SpaceID   int64         `json:"space_id"`
	Status    BookingStatus `json:"status"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`

	// Дополнительные поля для удобства (не из БД)
	User  *User       `json:"user,omitempty"`
	Space *StudySpace `json:"space,omitempty"`
}

// Overlaps проверяет пересечение с полуоткрытым интервалом [start, end)
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
