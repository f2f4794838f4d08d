// Package auth содержит явные проверки прав доступа к операциям ядра.
// Роли не наследуются: каждая операция консультируется с конкретным
// предикатом перед выполнением.
package auth

import "github.com/Freeeeeet/studyspace/internal/model"

// CanCancelBooking отменять бронирование может владелец или менеджер
func CanCancelBooking(actor *model.User, booking *model.Booking) bool {
	if actor == nil || booking == nil {
		return false
	}
	return actor.ID == booking.UserID || actor.Role == model.RoleManager
}

// CanManageSpaces управлять помещениями может только менеджер
func CanManageSpaces(actor *model.User) bool {
	return actor != nil && actor.Role == model.RoleManager
}

// CanViewAllBookings просматривать чужие бронирования может только менеджер
func CanViewAllBookings(actor *model.User) bool {
	return actor != nil && actor.Role == model.RoleManager
}
