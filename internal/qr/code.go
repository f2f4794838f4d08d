package qr

import (
	"fmt"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/google/uuid"
)

// NewCode выпускает QR-код для бронирования: генерирует токен,
// собирает текстовую запись и рендерит изображение. Запись в БД
// остаётся за вызывающей стороной (внутри её транзакции).
func NewCode(booking *model.Booking, user *model.User, space *model.StudySpace) (*model.QRCode, error) {
	token := uuid.New()

	payload := Encode(Payload{
		QRID:      token,
		BookingID: booking.ID,
		User:      user.Username,
		Space:     space.Name,
		StartTime: booking.StartTime,
		EndTime:   booking.EndTime,
	})

	image, err := RenderCard(payload)
	if err != nil {
		return nil, fmt.Errorf("render qr card: %w", err)
	}

	return &model.QRCode{
		Token:     token,
		BookingID: booking.ID,
		Payload:   payload,
		Image:     image,
	}, nil
}
