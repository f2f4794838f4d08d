package model

import (
	"time"

	"github.com/google/uuid"
)

// QRCode один-к-одному с бронированием, создаётся ровно один раз при создании
type QRCode struct {
	ID        int64     `json:"id"`
	Token     uuid.UUID `json:"token"` // публичный идентификатор, попадает в payload
	BookingID int64     `json:"booking_id"`
	Payload   string    `json:"payload"`
	Image     []byte    `json:"-"` // PNG
	CreatedAt time.Time `json:"created_at"`
}
