package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/google/uuid"
)

type QRRepository struct{}

func NewQRRepository() *QRRepository {
	return &QRRepository{}
}

// Create сохраняет QR-код бронирования. Уникальный индекс на booking_id
// гарантирует один QR-код на бронирование.
func (r *QRRepository) Create(ctx context.Context, db base.DBTX, qrCode *model.QRCode) error {
	query := `
		INSERT INTO qr_codes (token, booking_id, payload, image)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	err := db.QueryRow(
		ctx, query,
		qrCode.Token,
		qrCode.BookingID,
		qrCode.Payload,
		qrCode.Image,
	).Scan(&qrCode.ID, &qrCode.CreatedAt)

	if err != nil {
		return fmt.Errorf("create qr code: %w", err)
	}

	return nil
}

// GetByToken получает QR-код по публичному токену
func (r *QRRepository) GetByToken(ctx context.Context, db base.DBTX, token uuid.UUID) (*model.QRCode, error) {
	query := `
		SELECT id, token, booking_id, payload, image, created_at
		FROM qr_codes
		WHERE token = $1
	`

	var qrCode model.QRCode
	err := db.QueryRow(ctx, query, token).Scan(
		&qrCode.ID,
		&qrCode.Token,
		&qrCode.BookingID,
		&qrCode.Payload,
		&qrCode.Image,
		&qrCode.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get qr code by token: %w", err)
	}

	return &qrCode, nil
}

// GetByBookingID получает QR-код бронирования
func (r *QRRepository) GetByBookingID(ctx context.Context, db base.DBTX, bookingID int64) (*model.QRCode, error) {
	query := `
		SELECT id, token, booking_id, payload, image, created_at
		FROM qr_codes
		WHERE booking_id = $1
	`

	var qrCode model.QRCode
	err := db.QueryRow(ctx, query, bookingID).Scan(
		&qrCode.ID,
		&qrCode.Token,
		&qrCode.BookingID,
		&qrCode.Payload,
		&qrCode.Image,
		&qrCode.CreatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get qr code by booking: %w", err)
	}

	return &qrCode, nil
}
