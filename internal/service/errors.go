package service

import "errors"

// Ошибки бизнес-логики. Все восстановимые: API-слой отображает их
// в 4xx-ответы, процесс они не останавливают.
var (
	ErrInvalidInterval       = errors.New("invalid booking interval")
	ErrSpaceUnavailable      = errors.New("space is not available")
	ErrInsufficientEquipment = errors.New("not enough equipment available")
	ErrInvalidQRData         = errors.New("invalid qr data")
	ErrInvalidBookingState   = errors.New("booking is not in a valid state")
	ErrInvalidStatus         = errors.New("unknown booking status")
	ErrNotFound              = errors.New("not found")
	ErrPermissionDenied      = errors.New("permission denied")
)
