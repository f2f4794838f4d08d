package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type BookingRepository struct{}

func NewBookingRepository() *BookingRepository {
	return &BookingRepository{}
}

const bookingColumns = `id, user_id, space_id, status, start_time, end_time, created_at, updated_at`

func scanBooking(row pgx.Row) (*model.Booking, error) {
	var booking model.Booking
	err := row.Scan(
		&booking.ID,
		&booking.UserID,
		&booking.SpaceID,
		&booking.Status,
		&booking.StartTime,
		&booking.EndTime,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create создаёт новое бронирование
func (r *BookingRepository) Create(ctx context.Context, db base.DBTX, booking *model.Booking) error {
	query := `
		INSERT INTO bookings (user_id, space_id, status, start_time, end_time)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err := db.QueryRow(
		ctx, query,
		booking.UserID,
		booking.SpaceID,
		booking.Status,
		booking.StartTime,
		booking.EndTime,
	).Scan(&booking.ID, &booking.CreatedAt, &booking.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create booking: %w", err)
	}

	return nil
}

// GetByID получает бронирование по ID
func (r *BookingRepository) GetByID(ctx context.Context, db base.DBTX, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1`

	booking, err := scanBooking(db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking by id: %w", err)
	}

	return booking, nil
}

// GetByIDForUpdate получает бронирование по ID с блокировкой строки.
// Используется при переходах статуса чтобы reconciler не гонялся
// с пользовательским check-in/check-out.
func (r *BookingRepository) GetByIDForUpdate(ctx context.Context, db base.DBTX, id int64) (*model.Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE id = $1 FOR UPDATE`

	booking, err := scanBooking(db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get booking for update: %w", err)
	}

	return booking, nil
}

// UpdateStatus обновляет статус бронирования
func (r *BookingRepository) UpdateStatus(ctx context.Context, db base.DBTX, id int64, status model.BookingStatus) error {
	query := `
		UPDATE bookings
		SET status = $1, updated_at = now()
		WHERE id = $2
	`

	result, err := db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// Delete удаляет бронирование
func (r *BookingRepository) Delete(ctx context.Context, db base.DBTX, id int64) error {
	query := `DELETE FROM bookings WHERE id = $1`

	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("booking not found")
	}

	return nil
}

// ExistsOverlapping проверяет есть ли неотменённое бронирование помещения,
// пересекающее полуоткрытый интервал [start, end)
func (r *BookingRepository) ExistsOverlapping(ctx context.Context, db base.DBTX, spaceID int64, start, end time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM bookings
			WHERE space_id = $1
			  AND status <> 'CANCELLED'
			  AND start_time < $3
			  AND end_time > $2
		)
	`

	var exists bool
	err := db.QueryRow(ctx, query, spaceID, start, end).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check overlapping booking: %w", err)
	}

	return exists, nil
}

// GetActiveAt получает активное бронирование помещения на момент времени at
func (r *BookingRepository) GetActiveAt(ctx context.Context, db base.DBTX, spaceID int64, at time.Time) (*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE space_id = $1
		  AND status IN ('CONFIRMED', 'CHECK_IN')
		  AND start_time <= $2
		  AND end_time > $2
		LIMIT 1
	`

	booking, err := scanBooking(db.QueryRow(ctx, query, spaceID, at))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get active booking: %w", err)
	}

	return booking, nil
}

// ListByUserID получает все бронирования пользователя
func (r *BookingRepository) ListByUserID(ctx context.Context, db base.DBTX, userID int64) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("get bookings by user: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListActive получает все бронирования в статусе CONFIRMED или CHECK_IN.
// Используется reconciler'ом для поиска no-show и overstay.
func (r *BookingRepository) ListActive(ctx context.Context, db base.DBTX) ([]*model.Booking, error) {
	query := `
		SELECT ` + bookingColumns + `
		FROM bookings
		WHERE status IN ('CONFIRMED', 'CHECK_IN')
		ORDER BY start_time
	`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list active bookings: %w", err)
	}
	defer rows.Close()

	return collectBookings(rows)
}

// ListStartingBetween получает CONFIRMED бронирования с start_time в окне [from, to].
// Пользователь и помещение заполняются для отправки напоминаний.
func (r *BookingRepository) ListStartingBetween(ctx context.Context, db base.DBTX, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.space_id, b.status, b.start_time, b.end_time, b.created_at, b.updated_at,
		       u.username, u.email, u.role, u.telegram_chat_id,
		       s.name
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN study_spaces s ON s.id = b.space_id
		WHERE b.status = 'CONFIRMED'
		  AND b.start_time >= $1
		  AND b.start_time <= $2
		ORDER BY b.start_time
	`

	rows, err := db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings starting between: %w", err)
	}
	defer rows.Close()

	return collectBookingsWithRelations(rows)
}

// ListEndingBetween получает CHECK_IN бронирования с end_time в окне [from, to]
func (r *BookingRepository) ListEndingBetween(ctx context.Context, db base.DBTX, from, to time.Time) ([]*model.Booking, error) {
	query := `
		SELECT b.id, b.user_id, b.space_id, b.status, b.start_time, b.end_time, b.created_at, b.updated_at,
		       u.username, u.email, u.role, u.telegram_chat_id,
		       s.name
		FROM bookings b
		JOIN users u ON u.id = b.user_id
		JOIN study_spaces s ON s.id = b.space_id
		WHERE b.status = 'CHECK_IN'
		  AND b.end_time >= $1
		  AND b.end_time <= $2
		ORDER BY b.end_time
	`

	rows, err := db.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("list bookings ending between: %w", err)
	}
	defer rows.Close()

	return collectBookingsWithRelations(rows)
}

func collectBookings(rows pgx.Rows) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for rows.Next() {
		booking, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		bookings = append(bookings, booking)
	}
	return bookings, rows.Err()
}

func collectBookingsWithRelations(rows pgx.Rows) ([]*model.Booking, error) {
	var bookings []*model.Booking
	for rows.Next() {
		var booking model.Booking
		var user model.User
		var space model.StudySpace
		err := rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.SpaceID,
			&booking.Status,
			&booking.StartTime,
			&booking.EndTime,
			&booking.CreatedAt,
			&booking.UpdatedAt,
			&user.Username,
			&user.Email,
			&user.Role,
			&user.TelegramChatID,
			&space.Name,
		)
		if err != nil {
			return nil, fmt.Errorf("scan booking: %w", err)
		}
		user.ID = booking.UserID
		space.ID = booking.SpaceID
		booking.User = &user
		booking.Space = &space
		bookings = append(bookings, &booking)
	}
	return bookings, rows.Err()
}
