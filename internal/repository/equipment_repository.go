package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
)

type EquipmentRepository struct{}

func NewEquipmentRepository() *EquipmentRepository {
	return &EquipmentRepository{}
}

// CreateType создаёт новый тип оборудования
func (r *EquipmentRepository) CreateType(ctx context.Context, db base.DBTX, equipmentType *model.EquipmentType) error {
	query := `
		INSERT INTO equipment_types (name, description, total_quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`

	err := db.QueryRow(
		ctx, query,
		equipmentType.Name,
		equipmentType.Description,
		equipmentType.TotalQuantity,
	).Scan(&equipmentType.ID)

	if err != nil {
		return fmt.Errorf("create equipment type: %w", err)
	}

	return nil
}

// GetTypeByID получает тип оборудования по ID
func (r *EquipmentRepository) GetTypeByID(ctx context.Context, db base.DBTX, id int64) (*model.EquipmentType, error) {
	query := `
		SELECT id, name, description, total_quantity
		FROM equipment_types
		WHERE id = $1
	`

	var equipmentType model.EquipmentType
	err := db.QueryRow(ctx, query, id).Scan(
		&equipmentType.ID,
		&equipmentType.Name,
		&equipmentType.Description,
		&equipmentType.TotalQuantity,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get equipment type by id: %w", err)
	}

	return &equipmentType, nil
}

// ListTypes получает все типы оборудования
func (r *EquipmentRepository) ListTypes(ctx context.Context, db base.DBTX) ([]*model.EquipmentType, error) {
	query := `
		SELECT id, name, description, total_quantity
		FROM equipment_types
		ORDER BY name
	`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list equipment types: %w", err)
	}
	defer rows.Close()

	var types []*model.EquipmentType
	for rows.Next() {
		var equipmentType model.EquipmentType
		err := rows.Scan(
			&equipmentType.ID,
			&equipmentType.Name,
			&equipmentType.Description,
			&equipmentType.TotalQuantity,
		)
		if err != nil {
			return nil, fmt.Errorf("scan equipment type: %w", err)
		}
		types = append(types, &equipmentType)
	}

	return types, rows.Err()
}

// CountBorrowedOverlapping считает единицы типа, выданные бронированиям
// пересекающим интервал [start, end)
func (r *EquipmentRepository) CountBorrowedOverlapping(ctx context.Context, db base.DBTX, typeID int64, start, end time.Time) (int, error) {
	query := `
		SELECT COUNT(*)
		FROM equipment e
		JOIN bookings b ON b.id = e.booking_id
		WHERE e.equipment_type_id = $1
		  AND e.status = 'BORROWED'
		  AND b.start_time < $3
		  AND b.end_time > $2
	`

	var count int
	err := db.QueryRow(ctx, query, typeID, start, end).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count borrowed equipment: %w", err)
	}

	return count, nil
}

// SelectAvailableForUpdate выбирает count свободных единиц типа с наименьшими ID
// и блокирует их до конца транзакции
func (r *EquipmentRepository) SelectAvailableForUpdate(ctx context.Context, db base.DBTX, typeID int64, count int) ([]*model.Equipment, error) {
	query := `
		SELECT id, equipment_type_id, booking_id, status
		FROM equipment
		WHERE equipment_type_id = $1
		  AND status = 'AVAILABLE'
		ORDER BY id
		LIMIT $2
		FOR UPDATE
	`

	rows, err := db.Query(ctx, query, typeID, count)
	if err != nil {
		return nil, fmt.Errorf("select available equipment: %w", err)
	}
	defer rows.Close()

	var units []*model.Equipment
	for rows.Next() {
		var unit model.Equipment
		err := rows.Scan(
			&unit.ID,
			&unit.EquipmentTypeID,
			&unit.BookingID,
			&unit.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		units = append(units, &unit)
	}

	return units, rows.Err()
}

// MarkBorrowed помечает единицу выданной и привязывает её к бронированию
func (r *EquipmentRepository) MarkBorrowed(ctx context.Context, db base.DBTX, equipmentID, bookingID int64) error {
	query := `
		UPDATE equipment
		SET status = 'BORROWED', booking_id = $1
		WHERE id = $2 AND status = 'AVAILABLE'
	`

	result, err := db.Exec(ctx, query, bookingID, equipmentID)
	if err != nil {
		return fmt.Errorf("mark equipment borrowed: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("equipment not available")
	}

	return nil
}

// ReturnByBookingID возвращает всё оборудование бронирования в пул
func (r *EquipmentRepository) ReturnByBookingID(ctx context.Context, db base.DBTX, bookingID int64) (int64, error) {
	query := `
		UPDATE equipment
		SET status = 'AVAILABLE', booking_id = NULL
		WHERE booking_id = $1 AND status = 'BORROWED'
	`

	result, err := db.Exec(ctx, query, bookingID)
	if err != nil {
		return 0, fmt.Errorf("return equipment: %w", err)
	}

	return result.RowsAffected(), nil
}

// ListByBookingID получает оборудование, выданное бронированию
func (r *EquipmentRepository) ListByBookingID(ctx context.Context, db base.DBTX, bookingID int64) ([]*model.Equipment, error) {
	query := `
		SELECT id, equipment_type_id, booking_id, status
		FROM equipment
		WHERE booking_id = $1
		ORDER BY id
	`

	rows, err := db.Query(ctx, query, bookingID)
	if err != nil {
		return nil, fmt.Errorf("list equipment by booking: %w", err)
	}
	defer rows.Close()

	var units []*model.Equipment
	for rows.Next() {
		var unit model.Equipment
		err := rows.Scan(
			&unit.ID,
			&unit.EquipmentTypeID,
			&unit.BookingID,
			&unit.Status,
		)
		if err != nil {
			return nil, fmt.Errorf("scan equipment: %w", err)
		}
		units = append(units, &unit)
	}

	return units, rows.Err()
}
