package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

type SpaceRepository struct{}

func NewSpaceRepository() *SpaceRepository {
	return &SpaceRepository{}
}

const spaceColumns = `id, name, capacity, space_type, space_status`

func scanSpace(row pgx.Row) (*model.StudySpace, error) {
	var space model.StudySpace
	err := row.Scan(
		&space.ID,
		&space.Name,
		&space.Capacity,
		&space.SpaceType,
		&space.SpaceStatus,
	)
	if err != nil {
		return nil, err
	}
	return &space, nil
}

// Create создаёт новое помещение
func (r *SpaceRepository) Create(ctx context.Context, db base.DBTX, space *model.StudySpace) error {
	query := `
		INSERT INTO study_spaces (name, capacity, space_type, space_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := db.QueryRow(
		ctx, query,
		space.Name,
		space.Capacity,
		space.SpaceType,
		space.SpaceStatus,
	).Scan(&space.ID)

	if err != nil {
		return fmt.Errorf("create space: %w", err)
	}

	return nil
}

// GetByID получает помещение по ID
func (r *SpaceRepository) GetByID(ctx context.Context, db base.DBTX, id int64) (*model.StudySpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM study_spaces WHERE id = $1`

	space, err := scanSpace(db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get space by id: %w", err)
	}

	return space, nil
}

// GetByIDForUpdate получает помещение по ID с блокировкой строки.
// Блокировка удерживается до конца транзакции и сериализует
// конкурирующие попытки бронирования одного помещения.
func (r *SpaceRepository) GetByIDForUpdate(ctx context.Context, db base.DBTX, id int64) (*model.StudySpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM study_spaces WHERE id = $1 FOR UPDATE`

	space, err := scanSpace(db.QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get space for update: %w", err)
	}

	return space, nil
}

// GetByName получает помещение по уникальному имени
func (r *SpaceRepository) GetByName(ctx context.Context, db base.DBTX, name string) (*model.StudySpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM study_spaces WHERE name = $1`

	space, err := scanSpace(db.QueryRow(ctx, query, name))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get space by name: %w", err)
	}

	return space, nil
}

// UpdateStatus обновляет статус помещения
func (r *SpaceRepository) UpdateStatus(ctx context.Context, db base.DBTX, id int64, status model.SpaceStatus) error {
	query := `
		UPDATE study_spaces
		SET space_status = $1
		WHERE id = $2
	`

	result, err := db.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update space status: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("space not found")
	}

	return nil
}

// Update обновляет параметры помещения
func (r *SpaceRepository) Update(ctx context.Context, db base.DBTX, space *model.StudySpace) error {
	query := `
		UPDATE study_spaces
		SET name = $1, capacity = $2, space_type = $3
		WHERE id = $4
	`

	result, err := db.Exec(ctx, query, space.Name, space.Capacity, space.SpaceType, space.ID)
	if err != nil {
		return fmt.Errorf("update space: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("space not found")
	}

	return nil
}

// Delete удаляет помещение
func (r *SpaceRepository) Delete(ctx context.Context, db base.DBTX, id int64) error {
	query := `DELETE FROM study_spaces WHERE id = $1`

	result, err := db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete space: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("space not found")
	}

	return nil
}

// List получает все помещения
func (r *SpaceRepository) List(ctx context.Context, db base.DBTX) ([]*model.StudySpace, error) {
	query := `SELECT ` + spaceColumns + ` FROM study_spaces ORDER BY name`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list spaces: %w", err)
	}
	defer rows.Close()

	var spaces []*model.StudySpace
	for rows.Next() {
		space, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, space)
	}

	return spaces, rows.Err()
}

// SearchAvailable ищет помещения свободные в интервале [start, end).
// minCapacity <= 0 и пустой spaceType отключают соответствующий фильтр.
func (r *SpaceRepository) SearchAvailable(ctx context.Context, db base.DBTX, start, end time.Time, minCapacity int, spaceType model.SpaceType) ([]*model.StudySpace, error) {
	query := `
		SELECT ` + spaceColumns + `
		FROM study_spaces s
		WHERE s.space_status <> 'INUSE'
		  AND ($1 <= 0 OR s.capacity >= $1)
		  AND ($2 = '' OR s.space_type = $2)
		  AND NOT EXISTS (
			SELECT 1 FROM bookings b
			WHERE b.space_id = s.id
			  AND b.status <> 'CANCELLED'
			  AND b.start_time < $4
			  AND b.end_time > $3
		  )
		ORDER BY s.name
	`

	rows, err := db.Query(ctx, query, minCapacity, string(spaceType), start, end)
	if err != nil {
		return nil, fmt.Errorf("search available spaces: %w", err)
	}
	defer rows.Close()

	var spaces []*model.StudySpace
	for rows.Next() {
		space, err := scanSpace(rows)
		if err != nil {
			return nil, fmt.Errorf("scan space: %w", err)
		}
		spaces = append(spaces, space)
	}

	return spaces, rows.Err()
}

// ListWithUsage получает все помещения со статистикой бронирований
func (r *SpaceRepository) ListWithUsage(ctx context.Context, db base.DBTX) ([]*model.SpaceUsage, error) {
	query := `
		SELECT s.id, s.name, s.capacity, s.space_type, s.space_status,
		       COUNT(b.id) FILTER (WHERE b.status <> 'CANCELLED') AS total_bookings,
		       COUNT(b.id) FILTER (WHERE b.status = 'CHECK_IN') AS active_checkins
		FROM study_spaces s
		LEFT JOIN bookings b ON b.space_id = s.id
		GROUP BY s.id
		ORDER BY s.name
	`

	rows, err := db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list spaces with usage: %w", err)
	}
	defer rows.Close()

	var usages []*model.SpaceUsage
	for rows.Next() {
		var usage model.SpaceUsage
		err := rows.Scan(
			&usage.Space.ID,
			&usage.Space.Name,
			&usage.Space.Capacity,
			&usage.Space.SpaceType,
			&usage.Space.SpaceStatus,
			&usage.TotalBookings,
			&usage.ActiveCheckins,
		)
		if err != nil {
			return nil, fmt.Errorf("scan space usage: %w", err)
		}
		usages = append(usages, &usage)
	}

	return usages, rows.Err()
}
