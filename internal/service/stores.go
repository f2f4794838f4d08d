package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner открывает транзакции; ему удовлетворяет *pgxpool.Pool
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Интерфейсы хранилищ, реализуемые internal/repository.
// Сервисы принимают их вместо конкретных типов чтобы state machine
// можно было тестировать без базы.

type UserStore interface {
	Create(ctx context.Context, db base.DBTX, user *model.User) error
	GetByID(ctx context.Context, db base.DBTX, id int64) (*model.User, error)
	GetByUsername(ctx context.Context, db base.DBTX, username string) (*model.User, error)
	Update(ctx context.Context, db base.DBTX, user *model.User) error
}

type SpaceStore interface {
	Create(ctx context.Context, db base.DBTX, space *model.StudySpace) error
	GetByID(ctx context.Context, db base.DBTX, id int64) (*model.StudySpace, error)
	GetByIDForUpdate(ctx context.Context, db base.DBTX, id int64) (*model.StudySpace, error)
	GetByName(ctx context.Context, db base.DBTX, name string) (*model.StudySpace, error)
	UpdateStatus(ctx context.Context, db base.DBTX, id int64, status model.SpaceStatus) error
	Update(ctx context.Context, db base.DBTX, space *model.StudySpace) error
	Delete(ctx context.Context, db base.DBTX, id int64) error
	List(ctx context.Context, db base.DBTX) ([]*model.StudySpace, error)
	SearchAvailable(ctx context.Context, db base.DBTX, start, end time.Time, minCapacity int, spaceType model.SpaceType) ([]*model.StudySpace, error)
	ListWithUsage(ctx context.Context, db base.DBTX) ([]*model.SpaceUsage, error)
}

type BookingStore interface {
	Create(ctx context.Context, db base.DBTX, booking *model.Booking) error
	GetByID(ctx context.Context, db base.DBTX, id int64) (*model.Booking, error)
	GetByIDForUpdate(ctx context.Context, db base.DBTX, id int64) (*model.Booking, error)
	UpdateStatus(ctx context.Context, db base.DBTX, id int64, status model.BookingStatus) error
	Delete(ctx context.Context, db base.DBTX, id int64) error
	ExistsOverlapping(ctx context.Context, db base.DBTX, spaceID int64, start, end time.Time) (bool, error)
	GetActiveAt(ctx context.Context, db base.DBTX, spaceID int64, at time.Time) (*model.Booking, error)
	ListByUserID(ctx context.Context, db base.DBTX, userID int64) ([]*model.Booking, error)
	ListActive(ctx context.Context, db base.DBTX) ([]*model.Booking, error)
	ListStartingBetween(ctx context.Context, db base.DBTX, from, to time.Time) ([]*model.Booking, error)
	ListEndingBetween(ctx context.Context, db base.DBTX, from, to time.Time) ([]*model.Booking, error)
}

type EquipmentStore interface {
	GetTypeByID(ctx context.Context, db base.DBTX, id int64) (*model.EquipmentType, error)
	ListTypes(ctx context.Context, db base.DBTX) ([]*model.EquipmentType, error)
	CountBorrowedOverlapping(ctx context.Context, db base.DBTX, typeID int64, start, end time.Time) (int, error)
	SelectAvailableForUpdate(ctx context.Context, db base.DBTX, typeID int64, count int) ([]*model.Equipment, error)
	MarkBorrowed(ctx context.Context, db base.DBTX, equipmentID, bookingID int64) error
	ReturnByBookingID(ctx context.Context, db base.DBTX, bookingID int64) (int64, error)
	ListByBookingID(ctx context.Context, db base.DBTX, bookingID int64) ([]*model.Equipment, error)
}

type QRStore interface {
	Create(ctx context.Context, db base.DBTX, qrCode *model.QRCode) error
	GetByToken(ctx context.Context, db base.DBTX, token uuid.UUID) (*model.QRCode, error)
	GetByBookingID(ctx context.Context, db base.DBTX, bookingID int64) (*model.QRCode, error)
}

type ConfigStore interface {
	Get(ctx context.Context, db base.DBTX) (*model.NotificationConfig, error)
	Update(ctx context.Context, db base.DBTX, config *model.NotificationConfig) error
}
