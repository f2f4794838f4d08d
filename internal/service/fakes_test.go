package service

import (
	"context"
	"time"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Фейковые хранилища держат состояние в памяти и игнорируют аргумент db.
// Транзакционность проверяется через флаги fakeTx.

type fakeTx struct {
	pgx.Tx
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Commit(ctx context.Context) error {
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(ctx context.Context) error {
	if !t.committed {
		t.rolledBack = true
	}
	return nil
}

type fakeTxer struct {
	tx *fakeTx
}

func newFakeTxer() *fakeTxer {
	return &fakeTxer{tx: &fakeTx{}}
}

func (f *fakeTxer) Begin(ctx context.Context) (pgx.Tx, error) {
	f.tx = &fakeTx{}
	return f.tx, nil
}

type fakeUserStore struct {
	users map[int64]*model.User
}

func newFakeUserStore(users ...*model.User) *fakeUserStore {
	s := &fakeUserStore{users: make(map[int64]*model.User)}
	for _, u := range users {
		s.users[u.ID] = u
	}
	return s
}

func (s *fakeUserStore) Create(ctx context.Context, db base.DBTX, user *model.User) error {
	user.ID = int64(len(s.users) + 1)
	s.users[user.ID] = user
	return nil
}

func (s *fakeUserStore) GetByID(ctx context.Context, db base.DBTX, id int64) (*model.User, error) {
	return s.users[id], nil
}

func (s *fakeUserStore) GetByUsername(ctx context.Context, db base.DBTX, username string) (*model.User, error) {
	for _, u := range s.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (s *fakeUserStore) Update(ctx context.Context, db base.DBTX, user *model.User) error {
	s.users[user.ID] = user
	return nil
}

type fakeSpaceStore struct {
	spaces map[int64]*model.StudySpace
}

func newFakeSpaceStore(spaces ...*model.StudySpace) *fakeSpaceStore {
	s := &fakeSpaceStore{spaces: make(map[int64]*model.StudySpace)}
	for _, sp := range spaces {
		s.spaces[sp.ID] = sp
	}
	return s
}

func (s *fakeSpaceStore) Create(ctx context.Context, db base.DBTX, space *model.StudySpace) error {
	space.ID = int64(len(s.spaces) + 1)
	s.spaces[space.ID] = space
	return nil
}

func (s *fakeSpaceStore) GetByID(ctx context.Context, db base.DBTX, id int64) (*model.StudySpace, error) {
	return s.spaces[id], nil
}

func (s *fakeSpaceStore) GetByIDForUpdate(ctx context.Context, db base.DBTX, id int64) (*model.StudySpace, error) {
	return s.spaces[id], nil
}

func (s *fakeSpaceStore) GetByName(ctx context.Context, db base.DBTX, name string) (*model.StudySpace, error) {
	for _, sp := range s.spaces {
		if sp.Name == name {
			return sp, nil
		}
	}
	return nil, nil
}

func (s *fakeSpaceStore) UpdateStatus(ctx context.Context, db base.DBTX, id int64, status model.SpaceStatus) error {
	if sp, ok := s.spaces[id]; ok {
		sp.SpaceStatus = status
	}
	return nil
}

func (s *fakeSpaceStore) Update(ctx context.Context, db base.DBTX, space *model.StudySpace) error {
	s.spaces[space.ID] = space
	return nil
}

func (s *fakeSpaceStore) Delete(ctx context.Context, db base.DBTX, id int64) error {
	delete(s.spaces, id)
	return nil
}

func (s *fakeSpaceStore) List(ctx context.Context, db base.DBTX) ([]*model.StudySpace, error) {
	var out []*model.StudySpace
	for _, sp := range s.spaces {
		out = append(out, sp)
	}
	return out, nil
}

func (s *fakeSpaceStore) SearchAvailable(ctx context.Context, db base.DBTX, start, end time.Time, minCapacity int, spaceType model.SpaceType) ([]*model.StudySpace, error) {
	return nil, nil
}

func (s *fakeSpaceStore) ListWithUsage(ctx context.Context, db base.DBTX) ([]*model.SpaceUsage, error) {
	var out []*model.SpaceUsage
	for _, sp := range s.spaces {
		out = append(out, &model.SpaceUsage{Space: *sp})
	}
	return out, nil
}

type fakeBookingStore struct {
	bookings map[int64]*model.Booking
	nextID   int64
}

func newFakeBookingStore(bookings ...*model.Booking) *fakeBookingStore {
	s := &fakeBookingStore{bookings: make(map[int64]*model.Booking)}
	for _, b := range bookings {
		s.bookings[b.ID] = b
		if b.ID > s.nextID {
			s.nextID = b.ID
		}
	}
	return s
}

func (s *fakeBookingStore) Create(ctx context.Context, db base.DBTX, booking *model.Booking) error {
	s.nextID++
	booking.ID = s.nextID
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = booking.CreatedAt
	s.bookings[booking.ID] = booking
	return nil
}

func (s *fakeBookingStore) GetByID(ctx context.Context, db base.DBTX, id int64) (*model.Booking, error) {
	return s.bookings[id], nil
}

func (s *fakeBookingStore) GetByIDForUpdate(ctx context.Context, db base.DBTX, id int64) (*model.Booking, error) {
	return s.bookings[id], nil
}

func (s *fakeBookingStore) UpdateStatus(ctx context.Context, db base.DBTX, id int64, status model.BookingStatus) error {
	if b, ok := s.bookings[id]; ok {
		b.Status = status
		b.UpdatedAt = time.Now()
	}
	return nil
}

func (s *fakeBookingStore) Delete(ctx context.Context, db base.DBTX, id int64) error {
	delete(s.bookings, id)
	return nil
}

func (s *fakeBookingStore) ExistsOverlapping(ctx context.Context, db base.DBTX, spaceID int64, start, end time.Time) (bool, error) {
	for _, b := range s.bookings {
		if b.SpaceID == spaceID && b.Status != model.BookingStatusCancelled && b.Overlaps(start, end) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeBookingStore) GetActiveAt(ctx context.Context, db base.DBTX, spaceID int64, at time.Time) (*model.Booking, error) {
	for _, b := range s.bookings {
		if b.SpaceID == spaceID && !b.Status.Terminal() && b.Status != model.BookingStatusCancelled && b.Overlaps(at, at.Add(time.Nanosecond)) {
			return b, nil
		}
	}
	return nil, nil
}

func (s *fakeBookingStore) ListByUserID(ctx context.Context, db base.DBTX, userID int64) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListActive(ctx context.Context, db base.DBTX) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.Status == model.BookingStatusConfirmed || b.Status == model.BookingStatusCheckIn {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListStartingBetween(ctx context.Context, db base.DBTX, from, to time.Time) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.Status == model.BookingStatusConfirmed && !b.StartTime.Before(from) && !b.StartTime.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *fakeBookingStore) ListEndingBetween(ctx context.Context, db base.DBTX, from, to time.Time) ([]*model.Booking, error) {
	var out []*model.Booking
	for _, b := range s.bookings {
		if b.Status == model.BookingStatusCheckIn && !b.EndTime.Before(from) && !b.EndTime.After(to) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeEquipmentStore struct {
	types map[int64]*model.EquipmentType
	units map[int64]*model.Equipment
}

func newFakeEquipmentStore() *fakeEquipmentStore {
	return &fakeEquipmentStore{
		types: make(map[int64]*model.EquipmentType),
		units: make(map[int64]*model.Equipment),
	}
}

// addType регистрирует тип и создаёт quantity свободных единиц
func (s *fakeEquipmentStore) addType(id int64, name string, quantity int) {
	s.types[id] = &model.EquipmentType{ID: id, Name: name, TotalQuantity: quantity}
	for i := 0; i < quantity; i++ {
		unitID := id*100 + int64(i)
		s.units[unitID] = &model.Equipment{
			ID:              unitID,
			EquipmentTypeID: id,
			Status:          model.EquipmentStatusAvailable,
		}
	}
}

func (s *fakeEquipmentStore) GetTypeByID(ctx context.Context, db base.DBTX, id int64) (*model.EquipmentType, error) {
	return s.types[id], nil
}

func (s *fakeEquipmentStore) ListTypes(ctx context.Context, db base.DBTX) ([]*model.EquipmentType, error) {
	var out []*model.EquipmentType
	for _, et := range s.types {
		out = append(out, et)
	}
	return out, nil
}

func (s *fakeEquipmentStore) CountBorrowedOverlapping(ctx context.Context, db base.DBTX, typeID int64, start, end time.Time) (int, error) {
	count := 0
	for _, u := range s.units {
		if u.EquipmentTypeID == typeID && u.Status == model.EquipmentStatusBorrowed {
			count++
		}
	}
	return count, nil
}

func (s *fakeEquipmentStore) SelectAvailableForUpdate(ctx context.Context, db base.DBTX, typeID int64, count int) ([]*model.Equipment, error) {
	var out []*model.Equipment
	for _, u := range s.units {
		if u.EquipmentTypeID == typeID && u.Status == model.EquipmentStatusAvailable {
			out = append(out, u)
			if len(out) == count {
				break
			}
		}
	}
	return out, nil
}

func (s *fakeEquipmentStore) MarkBorrowed(ctx context.Context, db base.DBTX, equipmentID, bookingID int64) error {
	u := s.units[equipmentID]
	u.Status = model.EquipmentStatusBorrowed
	u.BookingID = &bookingID
	return nil
}

func (s *fakeEquipmentStore) ReturnByBookingID(ctx context.Context, db base.DBTX, bookingID int64) (int64, error) {
	var returned int64
	for _, u := range s.units {
		if u.BookingID != nil && *u.BookingID == bookingID {
			u.Status = model.EquipmentStatusAvailable
			u.BookingID = nil
			returned++
		}
	}
	return returned, nil
}

func (s *fakeEquipmentStore) ListByBookingID(ctx context.Context, db base.DBTX, bookingID int64) ([]*model.Equipment, error) {
	var out []*model.Equipment
	for _, u := range s.units {
		if u.BookingID != nil && *u.BookingID == bookingID {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeQRStore struct {
	codes map[uuid.UUID]*model.QRCode
}

func newFakeQRStore() *fakeQRStore {
	return &fakeQRStore{codes: make(map[uuid.UUID]*model.QRCode)}
}

func (s *fakeQRStore) Create(ctx context.Context, db base.DBTX, qrCode *model.QRCode) error {
	qrCode.ID = int64(len(s.codes) + 1)
	s.codes[qrCode.Token] = qrCode
	return nil
}

func (s *fakeQRStore) GetByToken(ctx context.Context, db base.DBTX, token uuid.UUID) (*model.QRCode, error) {
	return s.codes[token], nil
}

func (s *fakeQRStore) GetByBookingID(ctx context.Context, db base.DBTX, bookingID int64) (*model.QRCode, error) {
	for _, c := range s.codes {
		if c.BookingID == bookingID {
			return c, nil
		}
	}
	return nil, nil
}

type fakeConfigStore struct {
	config *model.NotificationConfig
}

func (s *fakeConfigStore) Get(ctx context.Context, db base.DBTX) (*model.NotificationConfig, error) {
	if s.config == nil {
		s.config = &model.NotificationConfig{ID: 1, ReminderBeforeCheckinMinutes: 15, ReminderBeforeCheckoutMinutes: 10}
	}
	return s.config, nil
}

func (s *fakeConfigStore) Update(ctx context.Context, db base.DBTX, config *model.NotificationConfig) error {
	s.config = config
	return nil
}
