package service

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/studyspace/internal/auth"
	"github.com/Freeeeeet/studyspace/internal/cache"
	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const usageCacheKey = "spaces:usage"

// SpaceService каталог помещений: поиск свободных, статистика использования,
// управление помещениями (только менеджер)
type SpaceService struct {
	db          base.DBTX
	userRepo    UserStore
	spaceRepo   SpaceStore
	bookingRepo BookingStore
	cache       *cache.Cache
	logger      *zap.Logger
	now         func() time.Time
}

func NewSpaceService(
	pool *pgxpool.Pool,
	userRepo *repository.UserRepository,
	spaceRepo *repository.SpaceRepository,
	bookingRepo *repository.BookingRepository,
	usageCache *cache.Cache,
	logger *zap.Logger,
) *SpaceService {
	return &SpaceService{
		db:          pool,
		userRepo:    userRepo,
		spaceRepo:   spaceRepo,
		bookingRepo: bookingRepo,
		cache:       usageCache,
		logger:      logger,
		now:         time.Now,
	}
}

// List получает все помещения
func (s *SpaceService) List(ctx context.Context) ([]*model.StudySpace, error) {
	return s.spaceRepo.List(ctx, s.db)
}

// GetByID получает помещение по ID
func (s *SpaceService) GetByID(ctx context.Context, spaceID int64) (*model.StudySpace, error) {
	space, err := s.spaceRepo.GetByID(ctx, s.db, spaceID)
	if err != nil {
		return nil, fmt.Errorf("get space: %w", err)
	}
	if space == nil {
		return nil, fmt.Errorf("space %d: %w", spaceID, ErrNotFound)
	}

	return space, nil
}

// CreateSpace создаёт помещение. Доступно только менеджеру.
func (s *SpaceService) CreateSpace(ctx context.Context, actorID int64, space *model.StudySpace) error {
	if err := s.requireManager(ctx, actorID); err != nil {
		return err
	}

	if space.SpaceStatus == "" {
		space.SpaceStatus = model.SpaceStatusEmpty
	}

	if err := s.spaceRepo.Create(ctx, s.db, space); err != nil {
		return fmt.Errorf("create space: %w", err)
	}

	s.invalidateUsage(ctx)

	s.logger.Info("Space created",
		zap.Int64("space_id", space.ID),
		zap.String("name", space.Name),
	)

	return nil
}

// UpdateSpace обновляет параметры помещения. Доступно только менеджеру.
func (s *SpaceService) UpdateSpace(ctx context.Context, actorID int64, space *model.StudySpace) error {
	if err := s.requireManager(ctx, actorID); err != nil {
		return err
	}

	if err := s.spaceRepo.Update(ctx, s.db, space); err != nil {
		return fmt.Errorf("update space: %w", err)
	}

	s.invalidateUsage(ctx)

	return nil
}

// DeleteSpace удаляет помещение. Доступно только менеджеру.
func (s *SpaceService) DeleteSpace(ctx context.Context, actorID, spaceID int64) error {
	if err := s.requireManager(ctx, actorID); err != nil {
		return err
	}

	if err := s.spaceRepo.Delete(ctx, s.db, spaceID); err != nil {
		return fmt.Errorf("delete space: %w", err)
	}

	s.invalidateUsage(ctx)

	s.logger.Info("Space deleted", zap.Int64("space_id", spaceID))

	return nil
}

// SearchAvailable ищет свободные помещения в интервале [start, end).
// minCapacity <= 0 и пустой spaceType отключают фильтры.
func (s *SpaceService) SearchAvailable(ctx context.Context, start, end time.Time, minCapacity int, spaceType model.SpaceType) ([]*model.StudySpace, error) {
	if !start.Before(end) {
		return nil, fmt.Errorf("start %s, end %s: %w", start, end, ErrInvalidInterval)
	}

	return s.spaceRepo.SearchAvailable(ctx, s.db, start, end, minCapacity, spaceType)
}

// DerivedStatus вычисляет статус помещения из интервалов бронирований,
// не доверяя кэшированному полю space_status
func (s *SpaceService) DerivedStatus(ctx context.Context, spaceID int64, at time.Time) (model.SpaceStatus, error) {
	space, err := s.spaceRepo.GetByID(ctx, s.db, spaceID)
	if err != nil {
		return "", fmt.Errorf("get space: %w", err)
	}
	if space == nil {
		return "", fmt.Errorf("space %d: %w", spaceID, ErrNotFound)
	}

	booking, err := s.bookingRepo.GetActiveAt(ctx, s.db, spaceID, at)
	if err != nil {
		return "", fmt.Errorf("get active booking: %w", err)
	}
	if booking == nil {
		return model.SpaceStatusEmpty, nil
	}

	return model.SpaceStatusFor(booking.Status), nil
}

// ListWithUsage получает помещения со статистикой бронирований.
// Результат кэшируется в Redis с коротким TTL.
func (s *SpaceService) ListWithUsage(ctx context.Context) ([]*model.SpaceUsage, error) {
	var cached []*model.SpaceUsage
	hit, err := s.cache.GetJSON(ctx, usageCacheKey, &cached)
	if err != nil {
		// Кэш недоступен — идём в базу
		s.logger.Warn("Failed to read usage cache", zap.Error(err))
	}
	if hit {
		return cached, nil
	}

	usages, err := s.spaceRepo.ListWithUsage(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list spaces with usage: %w", err)
	}

	if err := s.cache.SetJSON(ctx, usageCacheKey, usages); err != nil {
		s.logger.Warn("Failed to write usage cache", zap.Error(err))
	}

	return usages, nil
}

func (s *SpaceService) requireManager(ctx context.Context, actorID int64) error {
	actor, err := s.userRepo.GetByID(ctx, s.db, actorID)
	if err != nil {
		return fmt.Errorf("get actor: %w", err)
	}
	if !auth.CanManageSpaces(actor) {
		return fmt.Errorf("user %d cannot manage spaces: %w", actorID, ErrPermissionDenied)
	}
	return nil
}

func (s *SpaceService) invalidateUsage(ctx context.Context) {
	if err := s.cache.Delete(ctx, usageCacheKey); err != nil {
		s.logger.Warn("Failed to invalidate usage cache", zap.Error(err))
	}
}
