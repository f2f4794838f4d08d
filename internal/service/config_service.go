package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studyspace/internal/auth"
	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// ConfigService операторские настройки напоминаний (singleton-запись)
type ConfigService struct {
	db         base.DBTX
	userRepo   UserStore
	configRepo ConfigStore
	logger     *zap.Logger
}

func NewConfigService(pool *pgxpool.Pool, userRepo *repository.UserRepository, configRepo *repository.ConfigRepository, logger *zap.Logger) *ConfigService {
	return &ConfigService{
		db:         pool,
		userRepo:   userRepo,
		configRepo: configRepo,
		logger:     logger,
	}
}

// Get получает текущие настройки напоминаний
func (s *ConfigService) Get(ctx context.Context) (*model.NotificationConfig, error) {
	return s.configRepo.Get(ctx, s.db)
}

// Update обновляет настройки напоминаний. Доступно только менеджеру.
func (s *ConfigService) Update(ctx context.Context, actorID int64, config *model.NotificationConfig) error {
	actor, err := s.userRepo.GetByID(ctx, s.db, actorID)
	if err != nil {
		return fmt.Errorf("get actor: %w", err)
	}
	if !auth.CanManageSpaces(actor) {
		return fmt.Errorf("user %d cannot update notification config: %w", actorID, ErrPermissionDenied)
	}

	if config.ReminderBeforeCheckinMinutes <= 0 || config.ReminderBeforeCheckoutMinutes <= 0 {
		return fmt.Errorf("reminder lead times must be positive: %w", ErrInvalidInterval)
	}

	if err := s.configRepo.Update(ctx, s.db, config); err != nil {
		return fmt.Errorf("update notification config: %w", err)
	}

	s.logger.Info("Notification config updated",
		zap.Int("checkin_minutes", config.ReminderBeforeCheckinMinutes),
		zap.Int("checkout_minutes", config.ReminderBeforeCheckoutMinutes),
	)

	return nil
}
