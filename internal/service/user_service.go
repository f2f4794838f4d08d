package service

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type UserService struct {
	db       base.DBTX
	userRepo UserStore
	logger   *zap.Logger
}

func NewUserService(pool *pgxpool.Pool, userRepo *repository.UserRepository, logger *zap.Logger) *UserService {
	return &UserService{
		db:       pool,
		userRepo: userRepo,
		logger:   logger,
	}
}

// Register регистрирует или обновляет пользователя
func (s *UserService) Register(ctx context.Context, username, email string, role model.Role) (*model.User, error) {
	// Проверяем существует ли пользователь
	existingUser, err := s.userRepo.GetByUsername(ctx, s.db, username)
	if err != nil {
		return nil, fmt.Errorf("check existing user: %w", err)
	}

	// Если пользователь уже существует, обновляем данные
	if existingUser != nil {
		existingUser.Email = email
		existingUser.Role = role

		if err := s.userRepo.Update(ctx, s.db, existingUser); err != nil {
			return nil, fmt.Errorf("update user: %w", err)
		}

		s.logger.Info("User updated",
			zap.Int64("user_id", existingUser.ID),
			zap.String("username", username),
		)

		return existingUser, nil
	}

	// Создаём нового пользователя
	user := &model.User{
		Username: username,
		Email:    email,
		Role:     role,
	}

	if user.Role == "" {
		user.Role = model.RoleStudent // По умолчанию студент
	}

	if err := s.userRepo.Create(ctx, s.db, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("New user registered",
		zap.Int64("user_id", user.ID),
		zap.String("username", username),
		zap.String("role", string(user.Role)),
	)

	return user, nil
}

// GetByID получает пользователя по ID
func (s *UserService) GetByID(ctx context.Context, userID int64) (*model.User, error) {
	user, err := s.userRepo.GetByID(ctx, s.db, userID)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	return user, nil
}

// GetByUsername получает пользователя по имени
func (s *UserService) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, s.db, username)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %q: %w", username, ErrNotFound)
	}

	return user, nil
}

// LinkTelegram привязывает чат Telegram для напоминаний
func (s *UserService) LinkTelegram(ctx context.Context, userID, chatID int64) error {
	user, err := s.userRepo.GetByID(ctx, s.db, userID)
	if err != nil {
		return fmt.Errorf("get user: %w", err)
	}
	if user == nil {
		return fmt.Errorf("user %d: %w", userID, ErrNotFound)
	}

	user.TelegramChatID = &chatID

	if err := s.userRepo.Update(ctx, s.db, user); err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	s.logger.Info("Telegram chat linked",
		zap.Int64("user_id", userID),
		zap.Int64("chat_id", chatID),
	)

	return nil
}
