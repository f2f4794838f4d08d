package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
)

type UserRepository struct{}

func NewUserRepository() *UserRepository {
	return &UserRepository{}
}

const userColumns = `id, username, email, role, user_code, phone_number, telegram_chat_id, created_at, updated_at`

// Create создаёт нового пользователя
func (r *UserRepository) Create(ctx context.Context, db base.DBTX, user *model.User) error {
	query := `
		INSERT INTO users (username, email, role, user_code, phone_number, telegram_chat_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`

	err := db.QueryRow(
		ctx, query,
		user.Username,
		user.Email,
		user.Role,
		user.UserCode,
		user.PhoneNumber,
		user.TelegramChatID,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

// GetByID получает пользователя по ID
func (r *UserRepository) GetByID(ctx context.Context, db base.DBTX, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var user model.User
	err := db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.UserCode,
		&user.PhoneNumber,
		&user.TelegramChatID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by id: %w", err)
	}

	return &user, nil
}

// GetByUsername получает пользователя по уникальному имени
func (r *UserRepository) GetByUsername(ctx context.Context, db base.DBTX, username string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	var user model.User
	err := db.QueryRow(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.Role,
		&user.UserCode,
		&user.PhoneNumber,
		&user.TelegramChatID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if base.IsNotFound(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return &user, nil
}

// Update обновляет данные пользователя
func (r *UserRepository) Update(ctx context.Context, db base.DBTX, user *model.User) error {
	query := `
		UPDATE users
		SET email = $1, role = $2, user_code = $3, phone_number = $4, telegram_chat_id = $5, updated_at = now()
		WHERE id = $6
	`

	result, err := db.Exec(
		ctx, query,
		user.Email,
		user.Role,
		user.UserCode,
		user.PhoneNumber,
		user.TelegramChatID,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("user not found")
	}

	return nil
}
