package repository

import (
	"context"
	"fmt"

	"github.com/Freeeeeet/studyspace/internal/model"
	"github.com/Freeeeeet/studyspace/internal/repository/base"
)

type ConfigRepository struct{}

func NewConfigRepository() *ConfigRepository {
	return &ConfigRepository{}
}

// Get получает singleton-запись настроек напоминаний.
// Если записи нет — создаёт её со значениями по умолчанию.
func (r *ConfigRepository) Get(ctx context.Context, db base.DBTX) (*model.NotificationConfig, error) {
	insert := `
		INSERT INTO notification_config (id)
		VALUES (1)
		ON CONFLICT (id) DO NOTHING
	`

	if _, err := db.Exec(ctx, insert); err != nil {
		return nil, fmt.Errorf("ensure notification config: %w", err)
	}

	query := `
		SELECT id, reminder_before_checkin_minutes, reminder_before_checkout_minutes
		FROM notification_config
		WHERE id = 1
	`

	var config model.NotificationConfig
	err := db.QueryRow(ctx, query).Scan(
		&config.ID,
		&config.ReminderBeforeCheckinMinutes,
		&config.ReminderBeforeCheckoutMinutes,
	)
	if err != nil {
		return nil, fmt.Errorf("get notification config: %w", err)
	}

	return &config, nil
}

// Update обновляет настройки напоминаний
func (r *ConfigRepository) Update(ctx context.Context, db base.DBTX, config *model.NotificationConfig) error {
	query := `
		UPDATE notification_config
		SET reminder_before_checkin_minutes = $1, reminder_before_checkout_minutes = $2
		WHERE id = 1
	`

	result, err := db.Exec(
		ctx, query,
		config.ReminderBeforeCheckinMinutes,
		config.ReminderBeforeCheckoutMinutes,
	)
	if err != nil {
		return fmt.Errorf("update notification config: %w", err)
	}

	if result.RowsAffected() == 0 {
		return fmt.Errorf("notification config not found")
	}

	return nil
}
