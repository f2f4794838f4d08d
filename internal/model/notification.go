package model

import "time"

// NotificationConfig singleton-запись с настройками напоминаний
type NotificationConfig struct {
	ID                            int64 `json:"id"`
	ReminderBeforeCheckinMinutes  int   `json:"reminder_before_checkin_minutes"`
	ReminderBeforeCheckoutMinutes int   `json:"reminder_before_checkout_minutes"`
}

// CheckinLead окно поиска бронирований для напоминания о check-in
func (c *NotificationConfig) CheckinLead() time.Duration {
	return time.Duration(c.ReminderBeforeCheckinMinutes) * time.Minute
}

// CheckoutLead окно поиска бронирований для напоминания о check-out
func (c *NotificationConfig) CheckoutLead() time.Duration {
	return time.Duration(c.ReminderBeforeCheckoutMinutes) * time.Minute
}
