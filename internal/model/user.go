package model

import "time"

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleManager Role = "manager"
)

type User struct {
	ID             int64     `json:"id"`
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	UserCode       string    `json:"user_code"` // общий идентификатор (вместо student_id и staff_id)
	PhoneNumber    string    `json:"phone_number"`
	TelegramChatID *int64    `json:"telegram_chat_id"` // указатель - может быть nil
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
