package notify

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
)

// TelegramSender отправляет сообщения в привязанный чат пользователя
type TelegramSender struct {
	bot *bot.Bot
}

func NewTelegramSender(token string) (*TelegramSender, error) {
	b, err := bot.New(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}

	return &TelegramSender{bot: b}, nil
}

// Send отправляет сообщение; recipient — chat id в виде строки
func (s *TelegramSender) Send(ctx context.Context, recipient, subject, body string) error {
	chatID, err := strconv.ParseInt(recipient, 10, 64)
	if err != nil {
		return fmt.Errorf("parse chat id: %w", err)
	}

	_, err = s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   subject + "\n\n" + stripHTML(body),
	})
	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}

	return nil
}

// stripHTML заменяет html-переводы строк на обычные
func stripHTML(body string) string {
	return strings.ReplaceAll(body, "<br>", "\n")
}
