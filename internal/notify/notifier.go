package notify

import (
	"context"
	"fmt"
	"strconv"

	"github.com/Freeeeeet/studyspace/internal/model"
	"go.uber.org/zap"
)

// Sender внешний канал доставки сообщений
type Sender interface {
	Send(ctx context.Context, recipient, subject, body string) error
}

// Notifier выбирает канал доставки и форматирует напоминания.
// Отправка best-effort: без повторов, ошибка уходит вызывающей стороне.
type Notifier struct {
	mail     Sender
	telegram Sender // может быть nil если бот не настроен
	logger   *zap.Logger
}

func NewNotifier(mail, telegram Sender, logger *zap.Logger) *Notifier {
	return &Notifier{
		mail:     mail,
		telegram: telegram,
		logger:   logger,
	}
}

// SendCheckinReminder отправляет напоминание о предстоящем check-in
func (n *Notifier) SendCheckinReminder(ctx context.Context, booking *model.Booking) error {
	body := fmt.Sprintf(
		"Hello %s,<br><br>"+
			"This is a reminder about your booking:<br><br>"+
			"- Space: %s<br>"+
			"- Start time: %s<br>"+
			"- End time: %s<br><br>"+
			"Please check in on time to use the space.",
		booking.User.Username,
		booking.Space.Name,
		booking.StartTime.Format("2006-01-02 15:04"),
		booking.EndTime.Format("2006-01-02 15:04"),
	)

	return n.dispatch(ctx, booking.User, "Booking check-in reminder", body)
}

// SendCheckoutReminder отправляет напоминание о скором окончании брони
func (n *Notifier) SendCheckoutReminder(ctx context.Context, booking *model.Booking) error {
	body := fmt.Sprintf(
		"Hello %s,<br><br>"+
			"Your booking is about to end:<br><br>"+
			"- Space: %s<br>"+
			"- Start time: %s<br>"+
			"- End time: %s<br><br>"+
			"Please be ready to check out on time.",
		booking.User.Username,
		booking.Space.Name,
		booking.StartTime.Format("2006-01-02 15:04"),
		booking.EndTime.Format("2006-01-02 15:04"),
	)

	return n.dispatch(ctx, booking.User, "Booking check-out reminder", body)
}

// dispatch выбирает канал: телеграм если пользователь привязал чат, иначе email
func (n *Notifier) dispatch(ctx context.Context, user *model.User, subject, body string) error {
	if user == nil {
		return fmt.Errorf("booking has no user attached")
	}

	if n.telegram != nil && user.TelegramChatID != nil {
		err := n.telegram.Send(ctx, strconv.FormatInt(*user.TelegramChatID, 10), subject, body)
		if err != nil {
			return fmt.Errorf("send telegram message: %w", err)
		}
		return nil
	}

	if user.Email == "" {
		return fmt.Errorf("user %d has no delivery channel", user.ID)
	}

	if err := n.mail.Send(ctx, user.Email, subject, body); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}

	n.logger.Debug("Notification dispatched",
		zap.Int64("user_id", user.ID),
		zap.String("subject", subject),
	)

	return nil
}
