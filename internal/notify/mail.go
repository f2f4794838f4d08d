package notify

import (
	"context"

	"gopkg.in/gomail.v2"
)

// MailSender отправляет письма через SMTP
type MailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailSender(host string, port int, username, password, from string) *MailSender {
	return &MailSender{
		dialer: gomail.NewDialer(host, port, username, password),
		from:   from,
	}
}

// Send отправляет одно html-письмо. gomail не принимает контекст,
// поэтому отмена действует только до начала отправки.
func (s *MailSender) Send(ctx context.Context, recipient, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", recipient)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return s.dialer.DialAndSend(m)
}
