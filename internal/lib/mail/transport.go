// Package mail отправляет письма через SMTP.
package mail

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/magabrotheeeer/gym-management/internal/config"
)

// Dialer отправляет подготовленные сообщения. Реализуется *gomail.Dialer.
type Dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Transport отправляет текстовые письма от имени адреса from.
type Transport struct {
	dialer Dialer
	from   string
}

// NewTransport создает Transport по настройкам SMTP.
func NewTransport(cfg config.SMTP) *Transport {
	from := cfg.SMTPFrom
	if from == "" {
		from = cfg.SMTPUser
	}
	return &Transport{
		dialer: gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:   from,
	}
}

// NewTransportWithDialer создает Transport с заданным Dialer.
func NewTransportWithDialer(d Dialer, from string) *Transport {
	return &Transport{dialer: d, from: from}
}

// Send отправляет письмо с текстовым телом.
func (t *Transport) Send(to, subject, body string) error {
	const op = "mail.Send"
	m := gomail.NewMessage()
	m.SetHeader("From", t.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := t.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
