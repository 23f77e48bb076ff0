// Package sender превращает события шины в письма клиентам.
package sender

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/models"
)

// Mailer отправляет текстовое письмо. Реализуется *mail.Transport.
type Mailer interface {
	Send(to, subject, body string) error
}

// Service обрабатывает сообщения очередей уведомлений.
type Service struct {
	mailer Mailer
	log    *slog.Logger
}

// New создает новый экземпляр Service.
func New(mailer Mailer, log *slog.Logger) *Service {
	return &Service{
		mailer: mailer,
		log:    log,
	}
}

// HandleSubscriptionExpired уведомляет клиента об окончании абонемента.
// Нечитаемое сообщение отбрасывается, ошибка отправки возвращает его в очередь.
func (s *Service) HandleSubscriptionExpired(body []byte) error {
	const op = "sender.HandleSubscriptionExpired"
	msg, ok := s.decode(op, body)
	if !ok {
		return nil
	}

	subject := "Срок действия абонемента истёк"
	text := fmt.Sprintf("Здравствуйте, %s!\n\nСрок действия абонемента «%s» закончился %s.\n\nЧтобы продолжить занятия, оформите новый абонемент.",
		greetingName(msg), msg.Name, msg.EndDate.Format(models.DateKeyLayout))

	return s.send(op, msg.Email, subject, text)
}

// HandleSubscriptionActivated уведомляет клиента о начале действия абонемента.
func (s *Service) HandleSubscriptionActivated(body []byte) error {
	const op = "sender.HandleSubscriptionActivated"
	msg, ok := s.decode(op, body)
	if !ok {
		return nil
	}

	subject := "Абонемент активирован"
	text := fmt.Sprintf("Здравствуйте, %s!\n\nАбонемент «%s» действует с %s по %s.\n\nЖдём вас в зале!",
		greetingName(msg), msg.Name,
		msg.StartDate.Format(models.DateKeyLayout), msg.EndDate.Format(models.DateKeyLayout))

	return s.send(op, msg.Email, subject, text)
}

// HandleAttendanceEvent пишет события посещений в журнал.
func (s *Service) HandleAttendanceEvent(body []byte) error {
	const op = "sender.HandleAttendanceEvent"
	var ev models.AttendanceEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return nil
	}
	s.log.Info("attendance event",
		slog.Int64("attendance_id", ev.AttendanceID),
		slog.String("user_id", ev.UserID.String()),
		slog.String("type", string(ev.Type)),
		slog.Time("at", ev.At),
	)
	return nil
}

func (s *Service) decode(op string, body []byte) (models.ItemStatusChange, bool) {
	var msg models.ItemStatusChange
	if err := json.Unmarshal(body, &msg); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Op(op), sl.Err(err))
		return msg, false
	}
	if msg.Email == "" {
		s.log.Warn("message without recipient dropped", sl.Op(op), slog.Int64("item_id", msg.ItemID))
		return msg, false
	}
	return msg, true
}

func (s *Service) send(op, to, subject, text string) error {
	if err := s.mailer.Send(to, subject, text); err != nil {
		s.log.Error("failed to send email", sl.Op(op), slog.String("to", to), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("email sent successfully", slog.String("to", to))
	return nil
}

func greetingName(msg models.ItemStatusChange) string {
	if msg.FirstName != "" {
		return msg.FirstName
	}
	return msg.Email
}
