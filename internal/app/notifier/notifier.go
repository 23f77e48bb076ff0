// Package notifier собирает процесс, который читает очереди событий
// и рассылает письма клиентам.
package notifier

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"

	"github.com/magabrotheeeer/gym-management/internal/config"
	"github.com/magabrotheeeer/gym-management/internal/lib/mail"
	"github.com/magabrotheeeer/gym-management/internal/lib/sl"
	"github.com/magabrotheeeer/gym-management/internal/rabbitmq"
	senderservice "github.com/magabrotheeeer/gym-management/internal/services/sender"
)

// App приложение рассылки уведомлений.
type App struct {
	conn          *amqp.Connection
	ch            *amqp.Channel
	senderService *senderservice.Service
	logger        *slog.Logger
}

// New подключается к RabbitMQ и готовит SMTP-транспорт.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.notifier.New"

	if cfg.RabbitMQURL == "" {
		return nil, fmt.Errorf("%s: rabbitmq url is required", op)
	}
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("%s: smtp host is required", op)
	}

	conn, err := rabbitmq.Connect(ctx, cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	ch, err := rabbitmq.SetupChannel(conn, rabbitmq.GymQueues())
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		conn:          conn,
		ch:            ch,
		senderService: senderservice.New(mail.NewTransport(cfg.SMTP), logger),
		logger:        logger,
	}, nil
}

// Run запускает потребителей очередей и блокируется до отмены ctx.
func (a *App) Run(ctx context.Context) error {
	consumers := []struct {
		queue   string
		handler func([]byte) error
	}{
		{queue: rabbitmq.QueueSubscriptionExpired, handler: a.senderService.HandleSubscriptionExpired},
		{queue: rabbitmq.QueueSubscriptionActivated, handler: a.senderService.HandleSubscriptionActivated},
		{queue: rabbitmq.QueueAttendanceEvents, handler: a.senderService.HandleAttendanceEvent},
	}
	for _, c := range consumers {
		if err := rabbitmq.ConsumerMessage(ctx, a.ch, c.queue, a.logger, c.handler); err != nil {
			a.logger.Error("failed to start consumer", slog.String("queue", c.queue), sl.Err(err))
			a.close()
			return err
		}
	}

	<-ctx.Done()
	a.logger.Info("notifier shutting down gracefully")
	a.close()
	return nil
}

func (a *App) close() {
	if err := a.ch.Close(); err != nil {
		a.logger.Error("failed to close channel", sl.Err(err))
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Error("failed to close connection", sl.Err(err))
	}
}
