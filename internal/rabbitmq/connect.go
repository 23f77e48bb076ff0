// Package rabbitmq содержит подключение к RabbitMQ, объявление обменника
// событий спортзала и очередей, публикацию и потребление сообщений.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// prefetch сколько неподтвержденных сообщений брокер отдает одному каналу.
const prefetch = 10

// Connect подключается к RabbitMQ. Делает до retries попыток с паузой delay
// и прекращает ожидание, если ctx отменен.
func Connect(ctx context.Context, url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	if retries < 1 {
		retries = 1
	}
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = err
		if attempt == retries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-time.After(delay):
		}
	}
	return nil, fmt.Errorf("%s: %d attempts failed: %w", op, retries, lastErr)
}

// SetupChannel открывает канал, объявляет durable direct-обменник
// ExchangeEvents и привязывает к нему очереди. При ошибке канал закрывается.
func SetupChannel(conn *amqp.Connection, queues []QueueConfig) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupChannel"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := declareTopology(ch, queues); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}

func declareTopology(ch *amqp.Channel, queues []QueueConfig) error {
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	// durable, не autoDelete, не internal, с ожиданием ответа брокера
	if err := ch.ExchangeDeclare(ExchangeEvents, amqp.ExchangeDirect, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare exchange %s: %w", ExchangeEvents, err)
	}
	for _, q := range queues {
		if err := bindQueue(ch, q); err != nil {
			return err
		}
	}
	return nil
}

func bindQueue(ch *amqp.Channel, q QueueConfig) error {
	if _, err := ch.QueueDeclare(q.QueueName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("failed to declare queue %s: %w", q.QueueName, err)
	}
	if err := ch.QueueBind(q.QueueName, q.RoutingKey, ExchangeEvents, false, nil); err != nil {
		return fmt.Errorf("failed to bind queue %s to %s: %w", q.QueueName, q.RoutingKey, err)
	}
	return nil
}
