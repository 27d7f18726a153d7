package mq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"fichaje/config"
)

const (
	// ExchangeDelayed mensajes retardados (recordatorios de salida).
	ExchangeDelayed = "scheduler.delayed"
	// ExchangeNotification mensajes inmediatos (correos).
	ExchangeNotification = "notification.topic"

	QueueClockOutReminder = "scheduler.clock_out.reminder"
	QueueMissingClockOut  = "notification.email.missing_clockout"
)

var (
	conn    *amqp.Connection
	connMu  sync.Mutex
	initErr error
	once    sync.Once
)

func Init() error {
	once.Do(func() {
		url := config.Cfg.GetRabbitMQURL()

		var err error
		conn, err = amqp.Dial(url)
		if err != nil {
			initErr = fmt.Errorf("failed to dial RabbitMQ: %w", err)
			return
		}

		ch, err := conn.Channel()
		if err != nil {
			initErr = fmt.Errorf("failed to open setup channel: %w", err)
			return
		}
		defer ch.Close()

		initErr = declareTopology(ch)
	})

	return initErr
}

// declareTopology declara exchanges y colas de forma idempotente.
func declareTopology(ch *amqp.Channel) error {
	// exchange retardado (plugin x-delayed-message)
	if err := ch.ExchangeDeclare(
		ExchangeDelayed,
		"x-delayed-message",
		true, false, false, false,
		amqp.Table{"x-delayed-type": "topic"},
	); err != nil {
		return fmt.Errorf("failed to declare delayed exchange: %w", err)
	}

	if err := ch.ExchangeDeclare(
		ExchangeNotification,
		"topic",
		true, false, false, false, nil,
	); err != nil {
		return fmt.Errorf("failed to declare notification exchange: %w", err)
	}

	queues := []struct {
		name     string
		exchange string
		key      string
	}{
		{QueueClockOutReminder, ExchangeDelayed, "scheduler.clock_out.reminder"},
		{QueueMissingClockOut, ExchangeNotification, "notification.email.missing_clockout"},
	}

	for _, q := range queues {
		if _, err := ch.QueueDeclare(q.name, true, false, false, false, nil); err != nil {
			return fmt.Errorf("failed to declare queue %s: %w", q.name, err)
		}
		if err := ch.QueueBind(q.name, q.key, q.exchange, false, nil); err != nil {
			return fmt.Errorf("failed to bind queue %s: %w", q.name, err)
		}
	}

	return nil
}

func Connection() *amqp.Connection {
	connMu.Lock()
	defer connMu.Unlock()
	return conn
}

func Close(ctx context.Context) error {
	connMu.Lock()
	defer connMu.Unlock()

	if conn == nil {
		return nil
	}

	done := make(chan error, 1)
	go func() {
		done <- conn.Close()
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		return err
	}
}
