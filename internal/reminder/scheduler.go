// Package reminder programa el recordatorio local "recuerda fichar tu
// salida" de cada usuario. El planificador externo es de mejor esfuerzo:
// sus fallos se registran y se tragan, nunca tumban un fichaje.
package reminder

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fichaje/internal/cache"
	"fichaje/internal/model"
	"fichaje/internal/queue"
	"fichaje/pkg/logger"
	"fichaje/pkg/metrics"
)

// Scheduler altas y bajas de recordatorios programados.
type Scheduler interface {
	// ScheduleAt programa el recordatorio del mensaje. Debe ser idempotente
	// por ReminderID: repetir la llamada con el mismo id no duplica nada.
	ScheduleAt(ctx context.Context, msg model.ClockOutReminderMessage) error

	// Cancel retira el recordatorio pendiente del usuario para la fecha.
	Cancel(ctx context.Context, userID int64, date string) error
}

// MQScheduler implementación de producción: marca SetNX en Redis para la
// idempotencia entre procesos y mensaje retardado en RabbitMQ para el
// disparo. Cancel solo borra la marca; el worker la re-comprueba antes de
// entregar, así que el mensaje en vuelo degrada a no-op.
type MQScheduler struct{}

func NewMQScheduler() *MQScheduler {
	return &MQScheduler{}
}

func (s *MQScheduler) ScheduleAt(ctx context.Context, msg model.ClockOutReminderMessage) error {
	first, err := cache.TryMarkReminderScheduled(ctx, msg.UserID, msg.Date)
	if err != nil {
		return err
	}
	if !first {
		// ya había un recordatorio programado para hoy
		return nil
	}

	if err := queue.PublishClockOutReminder(msg); err != nil {
		// liberar la marca para que el siguiente fichaje pueda reintentar
		if unmarkErr := cache.UnmarkReminderScheduled(ctx, msg.UserID, msg.Date); unmarkErr != nil {
			logger.Logger.Warn("Failed to release reminder marker after publish error",
				zap.Int64("user_id", msg.UserID),
				zap.String("date", msg.Date),
				zap.Error(unmarkErr),
			)
		}
		return err
	}

	metrics.RecordReminderScheduled(ctx)
	return nil
}

func (s *MQScheduler) Cancel(ctx context.Context, userID int64, date string) error {
	if err := cache.UnmarkReminderScheduled(ctx, userID, date); err != nil {
		return err
	}

	metrics.RecordReminderCancelled(ctx)
	return nil
}

var _ Scheduler = (*MQScheduler)(nil)

// clock reloj inyectable.
type clock func() time.Time
