package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"fichaje/config"
	"fichaje/internal/cache"
	"fichaje/internal/model"
	"fichaje/internal/shift"
	"fichaje/internal/store"
	"fichaje/pkg/errors"
	"fichaje/pkg/logger"
	"fichaje/pkg/mailer"
	"fichaje/pkg/metrics"
	"fichaje/storage/mq"
)

// StartClockOutReminderConsumer consume los recordatorios de salida
// retardados. Antes de entregar re-comprueba la marca en Redis y el estado
// real del turno: así un recordatorio cancelado o ya resuelto mientras el
// mensaje estaba en vuelo acaba en no-op, no en aviso falso.
func StartClockOutReminderConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.ClockOutReminderMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal clock-out reminder message: %w", err)
		}

		processing, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
			// si Redis falla se procesa igualmente, aceptando un posible duplicado
		} else if !processing {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("message %s already processed", msg.MessageID)}
		}

		scheduled, err := cache.IsReminderScheduled(ctx, msg.UserID, msg.Date)
		if err != nil {
			logger.Logger.Warn("Failed to check reminder marker, delivering anyway",
				zap.String("reminder_id", msg.ReminderID),
				zap.Error(err),
			)
		} else if !scheduled {
			// cancelado después de publicarse el mensaje
			recordDelivery(ctx, msg, model.NotificationStatusSkipped, "reminder cancelled before delivery")
			markProcessed(ctx, msg.MessageID)
			return nil
		}

		open, err := userHasOpenShift(ctx, msg.UserID)
		if err != nil {
			_ = cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			return fmt.Errorf("failed to derive shift state for user %d: %w", msg.UserID, err)
		}
		if !open {
			recordDelivery(ctx, msg, model.NotificationStatusSkipped, "user already clocked out")
			_ = cache.UnmarkReminderScheduled(ctx, msg.UserID, msg.Date)
			markProcessed(ctx, msg.MessageID)
			return nil
		}

		recordDelivery(ctx, msg, model.NotificationStatusSent, "recuerda fichar tu salida")
		logger.Logger.Info("Delivered clock-out reminder",
			zap.String("reminder_id", msg.ReminderID),
			zap.Int64("user_id", msg.UserID),
			zap.String("date", msg.Date),
		)

		_ = cache.UnmarkReminderScheduled(ctx, msg.UserID, msg.Date)
		markProcessed(ctx, msg.MessageID)
		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueClockOutReminder,
		ConsumerTag:   "clock_out_reminder_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// StartMissingClockOutEmailConsumer consume los avisos del barrido diario y
// envía el correo de salida olvidada.
func StartMissingClockOutEmailConsumer(ctx context.Context) error {
	handler := func(body []byte) error {
		var msg model.MissingClockOutEmailMessage
		if err := json.Unmarshal(body, &msg); err != nil {
			return fmt.Errorf("failed to unmarshal missing clock-out email message: %w", err)
		}

		processing, err := cache.TryMarkMessageProcessing(ctx, msg.MessageID, 24*time.Hour)
		if err != nil {
			logger.Logger.Warn("Failed to check message processed status",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		} else if !processing {
			return &errors.SkipMessageError{Reason: fmt.Sprintf("message %s already processed", msg.MessageID)}
		}

		mail := mailer.Message{
			To:      msg.Email,
			Subject: "Has olvidado fichar tu salida",
			HTML: fmt.Sprintf(
				"<p>Hola %s,</p><p>Hoy (%s) fichaste tu entrada a las %s pero no consta tu salida. "+
					"Por favor, recuerda fichar la salida o avisa a un administrador para corregirla.</p>",
				msg.FullName, msg.Date, msg.EntryTime,
			),
		}

		if err := mailer.Send(ctx, mail); err != nil {
			metrics.RecordEmailSent(ctx, false)
			// liberar ambas marcas para que el reintento pueda enviar
			_ = cache.UnmarkMessageProcessing(ctx, msg.MessageID)
			_ = cache.UnmarkMissingClockOutEmail(ctx, msg.UserID, msg.Date)
			return fmt.Errorf("failed to send missing clock-out email to user %d: %w", msg.UserID, err)
		}

		metrics.RecordEmailSent(ctx, true)

		now := time.Now().UTC()
		task := &model.NotificationTask{
			UserID:      msg.UserID,
			Category:    model.NotificationCategoryMissingClockOut,
			Status:      model.NotificationStatusSent,
			ScheduledAt: now,
			SentAt:      &now,
			Detail:      fmt.Sprintf("entrada a las %s sin salida (%s)", msg.EntryTime, msg.Date),
		}
		if err := store.Notifications().Create(ctx, task); err != nil {
			logger.Logger.Warn("Failed to record notification task",
				zap.String("message_id", msg.MessageID),
				zap.Error(err),
			)
		}

		logger.Logger.Info("Sent missing clock-out email",
			zap.String("message_id", msg.MessageID),
			zap.Int64("user_id", msg.UserID),
			zap.String("date", msg.Date),
		)

		markProcessed(ctx, msg.MessageID)
		return nil
	}

	return mq.Consume(mq.ConsumeOptions{
		Queue:         mq.QueueMissingClockOut,
		ConsumerTag:   "missing_clockout_email_consumer",
		PrefetchCount: 10,
		Handler:       handler,
	})
}

// userHasOpenShift deriva el estado actual del turno desde el almacén.
func userHasOpenShift(ctx context.Context, userID int64) (bool, error) {
	entries, err := store.Events().QueryRecent(ctx, userID, config.Cfg.TodayLookbackEntries)
	if err != nil {
		return false, err
	}

	now := time.Now().In(config.Cfg.Location())
	view, _ := shift.Reconcile(entries, now)
	return view.CurrentlyClockedIn, nil
}

func recordDelivery(ctx context.Context, msg model.ClockOutReminderMessage, status model.NotificationStatus, detail string) {
	scheduledAt, err := time.Parse(time.RFC3339, msg.TriggerAt)
	if err != nil {
		scheduledAt = time.Now().UTC()
	}

	task := &model.NotificationTask{
		UserID:      msg.UserID,
		Category:    model.NotificationCategoryClockOutReminder,
		Status:      status,
		ScheduledAt: scheduledAt,
		Detail:      detail,
	}
	if status == model.NotificationStatusSent {
		now := time.Now().UTC()
		task.SentAt = &now
	}

	if err := store.Notifications().Create(ctx, task); err != nil {
		logger.Logger.Warn("Failed to record notification task",
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
	}
}

func markProcessed(ctx context.Context, messageID string) {
	if err := cache.MarkMessageProcessed(ctx, messageID, 48*time.Hour); err != nil {
		logger.Logger.Warn("Failed to mark message as processed",
			zap.String("message_id", messageID),
			zap.Error(err),
		)
	}
}
