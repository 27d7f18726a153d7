package queue

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"fichaje/internal/model"
	"fichaje/pkg/logger"
	"fichaje/pkg/snowflake"
	"fichaje/storage/mq"
)

// PublishClockOutReminder publica el recordatorio de salida como mensaje
// retardado. La cancelación no retira el mensaje del broker: el worker
// re-comprueba la marca y el turno antes de entregar.
func PublishClockOutReminder(msg model.ClockOutReminderMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("reminder_id", msg.ReminderID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("clockout_reminder_%d", id)
	}

	delay := time.Duration(msg.DelaySeconds) * time.Second

	err := mq.PublishDelayedMessage(
		mq.ExchangeDelayed,
		mq.QueueClockOutReminder,
		delay,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish clock-out reminder message",
			zap.String("reminder_id", msg.ReminderID),
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published clock-out reminder message",
		zap.String("message_id", msg.MessageID),
		zap.String("reminder_id", msg.ReminderID),
		zap.Int64("user_id", msg.UserID),
		zap.Duration("delay", delay),
	)

	return nil
}

// PublishMissingClockOutEmail publica el aviso de salida olvidada que el
// barrido diario detectó.
func PublishMissingClockOutEmail(msg model.MissingClockOutEmailMessage) error {
	if msg.MessageID == "" {
		id, err := snowflake.NextID()
		if err != nil {
			logger.Logger.Error("Failed to generate message ID",
				zap.String("batch_id", msg.BatchID),
				zap.Error(err),
			)
			return fmt.Errorf("failed to generate message ID: %w", err)
		}
		msg.MessageID = fmt.Sprintf("missing_clockout_%d", id)
	}

	err := mq.PublishMessage(
		mq.ExchangeNotification,
		mq.QueueMissingClockOut,
		msg,
	)
	if err != nil {
		logger.Logger.Error("Failed to publish missing clock-out email message",
			zap.String("message_id", msg.MessageID),
			zap.String("batch_id", msg.BatchID),
			zap.Int64("user_id", msg.UserID),
			zap.Error(err),
		)
		return err
	}

	logger.Logger.Info("Published missing clock-out email message",
		zap.String("message_id", msg.MessageID),
		zap.String("batch_id", msg.BatchID),
		zap.Int64("user_id", msg.UserID),
	)

	return nil
}
