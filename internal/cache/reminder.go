package cache

import (
	"context"
	"fmt"
	"time"

	"fichaje/storage/redis"
)

const (
	reminderScheduledPrefix = "reminder:clockout:scheduled"

	scheduledTTL = 24 * time.Hour
)

// ReminderKey identificador fijo del recordatorio de salida de un usuario
// para una fecha. Que sea fijo es lo que hace idempotente el alta: N
// llamadas en el mismo día programan como mucho un recordatorio.
func ReminderKey(userID int64, date string) string {
	return fmt.Sprintf("clockout:%d:%s", userID, date)
}

// TryMarkReminderScheduled marca el recordatorio como programado si no lo
// estaba ya. false = ya había uno programado para ese usuario y fecha.
func TryMarkReminderScheduled(ctx context.Context, userID int64, date string) (bool, error) {
	key := redis.Key(reminderScheduledPrefix, date, fmt.Sprintf("%d", userID))

	result, err := redis.Client().SetNX(ctx, key, "1", scheduledTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark reminder scheduled: %w", err)
	}
	return result, nil
}

// IsReminderScheduled consulta la marca. El worker la re-comprueba antes de
// entregar: un mensaje retardado ya en vuelo cuya marca se borró no se entrega.
func IsReminderScheduled(ctx context.Context, userID int64, date string) (bool, error) {
	key := redis.Key(reminderScheduledPrefix, date, fmt.Sprintf("%d", userID))

	result, err := redis.Client().Exists(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check reminder scheduled status: %w", err)
	}
	return result > 0, nil
}

// UnmarkReminderScheduled cancela el recordatorio pendiente borrando la marca.
func UnmarkReminderScheduled(ctx context.Context, userID int64, date string) error {
	key := redis.Key(reminderScheduledPrefix, date, fmt.Sprintf("%d", userID))

	if err := redis.Client().Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to unmark reminder scheduled: %w", err)
	}
	return nil
}
