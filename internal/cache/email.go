package cache

import (
	"context"
	"fmt"
	"time"

	"fichaje/storage/redis"
)

const (
	missingClockOutPrefix = "email:missing_clockout"

	emailSentTTL = 36 * time.Hour
)

// TryMarkMissingClockOutEmail deduplica el correo de salida olvidada por
// usuario y fecha: aunque el barrido diario corra varias veces solo se
// envía un correo.
func TryMarkMissingClockOutEmail(ctx context.Context, userID int64, date string) (bool, error) {
	key := redis.Key(missingClockOutPrefix, date, fmt.Sprintf("%d", userID))

	result, err := redis.Client().SetNX(ctx, key, "1", emailSentTTL).Result()
	if err != nil {
		return false, fmt.Errorf("failed to mark missing clockout email: %w", err)
	}
	return result, nil
}

// UnmarkMissingClockOutEmail libera la marca cuando el envío falla.
func UnmarkMissingClockOutEmail(ctx context.Context, userID int64, date string) error {
	key := redis.Key(missingClockOutPrefix, date, fmt.Sprintf("%d", userID))
	return redis.Client().Del(ctx, key).Err()
}
