package cache

import (
	"context"
	"fmt"
	"time"

	"fichaje/storage/redis"
)

// Cerrojo distribuido por SetNX. El cerrojo de acción por usuario cierra la
// carrera del doble toque en fichar: dos peticiones simultáneas del mismo
// usuario nunca insertan dos eventos.
const (
	lockPrefix       = "lock"
	actionLockPrefix = "lock:action"

	actionLockTTL = 10 * time.Second
)

func TryLock(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	fullkey := redis.Key(lockPrefix, key)

	result, err := redis.Client().SetNX(ctx, fullkey, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func Unlock(ctx context.Context, key string) error {
	fullkey := redis.Key(lockPrefix, key)

	return redis.Client().Del(ctx, fullkey).Err()
}

// TryActionLock toma el cerrojo de fichaje del usuario. false = otra
// petición del mismo usuario está en curso.
func TryActionLock(ctx context.Context, userID int64) (bool, error) {
	key := redis.Key(actionLockPrefix, fmt.Sprintf("%d", userID))

	result, err := redis.Client().SetNX(ctx, key, 1, actionLockTTL).Result()
	if err != nil {
		return false, err
	}

	return result, nil
}

func ReleaseActionLock(ctx context.Context, userID int64) error {
	key := redis.Key(actionLockPrefix, fmt.Sprintf("%d", userID))

	return redis.Client().Del(ctx, key).Err()
}
