package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cloudwego/hertz/pkg/common/hlog"

	"fichaje/storage/redis"
)

const changeChannelPrefix = "changes"

// ChangeEvent notificación de cambio de una tabla. No lleva el dato: el
// suscriptor debe invalidar y reconsultar, nunca aplicar el cambio en local.
type ChangeEvent struct {
	Table  string    `json:"table"`
	UserID int64     `json:"user_id"`
	At     time.Time `json:"at"`
}

// PublishChange anuncia por Redis pub/sub que una tabla ha cambiado.
func PublishChange(ctx context.Context, table string, userID int64) error {
	event := ChangeEvent{
		Table:  table,
		UserID: userID,
		At:     time.Now().UTC(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal change event: %w", err)
	}

	channel := redis.Key(changeChannelPrefix, table)
	return redis.Client().Publish(ctx, channel, body).Err()
}

// Subscribe escucha los cambios de una tabla hasta que el contexto se
// cancele. Devuelve la función de baja.
func Subscribe(ctx context.Context, table string, fn func(ChangeEvent)) (func(), error) {
	channel := redis.Key(changeChannelPrefix, table)
	sub := redis.Client().Subscribe(ctx, channel)

	// confirmar la suscripción antes de devolver el control
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	go func() {
		for msg := range sub.Channel() {
			var event ChangeEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				hlog.Warnf("invalid change event on %s: %v", channel, err)
				continue
			}
			fn(event)
		}
	}()

	return func() {
		if err := sub.Close(); err != nil {
			hlog.Warnf("failed to unsubscribe from %s: %v", channel, err)
		}
	}, nil
}
