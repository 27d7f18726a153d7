package storage

import (
	"context"
	"time"

	"go.uber.org/zap"

	"fichaje/pkg/logger"
	"fichaje/storage/database"
	"fichaje/storage/mq"
	"fichaje/storage/redis"
)

// Close cierra las conexiones en orden MQ -> Redis -> Database:
// primero se deja de recibir mensajes y al final se cierra la persistencia.
func Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	logger.Logger.Info("Closing storage connections...")

	if err := mq.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close message queue", zap.Error(err))
	}

	if err := redis.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close Redis connection", zap.Error(err))
	}

	if err := database.Close(ctx); err != nil {
		logger.Logger.Error("Failed to close database connection", zap.Error(err))
	}

	logger.Logger.Info("All storage connections closed")
}
