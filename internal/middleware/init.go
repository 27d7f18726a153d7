package middleware

import (
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"fichaje/pkg/logger"
)

// Init inicializa los middlewares que requieren estado compartido.
func Init() error {
	if err := initAuthMiddleware(); err != nil {
		logger.Logger.Error("Failed to initialize auth middleware", zap.Error(err))
		return err
	}

	if err := InitMetrics(otel.Meter("fichaje-http")); err != nil {
		logger.Logger.Error("Failed to initialize HTTP metrics", zap.Error(err))
		return err
	}

	logger.Logger.Info("All middlewares initialized successfully")
	return nil
}
