package database

import (
	"go.uber.org/zap"
	"gorm.io/gorm"

	"fichaje/internal/model"
	"fichaje/pkg/logger"
)

// Migrate crea las tablas de todos los modelos.
func Migrate() error {
	db := DB()
	if db == nil {
		return gorm.ErrInvalidDB
	}

	logger.Logger.Info("Starting database migration...")

	err := db.AutoMigrate(
		&model.Profile{},
		&model.TimeEntry{},
		&model.NotificationTask{},
	)

	if err != nil {
		logger.Logger.Error("Database migration failed", zap.Error(err))
		return err
	}

	logger.Logger.Info("Database migration completed")
	return nil
}
