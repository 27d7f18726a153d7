package storage

import (
	"fichaje/storage/database"
	"fichaje/storage/mq"
	"fichaje/storage/redis"
)

// Init inicializa la capa de almacenamiento completa.
func Init() error {
	if err := database.Init(); err != nil {
		return err
	}

	if err := redis.Init(); err != nil {
		return err
	}

	if err := mq.Init(); err != nil {
		return err
	}

	return nil
}
