package main

import (
	"fichaje/internal/repository"
	"fichaje/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
