package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	"fichaje/config"
	"fichaje/internal/queue"
	"fichaje/pkg/logger"
	"fichaje/pkg/mailer"
	"fichaje/pkg/metrics"
	"fichaje/pkg/snowflake"
	"fichaje/storage"
)

func main() {
	logger.Init()
	defer logger.Sync()

	config.MustValidate()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Logger.Info("Received shutdown signal",
			zap.String("signal", sig.String()),
		)
		cancel()
	}()

	if err := storage.Init(); err != nil {
		logger.Logger.Fatal("Failed to initialize storage", zap.Error(err))
	}
	defer storage.Close()

	if err := snowflake.Init(config.Cfg.SnowflakeMachineID, config.Cfg.SnowflakeDataCenter); err != nil {
		logger.Logger.Fatal("Failed to initialize snowflake", zap.Error(err))
	}

	if err := metrics.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize domain metrics", zap.Error(err))
	}

	// sin API key el mailer queda en modo simulado, los avisos no salen
	if err := mailer.Init(); err != nil {
		logger.Logger.Warn("Failed to initialize mailer", zap.Error(err))
	}

	logger.Logger.Info("Worker service starting",
		zap.String("service", config.Cfg.ServiceName+"-worker"),
		zap.String("environment", config.Cfg.Environment),
	)

	var wg sync.WaitGroup

	consumers := []struct {
		name string
		run  func(context.Context) error
	}{
		{"clock_out_reminder", queue.StartClockOutReminderConsumer},
		{"missing_clockout_email", queue.StartMissingClockOutEmailConsumer},
	}

	for _, consumer := range consumers {
		wg.Add(1)
		go func(name string, run func(context.Context) error) {
			defer wg.Done()
			if err := run(ctx); err != nil {
				logger.Logger.Error("Consumer stopped with error",
					zap.String("consumer", name),
					zap.Error(err),
				)
			}
		}(consumer.name, consumer.run)
	}

	<-ctx.Done()
	wg.Wait()

	logger.Logger.Info("Worker service shutting down gracefully")
}
