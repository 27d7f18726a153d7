package mailer

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"fichaje/config"
	"fichaje/pkg/logger"
)

// Message un correo saliente.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Client interfaz del servicio de correo.
type Client interface {
	Send(ctx context.Context, msg Message) error
}

var (
	mailClient Client
	mailOnce   sync.Once
)

// Init inicializa el cliente de correo. Sin API key se usa el mock
// (los envíos se registran en el log y no salen a ningún sitio).
func Init() error {
	mailOnce.Do(func() {
		cfg := config.Cfg

		if cfg.MailAPIKey == "" {
			mailClient = NewMockClient()
			logger.Logger.Warn("Mail client running in mock mode, no emails will be delivered")
			return
		}

		mailClient = NewResendClient(cfg.MailEndpoint, cfg.MailAPIKey, cfg.MailFrom)
		logger.Logger.Info("Mail client initialized",
			zap.String("endpoint", cfg.MailEndpoint),
		)
	})

	return nil
}

func GetClient() Client {
	if mailClient == nil {
		panic("mail client not initialized, call mailer.Init() first")
	}
	return mailClient
}

func Send(ctx context.Context, msg Message) error {
	return GetClient().Send(ctx, msg)
}
