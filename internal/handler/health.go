package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"fichaje/config"
)

// Health sonda de vida para el balanceador
// GET /health
func Health(ctx context.Context, c *app.RequestContext) {
	c.JSON(200, map[string]interface{}{
		"status":  "ok",
		"service": config.Cfg.ServiceName,
		"env":     config.Cfg.Environment,
	})
}
