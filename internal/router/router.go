package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"fichaje/internal/handler"
	"fichaje/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	h.Use(middleware.GeneralRateLimitMiddleware())

	h.GET("/health", handler.Health)

	v1 := h.Group("/v1")

	// autenticación
	auth := v1.Group("/auth")
	auth.Use(middleware.AuthRateLimitMiddleware())
	{
		auth.POST("/login", handler.Login)
		auth.POST("/token/refresh", handler.RefreshToken)
	}

	// perfil propio
	me := v1.Group("/me")
	me.Use(middleware.AuthMiddleware())
	{
		me.GET("", handler.GetProfile)
	}

	// fichajes
	entries := v1.Group("/time-entries")
	entries.Use(middleware.AuthMiddleware())
	{
		entries.POST("/clock-in", middleware.ClockActionRateLimitMiddleware(), handler.ClockIn)
		entries.POST("/clock-out", middleware.ClockActionRateLimitMiddleware(), handler.ClockOut)
		entries.GET("/today", handler.GetToday)
	}

	// administración
	admin := v1.Group("/admin")
	admin.Use(middleware.AuthMiddleware(), middleware.AdminMiddleware())
	{
		admin.POST("/users", handler.CreateUser)
		admin.GET("/entries", handler.ListEntries)
		admin.GET("/entries/stream", handler.StreamEntries)
		admin.GET("/reports/export", handler.ExportCSV)
	}
}
