package handler

import (
	"context"

	"github.com/cloudwego/hertz/pkg/app"

	"fichaje/internal/middleware"
	"fichaje/internal/model/dto"
	"fichaje/internal/service"
	"fichaje/pkg/errors"
	"fichaje/pkg/response"
)

// Login inicio de sesión con email y contraseña
// POST /v1/auth/login
func Login(ctx context.Context, c *app.RequestContext) {
	var req dto.LoginRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	tokens, profile, err := service.Auth().Login(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, map[string]interface{}{
		"tokens":  tokens,
		"profile": profile,
	})
}

// RefreshToken renueva el par de tokens a partir del refresh token
// POST /v1/auth/token/refresh
func RefreshToken(ctx context.Context, c *app.RequestContext) {
	var req dto.RefreshRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	tokens, err := service.Auth().Refresh(ctx, req.RefreshToken)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, tokens)
}

// GetProfile perfil del usuario autenticado
// GET /v1/me
func GetProfile(ctx context.Context, c *app.RequestContext) {
	publicID, ok := middleware.GetUserPublicID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return
	}

	profile, err := service.Auth().GetProfile(ctx, publicID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, profile)
}
