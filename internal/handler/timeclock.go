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

// currentUser traduce el id público del token al id interno de fichajes.
func currentUser(ctx context.Context, c *app.RequestContext) (int64, bool) {
	publicID, ok := middleware.GetUserPublicID(ctx, c)
	if !ok {
		response.Error(ctx, c, errors.Unauthorized)
		return 0, false
	}

	userID, _, err := service.Auth().ResolveInternalID(ctx, publicID)
	if err != nil {
		response.Error(ctx, c, err)
		return 0, false
	}
	return userID, true
}

// ClockIn ficha la entrada
// POST /v1/time-entries/clock-in
func ClockIn(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var req dto.ClockRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Timeclock().ClockIn(ctx, userID, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// ClockOut ficha la salida
// POST /v1/time-entries/clock-out
func ClockOut(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	var req dto.ClockRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	result, err := service.Timeclock().ClockOut(ctx, userID, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}

// GetToday estado de la jornada de hoy, recalculado en cada petición
// GET /v1/time-entries/today
func GetToday(ctx context.Context, c *app.RequestContext) {
	userID, ok := currentUser(ctx, c)
	if !ok {
		return
	}

	result, err := service.Timeclock().Today(ctx, userID)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, result)
}
