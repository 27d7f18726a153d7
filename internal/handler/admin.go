package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/hlog"
	"github.com/hertz-contrib/sse"

	"fichaje/internal/model/dto"
	"fichaje/internal/service"
	"fichaje/pkg/response"
)

// CreateUser alta de un empleado
// POST /v1/admin/users
func CreateUser(ctx context.Context, c *app.RequestContext) {
	var req dto.CreateUserRequest
	if err := c.BindAndValidate(&req); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	profile, err := service.Auth().CreateUser(ctx, &req)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.Success(ctx, c, profile)
}

// ListEntries fichajes de un mes natural, con filtro opcional por empleado
// GET /v1/admin/entries
func ListEntries(ctx context.Context, c *app.RequestContext) {
	var q dto.EntriesQuery
	if err := c.BindAndValidate(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	entries, err := service.Report().ListEntries(ctx, &q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	response.SuccessWithMeta(ctx, c, entries, map[string]interface{}{
		"count": len(entries),
	})
}

// StreamEntries flujo SSE con los avisos de cambio para el listado en vivo
// GET /v1/admin/entries/stream
func StreamEntries(ctx context.Context, c *app.RequestContext) {
	c.SetStatusCode(http.StatusOK)
	stream := sse.NewStream(c)

	err := service.Report().StreamEntries(ctx, func(change dto.EntryChangeData) error {
		payload, err := json.Marshal(change)
		if err != nil {
			return err
		}
		return stream.Publish(&sse.Event{
			Event: "entries_changed",
			Data:  payload,
		})
	})
	if err != nil {
		hlog.Warnf("entries stream closed with error: %v", err)
	}
}

// ExportCSV descarga el informe de fichajes en CSV
// GET /v1/admin/reports/export
func ExportCSV(ctx context.Context, c *app.RequestContext) {
	var q dto.ExportQuery
	if err := c.BindAndValidate(&q); err != nil {
		response.BindError(ctx, c, err)
		return
	}

	fileName, data, err := service.Report().ExportCSV(ctx, &q)
	if err != nil {
		response.Error(ctx, c, err)
		return
	}

	c.Response.Header.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}
