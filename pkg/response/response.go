package response

import (
	"context"
	"net/http"

	"github.com/cloudwego/hertz/pkg/app"

	"fichaje/pkg/errors"
)

// ErrorResponse formato unificado de error.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Details map[string]interface{} `json:"details,omitempty"`
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
}

// SuccessResponse formato unificado de éxito.
type SuccessResponse struct {
	Data interface{}            `json:"data"`
	Meta map[string]interface{} `json:"meta,omitempty"`
}

func errorToHTTPStatus(err error) int {
	def, ok := err.(errors.Definition)
	if !ok {
		return http.StatusInternalServerError
	}

	switch def.Code {
	case "ALREADY_CLOCKED_IN", "NO_OPEN_SHIFT", "FORGOTTEN_SHIFT_PENDING",
		"INVALID_REQUEST", "INVALID_EMAIL", "WEAK_PASSWORD", "EMAIL_TAKEN",
		"INVALID_USER_ID", "REPORT_MONTH_WITHOUT_YEAR", "REPORT_INVALID_RANGE":
		return http.StatusBadRequest // 400
	case "UNAUTHORIZED", "INVALID_CREDENTIALS":
		return http.StatusUnauthorized // 401
	case "ADMIN_REQUIRED", "LOCATION_PERMISSION_DENIED", "GPS_DISABLED":
		return http.StatusForbidden // 403
	case "USER_NOT_FOUND", "REPORT_EMPTY":
		return http.StatusNotFound // 404
	case "RATE_LIMITED", "ACTION_IN_PROGRESS":
		return http.StatusTooManyRequests // 429
	default:
		return http.StatusInternalServerError // 500
	}
}

// Error responde con el código de negocio mapeado a estado HTTP.
func Error(ctx context.Context, c *app.RequestContext, err error) {
	ErrorWithDetails(ctx, c, err, nil)
}

func ErrorWithDetails(ctx context.Context, c *app.RequestContext, err error, details map[string]interface{}) {
	statusCode := errorToHTTPStatus(err)

	var code, message string
	if def, ok := err.(errors.Definition); ok {
		code = def.Code
		message = def.Message
	} else {
		code = "INTERNAL_ERROR"
		message = err.Error()
	}

	c.JSON(statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

func Success(ctx context.Context, c *app.RequestContext, data interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
	})
}

func SuccessWithMeta(ctx context.Context, c *app.RequestContext, data interface{}, meta map[string]interface{}) {
	c.JSON(http.StatusOK, SuccessResponse{
		Data: data,
		Meta: meta,
	})
}

func BindError(ctx context.Context, c *app.RequestContext, err error) {
	c.JSON(http.StatusBadRequest, ErrorResponse{
		Error: ErrorDetail{
			Code:    "INVALID_REQUEST",
			Message: err.Error(),
		},
	})
}

// NoContent responde 204 (DELETE y similares).
func NoContent(ctx context.Context, c *app.RequestContext) {
	c.Status(http.StatusNoContent)
}
