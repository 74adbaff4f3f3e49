package httpapi

import (
	"errors"
	"net/http"

	"pennywise/internal/common"

	"github.com/labstack/echo/v4"
)

// Response is the success envelope shared by all endpoints.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message,omitempty"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Success bool      `json:"success"`
	Error   errorBody `json:"error"`
}

func respondOK(c echo.Context, data any) error {
	return c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

func respondMessage(c echo.Context, msg string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: msg})
}

// errorHandler translates the domain error taxonomy into HTTP statuses and
// the error envelope. Unrecognized errors become opaque 500s.
func (s *HTTPServer) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	code := "INTERNAL"
	message := "internal server error"

	var httpErr *echo.HTTPError
	switch {
	case errors.Is(err, common.ErrorUnauthorized):
		status, code, message = http.StatusUnauthorized, "UNAUTHORIZED", "unauthorized"
	case errors.Is(err, common.ErrorForbidden):
		status, code, message = http.StatusForbidden, "FORBIDDEN", "forbidden"
	case errors.Is(err, common.ErrorTooManyRequests):
		status, code, message = http.StatusTooManyRequests, "TOO_MANY_REQUESTS", err.Error()
	case errors.Is(err, common.ErrorBadRequest):
		status, code, message = http.StatusBadRequest, "BAD_REQUEST", err.Error()
	case errors.Is(err, common.ErrorNotFound):
		status, code, message = http.StatusNotFound, "NOT_FOUND", err.Error()
	case errors.Is(err, common.ErrorConflict):
		status, code, message = http.StatusConflict, "CONFLICT", err.Error()
	case errors.As(err, &httpErr):
		// Routing and binding failures raised by echo itself.
		status = httpErr.Code
		code = http.StatusText(status)
		if m, ok := httpErr.Message.(string); ok {
			message = m
		}
	default:
		s.logger.Error(c.Request().Context(), "unhandled error", "error", err.Error())
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error(c.Request().Context(), "request failed", "status", status, "error", err.Error())
	}

	_ = c.JSON(status, errorResponse{Success: false, Error: errorBody{Code: code, Message: message}})
}
