package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v5"

	"xsmodels/shutdown"
	"xsmodels/xspec"
)

// ErrorBody is the payload of every failed request.
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Message   string `json:"message"`
	Type      string `json:"type"`
	RequestID string `json:"request_id,omitempty"`
}

// classify maps a library error onto an HTTP status and error type.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, shutdown.ErrClosed):
		return http.StatusServiceUnavailable, "shutting_down"
	case errors.Is(err, xspec.ErrInvalidShape):
		return http.StatusBadRequest, "invalid_shape"
	case errors.Is(err, xspec.ErrUnknownModel):
		return http.StatusNotFound, "unknown_model"
	case errors.Is(err, xspec.ErrLookup):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, xspec.ErrEnvironment):
		return http.StatusServiceUnavailable, "environment"
	case errors.Is(err, xspec.ErrNative):
		return http.StatusInternalServerError, "native"
	default:
		return http.StatusInternalServerError, "server_error"
	}
}

func writeJSON(c *echo.Context, status int, body any) error {
	c.Set(ctxStatus, status)
	return c.JSON(status, body)
}

func writeError(c *echo.Context, status int, errType, msg string) error {
	return writeJSON(c, status, ErrorBody{Error: ErrorDetail{
		Message:   msg,
		Type:      errType,
		RequestID: requestID(c),
	}})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, "invalid_request", msg)
}

// writeLibraryError answers with the status classify picks for err.
func writeLibraryError(c *echo.Context, err error) error {
	status, typ := classify(err)
	return writeError(c, status, typ, err.Error())
}
