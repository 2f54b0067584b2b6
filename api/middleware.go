package api

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"
	"go.uber.org/zap"

	"xsmodels/logging"
)

const (
	headerRequestID = "X-Request-ID"
	ctxRequestID    = "request_id"
	ctxStatus       = "status"
)

// requestContext assigns a request id and logs the request once it is
// answered.
func (s *Server) requestContext(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c *echo.Context) error {
		start := time.Now()
		id := c.Request().Header.Get(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Response().Header().Set(headerRequestID, id)

		err := next(c)

		status, _ := c.Get(ctxStatus).(int)
		fields := logging.RequestFields(c.Request().Method, c.Request().URL.Path, status, time.Since(start), id)
		if err != nil {
			s.logger.Warn("request failed", append(fields, zap.Error(err))...)
		} else {
			s.logger.Debug("request", fields...)
		}
		return err
	}
}

func requestID(c *echo.Context) string {
	id, _ := c.Get(ctxRequestID).(string)
	return id
}
