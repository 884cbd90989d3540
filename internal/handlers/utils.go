package handlers

import (
	"github.com/damacus/bucket-listing/internal/utils"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// RequestLogger returns the request-scoped logger, or a no-op logger when
// the context logger middleware is not installed
func RequestLogger(c echo.Context) *zap.Logger {
	if logger, ok := c.Get(utils.ContextKeyLogger).(*zap.Logger); ok {
		return logger
	}
	return zap.NewNop()
}
