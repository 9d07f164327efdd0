package logger

import (
	"context"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type contextKey string

const loggerKey contextKey = "logger"

// Keys under which the request middleware and the tenant middleware stash
// their values on the Echo context.
const (
	echoLoggerKey = "logger"
	echoTenantKey = "logger_tenant_id"
)

// FromContext retrieves the logger from the context
func FromContext(ctx context.Context) *zap.Logger {
	logger, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok {
		return GetLogger()
	}
	return logger
}

// WithContext adds the logger to the context
func WithContext(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// SetTenant stamps the resolved tenant on the request so that every log
// line written through FromEcho from here on carries the tenant_id field.
func SetTenant(c echo.Context, tenantID string) {
	c.Set(echoTenantKey, tenantID)
}

// FromEcho retrieves the request logger from the Echo context. Once the
// tenant middleware has resolved the request, the returned logger includes
// the tenant_id field.
func FromEcho(c echo.Context) *zap.Logger {
	logger, ok := c.Get(echoLoggerKey).(*zap.Logger)
	if !ok {
		logger = GetLogger()
	}
	if tenantID, ok := c.Get(echoTenantKey).(string); ok && tenantID != "" {
		logger = logger.With(zap.String("tenant_id", tenantID))
	}
	return logger
}
