package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"storefront-service/internal/tenant"
	"storefront-service/pkg/logger"
)

// HealthCheck reports service liveness, global database reachability and
// the number of live tenant connections.
func HealthCheck(globalDB *gorm.DB, registry *tenant.Registry) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		dbStatus := "up"
		sqlDB, err := globalDB.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logger.FromEcho(c).Error("Global database ping failed", zap.Error(err))
			dbStatus = "down"
		}

		status := http.StatusOK
		overall := "ok"
		if dbStatus != "up" {
			status = http.StatusServiceUnavailable
			overall = "degraded"
		}

		return c.JSON(status, echo.Map{
			"status":             overall,
			"database":           dbStatus,
			"tenant_connections": registry.Len(),
			"time":               time.Now().UTC().Format(time.RFC3339),
		})
	}
}
