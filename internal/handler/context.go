package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"storefront-service/internal/middleware"
	"storefront-service/internal/tenant"
	"storefront-service/pkg/logger"
)

// requireScope fetches the tenant scope attached by the tenant middleware.
// Tenant-scoped routes are always registered behind it, so a missing scope
// is a wiring bug, not a client error.
func requireScope(c echo.Context) (*tenant.Scope, error) {
	scope, ok := middleware.ScopeFromEcho(c)
	if !ok {
		logger.FromEcho(c).Error("Tenant scope missing from context")
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "tenant context unavailable")
	}
	return scope, nil
}
