package middleware

import (
	"errors"
	"net"
	"net/http"
	"regexp"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront-service/internal/model"
	"storefront-service/internal/tenant"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

const scopeContextKey = "tenant_scope"

// storeCodePattern matches a public store code: 6 alphanumeric characters.
var storeCodePattern = regexp.MustCompile(`^[A-Za-z0-9]{6}$`)

// TenantContextMiddleware resolves the tenant for every request and attaches
// a ready tenant scope to the context. Store-code addressing is
// authoritative when present; the tenant claim of an already-validated token
// is the fallback. No tenant route runs without a scope.
func TenantContextMiddleware(directory *tenant.Directory, registry *tenant.Registry) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromEcho(c)
			ctx := c.Request().Context()

			var (
				tenantID string
				storeID  string
				store    *model.Store
			)

			if code := storeCodeFromRequest(c); code != "" {
				resolved, err := directory.Resolve(ctx, code)
				switch {
				case errors.Is(err, tenant.ErrStoreNotFound):
					log.Warn("Store code did not resolve", zap.String("store_code", code))
					prometheus.RecordResolutionError("not_found")
					return c.JSON(http.StatusNotFound, echo.Map{
						"code":  "TENANT_NOT_FOUND",
						"error": "store not found",
					})
				case err != nil:
					log.Error("Store directory lookup failed", zap.Error(err))
					return c.JSON(http.StatusServiceUnavailable, echo.Map{
						"code":  "TENANT_UNAVAILABLE",
						"error": "store lookup failed, retry later",
					})
				}
				store = resolved
				tenantID = resolved.TenantID
				storeID = resolved.Code
			} else if claims, ok := ClaimsFromEcho(c); ok && claims.TenantID != "" {
				tenantID = claims.TenantID
				storeID = claims.StoreID
				// Best effort: the scope works without the directory
				// record, so a lookup failure does not fail the request.
				if storeID != "" {
					if resolved, err := directory.Resolve(ctx, storeID); err == nil {
						store = resolved
					}
				}
			}

			if tenantID == "" {
				log.Warn("Request carried no tenant signal")
				prometheus.RecordResolutionError("id_missing")
				return c.JSON(http.StatusBadRequest, echo.Map{
					"code":  "TENANT_ID_MISSING",
					"error": "request does not identify a store",
				})
			}

			conn, err := registry.Conn(ctx, tenantID)
			if err != nil {
				log.Error("Tenant connection unavailable",
					zap.String("tenant_id", tenantID),
					zap.Error(err))
				prometheus.RecordResolutionError("connection_failed")
				return c.JSON(http.StatusServiceUnavailable, echo.Map{
					"code":  "TENANT_UNAVAILABLE",
					"error": "store temporarily unavailable, retry later",
				})
			}

			logger.SetTenant(c, tenantID)
			scope := tenant.NewScope(tenantID, storeID, store, conn)
			c.Set(scopeContextKey, scope)

			return next(c)
		}
	}
}

// ScopeFromEcho returns the tenant scope attached by TenantContextMiddleware.
func ScopeFromEcho(c echo.Context) (*tenant.Scope, bool) {
	scope, ok := c.Get(scopeContextKey).(*tenant.Scope)
	return scope, ok
}

// storeCodeFromRequest extracts a store-code-shaped identifier from the
// request's addressing: route param, X-Store-ID header, or the host
// subdomain, in that order.
func storeCodeFromRequest(c echo.Context) string {
	if code := c.Param("store_id"); storeCodePattern.MatchString(code) {
		return code
	}
	if code := c.Request().Header.Get("X-Store-ID"); storeCodePattern.MatchString(code) {
		return code
	}
	return storeCodeFromHost(c.Request().Host)
}

// storeCodeFromHost picks the store code out of a subdomain like
// "ab12cd.example.com". Bare domains and two-label hosts carry no code.
func storeCodeFromHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}
	labels := strings.Split(host, ".")
	if len(labels) < 3 {
		return ""
	}
	if storeCodePattern.MatchString(labels[0]) {
		return labels[0]
	}
	return ""
}
