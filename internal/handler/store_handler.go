package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront-service/internal/middleware"
	"storefront-service/internal/tenant"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// SetupStore completes store setup for an authenticated owner: it assigns
// the public 6-character store code and writes the directory record. The
// code is immutable once assigned.
func SetupStore(provisioner *tenant.Provisioner, directory *tenant.Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		defer prometheus.TrackDBOperation("insert")(time.Now())

		claims, ok := middleware.ClaimsFromEcho(c)
		if !ok {
			log.Error("Failed to get owner claims from context")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		var req struct {
			Name     string `json:"name"`
			Currency string `json:"currency,omitempty"`
			Industry string `json:"industry,omitempty"`
		}

		if err := c.Bind(&req); err != nil {
			log.Error("Failed to parse store setup request", zap.Error(err))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
		}
		if req.Name == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "name is required"})
		}
		if req.Currency == "" {
			req.Currency = "INR"
		}

		owner, err := directory.OwnerByEmail(c.Request().Context(), claims.Email)
		if err != nil {
			log.Error("Owner not found for claims", zap.String("email", claims.Email))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		store, err := provisioner.SetupStore(c.Request().Context(), owner, req.Name, req.Currency, req.Industry)
		if err != nil {
			if errors.Is(err, tenant.ErrStoreAlreadySetup) {
				return c.JSON(http.StatusConflict, echo.Map{"error": "store already set up"})
			}
			log.Error("Failed to set up store", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "store setup failed"})
		}

		log.Info("Store setup completed",
			zap.String("tenant_id", store.TenantID),
			zap.String("store_id", store.Code))
		return c.JSON(http.StatusCreated, echo.Map{
			"message": "Store created successfully",
			"store":   store,
		})
	}
}

// GetStoreProfile returns the directory record for the owner's store.
func GetStoreProfile(directory *tenant.Directory) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromEcho(c)
		defer prometheus.TrackDBOperation("query")(time.Now())

		claims, ok := middleware.ClaimsFromEcho(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		owner, err := directory.OwnerByEmail(c.Request().Context(), claims.Email)
		if err != nil {
			log.Error("Owner not found for claims", zap.String("email", claims.Email))
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		if owner.StoreID == "" {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not set up"})
		}

		store, err := directory.Resolve(c.Request().Context(), owner.StoreID)
		if err != nil {
			log.Error("Store lookup failed",
				zap.String("store_id", owner.StoreID),
				zap.Error(err))
			return c.JSON(http.StatusNotFound, echo.Map{"error": "store not found"})
		}

		return c.JSON(http.StatusOK, store)
	}
}
