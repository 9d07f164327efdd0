package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"storefront-service/internal/model"
	"storefront-service/pkg/logger"
	"storefront-service/prometheus"
)

// SettingsRequest defines the structure for settings update requests
type SettingsRequest struct {
	StoreName      string `json:"store_name"`
	Tagline        string `json:"tagline"`
	LogoURL        string `json:"logo_url"`
	Currency       string `json:"currency"`
	ContactEmail   string `json:"contact_email"`
	ContactPhone   string `json:"contact_phone"`
	Address        string `json:"address"`
	CODEnabled     *bool  `json:"cod_enabled"`
	OnlinePayments *bool  `json:"online_payments"`
	StoreOpen      *bool  `json:"store_open"`
}

// loadSettings fetches the single settings row, creating it with defaults
// on first access.
func loadSettings(c echo.Context) (*model.Settings, error) {
	scope, err := requireScope(c)
	if err != nil {
		return nil, err
	}

	db, err := scope.Settings(c.Request().Context())
	if err != nil {
		return nil, err
	}

	settings := model.Settings{Currency: "INR"}
	if scope.Store != nil {
		settings.StoreName = scope.Store.Name
		settings.Currency = scope.Store.Currency
	}
	if result := db.Where("id = ?", 1).Attrs(settings).FirstOrCreate(&settings); result.Error != nil {
		return nil, result.Error
	}
	return &settings, nil
}

// GetSettings returns the storefront configuration.
func GetSettings(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	settings, err := loadSettings(c)
	if err != nil {
		if httpErr, ok := err.(*echo.HTTPError); ok {
			return httpErr
		}
		log.Error("Failed to load settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve settings"})
	}

	return c.JSON(http.StatusOK, settings)
}

// UpdateSettings modifies the storefront configuration.
func UpdateSettings(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	settings, err := loadSettings(c)
	if err != nil {
		log.Error("Failed to load settings", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settings update failed"})
	}

	var req SettingsRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid settings request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.StoreName != "" {
		settings.StoreName = req.StoreName
	}
	if req.Currency != "" {
		if len(req.Currency) != 3 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "currency must be a 3-letter code"})
		}
		settings.Currency = req.Currency
	}
	settings.Tagline = req.Tagline
	if req.LogoURL != "" {
		settings.LogoURL = req.LogoURL
	}
	settings.ContactEmail = req.ContactEmail
	settings.ContactPhone = req.ContactPhone
	settings.Address = req.Address
	if req.CODEnabled != nil {
		settings.CODEnabled = *req.CODEnabled
	}
	if req.OnlinePayments != nil {
		settings.OnlinePayments = *req.OnlinePayments
	}
	if req.StoreOpen != nil {
		settings.StoreOpen = *req.StoreOpen
	}

	db, err := scope.Settings(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind settings schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settings update failed"})
	}

	if result := db.Save(settings); result.Error != nil {
		log.Error("Failed to update settings",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "settings update failed"})
	}

	log.Info("Settings updated")
	return c.JSON(http.StatusOK, settings)
}
