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

// OfferRequest defines the structure for offer creation/update requests
type OfferRequest struct {
	Code       string    `json:"code"`
	Type       string    `json:"type"`
	Value      float64   `json:"value"`
	MinAmount  float64   `json:"min_amount"`
	StartsAt   time.Time `json:"starts_at"`
	ExpiresAt  time.Time `json:"expires_at"`
	UsageLimit int       `json:"usage_limit"`
	IsActive   *bool     `json:"is_active"`
}

// ListOffers retrieves the store's discount offers.
func ListOffers(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Offers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind offer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve offers"})
	}

	var offers []model.Offer
	if result := db.Order("created_at DESC").Find(&offers); result.Error != nil {
		log.Error("Failed to retrieve offers",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve offers"})
	}

	return c.JSON(http.StatusOK, offers)
}

// CreateOffer adds a discount offer.
func CreateOffer(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("insert")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req OfferRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid offer request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Code == "" || req.Value <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "code and a positive value are required"})
	}
	if req.Type == "" {
		req.Type = model.OfferTypePercent
	}
	if req.Type != model.OfferTypePercent && req.Type != model.OfferTypeFlat {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be percent or flat"})
	}

	db, err := scope.Offers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind offer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer creation failed"})
	}

	var existing model.Offer
	if result := db.Where("code = ?", req.Code).First(&existing); result.Error == nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "offer code already exists"})
	}

	offer := model.Offer{
		Code:       req.Code,
		Type:       req.Type,
		Value:      req.Value,
		MinAmount:  req.MinAmount,
		StartsAt:   req.StartsAt,
		ExpiresAt:  req.ExpiresAt,
		UsageLimit: req.UsageLimit,
		IsActive:   true,
	}

	if result := db.Create(&offer); result.Error != nil {
		log.Error("Failed to create offer",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer creation failed"})
	}

	log.Info("Offer created",
		zap.Uint("id", offer.ID),
		zap.String("code", offer.Code))
	return c.JSON(http.StatusCreated, offer)
}

// ValidateOffer checks whether an offer code can be applied right now.
func ValidateOffer(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Offers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind offer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer validation failed"})
	}

	var offer model.Offer
	if result := db.Where("code = ?", c.Param("code")).First(&offer); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
	}

	if !offer.Live(time.Now()) {
		return c.JSON(http.StatusOK, echo.Map{"valid": false})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"valid": true,
		"offer": offer,
	})
}

// UpdateOffer modifies an existing offer.
func UpdateOffer(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Offers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind offer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer update failed"})
	}

	var offer model.Offer
	if result := db.Where("id = ?", c.Param("id")).First(&offer); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
	}

	var req OfferRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid offer request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	// The code is the offer's identity and stays fixed after creation
	if req.Value > 0 {
		offer.Value = req.Value
	}
	if req.Type != "" {
		offer.Type = req.Type
	}
	offer.MinAmount = req.MinAmount
	if !req.StartsAt.IsZero() {
		offer.StartsAt = req.StartsAt
	}
	if !req.ExpiresAt.IsZero() {
		offer.ExpiresAt = req.ExpiresAt
	}
	if req.UsageLimit > 0 {
		offer.UsageLimit = req.UsageLimit
	}
	if req.IsActive != nil {
		offer.IsActive = *req.IsActive
	}

	if result := db.Save(&offer); result.Error != nil {
		log.Error("Failed to update offer",
			zap.Uint("id", offer.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer update failed"})
	}

	return c.JSON(http.StatusOK, offer)
}

// DeleteOffer soft-deletes an offer.
func DeleteOffer(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("delete")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Offers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind offer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer deletion failed"})
	}

	result := db.Where("id = ?", c.Param("id")).Delete(&model.Offer{})
	if result.Error != nil {
		log.Error("Failed to delete offer", zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "offer deletion failed"})
	}
	if result.RowsAffected == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "offer not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "offer deleted"})
}
