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

// PaymentRequest defines the structure for payment creation requests
type PaymentRequest struct {
	OrderID    uint    `json:"order_id"`
	Amount     float64 `json:"amount"`
	Currency   string  `json:"currency"`
	Gateway    string  `json:"gateway"`
	GatewayRef string  `json:"gateway_ref"`
}

// ListPayments retrieves the store's payment records.
func ListPayments(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Payments(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind payment schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve payments"})
	}

	query := db.Order("created_at DESC")
	if orderID := c.QueryParam("order_id"); orderID != "" {
		query = query.Where("order_id = ?", orderID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var payments []model.Payment
	if result := query.Find(&payments); result.Error != nil {
		log.Error("Failed to retrieve payments",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve payments"})
	}

	return c.JSON(http.StatusOK, payments)
}

// GetPayment retrieves a payment by ID.
func GetPayment(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Payments(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind payment schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve payment"})
	}

	var payment model.Payment
	if result := db.Where("id = ?", c.Param("id")).First(&payment); result.Error != nil {
		log.Warn("Payment not found",
			zap.String("payment_id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
	}

	return c.JSON(http.StatusOK, payment)
}

// CreatePayment records a payment for an order. The gateway reference is
// opaque; talking to the gateway itself happens elsewhere.
func CreatePayment(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	defer prometheus.TrackDBOperation("insert")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req PaymentRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid payment request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.OrderID == 0 || req.Amount <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order_id and a positive amount are required"})
	}
	if req.Currency == "" {
		req.Currency = "INR"
	}

	orders, err := scope.Orders(ctx)
	if err != nil {
		log.Error("Failed to bind order schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment creation failed"})
	}
	var order model.Order
	if result := orders.Where("id = ?", req.OrderID).First(&order); result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "order not found"})
	}

	db, err := scope.Payments(ctx)
	if err != nil {
		log.Error("Failed to bind payment schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment creation failed"})
	}

	payment := model.Payment{
		OrderID:    req.OrderID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Gateway:    req.Gateway,
		GatewayRef: req.GatewayRef,
		Status:     model.PaymentStatusCreated,
	}

	if result := db.Create(&payment); result.Error != nil {
		log.Error("Failed to create payment",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment creation failed"})
	}

	log.Info("Payment recorded",
		zap.Uint("id", payment.ID),
		zap.Uint("order_id", payment.OrderID))
	return c.JSON(http.StatusCreated, payment)
}

// UpdatePaymentStatus records the outcome reported for a payment.
func UpdatePaymentStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req struct {
		Status     string `json:"status"`
		GatewayRef string `json:"gateway_ref"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	switch req.Status {
	case model.PaymentStatusPaid, model.PaymentStatusFailed, model.PaymentStatusRefunded:
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown payment status"})
	}

	db, err := scope.Payments(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind payment schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment update failed"})
	}

	var payment model.Payment
	if result := db.Where("id = ?", c.Param("id")).First(&payment); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "payment not found"})
	}

	payment.Status = req.Status
	if req.GatewayRef != "" {
		payment.GatewayRef = req.GatewayRef
	}

	if result := db.Save(&payment); result.Error != nil {
		log.Error("Failed to update payment",
			zap.Uint("id", payment.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "payment update failed"})
	}

	log.Info("Payment status updated",
		zap.Uint("id", payment.ID),
		zap.String("status", payment.Status))
	return c.JSON(http.StatusOK, payment)
}
