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

// orderTransitions lists the allowed status changes.
var orderTransitions = map[string][]string{
	model.OrderStatusPending:   {model.OrderStatusConfirmed, model.OrderStatusCancelled},
	model.OrderStatusConfirmed: {model.OrderStatusShipped, model.OrderStatusCancelled},
	model.OrderStatusShipped:   {model.OrderStatusDelivered},
}

func transitionAllowed(from, to string) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// OrderRequest defines the structure for order creation requests
type OrderRequest struct {
	CustomerID  uint              `json:"customer_id"`
	Items       []model.OrderItem `json:"items"`
	PaymentMode string            `json:"payment_mode"`
	Address     string            `json:"address"`
	Notes       string            `json:"notes"`
}

// ListOrders retrieves the store's orders, optionally filtered by status.
func ListOrders(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Orders(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind order schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve orders"})
	}

	query := db.Order("created_at DESC")
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if customerID := c.QueryParam("customer_id"); customerID != "" {
		query = query.Where("customer_id = ?", customerID)
	}

	var orders []model.Order
	if result := query.Find(&orders); result.Error != nil {
		log.Error("Failed to retrieve orders",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve orders"})
	}

	return c.JSON(http.StatusOK, orders)
}

// GetOrder retrieves an order by ID.
func GetOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Orders(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind order schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve order"})
	}

	var order model.Order
	if result := db.Where("id = ?", c.Param("id")).First(&order); result.Error != nil {
		log.Warn("Order not found",
			zap.String("order_id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	return c.JSON(http.StatusOK, order)
}

// CreateOrder places an order. The customer and every referenced product
// must exist in this store.
func CreateOrder(c echo.Context) error {
	log := logger.FromEcho(c)
	ctx := c.Request().Context()
	defer prometheus.TrackDBOperation("insert")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req OrderRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid order request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.CustomerID == 0 || len(req.Items) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer_id and items are required"})
	}

	customers, err := scope.Customers(ctx)
	if err != nil {
		log.Error("Failed to bind customer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order creation failed"})
	}
	var customer model.Customer
	if result := customers.Where("id = ?", req.CustomerID).First(&customer); result.Error != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "customer not found"})
	}

	products, err := scope.Products(ctx)
	if err != nil {
		log.Error("Failed to bind product schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order creation failed"})
	}

	var total float64
	for _, item := range req.Items {
		if item.ProductID == 0 || item.Quantity <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "each item needs a product_id and a positive quantity"})
		}
		var product model.Product
		if result := products.Where("id = ?", item.ProductID).First(&product); result.Error != nil {
			log.Warn("Order references unknown product",
				zap.Uint("product_id", item.ProductID))
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "item references an unknown product"})
		}
		total += item.UnitPrice * float64(item.Quantity)
	}

	orders, err := scope.Orders(ctx)
	if err != nil {
		log.Error("Failed to bind order schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order creation failed"})
	}

	order := model.Order{
		CustomerID:  req.CustomerID,
		Items:       req.Items,
		Total:       total,
		Status:      model.OrderStatusPending,
		PaymentMode: req.PaymentMode,
		Address:     req.Address,
		Notes:       req.Notes,
	}

	if result := orders.Create(&order); result.Error != nil {
		log.Error("Failed to create order",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order creation failed"})
	}

	log.Info("Order created",
		zap.Uint("id", order.ID),
		zap.Uint("customer_id", order.CustomerID),
		zap.Float64("total", order.Total))
	return c.JSON(http.StatusCreated, order)
}

// UpdateOrderStatus moves an order through its status lifecycle.
func UpdateOrderStatus(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&req); err != nil || req.Status == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "status is required"})
	}

	db, err := scope.Orders(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind order schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order update failed"})
	}

	var order model.Order
	if result := db.Where("id = ?", c.Param("id")).First(&order); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "order not found"})
	}

	if !transitionAllowed(order.Status, req.Status) {
		log.Warn("Rejected order status transition",
			zap.String("from", order.Status),
			zap.String("to", req.Status),
			zap.Uint("order_id", order.ID))
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid status transition"})
	}

	order.Status = req.Status
	if result := db.Save(&order); result.Error != nil {
		log.Error("Failed to update order status",
			zap.Uint("id", order.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "order update failed"})
	}

	log.Info("Order status updated",
		zap.Uint("id", order.ID),
		zap.String("status", order.Status))
	return c.JSON(http.StatusOK, order)
}
