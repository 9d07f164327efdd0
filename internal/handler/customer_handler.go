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

// CustomerRequest defines the structure for customer creation/update requests
type CustomerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	PinCode string `json:"pin_code"`
	Notes   string `json:"notes"`
}

// ListCustomers retrieves the store's customers.
func ListCustomers(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Customers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind customer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customers"})
	}

	query := db.Order("created_at DESC")
	if phone := c.QueryParam("phone"); phone != "" {
		query = query.Where("phone = ?", phone)
	}

	var customers []model.Customer
	if result := query.Find(&customers); result.Error != nil {
		log.Error("Failed to retrieve customers",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customers"})
	}

	return c.JSON(http.StatusOK, customers)
}

// GetCustomer retrieves a customer by ID.
func GetCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("query")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Customers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind customer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to retrieve customer"})
	}

	var customer model.Customer
	if result := db.Where("id = ?", c.Param("id")).First(&customer); result.Error != nil {
		log.Warn("Customer not found",
			zap.String("customer_id", c.Param("id")))
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	return c.JSON(http.StatusOK, customer)
}

// CreateCustomer adds a customer record.
func CreateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("insert")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid customer request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}
	if req.Name == "" || req.Phone == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and phone are required"})
	}

	db, err := scope.Customers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind customer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "customer creation failed"})
	}

	customer := model.Customer{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		City:    req.City,
		State:   req.State,
		PinCode: req.PinCode,
		Notes:   req.Notes,
	}

	if result := db.Create(&customer); result.Error != nil {
		log.Error("Failed to create customer",			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "customer creation failed"})
	}

	log.Info("Customer created",
		zap.Uint("id", customer.ID))
	return c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer modifies an existing customer record.
func UpdateCustomer(c echo.Context) error {
	log := logger.FromEcho(c)
	defer prometheus.TrackDBOperation("update")(time.Now())

	scope, err := requireScope(c)
	if err != nil {
		return err
	}

	db, err := scope.Customers(c.Request().Context())
	if err != nil {
		log.Error("Failed to bind customer schema", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "customer update failed"})
	}

	var customer model.Customer
	if result := db.Where("id = ?", c.Param("id")).First(&customer); result.Error != nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "customer not found"})
	}

	var req CustomerRequest
	if err := c.Bind(&req); err != nil {
		log.Error("Invalid customer request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request data"})
	}

	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != "" {
		customer.Phone = req.Phone
	}
	customer.Email = req.Email
	customer.Address = req.Address
	customer.City = req.City
	customer.State = req.State
	customer.PinCode = req.PinCode
	customer.Notes = req.Notes

	if result := db.Save(&customer); result.Error != nil {
		log.Error("Failed to update customer",
			zap.Uint("id", customer.ID),
			zap.Error(result.Error))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "customer update failed"})
	}

	return c.JSON(http.StatusOK, customer)
}
